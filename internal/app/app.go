package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/learnhub-backend/internal/data/db"
	"github.com/yungbote/learnhub-backend/internal/http"
	"github.com/yungbote/learnhub-backend/internal/http/handlers"
	"github.com/yungbote/learnhub-backend/internal/observability"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/envutil"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	store        *db.Service
	shutdownOTel func(context.Context) error
	server       *http.Server
	cancel       context.CancelFunc
}

func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	shutdownOTel := observability.InitOTel(context.Background(), log, cfg.OTel)
	observability.Init(log)

	store, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("db automigrate: %w", err)
	}

	a, err := assemble(context.Background(), log, cfg, store.DB(), Services{})
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}
	a.store = store
	a.shutdownOTel = shutdownOTel
	return a, nil
}

// assemble wires repos, services, handlers and the router on top of an open database.
func assemble(ctx context.Context, log *logger.Logger, cfg Config, theDB *gorm.DB, deps Services) (*App, error) {
	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(ctx, theDB, log, cfg, reposet, deps)
	if err != nil {
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, cfg)
	server := wireServer(log, cfg, serviceset, handlerset, middleware)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   server.Engine,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		server:   server,
	}, nil
}

// Start launches the background loops: the job worker pool (when RUN_WORKER is set)
// and the queue depth collector.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Cfg.RunWorker && a.Services.JobWorker != nil {
		a.Services.JobWorker.Start(ctx)
	}
	observability.Current().StartJobQueueCollector(ctx, a.Log, a.Cfg.QueueStatsInterval, a.queueStats)
}

func (a *App) queueStats(ctx context.Context) (map[string]int64, error) {
	stats, err := a.Repos.Jobs.Stats(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(stats))
	for status, n := range stats {
		out[string(status)] = n
	}
	return out, nil
}

// Run serves HTTP on addr until Close is called.
func (a *App) Run(addr string) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown failed", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Notifier != nil {
		_ = a.Services.Notifier.Close()
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

func pingDB(gdb *gorm.DB) handlers.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
