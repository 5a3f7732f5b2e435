package app

import (
	"strings"
	"time"

	"github.com/yungbote/learnhub-backend/internal/data/db"
	"github.com/yungbote/learnhub-backend/internal/jobs/worker"
	"github.com/yungbote/learnhub-backend/internal/observability"
	"github.com/yungbote/learnhub-backend/internal/platform/envutil"
	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/openai"
	"github.com/yungbote/learnhub-backend/internal/platform/redisx"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type Config struct {
	ServiceName string
	Environment string
	HTTPAddr    string
	RunWorker   bool

	DB      db.Config
	Worker  worker.Config
	Storage gcp.ObjectStorageConfig
	// StorageErr is set when the storage env vars do not describe a usable store.
	StorageErr error

	OpenAI                     openai.Config
	GenerationProvidersEnabled bool

	RedisAddr    string
	RedisChannel string

	OTel observability.OtelConfig

	JWTSecret       string
	AllowUserHeader bool
	CORSOrigins     []string

	SignedURLTTL         time.Duration
	DefaultLocale        string
	StructuredContentDir string
	QueueStatsInterval   time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	storage, storageErr := gcp.ResolveObjectStorageConfigFromEnv()
	cfg := Config{
		ServiceName: envutil.String("SERVICE_NAME", "learnhub-backend"),
		Environment: envutil.String("APP_ENV", "development"),
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		RunWorker:   envutil.Bool("RUN_WORKER", true),

		DB: db.Config{
			Dialect:     db.Dialect(strings.ToLower(envutil.String("DB_DIALECT", string(db.DialectPostgres)))),
			PostgresDSN: envutil.String("POSTGRES_DSN", ""),
			SQLitePath:  envutil.String("SQLITE_PATH", "learnhub.db"),
		},
		Worker:     worker.ConfigFromEnv(),
		Storage:    storage,
		StorageErr: storageErr,

		OpenAI:                     openai.ConfigFromEnv(),
		GenerationProvidersEnabled: envutil.Bool("GENERATION_PROVIDERS_ENABLED", false),

		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_QUEUE_CHANNEL", redisx.DefaultChannel),

		JWTSecret:       envutil.String("JWT_SECRET", ""),
		AllowUserHeader: envutil.Bool("AUTH_ALLOW_USER_HEADER", false),
		CORSOrigins:     splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		SignedURLTTL:         envutil.Duration("SIGNED_URL_TTL", services.DefaultSignedURLTTL),
		DefaultLocale:        envutil.String("DEFAULT_LOCALE", services.DefaultLocale),
		StructuredContentDir: envutil.String("STRUCTURED_CONTENT_DIR", "content/structured"),
		QueueStatsInterval:   envutil.Duration("QUEUE_STATS_INTERVAL", 15*time.Second),
	}
	cfg.OTel = observability.OtelConfigFromEnv(cfg.ServiceName, cfg.Environment, envutil.String("SERVICE_VERSION", "dev"))

	if cfg.JWTSecret == "" && !cfg.AllowUserHeader {
		log.Warn("No JWT_SECRET and AUTH_ALLOW_USER_HEADER=false; every API request will be rejected")
	}
	log.Info("Config loaded",
		"http_addr", cfg.HTTPAddr,
		"db_dialect", cfg.DB.Dialect,
		"object_storage_mode", cfg.Storage.Mode,
		"run_worker", cfg.RunWorker,
		"worker_concurrency", cfg.Worker.Concurrency,
		"providers_enabled", cfg.GenerationProvidersEnabled,
		"redis", cfg.RedisAddr != "",
	)
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
