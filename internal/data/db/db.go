package db

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type Config struct {
	Dialect     Dialect
	PostgresDSN string
	// SQLitePath may be ":memory:" or a file path.
	SQLitePath string
	// Silent suppresses gorm's statement logger (tests).
	Silent bool
}

type Service struct {
	db      *gorm.DB
	dialect Dialect
	log     *logger.Logger
}

func Open(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "DBService", "dialect", cfg.Dialect)

	gormLog := gormLogger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	if cfg.Silent {
		gormLog = gormLogger.Default.LogMode(gormLogger.Silent)
	}
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var (
		conn *gorm.DB
		err  error
	)
	switch cfg.Dialect {
	case DialectPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, fmt.Errorf("missing POSTGRES_DSN")
		}
		conn, err = gorm.Open(postgres.Open(cfg.PostgresDSN), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
	case DialectSQLite, "":
		path := strings.TrimSpace(cfg.SQLitePath)
		if path == "" {
			path = "learnhub.db"
		}
		conn, err = gorm.Open(sqlite.Open(sqliteDSN(path)), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite %q: %w", path, err)
		}
		// One writer at a time; the claim CAS relies on serialized updates.
		if sqlDB, derr := conn.DB(); derr == nil {
			sqlDB.SetMaxOpenConns(1)
		}
		cfg.Dialect = DialectSQLite
	default:
		return nil, fmt.Errorf("unsupported DB_DIALECT %q", cfg.Dialect)
	}

	serviceLog.Info("Database connection opened")
	return &Service{db: conn, dialect: cfg.Dialect, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Dialect() Dialect { return s.dialect }

func (s *Service) AutoMigrateAll() error {
	if err := s.db.AutoMigrate(types.AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	s.log.Info("Schema migrated")
	return nil
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?cache=shared&_busy_timeout=5000"
	}
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}
