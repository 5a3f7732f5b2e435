package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/learnhub-backend/internal/data/db"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	dbSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a freshly migrated database private to the calling test.
// SQLite in-memory by default; TEST_POSTGRES_DSN switches to Postgres.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := db.Config{Dialect: db.DialectSQLite, Silent: true}
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		cfg = db.Config{Dialect: db.DialectPostgres, PostgresDSN: dsn, Silent: true}
	} else {
		name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
		cfg.SQLitePath = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_busy_timeout=5000", name, dbSeq.Add(1))
	}

	svc, err := db.Open(Logger(tb), cfg)
	if err != nil {
		tb.Fatalf("failed to init test db: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	if cfg.Dialect == db.DialectPostgres {
		truncateAll(tb, svc.DB())
	}
	tb.Cleanup(func() { _ = svc.Close() })
	return svc.DB()
}

func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func truncateAll(tb testing.TB, gdb *gorm.DB) {
	tb.Helper()
	for _, table := range []string{
		"generation_job", "derived_artifact", "content_translation", "content_version",
		"microsection", "chapter", "grade_subject", "subject", "class", "curriculum",
	} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			tb.Fatalf("truncate %s: %v", table, err)
		}
	}
}
