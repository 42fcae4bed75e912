// Package testutil provides the shared database fixture for integration
// style tests. Tests run against in-memory sqlite by default; set
// TEST_POSTGRES_DSN to run the same tests against a real postgres.
package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/templates"
	"github.com/yungbote/bmc-backend/internal/types"
)

var (
	dbOnce   sync.Once
	sharedDB *gorm.DB
	dbErr    error
)

// DB returns the shared migrated test database.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dbOnce.Do(func() {
		if err := templates.Load(); err != nil {
			dbErr = err
			return
		}
		var dialector gorm.Dialector
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			dialector = postgres.Open(dsn)
		} else {
			dialector = sqlite.Open("file:bmc_test?mode=memory&cache=shared")
		}
		sharedDB, dbErr = gorm.Open(dialector, &gorm.Config{
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
			TranslateError: true,
		})
		if dbErr != nil {
			return
		}
		dbErr = sharedDB.AutoMigrate(
			&types.User{},
			&types.Team{},
			&types.TeamMember{},
			&types.Canvas{},
			&types.BuildingBlock{},
			&types.Entry{},
			&types.Snapshot{},
			&types.ActivityLog{},
		)
	})
	if dbErr != nil {
		t.Fatalf("test db: %v", dbErr)
	}
	return sharedDB
}

// Tx begins a transaction that is rolled back when the test finishes, so
// tests never see each other's rows.
func Tx(t *testing.T) *gorm.DB {
	t.Helper()
	tx := DB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("begin test tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

// Logger returns a development-mode logger for wiring services under test.
func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("test logger: %v", err)
	}
	return log
}
