package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	catalogEntity "pos.GO/model/entity/catalog"
	deviceEntity "pos.GO/model/entity/device"
	inventoryEntity "pos.GO/model/entity/inventory"
	ledgerEntity "pos.GO/model/entity/ledger"
	salesEntity "pos.GO/model/entity/sales"
	syncqEntity "pos.GO/model/entity/syncq"
)

// NewDB opens the local store. The default is an embedded SQLite file
// (SQLITE_PATH, data/pos.db) so the client keeps working offline; when
// MYSQL_DSN is set the same store runs against MySQL for back-office
// deployments sharing a shop database.
func NewDB() (*gorm.DB, error) {
	logMode := logger.Warn
	if os.Getenv("GORM_LOG") == "off" {
		logMode = logger.Silent
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use log.Logger for Printf support
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logMode,
			Colorful:      true,
		},
	)

	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	}

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = filepath.Join("data", "pos.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	return gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{Logger: gormLogger})
}

// sqliteDSN appends the store pragmas to the DSN so every pooled
// connection carries them, not just the one that would run an Exec.
// WAL keeps readers open during sync writes; busy_timeout covers the
// overlap between UI writes and the worker tick.
func sqliteDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// MigrateDB creates or updates the local schema. Idempotent.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalogEntity.Product{},
		&inventoryEntity.StockMovement{},
		&salesEntity.LocalSale{},
		&ledgerEntity.LedgerEntry{},
		&syncqEntity.OutboxItem{},
		&deviceEntity.DeviceMeta{},
	)
}
