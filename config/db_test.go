package config

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestSqliteDSN_CarriesPragmasForEveryConnection(t *testing.T) {
	dsn := sqliteDSN("data/pos.db")
	if !strings.HasPrefix(dsn, "data/pos.db?") {
		t.Fatalf("dsn = %q", dsn)
	}
	for _, pragma := range []string{
		"_pragma=journal_mode(WAL)",
		"_pragma=busy_timeout(5000)",
		"_pragma=foreign_keys(1)",
	} {
		if !strings.Contains(dsn, pragma) {
			t.Errorf("dsn %q missing %s", dsn, pragma)
		}
	}
}

func TestMigrateDB_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
