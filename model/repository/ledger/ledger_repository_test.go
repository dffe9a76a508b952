package ledger

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	ledgerEntity "pos.GO/model/entity/ledger"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&ledgerEntity.LedgerEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreate_DefaultsToSaleType(t *testing.T) {
	repo := NewLedgerRepository(testDB(t))
	e := &ledgerEntity.LedgerEntry{LocalUUID: "l-1", Amount: 12.5}
	if err := repo.Create(e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.EntryType != ledgerEntity.TypeSale {
		t.Errorf("EntryType = %q, want SALE default", e.EntryType)
	}
	if e.Synced {
		t.Error("new entry must start unsynced")
	}
}

func TestInsertIfAbsent_DedupesByUUID(t *testing.T) {
	repo := NewLedgerRepository(testDB(t))
	repo.InsertIfAbsent(&ledgerEntity.LedgerEntry{LocalUUID: "l-2", Amount: 5, Synced: true})
	repo.InsertIfAbsent(&ledgerEntity.LedgerEntry{LocalUUID: "l-2", Amount: 99, Synced: true})

	list, _ := repo.List(0)
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if list[0].Amount != 5 {
		t.Errorf("Amount = %v, want original 5", list[0].Amount)
	}
}

func TestMarkSynced(t *testing.T) {
	repo := NewLedgerRepository(testDB(t))
	repo.Create(&ledgerEntity.LedgerEntry{LocalUUID: "l-3", Amount: 1})

	if err := repo.MarkSynced("l-3"); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	got, err := repo.FindByUUID("l-3")
	if err != nil {
		t.Fatalf("FindByUUID: %v", err)
	}
	if !got.Synced {
		t.Error("Synced = false, want true")
	}
}
