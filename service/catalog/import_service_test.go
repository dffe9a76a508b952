package catalog

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	catalogEntity "pos.GO/model/entity/catalog"
	catalogRepo "pos.GO/model/repository/catalog"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&catalogEntity.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestImportProducts_CreatesAndUpdates(t *testing.T) {
	db := testDB(t)
	repo := catalogRepo.NewProductRepository(db)
	repo.Upsert(&catalogEntity.Product{SKU: "OLD-1", Name: "Old Name", Price: 1})

	csvData := strings.Join([]string{
		"sku,name,description,price",
		"OLD-1,New Name,Refreshed,2.50",
		"NEW-1,Brand New,,9.99",
	}, "\n")

	res, err := ImportProducts(db, strings.NewReader(csvData), ImportOptions{})
	if err != nil {
		t.Fatalf("ImportProducts: %v", err)
	}
	if res.TotalRows != 2 || res.Created != 1 || res.Updated != 1 || res.Skipped != 0 {
		t.Errorf("result = %+v, want 2 rows, 1 created, 1 updated", res)
	}

	old, err := repo.FindBySKU("OLD-1")
	if err != nil {
		t.Fatalf("FindBySKU: %v", err)
	}
	if old.Name != "New Name" || old.Price != 2.50 {
		t.Errorf("existing row not updated: %+v", old)
	}
	if _, err := repo.FindBySKU("NEW-1"); err != nil {
		t.Errorf("new row missing: %v", err)
	}
}

func TestImportProducts_SkipsBadRowsWithWarnings(t *testing.T) {
	db := testDB(t)

	csvData := strings.Join([]string{
		"sku,name,price",
		",No SKU,1.00",
		"BAD-PRICE,Widget,not-a-number",
		"OK-1,Widget,3.00",
	}, "\n")

	res, err := ImportProducts(db, strings.NewReader(csvData), ImportOptions{})
	if err != nil {
		t.Fatalf("ImportProducts: %v", err)
	}
	if res.Created != 1 {
		t.Errorf("Created = %d, want 1", res.Created)
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2 (missing sku, bad price)", res.Skipped)
	}
	if len(res.Warnings) == 0 {
		t.Error("no warnings recorded")
	}
}

func TestImportProducts_RejectsHeaderWithoutSKU(t *testing.T) {
	if _, err := ImportProducts(testDB(t), strings.NewReader("name,price\nWidget,1"), ImportOptions{}); err == nil {
		t.Error("expected error for header without sku")
	}
}
