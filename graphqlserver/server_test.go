package graphqlserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	catalogEntity "pos.GO/model/entity/catalog"
	inventoryEntity "pos.GO/model/entity/inventory"
	salesEntity "pos.GO/model/entity/sales"
	catalogRepo "pos.GO/model/repository/catalog"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&catalogEntity.Product{},
		&inventoryEntity.StockMovement{},
		&salesEntity.LocalSale{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNewSchema_ResolverBindsAllQueryFields(t *testing.T) {
	if _, err := NewSchema(testDB(t)); err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
}

func TestProductsQuery(t *testing.T) {
	db := testDB(t)
	catalogRepo.NewProductRepository(db).Upsert(&catalogEntity.Product{SKU: "A-1", Name: "Apple", Price: 1.5})

	schema, err := NewSchema(db)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	resp := schema.Exec(context.Background(), `{ products { id sku name price } }`, "", nil)
	if len(resp.Errors) > 0 {
		t.Fatalf("exec errors: %v", resp.Errors)
	}

	var out struct {
		Products []struct {
			SKU   string  `json:"sku"`
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"products"`
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Products) != 1 || out.Products[0].Name != "Apple" || out.Products[0].Price != 1.5 {
		t.Errorf("products = %+v", out.Products)
	}
}

func TestSyncStatusQuery_DefaultsWithoutWorker(t *testing.T) {
	schema, err := NewSchema(testDB(t))
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	resp := schema.Exec(context.Background(), `{ syncStatus { tokenSet pending failed lastServerSeq } }`, "", nil)
	if len(resp.Errors) > 0 {
		t.Fatalf("exec errors: %v", resp.Errors)
	}
}
