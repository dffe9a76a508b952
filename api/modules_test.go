// In api_test so the self-registering modules can be imported without a
// cycle: their init() runs here exactly as it does in main.
package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pos.GO/api"
	_ "pos.GO/api/product"
	_ "pos.GO/api/sales"
	catalogEntity "pos.GO/model/entity/catalog"
	salesEntity "pos.GO/model/entity/sales"
	syncqEntity "pos.GO/model/entity/syncq"
)

func TestApplyModules_MountsSelfRegisteredRoutes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&catalogEntity.Product{}, &salesEntity.LocalSale{}, &syncqEntity.OutboxItem{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	e := echo.New()
	api.ApplyModules(e.Group("/api"), db)

	for _, path := range []string{"/api/products", "/api/sales"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"count":0`) {
			t.Errorf("GET %s body = %s, want empty projection", path, rec.Body.String())
		}
	}
}
