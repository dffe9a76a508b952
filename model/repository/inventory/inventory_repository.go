package inventory

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	inventoryEntity "pos.GO/model/entity/inventory"
)

type InventoryRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewInventoryRepository(db *gorm.DB) (*InventoryRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &InventoryRepository{db: db, sqlDB: sqlDB}, nil
}

// PushMovement records a stock movement idempotently. The lookup by
// movement_uuid runs first: an existing row is returned with
// deduped=true and nothing is written. This is the idempotency boundary
// for push retries and duplicate pull delivery alike.
func (r *InventoryRepository) PushMovement(m *inventoryEntity.StockMovement) (*inventoryEntity.StockMovement, bool, error) {
	var existing inventoryEntity.StockMovement
	err := r.db.Where("movement_uuid = ?", m.MovementUUID).First(&existing).Error
	if err == nil {
		return &existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if err := r.db.Create(m).Error; err != nil {
		return nil, false, err
	}
	return m, false, nil
}

// FindByUUID returns a movement by its idempotency key.
func (r *InventoryRepository) FindByUUID(movementUUID string) (*inventoryEntity.StockMovement, error) {
	var m inventoryEntity.StockMovement
	if err := r.db.Where("movement_uuid = ?", movementUUID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns movements newest first. limit <= 0 means no limit.
func (r *InventoryRepository) List(limit int) ([]inventoryEntity.StockMovement, error) {
	q := r.db.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var movements []inventoryEntity.StockMovement
	err := q.Find(&movements).Error
	return movements, err
}

// TotalQuantity sums qty_delta for a product across all movements.
// Uses raw SQL for minimal overhead
func (r *InventoryRepository) TotalQuantity(productID uint) (float64, error) {
	const query = `SELECT COALESCE(SUM(qty_delta), 0) FROM stock_movements WHERE product_id = ?`
	var total float64
	err := r.sqlDB.QueryRow(query, productID).Scan(&total)
	return total, err
}

// TotalQuantityBySKU sums qty_delta joined through the product SKU.
// Returns found=false when the SKU is not in the local catalog.
func (r *InventoryRepository) TotalQuantityBySKU(sku string) (float64, bool) {
	const query = `
		SELECT COALESCE(SUM(m.qty_delta), 0)
		FROM products p
		LEFT JOIN stock_movements m ON m.product_id = p.id
		WHERE p.sku = ?
		GROUP BY p.id`
	var total float64
	err := r.sqlDB.QueryRow(query, sku).Scan(&total)
	if err != nil {
		return 0, false
	}
	return total, true
}
