package inventory

import "time"

// Movement reason codes mirrored from the backend.
const (
	ReasonSale       = "SALE"
	ReasonPurchase   = "PURCHASE"
	ReasonAdjustment = "ADJUSTMENT"
)

// StockMovement is a signed quantity delta for a product. The
// client-generated movement_uuid is the idempotency key: re-submission
// with the same UUID must not create a second row.
type StockMovement struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MovementUUID string    `gorm:"column:movement_uuid;type:varchar(36);uniqueIndex;not null" json:"movement_uuid"`
	ProductID    uint      `gorm:"column:product_id;index;not null" json:"product_id"`
	LocationCode string    `gorm:"column:location_code;type:varchar(64)" json:"location_code"`
	QtyDelta     float64   `gorm:"column:qty_delta;type:decimal(12,4);not null" json:"qty_delta"`
	Reason       string    `gorm:"column:reason;type:varchar(32)" json:"reason"`
	Reference    string    `gorm:"column:reference;type:varchar(64)" json:"reference"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}
