package sales

import "time"

// LocalSale is a client-originated sale awaiting server confirmation.
// Synced flips to true only on server acknowledgement (push ack or pull).
type LocalSale struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	LocalUUID string    `gorm:"column:local_uuid;type:varchar(36);uniqueIndex;not null" json:"local_uuid"`
	ProductID uint      `gorm:"column:product_id;index;not null" json:"product_id"`
	Qty       float64   `gorm:"column:qty;type:decimal(12,4);not null" json:"qty"`
	UnitPrice float64   `gorm:"column:unit_price;type:decimal(12,4);not null;default:0" json:"unit_price"`
	Total     float64   `gorm:"column:total;type:decimal(12,4);not null;default:0" json:"total"`
	Synced    bool      `gorm:"column:synced;not null;default:false;index" json:"synced"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (LocalSale) TableName() string {
	return "local_sales"
}
