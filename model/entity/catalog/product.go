package catalog

import "time"

// Product is the locally cached copy of the server catalog entity.
// Rows are created and overwritten by pull (last pull wins); the client
// never mutates them in a way that has to be pushed back.
type Product struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SKU         string    `gorm:"column:sku;type:varchar(64);index" json:"sku"`
	Name        string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Price       float64   `gorm:"column:price;type:decimal(12,4);not null;default:0" json:"price"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
