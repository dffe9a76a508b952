package ledger

import "time"

// Entry types. Pull-sourced adjustments are tagged ADJUSTMENT.
const (
	TypeSale       = "SALE"
	TypeAdjustment = "ADJUSTMENT"
)

// LedgerEntry is a client-originated financial row (e.g. a manual
// balance adjustment), same offline lifecycle as LocalSale.
type LedgerEntry struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	LocalUUID   string    `gorm:"column:local_uuid;type:varchar(36);uniqueIndex;not null" json:"local_uuid"`
	CustomerID  uint      `gorm:"column:customer_id;index" json:"customer_id"`
	Amount      float64   `gorm:"column:amount;type:decimal(12,4);not null" json:"amount"`
	Method      string    `gorm:"column:method;type:varchar(32)" json:"method"`
	EntryType   string    `gorm:"column:entry_type;type:varchar(32);not null;default:SALE" json:"entry_type"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Synced      bool      `gorm:"column:synced;not null;default:false;index" json:"synced"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
