package syncq

import (
	"time"

	"gorm.io/datatypes"
)

// Outbox item statuses. An item moves pending→synced exactly once; an
// item that exhausts its retries moves pending→failed and stays visible
// through the diagnostics query instead of being silently excluded.
const (
	StatusPending = "pending"
	StatusSynced  = "synced"
	StatusFailed  = "failed"
)

// Entity types carried in the outbox and on the push wire.
const (
	EntitySale          = "sale"
	EntityAdjustment    = "adjustment"
	EntityStockMovement = "stock_movement"
)

// OutboxItem is one durable pending change destined for the server.
// Insertion id order is push order.
type OutboxItem struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityType string         `gorm:"column:entity_type;type:varchar(32);not null;index" json:"entity_type"`
	EntityUUID string         `gorm:"column:entity_uuid;type:varchar(36);not null;index" json:"entity_uuid"`
	Payload    datatypes.JSON `gorm:"column:payload" json:"payload"`
	Status     string         `gorm:"column:status;type:varchar(16);not null;default:pending;index" json:"status"`
	RetryCount int            `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	LastError  string         `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	QueuedAt   time.Time      `gorm:"column:queued_at" json:"queued_at"`
	SyncedAt   *time.Time     `gorm:"column:synced_at" json:"synced_at,omitempty"`
}

func (OutboxItem) TableName() string {
	return "sync_queue"
}
