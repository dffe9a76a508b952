package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	syncqEntity "pos.GO/model/entity/syncq"
)

type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository wraps a connection or an open transaction; pass
// the tx handle inside db.Transaction so "write entity + enqueue" is one
// atomic local operation.
func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue appends a pending item. Purely local and must succeed with no
// network at all.
func (r *OutboxRepository) Enqueue(entityType, entityUUID string, payload interface{}) (*syncqEntity.OutboxItem, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}
	item := &syncqEntity.OutboxItem{
		EntityType: entityType,
		EntityUUID: entityUUID,
		Payload:    datatypes.JSON(raw),
		Status:     syncqEntity.StatusPending,
		QueuedAt:   time.Now(),
	}
	if err := r.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// PeekAll returns every item in insertion order. Inspection/testing;
// the push path uses PendingBatch.
func (r *OutboxRepository) PeekAll() ([]syncqEntity.OutboxItem, error) {
	var items []syncqEntity.OutboxItem
	err := r.db.Order("id ASC").Find(&items).Error
	return items, err
}

// Dequeue removes an item by id. Administrative only; the normal path
// flips status instead of deleting, preserving audit history.
func (r *OutboxRepository) Dequeue(id uint) error {
	return r.db.Delete(&syncqEntity.OutboxItem{}, id).Error
}

// PendingBatch selects up to limit pending items still under the retry
// ceiling, in insertion order. FIFO order here is push order on the wire.
func (r *OutboxRepository) PendingBatch(limit, maxRetries int) ([]syncqEntity.OutboxItem, error) {
	var items []syncqEntity.OutboxItem
	err := r.db.
		Where("status = ? AND retry_count < ?", syncqEntity.StatusPending, maxRetries).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// MarkSynced retires acknowledged items. pending→synced happens exactly
// once; already-synced items are untouched by the status guard.
func (r *OutboxRepository) MarkSynced(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.Model(&syncqEntity.OutboxItem{}).
		Where("id IN ? AND status = ?", ids, syncqEntity.StatusPending).
		Updates(map[string]interface{}{"status": syncqEntity.StatusSynced, "synced_at": now}).Error
}

// RecordFailure increments retry_count on every item of a failed batch
// and moves items that reached the ceiling to the terminal failed
// status, where the diagnostics query can still see them.
func (r *OutboxRepository) RecordFailure(ids []uint, maxRetries int, cause error) error {
	if len(ids) == 0 {
		return nil
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	err := r.db.Model(&syncqEntity.OutboxItem{}).
		Where("id IN ? AND status = ?", ids, syncqEntity.StatusPending).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  msg,
		}).Error
	if err != nil {
		return err
	}
	return r.db.Model(&syncqEntity.OutboxItem{}).
		Where("id IN ? AND status = ? AND retry_count >= ?", ids, syncqEntity.StatusPending, maxRetries).
		Update("status", syncqEntity.StatusFailed).Error
}

// Failed returns items stuck past the retry ceiling.
func (r *OutboxRepository) Failed() ([]syncqEntity.OutboxItem, error) {
	var items []syncqEntity.OutboxItem
	err := r.db.Where("status = ?", syncqEntity.StatusFailed).Order("id ASC").Find(&items).Error
	return items, err
}

// Retry resets a failed item back to pending with a fresh retry budget.
func (r *OutboxRepository) Retry(id uint) error {
	res := r.db.Model(&syncqEntity.OutboxItem{}).
		Where("id = ? AND status = ?", id, syncqEntity.StatusFailed).
		Updates(map[string]interface{}{"status": syncqEntity.StatusPending, "retry_count": 0, "last_error": ""})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByStatus returns item counts grouped by status.
func (r *OutboxRepository) CountByStatus() (map[string]int64, error) {
	rows, err := r.db.Model(&syncqEntity.OutboxItem{}).
		Select("status, COUNT(*) as n").
		Group("status").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// PruneSynced deletes synced items older than the cutoff. Retention is
// an operator decision; the engine never calls this on its own.
func (r *OutboxRepository) PruneSynced(olderThan time.Time) (int64, error) {
	res := r.db.
		Where("status = ? AND synced_at IS NOT NULL AND synced_at < ?", syncqEntity.StatusSynced, olderThan).
		Delete(&syncqEntity.OutboxItem{})
	return res.RowsAffected, res.Error
}
