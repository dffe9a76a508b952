package ledger

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ledgerEntity "pos.GO/model/entity/ledger"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create inserts a new local ledger entry (synced=false).
func (r *LedgerRepository) Create(e *ledgerEntity.LedgerEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.EntryType == "" {
		e.EntryType = ledgerEntity.TypeSale
	}
	return r.db.Create(e).Error
}

// InsertIfAbsent inserts a pull-sourced entry keyed by local_uuid.
func (r *LedgerRepository) InsertIfAbsent(e *ledgerEntity.LedgerEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.EntryType == "" {
		e.EntryType = ledgerEntity.TypeAdjustment
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "local_uuid"}},
		DoNothing: true,
	}).Create(e).Error
}

// MarkSynced flips the synced flag after server acknowledgement.
func (r *LedgerRepository) MarkSynced(localUUID string) error {
	return r.db.Model(&ledgerEntity.LedgerEntry{}).
		Where("local_uuid = ?", localUUID).
		Update("synced", true).Error
}

// FindByUUID returns an entry or gorm.ErrRecordNotFound.
func (r *LedgerRepository) FindByUUID(localUUID string) (*ledgerEntity.LedgerEntry, error) {
	var e ledgerEntity.LedgerEntry
	if err := r.db.Where("local_uuid = ?", localUUID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns entries newest first.
func (r *LedgerRepository) List(limit int) ([]ledgerEntity.LedgerEntry, error) {
	q := r.db.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []ledgerEntity.LedgerEntry
	err := q.Find(&entries).Error
	return entries, err
}
