package sales

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	salesEntity "pos.GO/model/entity/sales"
)

type SalesRepository struct {
	db *gorm.DB
}

// NewSalesRepository wraps a connection or an open transaction; pass the
// tx handle inside db.Transaction for atomic write+enqueue.
func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

// Create inserts a new local sale (synced=false).
func (r *SalesRepository) Create(s *salesEntity.LocalSale) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return r.db.Create(s).Error
}

// InsertIfAbsent inserts a pull-sourced sale keyed by local_uuid. A
// duplicate delivery is a no-op.
func (r *SalesRepository) InsertIfAbsent(s *salesEntity.LocalSale) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "local_uuid"}},
		DoNothing: true,
	}).Create(s).Error
}

// MarkSynced flips the synced flag after server acknowledgement.
func (r *SalesRepository) MarkSynced(localUUID string) error {
	return r.db.Model(&salesEntity.LocalSale{}).
		Where("local_uuid = ?", localUUID).
		Update("synced", true).Error
}

// FindByUUID returns a sale or gorm.ErrRecordNotFound.
func (r *SalesRepository) FindByUUID(localUUID string) (*salesEntity.LocalSale, error) {
	var s salesEntity.LocalSale
	if err := r.db.Where("local_uuid = ?", localUUID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns sales newest first.
func (r *SalesRepository) List(limit int) ([]salesEntity.LocalSale, error) {
	q := r.db.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var sales []salesEntity.LocalSale
	err := q.Find(&sales).Error
	return sales, err
}

// CountUnsynced returns how many sales still await acknowledgement.
func (r *SalesRepository) CountUnsynced() (int64, error) {
	var n int64
	err := r.db.Model(&salesEntity.LocalSale{}).Where("synced = ?", false).Count(&n).Error
	return n, err
}
