package device

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	deviceEntity "pos.GO/model/entity/device"
)

type DeviceMetaRepository struct {
	db *gorm.DB
}

func NewDeviceMetaRepository(db *gorm.DB) *DeviceMetaRepository {
	return &DeviceMetaRepository{db: db}
}

// Get unmarshals the value for key into out. Returns false when the key
// has never been set.
func (r *DeviceMetaRepository) Get(key string, out interface{}) (bool, error) {
	var row deviceEntity.DeviceMeta
	err := r.db.Where("meta_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(row.Value, out); err != nil {
		return false, fmt.Errorf("decode device meta %s: %w", key, err)
	}
	return true, nil
}

// Set upserts the value for key.
func (r *DeviceMetaRepository) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode device meta %s: %w", key, err)
	}
	row := deviceEntity.DeviceMeta{
		Key:       key,
		Value:     datatypes.JSON(raw),
		UpdatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meta_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// Cursor returns the device's pull watermark, 0 when never synced.
func (r *DeviceMetaRepository) Cursor() (int64, error) {
	var seq int64
	ok, err := r.Get(deviceEntity.KeyLastServerSeq, &seq)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return seq, nil
}

// SetCursor advances the watermark. The cursor is monotonic
// non-decreasing: a regression is ignored, never persisted.
func (r *DeviceMetaRepository) SetCursor(seq int64) error {
	current, err := r.Cursor()
	if err != nil {
		return err
	}
	if seq <= current {
		return nil
	}
	return r.Set(deviceEntity.KeyLastServerSeq, seq)
}
