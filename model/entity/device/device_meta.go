package device

import (
	"time"

	"gorm.io/datatypes"
)

// KeyLastServerSeq is the pull cursor: how far this device has consumed
// the server change stream.
const KeyLastServerSeq = "last_server_seq"

// DeviceMeta is a generic key→JSON singleton store for per-device state.
// The value column is declared TEXT: a bare JSON scalar like the cursor
// must come back from SQLite as text, not coerced to a numeric type.
type DeviceMeta struct {
	Key       string         `gorm:"column:meta_key;type:varchar(64);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"column:value;type:text" json:"value"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (DeviceMeta) TableName() string {
	return "device_meta"
}
