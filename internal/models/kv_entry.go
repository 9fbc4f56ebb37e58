package models

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one document in the SQL-backed key-value store.
type KVEntry struct {
	Key       string         `gorm:"column:entry_key;primaryKey;size:191" json:"key"`
	Value     datatypes.JSON `json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName pins the table name regardless of naming strategy.
func (KVEntry) TableName() string {
	return "kv_entries"
}
