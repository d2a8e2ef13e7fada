package models

import "time"

// KVEntry persists one durable key/value pair scoped to a device namespace.
type KVEntry struct {
	Namespace string    `gorm:"column:namespace;type:varchar(64);primaryKey"`
	Key       string    `gorm:"column:key;type:varchar(128);primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (KVEntry) TableName() string { return "kv_entries" }
