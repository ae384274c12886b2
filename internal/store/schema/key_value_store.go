package schema

import "time"

// KeyValueStore holds singleton ledger state: the runtime snapshot and publish cursors
type KeyValueStore struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KeyValueStore) TableName() string {
	return "key_value_store"
}
