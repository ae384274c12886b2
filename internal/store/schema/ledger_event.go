package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// LedgerEvent represents the ledger_events table - the events emitted by committed transactions
type LedgerEvent struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	TransactionID string `gorm:"column:transaction_id;not null;type:text;index:idx_ledger_events_transaction"`
	// Sequence and LogIndex order events globally
	Sequence        uint64           `gorm:"column:sequence;not null;uniqueIndex:idx_ledger_events_position"`
	LogIndex        uint             `gorm:"column:log_index;not null;uniqueIndex:idx_ledger_events_position"`
	EventType       domain.EventType `gorm:"column:event_type;not null;type:text;index:idx_ledger_events_type"`
	ContractAddress string           `gorm:"column:contract_address;not null;type:text;index:idx_ledger_events_contract"`
	Attributes      datatypes.JSON   `gorm:"column:attributes;type:jsonb"`
	Timestamp       time.Time        `gorm:"column:timestamp;not null;type:timestamptz"`
	CreatedAt       time.Time        `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	Transaction LedgerTransaction `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

func (LedgerEvent) TableName() string {
	return "ledger_events"
}
