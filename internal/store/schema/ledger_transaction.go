package schema

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerTransaction represents the ledger_transactions table - one row per committed transaction
type LedgerTransaction struct {
	// ID is the ULID assigned when the transaction committed
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Sequence is the position of the transaction in the global order, starting at 1
	Sequence uint64 `gorm:"column:sequence;not null;uniqueIndex:idx_ledger_transactions_sequence"`
	// FromAddress is the submitting account
	FromAddress string `gorm:"column:from_address;not null;type:text;index:idx_ledger_transactions_from"`
	// ToAddress is the called contract, or the zero address for deployments
	ToAddress string `gorm:"column:to_address;not null;type:text"`
	// Method is the entry point name
	Method string `gorm:"column:method;not null;type:text"`
	// ValueWei is the attached native currency (stored as numeric to hold 256-bit values)
	ValueWei string `gorm:"column:value_wei;not null;type:numeric(78,0)"`
	// Output holds values returned by the transaction, e.g. assigned ids
	Output datatypes.JSON `gorm:"column:output;type:jsonb"`
	// Hash is the receipt hash
	Hash string `gorm:"column:hash;not null;type:text"`
	// Timestamp is the execution time
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}
