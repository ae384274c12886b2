package store

import (
	"context"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/store/schema"
)

// STATE_KEY is the key_value_store key of the runtime snapshot
const STATE_KEY = "ledger_state"

// CommitInput is everything persisted for one committed transaction
type CommitInput struct {
	Transaction schema.LedgerTransaction
	Events      []schema.LedgerEvent
	// State is the runtime snapshot after the transaction
	State []byte
}

// EventQueryFilter selects ledger events. Results are ordered by (sequence, log_index).
type EventQueryFilter struct {
	EventType     *domain.EventType
	Contract      *string
	TransactionID *string
	// AfterSequence returns only events of transactions with a greater sequence
	AfterSequence uint64
	Limit         int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	CursorStore

	// SaveCommit persists a transaction, its events and the resulting state atomically
	SaveCommit(ctx context.Context, input CommitInput) error
	// LoadState returns the persisted runtime snapshot, or nil when the ledger was never started
	LoadState(ctx context.Context) ([]byte, error)
	// GetTransaction retrieves a transaction by id, or nil when not found
	GetTransaction(ctx context.Context, id string) (*schema.LedgerTransaction, error)
	// GetEvents retrieves events matching the filter
	GetEvents(ctx context.Context, filter EventQueryFilter) ([]schema.LedgerEvent, error)
}
