package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// LedgerEvent is a committed contract event as published to the message broker
type LedgerEvent struct {
	// ID is unique per event: the transaction id and the event's log index
	ID            string       `json:"id"`
	TransactionID string       `json:"transaction_id"`
	Sequence      uint64       `json:"sequence"`
	Method        string       `json:"method"`
	Timestamp     time.Time    `json:"timestamp"`
	Event         domain.Event `json:"event"`
}

// EventID builds the deduplication id of an event
func EventID(transactionID string, logIndex uint) string {
	return fmt.Sprintf("%s-%d", transactionID, logIndex)
}

// Publisher publishes committed ledger events
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes one ledger event
	PublishEvent(ctx context.Context, event *LedgerEvent) error
	// Close closes the connection
	Close()
}
