package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/store/schema"
)

// NewCommitInput maps a committed receipt and the snapshot taken after it to database rows
func NewCommitInput(receipt *chain.Receipt, snapshot *chain.Snapshot) (CommitInput, error) {
	output, err := json.Marshal(receipt.Output)
	if err != nil {
		return CommitInput{}, fmt.Errorf("failed to marshal output: %w", err)
	}

	state, err := json.Marshal(snapshot)
	if err != nil {
		return CommitInput{}, fmt.Errorf("failed to marshal state: %w", err)
	}

	events := make([]schema.LedgerEvent, 0, len(receipt.Events))
	for _, e := range receipt.Events {
		attrs, err := json.Marshal(e.Attributes)
		if err != nil {
			return CommitInput{}, fmt.Errorf("failed to marshal event attributes: %w", err)
		}
		events = append(events, schema.LedgerEvent{
			TransactionID:   receipt.ID,
			Sequence:        receipt.Sequence,
			LogIndex:        e.LogIndex,
			EventType:       e.Type,
			ContractAddress: e.Contract.Hex(),
			Attributes:      datatypes.JSON(attrs),
			Timestamp:       receipt.Timestamp,
		})
	}

	return CommitInput{
		Transaction: schema.LedgerTransaction{
			ID:          receipt.ID,
			Sequence:    receipt.Sequence,
			FromAddress: receipt.From.Hex(),
			ToAddress:   receipt.To.Hex(),
			Method:      receipt.Method,
			ValueWei:    receipt.Value.Dec(),
			Output:      datatypes.JSON(output),
			Hash:        receipt.Hash,
			Timestamp:   receipt.Timestamp,
		},
		Events: events,
		State:  state,
	}, nil
}
