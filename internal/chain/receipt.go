package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gowebpki/jcs"
	"github.com/holiman/uint256"
	"github.com/oklog/ulid/v2"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// Receipt describes a committed transaction
type Receipt struct {
	ID        string            `json:"id"`
	Sequence  uint64            `json:"sequence"`
	From      common.Address    `json:"from"`
	To        common.Address    `json:"to"`
	Method    string            `json:"method"`
	Value     *uint256.Int      `json:"value"`
	Events    []domain.Event    `json:"events"`
	Output    map[string]string `json:"output"`
	Timestamp time.Time         `json:"timestamp"`
	Hash      string            `json:"hash"`
}

// seal assigns the receipt id and hash.
// The hash is SHA-256 over the JCS-canonicalized receipt with an empty hash field.
func (r *Receipt) seal() error {
	r.ID = ulid.MustNewDefault(r.Timestamp).String()
	if r.Events == nil {
		r.Events = []domain.Event{}
	}
	hash, err := r.ComputeHash()
	if err != nil {
		return err
	}
	r.Hash = hash
	return nil
}

// ComputeHash recomputes the receipt hash
func (r *Receipt) ComputeHash() (string, error) {
	body := *r
	body.Hash = ""
	raw, err := json.Marshal(&body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize receipt: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return "0x" + hex.EncodeToString(sum[:]), nil
}

// EventsOf returns the receipt events of the given type
func (r *Receipt) EventsOf(eventType domain.EventType) []domain.Event {
	var events []domain.Event
	for _, e := range r.Events {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events
}

// ContractState is one contract entry of a snapshot
type ContractState struct {
	Address common.Address      `json:"address"`
	Kind    domain.ContractKind `json:"kind"`
	State   json.RawMessage     `json:"state"`
}

// Snapshot is the serializable state of a runtime
type Snapshot struct {
	Sequence  uint64                          `json:"sequence"`
	Balances  map[common.Address]*uint256.Int `json:"balances"`
	Nonces    map[common.Address]uint64       `json:"nonces"`
	Contracts []ContractState                 `json:"contracts"`
}
