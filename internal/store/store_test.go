package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

var (
	ledgerAddr  = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	utilityAddr = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	buyerAddr   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestReceipt creates a purchase receipt with a ledger event and a mint transfer
func buildTestReceipt(sequence uint64, amount uint64) *chain.Receipt {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(sequence) * time.Minute)
	return &chain.Receipt{
		ID:       ulid.MustNewDefault(ts).String(),
		Sequence: sequence,
		From:     buyerAddr,
		To:       ledgerAddr,
		Method:   "purchase",
		Value:    uint256.NewInt(amount),
		Events: []domain.Event{
			{
				Type:     domain.EventTypeUtilityTokenPurchased,
				Contract: ledgerAddr,
				LogIndex: 0,
				Attributes: map[string]string{
					"buyer":  buyerAddr.Hex(),
					"amount": fmt.Sprint(amount),
				},
			},
			{
				Type:     domain.EventTypeTransfer,
				Contract: utilityAddr,
				LogIndex: 1,
				Attributes: map[string]string{
					"from":   domain.ETHEREUM_ZERO_ADDRESS,
					"to":     buyerAddr.Hex(),
					"amount": fmt.Sprint(amount),
				},
			},
		},
		Output:    map[string]string{},
		Timestamp: ts,
		Hash:      fmt.Sprintf("0x%064x", sequence),
	}
}

func buildTestSnapshot(sequence uint64) *chain.Snapshot {
	return &chain.Snapshot{
		Sequence: sequence,
		Balances: map[common.Address]*uint256.Int{ledgerAddr: uint256.NewInt(sequence * 10)},
		Nonces:   map[common.Address]uint64{},
	}
}

func saveTestCommit(t *testing.T, store Store, sequence uint64, amount uint64) *chain.Receipt {
	receipt := buildTestReceipt(sequence, amount)
	input, err := NewCommitInput(receipt, buildTestSnapshot(sequence))
	require.NoError(t, err)
	require.NoError(t, store.SaveCommit(context.Background(), input))
	return receipt
}

// RunStoreTests runs every store test against the given implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store Store)
	}{
		{"LoadState_Empty", testLoadStateEmpty},
		{"SaveCommit_PersistsEverything", testSaveCommitPersistsEverything},
		{"SaveCommit_OverwritesState", testSaveCommitOverwritesState},
		{"SaveCommit_DuplicateSequenceFails", testSaveCommitDuplicateSequence},
		{"GetTransaction_NotFound", testGetTransactionNotFound},
		{"GetEvents_Filters", testGetEventsFilters},
		{"PublishCursor", testPublishCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, initDB(t))
		})
	}
}

func testLoadStateEmpty(t *testing.T, store Store) {
	state, err := store.LoadState(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func testSaveCommitPersistsEverything(t *testing.T, store Store) {
	ctx := context.Background()
	receipt := saveTestCommit(t, store, 1, 8)

	txRow, err := store.GetTransaction(ctx, receipt.ID)
	require.NoError(t, err)
	require.NotNil(t, txRow)
	assert.Equal(t, uint64(1), txRow.Sequence)
	assert.Equal(t, buyerAddr.Hex(), txRow.FromAddress)
	assert.Equal(t, ledgerAddr.Hex(), txRow.ToAddress)
	assert.Equal(t, "purchase", txRow.Method)
	assert.Equal(t, "8", txRow.ValueWei)
	assert.Equal(t, receipt.Hash, txRow.Hash)
	assert.True(t, receipt.Timestamp.Equal(txRow.Timestamp))

	txID := receipt.ID
	events, err := store.GetEvents(ctx, EventQueryFilter{TransactionID: &txID})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventTypeUtilityTokenPurchased, events[0].EventType)
	assert.Equal(t, uint(1), events[1].LogIndex)
	assert.Equal(t, utilityAddr.Hex(), events[1].ContractAddress)

	var attrs map[string]string
	require.NoError(t, json.Unmarshal(events[1].Attributes, &attrs))
	assert.Equal(t, "8", attrs["amount"])

	state, err := store.LoadState(ctx)
	require.NoError(t, err)
	var snapshot chain.Snapshot
	require.NoError(t, json.Unmarshal(state, &snapshot))
	assert.Equal(t, uint64(1), snapshot.Sequence)
	assert.Equal(t, uint64(10), snapshot.Balances[ledgerAddr].Uint64())
}

func testSaveCommitOverwritesState(t *testing.T, store Store) {
	saveTestCommit(t, store, 1, 1)
	saveTestCommit(t, store, 2, 1)

	state, err := store.LoadState(context.Background())
	require.NoError(t, err)
	var snapshot chain.Snapshot
	require.NoError(t, json.Unmarshal(state, &snapshot))
	assert.Equal(t, uint64(2), snapshot.Sequence)
}

func testSaveCommitDuplicateSequence(t *testing.T, store Store) {
	ctx := context.Background()
	saveTestCommit(t, store, 1, 1)

	duplicate := buildTestReceipt(1, 5)
	duplicate.ID = ulid.MustNewDefault(duplicate.Timestamp.Add(time.Second)).String()
	input, err := NewCommitInput(duplicate, buildTestSnapshot(99))
	require.NoError(t, err)
	assert.Error(t, store.SaveCommit(ctx, input))

	// the failed commit leaves the previous state in place
	state, err := store.LoadState(ctx)
	require.NoError(t, err)
	var snapshot chain.Snapshot
	require.NoError(t, json.Unmarshal(state, &snapshot))
	assert.Equal(t, uint64(1), snapshot.Sequence)

	txRow, err := store.GetTransaction(ctx, duplicate.ID)
	require.NoError(t, err)
	assert.Nil(t, txRow)
}

func testGetTransactionNotFound(t *testing.T, store Store) {
	txRow, err := store.GetTransaction(context.Background(), "01HXMISSING0000000000000000")
	require.NoError(t, err)
	assert.Nil(t, txRow)
}

func testGetEventsFilters(t *testing.T, store Store) {
	ctx := context.Background()
	for seq := uint64(1); seq <= 3; seq++ {
		saveTestCommit(t, store, seq, seq)
	}

	all, err := store.GetEvents(ctx, EventQueryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		assert.True(t, prev.Sequence < cur.Sequence || (prev.Sequence == cur.Sequence && prev.LogIndex < cur.LogIndex))
	}

	purchased := domain.EventTypeUtilityTokenPurchased
	byType, err := store.GetEvents(ctx, EventQueryFilter{EventType: &purchased})
	require.NoError(t, err)
	assert.Len(t, byType, 3)

	contract := utilityAddr.Hex()
	byContract, err := store.GetEvents(ctx, EventQueryFilter{Contract: &contract})
	require.NoError(t, err)
	assert.Len(t, byContract, 3)

	after, err := store.GetEvents(ctx, EventQueryFilter{AfterSequence: 2})
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, uint64(3), after[0].Sequence)

	limited, err := store.GetEvents(ctx, EventQueryFilter{AfterSequence: 1, Limit: 3})
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, uint64(2), limited[0].Sequence)
	assert.Equal(t, uint64(3), limited[2].Sequence)
}

func testPublishCursor(t *testing.T, store Store) {
	ctx := context.Background()

	cursor, err := store.GetPublishCursor(ctx, "jetstream")
	require.NoError(t, err)
	assert.Zero(t, cursor)

	require.NoError(t, store.SetPublishCursor(ctx, "jetstream", 12))
	require.NoError(t, store.SetPublishCursor(ctx, "jetstream", 15))
	require.NoError(t, store.SetPublishCursor(ctx, "other", 3))

	cursor, err = store.GetPublishCursor(ctx, "jetstream")
	require.NoError(t, err)
	assert.Equal(t, uint64(15), cursor)
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 10, open)
	assert.Equal(t, 2, idle)
	assert.Equal(t, 5*time.Minute, lifetime)
	assert.Equal(t, 10*time.Minute, idleTime)

	open, idle, _, _ = NormalizeConnectionPoolSettings(4, 9, time.Minute, time.Minute)
	assert.Equal(t, 4, open)
	assert.Equal(t, 4, idle)
}

func TestCalculateSafeBatchSize(t *testing.T) {
	assert.Equal(t, 5, calculateSafeBatchSize(5, 8))
	assert.Equal(t, (65535-1000)/8, calculateSafeBatchSize(100000, 8))
}
