package emitter_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/emitter"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/messaging"
	"github.com/nextup-labs/nxt-ledger/internal/mocks"
	"github.com/nextup-labs/nxt-ledger/internal/store"
	"github.com/nextup-labs/nxt-ledger/internal/store/schema"
)

const (
	testCursor   = "test"
	ledgerHex    = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	utilityHex   = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
	testBatchMax = 3
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// testEmitterMocks contains all the mocks needed for testing the emitter
type testEmitterMocks struct {
	ctrl      *gomock.Controller
	publisher *mocks.MockPublisher
	store     *mocks.MockStore
	clock     *mocks.MockClock
	emitter   emitter.Emitter
}

func setupTestEmitter(t *testing.T) *testEmitterMocks {
	ctrl := gomock.NewController(t)

	tm := &testEmitterMocks{
		ctrl:      ctrl,
		publisher: mocks.NewMockPublisher(ctrl),
		store:     mocks.NewMockStore(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}
	tm.emitter = emitter.NewEmitter(emitter.Config{
		CursorName:           testCursor,
		BatchSize:            testBatchMax,
		WorkerPoolSize:       2,
		PollInterval:         time.Minute,
		RetryInitialInterval: time.Millisecond,
		RetryMaxElapsedTime:  50 * time.Millisecond,
	}, tm.store, tm.publisher, tm.clock)

	return tm
}

func tearDownTestEmitter(tm *testEmitterMocks) {
	tm.ctrl.Finish()
}

func txID(seq uint64) string {
	return []string{"", "01HXA000000000000000000001", "01HXA000000000000000000002", "01HXA000000000000000000003"}[seq]
}

func testEvent(seq uint64, logIndex uint, eventType domain.EventType) schema.LedgerEvent {
	return schema.LedgerEvent{
		ID:              seq*10 + uint64(logIndex),
		TransactionID:   txID(seq),
		Sequence:        seq,
		LogIndex:        logIndex,
		EventType:       eventType,
		ContractAddress: ledgerHex,
		Attributes:      datatypes.JSON(`{"amount":"8"}`),
		Timestamp:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func expectTransaction(tm *testEmitterMocks, seq uint64, method string) {
	tm.store.EXPECT().
		GetTransaction(gomock.Any(), txID(seq)).
		Return(&schema.LedgerTransaction{ID: txID(seq), Sequence: seq, Method: method}, nil)
}

func pendingFilter(after uint64) store.EventQueryFilter {
	return store.EventQueryFilter{AfterSequence: after, Limit: testBatchMax}
}

func TestEmitter_PublishPending_NoEvents(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx := context.Background()
	tm.store.EXPECT().GetPublishCursor(ctx, testCursor).Return(uint64(4), nil)
	tm.store.EXPECT().GetEvents(ctx, pendingFilter(4)).Return(nil, nil)

	published, err := tm.emitter.PublishPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestEmitter_PublishPending_CursorError(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx := context.Background()
	tm.store.EXPECT().GetPublishCursor(ctx, testCursor).Return(uint64(0), errors.New("db down"))

	_, err := tm.emitter.PublishPending(ctx)
	assert.ErrorContains(t, err, "db down")
}

func TestEmitter_PublishPending_PublishesAndAdvancesCursor(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx := context.Background()
	events := []schema.LedgerEvent{
		testEvent(1, 0, domain.EventTypeUtilityTokenPurchased),
		testEvent(1, 1, domain.EventTypeTransfer),
	}
	events[1].ContractAddress = utilityHex

	tm.store.EXPECT().GetPublishCursor(ctx, testCursor).Return(uint64(0), nil)
	tm.store.EXPECT().GetEvents(ctx, pendingFilter(0)).Return(events, nil)
	expectTransaction(tm, 1, "purchase")

	var got []*messaging.LedgerEvent
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev *messaging.LedgerEvent) error {
			got = append(got, ev)
			return nil
		}).Times(2)
	tm.store.EXPECT().SetPublishCursor(ctx, testCursor, uint64(1)).Return(nil)

	published, err := tm.emitter.PublishPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, published)

	require.Len(t, got, 2)
	assert.Equal(t, txID(1)+"-0", got[0].ID)
	assert.Equal(t, "purchase", got[0].Method)
	assert.Equal(t, domain.EventTypeUtilityTokenPurchased, got[0].Event.Type)
	assert.Equal(t, "8", got[0].Event.Attr("amount"))
	assert.Equal(t, txID(1)+"-1", got[1].ID)
	assert.Equal(t, utilityHex, got[1].Event.Contract.Hex())
}

func TestEmitter_PublishPending_DropsIncompleteTransaction(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx := context.Background()
	events := []schema.LedgerEvent{
		testEvent(1, 0, domain.EventTypeUtilityTokenPurchased),
		testEvent(1, 1, domain.EventTypeTransfer),
		testEvent(2, 0, domain.EventTypeAthleteTokenPurchased),
	}

	tm.store.EXPECT().GetPublishCursor(ctx, testCursor).Return(uint64(0), nil)
	tm.store.EXPECT().GetEvents(ctx, pendingFilter(0)).Return(events, nil)
	expectTransaction(tm, 1, "purchase")
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	tm.store.EXPECT().SetPublishCursor(ctx, testCursor, uint64(1)).Return(nil)

	published, err := tm.emitter.PublishPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, published)
}

func TestEmitter_PublishPending_ReloadsOversizedTransaction(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx := context.Background()
	var full []schema.LedgerEvent
	for i := uint(0); i < 5; i++ {
		full = append(full, testEvent(2, i, domain.EventTypeTransfer))
	}
	id := txID(2)

	tm.store.EXPECT().GetPublishCursor(ctx, testCursor).Return(uint64(1), nil)
	tm.store.EXPECT().GetEvents(ctx, pendingFilter(1)).Return(full[:testBatchMax], nil)
	tm.store.EXPECT().GetEvents(ctx, store.EventQueryFilter{TransactionID: &id}).Return(full, nil)
	expectTransaction(tm, 2, "transfer")
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil).Times(5)
	tm.store.EXPECT().SetPublishCursor(ctx, testCursor, uint64(2)).Return(nil)

	published, err := tm.emitter.PublishPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, published)
}

func TestEmitter_PublishPending_RetriesTransientFailure(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx := context.Background()
	tm.store.EXPECT().GetPublishCursor(ctx, testCursor).Return(uint64(0), nil)
	tm.store.EXPECT().GetEvents(ctx, pendingFilter(0)).
		Return([]schema.LedgerEvent{testEvent(1, 0, domain.EventTypeReferenceUpdated)}, nil)
	expectTransaction(tm, 1, "setUtilityTokenReference")

	gomock.InOrder(
		tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(errors.New("nats timeout")),
		tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil),
	)
	tm.store.EXPECT().SetPublishCursor(ctx, testCursor, uint64(1)).Return(nil)

	published, err := tm.emitter.PublishPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, published)
}

func TestEmitter_PublishPending_FailureKeepsCursor(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx := context.Background()
	tm.store.EXPECT().GetPublishCursor(ctx, testCursor).Return(uint64(0), nil)
	tm.store.EXPECT().GetEvents(ctx, pendingFilter(0)).
		Return([]schema.LedgerEvent{testEvent(1, 0, domain.EventTypeReferenceUpdated)}, nil)
	expectTransaction(tm, 1, "setUtilityTokenReference")
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(errors.New("nats down")).MinTimes(1)

	_, err := tm.emitter.PublishPending(ctx)
	assert.ErrorContains(t, err, "nats down")
}

func TestEmitter_PublishPending_MissingTransactionIsPermanent(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx := context.Background()
	tm.store.EXPECT().GetPublishCursor(ctx, testCursor).Return(uint64(0), nil)
	tm.store.EXPECT().GetEvents(ctx, pendingFilter(0)).
		Return([]schema.LedgerEvent{testEvent(1, 0, domain.EventTypeTransfer)}, nil)
	tm.store.EXPECT().GetTransaction(gomock.Any(), txID(1)).Return(nil, nil).Times(1)

	_, err := tm.emitter.PublishPending(ctx)
	assert.ErrorContains(t, err, "not found")
}

func TestEmitter_StartNotifyStop(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idle := make(chan time.Time)
	tm.clock.EXPECT().After(time.Minute).Return(idle).AnyTimes()

	polled := make(chan struct{}, 10)
	tm.store.EXPECT().GetPublishCursor(gomock.Any(), testCursor).
		DoAndReturn(func(context.Context, string) (uint64, error) {
			polled <- struct{}{}
			return 0, nil
		}).AnyTimes()
	tm.store.EXPECT().GetEvents(gomock.Any(), pendingFilter(0)).Return(nil, nil).AnyTimes()

	done := make(chan error, 1)
	go func() {
		done <- tm.emitter.Start(ctx)
	}()

	<-polled
	tm.emitter.Notify()
	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("emitter did not poll after Notify")
	}

	require.NoError(t, tm.emitter.Stop(context.Background()))
	assert.NoError(t, <-done)
}
