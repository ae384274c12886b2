package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/nextup-labs/nxt-ledger/internal/adapter"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/messaging"
	"github.com/nextup-labs/nxt-ledger/internal/metrics"
	"github.com/nextup-labs/nxt-ledger/internal/store"
	"github.com/nextup-labs/nxt-ledger/internal/store/schema"
)

const (
	DEFAULT_CURSOR_NAME      = "jetstream"
	DEFAULT_BATCH_SIZE       = 500
	DEFAULT_WORKER_POOL_SIZE = 8
	DEFAULT_POLL_INTERVAL    = 5 * time.Second
)

// Config holds the configuration for the event emitter
type Config struct {
	// CursorName identifies this emitter's publish cursor
	CursorName     string
	BatchSize      int
	WorkerPoolSize int
	// PollInterval bounds how long the emitter idles without a Notify
	PollInterval         time.Duration
	RetryInitialInterval time.Duration
	RetryMaxElapsedTime  time.Duration
}

func (c Config) withDefaults() Config {
	if c.CursorName == "" {
		c.CursorName = DEFAULT_CURSOR_NAME
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DEFAULT_BATCH_SIZE
	}
	if c.WorkerPoolSize <= 0 {
		c.WorkerPoolSize = DEFAULT_WORKER_POOL_SIZE
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DEFAULT_POLL_INTERVAL
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = time.Second
	}
	if c.RetryMaxElapsedTime <= 0 {
		c.RetryMaxElapsedTime = 2 * time.Minute
	}
	return c
}

// Emitter relays committed ledger events from the store to the message broker
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Start runs the relay loop until the context is canceled or Stop is called
	Start(ctx context.Context) error
	// Stop stops the relay loop and waits for it to exit
	Stop(ctx context.Context) error
	// Notify wakes the relay loop after a commit. It never blocks.
	Notify()
	// PublishPending publishes one batch of unpublished events and advances the cursor.
	// It returns the number of events published.
	PublishPending(ctx context.Context) (int, error)
}

type emitter struct {
	config    Config
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
	pool      pond.Pool
	running   atomic.Bool
	notifyCh  chan struct{}
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewEmitter creates a new event emitter
func NewEmitter(cfg Config, st store.Store, pub messaging.Publisher, clock adapter.Clock) Emitter {
	cfg = cfg.withDefaults()
	return &emitter{
		config:    cfg,
		store:     st,
		publisher: pub,
		clock:     clock,
		pool:      pond.NewPool(cfg.WorkerPoolSize, pond.WithQueueSize(cfg.BatchSize)),
		notifyCh:  make(chan struct{}, 1),
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (e *emitter) Notify() {
	select {
	case e.notifyCh <- struct{}{}:
	default:
	}
}

// Start begins the relay loop. Batches are published back to back while the
// backlog is non-empty, then the loop waits for a notification or the poll interval.
func (e *emitter) Start(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("emitter already running")
	}
	defer func() {
		e.pool.StopAndWait()
		close(e.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting event emitter",
		zap.String("cursor", e.config.CursorName),
		zap.Int("batch_size", e.config.BatchSize),
		zap.Int("worker_pool_size", e.config.WorkerPoolSize),
	)

	for {
		published, err := e.PublishPending(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to publish pending events: %w", err))
		}
		if published > 0 && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Event emitter stopping due to context cancellation")
			return nil
		case <-e.stopChan:
			logger.InfoCtx(ctx, "Event emitter stop requested")
			return nil
		case <-e.notifyCh:
		case <-e.clock.After(e.config.PollInterval):
		}
	}
}

func (e *emitter) Stop(ctx context.Context) error {
	if !e.running.CompareAndSwap(true, false) {
		return nil
	}

	close(e.stopChan)

	select {
	case <-e.stoppedCh:
		logger.InfoCtx(ctx, "Event emitter stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Event emitter stop interrupted by context timeout")
		return ctx.Err()
	}
}

func (e *emitter) PublishPending(ctx context.Context) (int, error) {
	cursor, err := e.store.GetPublishCursor(ctx, e.config.CursorName)
	if err != nil {
		return 0, fmt.Errorf("failed to get publish cursor: %w", err)
	}

	events, err := e.store.GetEvents(ctx, store.EventQueryFilter{
		AfterSequence: cursor,
		Limit:         e.config.BatchSize,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	groups, err := e.completeGroups(ctx, events)
	if err != nil {
		return 0, err
	}

	// Transactions are published concurrently; consumers order by sequence
	group := e.pool.NewGroup()
	published := 0
	for _, g := range groups {
		published += len(g)
		group.SubmitErr(func() error {
			return e.publishWithRetry(ctx, g)
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}

	last := groups[len(groups)-1][0].Sequence
	if err := e.store.SetPublishCursor(ctx, e.config.CursorName, last); err != nil {
		return published, fmt.Errorf("failed to set publish cursor: %w", err)
	}
	metrics.EventsPublished.Add(float64(published))
	metrics.PublishCursor.Set(float64(last))

	logger.DebugCtx(ctx, "Published ledger events",
		zap.Int("events", published),
		zap.Int("transactions", len(groups)),
		zap.Uint64("cursor", last),
	)

	return published, nil
}

// completeGroups splits events by transaction. A batch cut short by the limit
// leaves its last transaction incomplete: that group is dropped, or reloaded
// in full when it is the only one.
func (e *emitter) completeGroups(ctx context.Context, events []schema.LedgerEvent) ([][]schema.LedgerEvent, error) {
	var groups [][]schema.LedgerEvent
	for i, ev := range events {
		if i == 0 || ev.Sequence != events[i-1].Sequence {
			groups = append(groups, []schema.LedgerEvent{})
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], ev)
	}

	if len(events) < e.config.BatchSize {
		return groups, nil
	}
	if len(groups) > 1 {
		return groups[:len(groups)-1], nil
	}

	txID := events[0].TransactionID
	full, err := e.store.GetEvents(ctx, store.EventQueryFilter{TransactionID: &txID})
	if err != nil {
		return nil, fmt.Errorf("failed to get events of transaction %s: %w", txID, err)
	}
	return [][]schema.LedgerEvent{full}, nil
}

func (e *emitter) publishWithRetry(ctx context.Context, events []schema.LedgerEvent) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.config.RetryInitialInterval
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = e.config.RetryMaxElapsedTime
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	backoffWithContext := backoff.WithContext(b, ctx)

	var method string
	operation := func() error {
		if method == "" {
			tx, err := e.store.GetTransaction(ctx, events[0].TransactionID)
			if err != nil {
				return fmt.Errorf("failed to get transaction %s: %w", events[0].TransactionID, err)
			}
			if tx == nil {
				return backoff.Permanent(fmt.Errorf("transaction %s not found", events[0].TransactionID))
			}
			method = tx.Method
		}
		for _, ev := range events {
			msg, err := toLedgerEvent(ev, method)
			if err != nil {
				return backoff.Permanent(err)
			}
			if err := e.publisher.PublishEvent(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Event publish failed, retrying",
			zap.Error(err),
			zap.String("transaction_id", events[0].TransactionID),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoffWithContext, notifyOnError); err != nil {
		return fmt.Errorf("failed to publish transaction %s after %d attempts: %w", events[0].TransactionID, attemptCount+1, err)
	}
	return nil
}

func toLedgerEvent(ev schema.LedgerEvent, method string) (*messaging.LedgerEvent, error) {
	contract, err := domain.ParseAddress(ev.ContractAddress)
	if err != nil {
		return nil, err
	}

	attrs := map[string]string{}
	if len(ev.Attributes) > 0 {
		if err := json.Unmarshal(ev.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes of event %d: %w", ev.ID, err)
		}
	}

	return &messaging.LedgerEvent{
		ID:            messaging.EventID(ev.TransactionID, ev.LogIndex),
		TransactionID: ev.TransactionID,
		Sequence:      ev.Sequence,
		Method:        method,
		Timestamp:     ev.Timestamp,
		Event: domain.Event{
			Type:       ev.EventType,
			Contract:   contract,
			LogIndex:   ev.LogIndex,
			Attributes: attrs,
		},
	}, nil
}
