package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/store/schema"
)

type pgStore struct {
	CursorStore
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{
		CursorStore: NewCursorStore(db),
		db:          db,
	}
}

// AutoMigrate creates or updates the ledger tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.KeyValueStore{},
		&schema.LedgerTransaction{},
		&schema.LedgerEvent{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 2
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// The ledger writes from a single goroutine, so the pool stays small.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 10
	}
	if maxIdleConns == 0 {
		maxIdleConns = 2
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize keeps a bulk insert under PostgreSQL's 65535 parameter limit
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// SaveCommit writes the transaction row, its events and the state snapshot in one database transaction
func (s *pgStore) SaveCommit(ctx context.Context, input CommitInput) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&input.Transaction).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		if len(input.Events) > 0 {
			// 8 inserted columns per event
			batchSize := calculateSafeBatchSize(len(input.Events), 8)
			if err := tx.Omit("Transaction").CreateInBatches(&input.Events, batchSize).Error; err != nil {
				return fmt.Errorf("failed to create events: %w", err)
			}
		}

		kv := schema.KeyValueStore{
			Key:   STATE_KEY,
			Value: string(input.State),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&kv).Error
		if err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Commit persisted",
		zap.String("transaction_id", input.Transaction.ID),
		zap.Uint64("sequence", input.Transaction.Sequence),
		zap.Int("events", len(input.Events)),
	)

	return nil
}

// LoadState returns the persisted runtime snapshot
func (s *pgStore) LoadState(ctx context.Context) ([]byte, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", STATE_KEY).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	return []byte(kv.Value), nil
}

// GetTransaction retrieves a transaction by its id
func (s *pgStore) GetTransaction(ctx context.Context, id string) (*schema.LedgerTransaction, error) {
	var txRow schema.LedgerTransaction
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&txRow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &txRow, nil
}

// GetEvents retrieves events ordered by their global position
func (s *pgStore) GetEvents(ctx context.Context, filter EventQueryFilter) ([]schema.LedgerEvent, error) {
	query := s.db.WithContext(ctx).Model(&schema.LedgerEvent{})

	if filter.EventType != nil {
		query = query.Where("event_type = ?", *filter.EventType)
	}
	if filter.Contract != nil {
		query = query.Where("contract_address = ?", *filter.Contract)
	}
	if filter.TransactionID != nil {
		query = query.Where("transaction_id = ?", *filter.TransactionID)
	}
	if filter.AfterSequence > 0 {
		query = query.Where("sequence > ?", filter.AfterSequence)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var events []schema.LedgerEvent
	if err := query.Order("sequence ASC, log_index ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	return events, nil
}
