package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/nextup-labs/nxt-ledger/internal/store/schema"
)

// CursorStore tracks how far a consumer of the transaction log has progressed
type CursorStore interface {
	// GetPublishCursor returns the last sequence handled by the named consumer, 0 if none
	GetPublishCursor(ctx context.Context, name string) (uint64, error)
	// SetPublishCursor stores the last sequence handled by the named consumer
	SetPublishCursor(ctx context.Context, name string, sequence uint64) error
}

type cursorStore struct {
	db *gorm.DB
}

// NewCursorStore creates a new cursor store
func NewCursorStore(db *gorm.DB) CursorStore {
	return &cursorStore{db: db}
}

func cursorKey(name string) string {
	return fmt.Sprintf("publish_cursor:%s", name)
}

func (s *cursorStore) GetPublishCursor(ctx context.Context, name string) (uint64, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", cursorKey(name)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get publish cursor: %w", err)
	}

	sequence, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse publish cursor: %w", err)
	}

	return sequence, nil
}

func (s *cursorStore) SetPublishCursor(ctx context.Context, name string, sequence uint64) error {
	kv := schema.KeyValueStore{
		Key:   cursorKey(name),
		Value: strconv.FormatUint(sequence, 10),
	}

	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set publish cursor: %w", err)
	}

	return nil
}
