package kv

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/logger"
)

// KVEntry is the single-table blob layout backing the Store contract when the
// configured backend is postgres.
type KVEntry struct {
	Key   string `gorm:"primaryKey;size:512"`
	Value []byte `gorm:"type:bytea"`
}

func (KVEntry) TableName() string { return "kv_entry" }

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormStore(db *gorm.DB, baseLog *logger.Logger) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	return &gormStore{db: db, log: baseLog.With("store", "PostgresKV")}, nil
}

func (s *gormStore) Put(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("%w: kv put %s: %v", errs.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *gormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: kv get %s: %v", errs.ErrStorageUnavailable, key, err)
	}
	return entry.Value, nil
}

func (s *gormStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&KVEntry{}).
		Where("key LIKE ?", prefix+"%").
		Order("key ASC").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("%w: kv list %s: %v", errs.ErrStorageUnavailable, prefix, err)
	}
	return keys, nil
}
