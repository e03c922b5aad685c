package kv

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/logger"
)

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedisStore dials addr and verifies the connection before returning.
func NewRedisStore(log *logger.Logger, addr string) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{log: log.With("store", "RedisKV"), rdb: rdb}, nil
}

func (s *redisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", errs.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %v", errs.ErrStorageUnavailable, key, err)
	}
	return val, nil
}

func (s *redisStore) List(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: redis scan %s: %v", errs.ErrStorageUnavailable, prefix, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
