package kv

import "context"

// Store is the durable key-value contract the tracking core persists through.
// Implementations are expected to be eventually durable; no multi-key
// transaction is assumed anywhere in the core.
//
// Get returns errs.ErrNotFound for absent keys. Backend failures are wrapped
// in errs.ErrStorageUnavailable so callers can tell "missing" from "down".
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
