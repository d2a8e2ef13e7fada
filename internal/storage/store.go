package storage

import "context"

// Store is a string key/value backend for a single lifetime.
// Get reports found=false for a missing key; err is reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
