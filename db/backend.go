// ABOUTME: Storage backend interface for the key/value store
// ABOUTME: Both SQLite and Badger implement atomic multi-key writes
package db

import "context"

// Backend is a durable key/value store. Save must apply every entry
// atomically or none of them.
type Backend interface {
	Load(ctx context.Context, keys []string) (map[string][]byte, error)
	Save(ctx context.Context, values map[string][]byte) error
	Close() error
}
