// ABOUTME: Badger implementation of the key/value backend
// ABOUTME: Embedded LSM store used when CRM_BACKEND=badger
package db

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

type BadgerBackend struct {
	db *badger.DB
}

// OpenBadgerBackend opens (or creates) a Badger store in dir.
func OpenBadgerBackend(dir string) (*BadgerBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create badger directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Load(ctx context.Context, keys []string) (map[string][]byte, error) {
	values := make(map[string][]byte, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			values[key] = value
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read badger store: %w", err)
	}
	return values, nil
}

func (b *BadgerBackend) Save(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		for key, value := range values {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := txn.Set([]byte(key), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write badger store: %w", err)
	}
	return nil
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
