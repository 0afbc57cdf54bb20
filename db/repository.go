// ABOUTME: Repository loading and persisting the whole CRM dataset
// ABOUTME: Update runs a unit of work and writes only changed collections in one transaction
package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/harperreed/medcrm/models"
)

// Repository is the single owner of the persisted dataset. Updates are
// serialized.
type Repository struct {
	backend Backend
	logger  *zap.Logger
	mu      sync.Mutex
}

func NewRepository(backend Backend, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{backend: backend, logger: logger}
}

// Load reads every collection. Missing or corrupt collections come back
// empty. The returned fingerprint changes whenever any persisted byte does.
func (r *Repository) Load(ctx context.Context) (*models.Dataset, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *Repository) load(ctx context.Context) (*models.Dataset, uint64, error) {
	keys := models.StoreKeys()
	raw, err := r.backend.Load(ctx, keys)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load dataset: %w", err)
	}

	ds := &models.Dataset{}
	digest := xxhash.New()
	for _, c := range ds.Collections() {
		value, ok := raw[c.Key]
		_, _ = digest.WriteString(c.Key)
		_, _ = digest.Write([]byte{0})
		_, _ = digest.Write(value)
		_, _ = digest.Write([]byte{0})
		if !ok || len(value) == 0 {
			continue
		}
		if err := json.Unmarshal(value, c.Data); err != nil {
			r.logger.Warn("corrupt collection, loading empty",
				zap.String("key", c.Key),
				zap.Error(err))
			resetCollection(c.Data)
		}
	}
	ds.Normalize()

	return ds, digest.Sum64(), nil
}

// Update loads the dataset, applies fn and, if fn succeeds, saves every
// collection fn changed in a single backend transaction. When fn fails
// nothing is written.
func (r *Repository) Update(ctx context.Context, fn func(ds *models.Dataset) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ds, _, err := r.load(ctx)
	if err != nil {
		return err
	}

	before, err := encodeCollections(ds)
	if err != nil {
		return err
	}

	if err := fn(ds); err != nil {
		return err
	}
	ds.Normalize()

	after, err := encodeCollections(ds)
	if err != nil {
		return err
	}

	changed := make(map[string][]byte)
	for key, value := range after {
		if !bytes.Equal(before[key], value) {
			changed[key] = value
		}
	}
	if len(changed) == 0 {
		return nil
	}

	if err := r.backend.Save(ctx, changed); err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	r.logger.Debug("dataset saved", zap.Int("collections", len(changed)))
	return nil
}

// Replace overwrites every collection with ds.
func (r *Repository) Replace(ctx context.Context, ds *models.Dataset) error {
	return r.Update(ctx, func(current *models.Dataset) error {
		*current = *ds
		return nil
	})
}

func (r *Repository) Close() error {
	return r.backend.Close()
}

func encodeCollections(ds *models.Dataset) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, c := range ds.Collections() {
		data, err := json.Marshal(c.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", c.Key, err)
		}
		out[c.Key] = data
	}
	return out, nil
}

// resetCollection discards whatever a failed decode left behind.
func resetCollection(ptr any) {
	v := reflect.ValueOf(ptr).Elem()
	v.Set(reflect.Zero(v.Type()))
}
