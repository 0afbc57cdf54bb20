// ABOUTME: Tests for the dataset repository over both backends
// ABOUTME: Covers unit-of-work commits, rollbacks, corrupt keys and fingerprints
package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/harperreed/medcrm/models"
)

func setupTestRepo(t *testing.T, kind string) (*Repository, Backend) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "crm.db")
	if kind == BackendBadger {
		path = filepath.Join(t.TempDir(), "badger")
	}

	backend, err := OpenBackend(kind, path)
	require.NoError(t, err)

	repo := NewRepository(backend, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = repo.Close() })
	return repo, backend
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo *Repository, backend Backend)) {
	for _, kind := range []string{BackendSQLite, BackendBadger} {
		t.Run(kind, func(t *testing.T) {
			repo, backend := setupTestRepo(t, kind)
			fn(t, repo, backend)
		})
	}
}

func TestLoadEmptyStore(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository, _ Backend) {
		ds, _, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, ds.Clients)
		assert.NotNil(t, ds.Clients)
		assert.NotNil(t, ds.Users)
	})
}

func TestUpdateCommits(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository, _ Backend) {
		ctx := context.Background()

		err := repo.Update(ctx, func(ds *models.Dataset) error {
			ds.Clients = append(ds.Clients, models.Client{ID: "cli-1", Name: "Hospital X"})
			ds.Leads = append(ds.Leads, models.Lead{ID: "lead-1", Name: "Ana", SalespersonID: "ADM"})
			return nil
		})
		require.NoError(t, err)

		ds, _, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Len(t, ds.Clients, 1)
		assert.Equal(t, "Hospital X", ds.Clients[0].Name)
		require.Len(t, ds.Leads, 1)
	})
}

func TestUpdateRollsBackOnError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository, _ Backend) {
		ctx := context.Background()
		boom := errors.New("boom")

		err := repo.Update(ctx, func(ds *models.Dataset) error {
			ds.Clients = append(ds.Clients, models.Client{ID: "cli-1", Name: "Hospital X"})
			return boom
		})
		assert.ErrorIs(t, err, boom)

		ds, _, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, ds.Clients)
	})
}

func TestCorruptCollectionLoadsEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository, backend Backend) {
		ctx := context.Background()

		require.NoError(t, backend.Save(ctx, map[string][]byte{
			models.KeyClients: []byte(`{not json`),
			models.KeyLeads:   []byte(`[{"id":"lead-1","name":"Ana","salespersonId":"ADM"}]`),
		}))

		ds, _, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, ds.Clients)
		require.Len(t, ds.Leads, 1)
		assert.Equal(t, "Ana", ds.Leads[0].Name)
	})
}

func TestFingerprintTracksChanges(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository, _ Backend) {
		ctx := context.Background()

		_, first, err := repo.Load(ctx)
		require.NoError(t, err)
		_, again, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, again)

		require.NoError(t, repo.Update(ctx, func(ds *models.Dataset) error {
			ds.Users = append(ds.Users, models.User{ID: "sales-1", Role: models.RoleSalesperson})
			return nil
		}))

		_, after, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, first, after)
	})
}

func TestUpdateWritesOnlyChangedCollections(t *testing.T) {
	repo, backend := setupTestRepo(t, BackendSQLite)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, func(ds *models.Dataset) error {
		ds.Products = append(ds.Products, models.Product{ID: "prod-1", Name: "Monitor", Price: 100})
		return nil
	}))

	raw, err := backend.Load(ctx, models.StoreKeys())
	require.NoError(t, err)
	assert.Contains(t, raw, models.KeyProducts)
	assert.NotContains(t, raw, models.KeyClients)
}

func TestReplace(t *testing.T) {
	repo, _ := setupTestRepo(t, BackendSQLite)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, func(ds *models.Dataset) error {
		ds.Clients = append(ds.Clients, models.Client{ID: "cli-old"})
		return nil
	}))

	require.NoError(t, repo.Replace(ctx, &models.Dataset{
		Products: []models.Product{{ID: "prod-1"}},
	}))

	ds, _, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ds.Clients)
	assert.Len(t, ds.Products, 1)
}
