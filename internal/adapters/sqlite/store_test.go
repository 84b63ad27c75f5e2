package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aretw0/stepwise/internal/adapters/sqlite"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StateStore = (*sqlite.Store)(nil)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, newTestStore(t))
}

func TestSQLiteStore_EmptyStringIsNotAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s", domain.Empty().WithEmail("")))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	require.NotNil(t, loaded.Email)
	assert.Equal(t, "", *loaded.Email)
	assert.Nil(t, loaded.Password)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "durable", domain.Empty().WithFlowType(domain.FlowSocial)))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "durable")
	require.NoError(t, err)
	assert.Equal(t, domain.FlowSocial, loaded.FlowType)
}

func TestSQLiteStore_SharedDB(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	first, err := sqlite.New(db)
	require.NoError(t, err)
	second, err := sqlite.New(db)
	require.NoError(t, err, "schema creation is idempotent")

	ctx := context.Background()
	require.NoError(t, first.Save(ctx, "x", domain.Empty()))
	ids, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids)
}

func TestSQLiteStore_UpgradesOlderSchema(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			flow_type TEXT NOT NULL DEFAULT '',
			email TEXT,
			password TEXT,
			terms_confirmed INTEGER NOT NULL DEFAULT 0,
			user_id TEXT,
			updated_at INTEGER NOT NULL
		);
		INSERT INTO sessions (id, flow_type, updated_at) VALUES ('old', 'SOCIAL', 0);`)
	require.NoError(t, err)

	store, err := sqlite.New(db)
	require.NoError(t, err)

	ctx := context.Background()
	old, err := store.Load(ctx, "old")
	require.NoError(t, err)
	assert.False(t, old.AgeVerified)

	require.NoError(t, store.Save(ctx, "old", old.WithAgeVerified(true)))
	loaded, err := store.Load(ctx, "old")
	require.NoError(t, err)
	assert.True(t, loaded.AgeVerified)
}
