package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-homedash/components/dashboard"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "homedash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Get(ctx, dashboard.DefaultLayoutKey)
	assert.ErrorIs(t, err, dashboard.ErrStorageKeyNotFound)

	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	require.NoError(t, store.Set(ctx, dashboard.DefaultLayoutKey, []byte(`["w-ai"]`)))
	require.NoError(t, store.Set(ctx, dashboard.DefaultLayoutKey, []byte(`["w-timer"]`)))

	got, err := store.Get(ctx, dashboard.DefaultLayoutKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["w-timer"]`, string(got))

	updated, err := store.UpdatedAt(ctx, dashboard.DefaultLayoutKey)
	require.NoError(t, err)
	assert.True(t, fixed.Equal(updated))

	require.NoError(t, store.Delete(ctx, dashboard.DefaultLayoutKey))
	require.NoError(t, store.Delete(ctx, dashboard.DefaultLayoutKey))
	_, err = store.Get(ctx, dashboard.DefaultLayoutKey)
	assert.ErrorIs(t, err, dashboard.ErrStorageKeyNotFound)
}

func TestStoreBacksLayoutAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "homedash.db")

	first, err := Open(path)
	require.NoError(t, err)
	svc := dashboard.NewService(dashboard.Options{Storage: first})
	svc.Start(ctx)
	svc.ToggleEdit(ctx)
	_, err = svc.RemoveWidget(ctx, "w-stats")
	require.NoError(t, err)
	svc.Close()
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()
	layout := dashboard.NewLayoutStore(dashboard.LayoutStoreOptions{Storage: second})
	assert.Equal(t, []string{"w-ai", "w-activity", "w-saved", "w-timer"}, layout.Load(ctx))
}

func TestNewRequiresDB(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
