package archive

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slackaudit/internal/storage"
)

func newTestSQLiteStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	st, err := storage.NewSQLite(context.Background(), storage.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	store, err := NewSQLiteStore(context.Background(), st.SQLiteDB())
	require.NoError(t, err)
	return store, st.SQLiteDB()
}

func countEntries(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM audit_entries").Scan(&n))
	return n
}

func TestNewSQLiteStore_NilDB(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), nil)
	assert.Error(t, err)
}

func TestSQLiteStore_WriteBatch(t *testing.T) {
	store, db := newTestSQLiteStore(t)
	ctx := context.Background()

	entries := []*Entry{
		{
			ID:         "e1",
			DateCreate: time.Unix(1700000000, 0),
			Action:     "user_login",
			ActorType:  "user",
			ActorID:    "W1",
			EntityType: "user",
			EntityID:   "W1",
			ArchivedAt: time.Now(),
			Data:       []byte(`{"id":"e1","action":"user_login"}`),
		},
		{ID: "e2", DateCreate: time.Unix(1700000100, 0), ArchivedAt: time.Now()},
	}
	require.NoError(t, store.WriteBatch(ctx, entries))
	assert.Equal(t, 2, countEntries(t, db))

	var action, data string
	require.NoError(t, db.QueryRow("SELECT action, data FROM audit_entries WHERE id = ?", "e1").Scan(&action, &data))
	assert.Equal(t, "user_login", action)
	assert.JSONEq(t, `{"id":"e1","action":"user_login"}`, data)

	var nullData sql.NullString
	require.NoError(t, db.QueryRow("SELECT data FROM audit_entries WHERE id = ?", "e2").Scan(&nullData))
	assert.False(t, nullData.Valid)

	// re-archiving the same page is a no-op
	require.NoError(t, store.WriteBatch(ctx, entries))
	assert.Equal(t, 2, countEntries(t, db))

	require.NoError(t, store.WriteBatch(ctx, nil))
}

func TestSQLiteStore_WriteBatchChunks(t *testing.T) {
	store, db := newTestSQLiteStore(t)

	total := maxEntriesPerBatch*2 + 7
	entries := make([]*Entry, total)
	for i := range entries {
		entries[i] = &Entry{
			ID:         fmt.Sprintf("e-%04d", i),
			DateCreate: time.Unix(int64(1700000000+i), 0),
			ArchivedAt: time.Now(),
			Data:       []byte(`{}`),
		}
	}
	require.NoError(t, store.WriteBatch(context.Background(), entries))
	assert.Equal(t, total, countEntries(t, db))
}

func TestSQLiteStore_Prune(t *testing.T) {
	store, db := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.WriteBatch(ctx, []*Entry{
		{ID: "old", DateCreate: now.AddDate(0, 0, -40), ArchivedAt: now},
		{ID: "older", DateCreate: now.AddDate(0, 0, -400), ArchivedAt: now},
		{ID: "new", DateCreate: now.Add(-time.Hour), ArchivedAt: now},
	}))

	deleted, err := store.Prune(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 1, countEntries(t, db))

	deleted, err = store.Prune(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
