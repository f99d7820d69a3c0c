package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteConcurrentWriteSafety(t *testing.T) {
	store, err := NewSQLite(context.Background(), SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "test.db")})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, TypeSQLite, store.Type())
	assert.Nil(t, store.PostgreSQLPool())
	assert.Nil(t, store.MongoDatabase())

	db := store.SQLiteDB()
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS test_entries (id TEXT PRIMARY KEY, data TEXT)`)
	require.NoError(t, err)

	const goroutines = 8
	const insertsPerGoroutine = 40

	var wg sync.WaitGroup
	errs := make(chan error, goroutines*insertsPerGoroutine)
	for i := range goroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range insertsPerGoroutine {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				_, err := db.ExecContext(ctx, `INSERT INTO test_entries (id, data) VALUES (?, ?)`,
					fmt.Sprintf("%d-%d", id, j), "payload")
				cancel()
				if err != nil {
					errs <- fmt.Errorf("goroutine %d insert %d: %w", id, j, err)
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent write error: %v", err)
	}

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM test_entries").Scan(&count))
	assert.Equal(t, goroutines*insertsPerGoroutine, count)
}

func TestSQLiteInMemory(t *testing.T) {
	store, err := NewSQLite(context.Background(), SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.SQLiteDB().Exec(`CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	_, err = store.SQLiteDB().Exec(`INSERT INTO t VALUES (1)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, store.SQLiteDB().QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 1, n)

	_, statErr := os.Stat(":memory:")
	assert.True(t, os.IsNotExist(statErr), "no file is created for an in-memory database")
}

func TestNew(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		_, err := New(context.Background(), Config{Type: "redis"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown storage type")
	})

	t.Run("postgres requires url", func(t *testing.T) {
		_, err := New(context.Background(), Config{Type: TypePostgreSQL})
		assert.EqualError(t, err, "PostgreSQL URL is required")
	})

	t.Run("mongodb requires url", func(t *testing.T) {
		_, err := New(context.Background(), Config{Type: TypeMongoDB})
		assert.EqualError(t, err, "MongoDB URL is required")
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := New(context.Background(), Config{Type: TypeSQLite, SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "a.db")}})
		require.NoError(t, err)
		assert.NotNil(t, store.SQLiteDB())
		require.NoError(t, store.Close())
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, TypeSQLite, cfg.Type)
	assert.Equal(t, "data/slackaudit.db", cfg.SQLite.Path)
	assert.Equal(t, 10, cfg.PostgreSQL.MaxConns)
	assert.Equal(t, "slackaudit", cfg.MongoDB.Database)
}
