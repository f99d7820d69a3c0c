package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertEntrySQL = `
	INSERT INTO audit_entries (id, date_create, action, actor_type, actor_id, entity_type, entity_id, archived_at, data)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO NOTHING
`

// PostgreSQLStore implements EntryStore for PostgreSQL databases.
type PostgreSQLStore struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLStore creates the audit_entries table and its indexes if needed.
func NewPostgreSQLStore(ctx context.Context, pool *pgxpool.Pool) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, errors.New("connection pool is required")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			date_create TIMESTAMPTZ NOT NULL,
			action TEXT,
			actor_type TEXT,
			actor_id TEXT,
			entity_type TEXT,
			entity_id TEXT,
			archived_at TIMESTAMPTZ NOT NULL,
			data JSONB
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit_entries table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_entries_date_create ON audit_entries(date_create)",
		"CREATE INDEX IF NOT EXISTS idx_entries_action ON audit_entries(action)",
		"CREATE INDEX IF NOT EXISTS idx_entries_actor_id ON audit_entries(actor_id)",
		"CREATE INDEX IF NOT EXISTS idx_entries_entity_id ON audit_entries(entity_id)",
		"CREATE INDEX IF NOT EXISTS idx_entries_data_gin ON audit_entries USING GIN (data)",
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	return &PostgreSQLStore{pool: pool}, nil
}

// WriteBatch sends all inserts in one round trip inside a transaction.
func (s *PostgreSQLStore) WriteBatch(ctx context.Context, entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		var data any
		if len(e.Data) > 0 {
			data = string(e.Data)
		}
		batch.Queue(insertEntrySQL,
			e.ID, e.DateCreate, e.Action, e.ActorType, e.ActorID,
			e.EntityType, e.EntityID, e.ArchivedAt, data)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert audit entries: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Prune deletes entries created before cutoff.
func (s *PostgreSQLStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.pool.Exec(ctx, "DELETE FROM audit_entries WHERE date_create < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return result.RowsAffected(), nil
}

// Close is a no-op; the pool is owned by the storage layer.
func (s *PostgreSQLStore) Close() error {
	return nil
}
