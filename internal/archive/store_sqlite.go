package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SQLite allows 999 bound parameters per statement by default, so inserts are chunked.
const (
	maxSQLiteParams    = 999
	columnsPerEntry    = 9
	maxEntriesPerBatch = maxSQLiteParams / columnsPerEntry
)

// SQLiteStore implements EntryStore for SQLite databases.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the audit_entries table and its indexes if needed.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			date_create DATETIME NOT NULL,
			action TEXT,
			actor_type TEXT,
			actor_id TEXT,
			entity_type TEXT,
			entity_id TEXT,
			archived_at DATETIME NOT NULL,
			data JSON
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
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// WriteBatch inserts entries in chunks that fit SQLite's parameter limit.
func (s *SQLiteStore) WriteBatch(ctx context.Context, entries []*Entry) error {
	for i := 0; i < len(entries); i += maxEntriesPerBatch {
		chunk := entries[i:min(i+maxEntriesPerBatch, len(entries))]

		placeholders := make([]string, len(chunk))
		values := make([]any, 0, len(chunk)*columnsPerEntry)
		for j, e := range chunk {
			placeholders[j] = "(?, ?, ?, ?, ?, ?, ?, ?, ?)"

			var data any
			if len(e.Data) > 0 {
				data = string(e.Data)
			}
			values = append(values,
				e.ID,
				e.DateCreate.UTC().Format(time.RFC3339),
				e.Action,
				e.ActorType,
				e.ActorID,
				e.EntityType,
				e.EntityID,
				e.ArchivedAt.UTC().Format(time.RFC3339Nano),
				data,
			)
		}

		query := `INSERT OR IGNORE INTO audit_entries (id, date_create, action, actor_type, actor_id,
			entity_type, entity_id, archived_at, data) VALUES ` + strings.Join(placeholders, ",")
		if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
			return fmt.Errorf("failed to insert audit entries batch %d: %w", i/maxEntriesPerBatch, err)
		}
	}
	return nil
}

// Prune deletes entries created before cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_entries WHERE date_create < ?", cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// Close is a no-op; the database is owned by the storage layer.
func (s *SQLiteStore) Close() error {
	return nil
}
