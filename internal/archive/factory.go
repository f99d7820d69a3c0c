package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"slackaudit/auditlogs"
	"slackaudit/config"
	"slackaudit/internal/storage"
)

// Result holds the archive store and the connection behind it.
// The caller is responsible for calling Close() to release resources.
type Result struct {
	Store         EntryStore
	Storage       storage.Storage
	RetentionDays int
}

// Close releases the store and the storage connection.
func (r *Result) Close() error {
	var errs []error
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	if r.Storage != nil {
		if err := r.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}

// Save archives the entries of a logs response and applies retention.
// It returns the number of entries handed to the store.
func (r *Result) Save(ctx context.Context, resp *auditlogs.Response) (int, error) {
	entries := ExtractEntries(resp)
	if err := r.Store.WriteBatch(ctx, entries); err != nil {
		return 0, err
	}
	if r.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -r.RetentionDays)
		deleted, err := r.Store.Prune(ctx, cutoff)
		if err != nil {
			return len(entries), err
		}
		if deleted > 0 {
			slog.Info("pruned archived audit entries", "deleted", deleted, "retention_days", r.RetentionDays)
		}
	}
	return len(entries), nil
}

// New opens the configured archive. When archiving is disabled it returns a
// NoopStore with nil storage. The caller must call Result.Close().
func New(ctx context.Context, cfg *config.Config) (*Result, error) {
	if !cfg.Archive.Enabled {
		return &Result{Store: NoopStore{}}, nil
	}

	store, err := storage.New(ctx, buildStorageConfig(cfg.Storage))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	entryStore, err := createEntryStore(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Result{
		Store:         entryStore,
		Storage:       store,
		RetentionDays: cfg.Archive.RetentionDays,
	}, nil
}

// buildStorageConfig maps the file configuration onto storage.Config, filling defaults.
func buildStorageConfig(cfg config.StorageConfig) storage.Config {
	out := storage.DefaultConfig()
	if cfg.Type != "" {
		out.Type = cfg.Type
	}
	if cfg.SQLite.Path != "" {
		out.SQLite.Path = cfg.SQLite.Path
	}
	out.PostgreSQL.URL = cfg.PostgreSQL.URL
	if cfg.PostgreSQL.MaxConns > 0 {
		out.PostgreSQL.MaxConns = cfg.PostgreSQL.MaxConns
	}
	out.MongoDB.URL = cfg.MongoDB.URL
	if cfg.MongoDB.Database != "" {
		out.MongoDB.Database = cfg.MongoDB.Database
	}
	return out
}

// createEntryStore picks the EntryStore for the storage backend.
func createEntryStore(ctx context.Context, store storage.Storage) (EntryStore, error) {
	switch store.Type() {
	case storage.TypeSQLite:
		return NewSQLiteStore(ctx, store.SQLiteDB())
	case storage.TypePostgreSQL:
		return NewPostgreSQLStore(ctx, store.PostgreSQLPool())
	case storage.TypeMongoDB:
		return NewMongoDBStore(ctx, store.MongoDatabase())
	default:
		return nil, fmt.Errorf("unknown storage type: %s", store.Type())
	}
}
