// Package archive persists audit entries fetched from the Audit Logs API.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tidwall/gjson"

	"slackaudit/auditlogs"
)

// EntryStore writes archived entries to a backend.
type EntryStore interface {
	// WriteBatch stores entries, skipping any whose ID is already present.
	WriteBatch(ctx context.Context, entries []*Entry) error

	// Prune deletes entries created before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases store resources. The underlying connection is owned by storage.
	Close() error
}

// Entry is one archived audit event. Data holds the event exactly as received.
type Entry struct {
	ID         string
	DateCreate time.Time
	Action     string
	ActorType  string
	ActorID    string
	EntityType string
	EntityID   string
	ArchivedAt time.Time
	Data       json.RawMessage
}

// ExtractEntries pulls the entries array out of a logs response.
// Entries without an id get a stable one derived from their content.
// Returns nil when the body carries no entries.
func ExtractEntries(resp *auditlogs.Response) []*Entry {
	if resp == nil || resp.RawBody == "" {
		return nil
	}
	entries := resp.Get("entries")
	if !entries.IsArray() {
		return nil
	}

	now := time.Now().UTC()
	var out []*Entry
	entries.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		id := v.Get("id").String()
		if id == "" {
			id = contentID(v.Raw)
		}
		out = append(out, &Entry{
			ID:         id,
			DateCreate: time.Unix(v.Get("date_create").Int(), 0).UTC(),
			Action:     v.Get("action").String(),
			ActorType:  v.Get("actor.type").String(),
			ActorID:    v.Get("actor.user.id").String(),
			EntityType: v.Get("entity.type").String(),
			EntityID:   entityID(v),
			ArchivedAt: now,
			Data:       json.RawMessage(v.Raw),
		})
		return true
	})
	return out
}

// entityID reads the id of the typed target named by entity.type.
func entityID(v gjson.Result) string {
	typ := v.Get("entity.type").String()
	if typ == "" || strings.ContainsAny(typ, ".*?|#@\\") {
		return ""
	}
	target := v.Get("entity." + typ)
	if typ == "message" {
		return target.Get("timestamp").String()
	}
	return target.Get("id").String()
}

func contentID(raw string) string {
	return fmt.Sprintf("xx-%016x", xxhash.Sum64String(raw))
}

// NoopStore discards everything. Used when archiving is disabled.
type NoopStore struct{}

func (NoopStore) WriteBatch(context.Context, []*Entry) error      { return nil }
func (NoopStore) Prune(context.Context, time.Time) (int64, error) { return 0, nil }
func (NoopStore) Close() error                                    { return nil }
