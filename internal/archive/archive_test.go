package archive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slackaudit/auditlogs"
)

const sampleLogs = `{
  "entries": [
    {
      "id": "0123a45b-6c7d-8900-e12f-3456789gh0i1",
      "date_create": 1521214343,
      "action": "user_login",
      "actor": {"type": "user", "user": {"id": "W123AB456", "name": "Charlie Parker"}},
      "entity": {"type": "user", "user": {"id": "W123AB456", "name": "Charlie Parker"}},
      "context": {"location": {"type": "enterprise", "id": "E1701NCCA"}, "ip_address": "1.23.45.678"}
    },
    {
      "date_create": 1521214400,
      "action": "file_downloaded",
      "actor": {"type": "user", "user": {"id": "W999"}},
      "entity": {"type": "file", "file": {"id": "F123", "name": "report.pdf"}}
    },
    {
      "id": "msg-1",
      "date_create": 1521214500,
      "action": "message_tombstoned",
      "actor": {"type": "user", "user": {"id": "W1"}},
      "entity": {"type": "message", "message": {"channel": "C1", "timestamp": "1521214500.000100"}}
    },
    "not an object"
  ],
  "response_metadata": {"next_cursor": ""}
}`

// fetchLogs runs a real logs call against a fake API returning body.
func fetchLogs(t *testing.T, body string) *auditlogs.Response {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := auditlogs.New("xoxp-1", auditlogs.WithBaseURL(server.URL+"/"))
	require.NoError(t, err)
	resp, err := client.Logs(context.Background(), auditlogs.LogsFilter{})
	require.NoError(t, err)
	return resp
}

func TestExtractEntries(t *testing.T) {
	entries := ExtractEntries(fetchLogs(t, sampleLogs))
	require.Len(t, entries, 3)

	login := entries[0]
	assert.Equal(t, "0123a45b-6c7d-8900-e12f-3456789gh0i1", login.ID)
	assert.Equal(t, time.Unix(1521214343, 0).UTC(), login.DateCreate)
	assert.Equal(t, "user_login", login.Action)
	assert.Equal(t, "user", login.ActorType)
	assert.Equal(t, "W123AB456", login.ActorID)
	assert.Equal(t, "user", login.EntityType)
	assert.Equal(t, "W123AB456", login.EntityID)
	assert.Contains(t, string(login.Data), `"ip_address": "1.23.45.678"`)
	assert.False(t, login.ArchivedAt.IsZero())

	download := entries[1]
	assert.Regexp(t, `^xx-[0-9a-f]{16}$`, download.ID)
	assert.Equal(t, "F123", download.EntityID)

	msg := entries[2]
	assert.Equal(t, "1521214500.000100", msg.EntityID)
}

func TestExtractEntries_StableContentID(t *testing.T) {
	a := ExtractEntries(fetchLogs(t, sampleLogs))
	b := ExtractEntries(fetchLogs(t, sampleLogs))
	assert.Equal(t, a[1].ID, b[1].ID)
}

func TestExtractEntries_NoEntries(t *testing.T) {
	assert.Nil(t, ExtractEntries(nil))
	assert.Nil(t, ExtractEntries(fetchLogs(t, `{"ok":false,"error":"invalid_auth"}`)))
	assert.Nil(t, ExtractEntries(fetchLogs(t, `{"entries":[]}`)))
	assert.Nil(t, ExtractEntries(fetchLogs(t, "")))
}
