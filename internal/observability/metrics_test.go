package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slackaudit/auditlogs"
)

func TestHooks_RecordRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()

	info := auditlogs.RequestInfo{Method: http.MethodGet, Endpoint: "logs"}
	ctx := hooks.OnRequestStart(context.Background(), info)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsInFlight))

	hooks.OnRequestEnd(ctx, auditlogs.ResponseInfo{RequestInfo: info, StatusCode: 200, Duration: 50 * time.Millisecond})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "logs", "200")))

	hooks.OnRequestStart(ctx, info)
	hooks.OnRequestEnd(ctx, auditlogs.ResponseInfo{RequestInfo: info, Err: errors.New("dial tcp: refused")})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "logs", "error")))

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestPrometheusHooks_WithClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/actions") {
			w.WriteHeader(http.StatusTooManyRequests)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	client, err := auditlogs.New("xoxp-1",
		auditlogs.WithBaseURL(server.URL+"/"),
		auditlogs.WithHooks(NewPrometheusHooks(reg)),
	)
	require.NoError(t, err)

	_, err = client.Schemas(context.Background())
	require.NoError(t, err)
	_, err = client.Actions(context.Background())
	require.NoError(t, err)

	expected := `
# HELP slackaudit_requests_total Total number of Audit Logs API calls by method, endpoint and status
# TYPE slackaudit_requests_total counter
slackaudit_requests_total{endpoint="actions",method="GET",status="429"} 1
slackaudit_requests_total{endpoint="schemas",method="GET",status="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "slackaudit_requests_total"))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RequestsTotal.WithLabelValues("GET", "schemas", "200").Inc()

	path := filepath.Join(t.TempDir(), "slackaudit.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `slackaudit_requests_total{endpoint="schemas",method="GET",status="200"} 1`)
}
