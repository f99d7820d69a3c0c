package auditlogs

import (
	"net/http"
	"runtime"
	"strings"

	"slackaudit/internal/version"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"

	contentTypeJSON = "application/json;charset=utf-8"
	redactedValue   = "(redacted)"
)

// UserAgent builds the User-Agent value sent with every request:
//
//	[prefix ]Go/<go version> slackaudit/<version> <os>/<arch>[ suffix]
func UserAgent(prefix, suffix string) string {
	parts := make([]string, 0, 5)
	if p := strings.TrimSpace(prefix); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts,
		"Go/"+version.GoVersion(),
		"slackaudit/"+version.Version,
		runtime.GOOS+"/"+runtime.GOARCH,
	)
	if s := strings.TrimSpace(suffix); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// buildRequestHeaders merges default and per-call headers (per-call wins)
// and always sets the bearer token last.
func buildRequestHeaders(token string, defaults, additional map[string]string) http.Header {
	h := make(http.Header, len(defaults)+len(additional)+1)
	for k, v := range defaults {
		h.Set(k, v)
	}
	for k, v := range additional {
		h.Set(k, v)
	}
	h.Set(headerAuthorization, "Bearer "+token)
	return h
}

// redactHeaders flattens headers for logging with the Authorization value hidden.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if strings.EqualFold(k, headerAuthorization) {
			out[k] = redactedValue
			continue
		}
		out[k] = strings.Join(vv, ", ")
	}
	return out
}
