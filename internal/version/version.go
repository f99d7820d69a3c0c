// Package version exposes build metadata injected via -ldflags.
//
//	go build -ldflags "-X slackaudit/internal/version.Version=v1.2.0 \
//	  -X slackaudit/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X slackaudit/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build metadata. Overridden at link time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a single human-readable line describing the build.
func Info() string {
	return fmt.Sprintf("slackaudit %s (commit: %s, built: %s, %s %s/%s)",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// GoVersion returns the Go runtime version without the "go" prefix, e.g. "1.26.1".
func GoVersion() string {
	return strings.TrimPrefix(runtime.Version(), "go")
}
