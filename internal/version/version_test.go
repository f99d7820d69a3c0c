package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.True(t, strings.HasPrefix(info, "slackaudit "+Version))
	assert.Contains(t, info, "commit: "+Commit)
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestGoVersion(t *testing.T) {
	v := GoVersion()
	assert.NotEmpty(t, v)
	assert.False(t, strings.HasPrefix(v, "go"))
}
