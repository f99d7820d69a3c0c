package httpclient

import (
	"crypto/tls"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "unset", value: "", expected: 5 * time.Second},
		{name: "integer seconds", value: "12", expected: 12 * time.Second},
		{name: "duration string", value: "1m30s", expected: 90 * time.Second},
		{name: "invalid", value: "soon", expected: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_HTTPCLIENT_DURATION", tt.value)
			assert.Equal(t, tt.expected, getEnvDuration("TEST_HTTPCLIENT_DURATION", 5*time.Second))
		})
	}
}

func TestDefaultConfig_TimeoutFromEnv(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "45")
	cfg := DefaultConfig()
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestParseProxyURL(t *testing.T) {
	u, err := ParseProxyURL("localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", u.String())

	u, err = ParseProxyURL("https://proxy.internal:3128")
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)

	u, err = ParseProxyURL("  ")
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = ParseProxyURL("http://")
	assert.Error(t, err)
}

func TestProxyFunc(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://api.slack.com/audit/v1/logs", nil)
	require.NoError(t, err)

	t.Run("explicit proxy wins", func(t *testing.T) {
		t.Setenv("HTTPS_PROXY", "http://env-proxy:8080")
		fn, err := ProxyFunc(ClientConfig{ProxyURL: "localhost:9000", TrustEnvironment: true})
		require.NoError(t, err)
		require.NotNil(t, fn)
		u, err := fn(req)
		require.NoError(t, err)
		assert.Equal(t, "localhost:9000", u.Host)
	})

	t.Run("environment ignored unless trusted", func(t *testing.T) {
		fn, err := ProxyFunc(ClientConfig{})
		require.NoError(t, err)
		assert.Nil(t, fn)
	})

	t.Run("environment when trusted", func(t *testing.T) {
		fn, err := ProxyFunc(ClientConfig{TrustEnvironment: true})
		require.NoError(t, err)
		assert.NotNil(t, fn)
	})

	t.Run("invalid explicit proxy", func(t *testing.T) {
		_, err := ProxyFunc(ClientConfig{ProxyURL: "http://"})
		assert.Error(t, err)
	})
}

func TestNewHTTPClient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 7 * time.Second
	cfg.TLSConfig = &tls.Config{ServerName: "audit.example"}

	client, err := NewHTTPClient(&cfg)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.TLSClientConfig)
	assert.Equal(t, "audit.example", transport.TLSClientConfig.ServerName)
	assert.NotSame(t, cfg.TLSConfig, transport.TLSClientConfig)
	assert.Nil(t, transport.Proxy)
}

func TestNewDefaultHTTPClient(t *testing.T) {
	assert.NotNil(t, NewDefaultHTTPClient())
}

func TestLoadTLSConfig(t *testing.T) {
	t.Run("zero options", func(t *testing.T) {
		cfg, err := LoadTLSConfig(TLSOptions{})
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("server name and skip verify", func(t *testing.T) {
		cfg, err := LoadTLSConfig(TLSOptions{ServerName: "audit.example", InsecureSkipVerify: true})
		require.NoError(t, err)
		assert.Equal(t, "audit.example", cfg.ServerName)
		assert.True(t, cfg.InsecureSkipVerify)
		assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	})

	t.Run("missing CA file", func(t *testing.T) {
		_, err := LoadTLSConfig(TLSOptions{CAFile: filepath.Join(t.TempDir(), "missing.pem")})
		assert.Error(t, err)
	})

	t.Run("CA file without certificates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))
		_, err := LoadTLSConfig(TLSOptions{CAFile: path})
		assert.ErrorContains(t, err, "no certificates")
	})

	t.Run("cert without key", func(t *testing.T) {
		_, err := LoadTLSConfig(TLSOptions{CertFile: "client.pem"})
		assert.ErrorContains(t, err, "both cert_file and key_file")
	})
}
