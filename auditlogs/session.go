package auditlogs

import (
	"crypto/tls"
	"net/http"
	"sync/atomic"
	"time"

	"slackaudit/internal/httpclient"
)

// RequestExecutor performs HTTP requests on behalf of the client.
//
// A Client given an executor through WithSession borrows it: the executor is
// reused while Closed reports false and is never closed by the client.
// Without one, the client creates a private Session per call and closes it
// before the call returns.
type RequestExecutor interface {
	Do(req *http.Request) (*http.Response, error)
	Closed() bool
	Close() error
}

// BasicAuth holds HTTP basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// Timeout bounds each request, including reading the body. Zero keeps the transport default.
	Timeout time.Duration
	// TLSConfig is used for HTTPS connections.
	TLSConfig *tls.Config
	// Proxy is an explicit proxy URL ("host:port" or a full URL).
	Proxy string
	// TrustEnv honours proxy environment variables when Proxy is empty.
	TrustEnv bool
	// BasicAuth is applied to requests that carry no Authorization header.
	BasicAuth *BasicAuth
}

// Session is the default RequestExecutor, backed by an *http.Client.
// It is safe for concurrent use.
type Session struct {
	client *http.Client
	auth   *BasicAuth
	owned  bool
	closed atomic.Bool
}

var _ RequestExecutor = (*Session)(nil)

// NewSession builds a Session with its own transport.
func NewSession(cfg SessionConfig) (*Session, error) {
	hc := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
		hc.ResponseHeaderTimeout = cfg.Timeout
	}
	hc.TLSConfig = cfg.TLSConfig
	hc.ProxyURL = cfg.Proxy
	hc.TrustEnvironment = cfg.TrustEnv

	client, err := httpclient.NewHTTPClient(&hc)
	if err != nil {
		return nil, err
	}
	return &Session{client: client, auth: cfg.BasicAuth, owned: true}, nil
}

// WrapHTTPClient adapts an existing *http.Client. Closing the Session marks it
// closed but leaves the caller's client and transport untouched.
func WrapHTTPClient(client *http.Client) *Session {
	if client == nil {
		client = http.DefaultClient
	}
	return &Session{client: client}
}

// Do sends the request. It fails with ErrSessionClosed after Close.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	if s.auth != nil && req.Header.Get(headerAuthorization) == "" {
		req = req.Clone(req.Context())
		req.SetBasicAuth(s.auth.Username, s.auth.Password)
	}
	return s.client.Do(req)
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Close marks the session closed and releases idle connections of a transport
// it created. Safe to call multiple times.
func (s *Session) Close() error {
	if s.closed.CompareAndSwap(false, true) && s.owned {
		s.client.CloseIdleConnections()
	}
	return nil
}
