package auditlogs

import (
	"context"
	"crypto/tls"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"slackaudit/internal/httpclient"
)

// Client calls the Audit Logs API with an org-level user token.
// It is safe for concurrent use once built.
type Client struct {
	token           string
	baseURL         string
	timeout         time.Duration
	tlsConfig       *tls.Config
	proxy           string
	trustEnv        bool
	basicAuth       *BasicAuth
	session         RequestExecutor
	defaultHeaders  map[string]string
	userAgentPrefix string
	userAgentSuffix string
	logger          *slog.Logger
	hooks           Hooks

	newExecutor func() (RequestExecutor, error)
}

// New creates a Client. token is required; a malformed proxy URL is rejected here.
func New(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrEmptyToken
	}
	c := &Client{
		token:          token,
		baseURL:        DefaultBaseURL,
		timeout:        DefaultTimeout,
		defaultHeaders: map[string]string{},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if _, err := httpclient.ParseProxyURL(c.proxy); err != nil {
		return nil, newInvalidRequestError("invalid proxy url", err)
	}

	ua := UserAgent(c.userAgentPrefix, c.userAgentSuffix)
	for k := range c.defaultHeaders {
		if strings.EqualFold(k, headerUserAgent) {
			ua = ""
			break
		}
	}
	if ua != "" {
		c.defaultHeaders[headerUserAgent] = ua
	}

	c.newExecutor = func() (RequestExecutor, error) {
		return NewSession(SessionConfig{
			Timeout:   c.timeout,
			TLSConfig: c.tlsConfig,
			Proxy:     c.proxy,
			TrustEnv:  c.trustEnv,
			BasicAuth: c.basicAuth,
		})
	}
	return c, nil
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DefaultHeaders returns a copy of the headers sent with every call.
func (c *Client) DefaultHeaders() map[string]string {
	return maps.Clone(c.defaultHeaders)
}

// Schemas returns information about the kind of objects the API returns.
//
// https://api.slack.com/admins/audit-logs#the_schemas_endpoint
func (c *Client) Schemas(ctx context.Context, opts ...CallOption) (*Response, error) {
	return c.APICall(ctx, "schemas", opts...)
}

// Actions returns the actions the API can return as audit events.
//
// https://api.slack.com/admins/audit-logs#the_actions_endpoint
func (c *Client) Actions(ctx context.Context, opts ...CallOption) (*Response, error) {
	return c.APICall(ctx, "actions", opts...)
}

// Logs returns audit entries matching filter. Params given through
// WithQueryParams are merged on top of the filter; absent values are dropped.
//
// https://api.slack.com/admins/audit-logs#how_to_call_the_audit_logs_api
func (c *Client) Logs(ctx context.Context, filter LogsFilter, opts ...CallOption) (*Response, error) {
	cc := newCallConfig(opts)
	cc.query = filter.Params().Merge(cc.query).Compact()
	return c.call(ctx, "logs", cc)
}

// APICall performs a request against baseURL+path.
func (c *Client) APICall(ctx context.Context, path string, opts ...CallOption) (*Response, error) {
	return c.call(ctx, path, newCallConfig(opts))
}

func (c *Client) call(ctx context.Context, path string, cc callConfig) (*Response, error) {
	method := strings.ToUpper(cc.method)
	if method == "" {
		method = http.MethodGet
	}
	return c.performHTTPRequest(ctx, httpRequest{
		method:   method,
		endpoint: path,
		url:      c.baseURL + path,
		query:    cc.query.Compact(),
		body:     cc.body,
		headers:  buildRequestHeaders(c.token, c.defaultHeaders, cc.headers),
	})
}
