package auditlogs

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the Audit Logs API root. Paths are appended verbatim.
	DefaultBaseURL = "https://api.slack.com/audit/v1/"
	// DefaultTimeout bounds each request made through a private session.
	DefaultTimeout = 30 * time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. It should end with a slash.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout of private sessions.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTLSConfig sets the TLS configuration of private sessions.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

// WithProxy routes private sessions through the given proxy URL.
func WithProxy(proxy string) Option {
	return func(c *Client) {
		c.proxy = proxy
	}
}

// WithTrustEnv makes private sessions honour proxy environment variables.
func WithTrustEnv(trust bool) Option {
	return func(c *Client) {
		c.trustEnv = trust
	}
}

// WithBasicAuth attaches basic credentials to private sessions.
// They are only sent when a request carries no Authorization header.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.basicAuth = &BasicAuth{Username: username, Password: password}
	}
}

// WithSession makes the client borrow an executor. The client never closes it
// and falls back to private sessions once it reports Closed.
func WithSession(executor RequestExecutor) Option {
	return func(c *Client) {
		c.session = executor
	}
}

// WithHTTPClient is shorthand for WithSession(WrapHTTPClient(client)).
func WithHTTPClient(client *http.Client) Option {
	return WithSession(WrapHTTPClient(client))
}

// WithDefaultHeaders adds headers sent with every call. Per-call headers override them.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithUserAgentPrefix prepends a token to the User-Agent.
func WithUserAgentPrefix(prefix string) Option {
	return func(c *Client) {
		c.userAgentPrefix = prefix
	}
}

// WithUserAgentSuffix appends a token to the User-Agent.
func WithUserAgentSuffix(suffix string) Option {
	return func(c *Client) {
		c.userAgentSuffix = suffix
	}
}

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHooks installs request observers.
func WithHooks(hooks Hooks) Option {
	return func(c *Client) {
		c.hooks = hooks
	}
}

// CallOption configures a single call.
type CallOption func(*callConfig)

type callConfig struct {
	method  string
	query   Params
	body    Params
	headers map[string]string
}

// WithMethod sets the HTTP method. Defaults to GET.
func WithMethod(method string) CallOption {
	return func(cc *callConfig) {
		cc.method = method
	}
}

// WithQueryParams adds query parameters. Nil values are not sent.
// For Logs they are merged after the named filters, so a nil value removes a filter.
func WithQueryParams(params Params) CallOption {
	return func(cc *callConfig) {
		cc.query = cc.query.Merge(params)
	}
}

// WithBodyParams sets a JSON body. The request carries no body without it.
func WithBodyParams(params Params) CallOption {
	return func(cc *callConfig) {
		if params == nil {
			cc.body = nil
			return
		}
		cc.body = cc.body.Merge(params)
	}
}

// WithHeaders adds per-call headers. Authorization cannot be overridden.
func WithHeaders(headers map[string]string) CallOption {
	return func(cc *callConfig) {
		if cc.headers == nil {
			cc.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cc.headers[k] = v
		}
	}
}

func newCallConfig(opts []CallOption) callConfig {
	cc := callConfig{method: http.MethodGet}
	for _, opt := range opts {
		opt(&cc)
	}
	return cc
}
