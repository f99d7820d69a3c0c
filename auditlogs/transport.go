package auditlogs

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
)

// maxDecodedBodySize caps decompressed response bodies.
const maxDecodedBodySize = 64 << 20

// httpRequest is one fully assembled call.
type httpRequest struct {
	method   string
	endpoint string
	url      string
	query    Params
	body     Params
	headers  http.Header
}

// performHTTPRequest sends req through the borrowed session when it is open,
// or through a private session that is closed before returning.
// Errors from the executor are returned as-is.
func (c *Client) performHTTPRequest(ctx context.Context, req httpRequest) (*Response, error) {
	var payload []byte
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, newInvalidRequestError("failed to encode request body", err)
		}
		payload = b
		req.headers.Set(headerContentType, contentTypeJSON)
	}

	target, err := withQuery(req.url, req.query)
	if err != nil {
		return nil, newInvalidRequestError("invalid request url", err)
	}

	info := RequestInfo{
		RequestID: uuid.NewString(),
		Method:    req.method,
		Endpoint:  req.endpoint,
		URL:       req.url,
	}
	c.logRequest(ctx, info, req, payload)

	executor, owned, err := c.acquireExecutor()
	if err != nil {
		return nil, err
	}
	if owned {
		defer func() {
			if closeErr := executor.Close(); closeErr != nil {
				c.logger.WarnContext(ctx, "failed to close session", "request_id", info.RequestID, "error", closeErr)
			}
		}()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, reader)
	if err != nil {
		return nil, newInvalidRequestError("failed to create request", err)
	}
	httpReq.Header = req.headers

	ctx = c.hooks.start(ctx, info)
	start := time.Now()
	result := ResponseInfo{RequestInfo: info}
	defer func() {
		result.Duration = time.Since(start)
		c.hooks.end(ctx, result)
	}()

	httpResp, err := executor.Do(httpReq)
	if err != nil {
		result.Err = err
		return nil, err
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()
	result.StatusCode = httpResp.StatusCode

	rawBody, err := c.readBody(ctx, info, httpResp)
	if err != nil {
		result.Err = err
		return nil, err
	}

	resp, err := newResponse(req.url, httpResp.StatusCode, rawBody, httpResp.Header)
	if err != nil {
		result.Err = err
		return nil, err
	}
	c.logResponse(ctx, info, resp)
	return resp, nil
}

// acquireExecutor returns the executor for one call and whether the caller owns it.
func (c *Client) acquireExecutor() (RequestExecutor, bool, error) {
	if c.session != nil && !c.session.Closed() {
		return c.session, false, nil
	}
	executor, err := c.newExecutor()
	if err != nil {
		return nil, false, newInvalidRequestError("failed to create session", err)
	}
	return executor, true, nil
}

// readBody returns the response text, or "" when the body cannot be read as text.
func (c *Client) readBody(ctx context.Context, info RequestInfo, res *http.Response) (string, error) {
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}

	decoded, ok := decodeContent(data, res.Header.Get("Content-Encoding"))
	if ok && isTextBody(res.Header.Get(headerContentType), decoded) {
		return string(decoded), nil
	}

	c.logger.DebugContext(ctx, "no response data returned from the following API call",
		"request_id", info.RequestID,
		"url", info.URL,
		"content_type", res.Header.Get(headerContentType),
		"content_encoding", res.Header.Get("Content-Encoding"),
	)
	return "", nil
}

// decodeContent undoes the Content-Encoding of a response body.
// Returns false for unsupported encodings or corrupt data.
func decodeContent(body []byte, contentEncoding string) ([]byte, bool) {
	encoding := strings.ToLower(strings.TrimSpace(strings.Split(contentEncoding, ",")[0]))

	var reader io.Reader
	switch encoding {
	case "", "identity":
		return body, true
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, false
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(bytes.NewReader(body))
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(bytes.NewReader(body))
	default:
		return nil, false
	}

	out, err := io.ReadAll(io.LimitReader(reader, maxDecodedBodySize+1))
	if err != nil || len(out) > maxDecodedBodySize {
		return nil, false
	}
	return out, true
}

// isTextBody reports whether body can be read as UTF-8 text given its media type.
// A missing Content-Type falls back to a UTF-8 validity check.
func isTextBody(contentType string, body []byte) bool {
	if contentType != "" {
		mediaType, params, err := mime.ParseMediaType(contentType)
		if err != nil {
			return false
		}
		if cs := params["charset"]; cs != "" && !strings.EqualFold(cs, "utf-8") && !strings.EqualFold(cs, "us-ascii") {
			return false
		}
		if !isTextMediaType(mediaType) {
			return false
		}
	}
	return utf8.Valid(body)
}

func isTextMediaType(mediaType string) bool {
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case strings.HasSuffix(mediaType, "+json"), strings.HasSuffix(mediaType, "+xml"):
		return true
	}
	switch mediaType {
	case "application/json", "application/javascript", "application/xml", "application/x-www-form-urlencoded":
		return true
	}
	return false
}

// withQuery appends present params to rawURL, keeping any query it already has.
func withQuery(rawURL string, params Params) (string, error) {
	q := params.Values()
	if len(q) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	merged := u.Query()
	for k, vv := range q {
		merged[k] = vv
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}

func (c *Client) logRequest(ctx context.Context, info RequestInfo, req httpRequest, payload []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	c.logger.DebugContext(ctx, "sending a request",
		"request_id", info.RequestID,
		"method", req.method,
		"url", req.url,
		"params", req.query.Values().Encode(),
		"body", string(payload),
		"headers", redactHeaders(req.headers),
	)
}

func (c *Client) logResponse(ctx context.Context, info RequestInfo, resp *Response) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	c.logger.DebugContext(ctx, "received the following response",
		"request_id", info.RequestID,
		"status", resp.StatusCode,
		"headers", redactHeaders(resp.Headers),
		"body", resp.RawBody,
	)
}
