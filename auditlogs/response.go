package auditlogs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Response is the envelope returned for every API call.
type Response struct {
	// URL is the request URL without the query string.
	URL        string
	StatusCode int
	// RawBody is the response text; empty when the body was not text-decodable.
	RawBody string
	// Body is the decoded JSON object, empty when RawBody is not a JSON object.
	Body    map[string]any
	Headers http.Header
}

// newResponse builds the envelope, decoding RawBody when it is JSON.
// Non-empty text that is not valid JSON yields an *APIError carrying the
// partially built response.
func newResponse(url string, statusCode int, rawBody string, headers http.Header) (*Response, error) {
	resp := &Response{
		URL:        url,
		StatusCode: statusCode,
		RawBody:    rawBody,
		Body:       map[string]any{},
		Headers:    headers,
	}
	if strings.TrimSpace(rawBody) == "" {
		return resp, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(rawBody), &parsed); err != nil {
		return nil, newResponseParseError(resp, err)
	}
	if obj, ok := parsed.(map[string]any); ok {
		resp.Body = obj
	}
	return resp, nil
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get looks up a value in the raw body with a gjson path, e.g. "entries.#" or
// "response_metadata.next_cursor".
func (r *Response) Get(path string) gjson.Result {
	return gjson.Get(r.RawBody, path)
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if strings.TrimSpace(r.RawBody) == "" {
		return errors.New("auditlogs: empty response body")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(r.RawBody)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("auditlogs: decode %s: %w", r.URL, err)
	}
	return nil
}

// LogsBody decodes the body of a logs call.
func (r *Response) LogsBody() (*LogsResponse, error) {
	var out LogsResponse
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SchemasBody decodes the body of a schemas call.
func (r *Response) SchemasBody() (*SchemasResponse, error) {
	var out SchemasResponse
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActionsBody decodes the body of an actions call.
func (r *Response) ActionsBody() (*ActionsResponse, error) {
	var out ActionsResponse
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
