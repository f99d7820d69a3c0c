package auditlogs

import (
	"context"
	"time"
)

// RequestInfo describes an outgoing call.
type RequestInfo struct {
	RequestID string
	Method    string
	// Endpoint is the path passed to APICall, e.g. "logs".
	Endpoint string
	URL      string
}

// ResponseInfo describes a finished call. StatusCode is 0 when no response arrived.
type ResponseInfo struct {
	RequestInfo
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Hooks observe every call, e.g. for metrics. Both funcs are optional.
type Hooks struct {
	OnRequestStart func(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd   func(ctx context.Context, info ResponseInfo)
}

func (h Hooks) start(ctx context.Context, info RequestInfo) context.Context {
	if h.OnRequestStart == nil {
		return ctx
	}
	if next := h.OnRequestStart(ctx, info); next != nil {
		return next
	}
	return ctx
}

func (h Hooks) end(ctx context.Context, info ResponseInfo) {
	if h.OnRequestEnd != nil {
		h.OnRequestEnd(ctx, info)
	}
}
