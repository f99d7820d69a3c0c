package auditlogs

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Value is a scalar query or body parameter: String, Int, Float or Bool.
// A nil Value marks the parameter as absent; it is never transmitted.
type Value interface {
	encode() string
}

// String is a string parameter value.
type String string

// Int is an integer parameter value.
type Int int64

// Float is a floating point parameter value.
type Float float64

// Bool is a boolean parameter value.
type Bool bool

func (v String) encode() string { return string(v) }
func (v Int) encode() string    { return strconv.FormatInt(int64(v), 10) }
func (v Float) encode() string  { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (v Bool) encode() string   { return strconv.FormatBool(bool(v)) }

// Params maps parameter names to values.
type Params map[string]Value

// Merge returns a new Params holding p overlaid with each of others in order.
// Later keys win, including nil values, which later filtering drops.
func (p Params) Merge(others ...Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Compact returns a copy of p without absent (nil) values.
// Returns nil when nothing remains.
func (p Params) Compact() Params {
	var out Params
	for k, v := range p {
		if v == nil {
			continue
		}
		if out == nil {
			out = make(Params, len(p))
		}
		out[k] = v
	}
	return out
}

// Values encodes the present parameters as url.Values.
func (p Params) Values() url.Values {
	q := make(url.Values, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		q.Set(k, v.encode())
	}
	return q
}

// MarshalJSON encodes present parameters as a JSON object with native scalar types.
func (p Params) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		m[k] = any(v)
	}
	return json.Marshal(m)
}

// LogsFilter narrows the entries returned by Client.Logs.
// Nil fields are omitted from the query string.
type LogsFilter struct {
	// Latest is the unix timestamp of the most recent event to include (inclusive).
	Latest *int64
	// Oldest is the unix timestamp of the least recent event to include (inclusive).
	Oldest *int64
	// Limit is the number of results to optimistically return, at most 9999.
	Limit *int
	// Action is the name of the action.
	Action *string
	// Actor is the user ID who initiated the action.
	Actor *string
	// Entity is the ID of the target entity of the action.
	Entity *string
}

// Params returns the named filters as Params; unset filters map to nil.
func (f LogsFilter) Params() Params {
	p := Params{
		"latest": nil,
		"oldest": nil,
		"limit":  nil,
		"action": nil,
		"actor":  nil,
		"entity": nil,
	}
	if f.Latest != nil {
		p["latest"] = Int(*f.Latest)
	}
	if f.Oldest != nil {
		p["oldest"] = Int(*f.Oldest)
	}
	if f.Limit != nil {
		p["limit"] = Int(*f.Limit)
	}
	if f.Action != nil {
		p["action"] = String(*f.Action)
	}
	if f.Actor != nil {
		p["actor"] = String(*f.Actor)
	}
	if f.Entity != nil {
		p["entity"] = String(*f.Entity)
	}
	return p
}

// Ptr returns a pointer to v, for populating LogsFilter literals.
func Ptr[T any](v T) *T {
	return &v
}
