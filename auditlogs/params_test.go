package auditlogs

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Merge(t *testing.T) {
	base := Params{"a": String("1"), "b": Int(2)}
	merged := base.Merge(Params{"b": nil, "c": Bool(true)}, Params{"c": Float(1.5)})

	assert.Equal(t, Params{"a": String("1"), "b": nil, "c": Float(1.5)}, merged)
	assert.Equal(t, Params{"a": String("1"), "b": Int(2)}, base, "receiver must not be modified")
}

func TestParams_Compact(t *testing.T) {
	assert.Nil(t, Params(nil).Compact())
	assert.Nil(t, Params{"a": nil}.Compact())
	assert.Equal(t, Params{"b": Int(1)}, Params{"a": nil, "b": Int(1)}.Compact())
}

func TestParams_Values(t *testing.T) {
	p := Params{
		"s":    String("hello world"),
		"i":    Int(-5),
		"f":    Float(2.25),
		"b":    Bool(false),
		"skip": nil,
	}
	want := url.Values{
		"s": {"hello world"},
		"i": {"-5"},
		"f": {"2.25"},
		"b": {"false"},
	}
	assert.Equal(t, want, p.Values())
}

func TestParams_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Params{"s": String("x"), "i": Int(1), "f": Float(0.1), "b": Bool(true), "n": nil})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"x","i":1,"f":0.1,"b":true}`, string(data))
}

func TestLogsFilter_Params(t *testing.T) {
	t.Run("unset filters are nil", func(t *testing.T) {
		p := LogsFilter{}.Params()
		assert.Len(t, p, 6)
		assert.Nil(t, p.Compact())
	})

	t.Run("set filters are typed", func(t *testing.T) {
		p := LogsFilter{
			Latest: Ptr(int64(10)),
			Limit:  Ptr(200),
			Actor:  Ptr("U1"),
		}.Params().Compact()
		assert.Equal(t, Params{"latest": Int(10), "limit": Int(200), "actor": String("U1")}, p)
	})
}
