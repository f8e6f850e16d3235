package event

import (
	"fmt"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()
	ev, err := New(API)
	require.NoError(t, err)
	require.NoError(t, ev.AddHeader(StackPush, "X-List", "first"))
	require.NoError(t, ev.AddHeader(StackPush, "X-List", "second"))
	require.NoError(t, ev.SetBody("payload"))

	doc, err := ev.SerializeJSON()
	require.NoError(t, err)

	parsed, err := ParseJSON(doc)
	require.NoError(t, err)
	assert.Equal(t, API, parsed.Type)
	assert.Equal(t, "API", parsed.GetHeader("Event-Name"))
	assert.Equal(t, "payload", parsed.Body)
	assert.Equal(t, "payload", parsed.GetHeader("_body"))
	assert.Equal(t, "first", parsed.GetHeaderIdx("X-List", 0))
	assert.Equal(t, "second", parsed.GetHeaderIdx("X-List", 1))
	assert.Equal(t, "ARRAY::first|:second", parsed.GetHeader("X-List"))
}

func TestSerializeJSONShape(t *testing.T) {
	t.Parallel()
	ev, err := New(Heartbeat)
	require.NoError(t, err)
	require.NoError(t, ev.AddHeader(StackBottom, "X-Scalar", "v"))
	require.NoError(t, ev.AddHeader(StackPush, "X-List", "a"))
	require.NoError(t, ev.SetBody("b"))

	doc, err := ev.SerializeJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, jsoniter.ConfigDefault.UnmarshalFromString(doc, &decoded))
	assert.Equal(t, "HEARTBEAT", decoded["Event-Name"])
	assert.Equal(t, "v", decoded["X-Scalar"])
	assert.Equal(t, []any{"a"}, decoded["X-List"], "one-element arrays stay arrays")
	assert.Equal(t, "b", decoded["_body"])
	assert.Equal(t, "1", decoded["Content-Length"], "Content-Length is a string, not a number")

	// Headers come out in insertion order.
	assert.Less(t, strings.Index(doc, "Event-Name"), strings.Index(doc, "X-Scalar"))
	assert.Less(t, strings.Index(doc, "X-Scalar"), strings.Index(doc, "X-List"))
}

func TestParseJSONFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
	}{
		{"array root", `["a"]`},
		{"string root", `"a"`},
		{"number member", `{"X-Num": 7}`},
		{"bool member", `{"X-Bool": true}`},
		{"object member", `{"X-Obj": {}}`},
		{"number in array", `{"X-List": ["a", 7]}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseJSON(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestParseJSONUnknownEventName(t *testing.T) {
	t.Parallel()
	parsed, err := ParseJSON(`{"Event-Name": "NOT_IN_THE_TABLE", "X-K": "v"}`)
	require.NoError(t, err)
	assert.Equal(t, Clone, parsed.Type)
	assert.Equal(t, "NOT_IN_THE_TABLE", parsed.GetHeader("Event-Name"))
	assert.Equal(t, "v", parsed.GetHeader("X-K"))
}

func TestParseJSONHeaderLimits(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i <= maxJSONHeaders; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `"X-%d": "v"`, i)
	}
	b.WriteByte('}')
	_, err := ParseJSON(b.String())
	assert.Error(t, err)

	longName := strings.Repeat("n", MaxHeaderNameLength+1)
	_, err = ParseJSON(`{"` + longName + `": "v"}`)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestParseJSONSubclass(t *testing.T) {
	t.Parallel()
	parsed, err := ParseJSON(`{"Event-Name": "CUSTOM", "Event-Subclass": "sofia::register"}`)
	require.NoError(t, err)
	assert.Equal(t, Custom, parsed.Type)
	assert.Equal(t, "sofia::register", parsed.Subclass)
}
