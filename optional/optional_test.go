package optional

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf_IsPresent(t *testing.T) {
	v := Of("hello")

	assert.True(t, v.IsPresent())

	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, "hello", got)
}

func TestEmpty_IsAbsent(t *testing.T) {
	v := Empty[string]()

	assert.False(t, v.IsPresent())

	got, ok := v.Get()
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestZeroValue_IsEmpty(t *testing.T) {
	// The zero value must behave exactly like Empty()
	var v Value[int]

	assert.False(t, v.IsPresent())
	assert.Equal(t, 42, v.OrElse(42))
}

func TestOf_ZeroValuePayload(t *testing.T) {
	// An empty string is a present value, not absence
	v := Of("")

	assert.True(t, v.IsPresent())
	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, "", got)
}

func TestMustGet(t *testing.T) {
	assert.Equal(t, 7, Of(7).MustGet())

	assert.PanicsWithValue(t, "optional: MustGet on empty value", func() {
		Empty[int]().MustGet()
	})
}

func TestOrElse(t *testing.T) {
	assert.Equal(t, "a", Of("a").OrElse("b"))
	assert.Equal(t, "b", Empty[string]().OrElse("b"))
}

func TestMap(t *testing.T) {
	upper := Map(Of("hello"), strings.ToUpper)
	require.True(t, upper.IsPresent())
	assert.Equal(t, "HELLO", upper.MustGet())

	length := Map(Of("hello"), func(s string) int { return len(s) })
	assert.Equal(t, 5, length.MustGet())

	assert.False(t, Map(Empty[string](), strings.ToUpper).IsPresent())
}

func TestString(t *testing.T) {
	assert.Equal(t, "empty", Empty[int]().String())
	assert.Equal(t, "present(40)", Of(40).String())
}

func TestJSON_RoundTrip(t *testing.T) {
	type wrapper struct {
		Payload Value[string] `json:"payload"`
	}

	data, err := json.Marshal(wrapper{Payload: Of("hello")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":"hello"}`, string(data))

	var decoded wrapper
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "hello", decoded.Payload.MustGet())
}

func TestJSON_EmptyIsNull(t *testing.T) {
	type wrapper struct {
		Payload Value[string] `json:"payload"`
	}

	data, err := json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":null}`, string(data))

	var decoded wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"payload":null}`), &decoded))
	assert.False(t, decoded.Payload.IsPresent())
}
