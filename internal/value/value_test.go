package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON_ObjectWithArray(t *testing.T) {
	v, err := FromJSON([]byte(`{"data":[{"protocol":"Uniswap V3","amount_usd":100}],"count":1}`))
	require.NoError(t, err)

	data, ok := v.Get("data")
	require.True(t, ok)
	assert.Equal(t, KindSeq, data.Kind())
	assert.Equal(t, 1, data.Len())

	first, ok := data.Index(0)
	require.True(t, ok)
	protocol, ok := first.Get("protocol")
	require.True(t, ok)
	s, ok := protocol.AsString()
	require.True(t, ok)
	assert.Equal(t, "Uniswap V3", s)
}

func TestGet_MissingKeyIsTotal(t *testing.T) {
	v, err := FromJSON([]byte(`{"a":1}`))
	require.NoError(t, err)

	missing, ok := v.Get("b")
	assert.False(t, ok)
	assert.True(t, missing.IsNull())
}

func TestIndex_OutOfRangeIsTotal(t *testing.T) {
	v, err := FromJSON([]byte(`[1,2,3]`))
	require.NoError(t, err)

	_, ok := v.Index(10)
	assert.False(t, ok)

	_, ok = v.Index(-1)
	assert.False(t, ok)
}

func TestGet_OnNonMapIsTotal(t *testing.T) {
	v := Number(5)
	_, ok := v.Get("anything")
	assert.False(t, ok)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Null.IsEmpty())
	assert.True(t, String("").IsEmpty())
	assert.False(t, String("x").IsEmpty())
	assert.True(t, Seq(nil).IsEmpty())
	assert.True(t, Map(nil).IsEmpty())
	assert.False(t, Number(0).IsEmpty())
	assert.False(t, Bool(false).IsEmpty())
}

func TestCanonical_SortsKeysAndIsStable(t *testing.T) {
	a := Map(map[string]Value{
		"b": Number(2),
		"a": Number(1),
	})
	b := Map(map[string]Value{
		"a": Number(1),
		"b": Number(2),
	})
	assert.Equal(t, Canonical(a), Canonical(b))
	assert.Equal(t, `{"a":1,"b":2}`, Canonical(a))
}

func TestCanonical_Nested(t *testing.T) {
	v, err := FromJSON([]byte(`{"exploits":[{"protocol":"Curve","chain":"Ethereum"}]}`))
	require.NoError(t, err)
	got := Canonical(v)
	assert.Contains(t, got, `"exploits":`)
	assert.Contains(t, got, `"protocol":"Curve"`)
}

func TestGoType(t *testing.T) {
	assert.Equal(t, "object", GoType(Map(nil)))
	assert.Equal(t, "array", GoType(Seq(nil)))
	assert.Equal(t, "string", GoType(String("x")))
	assert.Equal(t, "number", GoType(Number(1)))
	assert.Equal(t, "boolean", GoType(Bool(true)))
	assert.Equal(t, "null", GoType(Null))
}
