package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want Value
	}{
		{"nil", nil, Null()},
		{"string", "abc", Text("abc")},
		{"bytes", []byte("raw"), Text("raw")},
		{"int", 7, Int(7)},
		{"int32", int32(-3), Int(-3)},
		{"int64", int64(1 << 40), Int(1 << 40)},
		{"uint", uint(12), Int(12)},
		{"uint64", uint64(math.MaxInt64), Int(math.MaxInt64)},
		{"uint64 past int64", uint64(math.MaxUint64), Text("18446744073709551615")},
		{"uintptr", uintptr(5), Int(5)},
		{"float", 1.5, Float(1.5)},
		{"bool", true, Bool(true)},
		{"time", ts, Text("2024-01-02T03:04:05Z")},
		{"value passthrough", Int(9), Int(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(FromAny(tt.in)), "got %v", FromAny(tt.in))
		})
	}
}

func TestValueDriver(t *testing.T) {
	assert.Nil(t, Null().Driver())
	assert.Equal(t, "x", Text("x").Driver())
	assert.Equal(t, int64(3), Int(3).Driver())
	assert.Equal(t, 2.5, Float(2.5).Driver())
	assert.Equal(t, false, Bool(false).Driver())

	dv, err := Int(4).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(4), dv)
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Null().Equal(Null()))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.False(t, Text("a").Equal(Text("b")))
	assert.Equal(t, "NULL", Null().String())
	assert.Equal(t, "42", Int(42).String())
}

func TestAttributesOrder(t *testing.T) {
	a := NewAttributes()
	a.Set("b", Int(1))
	a.Set("a", Int(2))
	a.Set("c", Int(3))
	a.Set("b", Int(10))

	assert.Equal(t, []string{"b", "a", "c"}, a.Names())
	v, ok := a.Get("b")
	require.True(t, ok)
	assert.True(t, v.Equal(Int(10)))

	a.Delete("a")
	assert.Equal(t, []string{"b", "c"}, a.Names())
	assert.Equal(t, 2, a.Len())
	assert.False(t, a.Has("a"))
}

func TestAttributesCloneIsIndependent(t *testing.T) {
	a := AttributesOf("name", "x", "age", 3)
	c := a.Clone()
	c.Set("name", Text("y"))
	c.Set("extra", Bool(true))

	v, _ := a.Get("name")
	assert.True(t, v.Equal(Text("x")))
	assert.Equal(t, []string{"name", "age"}, a.Names())
	assert.Equal(t, []string{"name", "age", "extra"}, c.Names())
}

func TestNilAttributes(t *testing.T) {
	var a *Attributes
	assert.Equal(t, 0, a.Len())
	assert.Nil(t, a.Names())
	assert.False(t, a.Has("x"))
	assert.Equal(t, 0, a.Clone().Len())
}
