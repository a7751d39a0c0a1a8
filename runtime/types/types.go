// Package types provides runtime value types for Prisma Bulk.
package types

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind identifies the scalar variant held by a Value
type Kind int

const (
	// KindNull is the absent value
	KindNull Kind = iota
	// KindText is a string value
	KindText
	// KindInteger is a 64-bit signed integer
	KindInteger
	// KindFloat is a 64-bit float
	KindFloat
	// KindBoolean is a boolean
	KindBoolean
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged scalar attribute value
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// Null returns the null value
func Null() Value { return Value{} }

// Text creates a text value
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Int creates an integer value
func Int(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float creates a float value
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool creates a boolean value
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Kind returns the variant of v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsText returns the string payload and whether v is text
func (v Value) AsText() (string, bool) { return v.s, v.kind == KindText }

// AsInt returns the integer payload and whether v is an integer
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInteger }

// AsFloat returns the float payload and whether v is a float
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsBool returns the boolean payload and whether v is a boolean
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBoolean }

// Driver returns the value in a form accepted by database/sql drivers
func (v Value) Driver() driver.Value {
	switch v.kind {
	case KindText:
		return v.s
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindBoolean:
		return v.b
	default:
		return nil
	}
}

// Value implements driver.Valuer so a Value can be passed directly as a query argument
func (v Value) Value() (driver.Value, error) {
	return v.Driver(), nil
}

// Equal reports whether two values have the same kind and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == o.s
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBoolean:
		return v.b == o.b
	default:
		return true
	}
}

// String renders the value for logs and CLI output
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return "NULL"
	}
}

// FromAny converts a Go or driver value into a Value.
// Unsupported types are rendered as text.
func FromAny(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint:
		return fromUint(uint64(t))
	case uint64:
		return fromUint(t)
	case uintptr:
		return fromUint(uint64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case bool:
		return Bool(t)
	case time.Time:
		return Text(t.UTC().Format(time.RFC3339Nano))
	default:
		return Text(fmt.Sprint(t))
	}
}

// fromUint keeps values past the int64 range exact as decimal text
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Text(strconv.FormatUint(u, 10))
	}
	return Int(int64(u))
}
