// Package value implements the universal scalar used as the cell type of
// text-encoded tables: a tagged union of null, boolean, number and string.
package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/json"
)

// Kind identifies which member of the union a Value holds
type Kind uint8

const (
	// KindNull is the zero Kind
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged scalar. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

// Null is the null value
var Null = Value{}

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value
func Number(f float64) Value { return Value{kind: KindNumber, n: f} }

// Int returns a numeric value holding i
func Int(i int64) Value { return Value{kind: KindNumber, n: float64(i)} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, s: s} }

// Of converts a Go scalar into a Value. nil maps to Null.
func Of(x interface{}) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(float64(v)), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return Number(float64(v)), nil
	case uint8:
		return Number(float64(v)), nil
	case uint16:
		return Number(float64(v)), nil
	case uint32:
		return Number(float64(v)), nil
	case uint64:
		return Number(float64(v)), nil
	default:
		return Null, errors.Newf(errors.ErrorTypeValidation, "cannot convert %T to a value", x)
	}
}

// Kind returns the member held by v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean and true if v is a boolean
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number and true if v is a number
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string and true if v is a string
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Equal reports whether v and o hold the same member and payload.
// NaN equals NaN so that decoded tables compare equal to their source.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n || (math.IsNaN(v.n) && math.IsNaN(o.n))
	case KindString:
		return v.s == o.s
	default:
		return true
	}
}

// String renders v for humans: strings are unquoted
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return "null"
	}
}

// AppendText appends the text-envelope form of v to dst. Strings are
// written raw unless reading them back would be ambiguous, in which case
// they are Go-quoted.
func (v Value) AppendText(dst []byte) []byte {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(dst, v.b)
	case KindNumber:
		return strconv.AppendFloat(dst, v.n, 'g', -1, 64)
	case KindString:
		if needsQuote(v.s) {
			return strconv.AppendQuote(dst, v.s)
		}
		return append(dst, v.s...)
	default:
		return append(dst, "null"...)
	}
}

// Text returns the text-envelope form of v
func (v Value) Text() string {
	return string(v.AppendText(nil))
}

// Parse reads the text-envelope form produced by AppendText
func Parse(text string) (Value, error) {
	if text == "" {
		return String(""), nil
	}
	if text[0] == '"' {
		s, err := strconv.Unquote(text)
		if err != nil {
			return Null, errors.Wrap(err, errors.ErrorTypeData, "malformed quoted string").
				WithDetail("text", text)
		}
		return String(s), nil
	}
	switch text {
	case "null":
		return Null, nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}
	if f, ok := parseNumber(text); ok {
		return Number(f), nil
	}
	return String(text), nil
}

func parseNumber(text string) (float64, bool) {
	f, err := strconv.ParseFloat(text, 64)
	if err == nil {
		return f, true
	}
	// Out of range literals still read as numbers (±Inf or 0)
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return f, true
	}
	return 0, false
}

func needsQuote(s string) bool {
	if s == "" || s[0] == '"' {
		return true
	}
	if strings.ContainsAny(s, "\t\n\r") {
		return true
	}
	switch s {
	case "null", "true", "false":
		return true
	}
	_, isNumber := parseNumber(s)
	return isNumber
}

// MarshalJSON encodes v as the matching JSON scalar. Non-finite numbers
// have no JSON form and are rejected.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return nil, errors.Newf(errors.ErrorTypeData, "number %v has no JSON form", v.n)
		}
		return strconv.AppendFloat(nil, v.n, 'g', -1, 64), nil
	case KindString:
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON scalar into v
func (v *Value) UnmarshalJSON(data []byte) error {
	var x interface{}
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	decoded, err := Of(x)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "value must be a JSON scalar")
	}
	*v = decoded
	return nil
}
