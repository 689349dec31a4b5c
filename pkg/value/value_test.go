package value

import (
	"math"
	"testing"

	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		text string
	}{
		{"null", Null, "null"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"integer number", Number(4), "4"},
		{"fraction", Number(0.25), "0.25"},
		{"negative", Number(-1.5e-7), "-1.5e-07"},
		{"nan", Number(math.NaN()), "NaN"},
		{"inf", Number(math.Inf(-1)), "-Inf"},
		{"plain string", String("hello"), "hello"},
		{"string with spaces", String("a b c"), "a b c"},
		{"empty string", String(""), `""`},
		{"string that looks like null", String("null"), `"null"`},
		{"string that looks like bool", String("true"), `"true"`},
		{"string that looks like number", String("1.0"), `"1.0"`},
		{"string that looks like infinity", String("Infinity"), `"Infinity"`},
		{"string with tab", String("a\tb"), `"a\tb"`},
		{"string with newline", String("a\nb"), `"a\nb"`},
		{"string with leading quote", String(`"quoted"`), `"\"quoted\""`},
		{"string with inner quote", String(`say "hi"`), `say "hi"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := tt.v.Text()
			assert.Equal(t, tt.text, text)

			parsed, err := Parse(text)
			require.NoError(t, err)
			assert.True(t, tt.v.Equal(parsed), "expected %v, got %v", tt.v, parsed)
		})
	}
}

func TestParseMalformedQuote(t *testing.T) {
	_, err := Parse(`"unterminated`)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestParseOutOfRangeNumber(t *testing.T) {
	v, err := Parse("1e999")
	require.NoError(t, err)
	n, ok := v.AsNumber()
	require.True(t, ok)
	assert.True(t, math.IsInf(n, 1))
}

func TestOf(t *testing.T) {
	v, err := Of(int32(7))
	require.NoError(t, err)
	n, ok := v.AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)

	v, err = Of(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	_, err = Of([]int{1})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestEqualDistinguishesKinds(t *testing.T) {
	assert.False(t, String("1").Equal(Number(1)))
	assert.False(t, Null.Equal(String("")))
	assert.False(t, Bool(true).Equal(Bool(false)))
	assert.True(t, Null.Equal(Value{}))
}

func TestJSON(t *testing.T) {
	values := []Value{Null, Bool(true), Number(2.5), String("x\ty")}

	data, err := json.Marshal(values)
	require.NoError(t, err)
	assert.Equal(t, `[null,true,2.5,"x\ty"]`, string(data))

	var decoded []Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, len(values))
	for i := range values {
		assert.True(t, values[i].Equal(decoded[i]), "index %d", i)
	}

	_, err = json.Marshal(Number(math.NaN()))
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "number", Number(1).Kind().String())
	assert.Equal(t, "null", Null.Kind().String())
}
