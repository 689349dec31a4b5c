package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectWriterKeepsFieldOrder(t *testing.T) {
	w := NewObjectWriter()
	require.NoError(t, w.WriteField("z", "last-in-alphabet"))
	require.NoError(t, w.WriteField("a", 1))
	require.NoError(t, w.WriteRawField("m", []byte(`{"nested":true}`)))

	assert.Equal(t, `{"z":"last-in-alphabet","a":1,"m":{"nested":true}}`, string(w.Bytes()))
}

func TestObjectWriterEscapesKeys(t *testing.T) {
	w := NewObjectWriter()
	require.NoError(t, w.WriteField("tab\tkey", "v"))

	var decoded map[string]string
	require.NoError(t, Unmarshal(w.Bytes(), &decoded))
	assert.Equal(t, "v", decoded["tab\tkey"])
}

func TestEmptyObject(t *testing.T) {
	assert.Equal(t, "{}", string(NewObjectWriter().Bytes()))
}

func TestEncoderDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode("<a&b>"))
	assert.Equal(t, "\"<a&b>\"\n", buf.String())
}

func TestDecoderTokens(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte(`{"b":1,"a":2}`)))

	var keys []string
	tok, err := dec.Token()
	require.NoError(t, err)
	assert.Equal(t, Delim('{'), tok)
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		_, err = dec.Token()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"b", "a"}, keys)
}
