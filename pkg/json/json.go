// Package json provides JSON serialization backed by goccy/go-json with
// pooled buffers
package json

import (
	"bytes"
	"io"

	"github.com/ajitpratap0/tables/pkg/pool"
	gojson "github.com/goccy/go-json"
)

// Streaming types re-exported for callers that decode order-sensitive
// documents token by token
type (
	Token   = gojson.Token
	Delim   = gojson.Delim
	Decoder = gojson.Decoder
	Encoder = gojson.Encoder
)

// Marshal is a high-performance drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a high-performance drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a high-performance replacement for json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// NewDecoder returns a decoder reading from r
func NewDecoder(r io.Reader) *gojson.Decoder {
	return gojson.NewDecoder(r)
}

// NewEncoder returns an encoder writing to w with HTML escaping disabled
func NewEncoder(w io.Writer) *gojson.Encoder {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// ObjectWriter writes a JSON object field by field, keeping the order in
// which fields are added
type ObjectWriter struct {
	buf    *bytes.Buffer
	fields int
}

// NewObjectWriter starts a new JSON object backed by a pooled buffer.
// Call Bytes to finish the object and release the buffer.
func NewObjectWriter() *ObjectWriter {
	buf := pool.GetBuffer()
	buf.WriteByte('{')
	return &ObjectWriter{buf: buf}
}

// WriteField appends "key": <marshaled value>
func (w *ObjectWriter) WriteField(key string, value interface{}) error {
	data, err := gojson.Marshal(value)
	if err != nil {
		return err
	}
	return w.WriteRawField(key, data)
}

// WriteRawField appends "key": raw, where raw is already valid JSON
func (w *ObjectWriter) WriteRawField(key string, raw []byte) error {
	k, err := gojson.Marshal(key)
	if err != nil {
		return err
	}
	if w.fields > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(raw)
	w.fields++
	return nil
}

// Bytes closes the object and returns an owned copy of its encoding.
// The writer must not be used afterwards.
func (w *ObjectWriter) Bytes() []byte {
	w.buf.WriteByte('}')
	result := make([]byte, w.buf.Len())
	copy(result, w.buf.Bytes())
	pool.PutBuffer(w.buf)
	w.buf = nil
	return result
}
