package envelope

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"

	"github.com/ajitpratap0/tables/pkg/compression"
	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/json"
	"github.com/ajitpratap0/tables/pkg/meta"
)

const (
	// MaxHeaderSize bounds the JSON header line of one frame
	MaxHeaderSize = 16 << 20
	// MaxPayloadSize bounds a frame payload, compressed or not
	MaxPayloadSize = 1 << 30

	// initial payload buffer; it grows only as bytes actually arrive
	payloadChunk = 64 << 10
)

// frameHeader is the first line of a frame. Length counts the payload bytes
// on the wire, RawLength and Checksum describe the payload after
// decompression.
type frameHeader struct {
	Type        string                `json:"type"`
	DataID      string                `json:"dataId"`
	Meta        *meta.Meta            `json:"meta"`
	Compression compression.Algorithm `json:"compression"`
	Length      int                   `json:"length"`
	RawLength   int                   `json:"rawLength"`
	Checksum    string                `json:"blake3,omitempty"`
}

// Checksum returns the hex BLAKE3-256 digest of data
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type writeOptions struct {
	compression *compression.Config
}

// WriteOption configures Write
type WriteOption func(*writeOptions)

// WithCompression compresses the payload with algorithm at level
func WithCompression(algorithm compression.Algorithm, level compression.Level) WriteOption {
	return func(o *writeOptions) {
		o.compression = &compression.Config{Algorithm: algorithm, Level: level}
	}
}

// Write emits env as one frame: a single-line JSON header followed by the
// payload bytes
func Write(w io.Writer, env *Envelope, opts ...WriteOption) error {
	if env == nil {
		return errors.New(errors.ErrorTypeValidation, "nil envelope")
	}
	o := writeOptions{compression: compression.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	comp, err := compression.NewCompressor(o.compression)
	if err != nil {
		return err
	}
	payload, err := comp.Compress(env.Data)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to compress payload").
			WithDetail("algorithm", comp.Algorithm())
	}

	header, err := json.Marshal(frameHeader{
		Type:        env.Type,
		DataID:      env.DataID,
		Meta:        env.Meta,
		Compression: comp.Algorithm(),
		Length:      len(payload),
		RawLength:   len(env.Data),
		Checksum:    Checksum(env.Data),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to encode frame header")
	}

	if _, err := w.Write(append(header, '\n')); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write frame header")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write frame payload")
	}
	return nil
}

// Reader reads consecutive frames from a stream
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r for frame reading
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// Next reads one frame. It returns io.EOF when the stream ends cleanly
// between frames.
func (fr *Reader) Next() (*Envelope, error) {
	line, err := fr.readHeaderLine()
	if err != nil {
		return nil, err
	}

	var header frameHeader
	if err := json.Unmarshal(line, &header); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "malformed frame header")
	}
	if header.Length < 0 || header.RawLength < 0 {
		return nil, errors.New(errors.ErrorTypeData, "negative frame length")
	}
	if header.Length > MaxPayloadSize || header.RawLength > MaxPayloadSize {
		return nil, errors.Newf(errors.ErrorTypeData, "frame payload exceeds %d bytes", MaxPayloadSize).
			WithDetail("length", header.Length).
			WithDetail("raw_length", header.RawLength)
	}

	var buf bytes.Buffer
	buf.Grow(min(header.Length, payloadChunk))
	if _, err := io.CopyN(&buf, fr.r, int64(header.Length)); err != nil {
		if err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read frame payload")
		}
		return nil, errors.Wrap(err, errors.ErrorTypeData, "truncated frame payload").
			WithDetail("expected", header.Length).
			WithDetail("read", buf.Len())
	}
	payload := buf.Bytes()

	comp, err := compression.NewCompressor(&compression.Config{Algorithm: header.Compression})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "unknown frame compression")
	}
	data, err := comp.DecompressLimit(payload, header.RawLength)
	if err != nil {
		return nil, err
	}
	if len(data) != header.RawLength {
		return nil, errors.Newf(errors.ErrorTypeData, "frame payload is %d bytes, header says %d", len(data), header.RawLength)
	}
	if header.Checksum != "" && header.Checksum != Checksum(data) {
		return nil, errors.New(errors.ErrorTypeData, "frame payload checksum mismatch").
			WithDetail("data_id", header.DataID)
	}

	m := header.Meta
	if m == nil {
		m = meta.New()
	}
	return &Envelope{
		Type:   header.Type,
		DataID: header.DataID,
		Meta:   m,
		Data:   data,
	}, nil
}

func (fr *Reader) readHeaderLine() ([]byte, error) {
	var buf bytes.Buffer
	for {
		chunk, err := fr.r.ReadSlice('\n')
		buf.Write(chunk)
		if buf.Len() > MaxHeaderSize {
			return nil, errors.Newf(errors.ErrorTypeData, "frame header exceeds %d bytes", MaxHeaderSize)
		}
		switch err {
		case nil:
			return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if buf.Len() == 0 {
				return nil, io.EOF
			}
			return nil, errors.New(errors.ErrorTypeData, "unterminated frame header")
		default:
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read frame header")
		}
	}
}

// Read reads exactly one frame from r
func Read(r io.Reader) (*Envelope, error) {
	env, err := NewReader(r).Next()
	if err == io.EOF {
		return nil, errors.New(errors.ErrorTypeData, "empty stream")
	}
	return env, err
}
