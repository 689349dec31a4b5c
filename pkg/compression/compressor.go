// Package compression compresses envelope payloads for the framed stream
// form. The text body itself is never compressed; compression is applied
// only when an envelope is written to a stream and is recorded in the frame
// header so readers can reverse it.
//
// # Algorithm Selection
//
//   - Snappy/S2: fastest, moderate ratio
//   - LZ4: very fast, decent ratio
//   - Zstd: best ratio at good speed
//   - Gzip/Deflate: widest compatibility
//   - XZ: highest ratio, slowest
//
// # Basic Usage
//
//	comp, err := compression.NewCompressor(&compression.Config{
//	    Algorithm: compression.Zstd,
//	    Level:     compression.Default,
//	})
//	compressed, err := comp.Compress(data)
//	original, err := comp.Decompress(compressed)
package compression

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/ajitpratap0/tables/pkg/errors"
	stringpool "github.com/ajitpratap0/tables/pkg/strings"
)

// Algorithm represents a compression algorithm
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Deflate represents raw deflate compression
	Deflate Algorithm = "deflate"
	// XZ represents xz (LZMA2) compression. Level is ignored.
	XZ Algorithm = "xz"
)

// Algorithms lists every supported algorithm
var Algorithms = []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate, XZ}

// ParseAlgorithm validates an algorithm name. The empty string means None.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return None, nil
	}
	for _, a := range Algorithms {
		if string(a) == name {
			return a, nil
		}
	}
	return None, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm: %s", name)
}

// Level represents compression level
type Level int

const (
	// Fastest prioritizes speed over compression ratio
	Fastest Level = 1
	// Default balances speed and compression
	Default Level = 5
	// Better improves compression at cost of speed
	Better Level = 7
	// Best maximizes compression ratio
	Best Level = 9
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case Fastest:
		return "fastest"
	case Default:
		return "default"
	case Better:
		return "better"
	case Best:
		return "best"
	default:
		return "unknown"
	}
}

// Compressor compresses and decompresses whole payloads.
// All implementations are safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	// DecompressLimit fails with a data error once the output would exceed
	// limit bytes
	DecompressLimit(data []byte, limit int) ([]byte, error)
	Algorithm() Algorithm
}

func limitExceeded(algorithm Algorithm, limit int) error {
	return errors.Newf(errors.ErrorTypeData, "decompressed %s payload exceeds %d bytes", algorithm, limit).
		WithDetail("limit", limit)
}

// Config represents compressor configuration
type Config struct {
	Algorithm Algorithm
	Level     Level
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *Config {
	return &Config{
		Algorithm: None,
		Level:     Default,
	}
}

// NewCompressor creates a compressor. If config is nil, the default
// configuration is used.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Algorithm {
	case None, "":
		return noneCompressor{}, nil
	case Gzip:
		return newStreamCompressor(Gzip,
			func(w io.Writer) (io.WriteCloser, error) {
				return gzip.NewWriterLevel(w, mapGzipLevel(config.Level))
			},
			func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) },
		), nil
	case Deflate:
		return newStreamCompressor(Deflate,
			func(w io.Writer) (io.WriteCloser, error) {
				return flate.NewWriter(w, mapGzipLevel(config.Level))
			},
			func(r io.Reader) (io.Reader, error) { return flate.NewReader(r), nil },
		), nil
	case LZ4:
		level := mapLZ4Level(config.Level)
		return newStreamCompressor(LZ4,
			func(w io.Writer) (io.WriteCloser, error) {
				lw := lz4.NewWriter(w)
				if err := lw.Apply(lz4.CompressionLevelOption(level)); err != nil {
					return nil, err
				}
				return lw, nil
			},
			func(r io.Reader) (io.Reader, error) { return lz4.NewReader(r), nil },
		), nil
	case XZ:
		return newStreamCompressor(XZ,
			func(w io.Writer) (io.WriteCloser, error) { return xz.NewWriter(w) },
			func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) },
		), nil
	case Snappy:
		return blockCompressor{
			algorithm: Snappy,
			encode:    func(data []byte) []byte { return snappy.Encode(nil, data) },
			decode:    func(data []byte) ([]byte, error) { return snappy.Decode(nil, data) },
			size:      snappy.DecodedLen,
		}, nil
	case S2:
		return blockCompressor{
			algorithm: S2,
			encode:    func(data []byte) []byte { return s2.Encode(nil, data) },
			decode:    func(data []byte) ([]byte, error) { return s2.Decode(nil, data) },
			size:      s2.DecodedLen,
		}, nil
	case Zstd:
		return newZstdCompressor(config.Level), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm: %s", config.Algorithm)
	}
}

type noneCompressor struct{}

func (noneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
func (noneCompressor) Algorithm() Algorithm                   { return None }

func (noneCompressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	if len(data) > limit {
		return nil, limitExceeded(None, limit)
	}
	return data, nil
}

// blockCompressor wraps the one-shot snappy/s2 block APIs
type blockCompressor struct {
	algorithm Algorithm
	encode    func([]byte) []byte
	decode    func([]byte) ([]byte, error)
	size      func([]byte) (int, error)
}

func (bc blockCompressor) Compress(data []byte) ([]byte, error) { return bc.encode(data), nil }
func (bc blockCompressor) Decompress(data []byte) ([]byte, error) {
	out, err := bc.decode(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "corrupt "+string(bc.algorithm)+" payload")
	}
	return out, nil
}
func (bc blockCompressor) Algorithm() Algorithm { return bc.algorithm }

// DecompressLimit reads the decoded length from the block preamble before
// allocating
func (bc blockCompressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	n, err := bc.size(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "corrupt "+string(bc.algorithm)+" payload")
	}
	if n > limit {
		return nil, limitExceeded(bc.algorithm, limit)
	}
	return bc.Decompress(data)
}

// streamCompressor adapts writer/reader based formats
type streamCompressor struct {
	algorithm Algorithm
	newWriter func(io.Writer) (io.WriteCloser, error)
	newReader func(io.Reader) (io.Reader, error)
}

func newStreamCompressor(
	algorithm Algorithm,
	newWriter func(io.Writer) (io.WriteCloser, error),
	newReader func(io.Reader) (io.Reader, error),
) *streamCompressor {
	return &streamCompressor{algorithm: algorithm, newWriter: newWriter, newReader: newReader}
}

func (sc *streamCompressor) Algorithm() Algorithm { return sc.algorithm }

func (sc *streamCompressor) Compress(data []byte) ([]byte, error) {
	builder := stringpool.GetBuilder(stringpool.Large)
	defer stringpool.PutBuilder(builder, stringpool.Large)
	builder.Grow(len(data) / 2)

	w, err := sc.newWriter(builder)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create "+string(sc.algorithm)+" writer")
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

func (sc *streamCompressor) Decompress(data []byte) ([]byte, error) {
	return sc.decompress(data, -1)
}

func (sc *streamCompressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	return sc.decompress(data, limit)
}

// decompress reads at most limit+1 bytes of output; a negative limit reads
// everything
func (sc *streamCompressor) decompress(data []byte, limit int) ([]byte, error) {
	r, err := sc.newReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "corrupt "+string(sc.algorithm)+" payload")
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	builder := stringpool.GetBuilder(stringpool.Large)
	defer stringpool.PutBuilder(builder, stringpool.Large)

	var src io.Reader = r
	if limit >= 0 {
		src = io.LimitReader(r, int64(limit)+1)
	}
	if _, err := io.Copy(builder, src); err != nil { //nolint:gosec // G110: bounded by limit when called from the frame reader
		return nil, errors.Wrap(err, errors.ErrorTypeData, "corrupt "+string(sc.algorithm)+" payload")
	}
	if limit >= 0 && builder.Len() > limit {
		return nil, limitExceeded(sc.algorithm, limit)
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

// zstdCompressor pools encoders and decoders, which are expensive to build
type zstdCompressor struct {
	encoderPool sync.Pool
	decoderPool sync.Pool
}

func newZstdCompressor(level Level) *zstdCompressor {
	zc := &zstdCompressor{}
	encLevel := mapZstdLevel(level)
	zc.encoderPool.New = func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel))
		return enc
	}
	zc.decoderPool.New = func() interface{} {
		dec, _ := zstd.NewReader(nil)
		return dec
	}
	return zc
}

func (zc *zstdCompressor) Algorithm() Algorithm { return Zstd }

func (zc *zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

func (zc *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "corrupt zstd payload")
	}
	return out, nil
}

// DecompressLimit streams the frame so a payload declaring a huge content
// size is cut off at limit
func (zc *zstdCompressor) DecompressLimit(data []byte, limit int) ([]byte, error) {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)

	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "corrupt zstd payload")
	}

	builder := stringpool.GetBuilder(stringpool.Large)
	defer stringpool.PutBuilder(builder, stringpool.Large)

	if _, err := io.Copy(builder, io.LimitReader(dec, int64(limit)+1)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "corrupt zstd payload")
	}
	if builder.Len() > limit {
		return nil, limitExceeded(Zstd, limit)
	}

	result := make([]byte, builder.Len())
	copy(result, builder.Bytes())
	return result, nil
}

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
