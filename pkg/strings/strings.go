// Package strings provides pooled byte builders and line/field splitting
// used on the table codec hot path.
package strings

import (
	"bytes"
	"fmt"
	"sync"
)

// Builder provides efficient byte building for row and field encoding
type Builder struct {
	buf []byte
}

// NewBuilder creates a new builder
func NewBuilder(capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
	}
}

// WriteString appends a string to the builder
func (b *Builder) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// WriteByte appends a single byte
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer interface
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// AppendFunc lets an appender (strconv style) write directly into the buffer
func (b *Builder) AppendFunc(fn func([]byte) []byte) {
	b.buf = fn(b.buf)
}

// String returns a copy of the built content
func (b *Builder) String() string {
	return string(b.buf)
}

// Bytes returns the underlying byte slice
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Len returns the length of the built content
func (b *Builder) Len() int {
	return len(b.buf)
}

// Cap returns the capacity of the underlying buffer
func (b *Builder) Cap() int {
	return cap(b.buf)
}

// Reset resets the builder for reuse
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// Grow grows the buffer capacity
func (b *Builder) Grow(n int) {
	if cap(b.buf)-len(b.buf) < n {
		newSize := len(b.buf) + 2*cap(b.buf) + n
		newBuf := make([]byte, len(b.buf), newSize)
		copy(newBuf, b.buf)
		b.buf = newBuf
	}
}

var (
	// Small strings (< 1KB) - single fields, short rows
	smallBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(1024)
		},
	}

	// Medium strings (1KB - 16KB) - wide rows, envelope headers
	mediumBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(16 * 1024)
		},
	}

	// Large strings (16KB+) - whole bodies, compression buffers
	largeBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(64 * 1024)
		},
	}
)

// BuilderSize represents different builder sizes
type BuilderSize int

const (
	Small  BuilderSize = iota // < 1KB
	Medium                    // 1KB - 16KB
	Large                     // 16KB+
)

func poolFor(size BuilderSize) *sync.Pool {
	switch size {
	case Medium:
		return mediumBuilderPool
	case Large:
		return largeBuilderPool
	default:
		return smallBuilderPool
	}
}

// GetBuilder retrieves a pooled builder of the specified size
func GetBuilder(size BuilderSize) *Builder {
	builder := poolFor(size).Get().(*Builder)
	builder.Reset()
	return builder
}

// PutBuilder returns a builder to the appropriate pool
func PutBuilder(builder *Builder, size BuilderSize) {
	if builder == nil {
		return
	}
	// Don't keep very large buffers alive
	if builder.Cap() > 4*1024*1024 {
		return
	}
	builder.Reset()
	poolFor(size).Put(builder)
}

// Sprintf provides a pooled alternative to fmt.Sprintf
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	estimatedSize := len(format) + len(args)*16

	size := Small
	if estimatedSize > 16*1024 {
		size = Large
	} else if estimatedSize > 1024 {
		size = Medium
	}

	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	fmt.Fprintf(builder, format, args...)

	return builder.String()
}

// Field returns the n-th (0-based) sep-delimited field of line without
// copying. The second result is false when line has fewer than n+1 fields.
func Field(line []byte, sep byte, n int) ([]byte, bool) {
	if n < 0 {
		return nil, false
	}
	for i := 0; i < n; i++ {
		j := bytes.IndexByte(line, sep)
		if j < 0 {
			return nil, false
		}
		line = line[j+1:]
	}
	if j := bytes.IndexByte(line, sep); j >= 0 {
		return line[:j], true
	}
	return line, true
}

// LineOffsets returns the start offset of every newline-terminated line in
// data. A trailing segment without a terminating newline counts as a line;
// empty input has no lines.
func LineOffsets(data []byte) []int {
	if len(data) == 0 {
		return nil
	}
	offsets := make([]int, 0, bytes.Count(data, []byte{'\n'})+1)
	start := 0
	for start < len(data) {
		offsets = append(offsets, start)
		j := bytes.IndexByte(data[start:], '\n')
		if j < 0 {
			break
		}
		start += j + 1
	}
	return offsets
}

// AppendFields appends every sep-delimited field of line to dst without
// copying. An empty line has a single empty field.
func AppendFields(dst [][]byte, line []byte, sep byte) [][]byte {
	for {
		j := bytes.IndexByte(line, sep)
		if j < 0 {
			return append(dst, line)
		}
		dst = append(dst, line[:j])
		line = line[j+1:]
	}
}

// Line returns line i of data given the offsets from LineOffsets, without
// its terminating "\n" or "\r\n"
func Line(data []byte, offsets []int, i int) ([]byte, bool) {
	if i < 0 || i >= len(offsets) {
		return nil, false
	}
	end := len(data)
	if i+1 < len(offsets) {
		end = offsets[i+1]
	}
	line := data[offsets[i]:end]
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, true
}
