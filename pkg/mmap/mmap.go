// Package mmap maps files into memory for read-only access. Framed envelope
// files are decoded straight from the mapping.
package mmap

import (
	"bytes"
	"io"
	"math"
	"os"
	"sync"

	"github.com/ajitpratap0/tables/pkg/errors"
)

// File is a read-only view of a whole file
type File struct {
	mu     sync.Mutex
	file   *os.File
	data   []byte
	mapped bool
	closed bool
}

// Open maps path into memory. Platforms without mmap support read the file
// instead.
func Open(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is supplied by the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open file").
			WithDetail("path", path)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").
			WithDetail("path", path)
	}

	size := stat.Size()
	if size == 0 {
		return &File{file: f}, nil
	}
	if size > math.MaxInt {
		f.Close()
		return nil, errors.Newf(errors.ErrorTypeFile, "file too large to map: %d bytes", size).
			WithDetail("path", path)
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to map file").
			WithDetail("path", path)
	}
	return &File{file: f, data: data, mapped: mapped}, nil
}

// Bytes returns the file contents. The slice is only valid until Close and
// must not be modified.
func (m *File) Bytes() []byte { return m.data }

// Len returns the file size
func (m *File) Len() int { return len(m.data) }

// Mapped reports whether the contents are backed by a memory mapping
func (m *File) Mapped() bool { return m.mapped }

// Reader returns a reader over the contents
func (m *File) Reader() io.Reader { return bytes.NewReader(m.data) }

// Close releases the mapping and the file. Closing twice is a no-op.
func (m *File) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var unmapErr error
	if m.mapped {
		unmapErr = munmap(m.data)
	}
	m.data = nil

	if err := m.file.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close file")
	}
	if unmapErr != nil {
		return errors.Wrap(unmapErr, errors.ErrorTypeFile, "failed to unmap file")
	}
	return nil
}
