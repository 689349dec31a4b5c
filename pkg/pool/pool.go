// Package pool provides typed object pooling for the table codec.
//
// The codec allocates a scratch buffer per encoded envelope and a field
// slice per parsed row; pooling both keeps encode/decode of large tables
// from churning the garbage collector.
//
// Example usage:
//
//	buf := pool.GetBuffer()
//	defer pool.PutBuffer(buf)
//
//	myPool := pool.New(
//	    func() *MyType { return &MyType{} },
//	    func(obj *MyType) { obj.Reset() },
//	)
//	obj := myPool.Get()
//	defer myPool.Put(obj)
package pool

import (
	"bytes"
	"sync"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with automatic reset.
// The pool is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// New creates a new typed pool with custom allocation and reset functions.
// The reset function is optional and runs before an object goes back into
// the pool.
func New[T any](new func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{
		reset: reset,
	}
	p.pool.New = func() interface{} {
		return new()
	}
	return p
}

// Get retrieves an object from the pool, allocating one if it is empty
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	p.pool.Put(obj)
}

// maxPooledBuffer caps the capacity of buffers kept in the global pool
const maxPooledBuffer = 1 << 20

var bufferPool = New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// GetBuffer gets an empty pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get()
}

// PutBuffer returns a buffer to the pool. Oversized buffers are dropped.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}

var byteSlicesPool = New(
	func() *[][]byte { s := make([][]byte, 0, 16); return &s },
	func(s *[][]byte) { *s = (*s)[:0] },
)

// GetByteSlices gets an empty pooled [][]byte, used to hold row fields
func GetByteSlices() *[][]byte {
	return byteSlicesPool.Get()
}

// PutByteSlices returns a field slice to the pool
func PutByteSlices(s *[][]byte) {
	if s == nil {
		return
	}
	clear(*s)
	byteSlicesPool.Put(s)
}
