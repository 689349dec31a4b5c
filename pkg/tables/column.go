package tables

import (
	"reflect"

	"github.com/ajitpratap0/tables/pkg/meta"
)

// Column is a named, fixed-length sequence of optional values
type Column[T any] interface {
	Header() ColumnHeader
	Name() string
	Len() int
	// Get returns the value at i. The second result is false for absent
	// cells and for any i outside [0, Len()).
	Get(i int) (T, bool)
}

// Cell is one optional value
type Cell[T any] struct {
	Value T
	Valid bool
}

// Some returns a present cell
func Some[T any](v T) Cell[T] {
	return Cell[T]{Value: v, Valid: true}
}

// None returns an absent cell
func None[T any]() Cell[T] {
	return Cell[T]{}
}

// Get unpacks the cell
func (c Cell[T]) Get() (T, bool) {
	return c.Value, c.Valid
}

// ListColumn is a slice-backed column. A nil validity mask means every cell
// is present.
type ListColumn[T any] struct {
	header ColumnHeader
	data   []T
	valid  []bool
}

// normalizeHeader stamps the column's element type over whatever h declared
func normalizeHeader[T any](h ColumnHeader) ColumnHeader {
	h.Type = reflect.TypeFor[T]()
	if h.Meta == nil {
		h.Meta = meta.New()
	}
	return h
}

// NewListColumn returns a dense column holding a copy of values
func NewListColumn[T any](h ColumnHeader, values []T) *ListColumn[T] {
	data := make([]T, len(values))
	copy(data, values)
	return &ListColumn[T]{header: normalizeHeader[T](h), data: data}
}

// NewSparseColumn returns a column holding a copy of cells
func NewSparseColumn[T any](h ColumnHeader, cells []Cell[T]) *ListColumn[T] {
	c := &ListColumn[T]{
		header: normalizeHeader[T](h),
		data:   make([]T, len(cells)),
	}
	for i, cell := range cells {
		c.data[i] = cell.Value
		if !cell.Valid {
			c.markAbsent(i)
		}
	}
	return c
}

// GenerateColumn returns a column of length n whose i-th cell is gen(i)
func GenerateColumn[T any](h ColumnHeader, n int, gen func(i int) (T, bool)) *ListColumn[T] {
	if n < 0 {
		n = 0
	}
	c := &ListColumn[T]{
		header: normalizeHeader[T](h),
		data:   make([]T, n),
	}
	for i := 0; i < n; i++ {
		v, ok := gen(i)
		if ok {
			c.data[i] = v
		} else {
			c.markAbsent(i)
		}
	}
	return c
}

func (c *ListColumn[T]) markAbsent(i int) {
	if c.valid == nil {
		c.valid = make([]bool, len(c.data))
		for j := range c.valid {
			c.valid[j] = true
		}
	}
	c.valid[i] = false
	var zero T
	c.data[i] = zero
}

// Header returns the column header
func (c *ListColumn[T]) Header() ColumnHeader { return c.header }

// Name returns the column name
func (c *ListColumn[T]) Name() string { return c.header.Name }

// Len returns the number of cells
func (c *ListColumn[T]) Len() int { return len(c.data) }

// Get returns the value at i
func (c *ListColumn[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(c.data) {
		var zero T
		return zero, false
	}
	if c.valid != nil && !c.valid[i] {
		var zero T
		return zero, false
	}
	return c.data[i], true
}

// Sparse reports whether any cell is absent
func (c *ListColumn[T]) Sparse() bool {
	for _, ok := range c.valid {
		if !ok {
			return true
		}
	}
	return false
}

// MapOption configures Map
type MapOption func(*ColumnHeader)

// WithMeta replaces the inherited metadata of the mapped column
func WithMeta(m *meta.Meta) MapOption {
	return func(h *ColumnHeader) {
		h.Meta = m.Clone()
	}
}

// WithName renames the mapped column
func WithName(name string) MapOption {
	return func(h *ColumnHeader) {
		h.Name = name
	}
}

// Map applies fn to every index of c, absent ones included, and returns
// the results as a new column of the same length. Name and metadata are
// inherited unless overridden.
func Map[T, R any](c Column[T], fn func(v T, ok bool) (R, bool), opts ...MapOption) *ListColumn[R] {
	src := c.Header()
	h := ColumnHeader{
		Name: src.Name,
		Type: reflect.TypeFor[R](),
		Meta: src.Meta.Clone(),
	}
	for _, opt := range opts {
		opt(&h)
	}
	return GenerateColumn(h, c.Len(), func(i int) (R, bool) {
		return fn(c.Get(i))
	})
}

// Values materializes every cell of c
func Values[T any](c Column[T]) []Cell[T] {
	cells := make([]Cell[T], c.Len())
	for i := range cells {
		cells[i].Value, cells[i].Valid = c.Get(i)
	}
	return cells
}

// Present returns the values of c with absent cells skipped
func Present[T any](c Column[T]) []T {
	values := make([]T, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Get(i); ok {
			values = append(values, v)
		}
	}
	return values
}
