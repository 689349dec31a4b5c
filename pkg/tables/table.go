package tables

import (
	"iter"
	"sync/atomic"
)

// Table is an ordered collection of columns sharing one row count
type Table[T any] interface {
	RowsSize() int
	// Columns returns the columns in table order. The slice is a copy.
	Columns() []Column[T]
	Headers() []ColumnHeader
	Column(name string) (Column[T], bool)
	// Get returns the cell at (row, column). Unknown columns and rows
	// outside [0, RowsSize()) read as absent.
	Get(row int, column string) (T, bool)
	Row(i int) Row[T]
	Rows() iter.Seq2[int, Row[T]]
}

// Row is a lightweight view of one row of a table
type Row[T any] struct {
	table Table[T]
	index int
}

// NewRow returns the row view (t, index)
func NewRow[T any](t Table[T], index int) Row[T] {
	return Row[T]{table: t, index: index}
}

// Index returns the row position
func (r Row[T]) Index() int { return r.index }

// Table returns the table the row belongs to
func (r Row[T]) Table() Table[T] { return r.table }

// Get returns the cell of the column named by h
func (r Row[T]) Get(h ColumnHeader) (T, bool) {
	return r.GetByName(h.Name)
}

// GetByName returns the cell of the named column
func (r Row[T]) GetByName(name string) (T, bool) {
	if r.table == nil {
		var zero T
		return zero, false
	}
	return r.table.Get(r.index, name)
}

// RowsOf iterates the rows of t in order
func RowsOf[T any](t Table[T]) iter.Seq2[int, Row[T]] {
	return func(yield func(int, Row[T]) bool) {
		n := t.RowsSize()
		for i := 0; i < n; i++ {
			if !yield(i, NewRow(t, i)) {
				return
			}
		}
	}
}

var lastTableID atomic.Uint64

// NextID returns a process-unique table identity
func NextID() uint64 {
	return lastTableID.Add(1)
}

// Identified is implemented by tables that carry a process-local identity
type Identified interface {
	ID() uint64
}

// ColumnTable is an immutable table snapshot
type ColumnTable[T any] struct {
	id       uint64
	rowsSize int
	columns  []Column[T]
	index    map[string]int
}

// newColumnTable wraps columns that already satisfy the table invariants.
// The slice is owned by the table from here on.
func newColumnTable[T any](rowsSize int, columns []Column[T]) *ColumnTable[T] {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c.Name()] = i
	}
	return &ColumnTable[T]{
		id:       NextID(),
		rowsSize: rowsSize,
		columns:  columns,
		index:    index,
	}
}

// ID returns the table's process-local identity
func (t *ColumnTable[T]) ID() uint64 { return t.id }

// RowsSize returns the number of rows
func (t *ColumnTable[T]) RowsSize() int { return t.rowsSize }

// Columns returns the columns in order
func (t *ColumnTable[T]) Columns() []Column[T] {
	out := make([]Column[T], len(t.columns))
	copy(out, t.columns)
	return out
}

// Headers returns the column headers in order
func (t *ColumnTable[T]) Headers() []ColumnHeader {
	return headersOf(t.columns)
}

// Column returns the named column
func (t *ColumnTable[T]) Column(name string) (Column[T], bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Get returns the cell at (row, column)
func (t *ColumnTable[T]) Get(row int, column string) (T, bool) {
	c, ok := t.Column(column)
	if !ok {
		var zero T
		return zero, false
	}
	return c.Get(row)
}

// Row returns the view of row i
func (t *ColumnTable[T]) Row(i int) Row[T] { return NewRow[T](t, i) }

// Rows iterates the rows in order
func (t *ColumnTable[T]) Rows() iter.Seq2[int, Row[T]] { return RowsOf[T](t) }

func headersOf[T any](columns []Column[T]) []ColumnHeader {
	headers := make([]ColumnHeader, len(columns))
	for i, c := range columns {
		headers[i] = c.Header()
	}
	return headers
}

// Names returns the column names of t in order
func Names[T any](t Table[T]) []string {
	headers := t.Headers()
	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = h.Name
	}
	return names
}

// Materialize copies every cell of t into a ColumnTable. Headers are kept.
func Materialize[T any](t Table[T]) *ColumnTable[T] {
	src := t.Columns()
	columns := make([]Column[T], len(src))
	for i, c := range src {
		columns[i] = NewSparseColumn(c.Header(), Values(c))
	}
	return newColumnTable(t.RowsSize(), columns)
}

// Convert maps every column of t through fn, keeping names, order and
// metadata
func Convert[T, R any](t Table[T], fn func(v T, ok bool) (R, bool)) *ColumnTable[R] {
	src := t.Columns()
	columns := make([]Column[R], len(src))
	for i, c := range src {
		columns[i] = Map(c, fn)
	}
	return newColumnTable(t.RowsSize(), columns)
}

// Equal reports whether a and b have the same row count, the same column
// names in the same order and equal cells everywhere. Absent cells only
// equal absent cells.
func Equal[T any](a, b Table[T], eq func(x, y T) bool) bool {
	if a.RowsSize() != b.RowsSize() {
		return false
	}
	ca, cb := a.Columns(), b.Columns()
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i].Name() != cb[i].Name() {
			return false
		}
		for row := 0; row < a.RowsSize(); row++ {
			x, okx := ca[i].Get(row)
			y, oky := cb[i].Get(row)
			if okx != oky || (okx && !eq(x, y)) {
				return false
			}
		}
	}
	return true
}
