package tables

import (
	"iter"
	"slices"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/logger"
	"github.com/ajitpratap0/tables/pkg/metrics"
)

// Builder operation names, used in logs and metric labels
const (
	OpAddColumn    = "add_column"
	OpRemoveColumn = "remove_column"
	OpReplace      = "replace"
	OpFill         = "fill"
	OpDerive       = "derive"
)

type options struct {
	lenient bool
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures a Builder
type Option func(*options)

// WithLenientDependencies makes row expressions read columns that are not in
// the builder as absent instead of failing the derivation
func WithLenientDependencies() Option {
	return func(o *options) {
		o.lenient = true
	}
}

// WithLogger sets the logger rejected edits are reported to
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics counts edits on c
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

// Builder is a mutable table. Every edit validates the table invariants
// before mutating and leaves the builder unchanged when it fails.
//
// Edits never modify the column slice in place; they install a new one.
// Snapshots can therefore share the current slice.
type Builder[T any] struct {
	rowsSize int
	columns  []Column[T]
	opts     options
}

// NewBuilder returns a builder for tables of rowsSize rows, seeded with
// seed in order
func NewBuilder[T any](rowsSize int, seed []Column[T], opts ...Option) (*Builder[T], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	if rowsSize < 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "rows size must not be negative, got %d", rowsSize)
	}

	b := &Builder[T]{rowsSize: rowsSize, opts: o}
	for _, c := range seed {
		if err := b.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// New runs build against a fresh builder and returns the resulting snapshot
func New[T any](rowsSize int, build func(*Builder[T]) error, opts ...Option) (*ColumnTable[T], error) {
	b, err := NewBuilder[T](rowsSize, nil, opts...)
	if err != nil {
		return nil, err
	}
	if err := build(b); err != nil {
		return nil, err
	}
	return b.Snapshot(), nil
}

// ToBuilder returns a builder seeded with the columns of t. Columns are
// shared, not copied.
func ToBuilder[T any](t Table[T], opts ...Option) (*Builder[T], error) {
	return NewBuilder(t.RowsSize(), t.Columns(), opts...)
}

// Edit applies edit to a builder seeded from t and returns the new snapshot.
// t itself is left untouched.
func Edit[T any](t Table[T], edit func(*Builder[T]) error, opts ...Option) (*ColumnTable[T], error) {
	b, err := ToBuilder(t, opts...)
	if err != nil {
		return nil, err
	}
	if err := edit(b); err != nil {
		return nil, err
	}
	return b.Snapshot(), nil
}

// Snapshot returns an immutable view of the current columns
func (b *Builder[T]) Snapshot() *ColumnTable[T] {
	return newColumnTable(b.rowsSize, b.columns)
}

// RowsSize returns the fixed number of rows
func (b *Builder[T]) RowsSize() int { return b.rowsSize }

// Columns returns the current columns in order
func (b *Builder[T]) Columns() []Column[T] { return slices.Clone(b.columns) }

// Headers returns the current headers in order
func (b *Builder[T]) Headers() []ColumnHeader { return headersOf(b.columns) }

// Column returns the named column
func (b *Builder[T]) Column(name string) (Column[T], bool) {
	if i := b.indexOf(name); i >= 0 {
		return b.columns[i], true
	}
	return nil, false
}

// Get returns the cell at (row, column)
func (b *Builder[T]) Get(row int, column string) (T, bool) {
	c, ok := b.Column(column)
	if !ok {
		var zero T
		return zero, false
	}
	return c.Get(row)
}

// Row returns the view of row i over the live builder
func (b *Builder[T]) Row(i int) Row[T] { return NewRow[T](b, i) }

// Rows iterates rows of the live builder
func (b *Builder[T]) Rows() iter.Seq2[int, Row[T]] { return RowsOf[T](b) }

func (b *Builder[T]) indexOf(name string) int {
	return slices.IndexFunc(b.columns, func(c Column[T]) bool { return c.Name() == name })
}

// AddColumn appends c
func (b *Builder[T]) AddColumn(c Column[T]) error {
	return b.record(OpAddColumn, b.insert(c, len(b.columns)))
}

// InsertColumn inserts c before position pos, 0 <= pos <= number of columns
func (b *Builder[T]) InsertColumn(c Column[T], pos int) error {
	return b.record(OpAddColumn, b.insert(c, pos))
}

func (b *Builder[T]) insert(c Column[T], pos int) error {
	if c == nil {
		return errors.New(errors.ErrorTypeValidation, "column must not be nil")
	}
	if err := c.Header().validate(); err != nil {
		return err
	}
	if err := checkType[T](c.Header()); err != nil {
		return err
	}
	if err := b.checkLength(c.Name(), c.Len()); err != nil {
		return err
	}
	if err := b.checkFreeName(c.Name()); err != nil {
		return err
	}
	if pos < 0 || pos > len(b.columns) {
		return errors.Newf(errors.ErrorTypeValidation, "column position %d out of range [0, %d]", pos, len(b.columns)).
			WithDetail("column", c.Name())
	}
	b.columns = slices.Insert(slices.Clip(b.columns), pos, c)
	return nil
}

func (b *Builder[T]) checkLength(name string, n int) error {
	if n != b.rowsSize {
		return errors.Newf(errors.ErrorTypeSizeMismatch, "column %q has %d rows, table has %d", name, n, b.rowsSize).
			WithDetail("column", name).
			WithDetail("expected", b.rowsSize).
			WithDetail("actual", n)
	}
	return nil
}

func (b *Builder[T]) checkFreeName(name string) error {
	if b.indexOf(name) >= 0 {
		return errors.Newf(errors.ErrorTypeDuplicateName, "column %q already exists", name).
			WithDetail("column", name)
	}
	return nil
}

// RemoveColumn removes every column named name. Removing an unknown name is
// a no-op.
func (b *Builder[T]) RemoveColumn(name string) {
	b.columns = without(b.columns, name)
	b.opts.metrics.RecordEdit(OpRemoveColumn, nil)
}

func without[T any](columns []Column[T], name string) []Column[T] {
	if !slices.ContainsFunc(columns, func(c Column[T]) bool { return c.Name() == name }) {
		return columns
	}
	return slices.DeleteFunc(slices.Clone(columns), func(c Column[T]) bool { return c.Name() == name })
}

// Replace removes the column named h.Name, if any, and appends a column
// holding values
func (b *Builder[T]) Replace(h ColumnHeader, values []T) error {
	return b.replace(h, len(values), func() Column[T] { return NewListColumn(h, values) })
}

// ReplaceCells is Replace for optional values
func (b *Builder[T]) ReplaceCells(h ColumnHeader, cells []Cell[T]) error {
	return b.replace(h, len(cells), func() Column[T] { return NewSparseColumn(h, cells) })
}

func (b *Builder[T]) replace(h ColumnHeader, n int, build func() Column[T]) error {
	if err := h.validate(); err != nil {
		return b.record(OpReplace, err)
	}
	if err := b.checkLength(h.Name, n); err != nil {
		return b.record(OpReplace, err)
	}
	b.columns = append(slices.Clip(without(b.columns, h.Name)), build())
	return b.record(OpReplace, nil)
}

// ReplaceFunc removes the column named h.Name, if any, then evaluates expr
// for every row against the remaining columns and appends the result
func (b *Builder[T]) ReplaceFunc(h ColumnHeader, expr func(Row[T]) (T, bool)) error {
	if err := h.validate(); err != nil {
		return b.record(OpReplace, err)
	}
	remaining := without(b.columns, h.Name)
	view := &Builder[T]{rowsSize: b.rowsSize, columns: remaining, opts: b.opts}
	c, err := view.evaluate(h, expr)
	if err != nil {
		return b.record(OpReplace, err)
	}
	b.opts.metrics.RecordCells(OpReplace, c.Len())
	b.columns = append(slices.Clip(remaining), c)
	return b.record(OpReplace, nil)
}

// Values returns the current cells of the column named h.Name
func (b *Builder[T]) Values(h ColumnHeader) ([]Cell[T], bool) {
	c, ok := b.Column(h.Name)
	if !ok {
		return nil, false
	}
	return Values(c), true
}

// SetValues replaces the column named h.Name with cells, moving it to the end
func (b *Builder[T]) SetValues(h ColumnHeader, cells []Cell[T]) error {
	return b.ReplaceCells(h, cells)
}

// Fill appends a column whose i-th cell is gen(i)
func (b *Builder[T]) Fill(h ColumnHeader, gen func(i int) (T, bool)) error {
	return b.FillAt(h, len(b.columns), gen)
}

// FillAt inserts a generated column before position pos
func (b *Builder[T]) FillAt(h ColumnHeader, pos int, gen func(i int) (T, bool)) error {
	if err := b.precheck(h, pos); err != nil {
		return b.record(OpFill, err)
	}
	c := GenerateColumn(h, b.rowsSize, gen)
	b.opts.metrics.RecordCells(OpFill, c.Len())
	return b.record(OpFill, b.insert(c, pos))
}

// Derive appends a column computed by evaluating expr once per row against
// the builder's current columns
func (b *Builder[T]) Derive(h ColumnHeader, expr func(Row[T]) (T, bool)) error {
	return b.DeriveAt(h, len(b.columns), expr)
}

// DeriveAt inserts a derived column before position pos
func (b *Builder[T]) DeriveAt(h ColumnHeader, pos int, expr func(Row[T]) (T, bool)) error {
	if err := b.precheck(h, pos); err != nil {
		return b.record(OpDerive, err)
	}
	c, err := b.evaluate(h, expr)
	if err != nil {
		return b.record(OpDerive, err)
	}
	b.opts.metrics.RecordCells(OpDerive, c.Len())
	return b.record(OpDerive, b.insert(c, pos))
}

// precheck rejects edits that would fail at insertion before any generator
// or expression runs
func (b *Builder[T]) precheck(h ColumnHeader, pos int) error {
	if err := h.validate(); err != nil {
		return err
	}
	if err := b.checkFreeName(h.Name); err != nil {
		return err
	}
	if pos < 0 || pos > len(b.columns) {
		return errors.Newf(errors.ErrorTypeValidation, "column position %d out of range [0, %d]", pos, len(b.columns)).
			WithDetail("column", h.Name)
	}
	return nil
}

// evaluate runs expr for every row of b. Lookups of columns b does not hold
// fail the evaluation unless dependencies are lenient.
func (b *Builder[T]) evaluate(h ColumnHeader, expr func(Row[T]) (T, bool)) (*ListColumn[T], error) {
	tracker := &dependencyTracker[T]{Table: b}
	c := GenerateColumn(h, b.rowsSize, func(i int) (T, bool) {
		return expr(NewRow[T](tracker, i))
	})
	if len(tracker.missing) > 0 && !b.opts.lenient {
		return nil, errors.Newf(errors.ErrorTypeMissingDependency,
			"column %q reads columns that are not in the table: %v", h.Name, tracker.missing).
			WithDetail("column", h.Name).
			WithDetail("missing", tracker.missing)
	}
	return c, nil
}

// record reports the outcome of an edit and returns err unchanged
func (b *Builder[T]) record(op string, err error) error {
	b.opts.metrics.RecordEdit(op, err)
	if err != nil {
		b.opts.logger.Debug("rejected table edit",
			zap.String("operation", op),
			zap.String("error_type", string(errors.TypeOf(err))),
			zap.Int("rows_size", b.rowsSize),
			zap.Int("columns", len(b.columns)),
			zap.Error(err))
	}
	return err
}

// dependencyTracker records column names a row expression asked for but the
// table does not hold
type dependencyTracker[T any] struct {
	Table[T]
	missing []string
}

func (d *dependencyTracker[T]) Get(row int, column string) (T, bool) {
	if _, ok := d.Table.Column(column); !ok {
		if !slices.Contains(d.missing, column) {
			d.missing = append(d.missing, column)
		}
		var zero T
		return zero, false
	}
	return d.Table.Get(row, column)
}
