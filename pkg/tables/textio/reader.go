package textio

import (
	"context"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tables/pkg/envelope"
	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/logger"
	"github.com/ajitpratap0/tables/pkg/meta"
	"github.com/ajitpratap0/tables/pkg/metrics"
	"github.com/ajitpratap0/tables/pkg/observability"
	"github.com/ajitpratap0/tables/pkg/pool"
	stringpool "github.com/ajitpratap0/tables/pkg/strings"
	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/value"
)

var valueType = reflect.TypeFor[value.Value]()

// TextTable is a table read directly from an envelope body. Lines are
// indexed on first access and cells are parsed on every access.
//
// Rows with fewer fields than there are columns read as absent in the
// missing trailing columns; fields beyond the last column are ignored. A
// field that does not parse reads as absent; Validate reports it.
//
// A TextTable is safe for concurrent reads.
type TextTable struct {
	id      uint64
	dataID  string
	headers []tables.ColumnHeader
	index   map[string]int
	data    []byte

	once    sync.Once
	offsets []int
}

type descriptor struct {
	pos    int
	header tables.ColumnHeader
}

// ReadTextRows decodes the column descriptors of env and returns a table
// backed by its body. Descriptors are ordered by their position key, never
// by metadata order.
func ReadTextRows(env *envelope.Envelope) (*TextTable, error) {
	if env == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "nil envelope")
	}
	if env.Type != "" && env.Type != EnvelopeType {
		return nil, errors.Newf(errors.ErrorTypeData, "envelope type %q is not %q", env.Type, EnvelopeType).
			WithDetail("data_id", env.DataID)
	}

	headers, err := readHeaders(env.Meta)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithDetail("data_id", env.DataID)
		}
		return nil, err
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h.Name] = i
	}
	return &TextTable{
		id:      tables.NextID(),
		dataID:  env.DataID,
		headers: headers,
		index:   index,
		data:    env.Data,
	}, nil
}

func readHeaders(m *meta.Meta) ([]tables.ColumnHeader, error) {
	items := m.Indexed(ColumnPrefix)
	descriptors := make([]descriptor, 0, len(items))
	names := make(map[string]int, len(items))

	for _, item := range items {
		pos, err := strconv.Atoi(item.Key)
		if err != nil || pos < 0 || strconv.Itoa(pos) != item.Key {
			return nil, errors.Newf(errors.ErrorTypeData, "column descriptor key %q is not a position", item.Key)
		}
		name, ok := item.Meta.String("name")
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeMissingField, "column descriptor %d has no name", pos).
				WithDetail("position", pos)
		}
		if name == "" {
			return nil, errors.Newf(errors.ErrorTypeValidation, "column descriptor %d has an empty name", pos).
				WithDetail("position", pos)
		}
		if prev, dup := names[name]; dup {
			return nil, errors.Newf(errors.ErrorTypeDuplicateName, "column %q is described at positions %d and %d", name, prev, pos).
				WithDetail("column", name)
		}
		names[name] = pos

		h := tables.ColumnHeader{Name: name, Type: valueType, Meta: meta.New()}
		if child, ok := item.Meta.Child("meta"); ok {
			h.Meta = child.Clone()
		}
		descriptors = append(descriptors, descriptor{pos: pos, header: h})
	}

	// keys are canonical and unique, so positions are too
	slices.SortFunc(descriptors, func(a, b descriptor) int { return a.pos - b.pos })

	headers := make([]tables.ColumnHeader, len(descriptors))
	for i, d := range descriptors {
		headers[i] = d.header
	}
	return headers, nil
}

func (t *TextTable) lines() []int {
	t.once.Do(func() {
		t.offsets = stringpool.LineOffsets(t.data)
	})
	return t.offsets
}

// ID returns the table's process-local identity
func (t *TextTable) ID() uint64 { return t.id }

// DataID returns the content identifier of the envelope the table was read from
func (t *TextTable) DataID() string { return t.dataID }

// RowsSize returns the number of body lines
func (t *TextTable) RowsSize() int { return len(t.lines()) }

// Headers returns the decoded headers in position order
func (t *TextTable) Headers() []tables.ColumnHeader { return slices.Clone(t.headers) }

// Columns returns lazily parsed views of every column
func (t *TextTable) Columns() []tables.Column[value.Value] {
	columns := make([]tables.Column[value.Value], len(t.headers))
	for i := range t.headers {
		columns[i] = &textColumn{table: t, pos: i}
	}
	return columns
}

// Column returns a lazily parsed view of the named column
func (t *TextTable) Column(name string) (tables.Column[value.Value], bool) {
	pos, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &textColumn{table: t, pos: pos}, true
}

// Get parses the cell at (row, column)
func (t *TextTable) Get(row int, column string) (value.Value, bool) {
	pos, ok := t.index[column]
	if !ok {
		return value.Null, false
	}
	return t.cell(row, pos)
}

// Row returns the view of row i
func (t *TextTable) Row(i int) tables.Row[value.Value] { return tables.NewRow[value.Value](t, i) }

// Rows iterates the rows in order
func (t *TextTable) Rows() iter.Seq2[int, tables.Row[value.Value]] {
	return tables.RowsOf[value.Value](t)
}

func (t *TextTable) field(row, pos int) ([]byte, bool) {
	line, ok := stringpool.Line(t.data, t.lines(), row)
	if !ok {
		return nil, false
	}
	f, ok := stringpool.Field(line, FieldSeparator, pos)
	if !ok || len(f) == 0 {
		return nil, false
	}
	return f, true
}

func (t *TextTable) cell(row, pos int) (value.Value, bool) {
	f, ok := t.field(row, pos)
	if !ok {
		return value.Null, false
	}
	v, err := value.Parse(string(f))
	if err != nil {
		return value.Null, false
	}
	return v, true
}

// Validate parses every cell and returns the first malformed one
func (t *TextTable) Validate() error {
	for row := range t.lines() {
		for pos, h := range t.headers {
			f, ok := t.field(row, pos)
			if !ok {
				continue
			}
			if _, err := value.Parse(string(f)); err != nil {
				return errors.Wrap(err, errors.ErrorTypeData, "malformed cell").
					WithDetail("row", row).
					WithDetail("column", h.Name)
			}
		}
	}
	return nil
}

type textColumn struct {
	table *TextTable
	pos   int
}

func (c *textColumn) Header() tables.ColumnHeader   { return c.table.headers[c.pos] }
func (c *textColumn) Name() string                  { return c.table.headers[c.pos].Name }
func (c *textColumn) Len() int                      { return c.table.RowsSize() }
func (c *textColumn) Get(i int) (value.Value, bool) { return c.table.cell(i, c.pos) }

// ReadTextTable decodes env eagerly into an immutable table. Unlike
// ReadTextRows it fails on malformed cells.
func ReadTextTable(ctx context.Context, env *envelope.Envelope, opts ...Option) (*tables.ColumnTable[value.Value], error) {
	o := newOptions(opts)
	timer := metrics.NewTimer(metrics.DirectionDecode)

	ctx, span := observability.StartSpan(ctx, "textio.decode")
	if env != nil {
		span.SetAttribute("table.data_id", env.DataID)
		span.SetAttribute("body.bytes", len(env.Data))
	}

	t, err := readTextTable(ctx, env)

	rows, size := 0, 0
	if err == nil {
		rows, size = t.RowsSize(), len(env.Data)
		span.SetAttribute("table.rows", rows)
		span.SetAttribute("table.columns", len(t.Headers()))
	}
	span.End(err)
	o.metrics.RecordCodec(metrics.DirectionDecode, rows, size, timer.Stop(), err)

	if err != nil {
		o.logger.Debug("text envelope decode failed", zap.Error(err))
		return nil, err
	}
	logger.WithContext(logger.ContextWithOperation(logger.ContextWithTable(ctx, env.DataID), "decode")).Debug("text envelope decoded",
		zap.Int("rows", rows),
		zap.Int("columns", len(t.Headers())),
		zap.Int("bytes", size))
	return t, nil
}

func readTextTable(ctx context.Context, env *envelope.Envelope) (*tables.ColumnTable[value.Value], error) {
	text, err := ReadTextRows(env)
	if err != nil {
		return nil, err
	}

	offsets := text.lines()
	cells := make([][]tables.Cell[value.Value], len(text.headers))
	for i := range cells {
		cells[i] = make([]tables.Cell[value.Value], len(offsets))
	}

	fields := pool.GetByteSlices()
	defer pool.PutByteSlices(fields)

	for row := range offsets {
		if row%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeCanceled, "body read canceled").
					WithDetail("row", row)
			}
		}
		line, _ := stringpool.Line(text.data, offsets, row)
		*fields = stringpool.AppendFields((*fields)[:0], line, FieldSeparator)

		for pos := range text.headers {
			if pos >= len(*fields) || len((*fields)[pos]) == 0 {
				continue
			}
			v, err := value.Parse(string((*fields)[pos]))
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeData, "malformed cell").
					WithDetail("row", row).
					WithDetail("column", text.headers[pos].Name)
			}
			cells[pos][row] = tables.Some(v)
		}
	}

	columns := make([]tables.Column[value.Value], len(text.headers))
	for pos, h := range text.headers {
		columns[pos] = tables.NewSparseColumn(h, cells[pos])
	}
	b, err := tables.NewBuilder(len(offsets), columns)
	if err != nil {
		return nil, err
	}
	return b.Snapshot(), nil
}
