// Package textio converts tables of universal values to and from text
// envelopes.
//
// The envelope metadata holds one descriptor per column, keyed by the
// column's zero-based position:
//
//	column.<i>.name  column name (required)
//	column.<i>.meta  column metadata tree (omitted when empty)
//
// The body is UTF-8 text with one line per row. Every line, the last one
// included, ends with "\n" and holds one field per column in table order,
// separated by "\t". An absent cell is an empty field; see value.Value for
// the text form of present cells. There is no header line.
package textio

import (
	"context"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tables/pkg/envelope"
	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/logger"
	"github.com/ajitpratap0/tables/pkg/metrics"
	"github.com/ajitpratap0/tables/pkg/observability"
	stringpool "github.com/ajitpratap0/tables/pkg/strings"
	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/value"
)

const (
	// EnvelopeType tags envelopes holding a text value table
	EnvelopeType = "table.value"

	// ColumnPrefix is the metadata node holding column descriptors
	ColumnPrefix = "column"

	// FieldSeparator separates cells within a row
	FieldSeparator = '\t'
	// RowTerminator ends every row
	RowTerminator = '\n'

	cancelCheckInterval = 1024
)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures encoding and decoding
type Option func(*options)

// WithLogger sets the logger codec summaries are written to
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records codec calls on c
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = c
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	return o
}

// DataID formats the content identifier of the table with identity id
func DataID(id uint64) string {
	return "valueTable[" + strconv.FormatUint(id, 16) + "]"
}

// NameKey returns the metadata path of the name of the column at position i
func NameKey(i int) string {
	return ColumnPrefix + "." + strconv.Itoa(i) + ".name"
}

// MetaKey returns the metadata path of the metadata of the column at position i
func MetaKey(i int) string {
	return ColumnPrefix + "." + strconv.Itoa(i) + ".meta"
}

func identity(t tables.Table[value.Value]) uint64 {
	if id, ok := t.(tables.Identified); ok {
		return id.ID()
	}
	return tables.NextID()
}

// ToTextEnvelope encodes t. Column descriptors are complete before the first
// body byte is written, and nothing is returned unless both succeed.
func ToTextEnvelope(ctx context.Context, t tables.Table[value.Value], opts ...Option) (*envelope.Envelope, error) {
	o := newOptions(opts)
	timer := metrics.NewTimer(metrics.DirectionEncode)

	dataID := DataID(identity(t))
	ctx, span := observability.StartSpan(ctx, "textio.encode")
	span.SetAttribute("table.data_id", dataID)
	span.SetAttribute("table.rows", t.RowsSize())

	headers := t.Headers()
	span.SetAttribute("table.columns", len(headers))

	var written int
	env, err := envelope.Build(ctx, func(b *envelope.Builder) error {
		if err := b.SetType(EnvelopeType); err != nil {
			return err
		}
		if err := b.SetDataID(dataID); err != nil {
			return err
		}
		for i, h := range headers {
			if err := b.SetMeta(NameKey(i), h.Name); err != nil {
				return err
			}
			if !h.Meta.IsEmpty() {
				if err := b.SetMetaTree(MetaKey(i), h.Meta); err != nil {
					return err
				}
			}
		}
		return b.WriteData(ctx, func(w io.Writer) error {
			n, err := WriteTextRows(ctx, w, t)
			written = n
			return err
		})
	})

	span.SetAttribute("body.bytes", written)
	span.End(err)
	o.metrics.RecordCodec(metrics.DirectionEncode, t.RowsSize(), written, timer.Stop(), err)

	if err != nil {
		o.logger.Debug("text envelope encode failed", zap.String("data_id", dataID), zap.Error(err))
		return nil, err
	}
	logger.WithContext(logger.ContextWithOperation(logger.ContextWithTable(ctx, dataID), "encode")).Debug("text envelope encoded",
		zap.Int("rows", t.RowsSize()),
		zap.Int("columns", len(headers)),
		zap.Int("bytes", written))
	return env, nil
}

// WriteTextRows writes the body of t to w and returns the number of bytes
// written
func WriteTextRows(ctx context.Context, w io.Writer, t tables.Table[value.Value]) (int, error) {
	columns := t.Columns()
	rows := t.RowsSize()

	line := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(line, stringpool.Medium)

	total := 0
	for row := 0; row < rows; row++ {
		if row%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return total, errors.Wrap(err, errors.ErrorTypeCanceled, "body write canceled").
					WithDetail("row", row)
			}
		}

		line.Reset()
		for i, c := range columns {
			if i > 0 {
				_ = line.WriteByte(FieldSeparator)
			}
			if v, ok := c.Get(row); ok {
				line.AppendFunc(v.AppendText)
			}
		}
		_ = line.WriteByte(RowTerminator)

		n, err := w.Write(line.Bytes())
		total += n
		if err != nil {
			return total, errors.Wrap(err, errors.ErrorTypeFile, "failed to write row").
				WithDetail("row", row)
		}
	}
	return total, nil
}
