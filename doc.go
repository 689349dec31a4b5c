// Package tables provides in-memory columnar tables with typed headers,
// copy-on-write builders and derived columns, plus a text envelope codec
// for tables of universal values.
//
// # Overview
//
// A table is an ordered list of named columns sharing one row count. Tables
// are immutable; edits go through a Builder, whose snapshots never observe
// later edits:
//
//	x := tables.Header[float64]("x")
//	x2 := tables.Header[float64]("x2")
//
//	t, err := tables.New[float64](3, func(b *tables.Builder[float64]) error {
//		if err := b.AddColumn(tables.NewListColumn(x, []float64{0, 1, 2})); err != nil {
//			return err
//		}
//		return b.Derive(x2, func(r tables.Row[float64]) (float64, bool) {
//			v, ok := r.Get(x)
//			return v * v, ok
//		})
//	})
//
// Cells may be absent. Row expressions that read a column the table does not
// have fail with a missing dependency error unless the builder was created
// WithLenientDependencies.
//
// # Text envelopes
//
// Tables of value.Value encode to an envelope: ordered metadata describing
// each column plus a tab-separated, newline-terminated body.
//
//	env, err := textio.ToTextEnvelope(ctx, t)
//	decoded, err := textio.ReadTextRows(env)
//
// Envelopes can be framed onto a stream with optional compression and a
// BLAKE3 checksum:
//
//	err := envelope.Write(w, env, envelope.WithCompression(compression.Zstd, compression.Default))
//	env, err := envelope.Read(r)
//
// # Key Packages
//
//   - pkg/tables: columns, rows, tables and the builder
//   - pkg/tables/textio: the text envelope codec
//   - pkg/envelope: envelope construction and stream framing
//   - pkg/value: the universal cell value and its text form
//   - pkg/meta: ordered metadata trees
//   - pkg/compression: payload compression algorithms
//   - pkg/config, pkg/logger, pkg/metrics, pkg/observability: ambient services
//
// # Command line
//
// cmd/tables builds a sample table into a framed envelope and inspects
// envelope files:
//
//	tables demo --rows 10 --compression zstd -o demo.frame
//	tables inspect demo.frame
//
// Settings come from a YAML file (--config), TABLES_* environment variables
// and flags, in increasing order of precedence.
package tables
