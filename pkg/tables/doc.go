// Package tables implements fixed-row-count collections of named, typed
// columns.
//
// # Data model
//
// A Column is a fixed-length sequence of optional values; Get is total, so
// reading outside [0, Len) yields absence rather than an error. A Table is an
// ordered list of columns that all have RowsSize elements and pairwise
// distinct names. Column order is significant: it is the wire order used by
// the text codec.
//
// A Row is a (table, index) pair. It holds no cell storage and forwards every
// lookup to the table, so iterating rows or evaluating row expressions does
// not materialize per-row records.
//
// # Building tables
//
// A Builder owns a mutable column list and validates every structural edit
// before applying it:
//
//	t, err := tables.New[float64](3, func(b *tables.Builder[float64]) error {
//	    x := tables.Header[float64]("x")
//	    if err := b.Fill(x, func(i int) (float64, bool) { return float64(i), true }); err != nil {
//	        return err
//	    }
//	    return b.Derive(tables.Header[float64]("x2"), func(r tables.Row[float64]) (float64, bool) {
//	        v, ok := r.Get(x)
//	        return v * v, ok
//	    })
//	})
//
// Derived columns are evaluated eagerly, exactly once, against the builder's
// current state. Replacing a column always moves it to the end of the order.
//
// Snapshots returned by Builder.Snapshot and New are immutable: edits made to
// the builder afterwards never show through.
//
// # Concurrency
//
// A Builder must not be edited concurrently. ColumnTable snapshots and the
// columns in this package are safe for concurrent reads.
package tables
