// Package testutil provides helpers shared by the package tests
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/value"
)

// TestLogger returns a logger writing to the test output
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// ObservedLogger returns a logger recording entries at level and above
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// TestContext returns a context canceled after timeout or when the test ends
func TestContext(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// ValueTable builds a table of values from columns given in order. Each
// column is a name followed by its cells; nil cells are absent.
//
//	ValueTable(t, 2, "x", []any{1, nil}, "name", []any{"a", ""})
func ValueTable(t testing.TB, rows int, columns ...any) *tables.ColumnTable[value.Value] {
	t.Helper()
	if len(columns)%2 != 0 {
		t.Fatalf("ValueTable: odd number of column arguments")
	}

	tbl, err := tables.New[value.Value](rows, func(b *tables.Builder[value.Value]) error {
		for i := 0; i < len(columns); i += 2 {
			name, ok := columns[i].(string)
			if !ok {
				t.Fatalf("ValueTable: column name %v is not a string", columns[i])
			}
			raw, _ := columns[i+1].([]any)

			cells := make([]tables.Cell[value.Value], len(raw))
			for j, x := range raw {
				if x == nil {
					cells[j] = tables.None[value.Value]()
					continue
				}
				v, err := value.Of(x)
				if err != nil {
					return err
				}
				cells[j] = tables.Some(v)
			}
			if err := b.AddColumn(tables.NewSparseColumn(tables.Header[value.Value](name), cells)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ValueTable: %v", err)
	}
	return tbl
}
