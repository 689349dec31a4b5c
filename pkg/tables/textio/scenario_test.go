package textio

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tables/pkg/envelope"
	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/testutil"
	"github.com/ajitpratap0/tables/pkg/value"
)

// Build x, derive x2 = x^2, replace y = x2 + 1, cast to values, encode,
// decode and compare.
func TestSquaresScenario(t *testing.T) {
	x := tables.Header[float64]("x")
	x2 := tables.Header[float64]("x2")
	y := tables.Header[float64]("y")

	typed, err := tables.New[float64](3, func(b *tables.Builder[float64]) error {
		if err := b.AddColumn(tables.NewListColumn(x, []float64{0, 1, 2})); err != nil {
			return err
		}
		if err := b.Derive(x2, func(r tables.Row[float64]) (float64, bool) {
			v, ok := r.Get(x)
			return v * v, ok
		}); err != nil {
			return err
		}

		squares, _ := b.Column(x2.Name)
		shifted := tables.Map(squares, func(v float64, ok bool) (float64, bool) { return v + 1, ok })
		return b.Replace(y, tables.Present[float64](shifted))
	})
	require.NoError(t, err)

	col, _ := typed.Column("x2")
	assert.Equal(t, []float64{0, 1, 4}, tables.Present(col))
	col, _ = typed.Column("y")
	assert.Equal(t, []float64{1, 2, 5}, tables.Present(col))

	values := tables.Convert[float64, value.Value](typed, func(v float64, ok bool) (value.Value, bool) {
		return value.Number(v), ok
	})

	env, err := ToTextEnvelope(testutil.TestContext(t, time.Minute), values, WithLogger(testutil.TestLogger(t)))
	require.NoError(t, err)
	decoded, err := ReadTextRows(env)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "x2", "y"}, tables.Names[value.Value](decoded))
	for row := 0; row < 3; row++ {
		for _, name := range []string{"x", "x2", "y"} {
			want, _ := values.Get(row, name)
			got, ok := decoded.Get(row, name)
			require.True(t, ok, "(%d, %s)", row, name)
			assert.True(t, want.Equal(got), "(%d, %s): want %v, got %v", row, name, want, got)
		}
	}
}

// The same table framed over a stream comes back intact.
func TestScenarioThroughFramedStream(t *testing.T) {
	tbl, err := tables.New[value.Value](2, func(b *tables.Builder[value.Value]) error {
		return b.Fill(tables.Header[value.Value]("n"), func(i int) (value.Value, bool) {
			return value.Int(int64(i)), true
		})
	})
	require.NoError(t, err)

	env, err := ToTextEnvelope(context.Background(), tbl)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, envelope.Write(&buf, env))
	read, err := envelope.Read(&buf)
	require.NoError(t, err)

	decoded, err := ReadTextTable(context.Background(), read)
	require.NoError(t, err)
	assert.True(t, tables.Equal[value.Value](tbl, decoded, valueEqual))
}
