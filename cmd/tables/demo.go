package main

import (
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tables/pkg/envelope"
	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/logger"
	"github.com/ajitpratap0/tables/pkg/meta"
	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/tables/textio"
	"github.com/ajitpratap0/tables/pkg/value"
)

func newDemoCmd(a *app) *cobra.Command {
	var (
		rows int
		out  string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build a sample table and write it as a framed text envelope",
		Long: `demo builds a table with a column x = 0..rows-1, derives x2 = x*x,
replaces y = x2 + 1 and adds a sparse label column, then writes the table as
a framed text envelope.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := buildDemoTable(rows, a.builderOptions()...)
			if err != nil {
				return err
			}

			env, err := textio.ToTextEnvelope(cmd.Context(), tbl, a.codecOptions()...)
			if err != nil {
				return err
			}

			cc := a.cfg.CompressionConfig()
			write := func(w io.Writer) error {
				return envelope.Write(w, env, envelope.WithCompression(cc.Algorithm, cc.Level))
			}
			if out == "" || out == "-" {
				err = write(cmd.OutOrStdout())
			} else {
				err = writeFile(out, write)
			}
			if err != nil {
				return err
			}

			logger.Info("envelope written",
				zap.String("command", cmd.Name()),
				zap.String("data_id", env.DataID),
				zap.Int("rows", tbl.RowsSize()),
				zap.Int("body_bytes", len(env.Data)),
				zap.String("compression", string(cc.Algorithm)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 5, "Number of rows")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	return cmd
}

func buildDemoTable(rows int, opts ...tables.Option) (*tables.ColumnTable[value.Value], error) {
	x := tables.Header[float64]("x", tables.WithHeaderMeta(meta.New().Set("unit", "m")))
	x2 := tables.Header[float64]("x2")
	y := tables.Header[float64]("y")

	typed, err := tables.New[float64](rows, func(b *tables.Builder[float64]) error {
		if err := b.Fill(x, func(i int) (float64, bool) { return float64(i), true }); err != nil {
			return err
		}
		if err := b.Derive(x2, func(r tables.Row[float64]) (float64, bool) {
			v, ok := r.Get(x)
			return v * v, ok
		}); err != nil {
			return err
		}
		return b.ReplaceFunc(y, func(r tables.Row[float64]) (float64, bool) {
			v, ok := r.Get(x2)
			return v + 1, ok
		})
	}, opts...)
	if err != nil {
		return nil, err
	}

	values := tables.Convert[float64, value.Value](typed, func(v float64, ok bool) (value.Value, bool) {
		return value.Number(v), ok
	})

	label := tables.Header[value.Value]("label")
	return tables.Edit[value.Value](values, func(b *tables.Builder[value.Value]) error {
		return b.Fill(label, func(i int) (value.Value, bool) {
			if i%2 == 1 {
				return value.Null, false
			}
			if i == 0 {
				return value.String(""), true
			}
			return value.String("row " + strconv.Itoa(i)), true
		})
	}, opts...)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close output file").
			WithDetail("path", path)
	}
	return nil
}
