package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tables/pkg/envelope"
	"github.com/ajitpratap0/tables/pkg/errors"
	"github.com/ajitpratap0/tables/pkg/logger"
	"github.com/ajitpratap0/tables/pkg/mmap"
	"github.com/ajitpratap0/tables/pkg/tables"
	"github.com/ajitpratap0/tables/pkg/tables/textio"
	"github.com/ajitpratap0/tables/pkg/value"
)

const absentCell = "·"

func newInspectCmd(a *app) *cobra.Command {
	var (
		lazy    bool
		maxRows int
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Decode framed text envelopes and print their tables",
		Long: `inspect reads every frame from file, which is memory-mapped, or from
stdin when file is - or omitted. Each frame is decoded as a text value table
and its columns and rows are printed. Absent cells print as ` + absentCell + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := mmap.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f.Reader()
			}
			eager := a.cfg.Codec.Eager && !lazy

			frames := envelope.NewReader(r)
			for n := 0; ; n++ {
				env, err := frames.Next()
				if err == io.EOF {
					if n == 0 {
						return errors.New(errors.ErrorTypeData, "no envelope in input")
					}
					return nil
				}
				if err != nil {
					return err
				}

				var tbl tables.Table[value.Value]
				if eager {
					tbl, err = textio.ReadTextTable(cmd.Context(), env, a.codecOptions()...)
				} else {
					var text *textio.TextTable
					text, err = textio.ReadTextRows(env)
					if err == nil {
						if verr := text.Validate(); verr != nil {
							logger.Warn("malformed cells read as absent",
								zap.Int("frame", n),
								zap.String("data_id", env.DataID),
								zap.Error(verr))
						}
						tbl = text
					}
				}
				if err != nil {
					return err
				}

				a.log.Debug("envelope decoded",
					zap.Int("frame", n),
					zap.String("data_id", env.DataID),
					zap.Bool("eager", eager))
				if err := printTable(cmd.OutOrStdout(), env, tbl, maxRows); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().BoolVar(&lazy, "lazy", false, "Parse cells on access; malformed cells print as absent")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "Print at most this many rows (0 for all)")
	return cmd
}

func printTable(w io.Writer, env *envelope.Envelope, t tables.Table[value.Value], maxRows int) error {
	headers := t.Headers()
	fmt.Fprintf(w, "# %s type=%s rows=%d columns=%d\n", env.DataID, env.Type, t.RowsSize(), len(headers))
	for i, h := range headers {
		if h.Meta.IsEmpty() {
			continue
		}
		for _, item := range h.Meta.Items() {
			if !item.IsNode() {
				fmt.Fprintf(w, "#   %s.%s = %s\n", textio.MetaKey(i), item.Key, item.Value)
			}
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = h.Name
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))

	cells := make([]string, len(headers))
	for i, row := range t.Rows() {
		if maxRows > 0 && i >= maxRows {
			break
		}
		for j, h := range headers {
			v, ok := row.Get(h)
			if !ok {
				cells[j] = absentCell
				continue
			}
			cells[j] = v.Text()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write table")
	}
	return nil
}
