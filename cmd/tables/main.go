// Command tables builds, frames and inspects text-encoded value tables.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tables/pkg/logger"
)

var version = "0.1.0"

func main() {
	root, a := newRootCmd()
	if err := execute(root, a); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs root and tears app down afterwards, whether or not the
// command failed
func execute(root *cobra.Command, a *app) (err error) {
	defer func() {
		if terr := a.teardown(root); err == nil {
			err = terr
		}
	}()
	return root.Execute()
}

func newRootCmd() (*cobra.Command, *app) {
	app := &app{}

	root := &cobra.Command{
		Use:   "tables",
		Short: "Columnar value tables and their text envelopes",
		Long: `tables builds in-memory columnar tables, encodes them as text envelopes
(ordered column metadata plus a tab-separated body) and reads them back.

Envelopes are stored as frames: one JSON header line followed by the payload,
optionally compressed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}
	app.bindFlags(root)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tables v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newDemoCmd(app))
	root.AddCommand(newInspectCmd(app))

	return root, app
}
