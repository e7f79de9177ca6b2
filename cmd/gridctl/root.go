package main

import (
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/samirrijal/geogrid/internal/pkg/logging"
)

type outputOptions struct {
	csv bool
}

func newRootCmd() *cobra.Command {
	var level string
	root := &cobra.Command{
		Use:           "gridctl",
		Short:         "Inspect latitude/longitude grids",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(logging.NewHandler(cmd.ErrOrStderr(), level, "text")))
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newLinesCmd(),
		newLabelsCmd(),
		newFormatCmd(),
		newDensityCmd(),
	)
	return root
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.csv, "csv", false, "print CSV instead of a table")
}

func (o *outputOptions) newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func (o *outputOptions) render(t table.Writer) {
	if o.csv {
		t.RenderCSV()
		return
	}
	t.Render()
}
