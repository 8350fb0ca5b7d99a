package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tabviz/internal/dataset"
	"github.com/leapstack-labs/tabviz/internal/ingest"
)

// NewIngestCommand creates the ingest command: a one-shot pipeline run
// that prints the summary and a bounded preview table.
func NewIngestCommand(getConfig ConfigFunc, getLogger LoggerFunc) *cobra.Command {
	var previewRows int

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a spreadsheet file and print a preview",
		Args:  cobra.ExactArgs(1),
		Example: `  # Preview a CSV in the terminal
  tabviz ingest sales.csv

  # Show more rows
  tabviz ingest report.xlsx --rows 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig(cmd.Context())
			logger := getLogger(cmd.Context())

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			pipeline := ingest.New(cfg.Limits, logger)
			res, err := pipeline.Ingest(cmd.Context(), raw, filepath.Base(args[0]), ingest.Options{})
			if err != nil {
				return err
			}

			ds := res.Dataset
			summary := dataset.Summarize(ds)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d columns (%d numeric, %d categorical)\n",
				filepath.Base(args[0]), summary.Rows, summary.Columns, summary.Numeric, summary.Categorical)
			if res.Truncated {
				fmt.Fprintf(cmd.OutOrStdout(), "note: row cap reached, dataset truncated to %d rows\n", summary.Rows)
			}
			if res.HeaderRow > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "note: header detected at row %d\n", res.HeaderRow+1)
			}

			if previewRows <= 0 {
				previewRows = cfg.Limits.PreviewRows
			}
			renderPreview(cmd, ds, previewRows)
			return nil
		},
	}

	cmd.Flags().IntVar(&previewRows, "rows", 10, "Number of preview rows to print")

	return cmd
}

func renderPreview(cmd *cobra.Command, ds *dataset.Dataset, rows int) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())

	header := table.Row{}
	for _, name := range ds.Names() {
		header = append(header, name)
	}
	t.AppendHeader(header)

	for _, row := range ds.HeadRows(rows) {
		r := table.Row{}
		for _, cell := range row {
			r = append(r, cell)
		}
		t.AppendRow(r)
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}
