// Package summary implements the summary command.
package summary

import (
	"context"
	"io"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/container"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/report"

	"github.com/spf13/cobra"
)

var (
	format     string
	outputFile string
)

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the totals of the ledger grouped by type and category",
	Long: `Print the totals of every stored transaction grouped by type and
category, without importing anything.

Example:
  ledger-import summary --format csv --output summary.csv`,
	RunE: summaryFunc,
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatTable, "Output format: table, csv or json")
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the summary to this file instead of stdout")
}

func summaryFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	return Write(cmd.Context(), c, cmd.OutOrStdout(), format, outputFile)
}

// Write renders the store summary to out, or to outputFile when set.
func Write(ctx context.Context, c *container.Container, out io.Writer, format, outputFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := common.ValidateFormat(format); err != nil {
		return err
	}

	ts, err := c.TransactionStore(ctx)
	if err != nil {
		return err
	}
	rows, err := ts.Summarize(ctx)
	if err != nil {
		return err
	}
	c.GetLogger().Debug("Summary loaded", logging.Field{Key: logging.FieldCount, Value: len(rows)})

	data, err := c.GetReportGenerator().GenerateSummary(rows, format)
	if err != nil {
		return err
	}
	return common.WriteReport(out, outputFile, data)
}
