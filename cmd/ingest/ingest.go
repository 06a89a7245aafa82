// Package ingest implements the ingest command, the main import run.
package ingest

import (
	"context"
	"io"

	"fjacquet/ledger-import/cmd/common"
	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/container"
	"fjacquet/ledger-import/internal/fileutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/pipeline"
	"fjacquet/ledger-import/internal/report"

	"github.com/spf13/cobra"
)

// Options controls one ingest run. Empty directory and pattern fall back to
// the configuration.
type Options struct {
	DataDir    string
	Pattern    string
	KeepGoing  bool
	Format     string
	OutputFile string
}

var opts = Options{Format: report.FormatTable}

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:     "ingest",
	Aliases: []string{"import"},
	Short:   "Import statement files from the data directory",
	Long: `Import every statement file in the data directory into the ledger.

Rows are classified with the keyword tables. Rows nothing matches are shown
on the terminal and you are asked for a category (a single space skips the
row). Rows already in the store are recognized by their fingerprint and
never inserted twice. The grouped totals of the whole store are printed at
the end.

Example:
  ledger-import ingest --data-dir ./data --pattern "*.csv"`,
	RunE: ingestFunc,
}

func init() {
	Cmd.Flags().StringVarP(&opts.DataDir, "data-dir", "d", "", "Directory holding the statement files (default from config)")
	Cmd.Flags().StringVarP(&opts.Pattern, "pattern", "p", "", "Glob pattern selecting statement files (default from config)")
	Cmd.Flags().BoolVarP(&opts.KeepGoing, "keep-going", "k", false, "Continue with the next file when one fails to import")
	Cmd.Flags().StringVarP(&opts.Format, "format", "f", report.FormatTable, "Summary format: table, csv or json")
	Cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "Write the summary to this file instead of stdout")
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	_, err = Run(cmd.Context(), c, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
	return err
}

// Run imports the statement files selected by o. Prompts are read from in and
// written to out together with the summary.
func Run(ctx context.Context, c *container.Container, in io.Reader, out io.Writer, o Options) (pipeline.RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := common.ValidateFormat(o.Format); err != nil {
		return pipeline.RunResult{}, err
	}

	cfg := c.GetConfig()
	dir := o.DataDir
	if dir == "" {
		dir = cfg.Data.Directory
	}
	pattern := o.Pattern
	if pattern == "" {
		pattern = cfg.Data.Pattern
	}

	log := c.GetLogger()
	files, err := fileutils.DiscoverFiles(dir, pattern)
	if err != nil {
		return pipeline.RunResult{}, err
	}
	log.Debug("Discovered statement files",
		logging.Field{Key: "directory", Value: dir},
		logging.Field{Key: "pattern", Value: pattern},
		logging.Field{Key: logging.FieldCount, Value: len(files)})

	p, err := c.NewPipeline(ctx, c.NewPrompter(in, out), pipeline.Options{KeepGoing: o.KeepGoing})
	if err != nil {
		return pipeline.RunResult{}, err
	}
	return common.ImportFiles(ctx, p, files, c.GetReportGenerator(), out, o.OutputFile, o.Format, log)
}
