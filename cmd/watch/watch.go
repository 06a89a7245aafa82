// Package watch implements the watch command, importing statements as they
// are dropped into the data directory.
package watch

import (
	"context"
	"io"

	"fjacquet/ledger-import/cmd/root"
	"fjacquet/ledger-import/internal/container"
	"fjacquet/ledger-import/internal/fileutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/pipeline"
	"fjacquet/ledger-import/internal/watcher"

	"github.com/spf13/cobra"
)

var importExisting bool

// Cmd represents the watch command
var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Import statement files as they appear in the data directory",
	Long: `Watch the data directory and import every matching statement file once
it has stopped changing for the configured debounce window. Rows that need a
category are asked about on the terminal, exactly as with ingest.

Example:
  ledger-import watch --import-existing`,
	RunE: watchFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&importExisting, "import-existing", "e", false, "Import the files already in the directory before watching")
}

func watchFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	return Watch(cmd.Context(), c, cmd.InOrStdin(), cmd.OutOrStdout(), importExisting)
}

// FileProcessor imports a single statement file.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (pipeline.FileResult, error)
}

// ImportHandler returns a watcher handler importing each settled file with p.
func ImportHandler(p FileProcessor, log logging.Logger) watcher.Handler {
	return func(ctx context.Context, path string) error {
		fr, err := p.ProcessFile(ctx, path)
		if err != nil {
			return err
		}
		log.Info("Statement imported",
			logging.Field{Key: logging.FieldFile, Value: path},
			logging.Field{Key: "rows", Value: fr.Rows},
			logging.Field{Key: "inserted", Value: fr.Inserted},
			logging.Field{Key: "duplicates", Value: fr.Duplicates})
		return nil
	}
}

// Watch imports new statements until ctx is canceled.
func Watch(ctx context.Context, c *container.Container, in io.Reader, out io.Writer, importExisting bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := c.GetLogger()

	p, err := c.NewPipeline(ctx, c.NewPrompter(in, out), pipeline.Options{KeepGoing: true})
	if err != nil {
		return err
	}

	if importExisting {
		cfg := c.GetConfig()
		files, err := fileutils.DiscoverFiles(cfg.Data.Directory, cfg.Data.Pattern)
		if err != nil {
			return err
		}
		result, err := p.Run(ctx, files)
		if err != nil {
			return err
		}
		log.Info("Existing statements imported",
			logging.Field{Key: logging.FieldCount, Value: result.Inserted()},
			logging.Field{Key: "failed", Value: len(result.Failed)})
	}

	w, err := c.NewWatcher(ImportHandler(p, log))
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
