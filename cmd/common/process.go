// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"slices"

	"fjacquet/ledger-import/internal/fileutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/pipeline"
	"fjacquet/ledger-import/internal/report"
)

// Importer runs an import over a list of statement files.
type Importer interface {
	Run(ctx context.Context, files []string) (pipeline.RunResult, error)
}

// SummaryWriter renders summary rows.
type SummaryWriter interface {
	GenerateSummary(rows []models.SummaryRow, format string) ([]byte, error)
}

// ValidateFormat rejects report formats the generator does not know.
func ValidateFormat(format string) error {
	if !slices.Contains(report.Formats, format) {
		return fmt.Errorf("unsupported format %q (expected one of %v)", format, report.Formats)
	}
	return nil
}

// ImportFiles imports files with p and writes the resulting store summary to
// out, or to outputFile when it is set.
func ImportFiles(ctx context.Context, p Importer, files []string, reports SummaryWriter, out io.Writer, outputFile, format string, log logging.Logger) (pipeline.RunResult, error) {
	if len(files) == 0 {
		log.Warn("No statement files to import")
	}

	result, err := p.Run(ctx, files)
	if err != nil {
		return result, err
	}

	log.Info("Import run complete",
		logging.Field{Key: logging.FieldRunID, Value: result.RunID},
		logging.Field{Key: "files", Value: len(result.Files)},
		logging.Field{Key: "failed", Value: len(result.Failed)},
		logging.Field{Key: "inserted", Value: result.Inserted()})

	data, err := reports.GenerateSummary(result.Summary, format)
	if err != nil {
		return result, err
	}
	if err := WriteReport(out, outputFile, data); err != nil {
		return result, err
	}

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%d of %d files failed to import", len(result.Failed), len(files))
	}
	return result, nil
}

// WriteReport writes data to outputFile, or to out when no file is given.
func WriteReport(out io.Writer, outputFile string, data []byte) error {
	if outputFile == "" {
		_, err := out.Write(data)
		return err
	}
	if err := fileutils.WriteFile(outputFile, data, models.PermissionConfigFile); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}
