// Package report renders the grouped totals of the transaction store.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"github.com/gocarina/gocsv"
)

// Output formats
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatTable, FormatCSV, FormatJSON}

// ReportGenerator provides functionality to render summaries in various formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ReportGenerator{logger: logger.WithField("component", "ReportGenerator")}
}

// GenerateSummary renders the summary rows in the given format.
func (g *ReportGenerator) GenerateSummary(rows []models.SummaryRow, format string) ([]byte, error) {
	switch format {
	case FormatTable, "":
		return g.generateTable(rows)
	case FormatCSV:
		return g.generateCSV(rows)
	case FormatJSON:
		return g.generateJSON(rows)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteSummary renders the summary rows to w.
func (g *ReportGenerator) WriteSummary(w io.Writer, rows []models.SummaryRow, format string) error {
	out, err := g.GenerateSummary(rows, format)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (g *ReportGenerator) generateTable(rows []models.SummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "\ttype\tcategory\ttotal_amount\t")
	for i, r := range rows {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", i, r.Type, r.Category, r.Total.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render summary table: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) generateCSV(rows []models.SummaryRow) ([]byte, error) {
	if rows == nil {
		rows = []models.SummaryRow{}
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return out, nil
}

func (g *ReportGenerator) generateJSON(rows []models.SummaryRow) ([]byte, error) {
	if rows == nil {
		rows = []models.SummaryRow{}
	}
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}
