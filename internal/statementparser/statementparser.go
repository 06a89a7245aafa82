// Package statementparser reads the pipe-delimited account statements exported
// by the bank and turns every row into a transaction candidate.
//
// A statement starts with a few lines of account information, followed by the
// column header, the transaction rows and a trailer with balances. Only the
// Date, Narrative and Amount DR/Amount CR columns are used.
package statementparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/parsererror"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/charmap"
)

const parserName = "statement"

// Supported input encodings
const (
	EncodingCP1257 = "cp1257"
	EncodingUTF8   = "utf-8"
)

// StatementRow is one transaction line of the export.
type StatementRow struct {
	Date      string `csv:"Date"`
	Narrative string `csv:"Narrative"`
	Amount    string `csv:"Amount DR/Amount CR"`
}

// Options describe the framing of the statement file.
type Options struct {
	HeaderRows int    // lines before the column header
	FooterRows int    // trailer lines after the last transaction
	Delimiter  rune
	Encoding   string // cp1257 or utf-8
}

// DefaultOptions matches the bank's export format.
func DefaultOptions() Options {
	return Options{HeaderRows: 3, FooterRows: 5, Delimiter: '|', Encoding: EncodingCP1257}
}

// Parser extracts candidates from statement files.
type Parser struct {
	opts   Options
	logger logging.Logger
}

// NewParser creates a parser. A zero delimiter or empty encoding falls back to
// the defaults.
func NewParser(opts Options, logger logging.Logger) *Parser {
	defaults := DefaultOptions()
	if opts.Delimiter == 0 {
		opts.Delimiter = defaults.Delimiter
	}
	if opts.Encoding == "" {
		opts.Encoding = defaults.Encoding
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Parser{opts: opts, logger: logger}
}

// Parse reads the statement at filePath.
func (p *Parser) Parse(filePath string) ([]models.Candidate, error) {
	file, err := os.Open(filePath) // #nosec G304 -- statement paths come from the data directory
	if err != nil {
		return nil, fmt.Errorf("error opening statement: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			p.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	return p.ParseReader(file, filePath)
}

// ParseReader reads a statement from r. name is used in errors and log lines.
// The first malformed row aborts the whole statement.
func (p *Parser) ParseReader(r io.Reader, name string) ([]models.Candidate, error) {
	decoded, err := p.decoder(r)
	if err != nil {
		return nil, err
	}

	records, lines, err := p.readRecords(decoded, name)
	if err != nil {
		return nil, err
	}

	if len(records) <= p.opts.HeaderRows {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       name,
			ExpectedFormat: fmt.Sprintf("column header after %d lines", p.opts.HeaderRows),
			Msg:            "file too short",
		}
	}

	header := normalizeHeader(records[p.opts.HeaderRows])
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &parsererror.InvalidFormatError{
			FilePath:             name,
			ExpectedFormat:       strings.Join(requiredColumns, ", "),
			ActualContentSnippet: strings.Join(header, string(p.opts.Delimiter)),
			Msg:                  "missing columns " + strings.Join(missing, ", "),
		}
	}

	start := p.opts.HeaderRows + 1
	end := len(records) - p.opts.FooterRows
	if end < start {
		end = start
	}
	body := records[start:end]

	rows := make([]StatementRow, 0, len(body))
	if len(body) > 0 {
		in := &recordsReader{records: append([][]string{header}, padRecords(body, len(header))...)}
		if err := gocsv.UnmarshalCSV(in, &rows); err != nil {
			return nil, fmt.Errorf("error reading statement rows of %s: %w", name, err)
		}
	}

	candidates := make([]models.Candidate, 0, len(rows))
	for i, row := range rows {
		c, err := toCandidate(row, name, lines[start+i])
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	p.logger.Debug("Preprocessed statement",
		logging.Field{Key: logging.FieldFile, Value: filepath.Base(name)},
		logging.Field{Key: logging.FieldCount, Value: len(candidates)})
	return candidates, nil
}

func (p *Parser) decoder(r io.Reader) (io.Reader, error) {
	switch strings.ToLower(p.opts.Encoding) {
	case EncodingCP1257:
		return charmap.Windows1257.NewDecoder().Reader(r), nil
	case EncodingUTF8, "utf8":
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported statement encoding: %s", p.opts.Encoding)
	}
}

// readRecords splits the input into records, one per non-blank line, and
// remembers the line each record comes from. The export is never quoted, so
// quote characters are kept as part of the field.
func (p *Parser) readRecords(r io.Reader, name string) ([][]string, []int, error) {
	reader := bufio.NewReader(r)
	delimiter := string(p.opts.Delimiter)

	var records [][]string
	var lines []int
	for line := 1; ; line++ {
		text, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("error reading statement %s: %w", name, err)
		}
		text = strings.TrimRight(text, "\r\n")
		if strings.TrimSpace(text) != "" {
			records = append(records, strings.Split(text, delimiter))
			lines = append(lines, line)
		}
		if err != nil {
			break
		}
	}
	return records, lines, nil
}

func toCandidate(row StatementRow, file string, line int) (models.Candidate, error) {
	amount, err := models.ParseMinorUnits(row.Amount)
	if err != nil {
		return models.Candidate{}, &parsererror.ParseError{
			Parser: parserName, File: file, Line: line,
			Field: models.ColumnAmount, Value: row.Amount, Err: err,
		}
	}

	narrativeDate := dateutils.ExtractNarrativeDate(row.Narrative)
	date, raw, err := dateutils.EffectiveDate(narrativeDate, row.Date)
	if err != nil {
		field := models.ColumnDate
		if narrativeDate != "" {
			field = models.ColumnNarrative
		}
		return models.Candidate{}, &parsererror.ParseError{
			Parser: parserName, File: file, Line: line,
			Field: field, Value: raw, Err: err,
		}
	}

	return models.Candidate{
		Line:          line,
		Narrative:     row.Narrative,
		Amount:        amount,
		Date:          date,
		NarrativeDate: narrativeDate,
		Type:          models.DetermineType(amount),
	}, nil
}

var requiredColumns = []string{models.ColumnDate, models.ColumnNarrative, models.ColumnAmount}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range requiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// padRecords gives every record exactly width fields.
func padRecords(records [][]string, width int) [][]string {
	out := make([][]string, len(records))
	for i, rec := range records {
		switch {
		case len(rec) == width:
			out[i] = rec
		case len(rec) > width:
			out[i] = rec[:width]
		default:
			padded := make([]string, width)
			copy(padded, rec)
			out[i] = padded
		}
	}
	return out
}

// recordsReader feeds already split records to gocsv.
type recordsReader struct {
	records [][]string
	pos     int
}

func (r *recordsReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordsReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}
