// Package prompt asks the operator for the category of rows the keyword
// tables could not classify.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"fjacquet/ledger-import/internal/dateutils"
	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/parsererror"

	"github.com/fatih/color"
)

// ErrInputClosed is returned when the input ends before a valid answer was given.
var ErrInputClosed = errors.New("input closed")

var (
	bannerColor  = color.New(color.BgYellow, color.FgBlack)
	labelColor   = color.New(color.FgCyan)
	invalidColor = color.New(color.FgRed)
)

// Prompter reads category answers line by line.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	logger logging.Logger
}

// NewPrompter creates a prompter reading from in and writing to out.
func NewPrompter(in io.Reader, out io.Writer, logger logging.Logger) *Prompter {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Prompter{in: bufio.NewReader(in), out: out, logger: logger}
}

// Resolve shows the row and asks until the answer is one of valid or empty.
// An empty answer means "skip this row" and is returned as "".
func (p *Prompter) Resolve(ctx context.Context, c models.Candidate, valid []string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		p.printBanner(c)
		_, _ = fmt.Fprintf(p.out, "  Enter category %s or ' ' to skip: ", "["+strings.Join(valid, ", ")+"]")

		line, err := p.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				err = ErrInputClosed
			}
			return "", &parsererror.CategorizationError{
				Transaction: c.Fingerprint,
				Strategy:    "Prompt",
				Err:         err,
			}
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		if answer == "" || slices.Contains(valid, answer) {
			p.logger.Debug("User input category",
				logging.Field{Key: logging.FieldCategory, Value: answer},
				logging.Field{Key: logging.FieldFingerprint, Value: c.Fingerprint})
			return answer, nil
		}

		_, _ = invalidColor.Fprintf(p.out, "Invalid category '%s'. Please try again.\n", answer)
	}
}

func (p *Prompter) printBanner(c models.Candidate) {
	_, _ = bannerColor.Fprintln(p.out, "Input needed -----------------------------------")
	p.printField("Narrative", c.Narrative)
	p.printField("Amount", c.MajorAmount())
	p.printField("Date", dateutils.ToISODate(c.Date))
	p.printField("Fingerprint", c.Fingerprint)
}

func (p *Prompter) printField(label, value string) {
	_, _ = labelColor.Fprintf(p.out, "  %s:", label)
	_, _ = fmt.Fprintf(p.out, " %s\n", value)
}
