package statementparser

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf8Parser() *Parser {
	opts := DefaultOptions()
	opts.Encoding = EncodingUTF8
	return NewParser(opts, logging.NewMockLogger())
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_Statement(t *testing.T) {
	candidates, err := utf8Parser().Parse(filepath.Join("testdata", "statement_utf8.csv"))
	require.NoError(t, err)
	require.Len(t, candidates, 5)

	expense := candidates[0]
	assert.Equal(t, "SUPERMARKET XYZ", expense.Narrative)
	assert.Equal(t, int64(-4299), expense.Amount)
	assert.Equal(t, date(2024, 3, 12), expense.Date)
	assert.Equal(t, "", expense.NarrativeDate)
	assert.Equal(t, models.TypeExpense, expense.Type)
	assert.False(t, expense.Categorized)
	assert.Equal(t, 5, expense.Line)

	income := candidates[1]
	assert.Equal(t, int64(250000), income.Amount)
	assert.Equal(t, "01.05.2024", income.NarrativeDate)
	assert.Equal(t, date(2024, 5, 1), income.Date, "narrative date wins over the Date column")
	assert.Equal(t, models.TypeIncome, income.Type)

	zero := candidates[4]
	assert.Equal(t, int64(0), zero.Amount)
	assert.Equal(t, models.TransactionType(""), zero.Type)
}

func TestParse_CP1257(t *testing.T) {
	p := NewParser(DefaultOptions(), logging.NewMockLogger())
	candidates, err := p.Parse(filepath.Join("testdata", "statement_cp1257.csv"))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "PIRKUMS RIMI ĀGENSKALNS RĪGA", candidates[0].Narrative)
	assert.Equal(t, int64(-1530), candidates[0].Amount)
	assert.Equal(t, int64(180000), candidates[1].Amount, "thousands separator space is dropped")
}

func TestParse_MissingFile(t *testing.T) {
	_, err := utf8Parser().Parse(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error opening statement")
}

func statement(rows ...string) string {
	lines := []string{"a|", "b|", "c|", "Date|Narrative|Amount DR/Amount CR"}
	lines = append(lines, rows...)
	lines = append(lines, "t1|", "t2|", "t3|", "t4|", "t5|")
	return strings.Join(lines, "\n") + "\n"
}

func TestParseReader_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		field     string
		value     string
		line      int
		invalidFm bool
	}{
		{
			name:    "bad amount",
			content: statement("12.03.2024|SHOP|-12,34", "13.03.2024|SHOP|abc"),
			field:   models.ColumnAmount, value: "abc", line: 6,
		},
		{
			name:    "empty amount",
			content: statement("12.03.2024|SHOP|"),
			field:   models.ColumnAmount, value: "", line: 5,
		},
		{
			name:    "bad column date",
			content: statement("2024-03-12|SHOP|-1,00"),
			field:   models.ColumnDate, value: "2024-03-12", line: 5,
		},
		{
			name:    "impossible narrative date",
			content: statement("12.03.2024|CARD 31/02/2024|-1,00"),
			field:   models.ColumnNarrative, value: "31.02.2024", line: 5,
		},
		{
			name:      "missing amount column",
			content:   "a|\nb|\nc|\nDate|Narrative|Sum\n12.03.2024|SHOP|-1,00\n",
			invalidFm: true,
		},
		{
			name:      "too short",
			content:   "a|\nb|\n",
			invalidFm: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := utf8Parser().ParseReader(strings.NewReader(tt.content), "test.csv")
			require.Error(t, err)

			if tt.invalidFm {
				var formatErr *parsererror.InvalidFormatError
				assert.True(t, errors.As(err, &formatErr), "got %T: %v", err, err)
				return
			}

			var parseErr *parsererror.ParseError
			require.True(t, errors.As(err, &parseErr), "got %T: %v", err, err)
			assert.Equal(t, tt.field, parseErr.Field)
			assert.Equal(t, tt.value, parseErr.Value)
			assert.Equal(t, tt.line, parseErr.Line)
			assert.Equal(t, "test.csv", parseErr.File)
		})
	}
}

func TestParseReader_Framing(t *testing.T) {
	t.Run("only trailer after header", func(t *testing.T) {
		candidates, err := utf8Parser().ParseReader(strings.NewReader(statement()), "empty.csv")
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("trailer longer than body", func(t *testing.T) {
		content := "a|\nb|\nc|\nDate|Narrative|Amount DR/Amount CR\n12.03.2024|SHOP|-1,00\nt1|\n"
		candidates, err := utf8Parser().ParseReader(strings.NewReader(content), "short.csv")
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("custom framing and delimiter", func(t *testing.T) {
		p := NewParser(Options{HeaderRows: 0, FooterRows: 0, Delimiter: ';', Encoding: EncodingUTF8}, logging.NewMockLogger())
		content := "Narrative;Date;Amount DR/Amount CR;Extra\nBOLT RIDE;02.04.2024;-7,50\nLIDL;03.04.2024;-3,10;x;y\n"
		candidates, err := p.ParseReader(strings.NewReader(content), "custom.csv")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, "BOLT RIDE", candidates[0].Narrative)
		assert.Equal(t, int64(-750), candidates[0].Amount)
		assert.Equal(t, date(2024, 4, 3), candidates[1].Date)
	})

	t.Run("quotes inside narrative", func(t *testing.T) {
		content := statement(`12.03.2024|SHOP "BEST" DEALS|-1,00`)
		candidates, err := utf8Parser().ParseReader(strings.NewReader(content), "quotes.csv")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, `SHOP "BEST" DEALS`, candidates[0].Narrative)
	})

	t.Run("narrative starting with a quote", func(t *testing.T) {
		content := statement(
			`12.03.2024|"QUOTED" SHOP 05/02/2024|-1,00`,
			`13.03.2024|"OPEN QUOTE SHOP|-2,00`,
			"14.03.2024|PLAIN SHOP|-3,00",
		)
		candidates, err := utf8Parser().ParseReader(strings.NewReader(content), "quotes.csv")
		require.NoError(t, err)
		require.Len(t, candidates, 3)

		assert.Equal(t, `"QUOTED" SHOP 05/02/2024`, candidates[0].Narrative)
		assert.Equal(t, date(2024, 2, 5), candidates[0].Date)
		assert.Equal(t, int64(-100), candidates[0].Amount)
		assert.Equal(t, 5, candidates[0].Line)

		assert.Equal(t, `"OPEN QUOTE SHOP`, candidates[1].Narrative)
		assert.Equal(t, int64(-200), candidates[1].Amount)
		assert.Equal(t, 6, candidates[1].Line)

		assert.Equal(t, "PLAIN SHOP", candidates[2].Narrative)
		assert.Equal(t, date(2024, 3, 14), candidates[2].Date)
	})

	t.Run("windows line endings and blank lines", func(t *testing.T) {
		content := strings.ReplaceAll(statement("12.03.2024|SHOP|-1,00", "", "13.03.2024|SHOP|-2,00"), "\n", "\r\n")
		candidates, err := utf8Parser().ParseReader(strings.NewReader(content), "crlf.csv")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, "SHOP", candidates[0].Narrative)
		assert.Equal(t, 7, candidates[1].Line)
	})

	t.Run("amount truncated toward zero", func(t *testing.T) {
		content := statement("12.03.2024|ROUNDING|-0,019", "12.03.2024|ROUNDING|0,29")
		candidates, err := utf8Parser().ParseReader(strings.NewReader(content), "round.csv")
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, int64(-1), candidates[0].Amount)
		assert.Equal(t, int64(29), candidates[1].Amount)
	})
}

func TestNewParser_Defaults(t *testing.T) {
	p := NewParser(Options{HeaderRows: 1}, nil)
	assert.Equal(t, '|', p.opts.Delimiter)
	assert.Equal(t, EncodingCP1257, p.opts.Encoding)
	assert.Equal(t, 1, p.opts.HeaderRows)
}

func TestParseReader_UnsupportedEncoding(t *testing.T) {
	p := NewParser(Options{Encoding: "ebcdic"}, logging.NewMockLogger())
	_, err := p.ParseReader(strings.NewReader(statement()), "x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported statement encoding")
}
