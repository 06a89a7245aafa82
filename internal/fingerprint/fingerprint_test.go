package fingerprint

import (
	"testing"
	"time"

	"fjacquet/ledger-import/internal/models"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_KnownDigests(t *testing.T) {
	tests := []struct {
		name      string
		txType    models.TransactionType
		date      time.Time
		amount    int64
		narrative string
		expected  string
	}{
		{
			name:      "salary scenario",
			txType:    models.TypeIncome,
			date:      date(2024, time.May, 1),
			amount:    250000,
			narrative: "SALARY PAYMENT CO 01/05/2024",
			expected:  "8a4b7095b46f45d57aa587864c05aebc0ce1c5b9a2da3e782dfc420bdf029dbb",
		},
		{
			name:      "expense scenario",
			txType:    models.TypeExpense,
			date:      date(2024, time.March, 12),
			amount:    -4299,
			narrative: "SUPERMARKET XYZ",
			expected:  "1985da21bef53661b2ddbef359087e75f39175dc7695591d78db3fd6674e281e",
		},
		{
			name:      "narrative truncated to 50 characters",
			txType:    models.TypeExpense,
			date:      date(2024, time.March, 12),
			amount:    -1050,
			narrative: "CARD PAYMENT 4411********1234 MAXIMA XX RIGA LV 12/03/2024 EXTRA",
			expected:  "99da2751ffb64cfb4cd99ce565796024d6e6cc3a9834da44f467deae69cb4278",
		},
		{
			name:      "absent type",
			txType:    "",
			date:      date(2024, time.March, 12),
			amount:    0,
			narrative: "ZERO",
			expected:  "1efafda019104a26975b197c604e4f048f6b6887839ed7cfda663b48671eeafe",
		},
		{
			name:      "multi-byte narrative truncated by characters",
			txType:    models.TypeExpense,
			date:      date(2024, time.March, 12),
			amount:    -100,
			narrative: "ĀBOLS UN BUMBIERIS SIA ŠĶŪNIS ČETRI ŽIRAFES ĢIMENE ĶĪMIJA ĻOTI",
			expected:  "11afb9da2623d1bfb1900d21f2f04e0cf6e4e1af100a79a4c91bd06505306fba",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.txType, tt.date, tt.amount, tt.narrative)
			assert.Equal(t, tt.expected, got)
			assert.Len(t, got, 64)
		})
	}
}

func TestRaw(t *testing.T) {
	raw := Raw(models.TypeIncome, date(2024, time.May, 1), 250000, "SALARY PAYMENT CO 01/05/2024")
	assert.Equal(t, "income_2024-05-01_250000_salary payment co 01/05/2024", raw)

	raw = Raw(models.TypeExpense, date(2024, time.May, 1), -5, "  SHOP   ")
	assert.Equal(t, "expense_2024-05-01_-5_  shop", raw, "only the whole string is trimmed")
}

func TestGenerate_Deterministic(t *testing.T) {
	first := Generate(models.TypeExpense, date(2024, time.January, 2), -1234, "RIMI RIGA")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Generate(models.TypeExpense, date(2024, time.January, 2), -1234, "RIMI RIGA"))
	}
}

func TestGenerate_CaseInsensitive(t *testing.T) {
	upper := Generate(models.TypeExpense, date(2024, time.January, 2), -1234, "RIMI RIGA")
	lower := Generate(models.TypeExpense, date(2024, time.January, 2), -1234, "rimi riga")
	assert.Equal(t, upper, lower)
}

func TestGenerate_SensitiveToIdentityFields(t *testing.T) {
	base := Generate(models.TypeExpense, date(2024, time.January, 2), -1234, "RIMI RIGA")
	assert.NotEqual(t, base, Generate(models.TypeIncome, date(2024, time.January, 2), -1234, "RIMI RIGA"))
	assert.NotEqual(t, base, Generate(models.TypeExpense, date(2024, time.January, 3), -1234, "RIMI RIGA"))
	assert.NotEqual(t, base, Generate(models.TypeExpense, date(2024, time.January, 2), -1235, "RIMI RIGA"))
	assert.NotEqual(t, base, Generate(models.TypeExpense, date(2024, time.January, 2), -1234, "RIMI JURMALA"))
}

func TestGenerate_IgnoresNarrativeBeyondPrefix(t *testing.T) {
	prefix := "0123456789012345678901234567890123456789012345678X"
	a := Generate(models.TypeExpense, date(2024, time.January, 2), -1, prefix+" tail one")
	b := Generate(models.TypeExpense, date(2024, time.January, 2), -1, prefix+" tail two")
	assert.Equal(t, a, b)
}

func TestForCandidate_IndependentOfCategory(t *testing.T) {
	c := models.Candidate{
		Narrative: "SUPERMARKET XYZ",
		Amount:    -4299,
		Date:      date(2024, time.March, 12),
		Type:      models.TypeExpense,
	}
	before := ForCandidate(c)

	c.SetCategory("groceries")
	afterGroceries := ForCandidate(c)
	c.SetCategory("food")
	afterFood := ForCandidate(c)

	assert.Equal(t, before, afterGroceries)
	assert.Equal(t, before, afterFood)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 50))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "ĀB", truncate("ĀBC", 2))
	assert.Equal(t, "", truncate("abc", 0))
}
