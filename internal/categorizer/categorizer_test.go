package categorizer

import (
	"context"
	"errors"
	"testing"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
	"fjacquet/ledger-import/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTables() models.CategoryTables {
	return models.CategoryTables{
		Skip: []string{"revolut"},
		Income: []models.CategoryRule{
			{Name: "salary", Keywords: []string{"salary", "darba alga"}},
			{Name: "refund", Keywords: []string{"return"}},
		},
		Expense: []models.CategoryRule{
			{Name: "groceries", Keywords: []string{"supermarket", "rimi"}},
			{Name: "shopping", Keywords: []string{"market"}},
			{Name: "transport", Keywords: []string{"Bolt"}},
		},
	}
}

func TestCategorizer_Classify(t *testing.T) {
	c := NewCategorizer(testTables(), logging.NewMockLogger())

	tests := []struct {
		name      string
		narrative string
		amount    int64
		category  string
		found     bool
	}{
		{name: "expense keyword", narrative: "SUPERMARKET XYZ", amount: -4299, category: "groceries", found: true},
		{name: "income keyword", narrative: "SALARY PAYMENT CO", amount: 250000, category: "salary", found: true},
		{name: "first match in table order", narrative: "supermarket at the market", amount: -100, category: "groceries", found: true},
		{name: "later rule when earlier absent", narrative: "flea market", amount: -100, category: "shopping", found: true},
		{name: "skip wins over table match", narrative: "REVOLUT top-up supermarket", amount: -5000, category: SkipCategory, found: true},
		{name: "skip applies to income", narrative: "Revolut transfer back", amount: 5000, category: SkipCategory, found: true},
		{name: "income keyword ignored for expense", narrative: "salary advance repayment", amount: -100, found: false},
		{name: "expense keyword ignored for income", narrative: "RIMI cashback", amount: 100, found: false},
		{name: "zero amount uses expense table", narrative: "RIMI adjustment", amount: 0, category: "groceries", found: true},
		{name: "keywords are case-insensitive", narrative: "BOLT.EU ride", amount: -700, category: "transport", found: true},
		{name: "unknown narrative", narrative: "MYSTERY SHOP", amount: -100, found: false},
		{name: "empty narrative", narrative: "", amount: -100, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.narrative, tt.amount)
			assert.Equal(t, tt.found, result.Found)
			assert.Equal(t, tt.category, result.Category)
		})
	}
}

func TestCategorizer_CategoryIndependentOfOtherRows(t *testing.T) {
	c := NewCategorizer(testTables(), logging.NewMockLogger())

	first := c.Classify("SUPERMARKET XYZ", -4299)
	_ = c.Classify("SALARY PAYMENT CO", 250000)
	_ = c.Classify("revolut", -1)
	again := c.Classify("SUPERMARKET XYZ", -4299)

	assert.Equal(t, first, again)
}

func TestCategorizer_ResultDetails(t *testing.T) {
	c := NewCategorizer(testTables(), logging.NewMockLogger())

	result := c.Classify("Paid at RIMI Riga", -1250)
	assert.Equal(t, "Keyword", result.Strategy)
	assert.Equal(t, "rimi", result.Keyword)
	assert.False(t, result.IsSkip())
	assert.Equal(t, `groceries (Keyword: "rimi")`, result.String())

	skip := c.Classify("revolut", -1)
	assert.True(t, skip.IsSkip())
	assert.Equal(t, "Skip", skip.Strategy)

	assert.Equal(t, "not found", Result{}.String())
}

func TestCategorizer_ValidCategories(t *testing.T) {
	c := NewCategorizer(testTables(), logging.NewMockLogger())

	assert.Equal(t, []string{"salary", "refund"}, c.ValidCategories(1))
	assert.Equal(t, []string{"groceries", "shopping", "transport"}, c.ValidCategories(-1))
	assert.Equal(t, []string{"groceries", "shopping", "transport"}, c.ValidCategories(0))
}

func TestNewCategorizerFromStore(t *testing.T) {
	c, err := NewCategorizerFromStore(&store.MockCategoryStore{Tables: testTables()}, logging.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, "groceries", c.Classify("rimi", -1).Category)

	_, err = NewCategorizerFromStore(&store.MockCategoryStore{LoadCategoriesError: errors.New("boom")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load category tables")
}

func TestNewCategorizer_DefaultTables(t *testing.T) {
	c := NewCategorizer(store.DefaultCategoryTables(), logging.NewMockLogger())

	assert.Equal(t, "food", c.Classify("PIRKUMS MAXIMA X123 RIGA", -1530).Category)
	assert.Equal(t, "salary", c.Classify("DARBA ALGA 05/2024", 180000).Category)
	assert.Equal(t, SkipCategory, c.Classify("LV89PARX0002056954007 transfer", -100).Category)
	assert.Equal(t, "roundups", c.Classify("PIGR roundup", -37).Category)
}

type failingStrategy struct{}

func (failingStrategy) Name() string { return "Failing" }
func (failingStrategy) Categorize(context.Context, Transaction) (Result, error) {
	return Result{}, errors.New("unavailable")
}

func TestCategorizer_StrategyError(t *testing.T) {
	logger := logging.NewMockLogger()
	c := NewCategorizer(testTables(), logger)
	c.strategies = append([]CategorizationStrategy{failingStrategy{}}, c.strategies...)

	_, err := c.Categorize(context.Background(), Transaction{Narrative: "rimi", Amount: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failing strategy")

	result := c.Classify("rimi", -1)
	assert.False(t, result.Found)
	assert.True(t, logger.HasEntry("WARN", "Categorization failed"))
}
