package categorizer

import (
	"context"
	"strings"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
)

// SkipCategory is returned for transactions matching the skip list.
const SkipCategory = models.CategorySkip

// SkipStrategy matches transactions that must never be imported,
// such as transfers between own accounts. It runs before any table lookup.
type SkipStrategy struct {
	keywords []string
	logger   logging.Logger
}

// NewSkipStrategy creates a SkipStrategy over lower-case keywords.
func NewSkipStrategy(keywords []string, logger logging.Logger) *SkipStrategy {
	return &SkipStrategy{keywords: lowerAll(keywords), logger: logger}
}

// Name returns the name of this strategy for logging and debugging.
func (s *SkipStrategy) Name() string {
	return "Skip"
}

// Categorize reports a skip match when any skip keyword occurs in the narrative.
func (s *SkipStrategy) Categorize(_ context.Context, tx Transaction) (Result, error) {
	narrative := strings.ToLower(tx.Narrative)
	for _, keyword := range s.keywords {
		if strings.Contains(narrative, keyword) {
			s.logger.Debug("Transaction matched skip list",
				logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
				logging.Field{Key: logging.FieldKeyword, Value: keyword})
			return Result{Category: SkipCategory, Found: true, Strategy: s.Name(), Keyword: keyword}, nil
		}
	}
	return Result{}, nil
}

// KeywordStrategy picks the income table for positive amounts and the
// expense table otherwise, then returns the first category in table order
// with a keyword contained in the narrative.
type KeywordStrategy struct {
	income  []models.CategoryRule
	expense []models.CategoryRule
	logger  logging.Logger
}

// NewKeywordStrategy creates a KeywordStrategy from the income and expense tables.
func NewKeywordStrategy(tables models.CategoryTables, logger logging.Logger) *KeywordStrategy {
	return &KeywordStrategy{
		income:  lowerRules(tables.Income),
		expense: lowerRules(tables.Expense),
		logger:  logger,
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

// Categorize attempts to categorize a transaction using keyword matching.
func (s *KeywordStrategy) Categorize(_ context.Context, tx Transaction) (Result, error) {
	narrative := strings.ToLower(tx.Narrative)
	rules := s.expense
	if tx.Amount > 0 {
		rules = s.income
	}

	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(narrative, keyword) {
				s.logger.Debug("Transaction categorized using keyword matching",
					logging.Field{Key: logging.FieldStrategy, Value: s.Name()},
					logging.Field{Key: logging.FieldKeyword, Value: keyword},
					logging.Field{Key: logging.FieldCategory, Value: rule.Name})
				return Result{Category: rule.Name, Found: true, Strategy: s.Name(), Keyword: keyword}, nil
			}
		}
	}
	return Result{}, nil
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func lowerRules(rules []models.CategoryRule) []models.CategoryRule {
	out := make([]models.CategoryRule, len(rules))
	for i, r := range rules {
		out[i] = models.CategoryRule{Name: r.Name, Keywords: lowerAll(r.Keywords)}
	}
	return out
}
