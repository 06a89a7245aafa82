// Package categorizer assigns categories to statement rows from keyword tables.
// A row matching the skip list is never imported; other rows are looked up in
// the income or expense table depending on the sign of the amount.
package categorizer

import (
	"context"
	"fmt"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"
)

// Transaction is the part of a statement row the strategies look at.
type Transaction struct {
	Narrative string
	Amount    int64 // signed minor units
}

// Categorizer runs the categorization strategies in order.
type Categorizer struct {
	tables     models.CategoryTables
	strategies []CategorizationStrategy
	logger     logging.Logger
}

// NewCategorizer builds a categorizer over the given tables.
func NewCategorizer(tables models.CategoryTables, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Categorizer{
		tables: tables,
		strategies: []CategorizationStrategy{
			NewSkipStrategy(tables.Skip, logger),
			NewKeywordStrategy(tables, logger),
		},
		logger: logger,
	}
}

// NewCategorizerFromStore loads the tables from store and builds a categorizer.
func NewCategorizerFromStore(store CategoryStoreInterface, logger logging.Logger) (*Categorizer, error) {
	tables, err := store.LoadCategoryTables()
	if err != nil {
		return nil, fmt.Errorf("failed to load category tables: %w", err)
	}
	return NewCategorizer(tables, logger), nil
}

// Categorize runs each strategy until one finds a category.
func (c *Categorizer) Categorize(ctx context.Context, tx Transaction) (Result, error) {
	for _, strategy := range c.strategies {
		result, err := strategy.Categorize(ctx, tx)
		if err != nil {
			return Result{}, fmt.Errorf("%s strategy: %w", strategy.Name(), err)
		}
		if result.Found {
			return result, nil
		}
	}
	return Result{}, nil
}

// Classify categorizes a narrative and amount. It never fails: the built-in
// strategies are pure lookups.
func (c *Categorizer) Classify(narrative string, amount int64) Result {
	result, err := c.Categorize(context.Background(), Transaction{Narrative: narrative, Amount: amount})
	if err != nil {
		c.logger.WithError(err).Warn("Categorization failed")
		return Result{}
	}
	return result
}

// ValidCategories lists the category names a user may pick for an amount of
// this sign, in table order.
func (c *Categorizer) ValidCategories(amount int64) []string {
	return models.Names(c.tables.TableFor(amount))
}
