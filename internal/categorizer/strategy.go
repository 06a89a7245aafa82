package categorizer

import (
	"context"
)

// CategorizationStrategy defines a method for categorizing transactions.
// Strategies run in order; the first one reporting a match decides.
type CategorizationStrategy interface {
	// Categorize attempts to categorize a transaction using this strategy.
	// The result is only meaningful when Found is true.
	Categorize(ctx context.Context, tx Transaction) (Result, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
