package categorizer

import "fmt"

// Result is the outcome of classifying one transaction.
type Result struct {
	Category string
	Found    bool
	Strategy string // strategy that produced the match
	Keyword  string // keyword that matched
}

// IsSkip reports whether the transaction matched the skip list.
func (r Result) IsSkip() bool {
	return r.Found && r.Category == SkipCategory
}

// String renders the result for log lines and the classify command.
func (r Result) String() string {
	if !r.Found {
		return "not found"
	}
	return fmt.Sprintf("%s (%s: %q)", r.Category, r.Strategy, r.Keyword)
}
