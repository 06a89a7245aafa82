package models

// CategoryRule is a category name and the substrings that select it.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoryTables holds the three keyword tables used by the classifier.
// Income and Expense keep their definition order: the first matching rule wins.
type CategoryTables struct {
	Skip    []string
	Income  []CategoryRule
	Expense []CategoryRule
}

// TableFor returns the rules that apply to an amount of the given sign.
// Zero amounts use the expense table.
func (t CategoryTables) TableFor(amount int64) []CategoryRule {
	if amount > 0 {
		return t.Income
	}
	return t.Expense
}

// Names returns the category names of a table in definition order.
func Names(rules []CategoryRule) []string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	return names
}
