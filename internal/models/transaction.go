// Package models provides the data structures used throughout the application.
package models

import (
	"time"
)

// TransactionType is the direction of a transaction derived from the sign of its amount.
// The zero value means the type is absent (amount == 0).
type TransactionType string

// DetermineType returns income for positive amounts, expense for negative ones
// and an absent type for zero.
func DetermineType(amount int64) TransactionType {
	switch {
	case amount > 0:
		return TypeIncome
	case amount < 0:
		return TypeExpense
	default:
		return ""
	}
}

// IsValid reports whether the type is present.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Candidate is one statement row on its way to the store.
type Candidate struct {
	Line          int       // Record number in the source file, for diagnostics
	Narrative     string    // Free-text description as exported by the bank
	Amount        int64     // Signed amount in minor units
	Date          time.Time // Effective date (narrative date preferred)
	NarrativeDate string    // DD.MM.YYYY date found in the narrative, if any
	Type          TransactionType
	Category      string
	Categorized   bool // false while the category is absent
	Fingerprint   string
	AlreadyStored bool // set when an unclassified row was found in the store before prompting
}

// SetCategory assigns a category, marking the candidate as categorized.
// An empty name is a valid outcome meaning "skip this row".
func (c *Candidate) SetCategory(name string) {
	c.Category = name
	c.Categorized = true
}

// IsSkipped reports whether the candidate was explicitly excluded from storage.
func (c Candidate) IsSkipped() bool {
	return c.Categorized && (c.Category == "" || c.Category == CategorySkip)
}

// Eligible reports whether the candidate may be written to the store:
// it must carry a real category and a transaction type.
func (c Candidate) Eligible() bool {
	return c.Categorized && !c.IsSkipped() && c.Type.IsValid()
}

// MajorAmount returns the amount in major currency units for display.
func (c Candidate) MajorAmount() string {
	return MinorToMajor(c.Amount).StringFixed(2)
}

// ToStored converts an eligible candidate into its persistent form.
func (c Candidate) ToStored() StoredTransaction {
	return StoredTransaction{
		Fingerprint: c.Fingerprint,
		Type:        string(c.Type),
		Date:        c.Date,
		Amount:      c.Amount,
		Category:    c.Category,
	}
}
