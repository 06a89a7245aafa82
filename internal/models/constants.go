package models

// Transaction types
const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// CategorySkip marks a row that must never reach the store.
const CategorySkip = "skip"

// Statement column names as they appear in the bank export header.
const (
	ColumnDate      = "Date"
	ColumnNarrative = "Narrative"
	ColumnAmount    = "Amount DR/Amount CR"
)

// MinorUnitsPerMajor is the scale between stored amounts and display amounts.
const MinorUnitsPerMajor = 100

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
)
