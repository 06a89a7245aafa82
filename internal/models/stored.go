package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoredTransaction is a row of the transactions table.
// Rows are keyed by fingerprint and never updated.
type StoredTransaction struct {
	Fingerprint string    `gorm:"column:fingerprint;type:text;primaryKey" json:"fingerprint"`
	Type        string    `gorm:"column:type;type:text" json:"type"`
	Date        time.Time `gorm:"column:date;type:date" json:"date"`
	Amount      int64     `gorm:"column:amount;type:integer" json:"amount"`
	Category    string    `gorm:"column:category;type:text" json:"category"`
}

// TableName binds the model to the transactions table.
func (StoredTransaction) TableName() string {
	return "transactions"
}

// SummaryRow is one line of the grouped totals report.
type SummaryRow struct {
	Type       string          `csv:"type" json:"type"`
	Category   string          `csv:"category" json:"category"`
	TotalMinor int64           `csv:"-" json:"-"`
	Total      decimal.Decimal `csv:"total_amount" json:"total_amount"`
}

// CategoryTotal is the total of one category over a period.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthYear identifies a calendar month.
type MonthYear struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PeriodTotal is the total of one transaction type in one month.
type PeriodTotal struct {
	Type  string          `json:"type"`
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Period filters reports by year and optionally month. Zero values mean "any".
type Period struct {
	Year  int
	Month int
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(date time.Time) bool {
	if p.Year != 0 && date.Year() != p.Year {
		return false
	}
	if p.Month != 0 && int(date.Month()) != p.Month {
		return false
	}
	return true
}
