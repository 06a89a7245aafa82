// Package dateutils provides the date handling shared by the statement parser,
// the fingerprint generator and the reports.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts used throughout the application
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
)

// narrativeDatePattern matches a DD/MM/YYYY date embedded in free text.
var narrativeDatePattern = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)

var whitespace = regexp.MustCompile(`\s+`)

// ExtractNarrativeDate returns the first DD/MM/YYYY date found in the narrative,
// rewritten as DD.MM.YYYY, or "" when there is none.
func ExtractNarrativeDate(narrative string) string {
	match := narrativeDatePattern.FindStringSubmatch(narrative)
	if match == nil {
		return ""
	}
	return strings.ReplaceAll(match[1], "/", ".")
}

// ParseEuropean parses a DD.MM.YYYY date as a UTC calendar date.
func ParseEuropean(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayoutEuropean, CleanDateString(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q as DD.MM.YYYY: %w", dateStr, err)
	}
	return t, nil
}

// EffectiveDate picks the narrative date when present and falls back to the
// statement's own date column. Both are DD.MM.YYYY.
func EffectiveDate(narrativeDate, columnDate string) (time.Time, string, error) {
	raw := columnDate
	if narrativeDate != "" {
		raw = narrativeDate
	}
	t, err := ParseEuropean(raw)
	return t, raw, err
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
