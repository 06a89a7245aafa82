package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var minorScale = decimal.NewFromInt(MinorUnitsPerMajor)

// ParseMinorUnits converts a statement amount such as "-42,99" into minor units.
// Comma is the decimal separator; the scaled value is truncated toward zero.
func ParseMinorUnits(amountStr string) (int64, error) {
	amount := strings.TrimSpace(amountStr)
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "\u00a0", "")
	amount = strings.ReplaceAll(amount, ",", ".")
	if amount == "" {
		return 0, fmt.Errorf("empty amount")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount string '%s': %w", amountStr, err)
	}
	return dec.Mul(minorScale).IntPart(), nil
}

// MinorToMajor rescales minor units to major units.
func MinorToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
