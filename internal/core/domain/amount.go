package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount bounds. Together they stay within the 34 significant digits of a
// MongoDB Decimal128, so every store holds an amount exactly.
const (
	MaxAmountIntegerDigits  = 16
	MaxAmountFractionDigits = 18
)

var (
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrAmountPrecision   = errors.New("amount exceeds supported precision")
)

// ValidateAmount checks that d is strictly positive and within the amount
// bounds.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrAmountNotPositive
	}
	if !WithinPrecision(d) {
		return ErrAmountPrecision
	}
	return nil
}

// WithinPrecision reports whether d has at most MaxAmountIntegerDigits
// integer digits and MaxAmountFractionDigits fractional digits, ignoring
// leading and trailing zeros.
func WithinPrecision(d decimal.Decimal) bool {
	s := d.Abs().String()
	intPart, fracPart, _ := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	fracPart = strings.TrimRight(fracPart, "0")
	return len(intPart) <= MaxAmountIntegerDigits && len(fracPart) <= MaxAmountFractionDigits
}
