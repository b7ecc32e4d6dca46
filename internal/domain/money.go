package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AmountPlaces is the number of decimal places every stored amount keeps.
const AmountPlaces = 2

var (
	// MinAmount is the smallest positive amount, one cent.
	MinAmount = decimal.New(1, -AmountPlaces)

	ErrBadAmount = errors.New("amount is not a number")

	printer = message.NewPrinter(language.English)
)

// RoundAmount rounds half-up to cents.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

// FloorAmount drops everything below one cent.
func FloorAmount(d decimal.Decimal) decimal.Decimal {
	return d.RoundFloor(AmountPlaces)
}

// ParseAmount reads a user supplied amount and rounds it to cents.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrBadAmount
	}
	return RoundAmount(d), nil
}

// FormatAmount renders whole amounts with digit grouping ("1,234") and
// fractional ones with two places ("1,234.50").
func FormatAmount(d decimal.Decimal) string {
	d = RoundAmount(d)
	if d.Equal(d.Truncate(0)) {
		return printer.Sprintf("%d", d.IntPart())
	}
	return printer.Sprintf("%.2f", d.InexactFloat64())
}
