// Package currencyutils normalizes the amount strings found in bank exports.
package currencyutils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned for blank amount cells.
var ErrEmptyAmount = errors.New("empty amount")

var amountNoise = regexp.MustCompile(`[€$£¥₣₹₽₩₪,\s]`)

// NormalizeAmount turns a bank amount such as "$1,234.56" or "(1,234.56)"
// into a decimal. Currency symbols, thousands separators and whitespace are
// removed, and a parenthesized value is negative.
func NormalizeAmount(raw string) (decimal.Decimal, error) {
	s := amountNoise.ReplaceAllString(raw, "")
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", raw, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// FormatAmount renders amount with two decimals and an optional currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	formatted := amount.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "":
		return formatted
	case "USD":
		return "$" + formatted
	case "EUR":
		return "€" + formatted
	case "GBP":
		return "£" + formatted
	default:
		return currency + " " + formatted
	}
}

// Percent returns part as a percentage of whole, or 0 when whole is not positive.
func Percent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	pct, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
