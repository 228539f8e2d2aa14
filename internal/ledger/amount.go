package ledger

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ZeroSumTolerance is the largest net drift accepted by ZeroSumHolds.
var ZeroSumTolerance = decimal.RequireFromString("0.005")

// plainAmount is the accepted amount syntax: up to 12 integer digits and 8
// fractional digits, no exponent.
var plainAmount = regexp.MustCompile(`^-?\d{1,12}(\.\d{1,8})?$`)

// ParseAmount reads a plain decimal from free text. A leading "$" and
// thousands separators are stripped.
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty input", ErrParse)
	}
	if !plainAmount.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrParse, strings.TrimSpace(text))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrParse, strings.TrimSpace(text))
	}
	return d, nil
}

func ParsePositiveAmount(text string) (decimal.Decimal, error) {
	d, err := ParseAmount(text)
	if err != nil {
		return d, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero", ErrParse)
	}
	return d, nil
}

func ParseNonNegativeAmount(text string) (decimal.Decimal, error) {
	d, err := ParseAmount(text)
	if err != nil {
		return d, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount must not be negative", ErrParse)
	}
	return d, nil
}

// FormatMoney renders an amount with two decimals, e.g. "20.00".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// TotalOwedVsReceived sums negative and non-negative balances separately.
func TotalOwedVsReceived(balances []Balance) (negative, positive decimal.Decimal) {
	negative, positive = decimal.Zero, decimal.Zero
	for _, b := range balances {
		if b.Amount.IsNegative() {
			negative = negative.Add(b.Amount)
		} else {
			positive = positive.Add(b.Amount)
		}
	}
	return negative, positive
}

func ZeroSumHolds(negative, positive decimal.Decimal) bool {
	return negative.Add(positive).Abs().LessThanOrEqual(ZeroSumTolerance)
}
