package textutils

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// amountPattern matches an optional currency symbol followed by a decimal
// number with at most two fraction digits. The symbol is not validated.
var amountPattern = regexp.MustCompile(`(?:[₹$€£])?\s*(\d+(?:\.\d{1,2})?)`)

// ExtractAmount returns the first monetary amount found in text.
// The second return value is false when the text contains no number.
func ExtractAmount(text string) (decimal.Decimal, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
