// Package currencyutils parses the amount column of imported expense files.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyPattern = regexp.MustCompile(`(?i)\b(?:rs|inr|chf|eur|usd)\b\.?|[€$£¥₹\s]`)
	groupingPattern = regexp.MustCompile(`^\d{1,3}(?:,\d{2,3})*,\d{3}$`)
)

// ParseAmount parses amounts such as "1,234.56", "1.234,56", "₹ 450",
// "Rs. 1,23,456" or "CHF 1'234.50". An empty string is an error.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount strips currency markers and grouping separators so the
// result can be parsed by decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	amountStr = currencyPattern.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	hasComma := strings.Contains(amountStr, ",")
	hasDot := strings.Contains(amountStr, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			// 1.234,56
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// 1,234.56 and 1,23,456.50
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case hasComma:
		if groupingPattern.MatchString(amountStr) {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		}
	}
	return amountStr
}
