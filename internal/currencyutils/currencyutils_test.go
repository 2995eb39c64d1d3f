package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amountStr string
		expected  string
		hasError  bool
	}{
		{"Simple decimal", "123.45", "123.45", false},
		{"Integer", "100", "100", false},
		{"Comma decimal separator", "123,45", "123.45", false},
		{"Thousand separator (comma)", "1,234.56", "1234.56", false},
		{"Indian grouping", "1,23,456", "123456", false},
		{"Indian grouping with decimals", "1,23,456.50", "123456.5", false},
		{"Thousand separator (apostrophe)", "1'234.56", "1234.56", false},
		{"European format", "1.234,56", "1234.56", false},
		{"Rupee symbol", "₹450", "450", false},
		{"Rs prefix", "Rs. 1,200", "1200", false},
		{"INR code", "INR 99", "99", false},
		{"Currency code", "CHF 123.45", "123.45", false},
		{"With spaces", "  123.45  ", "123.45", false},
		{"Empty string", "", "", true},
		{"Only currency", "Rs.", "", true},
		{"Malformed decimal", "123.45.67", "", true},
		{"Non-numeric", "abc", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseAmount(tc.amountStr)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			expected := decimal.RequireFromString(tc.expected)
			assert.True(t, expected.Equal(result), "Expected %s but got %s", expected, result)
		})
	}
}

func TestStandardizeAmount(t *testing.T) {
	assert.Equal(t, "1234.56", StandardizeAmount("€1.234,56"))
	assert.Equal(t, "1234.56", StandardizeAmount("$1,234.56"))
	assert.Equal(t, "1234.56", StandardizeAmount("1 234,56"))
	assert.Equal(t, "1000.00", StandardizeAmount("1000,00"))
}
