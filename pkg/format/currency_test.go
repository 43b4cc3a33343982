package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Small amount", "12.5", "£12.50"},
		{"Thousands separator", "1234.56", "£1,234.56"},
		{"Millions", "1234567.89", "£1,234,567.89"},
		{"Negative", "-1234.56", "-£1,234.56"},
		{"Zero", "0", "£0.00"},
		{"Exactly one thousand", "1000", "£1,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Currency(decimal.RequireFromString(tt.input))
			if result != tt.expected {
				t.Errorf("Currency(%s) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWholeCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Rounds up", "1234.56", "£1,235"},
		{"Rounds down", "1234.4", "£1,234"},
		{"Negative", "-999.5", "-£1,000"},
		{"Zero", "0", "£0"},
		{"Large amount", "2500000", "£2,500,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WholeCurrency(decimal.RequireFromString(tt.input))
			if result != tt.expected {
				t.Errorf("WholeCurrency(%s) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}
