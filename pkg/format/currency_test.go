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
		numeric  string
	}{
		{"Zero", "0", "$0.00", "0.00"},
		{"Small", "12.5", "$12.50", "12.50"},
		{"Thousands", "62004", "$62,004.00", "62,004.00"},
		{"Millions", "1234567.891", "$1,234,567.89", "1,234,567.89"},
		{"Negative", "-45000.5", "-$45,000.50", "-45,000.50"},
		{"Negative rounds to zero", "-0.001", "$0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := decimal.RequireFromString(tt.input)
			if got := Currency(value); got != tt.expected {
				t.Errorf("Currency(%s) = %q, expected %q", tt.input, got, tt.expected)
			}
			if got := NumericCurrency(value); got != tt.numeric {
				t.Errorf("NumericCurrency(%s) = %q, expected %q", tt.input, got, tt.numeric)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0.08", "8.00%"},
		{"0.062004", "6.20%"},
		{"0.1", "10.00%"},
		{"-0.015", "-1.50%"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Percentage(decimal.RequireFromString(tt.input)); got != tt.expected {
				t.Errorf("Percentage(%s) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}

	if got := PercentagePoints(decimal.NewFromInt(30)); got != "30.00%" {
		t.Errorf("PercentagePoints(30) = %q, expected %q", got, "30.00%")
	}
}
