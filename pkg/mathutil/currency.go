// Package mathutil provides common decimal helpers for money and rates.
package mathutil

import (
	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/shopspring/decimal"
)

var maxInputMagnitude = decimal.New(1, constants.MaxInputMagnitudeDigits)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyPlaces)
}

// PercentToFraction converts percentage points (30) to a fraction (0.30).
// The shift is exact, unlike a division.
func PercentToFraction(percent decimal.Decimal) decimal.Decimal {
	return percent.Shift(-constants.PercentageShift)
}

// FractionToPercent converts a fraction (0.08) to percentage points (8).
func FractionToPercent(fraction decimal.Decimal) decimal.Decimal {
	return fraction.Shift(constants.PercentageShift)
}

// Within reports whether val lies in the closed interval [lower, upper].
func Within(val, lower, upper decimal.Decimal) bool {
	return val.GreaterThanOrEqual(lower) && val.LessThanOrEqual(upper)
}

// IsPositive checks if a value is strictly greater than zero
func IsPositive(val decimal.Decimal) bool {
	return val.Sign() > 0
}

// Ratio returns value / total, or zero when total is zero.
func Ratio(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Div(total)
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(PercentToFraction(percentage))
}

// WithinInputRange reports whether val has a bounded exponent and magnitude.
// The exponent is checked first since comparing an unbounded one is costly.
func WithinInputRange(val decimal.Decimal) bool {
	exp := val.Exponent()
	if exp < -constants.MaxInputExponent || exp > constants.MaxInputExponent {
		return false
	}
	return val.Abs().LessThanOrEqual(maxInputMagnitude)
}
