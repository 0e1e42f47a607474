package config

import (
	"fmt"
	"strings"
)

const (
	OptimizerFieldAnnualRate        = "annualRate"
	OptimizerFieldOpeningFeeRate    = "openingFeeRate"
	OptimizerFieldFinancierFeeShare = "financierFeeShare"

	defaultTolerance     = 0.01
	defaultMaxIterations = 50
)

// OptimizerConfig asks for the lowest value of one pricing field at which a
// scenario still meets its minimum required profit.
type OptimizerConfig struct {
	Field         string  `yaml:"field,omitempty" mapstructure:"field"`
	Tolerance     float64 `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldAnnualRate
	}
	switch strings.ToLower(trimmed) {
	case "annualrate", "annual_rate", "annual-rate", "rate":
		return OptimizerFieldAnnualRate
	case "openingfeerate", "opening_fee_rate", "opening-fee-rate", "openingfee", "fee":
		return OptimizerFieldOpeningFeeRate
	case "financierfeeshare", "financier_fee_share", "financier-fee-share", "share":
		return OptimizerFieldFinancierFeeShare
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize applies defaults and the canonical field name.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)
	if o.Tolerance <= 0 {
		o.Tolerance = defaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	switch o.Field {
	case OptimizerFieldAnnualRate, OptimizerFieldOpeningFeeRate, OptimizerFieldFinancierFeeShare:
	default:
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}
	if o.Tolerance > 1 {
		return fmt.Errorf("optimizer tolerance %.4f must not exceed one percentage point", o.Tolerance)
	}
	return nil
}
