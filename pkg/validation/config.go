// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finantah/credit-simulator/pkg/constants"
)

// ValidateBand warns when a configured band is wider than the canonical one.
// Wider bands are legal but admit credits the standard policy would reject.
func ValidateBand(name string, min, max, canonicalMin, canonicalMax float64) string {
	if min < canonicalMin || max > canonicalMax {
		return fmt.Sprintf("%s [%g, %g] is wider than the standard policy [%g, %g]",
			name, min, max, canonicalMin, canonicalMax)
	}
	return ""
}

// ValidateCollateralReturns warns about collateral minimum returns that are
// higher than the unsecured minimum return for the same rating.
func ValidateCollateralReturns(base, collateral map[string]float64) []string {
	var warnings []string

	unsecured := make(map[string]float64, len(base))
	for rating, rate := range base {
		unsecured[strings.ToUpper(rating)] = rate
	}

	var ratings []string
	for rating := range collateral {
		ratings = append(ratings, rating)
	}
	sort.Strings(ratings)

	for _, rating := range ratings {
		rate := collateral[rating]
		baseRate, ok := unsecured[strings.ToUpper(rating)]
		if !ok {
			continue
		}
		if rate > baseRate {
			warnings = append(warnings, fmt.Sprintf(
				"Collateral minimum return for rating %s (%g) exceeds the unsecured minimum return (%g)",
				strings.ToUpper(rating), rate, baseRate))
		}
	}

	return warnings
}

// ValidateScenarioNames checks for unnamed and duplicated scenarios and for a
// configuration where nothing would be evaluated.
func ValidateScenarioNames(scenarios []ScenarioInfo) []string {
	var warnings []string

	if len(scenarios) == 0 {
		return []string{"No scenarios are configured"}
	}

	seen := make(map[string]bool)
	active := 0
	for i, scenario := range scenarios {
		if scenario.Active {
			active++
		}
		if strings.TrimSpace(scenario.Name) == "" {
			warnings = append(warnings, fmt.Sprintf("Scenario %d has no name", i+1))
			continue
		}
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", scenario.Name))
		}
		seen[scenario.Name] = true
	}

	if active == 0 {
		warnings = append(warnings, "No scenarios are active")
	}

	return warnings
}

// ConfigValidator performs comprehensive configuration validation
type ConfigValidator struct {
	Policy    PolicyInfo
	Scenarios []ScenarioInfo
}

type PolicyInfo struct {
	RateMin                  float64
	RateMax                  float64
	OpeningFeeMin            float64
	OpeningFeeMax            float64
	FinancierShareFloor      float64
	MinimumReturns           map[string]float64
	CollateralMinimumReturns map[string]float64
}

type ScenarioInfo struct {
	Name   string
	Active bool
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if w := ValidateBand("Annual rate band", cv.Policy.RateMin, cv.Policy.RateMax,
		constants.DefaultRateMin, constants.DefaultRateMax); w != "" {
		warnings = append(warnings, w)
	}
	if w := ValidateBand("Opening fee band", cv.Policy.OpeningFeeMin, cv.Policy.OpeningFeeMax,
		constants.DefaultOpeningFeeMin, constants.DefaultOpeningFeeMax); w != "" {
		warnings = append(warnings, w)
	}
	if cv.Policy.FinancierShareFloor < constants.DefaultFinancierShareFloor {
		warnings = append(warnings, fmt.Sprintf("Financier share floor %g is below the standard policy floor %g",
			cv.Policy.FinancierShareFloor, constants.DefaultFinancierShareFloor))
	}

	warnings = append(warnings, ValidateCollateralReturns(cv.Policy.MinimumReturns, cv.Policy.CollateralMinimumReturns)...)
	warnings = append(warnings, ValidateScenarioNames(cv.Scenarios)...)

	return warnings
}
