package config

import (
	"fmt"

	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// PolicyConfig is the configurable credit policy. Bands and the financier
// share floor are in percentage points, the remaining rates are fractions.
type PolicyConfig struct {
	RateMin                  float64            `yaml:"rateMin" validate:"gte=0,lte=100"`
	RateMax                  float64            `yaml:"rateMax" validate:"gte=0,lte=100,gtefield=RateMin"`
	OpeningFeeMin            float64            `yaml:"openingFeeMin" validate:"gte=0,lte=100"`
	OpeningFeeMax            float64            `yaml:"openingFeeMax" validate:"gte=0,lte=100,gtefield=OpeningFeeMin"`
	FinancierShareFloor      float64            `yaml:"financierShareFloor" validate:"gte=0,lte=100"`
	FundingRate              float64            `yaml:"fundingRate" validate:"gte=0,lte=1"`
	LossGivenDefault         float64            `yaml:"lossGivenDefault" validate:"gt=0,lte=1"`
	OperatingExpenseRate     float64            `yaml:"operatingExpenseRate" validate:"gte=0,lte=1"`
	CommissionRates          map[string]float64 `yaml:"commissionRates" validate:"required,dive,gte=0,lt=1"`
	MinimumReturns           map[string]float64 `yaml:"minimumReturns" validate:"required,dive,gte=0"`
	CollateralMinimumReturns map[string]float64 `yaml:"collateralMinimumReturns,omitempty" validate:"omitempty,dive,gte=0"`
}

func setPolicyDefaults(v *viper.Viper) {
	v.SetDefault("policy.ratemin", constants.DefaultRateMin)
	v.SetDefault("policy.ratemax", constants.DefaultRateMax)
	v.SetDefault("policy.openingfeemin", constants.DefaultOpeningFeeMin)
	v.SetDefault("policy.openingfeemax", constants.DefaultOpeningFeeMax)
	v.SetDefault("policy.financiersharefloor", constants.DefaultFinancierShareFloor)
	v.SetDefault("policy.fundingrate", constants.DefaultFundingRate)
	v.SetDefault("policy.lossgivendefault", constants.DefaultLossGivenDefault)
	v.SetDefault("policy.operatingexpenserate", constants.DefaultOperatingExpenseRate)
	v.SetDefault("policy.commissionrates", map[string]interface{}{
		string(profitability.PromoterJunior):  constants.DefaultJuniorCommissionRate,
		string(profitability.PromoterSenior):  constants.DefaultSeniorCommissionRate,
		string(profitability.PromoterManager): constants.DefaultManagerCommissionRate,
	})
	v.SetDefault("policy.minimumreturns", map[string]interface{}{
		"a": constants.DefaultMinimumReturnA,
		"b": constants.DefaultMinimumReturnB,
		"c": constants.DefaultMinimumReturnC,
		"d": constants.DefaultMinimumReturnD,
	})
}

// DefaultPolicyConfig returns the canonical policy in configuration form.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		RateMin:              constants.DefaultRateMin,
		RateMax:              constants.DefaultRateMax,
		OpeningFeeMin:        constants.DefaultOpeningFeeMin,
		OpeningFeeMax:        constants.DefaultOpeningFeeMax,
		FinancierShareFloor:  constants.DefaultFinancierShareFloor,
		FundingRate:          constants.DefaultFundingRate,
		LossGivenDefault:     constants.DefaultLossGivenDefault,
		OperatingExpenseRate: constants.DefaultOperatingExpenseRate,
		CommissionRates: map[string]float64{
			"junior":  constants.DefaultJuniorCommissionRate,
			"senior":  constants.DefaultSeniorCommissionRate,
			"manager": constants.DefaultManagerCommissionRate,
		},
		MinimumReturns: map[string]float64{
			"A": constants.DefaultMinimumReturnA,
			"B": constants.DefaultMinimumReturnB,
			"C": constants.DefaultMinimumReturnC,
			"D": constants.DefaultMinimumReturnD,
		},
	}
}

// ToPolicy validates the configured values and converts them into a
// profitability.Policy. Tier and rating keys are matched case-insensitively.
func (pc PolicyConfig) ToPolicy() (profitability.Policy, error) {
	if err := validator.New().Struct(pc); err != nil {
		return profitability.Policy{}, fmt.Errorf("invalid policy configuration: %w", err)
	}

	policy := profitability.Policy{
		RateBand: profitability.Band{
			Min: decimal.NewFromFloat(pc.RateMin),
			Max: decimal.NewFromFloat(pc.RateMax),
		},
		OpeningFeeBand: profitability.Band{
			Min: decimal.NewFromFloat(pc.OpeningFeeMin),
			Max: decimal.NewFromFloat(pc.OpeningFeeMax),
		},
		FinancierShareFloor:  decimal.NewFromFloat(pc.FinancierShareFloor),
		FundingRate:          decimal.NewFromFloat(pc.FundingRate),
		LossGivenDefault:     decimal.NewFromFloat(pc.LossGivenDefault),
		OperatingExpenseRate: decimal.NewFromFloat(pc.OperatingExpenseRate),
		CommissionRates:      make(map[profitability.PromoterTier]decimal.Decimal),
		MinimumReturns:       make(map[profitability.CreditRating]decimal.Decimal),
	}

	for name, rate := range pc.CommissionRates {
		tier, ok := profitability.ParsePromoterTier(name)
		if !ok {
			return profitability.Policy{}, fmt.Errorf("unknown promoter tier %q in commission rates", name)
		}
		if _, dup := policy.CommissionRates[tier]; dup {
			return profitability.Policy{}, fmt.Errorf("promoter tier %s configured more than once", tier)
		}
		policy.CommissionRates[tier] = decimal.NewFromFloat(rate)
	}

	ratings, err := convertRatings(pc.MinimumReturns, "minimum returns")
	if err != nil {
		return profitability.Policy{}, err
	}
	policy.MinimumReturns = ratings

	if len(pc.CollateralMinimumReturns) > 0 {
		collateral, err := convertRatings(pc.CollateralMinimumReturns, "collateral minimum returns")
		if err != nil {
			return profitability.Policy{}, err
		}
		policy.CollateralMinimumReturns = collateral
	}

	if err := policy.Validate(); err != nil {
		return profitability.Policy{}, fmt.Errorf("invalid policy configuration: %w", err)
	}
	return policy, nil
}

func convertRatings(rates map[string]float64, table string) (map[profitability.CreditRating]decimal.Decimal, error) {
	converted := make(map[profitability.CreditRating]decimal.Decimal, len(rates))
	for name, rate := range rates {
		rating, ok := profitability.ParseCreditRating(name)
		if !ok {
			return nil, fmt.Errorf("unknown credit rating %q in %s", name, table)
		}
		if _, dup := converted[rating]; dup {
			return nil, fmt.Errorf("credit rating %s configured more than once in %s", rating, table)
		}
		converted[rating] = decimal.NewFromFloat(rate)
	}
	return converted, nil
}
