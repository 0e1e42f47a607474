package profitability

import (
	"fmt"

	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/finantah/credit-simulator/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Band is a closed interval in percentage points.
type Band struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Policy holds every business number the evaluator uses. Bands and the
// financier share floor are in percentage points, everything else is a fraction.
type Policy struct {
	RateBand             Band            `json:"rateBand"`
	OpeningFeeBand       Band            `json:"openingFeeBand"`
	FinancierShareFloor  decimal.Decimal `json:"financierShareFloor"`
	FundingRate          decimal.Decimal `json:"fundingRate"`
	LossGivenDefault     decimal.Decimal `json:"lossGivenDefault"`
	OperatingExpenseRate decimal.Decimal `json:"operatingExpenseRate"`

	CommissionRates map[PromoterTier]decimal.Decimal `json:"commissionRates"`
	MinimumReturns  map[CreditRating]decimal.Decimal `json:"minimumReturns"`
	// CollateralMinimumReturns overrides MinimumReturns for collateralized
	// credits. Ratings without an entry fall back to MinimumReturns.
	CollateralMinimumReturns map[CreditRating]decimal.Decimal `json:"collateralMinimumReturns,omitempty"`
}

// DefaultPolicy returns the canonical credit policy.
func DefaultPolicy() Policy {
	return Policy{
		RateBand: Band{
			Min: decimal.NewFromFloat(constants.DefaultRateMin),
			Max: decimal.NewFromFloat(constants.DefaultRateMax),
		},
		OpeningFeeBand: Band{
			Min: decimal.NewFromFloat(constants.DefaultOpeningFeeMin),
			Max: decimal.NewFromFloat(constants.DefaultOpeningFeeMax),
		},
		FinancierShareFloor:  decimal.NewFromFloat(constants.DefaultFinancierShareFloor),
		FundingRate:          decimal.NewFromFloat(constants.DefaultFundingRate),
		LossGivenDefault:     decimal.NewFromFloat(constants.DefaultLossGivenDefault),
		OperatingExpenseRate: decimal.NewFromFloat(constants.DefaultOperatingExpenseRate),
		CommissionRates: map[PromoterTier]decimal.Decimal{
			PromoterJunior:  decimal.NewFromFloat(constants.DefaultJuniorCommissionRate),
			PromoterSenior:  decimal.NewFromFloat(constants.DefaultSeniorCommissionRate),
			PromoterManager: decimal.NewFromFloat(constants.DefaultManagerCommissionRate),
		},
		MinimumReturns: map[CreditRating]decimal.Decimal{
			RatingA: decimal.NewFromFloat(constants.DefaultMinimumReturnA),
			RatingB: decimal.NewFromFloat(constants.DefaultMinimumReturnB),
			RatingC: decimal.NewFromFloat(constants.DefaultMinimumReturnC),
			RatingD: decimal.NewFromFloat(constants.DefaultMinimumReturnD),
		},
	}
}

// CommissionRateFor returns the promoter interest commission for tier.
func (p Policy) CommissionRateFor(tier PromoterTier) (decimal.Decimal, bool) {
	rate, ok := p.CommissionRates[tier]
	return rate, ok
}

// MinimumReturnFor returns the minimum required return for rating, using the
// collateral table first when the credit is collateralized.
func (p Policy) MinimumReturnFor(rating CreditRating, collateralized bool) (decimal.Decimal, bool) {
	if collateralized {
		if rate, ok := p.CollateralMinimumReturns[rating]; ok {
			return rate, true
		}
	}
	rate, ok := p.MinimumReturns[rating]
	return rate, ok
}

var (
	zero    = decimal.Zero
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Validate checks that the policy can evaluate every scenario and that profit
// stays strictly monotonic in the annual rate and the default probability.
func (p Policy) Validate() error {
	if err := p.RateBand.validate("rate band"); err != nil {
		return err
	}
	if err := p.OpeningFeeBand.validate("opening fee band"); err != nil {
		return err
	}
	if p.FinancierShareFloor.LessThan(zero) || p.FinancierShareFloor.GreaterThan(hundred) {
		return fmt.Errorf("financier share floor %s must be between 0 and 100", p.FinancierShareFloor)
	}

	fractions := []struct {
		name  string
		value decimal.Decimal
	}{
		{"funding rate", p.FundingRate},
		{"loss given default", p.LossGivenDefault},
		{"operating expense rate", p.OperatingExpenseRate},
	}
	for _, f := range fractions {
		if f.value.LessThan(zero) || f.value.GreaterThan(one) {
			return fmt.Errorf("%s %s must be between 0 and 1", f.name, f.value)
		}
	}
	if !p.LossGivenDefault.IsPositive() {
		return fmt.Errorf("loss given default must be greater than 0")
	}

	for _, tier := range AllPromoterTiers() {
		rate, ok := p.CommissionRates[tier]
		if !ok {
			return fmt.Errorf("missing commission rate for promoter tier %s", tier)
		}
		if rate.LessThan(zero) || rate.GreaterThanOrEqual(one) {
			return fmt.Errorf("commission rate %s for promoter tier %s must be in [0, 1)", rate, tier)
		}
	}

	for _, rating := range AllCreditRatings() {
		rate, ok := p.MinimumReturns[rating]
		if !ok {
			return fmt.Errorf("missing minimum return for credit rating %s", rating)
		}
		if rate.LessThan(zero) {
			return fmt.Errorf("minimum return %s for credit rating %s must not be negative", rate, rating)
		}
	}
	for rating, rate := range p.CollateralMinimumReturns {
		if parsed, ok := ParseCreditRating(string(rating)); !ok || parsed != rating {
			return fmt.Errorf("collateral minimum return set for unknown credit rating %q", rating)
		}
		if rate.LessThan(zero) {
			return fmt.Errorf("collateral minimum return %s for credit rating %s must not be negative", rate, rating)
		}
	}

	return nil
}

func (b Band) validate(name string) error {
	if b.Min.LessThan(zero) || b.Max.GreaterThan(hundred) {
		return fmt.Errorf("%s [%s, %s] must lie within 0 and 100", name, b.Min, b.Max)
	}
	if b.Min.GreaterThan(b.Max) {
		return fmt.Errorf("%s minimum %s is greater than maximum %s", name, b.Min, b.Max)
	}
	return nil
}

// Contains reports whether v lies in the closed band.
func (b Band) Contains(v decimal.Decimal) bool {
	return mathutil.Within(v, b.Min, b.Max)
}
