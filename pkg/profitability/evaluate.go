package profitability

import (
	"github.com/finantah/credit-simulator/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Evaluate validates scenario against policy and, when it passes, computes the
// modeled profit and compares it to the rating's minimum required profit.
//
// Validation stops at the first violated rule, checked in this order: annual
// rate band, opening fee band, financier share floor, well-formed input.
func Evaluate(policy Policy, scenario LoanScenario) Result {
	rate, fee, share := inRange(scenario.AnnualRate), inRange(scenario.OpeningFeeRate), inRange(scenario.FinancierFeeShare)
	if kind, ok := checkBands(policy, rate, fee, share); !ok {
		return Rejected(kind)
	}

	commissionRate, minimumReturn, ok := checkInput(policy, scenario)
	if !ok {
		return Rejected(InvalidInput)
	}

	evaluation := compute(policy, scenario, commissionRate, minimumReturn)
	return Result{Evaluation: &evaluation}
}

// checkBands applies the three policy rules to whichever values are present.
// A nil value was malformed or out of range and is left for the input check.
func checkBands(policy Policy, rate, fee, share *decimal.Decimal) (RejectionKind, bool) {
	if rate != nil && !policy.RateBand.Contains(*rate) {
		return RateOutOfRange, false
	}
	if fee != nil && !policy.OpeningFeeBand.Contains(*fee) {
		return FeeOutOfRange, false
	}
	if share != nil && share.LessThan(policy.FinancierShareFloor) {
		return InsufficientFinancierShare, false
	}
	return "", true
}

// inRange returns nil for values outside the input range so they are rejected
// as invalid input without reaching any band comparison.
func inRange(v decimal.Decimal) *decimal.Decimal {
	if !mathutil.WithinInputRange(v) {
		return nil
	}
	return &v
}

func checkInput(policy Policy, s LoanScenario) (commissionRate, minimumReturn decimal.Decimal, ok bool) {
	for _, v := range []decimal.Decimal{s.Principal, s.AnnualRate, s.OpeningFeeRate, s.FinancierFeeShare, s.DefaultProbability} {
		if !mathutil.WithinInputRange(v) {
			return commissionRate, minimumReturn, false
		}
	}
	if !mathutil.IsPositive(s.Principal) {
		return commissionRate, minimumReturn, false
	}
	if !mathutil.Within(s.FinancierFeeShare, zero, hundred) {
		return commissionRate, minimumReturn, false
	}
	if !mathutil.Within(s.DefaultProbability, zero, hundred) {
		return commissionRate, minimumReturn, false
	}
	if commissionRate, ok = policy.CommissionRateFor(s.PromoterTier); !ok {
		return commissionRate, minimumReturn, false
	}
	if minimumReturn, ok = policy.MinimumReturnFor(s.CreditRating, s.Collateralized); !ok {
		return commissionRate, minimumReturn, false
	}
	return commissionRate, minimumReturn, true
}

func compute(policy Policy, s LoanScenario, commissionRate, minimumReturn decimal.Decimal) Evaluation {
	principal := s.Principal
	financierShare := mathutil.PercentToFraction(s.FinancierFeeShare)

	var b Breakdown
	b.InterestIncome = mathutil.ApplyPercentage(principal, s.AnnualRate)
	b.FundingCost = principal.Mul(policy.FundingRate)
	b.GrossInterestMargin = b.InterestIncome.Sub(b.FundingCost)

	b.OpeningFeeTotal = mathutil.ApplyPercentage(principal, s.OpeningFeeRate)
	b.FinancierFeeAmount = b.OpeningFeeTotal.Mul(financierShare)
	b.PromoterFeeAmount = b.OpeningFeeTotal.Mul(one.Sub(financierShare))
	b.PromoterInterestCommission = b.GrossInterestMargin.Mul(commissionRate)

	b.ContributionMargin = b.GrossInterestMargin.
		Add(b.FinancierFeeAmount).
		Sub(b.PromoterInterestCommission).
		Sub(b.PromoterFeeAmount)

	b.ExpectedLoss = mathutil.PercentToFraction(s.DefaultProbability).
		Mul(policy.LossGivenDefault).
		Mul(principal)
	b.ProfitBeforeOpex = b.ContributionMargin.Sub(b.ExpectedLoss)
	b.OperatingExpense = principal.Mul(policy.OperatingExpenseRate)

	profit := b.ProfitBeforeOpex.Sub(b.OperatingExpense)
	required := principal.Mul(minimumReturn)

	return Evaluation{
		ComputedProfit:        profit,
		MinimumRequiredProfit: required,
		MeetsThreshold:        profit.GreaterThanOrEqual(required),
		ProfitMargin:          mathutil.Ratio(profit, principal),
		MinimumReturnRate:     minimumReturn,
		Breakdown:             b,
	}
}
