// Package profitability evaluates whether a credit meets its minimum required
// return under a configurable credit policy.
//
// Evaluate is a pure function: it performs no I/O, holds no state and returns
// the same Result for the same Policy and LoanScenario. Business rejections are
// reported as values, never as errors or panics.
package profitability

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PromoterTier is the seniority of the promoter who originated the credit.
type PromoterTier string

const (
	PromoterJunior  PromoterTier = "junior"
	PromoterSenior  PromoterTier = "senior"
	PromoterManager PromoterTier = "manager"
)

// AllPromoterTiers lists every tier a policy must price.
func AllPromoterTiers() []PromoterTier {
	return []PromoterTier{PromoterJunior, PromoterSenior, PromoterManager}
}

var promoterAliases = map[string]PromoterTier{
	"jr":      PromoterJunior,
	"junior":  PromoterJunior,
	"sr":      PromoterSenior,
	"senior":  PromoterSenior,
	"gerente": PromoterManager,
	"manager": PromoterManager,
	"mgr":     PromoterManager,
}

// ParsePromoterTier maps a tier name or one of its short forms to a PromoterTier.
func ParsePromoterTier(s string) (PromoterTier, bool) {
	tier, ok := promoterAliases[strings.ToLower(strings.TrimSpace(s))]
	return tier, ok
}

// CreditRating is the borrower risk tier.
type CreditRating string

const (
	RatingA CreditRating = "A"
	RatingB CreditRating = "B"
	RatingC CreditRating = "C"
	RatingD CreditRating = "D"
)

// AllCreditRatings lists every rating a policy must price.
func AllCreditRatings() []CreditRating {
	return []CreditRating{RatingA, RatingB, RatingC, RatingD}
}

// ParseCreditRating accepts a rating letter in either case.
func ParseCreditRating(s string) (CreditRating, bool) {
	rating := CreditRating(strings.ToUpper(strings.TrimSpace(s)))
	switch rating {
	case RatingA, RatingB, RatingC, RatingD:
		return rating, true
	}
	return "", false
}

// LoanScenario holds the terms of one credit. Rates and shares are in
// percentage points (30 means 30%).
type LoanScenario struct {
	Principal          decimal.Decimal `json:"principal"`
	AnnualRate         decimal.Decimal `json:"annualRate"`
	OpeningFeeRate     decimal.Decimal `json:"openingFeeRate"`
	FinancierFeeShare  decimal.Decimal `json:"financierFeeShare"`
	PromoterTier       PromoterTier    `json:"promoterTier"`
	DefaultProbability decimal.Decimal `json:"defaultProbability"`
	CreditRating       CreditRating    `json:"creditRating"`
	Collateralized     bool            `json:"collateralized"`
}

// RawScenario is a LoanScenario as entered by a user, before parsing.
type RawScenario struct {
	Principal          string `json:"principal"`
	AnnualRate         string `json:"annualRate"`
	OpeningFeeRate     string `json:"openingFeeRate"`
	FinancierFeeShare  string `json:"financierFeeShare"`
	PromoterTier       string `json:"promoterTier"`
	DefaultProbability string `json:"defaultProbability"`
	CreditRating       string `json:"creditRating"`
	Collateralized     string `json:"collateralized,omitempty"`
}

// RejectionKind names the policy rule a scenario violated.
type RejectionKind string

const (
	RateOutOfRange             RejectionKind = "rate_out_of_range"
	FeeOutOfRange              RejectionKind = "fee_out_of_range"
	InsufficientFinancierShare RejectionKind = "insufficient_financier_share"
	InvalidInput               RejectionKind = "invalid_input"
)

// Breakdown is every intermediate amount of the profit computation.
type Breakdown struct {
	InterestIncome             decimal.Decimal `json:"interestIncome"`
	FundingCost                decimal.Decimal `json:"fundingCost"`
	GrossInterestMargin        decimal.Decimal `json:"grossInterestMargin"`
	OpeningFeeTotal            decimal.Decimal `json:"openingFeeTotal"`
	FinancierFeeAmount         decimal.Decimal `json:"financierFeeAmount"`
	PromoterFeeAmount          decimal.Decimal `json:"promoterFeeAmount"`
	PromoterInterestCommission decimal.Decimal `json:"promoterInterestCommission"`
	ContributionMargin         decimal.Decimal `json:"contributionMargin"`
	ExpectedLoss               decimal.Decimal `json:"expectedLoss"`
	ProfitBeforeOpex           decimal.Decimal `json:"profitBeforeOpex"`
	OperatingExpense           decimal.Decimal `json:"operatingExpense"`
}

// Evaluation is the outcome of a scenario that passed policy validation.
type Evaluation struct {
	ComputedProfit        decimal.Decimal `json:"computedProfit"`
	MinimumRequiredProfit decimal.Decimal `json:"minimumRequiredProfit"`
	MeetsThreshold        bool            `json:"meetsThreshold"`
	// ProfitMargin is ComputedProfit over principal.
	ProfitMargin      decimal.Decimal `json:"profitMargin"`
	MinimumReturnRate decimal.Decimal `json:"minimumReturnRate"`
	Breakdown         Breakdown       `json:"breakdown"`
}

// Result is either a rejection or an evaluation, never both.
type Result struct {
	Rejection  RejectionKind `json:"rejection,omitempty"`
	Evaluation *Evaluation   `json:"evaluation,omitempty"`
}

// Rejected builds a Result for a scenario that violated kind.
func Rejected(kind RejectionKind) Result {
	return Result{Rejection: kind}
}

// IsRejected reports whether the scenario failed policy validation.
func (r Result) IsRejected() bool {
	return r.Rejection != ""
}
