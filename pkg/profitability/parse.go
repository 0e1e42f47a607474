package profitability

import (
	"strconv"
	"strings"

	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/shopspring/decimal"
)

// parsedScenario keeps nil for every numeric field that failed to parse so the
// band checks can still run, in order, on the fields that did.
type parsedScenario struct {
	principal          *decimal.Decimal
	annualRate         *decimal.Decimal
	openingFeeRate     *decimal.Decimal
	financierFeeShare  *decimal.Decimal
	defaultProbability *decimal.Decimal
	tier               PromoterTier
	tierOK             bool
	rating             CreditRating
	ratingOK           bool
	collateralized     bool
	collateralOK       bool
}

func parseRaw(raw RawScenario) parsedScenario {
	var p parsedScenario
	p.principal = parseNumber(raw.Principal)
	p.annualRate = parseNumber(raw.AnnualRate)
	p.openingFeeRate = parseNumber(raw.OpeningFeeRate)
	p.financierFeeShare = parseNumber(raw.FinancierFeeShare)
	p.defaultProbability = parseNumber(raw.DefaultProbability)
	p.tier, p.tierOK = ParsePromoterTier(raw.PromoterTier)
	p.rating, p.ratingOK = ParseCreditRating(raw.CreditRating)
	p.collateralized, p.collateralOK = parseFlag(raw.Collateralized)
	return p
}

func (p parsedScenario) complete() bool {
	return p.principal != nil && p.annualRate != nil && p.openingFeeRate != nil &&
		p.financierFeeShare != nil && p.defaultProbability != nil &&
		p.tierOK && p.ratingOK && p.collateralOK
}

func (p parsedScenario) scenario() LoanScenario {
	return LoanScenario{
		Principal:          *p.principal,
		AnnualRate:         *p.annualRate,
		OpeningFeeRate:     *p.openingFeeRate,
		FinancierFeeShare:  *p.financierFeeShare,
		PromoterTier:       p.tier,
		DefaultProbability: *p.defaultProbability,
		CreditRating:       p.rating,
		Collateralized:     p.collateralized,
	}
}

// ParseScenario converts raw user input into a LoanScenario. It reports false
// when any field is missing or malformed; it does not apply policy.
func ParseScenario(raw RawScenario) (LoanScenario, bool) {
	p := parseRaw(raw)
	if !p.complete() {
		return LoanScenario{}, false
	}
	return p.scenario(), true
}

// EvaluateRaw parses raw and evaluates it. A malformed field yields
// InvalidInput unless an earlier policy rule already rejects a parsed field.
func EvaluateRaw(policy Policy, raw RawScenario) Result {
	p := parseRaw(raw)
	if kind, ok := checkBands(policy, p.annualRate, p.openingFeeRate, p.financierFeeShare); !ok {
		return Rejected(kind)
	}
	if !p.complete() {
		return Rejected(InvalidInput)
	}
	return Evaluate(policy, p.scenario())
}

// parseNumber accepts plain decimal notation, optionally with an exponent.
// Text longer than MaxInputLength or a value outside the input range is
// treated as malformed.
func parseNumber(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > constants.MaxInputLength {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return inRange(v)
}

func parseFlag(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, true
	}
	switch strings.ToLower(s) {
	case "yes", "si", "sí":
		return true, true
	case "no":
		return false, true
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}

// Canonical renders raw with trimmed, normalized fields so equivalent inputs
// share one representation.
func (r RawScenario) Canonical() string {
	fields := []string{
		canonicalNumber(r.Principal),
		canonicalNumber(r.AnnualRate),
		canonicalNumber(r.OpeningFeeRate),
		canonicalNumber(r.FinancierFeeShare),
		canonicalTier(r.PromoterTier),
		canonicalNumber(r.DefaultProbability),
		strings.ToUpper(strings.TrimSpace(r.CreditRating)),
		canonicalFlag(r.Collateralized),
	}
	return strings.Join(fields, "|")
}

func canonicalTier(s string) string {
	if tier, ok := ParsePromoterTier(s); ok {
		return string(tier)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func canonicalFlag(s string) string {
	if v, ok := parseFlag(s); ok {
		return strconv.FormatBool(v)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func canonicalNumber(s string) string {
	if v := parseNumber(s); v != nil {
		return v.String()
	}
	return strings.TrimSpace(s)
}
