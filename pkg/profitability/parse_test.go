package profitability

import (
	"strings"
	"testing"
)

func referenceRaw() RawScenario {
	return RawScenario{
		Principal:          "1000000",
		AnnualRate:         "30",
		OpeningFeeRate:     "2",
		FinancierFeeShare:  "50",
		PromoterTier:       "Sr",
		DefaultProbability: "1",
		CreditRating:       "A",
	}
}

func TestEvaluateRawReferenceScenario(t *testing.T) {
	result := EvaluateRaw(DefaultPolicy(), referenceRaw())
	if result.IsRejected() {
		t.Fatalf("EvaluateRaw() rejected reference scenario: %s", result.Rejection)
	}
	if !result.Evaluation.ComputedProfit.Equal(d("62004")) {
		t.Errorf("ComputedProfit = %s, expected 62004", result.Evaluation.ComputedProfit)
	}
}

func TestEvaluateRawRejections(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(r *RawScenario)
		expected RejectionKind
	}{
		{"Rate below band", func(r *RawScenario) { r.AnnualRate = "20" }, RateOutOfRange},
		{"Rate checked before malformed principal", func(r *RawScenario) {
			r.AnnualRate = "20"
			r.Principal = "abc"
		}, RateOutOfRange},
		{"Fee checked when rate is malformed", func(r *RawScenario) {
			r.AnnualRate = "thirty"
			r.OpeningFeeRate = "9"
		}, FeeOutOfRange},
		{"Share checked when fee is missing", func(r *RawScenario) {
			r.OpeningFeeRate = ""
			r.FinancierFeeShare = "30"
		}, InsufficientFinancierShare},
		{"Malformed rate", func(r *RawScenario) { r.AnnualRate = "30%" }, InvalidInput},
		{"Missing principal", func(r *RawScenario) { r.Principal = "" }, InvalidInput},
		{"Non-numeric default probability", func(r *RawScenario) { r.DefaultProbability = "NaN" }, InvalidInput},
		{"Infinite principal", func(r *RawScenario) { r.Principal = "Inf" }, InvalidInput},
		{"Unknown tier", func(r *RawScenario) { r.PromoterTier = "Director" }, InvalidInput},
		{"Missing rating", func(r *RawScenario) { r.CreditRating = "" }, InvalidInput},
		{"Malformed collateral flag", func(r *RawScenario) { r.Collateralized = "maybe" }, InvalidInput},
		{"Principal with extreme negative exponent", func(r *RawScenario) { r.Principal = "1e-2147483648" }, InvalidInput},
		{"Principal with extreme positive exponent", func(r *RawScenario) { r.Principal = "1e50000000" }, InvalidInput},
		{"Principal above magnitude cap", func(r *RawScenario) { r.Principal = "2000000000000000" }, InvalidInput},
		{"Principal text too long", func(r *RawScenario) { r.Principal = "1000000." + strings.Repeat("0", 64) }, InvalidInput},
		{"Rate with extreme exponent", func(r *RawScenario) { r.AnnualRate = "3e2147483647" }, InvalidInput},
		{"Share with extreme exponent", func(r *RawScenario) { r.FinancierFeeShare = "5e-2147483648" }, InvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := referenceRaw()
			tt.modify(&raw)

			result := EvaluateRaw(DefaultPolicy(), raw)
			if result.Rejection != tt.expected {
				t.Errorf("EvaluateRaw() rejection = %q, expected %q", result.Rejection, tt.expected)
			}
			if result.Evaluation != nil {
				t.Errorf("EvaluateRaw() leaked an evaluation for a rejected scenario")
			}
		})
	}
}

func TestParseScenario(t *testing.T) {
	raw := RawScenario{
		Principal:          " 250000.50 ",
		AnnualRate:         "3.2e1",
		OpeningFeeRate:     "1.5",
		FinancierFeeShare:  "75",
		PromoterTier:       "gerente",
		DefaultProbability: "2.25",
		CreditRating:       "c",
		Collateralized:     "yes",
	}

	scenario, ok := ParseScenario(raw)
	if !ok {
		t.Fatal("ParseScenario() failed on well-formed input")
	}
	if !scenario.Principal.Equal(d("250000.50")) {
		t.Errorf("Principal = %s, expected 250000.50", scenario.Principal)
	}
	if !scenario.AnnualRate.Equal(d("32")) {
		t.Errorf("AnnualRate = %s, expected 32", scenario.AnnualRate)
	}
	if scenario.PromoterTier != PromoterManager {
		t.Errorf("PromoterTier = %s, expected %s", scenario.PromoterTier, PromoterManager)
	}
	if scenario.CreditRating != RatingC {
		t.Errorf("CreditRating = %s, expected %s", scenario.CreditRating, RatingC)
	}
	if !scenario.Collateralized {
		t.Errorf("Collateralized = false, expected true")
	}

	raw.DefaultProbability = "two"
	if _, ok := ParseScenario(raw); ok {
		t.Error("ParseScenario() accepted a malformed default probability")
	}
}

func TestParsePromoterTier(t *testing.T) {
	tests := []struct {
		input    string
		expected PromoterTier
		ok       bool
	}{
		{"Jr", PromoterJunior, true},
		{"junior", PromoterJunior, true},
		{"SR", PromoterSenior, true},
		{"Gerente", PromoterManager, true},
		{" manager ", PromoterManager, true},
		{"Socio", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePromoterTier(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParsePromoterTier(%q) = (%q, %v), expected (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestParseCreditRating(t *testing.T) {
	tests := []struct {
		input    string
		expected CreditRating
		ok       bool
	}{
		{"A", RatingA, true},
		{"b", RatingB, true},
		{" D ", RatingD, true},
		{"E", "", false},
		{"AA", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCreditRating(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseCreditRating(%q) = (%q, %v), expected (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestRawScenarioCanonical(t *testing.T) {
	a := referenceRaw()
	b := RawScenario{
		Principal:          " 1000000.00",
		AnnualRate:         "30.0",
		OpeningFeeRate:     "2",
		FinancierFeeShare:  "50",
		PromoterTier:       "sr ",
		DefaultProbability: "1.0",
		CreditRating:       "a",
	}
	if a.Canonical() != b.Canonical() {
		t.Errorf("Canonical() differs for equivalent input:\n%s\n%s", a.Canonical(), b.Canonical())
	}

	b.AnnualRate = "31"
	if a.Canonical() == b.Canonical() {
		t.Error("Canonical() collides for different rates")
	}
}
