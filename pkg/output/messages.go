package output

import (
	"fmt"
	"strings"

	"github.com/finantah/credit-simulator/pkg/format"
	"github.com/finantah/credit-simulator/pkg/optimization"
	"github.com/finantah/credit-simulator/pkg/profitability"
)

// RejectionMessage maps a rejection to the message shown to the user.
func RejectionMessage(kind profitability.RejectionKind, policy profitability.Policy) string {
	switch kind {
	case profitability.RateOutOfRange:
		return fmt.Sprintf("The annual rate must be between %s and %s.",
			format.PercentagePoints(policy.RateBand.Min), format.PercentagePoints(policy.RateBand.Max))
	case profitability.FeeOutOfRange:
		return fmt.Sprintf("The opening fee must be between %s and %s.",
			format.PercentagePoints(policy.OpeningFeeBand.Min), format.PercentagePoints(policy.OpeningFeeBand.Max))
	case profitability.InsufficientFinancierShare:
		return fmt.Sprintf("The lender must keep at least %s of the opening fee.",
			format.PercentagePoints(policy.FinancierShareFloor))
	case profitability.InvalidInput:
		return "Check the entered values: every field is required and must be a valid number, promoter tier or credit rating."
	}
	return fmt.Sprintf("The scenario was rejected (%s).", kind)
}

// Summary is a one-line verdict for an evaluated scenario.
func Summary(e profitability.Evaluation) string {
	verdict := "meets"
	if !e.MeetsThreshold {
		verdict = "does not meet"
	}
	return fmt.Sprintf("Computed profit %s (%s margin) %s the minimum required profit %s (%s return).",
		format.Currency(e.ComputedProfit),
		format.Percentage(e.ProfitMargin),
		verdict,
		format.Currency(e.MinimumRequiredProfit),
		format.Percentage(e.MinimumReturnRate),
	)
}

// Describe returns the user-facing text for any result.
func Describe(result profitability.Result, policy profitability.Policy) string {
	if result.IsRejected() {
		return RejectionMessage(result.Rejection, policy)
	}
	if result.Evaluation == nil {
		return ""
	}
	return Summary(*result.Evaluation)
}

var optimizerFieldLabels = map[string]string{
	"annualRate":        "annual rate",
	"openingFeeRate":    "opening fee",
	"financierFeeShare": "lender share of the opening fee",
}

// OptimizationMessage describes a break-even search. The value is rounded up
// so the displayed figure still meets the threshold.
func OptimizationMessage(s optimization.Summary) string {
	label, ok := optimizerFieldLabels[s.Field]
	if !ok {
		label = s.Field
	}
	if !s.Converged {
		return fmt.Sprintf("No break-even %s found: %s.", label, strings.Join(s.Notes, "; "))
	}
	return fmt.Sprintf("Break-even %s is %s (entered %s), giving profit %s against %s required.",
		label,
		format.PercentagePoints(s.Value.RoundCeil(2)),
		format.PercentagePoints(s.Original),
		format.Currency(s.Profit),
		format.Currency(s.RequiredProfit),
	)
}
