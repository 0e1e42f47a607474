package remote

import (
	"fmt"
	"strings"

	"github.com/finantah/credit-simulator/pkg/profitability"
)

// SystemPrompt frames every remote request.
const SystemPrompt = "You are a financial simulator specialised in consumer credit. " +
	"Compute the profit of the credit according to the lender's internal profitability model. " +
	"Make sure the internal credit policy validations are applied correctly."

// BuildPrompt renders raw as the user message sent to the provider. Fields are
// passed through as entered so the provider sees exactly what the user typed.
func BuildPrompt(raw profitability.RawScenario) string {
	var b strings.Builder
	b.WriteString("Simulate the profit of the following credit:\n\n")
	fmt.Fprintf(&b, "- Credit amount: $%s\n", strings.TrimSpace(raw.Principal))
	fmt.Fprintf(&b, "- Annual rate charged to the client (%%): %s\n", strings.TrimSpace(raw.AnnualRate))
	fmt.Fprintf(&b, "- Promoter tier: %s\n", strings.TrimSpace(raw.PromoterTier))
	fmt.Fprintf(&b, "- Total opening fee charged to the client (%%): %s\n", strings.TrimSpace(raw.OpeningFeeRate))
	fmt.Fprintf(&b, "- Share of the opening fee kept by the lender (%%): %s\n", strings.TrimSpace(raw.FinancierFeeShare))
	fmt.Fprintf(&b, "- Probability of default (%%): %s\n", strings.TrimSpace(raw.DefaultProbability))
	fmt.Fprintf(&b, "- Client credit rating: %s", strings.TrimSpace(raw.CreditRating))
	if c := strings.TrimSpace(raw.Collateralized); c != "" {
		fmt.Fprintf(&b, "\n- Collateralized: %s", c)
	}
	return b.String()
}
