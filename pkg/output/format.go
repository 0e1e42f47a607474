// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/finantah/credit-simulator/internal/simulator"
	"github.com/finantah/credit-simulator/pkg/format"
	"github.com/finantah/credit-simulator/pkg/optimization"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(reports []simulator.Report, policy profitability.Policy) {
	p := message.NewPrinter(language.English)
	met := 0
	for _, report := range reports {
		fmt.Printf("--- Results for scenario %s ---\n", report.Name)
		outcome := report.Outcome

		if !outcome.Deterministic {
			fmt.Printf("%s\n", strings.TrimSpace(outcome.Narrative))
			fmt.Printf("\n")
			continue
		}

		result := outcome.Result
		if result == nil {
			fmt.Printf("No result\n\n")
			continue
		}
		if result.IsRejected() {
			fmt.Printf("Rejected (%s): %s\n", result.Rejection, RejectionMessage(result.Rejection, policy))
			printOptimizations(report)
			fmt.Printf("\n")
			continue
		}

		e := result.Evaluation
		if e.MeetsThreshold {
			met++
		}
		b := e.Breakdown
		fmt.Printf("Item                          | Amount\n")
		fmt.Printf("____                          | ______\n")
		for _, row := range breakdownRows(b) {
			fmt.Printf("%-29s | %s\n", row.label, format.Currency(row.value))
		}
		fmt.Printf("%-29s | %s\n", "Computed profit", format.Currency(e.ComputedProfit))
		fmt.Printf("%-29s | %s\n", "Minimum required profit", format.Currency(e.MinimumRequiredProfit))
		fmt.Printf("%s\n", Summary(*e))
		printOptimizations(report)
		fmt.Printf("\n")
	}

	_, _ = p.Printf("%d scenarios evaluated, %d meet the minimum return\n", len(reports), met)
}

func printOptimizations(report simulator.Report) {
	for _, summary := range report.Optimizations {
		fmt.Printf("%s\n", OptimizationMessage(summary))
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(reports []simulator.Report, policy profitability.Policy) {
	fmt.Print(CsvString(reports, policy))
}

// CsvString renders reports as CSV, one row per scenario.
func CsvString(reports []simulator.Report, policy profitability.Policy) string {
	var sb strings.Builder
	columns := []string{"scenario", "mode", "rejection"}
	for _, row := range breakdownRows(profitability.Breakdown{}) {
		columns = append(columns, row.key)
	}
	columns = append(columns, "computedProfit", "minimumRequiredProfit", "profitMargin", "meetsThreshold", "message")
	sb.WriteString(quoteRow(columns))

	for _, report := range reports {
		outcome := report.Outcome
		row := []string{report.Name, outcome.Mode}

		switch {
		case !outcome.Deterministic || outcome.Result == nil:
			row = append(row, "")
			row = append(row, make([]string, len(columns)-len(row)-1)...)
			row = append(row, strings.TrimSpace(outcome.Narrative))
		case outcome.Result.IsRejected():
			row = append(row, string(outcome.Result.Rejection))
			row = append(row, make([]string, len(columns)-len(row)-1)...)
			row = append(row, RejectionMessage(outcome.Result.Rejection, policy))
		default:
			e := outcome.Result.Evaluation
			row = append(row, "")
			for _, r := range breakdownRows(e.Breakdown) {
				row = append(row, format.NumericCurrency(r.value))
			}
			row = append(row,
				format.NumericCurrency(e.ComputedProfit),
				format.NumericCurrency(e.MinimumRequiredProfit),
				format.Percentage(e.ProfitMargin),
				fmt.Sprintf("%t", e.MeetsThreshold),
				Summary(*e),
			)
		}
		sb.WriteString(quoteRow(row))
	}

	return sb.String()
}

type jsonReport struct {
	Name          string                 `json:"name"`
	Outcome       simulator.Outcome      `json:"outcome"`
	Message       string                 `json:"message,omitempty"`
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// JSONFormat outputs the reports as an indented JSON array.
func JSONFormat(reports []simulator.Report, policy profitability.Policy) error {
	payload := make([]jsonReport, 0, len(reports))
	for _, report := range reports {
		entry := jsonReport{Name: report.Name, Outcome: report.Outcome, Optimizations: report.Optimizations}
		if report.Outcome.Result != nil {
			entry.Message = Describe(*report.Outcome.Result, policy)
		}
		payload = append(payload, entry)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

type breakdownRow struct {
	key   string
	label string
	value decimal.Decimal
}

func breakdownRows(b profitability.Breakdown) []breakdownRow {
	return []breakdownRow{
		{"interestIncome", "Interest income", b.InterestIncome},
		{"fundingCost", "Funding cost", b.FundingCost},
		{"grossInterestMargin", "Gross interest margin", b.GrossInterestMargin},
		{"openingFeeTotal", "Opening fee", b.OpeningFeeTotal},
		{"financierFeeAmount", "Lender share of opening fee", b.FinancierFeeAmount},
		{"promoterFeeAmount", "Promoter share of opening fee", b.PromoterFeeAmount},
		{"promoterInterestCommission", "Promoter interest commission", b.PromoterInterestCommission},
		{"contributionMargin", "Contribution margin", b.ContributionMargin},
		{"expectedLoss", "Expected loss", b.ExpectedLoss},
		{"profitBeforeOpex", "Profit before opex", b.ProfitBeforeOpex},
		{"operatingExpense", "Operating expense", b.OperatingExpense},
	}
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + "\n"
}
