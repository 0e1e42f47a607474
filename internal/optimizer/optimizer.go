// Package optimizer searches for break-even pricing: the lowest annual rate,
// opening fee or financier share at which a scenario still meets its minimum
// required profit under the policy.
package optimizer

import (
	"fmt"

	"github.com/finantah/credit-simulator/internal/config"
	"github.com/finantah/credit-simulator/internal/simulator"
	"github.com/finantah/credit-simulator/pkg/format"
	"github.com/finantah/credit-simulator/pkg/optimization"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

type Runner struct {
	logger *zap.Logger
	policy profitability.Policy
}

type target struct {
	scenarioName string
	scenario     profitability.LoanScenario
	cfg          config.OptimizerConfig
	lower        decimal.Decimal
	upper        decimal.Decimal
	original     decimal.Decimal
}

type evaluation struct {
	value     decimal.Decimal
	rejection profitability.RejectionKind
	profit    decimal.Decimal
	required  decimal.Decimal
	meets     bool
}

func (e evaluation) feasible() bool {
	return e.rejection == "" && e.meets
}

func (e evaluation) headroom() decimal.Decimal {
	return e.profit.Sub(e.required)
}

// Result summarizes optimizer searches keyed by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any searches were run.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches optimizer summaries to the matching reports.
func (r Result) Apply(reports []simulator.Report) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range reports {
		summaries, ok := r.Summaries[reports[i].Name]
		if !ok {
			continue
		}
		reports[i].Optimizations = append(reports[i].Optimizations, summaries...)
	}
}

// NewRunner constructs a Runner for the provided policy.
func NewRunner(logger *zap.Logger, policy profitability.Policy) (*Runner, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, policy: policy}, nil
}

// Run executes the optimizer directive of every active scenario. The
// configuration is left untouched.
func (r *Runner) Run(conf config.Configuration) (*Result, error) {
	summaries := make(map[string][]optimization.Summary)

	for _, scenario := range conf.Scenarios {
		if !scenario.Active || scenario.Optimizer == nil {
			continue
		}
		cfg := *scenario.Optimizer
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		summary := r.Optimize(scenario.Name, scenario.Raw(), cfg)
		summaries[scenario.Name] = append(summaries[scenario.Name], summary)

		r.logger.Info("optimizer searched pricing field",
			zap.String("op", "optimizer.Run"),
			zap.String("scenario", scenario.Name),
			zap.String("field", summary.Field),
			zap.String("original", summary.Original.String()),
			zap.String("optimized", summary.Value.String()),
			zap.String("headroom", summary.Headroom.String()),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
	}

	return &Result{Summaries: summaries}, nil
}

// Optimize runs a single search. cfg must already be validated.
func (r *Runner) Optimize(name string, raw profitability.RawScenario, cfg config.OptimizerConfig) optimization.Summary {
	cfg.Normalize()
	summary := optimization.Summary{Field: cfg.Field}

	scenario, ok := profitability.ParseScenario(raw)
	if !ok {
		summary.Notes = []string{"scenario input is not well formed"}
		return summary
	}

	t := target{scenarioName: name, scenario: scenario, cfg: cfg}
	t.lower, t.upper = r.bounds(cfg.Field)
	t.original = fieldValue(scenario, cfg.Field)
	summary.Original = t.original
	summary.Lower = t.lower
	summary.Upper = t.upper

	lowerEval := r.evaluate(t, t.lower)
	upperEval := r.evaluate(t, t.upper)

	if lowerEval.feasible() {
		return fill(summary, lowerEval, 0, true)
	}
	if !upperEval.feasible() {
		summary = fill(summary, upperEval, 0, false)
		summary.Notes = []string{infeasibleNote(t, upperEval)}
		return summary
	}

	// Profit is non-decreasing in every searchable field, so the feasible
	// region is an upper interval of the band.
	tolerance := decimal.NewFromFloat(cfg.Tolerance)
	iterations := 0
	lower, upper := lowerEval, upperEval
	for iterations < cfg.MaxIterations && upper.value.Sub(lower.value).GreaterThan(tolerance) {
		mid := r.evaluate(t, lower.value.Add(upper.value).Div(two))
		iterations++
		if mid.feasible() {
			upper = mid
		} else {
			lower = mid
		}
	}

	converged := !upper.value.Sub(lower.value).GreaterThan(tolerance)
	summary = fill(summary, upper, iterations, converged)
	if !converged {
		summary.Notes = []string{fmt.Sprintf("stopped after %d iterations before reaching tolerance %s", iterations, tolerance)}
	}
	return summary
}

func fill(summary optimization.Summary, eval evaluation, iterations int, converged bool) optimization.Summary {
	summary.Value = eval.value
	summary.Profit = eval.profit
	summary.RequiredProfit = eval.required
	summary.Headroom = eval.headroom()
	summary.Iterations = iterations
	summary.Converged = converged
	return summary
}

func infeasibleNote(t target, eval evaluation) string {
	if eval.rejection != "" {
		return fmt.Sprintf("scenario is rejected (%s) at %s %s", eval.rejection, t.cfg.Field, format.PercentagePoints(eval.value))
	}
	return fmt.Sprintf(
		"unable to meet minimum required profit %s within bounds %s to %s",
		format.Currency(eval.required),
		format.PercentagePoints(t.lower),
		format.PercentagePoints(t.upper),
	)
}

func (r *Runner) bounds(field string) (decimal.Decimal, decimal.Decimal) {
	switch field {
	case config.OptimizerFieldOpeningFeeRate:
		return r.policy.OpeningFeeBand.Min, r.policy.OpeningFeeBand.Max
	case config.OptimizerFieldFinancierFeeShare:
		return r.policy.FinancierShareFloor, hundred
	default:
		return r.policy.RateBand.Min, r.policy.RateBand.Max
	}
}

func (r *Runner) evaluate(t target, value decimal.Decimal) evaluation {
	scenario := withField(t.scenario, t.cfg.Field, value)
	result := profitability.Evaluate(r.policy, scenario)
	if result.IsRejected() {
		return evaluation{value: value, rejection: result.Rejection}
	}
	return evaluation{
		value:    value,
		profit:   result.Evaluation.ComputedProfit,
		required: result.Evaluation.MinimumRequiredProfit,
		meets:    result.Evaluation.MeetsThreshold,
	}
}

func fieldValue(s profitability.LoanScenario, field string) decimal.Decimal {
	switch field {
	case config.OptimizerFieldOpeningFeeRate:
		return s.OpeningFeeRate
	case config.OptimizerFieldFinancierFeeShare:
		return s.FinancierFeeShare
	default:
		return s.AnnualRate
	}
}

func withField(s profitability.LoanScenario, field string, value decimal.Decimal) profitability.LoanScenario {
	switch field {
	case config.OptimizerFieldOpeningFeeRate:
		s.OpeningFeeRate = value
	case config.OptimizerFieldFinancierFeeShare:
		s.FinancierFeeShare = value
	default:
		s.AnnualRate = value
	}
	return s
}
