package simulator

import (
	"context"
	"fmt"

	"github.com/finantah/credit-simulator/internal/config"
	"github.com/finantah/credit-simulator/pkg/optimization"
	"go.uber.org/zap"
)

// Report holds the outcome of a single configured scenario.
type Report struct {
	Name    string
	Outcome Outcome

	// Optimizations holds break-even searches attached by the optimizer.
	Optimizations []optimization.Summary
}

// Simulate evaluates every active scenario in conf. When evaluator is nil a
// Deterministic evaluator is built from the configured policy.
func Simulate(ctx context.Context, logger *zap.Logger, conf config.Configuration, evaluator Evaluator) ([]Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if evaluator == nil {
		policy, err := conf.Policy.ToPolicy()
		if err != nil {
			return nil, err
		}
		evaluator, err = NewDeterministic(policy, logger)
		if err != nil {
			return nil, err
		}
	}

	var reports []Report
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "simulator.Simulate"),
			)
			continue
		}

		outcome, err := evaluator.Evaluate(ctx, scenario.Raw())
		if err != nil {
			return reports, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		reports = append(reports, Report{Name: scenario.Name, Outcome: outcome})
	}

	return reports, nil
}
