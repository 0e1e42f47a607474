package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/finantah/credit-simulator/internal/simulator"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"go.uber.org/zap"
)

// Evaluator implements simulator.Evaluator on top of a Provider. Each
// attempt gets its own timeout and failed attempts are retried with
// exponential backoff.
type Evaluator struct {
	provider    Provider
	timeout     time.Duration
	maxAttempts int
	logger      *zap.Logger

	// newBackOff is replaced in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

func NewEvaluator(provider Provider, cfg Config, logger *zap.Logger) (*Evaluator, error) {
	cfg = cfg.WithDefaults()
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		provider:    provider,
		timeout:     timeout,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
		newBackOff: func() backoff.BackOff {
			policy := backoff.NewExponentialBackOff()
			policy.InitialInterval = 500 * time.Millisecond
			policy.MaxInterval = 5 * time.Second
			return policy
		},
	}, nil
}

func (e *Evaluator) Mode() string {
	return simulator.ModeRemote
}

func (e *Evaluator) Evaluate(ctx context.Context, raw profitability.RawScenario) (simulator.Outcome, error) {
	const op = "remote.Evaluator.Evaluate"
	prompt := BuildPrompt(raw)

	var narrative string
	attempt := 0
	err := backoff.RetryNotify(
		func() error {
			attempt++
			callCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			text, err := e.provider.Complete(callCtx, SystemPrompt, prompt)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return ErrEmptyResponse
			}
			narrative = text
			return nil
		},
		backoff.WithContext(backoff.WithMaxRetries(e.newBackOff(), uint64(e.maxAttempts-1)), ctx),
		func(err error, duration time.Duration) {
			e.logger.Warn("remote completion failed, retrying",
				zap.String("op", op),
				zap.String("provider", e.provider.Name()),
				zap.Int("attempt", attempt),
				zap.Error(err),
				zap.Duration("next_attempt_in", duration),
			)
		},
	)
	if err != nil {
		return simulator.Outcome{}, fmt.Errorf("%s: %s gave no answer after %d attempts: %w", op, e.provider.Name(), attempt, err)
	}

	e.logger.Debug("remote completion succeeded",
		zap.String("op", op),
		zap.String("provider", e.provider.Name()),
		zap.Int("attempts", attempt),
		zap.Int("response_length", len(narrative)),
	)

	return simulator.Outcome{
		Mode:          simulator.ModeRemote,
		Deterministic: false,
		Scenario:      raw,
		Narrative:     narrative,
	}, nil
}
