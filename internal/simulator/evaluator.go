// Package simulator runs credit scenarios through an Evaluator and collects
// the outcomes into reports.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"go.uber.org/zap"
)

const (
	ModeDeterministic = "deterministic"
	ModeRemote        = "remote"
)

// ErrRemoteDisabled is returned when a remote evaluation is requested but no
// provider has been configured.
var ErrRemoteDisabled = errors.New("simulator: remote evaluation is not configured")

// Outcome is what an Evaluator produced for one scenario. Deterministic
// outcomes carry a Result, remote ones a free-text Narrative.
type Outcome struct {
	Mode          string                    `json:"mode"`
	Deterministic bool                      `json:"deterministic"`
	Scenario      profitability.RawScenario `json:"scenario"`
	Result        *profitability.Result     `json:"result,omitempty"`
	Narrative     string                    `json:"narrative,omitempty"`
}

// Evaluator turns a raw scenario into an Outcome.
type Evaluator interface {
	Mode() string
	Evaluate(ctx context.Context, raw profitability.RawScenario) (Outcome, error)
}

// Deterministic evaluates scenarios locally against a fixed policy.
type Deterministic struct {
	policy      profitability.Policy
	fingerprint string
	logger      *zap.Logger
}

// NewDeterministic returns an evaluator for policy, which must be valid.
func NewDeterministic(policy profitability.Policy, logger *zap.Logger) (*Deterministic, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	encoded, err := json.Marshal(policy)
	if err != nil {
		return nil, fmt.Errorf("unable to fingerprint policy: %w", err)
	}
	return &Deterministic{
		policy:      policy,
		fingerprint: fmt.Sprintf("%016x", xxhash.Sum64(encoded)),
		logger:      logger,
	}, nil
}

func (d *Deterministic) Mode() string {
	return ModeDeterministic
}

// CacheNamespace separates cached outcomes of different policies.
func (d *Deterministic) CacheNamespace() string {
	return ModeDeterministic + ":" + d.fingerprint
}

// Policy returns the policy scenarios are evaluated against.
func (d *Deterministic) Policy() profitability.Policy {
	return d.policy
}

// Evaluate never returns an error; rejections are part of the Result.
func (d *Deterministic) Evaluate(_ context.Context, raw profitability.RawScenario) (Outcome, error) {
	result := profitability.EvaluateRaw(d.policy, raw)

	if result.IsRejected() {
		d.logger.Debug("scenario rejected",
			zap.String("op", "simulator.Deterministic.Evaluate"),
			zap.String("rejection", string(result.Rejection)),
		)
	} else {
		d.logger.Debug("scenario evaluated",
			zap.String("op", "simulator.Deterministic.Evaluate"),
			zap.String("computedProfit", result.Evaluation.ComputedProfit.String()),
			zap.Bool("meetsThreshold", result.Evaluation.MeetsThreshold),
		)
	}

	return Outcome{
		Mode:          ModeDeterministic,
		Deterministic: true,
		Scenario:      raw,
		Result:        &result,
	}, nil
}

// Unavailable stands in for a remote evaluator that was not configured.
type Unavailable struct{}

func (Unavailable) Mode() string {
	return ModeRemote
}

func (Unavailable) Evaluate(context.Context, profitability.RawScenario) (Outcome, error) {
	return Outcome{}, ErrRemoteDisabled
}
