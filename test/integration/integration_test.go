package integration

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/finantah/credit-simulator/internal/cache"
	"github.com/finantah/credit-simulator/internal/config"
	"github.com/finantah/credit-simulator/internal/optimizer"
	"github.com/finantah/credit-simulator/internal/simulator"
	"github.com/finantah/credit-simulator/pkg/output"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"github.com/finantah/credit-simulator/pkg/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// runPipeline loads the fixture and evaluates it exactly as main() does.
func runPipeline(t *testing.T, evaluator simulator.Evaluator) (*config.Configuration, profitability.Policy, []simulator.Report) {
	t.Helper()
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	policy, err := conf.Policy.ToPolicy()
	if err != nil {
		t.Fatalf("ToPolicy() error = %v", err)
	}

	if evaluator == nil {
		evaluator, err = simulator.NewDeterministic(policy, logger)
		if err != nil {
			t.Fatalf("NewDeterministic() error = %v", err)
		}
	}

	reports, err := simulator.Simulate(context.Background(), logger, *conf, evaluator)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	runner, err := optimizer.NewRunner(logger, policy)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	optimized, err := runner.Run(*conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	optimized.Apply(reports)

	return conf, policy, reports
}

// TestMainIntegrationBaseline checks the fixture against known results.
func TestMainIntegrationBaseline(t *testing.T) {
	_, _, reports := runPipeline(t, nil)

	expectedScenarios := []string{
		"Reference credit",
		"Manager top of band",
		"Rate below band",
		"Unknown rating",
	}
	if len(reports) != len(expectedScenarios) {
		t.Fatalf("Expected %d reports, got %d", len(expectedScenarios), len(reports))
	}
	for i, expected := range expectedScenarios {
		if reports[i].Name != expected {
			t.Errorf("Expected scenario %s, got %s", expected, reports[i].Name)
		}
	}

	if testutil.FindReport(reports, "Draft") != nil {
		t.Errorf("inactive scenario Draft should not be reported")
	}

	baselineChecks := []struct {
		scenario string
		profit   int64
		required int64
		meets    bool
	}{
		{"Reference credit", 62004, 80000, false},
		{"Manager top of band", 158080, 80000, true},
	}
	for _, check := range baselineChecks {
		report := testutil.FindReport(reports, check.scenario)
		if report == nil {
			t.Fatalf("Scenario '%s' not found in reports", check.scenario)
		}
		result := report.Outcome.Result
		if result == nil || result.Evaluation == nil {
			t.Fatalf("Scenario '%s' has no evaluation", check.scenario)
		}
		e := result.Evaluation
		if !e.ComputedProfit.Equal(decimal.NewFromInt(check.profit)) {
			t.Errorf("Scenario '%s': expected profit %d, got %s", check.scenario, check.profit, e.ComputedProfit)
		}
		if !e.MinimumRequiredProfit.Equal(decimal.NewFromInt(check.required)) {
			t.Errorf("Scenario '%s': expected required profit %d, got %s", check.scenario, check.required, e.MinimumRequiredProfit)
		}
		if e.MeetsThreshold != check.meets {
			t.Errorf("Scenario '%s': expected meets=%t", check.scenario, check.meets)
		}
	}

	rejections := map[string]profitability.RejectionKind{
		"Rate below band": profitability.RateOutOfRange,
		"Unknown rating":  profitability.InvalidInput,
	}
	for name, kind := range rejections {
		report := testutil.FindReport(reports, name)
		if report == nil || report.Outcome.Result == nil || report.Outcome.Result.Rejection != kind {
			t.Errorf("Scenario '%s': expected rejection %s", name, kind)
		}
	}

	reference := testutil.FindReport(reports, "Reference credit")
	if len(reference.Optimizations) != 1 || !reference.Optimizations[0].Converged {
		t.Fatalf("expected a converged optimization for Reference credit, got %+v", reference.Optimizations)
	}
	if reference.Optimizations[0].Value.LessThan(decimal.RequireFromString("31.956")) {
		t.Errorf("break-even rate %s is below the analytic value", reference.Optimizations[0].Value)
	}
}

// TestCachedPipelineMatchesDeterministic runs the fixture twice through a
// cached evaluator and expects identical outcomes.
func TestCachedPipelineMatchesDeterministic(t *testing.T) {
	_, policy, baseline := runPipeline(t, nil)

	deterministic, err := simulator.NewDeterministic(policy, nil)
	if err != nil {
		t.Fatalf("NewDeterministic() error = %v", err)
	}
	store := cache.NewMemoryStore()
	cached := simulator.NewCached(deterministic, store, 0, nil)

	_, _, first := runPipeline(t, cached)
	_, _, second := runPipeline(t, cached)

	if store.Len() != len(baseline) {
		t.Errorf("expected %d cached entries, got %d", len(baseline), store.Len())
	}
	for i := range baseline {
		want := output.Describe(*baseline[i].Outcome.Result, policy)
		for _, reports := range [][]simulator.Report{first, second} {
			if got := output.Describe(*reports[i].Outcome.Result, policy); got != want {
				t.Errorf("report %d: expected %q, got %q", i, want, got)
			}
		}
	}
}

// TestPrettyOutputFormat tests the pretty print output
func TestPrettyOutputFormat(t *testing.T) {
	_, policy, reports := runPipeline(t, nil)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("PrettyFormat() panicked: %v", r)
		}
	}()

	originalStdout := os.Stdout
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", os.DevNull, err)
	}
	os.Stdout = devNull

	output.PrettyFormat(reports, policy)

	os.Stdout = originalStdout
	_ = devNull.Close()
}

// TestCsvOutputFormat checks the CSV shape for the fixture.
func TestCsvOutputFormat(t *testing.T) {
	_, policy, reports := runPipeline(t, nil)

	csv := output.CsvString(reports, policy)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != len(reports)+1 {
		t.Fatalf("expected %d CSV lines, got %d", len(reports)+1, len(lines))
	}

	expectedHeaderParts := []string{`"scenario"`, `"mode"`, `"rejection"`, `"computedProfit"`, `"meetsThreshold"`}
	for _, part := range expectedHeaderParts {
		if !strings.Contains(lines[0], part) {
			t.Errorf("CSV header missing expected part: %s", part)
		}
	}
	if !strings.HasPrefix(lines[1], `"Reference credit","deterministic",""`) {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.Contains(lines[3], `"rate_out_of_range"`) {
		t.Errorf("expected rejection in third row: %s", lines[3])
	}
}

// TestConfigurationValidation tests policy validation through the loader.
func TestConfigurationValidation(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		expectError bool
	}{
		{
			name:        "Defaults only",
			yaml:        "scenarios:\n  - name: Test\n    active: true\n",
			expectError: false,
		},
		{
			name:        "Inverted rate band",
			yaml:        "policy:\n  rateMin: 40\n  rateMax: 30\n",
			expectError: true,
		},
		{
			name:        "Unknown rating in minimum returns",
			yaml:        "policy:\n  minimumReturns:\n    z: 0.2\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := config.LoadConfigurationFromReader(strings.NewReader(tt.yaml))
			if err != nil {
				t.Fatalf("LoadConfigurationFromReader() error = %v", err)
			}

			_, err = conf.Policy.ToPolicy()
			if tt.expectError && err == nil {
				t.Errorf("Expected error in ToPolicy but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error in ToPolicy: %v", err)
			}
		})
	}
}
