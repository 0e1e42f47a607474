package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/finantah/credit-simulator/pkg/profitability"
)

const testConfig = `
policy:
  rateMin: 26
  rateMax: 36
  commissionRates:
    junior: 0.06
  collateralMinimumReturns:
    A: 0.06
scenarios:
  - name: Golden
    active: true
    principal: 1000000
    annualRate: 30
    openingFeeRate: 2
    financierFeeShare: 50
    promoterTier: senior
    defaultProbability: 1
    creditRating: A
  - name: Secured
    active: false
    principal: "250000.50"
    annualRate: 28.5
    openingFeeRate: 3
    financierFeeShare: 75
    promoterTier: Jr
    defaultProbability: 0.5
    creditRating: b
    collateralized: true
logging:
  level: debug
  format: console
output:
  format: json
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Valid config file",
			configPath: writeConfig(t, testConfig),
			wantError:  false,
		},
		{
			name:       "Malformed YAML",
			configPath: writeConfig(t, "policy: [unclosed"),
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationValues(t *testing.T) {
	config, err := LoadConfiguration(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if len(config.Scenarios) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(config.Scenarios))
	}

	golden := config.Scenarios[0].Raw()
	want := profitability.RawScenario{
		Principal:          "1000000",
		AnnualRate:         "30",
		OpeningFeeRate:     "2",
		FinancierFeeShare:  "50",
		PromoterTier:       "senior",
		DefaultProbability: "1",
		CreditRating:       "A",
	}
	if golden != want {
		t.Errorf("Raw() = %+v, expected %+v", golden, want)
	}

	secured := config.Scenarios[1]
	if secured.Active {
		t.Errorf("expected second scenario to be inactive")
	}
	if secured.Principal != "250000.50" {
		t.Errorf("expected quoted principal to be kept verbatim, got %q", secured.Principal)
	}
	if secured.AnnualRate != "28.5" {
		t.Errorf("expected annual rate 28.5, got %q", secured.AnnualRate)
	}
	if _, ok := profitability.ParseScenario(secured.Raw()); !ok {
		t.Errorf("expected secured scenario to parse, got %+v", secured.Raw())
	}

	if config.Logging.Level != "debug" || config.Logging.Format != "console" {
		t.Errorf("unexpected logging config %+v", config.Logging)
	}
	if config.Output.Format != "json" {
		t.Errorf("expected output format json, got %q", config.Output.Format)
	}
}

func TestLoadConfigurationPolicyDefaults(t *testing.T) {
	config, err := LoadConfiguration(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	p := config.Policy
	if p.OpeningFeeMin != 1 || p.OpeningFeeMax != 4 {
		t.Errorf("expected default opening fee band [1, 4], got [%g, %g]", p.OpeningFeeMin, p.OpeningFeeMax)
	}
	if p.FundingRate != 0.1788 {
		t.Errorf("expected default funding rate 0.1788, got %g", p.FundingRate)
	}

	// A partial commission table keeps the defaults for the other tiers.
	if p.CommissionRates["junior"] != 0.06 {
		t.Errorf("expected junior override 0.06, got %g", p.CommissionRates["junior"])
	}
	if p.CommissionRates["senior"] != 0.08 {
		t.Errorf("expected default senior rate 0.08, got %g", p.CommissionRates["senior"])
	}
	if len(p.MinimumReturns) != 4 {
		t.Errorf("expected 4 default minimum returns, got %v", p.MinimumReturns)
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("CREDIT_SIMULATOR_POLICY_FUNDINGRATE", "0.15")
	t.Setenv("CREDIT_SIMULATOR_POLICY_RATEMAX", "38")

	config, err := LoadConfiguration(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Policy.FundingRate != 0.15 {
		t.Errorf("expected funding rate from environment 0.15, got %g", config.Policy.FundingRate)
	}
	if config.Policy.RateMax != 38 {
		t.Errorf("expected rate max from environment 38, got %g", config.Policy.RateMax)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	config, err := LoadConfigurationFromReader(strings.NewReader(testConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if len(config.Scenarios) != 2 {
		t.Errorf("expected 2 scenarios, got %d", len(config.Scenarios))
	}

	if _, err := LoadConfigurationFromReader(strings.NewReader("scenarios: {")); err == nil {
		t.Errorf("expected error for malformed YAML")
	}
}

func TestValidateConfiguration(t *testing.T) {
	config, err := LoadConfiguration(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	config.Policy.RateMin = 20
	config.Scenarios[0].Active = false
	warnings := config.ValidateConfiguration()
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestLoadExampleConfiguration(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if len(conf.Scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(conf.Scenarios))
	}
	if _, err := conf.Policy.ToPolicy(); err != nil {
		t.Fatalf("ToPolicy() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	optimizer := conf.Scenarios[0].Optimizer
	if optimizer == nil || optimizer.Field != OptimizerFieldAnnualRate || optimizer.Tolerance != 0.01 {
		t.Errorf("unexpected optimizer %+v", optimizer)
	}
	if conf.Scenarios[1].Optimizer != nil {
		t.Errorf("expected no optimizer on the second scenario")
	}
	if conf.Scenarios[1].Collateralized != "1" && conf.Scenarios[1].Collateralized != "true" {
		t.Errorf("unexpected collateralized value %q", conf.Scenarios[1].Collateralized)
	}
	for _, scenario := range conf.Scenarios {
		if scenario.Optimizer == nil {
			continue
		}
		if err := scenario.Optimizer.Validate(); err != nil {
			t.Errorf("scenario %s optimizer: %v", scenario.Name, err)
		}
	}
}
