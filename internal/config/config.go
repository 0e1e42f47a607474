// Package config defines the data structures related to configuration and
// includes functions for loading the config and converting it into a credit policy.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"github.com/finantah/credit-simulator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for credit-simulator.
type Configuration struct {
	Policy    PolicyConfig
	Scenarios []Scenario
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// Scenario holds the raw terms of one credit to evaluate. Values are kept as
// entered so malformed input is reported by the evaluator rather than the loader.
type Scenario struct {
	Name               string `yaml:"name"`
	Active             bool   `yaml:"active"`
	Principal          string `yaml:"principal"`
	AnnualRate         string `yaml:"annualRate"`
	OpeningFeeRate     string `yaml:"openingFeeRate"`
	FinancierFeeShare  string `yaml:"financierFeeShare"`
	PromoterTier       string `yaml:"promoterTier"`
	DefaultProbability string `yaml:"defaultProbability"`
	CreditRating       string `yaml:"creditRating"`
	Collateralized     string `yaml:"collateralized,omitempty"`

	Optimizer *OptimizerConfig `yaml:"optimizer,omitempty"`
}

// Raw returns the scenario in the evaluator's input form.
func (s Scenario) Raw() profitability.RawScenario {
	return profitability.RawScenario{
		Principal:          s.Principal,
		AnnualRate:         s.AnnualRate,
		OpeningFeeRate:     s.OpeningFeeRate,
		FinancierFeeShare:  s.FinancierFeeShare,
		PromoterTier:       s.PromoterTier,
		DefaultProbability: s.DefaultProbability,
		CreditRating:       s.CreditRating,
		Collateralized:     s.Collateralized,
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setPolicyDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var scenarios []validation.ScenarioInfo
	for _, scenario := range c.Scenarios {
		scenarios = append(scenarios, validation.ScenarioInfo{
			Name:   scenario.Name,
			Active: scenario.Active,
		})
	}

	validator := validation.ConfigValidator{
		Policy: validation.PolicyInfo{
			RateMin:                  c.Policy.RateMin,
			RateMax:                  c.Policy.RateMax,
			OpeningFeeMin:            c.Policy.OpeningFeeMin,
			OpeningFeeMax:            c.Policy.OpeningFeeMax,
			FinancierShareFloor:      c.Policy.FinancierShareFloor,
			MinimumReturns:           c.Policy.MinimumReturns,
			CollateralMinimumReturns: c.Policy.CollateralMinimumReturns,
		},
		Scenarios: scenarios,
	}
	return validator.ValidateAll()
}
