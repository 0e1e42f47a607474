// Package constants provides shared constants for the credit-simulator application.
package constants

// Canonical credit policy. Bands and floors are expressed in percentage points
// (the same scale users enter rates in); the remaining rates are fractions.
const (
	// DefaultRateMin is the lowest annual rate, in percentage points, a credit may carry.
	DefaultRateMin = 26.0

	// DefaultRateMax is the highest annual rate, in percentage points, a credit may carry.
	DefaultRateMax = 36.0

	// DefaultOpeningFeeMin is the lowest opening fee, in percentage points.
	DefaultOpeningFeeMin = 1.0

	// DefaultOpeningFeeMax is the highest opening fee, in percentage points.
	DefaultOpeningFeeMax = 4.0

	// DefaultFinancierShareFloor is the minimum share of the opening fee the financier keeps.
	DefaultFinancierShareFloor = 50.0

	// DefaultFundingRate is the financier's cost of capital applied to principal.
	DefaultFundingRate = 0.1788

	// DefaultLossGivenDefault is the share of principal lost when a borrower defaults.
	DefaultLossGivenDefault = 0.45

	// DefaultOperatingExpenseRate is the operating expense charged against principal.
	DefaultOperatingExpenseRate = 0.045
)

// Promoter interest commission rates by tier.
const (
	DefaultJuniorCommissionRate  = 0.05
	DefaultSeniorCommissionRate  = 0.08
	DefaultManagerCommissionRate = 0.10
)

// Minimum required return on principal by credit rating.
const (
	DefaultMinimumReturnA = 0.08
	DefaultMinimumReturnB = 0.09
	DefaultMinimumReturnC = 0.10
	DefaultMinimumReturnD = 0.11
)

// Numeric helpers
const (
	// PercentageShift is the decimal exponent shift between percentage points and fractions.
	PercentageShift = 2

	// CurrencyPlaces is the number of decimal places money is displayed with.
	CurrencyPlaces = 2
)

// Input limits. Numbers outside them are rejected as invalid input before any
// arithmetic.
const (
	// MaxInputLength is the longest numeric text accepted, after trimming.
	MaxInputLength = 64

	// MaxInputExponent bounds the decimal exponent of a numeric input in both directions.
	MaxInputExponent = 64

	// MaxInputMagnitudeDigits caps the absolute value of a numeric input at 10^15.
	MaxInputMagnitudeDigits = 15
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides of configuration keys.
	EnvPrefix = "CREDIT_SIMULATOR"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimitPerSecond is the sustained request rate allowed per client.
	DefaultRateLimitPerSecond = 5.0

	// DefaultRateLimitBurst is the request burst allowed per client.
	DefaultRateLimitBurst = 10

	// DefaultCacheTTL is how long evaluation outcomes are cached.
	DefaultCacheTTL = "24h"

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP server.
	DefaultShutdownTimeout = "10s"
)

// Remote completion defaults
const (
	// DefaultRemoteTimeout bounds a single completion call.
	DefaultRemoteTimeout = "30s"

	// DefaultRemoteTemperature keeps completions close to deterministic.
	DefaultRemoteTemperature = 0.2

	// DefaultRemoteMaxTokens caps the completion length.
	DefaultRemoteMaxTokens = 1024

	// DefaultRemoteMaxAttempts is the number of tries for one completion.
	DefaultRemoteMaxAttempts = 3

	// DefaultClaudeModel is used when the claude provider has no model configured.
	DefaultClaudeModel = "claude-sonnet-4-20250514"

	// DefaultGeminiModel is used when the gemini provider has no model configured.
	DefaultGeminiModel = "gemini-2.0-flash"
)
