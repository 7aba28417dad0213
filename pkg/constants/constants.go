// Package constants provides shared constants for mortgage-grid.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// RateTolerance is the tolerance for interest/return rate comparisons
	RateTolerance = 1e-9

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// WorstCasePercentile is the lower-tail percentile used as the
	// worst-case investment outcome
	WorstCasePercentile = 5.0
)

// Simulation defaults
const (
	// DefaultDownPaymentStep is the increment between candidate down
	// payments when none is configured
	DefaultDownPaymentStep = 1000.0

	// DefaultTrialCount is the default number of Monte Carlo trials per
	// scenario
	DefaultTrialCount = 3000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
