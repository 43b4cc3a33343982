// Package constants provides shared constants for the sterling service.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// WeeksPerYear is the number of weeks in a year for pay conversions
	WeeksPerYear = 52

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// CurrencyScale is the number of decimal places for currency amounts
	CurrencyScale = 2
)

// Recommendation thresholds
const (
	// NeutralMarginRatio is the fraction of total loan cost below which the
	// invest-vs-payoff decision is considered a wash.
	NeutralMarginRatio = "0.02"
)

// Projection limits
const (
	// MaxProjectionYears caps any yearly projection loop.
	MaxProjectionYears = 60

	// MaxFreedomYears caps the time-to-freedom search horizon.
	MaxFreedomYears = 100
)

// Configuration file constants
const (
	// DefaultConfigFile is the default service configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultTaxYear is the tax year used when a request does not name one
	DefaultTaxYear = "2023-24"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodyBytes is the default maximum request body size (64 KB)
	DefaultMaxBodyBytes int64 = 64 * 1024

	// DefaultRateLimitCapacity is the default per-client token bucket size
	DefaultRateLimitCapacity = 30

	// DefaultRateLimitRefillSeconds is the default token refill interval
	DefaultRateLimitRefillSeconds = 2
)
