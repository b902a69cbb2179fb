// Package constants provides shared constants for the mortgage-ledger application.
package constants

// DateLayout is the calendar date format used in configuration, persisted
// records and output.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerYear is the fixed day count used for daily interest. No leap-year
	// adjustment is made.
	DaysPerYear = 365

	// DecimalPlaces is the number of decimal places used for currency rounding
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// HorizonBufferMonths is how many months past the nominal term the calendar
	// is generated so that late payoffs are still observed.
	HorizonBufferMonths = 24

	// ExistingLookbackMonths is how far before the first scheduled interest date
	// an existing mortgage is assumed to have last been charged interest.
	ExistingLookbackMonths = 1

	// MinDayOfMonth and MaxDayOfMonth bound the configurable payment and
	// interest days so that every month contains them.
	MinDayOfMonth = 1
	MaxDayOfMonth = 28
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

// Output view constants
const (
	// ShowLedger renders every transaction ledger entry
	ShowLedger = "ledger"

	// ShowSchedule renders the compacted per-period schedule
	ShowSchedule = "schedule"

	// ShowSummary renders only the result summary
	ShowSummary = "summary"
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
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultServiceName is the service name reported to tracing backends
	DefaultServiceName = "mortgage-ledger"
)

// Snapshot constants
const (
	// SnapshotVersion is the literal version tag written to exported snapshots
	SnapshotVersion = "1.0"

	// SnapshotFilePrefix prefixes the suggested export file name
	SnapshotFilePrefix = "morty-analysis-"
)
