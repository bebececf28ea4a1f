package cli

import (
	"errors"

	"github.com/roach88/facet/internal/dataset"
	"github.com/roach88/facet/internal/metrics"
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeConfig        = "E002" // Invalid flags or configuration
	ErrCodeIndex         = "E003" // Input tree could not be indexed
	ErrCodePrepare       = "E004" // Output tree could not be created
	ErrCodeCorrupter     = "E005" // No usable corrupter
	ErrCodeRecordsFailed = "E006" // One or more records failed
	ErrCodeInterrupted   = "E007" // Run interrupted
	ErrCodeTable         = "E010" // Metric table unreadable
	ErrCodePrecondition  = "E011" // Metric table grouping precondition failed
	ErrCodeBand          = "E012" // Unknown severity band
	ErrCodePlot          = "E013" // Plot rendering failed
	ErrCodeLedger        = "E020" // Ledger database error
)

// codeFor classifies err into an error code, falling back to fallback.
func codeFor(err error, fallback string) string {
	switch {
	case dataset.IsConfigurationError(err):
		return ErrCodeConfig
	case metrics.IsPreconditionError(err):
		return ErrCodePrecondition
	case errors.Is(err, metrics.ErrUnknownBand):
		return ErrCodeBand
	default:
		return fallback
	}
}

// commandError reports err through the formatter and returns an ExitError
// with the command-error exit code.
func commandError(formatter *OutputFormatter, fallback string, err error) error {
	code := codeFor(err, fallback)
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

// failure reports message with details and returns an ExitError with the
// failure exit code wrapping err.
func failure(formatter *OutputFormatter, code, message string, details interface{}, err error) error {
	_ = formatter.Error(code, message, details)
	return WrapExitError(ExitFailure, message, err)
}
