package errs

import (
	"fmt"
	"time"
)

// ExternalAPIError reports that an upstream data provider failed: retries
// were exhausted, or the provider returned nothing usable.
type ExternalAPIError struct {
	API     string
	Message string
	Err     error
}

func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.API, e.Message)
}

func (e *ExternalAPIError) Unwrap() error { return e.Err }

// RateLimitError is an ExternalAPIError raised when the provider signals
// quota exhaustion. RetryAfter is a hint, not a guarantee.
type RateLimitError struct {
	ExternalAPIError
	RetryAfter time.Duration
}

func NewRateLimitError(api string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		ExternalAPIError: ExternalAPIError{
			API:     api,
			Message: fmt.Sprintf("rate limit exceeded, retry after %s", retryAfter),
		},
		RetryAfter: retryAfter,
	}
}

// DataValidationError reports malformed data crossing a persistence
// boundary, e.g. a scorer returning the wrong number of scores.
type DataValidationError struct {
	Field   string
	Message string
}

func (e *DataValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}
	return "validation error: " + e.Message
}

// AssetNotFoundError reports a symbol that is not in the tracked universe.
type AssetNotFoundError struct {
	Symbol string
}

func (e *AssetNotFoundError) Error() string {
	return "asset not found: " + e.Symbol
}

// ModelNotLoadedError reports that a scoring backend failed its startup
// probe and is unavailable.
type ModelNotLoadedError struct {
	Model string
	Err   error
}

func (e *ModelNotLoadedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model not loaded: %s: %v", e.Model, e.Err)
	}
	return "model not loaded: " + e.Model
}

func (e *ModelNotLoadedError) Unwrap() error { return e.Err }
