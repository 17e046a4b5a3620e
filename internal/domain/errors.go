package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBatch rejects a batch with no requests.
	ErrEmptyBatch = errors.New("batch requests required")

	// ErrUnknownRequestType marks a batch item whose type has no analyzer.
	ErrUnknownRequestType = errors.New("unknown request type")
)

// DataFormatError reports a field that could not be parsed.
type DataFormatError struct {
	Field string
	Value string
	Err   error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// ValidationError rejects a request before any backend is invoked.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a caller error rather than an internal one.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrEmptyBatch)
}
