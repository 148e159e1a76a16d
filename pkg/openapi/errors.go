package openapi

import "fmt"

// ErrorCode classifies loader failures.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is returned by Load when the document cannot be read, parsed, or converted.
type SpecError struct {
	Code     ErrorCode
	Message  string
	Location string
	Cause    error
}

func (e *SpecError) Error() string {
	if e.Location != "" && e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Location, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *SpecError) Unwrap() error { return e.Cause }
