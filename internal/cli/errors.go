package cli

import "errors"

// ErrUsage marks errors caused by invalid flags or arguments.
var ErrUsage = errors.New("usage error")

type usageError struct {
	err   error
	usage string
}

func (e *usageError) Error() string {
	if e.usage == "" {
		return e.err.Error()
	}
	return e.err.Error() + "\n\n" + e.usage
}

func (e *usageError) Unwrap() []error { return []error{ErrUsage, e.err} }

func newUsageError(err error, usage string) error {
	return &usageError{err: err, usage: usage}
}
