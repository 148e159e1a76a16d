package openapi

import (
	"context"
	"errors"

	"github.com/getkin/kin-openapi/openapi3"
)

// ValidationResult is the outcome of validating a loaded document. It carries the
// identity fields callers log and leaves the continue/abort decision to them.
type ValidationResult struct {
	Title          string
	Version        string
	OpenAPIVersion string
	Err            error
}

// Valid reports whether the document passed validation.
func (r ValidationResult) Valid() bool { return r.Err == nil }

// Validate checks doc against the OpenAPI structural rules.
func Validate(ctx context.Context, doc *openapi3.T) (res ValidationResult) {
	if doc == nil {
		res.Err = errors.New("document is nil")
		return res
	}
	res.OpenAPIVersion = doc.OpenAPI
	if doc.Info != nil {
		res.Title = doc.Info.Title
		res.Version = doc.Info.Version
	}
	defer func() {
		if r := recover(); r != nil {
			res.Err = errors.New("validation panicked on malformed document")
		}
	}()
	res.Err = doc.Validate(ctx)
	return res
}
