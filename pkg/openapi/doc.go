// Package openapi loads and validates interface description documents.
//
// Load accepts a file path or an http(s) URL holding OpenAPI 3.0/3.1 or
// Swagger 2.0 in YAML or JSON; Swagger input is converted to OpenAPI 3.
// Validate reports problems as a ValidationResult and leaves the decision to
// continue or abort to the caller.
package openapi
