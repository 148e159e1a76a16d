// Package contractgen generates contract-first TypeScript artifacts from OpenAPI
// documents: route and shape types for application code, and API Gateway request
// validation schemas for infrastructure code.
//
// Quick Start:
//
//	import "github.com/blimu-dev/contract-gen"
//
//	err := contractgen.GenerateContracts(ctx, contractgen.ContractOptions{
//		Spec:   "./openapi.yaml",
//		OutDir: "./lib",
//	})
//
// For more control, see the generator package.
package contractgen

import (
	"context"

	"github.com/blimu-dev/contract-gen/pkg/generator"
)

// ContractOptions contains options for contract generation
type ContractOptions = generator.ContractOptions

// GenerateContracts writes contract-first-api-types.ts and
// contract-first-json-schema-types.ts (or the targets of ConfigPath).
//
// Example:
//
//	err := contractgen.GenerateContracts(ctx, contractgen.ContractOptions{
//		Spec:        "https://example.com/openapi.json",
//		OutDir:      "./lib",
//		Dialect:     "aws-cdk-v1",
//		ExcludeTags: []string{"internal"},
//	})
func GenerateContracts(ctx context.Context, opts ContractOptions) error {
	return generator.GenerateContracts(ctx, opts)
}

// GenerateFromConfig generates every target of a YAML configuration file.
// Optionally, you can specify a single target name to generate only that target.
//
// Example:
//
//	// Generate all targets
//	err := contractgen.GenerateFromConfig(ctx, "./contract-gen.yaml")
//
//	// Generate only the validation schemas
//	err := contractgen.GenerateFromConfig(ctx, "./contract-gen.yaml", "schemas")
func GenerateFromConfig(ctx context.Context, configPath string, singleTarget ...string) error {
	return generator.GenerateFromConfig(ctx, configPath, singleTarget...)
}

// ValidateSpec loads and validates an OpenAPI document.
//
// Example:
//
//	if err := contractgen.ValidateSpec(ctx, "./openapi.yaml"); err != nil {
//		log.Fatalf("Invalid OpenAPI document: %v", err)
//	}
func ValidateSpec(ctx context.Context, specPath string) error {
	return generator.ValidateSpec(ctx, specPath)
}
