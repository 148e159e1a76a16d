package generator

import (
	"context"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/openapi"
)

// ContractOptions contains options for the convenience GenerateContracts function
type ContractOptions struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// SingleTarget generates only the named target from config (optional)
	SingleTarget string

	// Fallback options when no config file is provided
	Spec            string   // OpenAPI document path or URL
	OutDir          string   // Output directory for both artifacts
	TypesFileName   string   // Overrides contract-first-api-types.ts
	SchemasFileName string   // Overrides contract-first-json-schema-types.ts
	Dialect         string   // Validation schema dialect (aws-cdk, aws-cdk-v1)
	IncludeTags     []string // Regex patterns for tags to include
	ExcludeTags     []string // Regex patterns for tags to exclude
	Strict          bool     // Abort when the document fails validation
}

// GenerateContracts is a convenience function for generating both artifacts with minimal configuration
func GenerateContracts(ctx context.Context, opts ContractOptions) error {
	service := NewService(WithStrict(opts.Strict))
	return service.Generate(ctx, GenerateOptions{
		ConfigPath:   opts.ConfigPath,
		SingleTarget: opts.SingleTarget,
		Fallback: FallbackOptions{
			Spec:            opts.Spec,
			OutDir:          opts.OutDir,
			TypesFileName:   opts.TypesFileName,
			SchemasFileName: opts.SchemasFileName,
			Dialect:         opts.Dialect,
			IncludeTags:     opts.IncludeTags,
			ExcludeTags:     opts.ExcludeTags,
		},
	})
}

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(ctx context.Context, configPath string, singleTarget ...string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	onlyTarget := ""
	if len(singleTarget) > 0 {
		onlyTarget = singleTarget[0]
	}
	return NewService().GenerateFromConfig(ctx, cfg, onlyTarget)
}

// ValidateSpec loads and validates an OpenAPI document
func ValidateSpec(ctx context.Context, specPath string) error {
	return openapi.ValidateDocument(ctx, specPath)
}
