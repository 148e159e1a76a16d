package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/emit"
	"github.com/blimu-dev/contract-gen/pkg/generator"
	"github.com/blimu-dev/contract-gen/pkg/openapi"
)

// RunGenerateParams carries the resolved generate flags.
type RunGenerateParams struct {
	ConfigPath string
	Target     string
	Strict     bool
	Check      bool
	Overrides  Overrides
	Fallback   generator.FallbackOptions
}

// RunGenerate resolves the configuration and runs every selected target.
func RunGenerate(ctx context.Context, p RunGenerateParams, logger *slog.Logger) error {
	cfg, err := resolveConfig(p)
	if err != nil {
		return err
	}
	if p.Check {
		for i := range cfg.Targets {
			cfg.Targets[i].Check = true
		}
	}

	svc := generator.NewService(
		generator.WithLogger(logger),
		generator.WithStrict(p.Strict),
	)
	if err := svc.GenerateFromConfig(ctx, cfg, p.Target); err != nil {
		return err
	}
	if p.Check {
		logger.Info("artifacts are up to date")
	}
	return nil
}

func resolveConfig(p RunGenerateParams) (*config.Config, error) {
	if p.ConfigPath == "" {
		f := p.Fallback
		if f.Spec == "" || f.OutDir == "" {
			return nil, newUsageError(errors.New("either --config or both --input and --out must be provided"), "")
		}
		f.OutDir = absPath(f.OutDir)
		return f.Config()
	}
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	p.Overrides.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunValidate loads and validates input and reports the outcome on out.
func RunValidate(ctx context.Context, input string, out io.Writer) error {
	_, res, err := openapi.LoadAndValidate(ctx, input)
	if err != nil {
		return err
	}
	if !res.Valid() {
		return fmt.Errorf("validate %s: %w", input, res.Err)
	}
	fmt.Fprintf(out, "%s %s: valid (openapi %s)\n", res.Title, res.Version, res.OpenAPIVersion)
	return nil
}

// RunInit writes a default configuration file for spec and outDir.
func RunInit(path, spec, outDir string, force bool, out io.Writer) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	data, err := config.Marshal(config.Default(spec, outDir))
	if err != nil {
		return err
	}
	if _, err := emit.WriteFile(path, data, emit.WriteOptions{}); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
