// Package cli implements the contract-gen command line.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/logging"
)

// Execute runs the root command with the process arguments.
func Execute(settings config.Settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd(settings).ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. settings supplies env-derived defaults.
func NewRootCmd(settings config.Settings) *cobra.Command {
	root := &cobra.Command{
		Use:           "contract-gen",
		Short:         "Generate TypeScript contract types and API Gateway validation schemas from OpenAPI documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&settings.LogFormat, "log-format", settings.LogFormat, "Log format (text, json)")
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return newUsageError(err, c.UsageString())
	})

	root.AddCommand(newGenerateCmd(&settings))
	root.AddCommand(newValidateCmd())
	root.AddCommand(newInitCmd())
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return newUsageError(errors.New("unexpected arguments: "+args[0]), cmd.UsageString())
	}
	return nil
}

func newGenerateCmd(settings *config.Settings) *cobra.Command {
	var p RunGenerateParams
	var noRouteTypes bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the contract types and validation schemas",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.ConfigPath == "" {
				p.ConfigPath = settings.ConfigPath
			}
			p.Strict = p.Strict || settings.Strict
			p.Fallback.NoRouteTypes = noRouteTypes
			p.Overrides = overridesFromFlags(cmd.Flags())

			logger := logging.New(cmd.ErrOrStderr(), settings.LogLevel, settings.LogFormat)
			err := RunGenerate(cmd.Context(), p, logger)
			var ue *usageError
			if errors.As(err, &ue) && ue.usage == "" {
				ue.usage = cmd.UsageString()
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&p.ConfigPath, "config", "c", "", "Path to contract-gen.yaml config")
	f.StringVar(&p.Target, "target", "", "Generate only the named target from config")
	f.BoolVar(&p.Strict, "strict", false, "Abort when the document fails validation")
	f.BoolVar(&p.Check, "check", false, "Fail if any artifact is out of date instead of writing it")
	// Fallback flags, also applied as overrides on a config file
	f.StringVar(&p.Fallback.Spec, "input", "", "OpenAPI document file (yaml/json) or URL")
	f.StringVar(&p.Fallback.OutDir, "out", "", "Output directory")
	f.StringVar(&p.Fallback.TypesFileName, "types-file", "", "Types artifact file name (default "+config.DefaultTypesFileName+")")
	f.StringVar(&p.Fallback.SchemasFileName, "schemas-file", "", "Validation schemas file name (default "+config.DefaultSchemasFileName+")")
	f.StringVar(&p.Fallback.Dialect, "dialect", "", "Validation schema dialect (aws-cdk, aws-cdk-v1)")
	f.StringArrayVar(&p.Fallback.IncludeTags, "include-tags", nil, "Regex patterns for tags to include")
	f.StringArrayVar(&p.Fallback.ExcludeTags, "exclude-tags", nil, "Regex patterns for tags to exclude")
	f.BoolVar(&noRouteTypes, "no-route-types", false, "Skip per-route request/response namespaces")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI document",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return newUsageError(errors.New("--input is required"), cmd.UsageString())
			}
			return RunValidate(cmd.Context(), input, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI document file (yaml/json) or URL")
	return cmd
}

func newInitCmd() *cobra.Command {
	var path, spec, outDir string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default contract-gen.yaml",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunInit(path, spec, outDir, force, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "contract-gen.yaml", "Path of the config file to write")
	cmd.Flags().StringVar(&spec, "input", "./openapi.yaml", "OpenAPI document referenced by the config")
	cmd.Flags().StringVar(&outDir, "out", "./lib", "Output directory referenced by the config")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
