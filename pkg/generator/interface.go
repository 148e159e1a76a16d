package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/emit"
	"github.com/blimu-dev/contract-gen/pkg/generator/apigateway"
	typescripttypes "github.com/blimu-dev/contract-gen/pkg/generator/typescript-types"
	"github.com/blimu-dev/contract-gen/pkg/ir"
	"github.com/blimu-dev/contract-gen/pkg/logging"
	"github.com/blimu-dev/contract-gen/pkg/openapi"
)

// Generator defines the interface for artifact generators
type Generator interface {
	// Generate emits the target's artifact from the loaded document and its IR
	Generate(ctx context.Context, target config.Target, doc *openapi3.T, model ir.IR) (*emit.Result, error)
	// GetType returns the type identifier for this generator (e.g., "typescript-types")
	GetType() string
}

// Registry manages available generators
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator to the registry
func (r *Registry) Register(gen Generator) {
	r.generators[gen.GetType()] = gen
}

// Get retrieves a generator by type
func (r *Registry) Get(genType string) (Generator, bool) {
	gen, exists := r.generators[genType]
	return gen, exists
}

// GetAvailableTypes returns all registered generator types, sorted
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultRegistry returns a registry holding the types and validation schema generators.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(typescripttypes.NewTypeScriptTypesGenerator())
	registry.Register(apigateway.NewGenerator())
	return registry
}

// GenerateOptions contains options for a generation run
type GenerateOptions struct {
	ConfigPath   string
	SingleTarget string
	Check        bool
	Fallback     FallbackOptions
}

// FallbackOptions builds the default two-target configuration when no config file is provided
type FallbackOptions struct {
	Spec            string
	OutDir          string
	TypesFileName   string
	SchemasFileName string
	Dialect         string
	IncludeTags     []string
	ExcludeTags     []string
	NoRouteTypes    bool
}

// Config turns the fallback options into a configuration.
func (f FallbackOptions) Config() (*config.Config, error) {
	if f.Spec == "" || f.OutDir == "" {
		return nil, fmt.Errorf("either config path or both spec and output directory must be provided")
	}
	cfg := config.Default(f.Spec, f.OutDir)
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		switch t.Type {
		case config.TypeTypeScriptTypes:
			if f.TypesFileName != "" {
				t.FileName = f.TypesFileName
			}
			t.IncludeTags = f.IncludeTags
			t.ExcludeTags = f.ExcludeTags
			if f.NoRouteTypes {
				off := false
				t.GenerateRouteTypes = &off
			}
		case config.TypeAPIGatewaySchemas:
			if f.SchemasFileName != "" {
				t.FileName = f.SchemasFileName
			}
			if f.Dialect != "" {
				t.Dialect = f.Dialect
			}
		}
	}
	return cfg, cfg.Validate()
}

// Service provides high-level generation functionality
type Service struct {
	registry *Registry
	logger   *slog.Logger
	strict   bool
	cmdOut   io.Writer
	cmdErr   io.Writer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for progress and validation warnings.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithStrict aborts the run when the document fails validation.
func WithStrict(strict bool) Option { return func(s *Service) { s.strict = strict } }

// WithRegistry replaces the default generators.
func WithRegistry(r *Registry) Option { return func(s *Service) { s.registry = r } }

// WithCommandOutput redirects the output of pre- and post-commands.
func WithCommandOutput(stdout, stderr io.Writer) Option {
	return func(s *Service) {
		s.cmdOut = stdout
		s.cmdErr = stderr
	}
}

// NewService creates a new generator service with default generators
func NewService(opts ...Option) *Service {
	s := &Service{
		registry: DefaultRegistry(),
		logger:   logging.Discard(),
		cmdOut:   os.Stdout,
		cmdErr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs generation from a config file, or from fallback options when no path is given
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) error {
	var cfg *config.Config
	var err error

	if opts.ConfigPath == "" {
		cfg, err = opts.Fallback.Config()
	} else {
		cfg, err = config.Load(opts.ConfigPath)
	}
	if err != nil {
		return err
	}
	if opts.Check {
		for i := range cfg.Targets {
			cfg.Targets[i].Check = true
		}
	}
	return s.GenerateFromConfig(ctx, cfg, opts.SingleTarget)
}

// GenerateFromConfig loads the document once and runs every target (or only
// onlyTarget). A failing target does not stop the others; all target failures
// are joined in the returned error.
func (s *Service) GenerateFromConfig(ctx context.Context, cfg *config.Config, onlyTarget string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if onlyTarget != "" && !hasTarget(cfg, onlyTarget) {
		return fmt.Errorf("target %q not found in configuration", onlyTarget)
	}

	doc, err := s.loadDocument(ctx, cfg)
	if err != nil {
		return err
	}

	var errs []error
	for _, target := range cfg.Targets {
		if onlyTarget != "" && target.Name != onlyTarget {
			continue
		}
		if err := s.runTarget(ctx, target, doc); err != nil {
			s.logger.Error("target failed", "target", target.Name, "error", err)
			errs = append(errs, fmt.Errorf("target %s: %w", target.Name, err))
		}
	}
	return errors.Join(errs...)
}

// loadDocument loads and validates the document and applies the validation policy.
func (s *Service) loadDocument(ctx context.Context, cfg *config.Config) (*openapi3.T, error) {
	s.logger.Debug("loading document", "stage", "load", "spec", cfg.Spec)
	doc, res, err := openapi.LoadAndValidate(ctx, cfg.Spec)
	if err != nil {
		return nil, fmt.Errorf("load spec: %w", err)
	}
	s.logger.Info("loaded document", "stage", "validate", "title", res.Title, "version", res.Version)
	if !res.Valid() {
		if s.strict || cfg.Strict {
			return nil, fmt.Errorf("validate spec: %w", res.Err)
		}
		s.logger.Warn("document failed validation, continuing", "stage", "validate", "error", res.Err)
	}
	return doc, nil
}

func (s *Service) runTarget(ctx context.Context, target config.Target, doc *openapi3.T) error {
	gen, exists := s.registry.Get(target.Type)
	if !exists {
		return fmt.Errorf("unsupported target type: %s (available: %s)", target.Type, strings.Join(s.registry.GetAvailableTypes(), ", "))
	}

	if !target.Check {
		// Ensure output directory exists before pre-commands
		if err := os.MkdirAll(target.OutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := s.executeCommand(ctx, target.GetPreCommand(), target.OutDir, "pre-command"); err != nil {
			return fmt.Errorf("pre-generation command failed: %w", err)
		}
	}

	model, err := FilterIR(BuildIR(doc, BuildOptions{ModuleNameFirstTag: target.ModuleNameFirstTag}), target)
	if err != nil {
		return err
	}

	res, err := gen.Generate(ctx, target, doc, model)
	if err != nil {
		return err
	}
	s.logResult(target, res)

	if !target.Check {
		if err := s.executeCommand(ctx, target.GetPostCommand(), target.OutDir, "post-command"); err != nil {
			return fmt.Errorf("post-generation command failed: %w", err)
		}
	}
	return nil
}

func (s *Service) logResult(target config.Target, res *emit.Result) {
	if res == nil {
		return
	}
	if res.Skipped {
		s.logger.Info("nothing to generate", "target", target.Name, "reason", res.Reason)
		return
	}
	for _, f := range res.Written {
		s.logger.Info("wrote artifact", "target", target.Name, "file", f)
	}
	for _, f := range res.Unchanged {
		s.logger.Debug("artifact unchanged", "target", target.Name, "file", f)
	}
	for _, f := range res.Removed {
		s.logger.Info("removed file", "target", target.Name, "file", f)
	}
}

// GetRegistry returns the generator registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// executeCommand executes a single command in Docker Compose array format
func (s *Service) executeCommand(ctx context.Context, command []string, workDir, commandLabel string) error {
	if len(command) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = s.cmdOut
	cmd.Stderr = s.cmdErr

	cmdDescription := strings.Join(command, " ")
	s.logger.Debug("running command", "stage", commandLabel, "command", cmdDescription)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", commandLabel, cmdDescription, err)
	}
	return nil
}

func hasTarget(cfg *config.Config, name string) bool {
	for _, t := range cfg.Targets {
		if t.Name == name {
			return true
		}
	}
	return false
}
