package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Generator type identifiers understood by the default registry.
const (
	TypeTypeScriptTypes   = "typescript-types"
	TypeAPIGatewaySchemas = "apigateway-schemas"
)

// Default artifact names, matching the files the downstream packages import.
const (
	DefaultTypesFileName   = "contract-first-api-types.ts"
	DefaultSchemasFileName = "contract-first-json-schema-types.ts"
	DefaultClientFileName  = "Api.ts"
	DefaultDialect         = "aws-cdk"
)

// Config represents the complete configuration for a generation run
type Config struct {
	Spec    string   `yaml:"spec"`
	Name    string   `yaml:"name,omitempty"`
	Strict  bool     `yaml:"strict,omitempty"`
	Targets []Target `yaml:"targets"`
}

// Target represents configuration for a single emitted artifact
type Target struct {
	Type        string   `yaml:"type"`
	Name        string   `yaml:"name"`
	OutDir      string   `yaml:"outDir"`
	FileName    string   `yaml:"fileName,omitempty"`
	IncludeTags []string `yaml:"includeTags,omitempty"`
	ExcludeTags []string `yaml:"excludeTags,omitempty"`
	// GenerateClient must stay false; only types are emitted, never a client implementation.
	GenerateClient bool `yaml:"generateClient,omitempty"`
	// GenerateRouteTypes toggles per-route parameter/response namespaces. Defaults to true.
	GenerateRouteTypes *bool `yaml:"generateRouteTypes,omitempty"`
	// ModuleNameFirstTag groups routes by their first tag instead of the first path segment.
	ModuleNameFirstTag bool `yaml:"moduleNameFirstTag,omitempty"`
	// ClientFileName is removed from OutDir after the types are written.
	ClientFileName string `yaml:"clientFileName,omitempty"`
	// Dialect selects the symbolic vocabulary of the validation schemas.
	Dialect string `yaml:"dialect,omitempty"`
	// PreCommand is an optional command to run before generation starts.
	// Uses Docker Compose array format: ["npx", "prettier", "--write", "."]
	// The command will be executed in the output directory.
	PreCommand []string `yaml:"preCommand,omitempty"`
	// PostCommand is an optional command to run after generation completes.
	PostCommand []string `yaml:"postCommand,omitempty"`
	// Check fails instead of writing when the artifact would change. Set from the CLI only.
	Check bool `yaml:"-"`
}

// RouteTypes reports whether route namespaces should be emitted.
func (t *Target) RouteTypes() bool {
	if t.GenerateRouteTypes == nil {
		return true
	}
	return *t.GenerateRouteTypes
}

// GetPreCommand returns the pre-generation command to execute.
func (t *Target) GetPreCommand() []string {
	return t.PreCommand
}

// GetPostCommand returns the post-generation command to execute.
func (t *Target) GetPostCommand() []string {
	return t.PostCommand
}

// OutputPath returns the absolute path of the artifact written by this target.
func (t *Target) OutputPath() string {
	return filepath.Join(t.OutDir, t.FileName)
}

// Default returns the two-target configuration: route/shape types and
// API Gateway validation schemas, both written to outDir.
func Default(spec, outDir string) *Config {
	cfg := &Config{
		Spec: spec,
		Targets: []Target{
			{Type: TypeTypeScriptTypes, Name: "types", OutDir: outDir},
			{Type: TypeAPIGatewaySchemas, Name: "schemas", OutDir: outDir},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// Relative paths in the file are relative to the file itself.
	base := filepath.Dir(path)
	for i := range cfg.Targets {
		c := &cfg.Targets[i]
		if !filepath.IsAbs(c.OutDir) {
			c.OutDir = absPath(filepath.Join(base, c.OutDir))
		}
	}
	// Do not absolutize when spec is an HTTP(S) URL
	if !IsURL(cfg.Spec) && !filepath.IsAbs(cfg.Spec) {
		cfg.Spec = absPath(filepath.Join(base, cfg.Spec))
	}
	return &cfg, nil
}

// Marshal renders the configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate checks required fields and unsupported options.
func (c *Config) Validate() error {
	if c.Spec == "" {
		return errors.New("config.spec is required")
	}
	if len(c.Targets) == 0 {
		return errors.New("config.targets must list at least one target")
	}
	seen := map[string]bool{}
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.Type == "" || t.OutDir == "" || t.Name == "" {
			return fmt.Errorf("targets[%d] missing required fields (type, outDir, name)", i)
		}
		if seen[t.Name] {
			return fmt.Errorf("targets[%d] duplicate name %q", i, t.Name)
		}
		seen[t.Name] = true
		if t.GenerateClient {
			return fmt.Errorf("targets[%d] generateClient is not supported: only types are generated", i)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.Name == "" {
			t.Name = t.Type
		}
		switch t.Type {
		case TypeTypeScriptTypes:
			if t.FileName == "" {
				t.FileName = DefaultTypesFileName
			}
			if t.ClientFileName == "" {
				t.ClientFileName = DefaultClientFileName
			}
		case TypeAPIGatewaySchemas:
			if t.FileName == "" {
				t.FileName = DefaultSchemasFileName
			}
			if t.Dialect == "" {
				t.Dialect = DefaultDialect
			}
		}
	}
}

// IsURL reports whether input looks like an http(s) URL rather than a file path.
func IsURL(input string) bool {
	u, err := url.Parse(input)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
