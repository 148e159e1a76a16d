package cli

import (
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/blimu-dev/contract-gen/pkg/config"
)

// Overrides holds generate flags that were set explicitly; nil means unchanged.
type Overrides struct {
	Spec         *string
	OutDir       *string
	TypesFile    *string
	SchemasFile  *string
	Dialect      *string
	IncludeTags  []string
	ExcludeTags  []string
	NoRouteTypes *bool
}

// overridesFromFlags collects only the flags the user actually changed.
func overridesFromFlags(flags *pflag.FlagSet) Overrides {
	var o Overrides
	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetString(name)
		if err != nil {
			return nil
		}
		return &v
	}
	o.Spec = str("input")
	o.OutDir = str("out")
	o.TypesFile = str("types-file")
	o.SchemasFile = str("schemas-file")
	o.Dialect = str("dialect")
	if flags.Changed("include-tags") {
		o.IncludeTags, _ = flags.GetStringArray("include-tags")
	}
	if flags.Changed("exclude-tags") {
		o.ExcludeTags, _ = flags.GetStringArray("exclude-tags")
	}
	if flags.Changed("no-route-types") {
		v, _ := flags.GetBool("no-route-types")
		o.NoRouteTypes = &v
	}
	return o
}

// Apply writes the overrides onto a loaded configuration.
func (o Overrides) Apply(cfg *config.Config) {
	if o.Spec != nil {
		cfg.Spec = *o.Spec
		if !config.IsURL(cfg.Spec) {
			cfg.Spec = absPath(cfg.Spec)
		}
	}
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if o.OutDir != nil {
			t.OutDir = absPath(*o.OutDir)
		}
		switch t.Type {
		case config.TypeTypeScriptTypes:
			if o.TypesFile != nil {
				t.FileName = *o.TypesFile
			}
			if o.IncludeTags != nil {
				t.IncludeTags = o.IncludeTags
			}
			if o.ExcludeTags != nil {
				t.ExcludeTags = o.ExcludeTags
			}
			if o.NoRouteTypes != nil {
				routes := !*o.NoRouteTypes
				t.GenerateRouteTypes = &routes
			}
		case config.TypeAPIGatewaySchemas:
			if o.SchemasFile != nil {
				t.FileName = *o.SchemasFile
			}
			if o.Dialect != nil {
				t.Dialect = *o.Dialect
			}
		}
	}
}

// utility
func absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
