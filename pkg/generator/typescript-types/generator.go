package typescripttypes

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/emit"
	"github.com/blimu-dev/contract-gen/pkg/ir"
	"github.com/blimu-dev/contract-gen/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

const templateName = "api-types.ts.gotmpl"

// TypeScriptTypesGenerator emits component shapes and per-route type namespaces.
// It never emits a client implementation.
type TypeScriptTypesGenerator struct{}

// NewTypeScriptTypesGenerator creates a new TypeScript types generator
func NewTypeScriptTypesGenerator() *TypeScriptTypesGenerator {
	return &TypeScriptTypesGenerator{}
}

// GetType returns the generator type identifier
func (g *TypeScriptTypesGenerator) GetType() string {
	return config.TypeTypeScriptTypes
}

// Generate writes the types artifact and removes the client file if one is present.
func (g *TypeScriptTypesGenerator) Generate(ctx context.Context, target config.Target, _ *openapi3.T, in ir.IR) (*emit.Result, error) {
	if target.GenerateClient {
		return nil, fmt.Errorf("generateClient is not supported by %s", g.GetType())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := Render(in, target.RouteTypes())
	if err != nil {
		return nil, err
	}

	res := &emit.Result{}
	opts := emit.WriteOptions{Check: target.Check}
	wrote, err := emit.WriteFile(target.OutputPath(), data, opts)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", target.OutputPath(), err)
	}
	res.Track(target.OutputPath(), wrote)

	if target.ClientFileName != "" && target.ClientFileName != target.FileName {
		client := filepath.Join(target.OutDir, target.ClientFileName)
		removed, err := emit.Remove(client, opts)
		if err != nil {
			return nil, err
		}
		if removed {
			res.Removed = append(res.Removed, client)
		}
	}
	return res, nil
}

// Render produces the types artifact for in.
func Render(in ir.IR, routeTypes bool) ([]byte, error) {
	types := newTypeMapper(in.ModelDefs)
	funcMap := template.FuncMap{
		"tsType": func(s *ir.IRSchema) string {
			if s == nil {
				return "any"
			}
			return types.tsType(*s)
		},
		"schemaType":    types.tsType,
		"typeName":      modelTypeName,
		"namespaceName": namespaceName,
		"quotePropName": utils.QuotePropName,
		"isInterface":   isInterface,
		"jsdoc":         jsdoc,
		"modelDoc":      modelDoc,
		"fieldDoc":      fieldDoc,
		"routeDoc":      routeDoc,
		"paramsType":    types.paramsType,
		"bodyType":      types.bodyType,
		"responseType":  types.responseType,
		"comment":       commentSafe,
	}
	// Merge sprig functions
	for k, v := range sprig.TxtFuncMap() {
		if _, taken := funcMap[k]; !taken {
			funcMap[k] = v
		}
	}

	tmplContent, err := templatesFS.ReadFile("templates/" + templateName)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", templateName, err)
	}
	tmpl, err := template.New(templateName).Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"IR":         in,
		"RouteTypes": routeTypes,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.Bytes(), nil
}
