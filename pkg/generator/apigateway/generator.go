// Package apigateway emits API Gateway request validation schemas, one
// constant per component schema, in an aws-cdk JsonSchema dialect.
package apigateway

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/emit"
	"github.com/blimu-dev/contract-gen/pkg/ir"
	"github.com/blimu-dev/contract-gen/pkg/jsonschema"
	"github.com/blimu-dev/contract-gen/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

const templateName = "schemas.ts.gotmpl"

// stripKeys are rejected by API Gateway model validation.
var stripKeys = []string{"example", "examples"}

// SchemaConst is one emitted constant.
type SchemaConst struct {
	Name      string
	ConstName string
	Literal   string
}

// Generator implements the apigateway-schemas target.
type Generator struct{}

// NewGenerator creates a new API Gateway schema generator
func NewGenerator() *Generator {
	return &Generator{}
}

// GetType returns the generator type identifier
func (g *Generator) GetType() string {
	return config.TypeAPIGatewaySchemas
}

// Generate writes the validation artifact. With no component schemas nothing is
// written and any existing artifact is left as is.
func (g *Generator) Generate(ctx context.Context, target config.Target, doc *openapi3.T, _ ir.IR) (*emit.Result, error) {
	dialect, err := LookupDialect(target.Dialect)
	if err != nil {
		return nil, err
	}
	consts, err := BuildSchemas(ctx, doc, dialect)
	if err != nil {
		return nil, err
	}
	if len(consts) == 0 {
		return (&emit.Result{}).Skip("document has no component schemas"), nil
	}

	data, err := Render(consts, dialect)
	if err != nil {
		return nil, err
	}
	res := &emit.Result{}
	wrote, err := emit.WriteFile(target.OutputPath(), data, emit.WriteOptions{Check: target.Check})
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", target.OutputPath(), err)
	}
	res.Track(target.OutputPath(), wrote)
	return res, nil
}

// BuildSchemas derives one constant per component schema of doc, sorted by name.
func BuildSchemas(ctx context.Context, doc *openapi3.T, dialect Dialect) ([]SchemaConst, error) {
	tree, err := jsonschema.FromComponents(doc)
	if err != nil {
		return nil, err
	}
	names := jsonschema.SchemaNames(tree)
	if len(names) == 0 {
		return nil, nil
	}

	jsonschema.Convert(tree)
	jsonschema.Strip(tree, stripKeys...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := jsonschema.Dereference(tree)
	if err != nil {
		return nil, fmt.Errorf("dereference: %w", err)
	}

	schemas := jsonschema.Schemas(resolved)
	used := utils.NameSet{}
	out := make([]SchemaConst, 0, len(names))
	for _, name := range names {
		node, ok := schemas[name].(map[string]any)
		if !ok {
			continue
		}
		node["title"] = name
		literal, err := SchemaLiteral(name, node, dialect)
		if err != nil {
			return nil, err
		}

		constName := used.Claim(utils.SafeIdentifier(name) + "Schema")
		out = append(out, SchemaConst{Name: name, ConstName: constName, Literal: literal})
	}
	return out, nil
}

// Render produces the validation artifact.
func Render(consts []SchemaConst, dialect Dialect) ([]byte, error) {
	tmplContent, err := templatesFS.ReadFile("templates/" + templateName)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", templateName, err)
	}
	tmpl, err := template.New(templateName).Funcs(sprig.TxtFuncMap()).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Dialect": dialect,
		"Schemas": consts,
	}); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.Bytes(), nil
}
