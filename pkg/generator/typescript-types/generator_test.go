package typescripttypes

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/ir"
)

func widgetIR() ir.IR {
	str := ir.IRSchema{Kind: ir.IRKindString}
	date := ir.IRSchema{Kind: ir.IRKindString, Format: "date"}
	ref := ir.IRSchema{Kind: ir.IRKindRef, Ref: "Widget"}
	return ir.IR{
		Title:   "Widget API",
		Version: "1.2.0",
		ModelDefs: []ir.IRModelDef{
			{
				Name:        "Status",
				Schema:      ir.IRSchema{Kind: ir.IRKindEnum, EnumValues: []string{"active", "retired"}, EnumRaw: []any{"active", "retired"}, EnumBase: ir.IRKindString},
				Annotations: ir.IRAnnotations{Description: "Lifecycle state"},
			},
			{
				Name: "Widget",
				Schema: ir.IRSchema{Kind: ir.IRKindObject, Properties: []ir.IRField{
					{Name: "created", Type: &date},
					{Name: "id", Type: &str, Required: true},
				}},
			},
		},
		Modules: []ir.IRModule{{
			Name: "widgets",
			Operations: []ir.IROperation{{
				OperationID:  "getWidget",
				RouteName:    "GetWidget",
				Method:       "GET",
				Path:         "/widgets/{id}",
				OriginalTags: []string{"widgets"},
				PathParams:   []ir.IRParam{{Name: "id", Required: true, Schema: str}},
				Response:     ir.IRResponse{Status: "200", Schema: ref},
			}},
		}},
	}
}

const wantWidgetTypes = `
export interface Widget {
  /** @format date */
  created?: string;
  id: string;
}

export namespace Widgets {
  /**
   * No description
   * @tags widgets
   * @name GetWidget
   * @request GET:/widgets/{id}
   */
  export namespace GetWidget {
    export type RequestParams = {
      id: string;
    };
    export type RequestQuery = {};
    export type RequestBody = never;
    export type RequestHeaders = {};
    export type ResponseBody = Widget;
  }
}
`

func TestRender_Widget(t *testing.T) {
	out, err := Render(widgetIR(), true)
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "/* eslint-disable */"))
	assert.Contains(t, text, "This is a generated file at build time, do not edit it manually")
	assert.Contains(t, text, "Source: Widget API 1.2.0")
	assert.Contains(t, text, "/** Lifecycle state */\nexport type Status = \"active\" | \"retired\";\n")
	assert.True(t, strings.HasSuffix(text, wantWidgetTypes), "got:\n%s", text)
	assert.NotContains(t, text, "fetch(")
	assert.NotContains(t, text, "class ")
}

func TestRender_WithoutRouteTypes(t *testing.T) {
	out, err := Render(widgetIR(), false)
	require.NoError(t, err)
	assert.Contains(t, string(out), "export interface Widget {")
	assert.NotContains(t, string(out), "namespace")
}

func TestRender_IsDeterministic(t *testing.T) {
	a, err := Render(widgetIR(), true)
	require.NoError(t, err)
	b, err := Render(widgetIR(), true)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_WritesTypesAndRemovesClient(t *testing.T) {
	dir := t.TempDir()
	client := filepath.Join(dir, config.DefaultClientFileName)
	require.NoError(t, os.WriteFile(client, []byte("export class Api {}"), 0o644))

	target := config.Target{
		Type:           config.TypeTypeScriptTypes,
		Name:           "types",
		OutDir:         dir,
		FileName:       config.DefaultTypesFileName,
		ClientFileName: config.DefaultClientFileName,
	}
	res, err := NewTypeScriptTypesGenerator().Generate(context.Background(), target, nil, widgetIR())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, config.DefaultTypesFileName)}, res.Written)
	assert.Equal(t, []string{client}, res.Removed)

	_, err = os.Stat(client)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, config.DefaultTypesFileName, entries[0].Name())

	// A second run changes nothing.
	res, err = NewTypeScriptTypesGenerator().Generate(context.Background(), target, nil, widgetIR())
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Len(t, res.Unchanged, 1)
}

func TestGenerate_RejectsClientGeneration(t *testing.T) {
	target := config.Target{OutDir: t.TempDir(), FileName: "x.ts", GenerateClient: true}
	_, err := NewTypeScriptTypesGenerator().Generate(context.Background(), target, nil, widgetIR())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generateClient")
}

func TestSchemaToTSType(t *testing.T) {
	str := &ir.IRSchema{Kind: ir.IRKindString}
	num := &ir.IRSchema{Kind: ir.IRKindNumber}
	tests := []struct {
		name string
		in   ir.IRSchema
		want string
	}{
		{"nullable string", ir.IRSchema{Kind: ir.IRKindString, Nullable: true}, "string | null"},
		{"binary", ir.IRSchema{Kind: ir.IRKindString, Format: "binary"}, "File"},
		{"integer", ir.IRSchema{Kind: ir.IRKindInteger}, "number"},
		{"array of union", ir.IRSchema{Kind: ir.IRKindArray, Items: &ir.IRSchema{Kind: ir.IRKindOneOf, OneOf: []*ir.IRSchema{str, num}}}, "(string | number)[]"},
		{"allOf", ir.IRSchema{Kind: ir.IRKindAllOf, AllOf: []*ir.IRSchema{{Kind: ir.IRKindRef, Ref: "Base"}, {Kind: ir.IRKindRef, Ref: "Extra"}}}, "Base & Extra"},
		{"map", ir.IRSchema{Kind: ir.IRKindObject, AdditionalProperties: num}, "Record<string, number>"},
		{"empty object", ir.IRSchema{Kind: ir.IRKindObject}, "Record<string, any>"},
		{"inline object", ir.IRSchema{Kind: ir.IRKindObject, Properties: []ir.IRField{{Name: "created-at", Type: str, Required: true}, {Name: "n", Type: num}}}, `{ "created-at": string; n?: number }`},
		{"numeric enum", ir.IRSchema{Kind: ir.IRKindEnum, EnumValues: []string{"1", "2"}, EnumRaw: []any{1.0, 2.0}, EnumBase: ir.IRKindInteger}, "1 | 2"},
		{"object enum value", ir.IRSchema{Kind: ir.IRKindEnum, EnumValues: []string{"object"}, EnumRaw: []any{"object"}, EnumBase: ir.IRKindString}, `"object"`},
		{"sanitized ref", ir.IRSchema{Kind: ir.IRKindRef, Ref: "product-list"}, "ProductList"},
		{"unknown", ir.IRSchema{Kind: ir.IRKindUnknown}, "any"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, typeMapper{}.tsType(tt.in))
		})
	}
}

func TestRouteDoc_EscapesCommentTerminators(t *testing.T) {
	op := ir.IROperation{RouteName: "X", Method: "GET", Path: "/x", Description: "ends */ early", Deprecated: true}
	lines := routeDoc(op)
	assert.Equal(t, "ends *\\/ early", lines[0])
	assert.Contains(t, lines, "@deprecated")
}

func TestRender_CollidingNamesStayDistinct(t *testing.T) {
	in := ir.IR{
		Title:   "Catalog",
		Version: "1",
		ModelDefs: []ir.IRModelDef{
			{Name: "Catalog", TypeName: "Catalog", Schema: ir.IRSchema{Kind: ir.IRKindObject, Properties: []ir.IRField{
				{Name: "items", Type: &ir.IRSchema{Kind: ir.IRKindRef, Ref: "product-list"}, Required: true},
				{Name: "total", Type: &ir.IRSchema{Kind: ir.IRKindRef, Ref: "ProductList"}, Required: true},
			}}},
			{Name: "ProductList", TypeName: "ProductList", Schema: ir.IRSchema{Kind: ir.IRKindInteger}},
			{Name: "product-list", TypeName: "ProductList2", Schema: ir.IRSchema{Kind: ir.IRKindString}},
		},
		Modules: []ir.IRModule{
			{Name: "Products", Namespace: "Products", Operations: []ir.IROperation{
				{RouteName: "List", Method: "GET", Path: "/Products", Response: ir.IRResponse{Status: "200", Schema: ir.IRSchema{Kind: ir.IRKindRef, Ref: "product-list"}}},
			}},
			{Name: "products", Namespace: "Products2", Operations: []ir.IROperation{
				{RouteName: "List", Method: "GET", Path: "/products", Response: ir.IRResponse{Status: "200", Void: true}},
			}},
		},
	}

	out, err := Render(in, true)
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "export type ProductList = number;\n")
	assert.Contains(t, text, "export type ProductList2 = string;\n")
	assert.Equal(t, 1, strings.Count(text, "export type ProductList = "))
	assert.Contains(t, text, "  items: ProductList2;\n")
	assert.Contains(t, text, "  total: ProductList;\n")
	assert.Contains(t, text, "export namespace Products {\n")
	assert.Contains(t, text, "export namespace Products2 {\n")
	assert.Contains(t, text, "export type ResponseBody = ProductList2;")
}

func TestTypeMapper_UnknownRefFallsBackToIdentifier(t *testing.T) {
	m := newTypeMapper([]ir.IRModelDef{{Name: "a-b", TypeName: "AB2"}})
	assert.Equal(t, "AB2", m.tsType(ir.IRSchema{Kind: ir.IRKindRef, Ref: "a-b"}))
	assert.Equal(t, "CD", m.tsType(ir.IRSchema{Kind: ir.IRKindRef, Ref: "c-d"}))
}
