// Package jsonschema derives standalone JSON Schema (draft 4) documents from the
// component schemas of an OpenAPI document.
//
// The pipeline works on a generic tree (map[string]any, numbers as json.Number)
// shaped {"components":{"schemas":{...}}} so that internal references keep
// resolving. Each step walks schema positions only: a property that happens to
// be called "example" or an enum value "object" is data and is left alone.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// Tree is the generic document the pipeline transforms.
type Tree = map[string]any

// FromComponents serializes doc.components.schemas into a fresh Tree. The
// document itself is not modified.
func FromComponents(doc *openapi3.T) (Tree, error) {
	schemas := map[string]any{}
	if doc != nil && doc.Components != nil && len(doc.Components.Schemas) > 0 {
		raw, err := json.Marshal(doc.Components.Schemas)
		if err != nil {
			return nil, fmt.Errorf("marshal component schemas: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&schemas); err != nil {
			return nil, fmt.Errorf("decode component schemas: %w", err)
		}
	}
	return Tree{"components": map[string]any{"schemas": schemas}}, nil
}

// Schemas returns the components.schemas map of tree, or nil.
func Schemas(tree Tree) map[string]any {
	components, _ := tree["components"].(map[string]any)
	schemas, _ := components["schemas"].(map[string]any)
	return schemas
}

// SchemaNames returns the component schema names in sorted order.
func SchemaNames(tree Tree) []string {
	schemas := Schemas(tree)
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keywords whose values are schemas, by shape.
var (
	schemaMapKeywords  = []string{"properties", "patternProperties", "definitions", "$defs", "dependentSchemas"}
	schemaKeywords     = []string{"additionalProperties", "additionalItems", "items", "not", "contains", "propertyNames", "if", "then", "else", "unevaluatedItems", "unevaluatedProperties"}
	schemaListKeywords = []string{"allOf", "anyOf", "oneOf", "prefixItems", "items"}
)

// IsSchemaMapKeyword reports whether key holds a name -> schema map.
func IsSchemaMapKeyword(key string) bool { return contains(schemaMapKeywords, key) }

// IsSchemaKeyword reports whether key may hold a single schema.
func IsSchemaKeyword(key string) bool { return contains(schemaKeywords, key) }

// IsSchemaListKeyword reports whether key may hold a list of schemas.
func IsSchemaListKeyword(key string) bool { return contains(schemaListKeywords, key) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// childSchemas lists the direct sub-schemas of node.
func childSchemas(node map[string]any) []map[string]any {
	var out []map[string]any
	for _, key := range schemaMapKeywords {
		if m, ok := node[key].(map[string]any); ok {
			for _, name := range sortedKeys(m) {
				if child, ok := m[name].(map[string]any); ok {
					out = append(out, child)
				}
			}
		}
	}
	for _, key := range schemaKeywords {
		if child, ok := node[key].(map[string]any); ok {
			out = append(out, child)
		}
	}
	for _, key := range schemaListKeywords {
		if list, ok := node[key].([]any); ok {
			for _, v := range list {
				if child, ok := v.(map[string]any); ok {
					out = append(out, child)
				}
			}
		}
	}
	return out
}

// eachSchema calls fn once for every schema node reachable from the component
// schemas. fn may edit the node's own keywords; children are collected after fn returns.
func eachSchema(tree Tree, fn func(node map[string]any)) {
	schemas := Schemas(tree)
	names := sortedKeys(schemas)
	stack := make([]map[string]any, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		if m, ok := schemas[names[i]].(map[string]any); ok {
			stack = append(stack, m)
		}
	}

	seen := map[uintptr]struct{}{}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := reflect.ValueOf(node).Pointer()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		fn(node)
		children := childSchemas(node)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
