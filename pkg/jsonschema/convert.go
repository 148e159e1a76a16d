package jsonschema

import (
	"encoding/json"
	"strings"
)

// Keywords that exist only in OpenAPI and have no JSON Schema meaning.
var openAPIOnlyKeywords = []string{"discriminator", "readOnly", "writeOnly", "xml", "externalDocs", "deprecated"}

var formatBounds = map[string][2]json.Number{
	"int32": {"-2147483648", "2147483647"},
	"int64": {"-9223372036854775808", "9223372036854775807"},
}

const bytePattern = `^[\w\d+\/=]*$`

// Convert rewrites every schema node of tree from OpenAPI schema objects to JSON
// Schema draft 4 in place.
func Convert(tree Tree) {
	eachSchema(tree, convertNode)
}

func convertNode(node map[string]any) {
	if nullable, ok := node["nullable"].(bool); ok {
		delete(node, "nullable")
		if nullable {
			addNullType(node)
		}
	}

	for _, key := range openAPIOnlyKeywords {
		delete(node, key)
	}
	for key := range node {
		if strings.HasPrefix(key, "x-") {
			delete(node, key)
		}
	}

	if c, ok := node["const"]; ok {
		if _, hasEnum := node["enum"]; !hasEnum {
			node["enum"] = []any{c}
		}
		delete(node, "const")
	}

	if format, ok := node["format"].(string); ok {
		if bounds, ok := formatBounds[format]; ok {
			if _, set := node["minimum"]; !set {
				node["minimum"] = bounds[0]
			}
			if _, set := node["maximum"]; !set {
				node["maximum"] = bounds[1]
			}
		}
		if format == "byte" {
			if _, set := node["pattern"]; !set {
				node["pattern"] = bytePattern
			}
		}
	}
}

// addNullType folds null into the node's type and enum.
func addNullType(node map[string]any) {
	switch t := node["type"].(type) {
	case string:
		if t != "null" {
			node["type"] = []any{t, "null"}
		}
	case []any:
		if !containsValue(t, "null") {
			node["type"] = append(t, "null")
		}
	}
	if enum, ok := node["enum"].([]any); ok && !containsValue(enum, nil) {
		node["enum"] = append(enum, nil)
	}
}

func containsValue(list []any, v any) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Strip removes keys from every schema node of tree in place. It is not a blind
// removal from every nested object: only schema positions are visited, so a
// matching key inside a data value (default: {example: 1}, an enum or const
// member) survives, as does a property named after one of keys.
func Strip(tree Tree, keys ...string) {
	eachSchema(tree, func(node map[string]any) {
		for _, key := range keys {
			delete(node, key)
		}
	})
}
