package apigateway

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blimu-dev/contract-gen/pkg/jsonschema"
	"github.com/blimu-dev/contract-gen/pkg/utils"
)

const indentUnit = "  "

// literalWriter renders a dereferenced JSON Schema as a TypeScript object
// literal in a dialect. Type tags and the version marker become dialect
// symbols; everything in a data position (enum, default, const, property names)
// is written verbatim.
type literalWriter struct {
	b       strings.Builder
	dialect Dialect
	name    string
}

// SchemaLiteral renders node as the value of a schema constant.
func SchemaLiteral(name string, node map[string]any, d Dialect) (string, error) {
	w := &literalWriter{dialect: d, name: name}
	if err := w.schema(node, "", true); err != nil {
		return "", err
	}
	return w.b.String(), nil
}

// normalize returns the keywords to emit for node, after dialect rewrites.
func (w *literalWriter) normalize(node map[string]any) map[string]any {
	view := make(map[string]any, len(node)+1)
	for k, v := range node {
		view[k] = v
	}
	delete(view, "$schema")
	if id, ok := view["$id"]; ok {
		delete(view, "$id")
		view["id"] = id
	}
	if format, _ := view["format"].(string); format == "date" {
		delete(view, "format")
		if _, ok := view["pattern"]; !ok {
			view["pattern"] = w.dialect.DatePattern
		}
	}
	return view
}

// canonicalKeys orders title first, then the remaining keys alphabetically.
func canonicalKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "title" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := m["title"]; ok {
		keys = append([]string{"title"}, keys...)
	}
	return keys
}

func (w *literalWriter) schema(node map[string]any, indent string, root bool) error {
	view := w.normalize(node)
	keys := canonicalKeys(view)
	if len(keys) == 0 && !root {
		w.b.WriteString("{}")
		return nil
	}

	inner := indent + indentUnit
	w.b.WriteString("{\n")
	if root {
		w.b.WriteString(inner + "schema: " + w.dialect.VersionSymbol() + ",\n")
	}
	for _, key := range keys {
		w.b.WriteString(inner + utils.QuotePropName(key) + ": ")
		if err := w.keyword(key, view[key], inner); err != nil {
			return err
		}
		w.b.WriteString(",\n")
	}
	w.b.WriteString(indent + "}")
	return nil
}

func (w *literalWriter) keyword(key string, v any, indent string) error {
	switch {
	case key == "type":
		return w.typeValue(v)
	case jsonschema.IsSchemaMapKeyword(key):
		if m, ok := v.(map[string]any); ok {
			return w.schemaMap(m, indent)
		}
	case jsonschema.IsSchemaListKeyword(key):
		if list, ok := v.([]any); ok {
			return w.schemaList(list, indent)
		}
		if m, ok := v.(map[string]any); ok && jsonschema.IsSchemaKeyword(key) {
			return w.schema(m, indent, false)
		}
	case jsonschema.IsSchemaKeyword(key):
		if m, ok := v.(map[string]any); ok {
			return w.schema(m, indent, false)
		}
	}
	return w.data(v, indent)
}

func (w *literalWriter) typeValue(v any) error {
	switch t := v.(type) {
	case string:
		sym, ok := w.dialect.TypeSymbol(t)
		if !ok {
			return &UnknownTypeError{Schema: w.name, Tag: t}
		}
		w.b.WriteString(sym)
		return nil
	case []any:
		syms := make([]string, 0, len(t))
		for _, item := range t {
			tag, _ := item.(string)
			sym, ok := w.dialect.TypeSymbol(tag)
			if !ok {
				return &UnknownTypeError{Schema: w.name, Tag: item}
			}
			syms = append(syms, sym)
		}
		w.b.WriteString("[" + strings.Join(syms, ", ") + "]")
		return nil
	}
	return &UnknownTypeError{Schema: w.name, Tag: v}
}

func (w *literalWriter) schemaMap(m map[string]any, indent string) error {
	if len(m) == 0 {
		w.b.WriteString("{}")
		return nil
	}
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)

	inner := indent + indentUnit
	w.b.WriteString("{\n")
	for _, n := range names {
		w.b.WriteString(inner + utils.QuotePropName(n) + ": ")
		var err error
		if child, ok := m[n].(map[string]any); ok {
			err = w.schema(child, inner, false)
		} else {
			err = w.data(m[n], inner)
		}
		if err != nil {
			return err
		}
		w.b.WriteString(",\n")
	}
	w.b.WriteString(indent + "}")
	return nil
}

func (w *literalWriter) schemaList(list []any, indent string) error {
	if len(list) == 0 {
		w.b.WriteString("[]")
		return nil
	}
	inner := indent + indentUnit
	w.b.WriteString("[\n")
	for _, item := range list {
		w.b.WriteString(inner)
		var err error
		if child, ok := item.(map[string]any); ok {
			err = w.schema(child, inner, false)
		} else {
			err = w.data(item, inner)
		}
		if err != nil {
			return err
		}
		w.b.WriteString(",\n")
	}
	w.b.WriteString(indent + "]")
	return nil
}

// data writes a JSON value verbatim.
func (w *literalWriter) data(v any, indent string) error {
	switch t := v.(type) {
	case nil:
		w.b.WriteString("null")
	case bool:
		w.b.WriteString(strconv.FormatBool(t))
	case json.Number:
		w.b.WriteString(t.String())
	case float64:
		w.b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case int, int32, int64:
		fmt.Fprintf(&w.b, "%d", t)
	case string:
		w.b.WriteString(utils.QuoteString(t))
	case []any:
		return w.dataList(t, indent)
	case map[string]any:
		return w.dataMap(t, indent)
	default:
		return fmt.Errorf("schema %s: unsupported value %T", w.name, v)
	}
	return nil
}

func (w *literalWriter) dataList(list []any, indent string) error {
	if allScalars(list) {
		w.b.WriteString("[")
		for i, item := range list {
			if i > 0 {
				w.b.WriteString(", ")
			}
			if err := w.data(item, indent); err != nil {
				return err
			}
		}
		w.b.WriteString("]")
		return nil
	}
	inner := indent + indentUnit
	w.b.WriteString("[\n")
	for _, item := range list {
		w.b.WriteString(inner)
		if err := w.data(item, inner); err != nil {
			return err
		}
		w.b.WriteString(",\n")
	}
	w.b.WriteString(indent + "]")
	return nil
}

func (w *literalWriter) dataMap(m map[string]any, indent string) error {
	if len(m) == 0 {
		w.b.WriteString("{}")
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	inner := indent + indentUnit
	w.b.WriteString("{\n")
	for _, k := range keys {
		w.b.WriteString(inner + utils.QuotePropName(k) + ": ")
		if err := w.data(m[k], inner); err != nil {
			return err
		}
		w.b.WriteString(",\n")
	}
	w.b.WriteString(indent + "}")
	return nil
}

func allScalars(list []any) bool {
	for _, item := range list {
		switch item.(type) {
		case []any, map[string]any:
			return false
		}
	}
	return true
}
