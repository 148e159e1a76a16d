package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blimu-dev/contract-gen/pkg/ir"
	"github.com/getkin/kin-openapi/openapi3"
)

const componentSchemaPrefix = "#/components/schemas/"

// schemaRefToIR converts an OpenAPI schema reference to IR schema
func schemaRefToIR(sr *openapi3.SchemaRef) ir.IRSchema {
	if sr == nil {
		return ir.IRSchema{Kind: ir.IRKindUnknown}
	}
	if sr.Ref != "" {
		if name := refName(sr.Ref); name != "" {
			return ir.IRSchema{Kind: ir.IRKindRef, Ref: name}
		}
		return ir.IRSchema{Kind: ir.IRKindUnknown}
	}
	if sr.Value == nil {
		return ir.IRSchema{Kind: ir.IRKindUnknown}
	}
	s := sr.Value
	typ, nullable := primaryType(s)

	// Compositions
	if len(s.OneOf) > 0 {
		return ir.IRSchema{Kind: ir.IRKindOneOf, OneOf: schemaRefsToIR(s.OneOf), Nullable: nullable}
	}
	if len(s.AnyOf) > 0 {
		return ir.IRSchema{Kind: ir.IRKindAnyOf, AnyOf: schemaRefsToIR(s.AnyOf), Nullable: nullable}
	}
	if len(s.AllOf) > 0 {
		return ir.IRSchema{Kind: ir.IRKindAllOf, AllOf: schemaRefsToIR(s.AllOf), Nullable: nullable}
	}
	if s.Not != nil {
		not := schemaRefToIR(s.Not)
		return ir.IRSchema{Kind: ir.IRKindNot, Not: &not, Nullable: nullable}
	}

	// Enum (support non-string by coercing to string representation)
	if len(s.Enum) > 0 {
		vals := make([]string, 0, len(s.Enum))
		raw := make([]any, 0, len(s.Enum))
		for _, v := range s.Enum {
			if v == nil {
				nullable = true
				continue
			}
			vals = append(vals, fmt.Sprint(v))
			raw = append(raw, v)
		}
		return ir.IRSchema{Kind: ir.IRKindEnum, EnumValues: vals, EnumRaw: raw, EnumBase: inferEnumBaseKind(s), Nullable: nullable}
	}

	switch typ {
	case openapi3.TypeString:
		return ir.IRSchema{Kind: ir.IRKindString, Nullable: nullable, Format: s.Format}
	case openapi3.TypeInteger:
		return ir.IRSchema{Kind: ir.IRKindInteger, Nullable: nullable, Format: s.Format}
	case openapi3.TypeNumber:
		return ir.IRSchema{Kind: ir.IRKindNumber, Nullable: nullable, Format: s.Format}
	case openapi3.TypeBoolean:
		return ir.IRSchema{Kind: ir.IRKindBoolean, Nullable: nullable}
	case "null":
		return ir.IRSchema{Kind: ir.IRKindNull}
	case openapi3.TypeArray:
		item := schemaRefToIR(s.Items)
		return ir.IRSchema{Kind: ir.IRKindArray, Items: &item, Nullable: nullable}
	case openapi3.TypeObject:
		return objectToIR(s, nullable)
	}
	// Untyped schemas that still declare properties are objects.
	if len(s.Properties) > 0 || s.AdditionalProperties.Schema != nil {
		return objectToIR(s, nullable)
	}
	return ir.IRSchema{Kind: ir.IRKindUnknown, Nullable: nullable}
}

func schemaRefsToIR(refs openapi3.SchemaRefs) []*ir.IRSchema {
	subs := make([]*ir.IRSchema, 0, len(refs))
	for _, sub := range refs {
		sc := schemaRefToIR(sub)
		subs = append(subs, &sc)
	}
	return subs
}

func objectToIR(s *openapi3.Schema, nullable bool) ir.IRSchema {
	// deterministic order
	names := make([]string, 0, len(s.Properties))
	for n := range s.Properties {
		names = append(names, n)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}

	fields := make([]ir.IRField, 0, len(names))
	for _, n := range names {
		pr := s.Properties[n]
		fieldType := schemaRefToIR(pr)
		fields = append(fields, ir.IRField{Name: n, Type: &fieldType, Required: required[n], Annotations: extractAnnotations(pr)})
	}
	var addl *ir.IRSchema
	if s.AdditionalProperties.Schema != nil {
		ap := schemaRefToIR(s.AdditionalProperties.Schema)
		addl = &ap
	} else if s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has && len(fields) == 0 {
		addl = &ir.IRSchema{Kind: ir.IRKindUnknown}
	}
	return ir.IRSchema{Kind: ir.IRKindObject, Properties: fields, AdditionalProperties: addl, Nullable: nullable}
}

// primaryType returns the first non-null type and whether null is allowed, covering
// both the 3.0 nullable flag and 3.1 type arrays.
func primaryType(s *openapi3.Schema) (string, bool) {
	nullable := s.Nullable
	primary := ""
	if s.Type != nil {
		for _, t := range *s.Type {
			if t == "null" {
				nullable = true
				continue
			}
			if primary == "" {
				primary = t
			}
		}
		if primary == "" && nullable && len(*s.Type) > 0 {
			return "null", false
		}
	}
	return primary, nullable
}

// refName extracts the component name from a reference.
func refName(ref string) string {
	if strings.HasPrefix(ref, componentSchemaPrefix) {
		return strings.TrimPrefix(ref, componentSchemaPrefix)
	}
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

// extractAnnotations extracts annotations from a schema reference
func extractAnnotations(sr *openapi3.SchemaRef) ir.IRAnnotations {
	var a ir.IRAnnotations
	if sr == nil || sr.Value == nil {
		return a
	}
	s := sr.Value
	a.Title = s.Title
	a.Description = s.Description
	a.Deprecated = s.Deprecated
	a.ReadOnly = s.ReadOnly
	a.WriteOnly = s.WriteOnly
	a.Default = s.Default
	if s.Example != nil {
		a.Examples = []any{s.Example}
	}
	return a
}

// inferEnumBaseKind infers the base kind for an enum
func inferEnumBaseKind(s *openapi3.Schema) ir.IRSchemaKind {
	// Prefer explicit type when present
	switch typ, _ := primaryType(s); typ {
	case openapi3.TypeString:
		return ir.IRKindString
	case openapi3.TypeInteger:
		return ir.IRKindInteger
	case openapi3.TypeNumber:
		return ir.IRKindNumber
	case openapi3.TypeBoolean:
		return ir.IRKindBoolean
	}
	// Fallback: inspect first non-null enum value
	for _, v := range s.Enum {
		switch v.(type) {
		case nil:
			continue
		case string:
			return ir.IRKindString
		case int, int32, int64:
			return ir.IRKindInteger
		case float32, float64:
			return ir.IRKindNumber
		case bool:
			return ir.IRKindBoolean
		}
		return ir.IRKindUnknown
	}
	return ir.IRKindUnknown
}
