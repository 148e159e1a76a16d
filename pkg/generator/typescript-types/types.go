package typescripttypes

import (
	"encoding/json"
	"strings"

	"github.com/blimu-dev/contract-gen/pkg/ir"
	"github.com/blimu-dev/contract-gen/pkg/utils"
)

// typeMapper renders IR schemas as TypeScript type expressions. names maps
// component names to the identifiers their models are declared under.
type typeMapper struct {
	names map[string]string
}

func newTypeMapper(defs []ir.IRModelDef) typeMapper {
	names := make(map[string]string, len(defs))
	for _, md := range defs {
		names[md.Name] = modelTypeName(md)
	}
	return typeMapper{names: names}
}

func modelTypeName(md ir.IRModelDef) string {
	if md.TypeName != "" {
		return md.TypeName
	}
	return utils.SafeIdentifier(md.Name)
}

func (m typeMapper) refType(ref string) string {
	if name, ok := m.names[ref]; ok {
		return name
	}
	return utils.SafeIdentifier(ref)
}

// tsType converts an IR schema to a TypeScript type expression
func (m typeMapper) tsType(s ir.IRSchema) string {
	// Base type string without nullability; append null later
	var t string
	switch s.Kind {
	case ir.IRKindString:
		if s.Format == "binary" {
			t = "File"
		} else {
			t = "string"
		}
	case ir.IRKindNumber, ir.IRKindInteger:
		t = "number"
	case ir.IRKindBoolean:
		t = "boolean"
	case ir.IRKindNull:
		t = "null"
	case ir.IRKindRef:
		if s.Ref != "" {
			t = m.refType(s.Ref)
		} else {
			t = "any"
		}
	case ir.IRKindArray:
		inner := "any"
		if s.Items != nil {
			inner = m.tsType(*s.Items)
		}
		t = wrapCompound(inner) + "[]"
	case ir.IRKindOneOf:
		t = m.joinTypes(s.OneOf, " | ")
	case ir.IRKindAnyOf:
		t = m.joinTypes(s.AnyOf, " | ")
	case ir.IRKindAllOf:
		t = m.joinTypes(s.AllOf, " & ")
	case ir.IRKindEnum:
		t = enumUnion(s)
	case ir.IRKindObject:
		t = m.objectLiteral(s)
	default:
		t = "any"
	}
	if s.Nullable && t != "null" && t != "any" {
		t += " | null"
	}
	return t
}

func (m typeMapper) joinTypes(subs []*ir.IRSchema, sep string) string {
	parts := make([]string, 0, len(subs))
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		part := m.tsType(*sub)
		if sep == " & " {
			part = wrapCompound(part)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, sep)
}

// wrapCompound parenthesizes unions and intersections used inside another expression.
func wrapCompound(t string) string {
	if strings.Contains(t, " | ") || strings.Contains(t, " & ") {
		return "(" + t + ")"
	}
	return t
}

func enumUnion(s ir.IRSchema) string {
	if len(s.EnumValues) == 0 {
		return "any"
	}
	vals := make([]string, 0, len(s.EnumValues))
	for i, v := range s.EnumValues {
		switch s.EnumBase {
		case ir.IRKindNumber, ir.IRKindInteger, ir.IRKindBoolean:
			if i < len(s.EnumRaw) {
				if _, isString := s.EnumRaw[i].(string); isString {
					vals = append(vals, utils.QuoteString(v))
					continue
				}
			}
			vals = append(vals, v)
		default:
			vals = append(vals, utils.QuoteString(v))
		}
	}
	return strings.Join(vals, " | ")
}

// objectLiteral renders an inline object type on one line.
func (m typeMapper) objectLiteral(s ir.IRSchema) string {
	if len(s.Properties) == 0 {
		if s.AdditionalProperties != nil {
			return "Record<string, " + m.tsType(*s.AdditionalProperties) + ">"
		}
		return "Record<string, any>"
	}
	parts := make([]string, 0, len(s.Properties)+1)
	for _, f := range s.Properties {
		parts = append(parts, m.fieldSignature(f))
	}
	if s.AdditionalProperties != nil {
		parts = append(parts, "[key: string]: any")
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (m typeMapper) fieldSignature(f ir.IRField) string {
	ft := "any"
	if f.Type != nil {
		ft = m.tsType(*f.Type)
	}
	opt := ""
	if !f.Required {
		opt = "?"
	}
	return utils.QuotePropName(f.Name) + opt + ": " + ft
}

// isInterface reports whether a model renders as an interface rather than a type alias.
func isInterface(s ir.IRSchema) bool {
	return s.Kind == ir.IRKindObject && !s.Nullable && len(s.Properties) > 0
}

func namespaceName(mod ir.IRModule) string {
	if mod.Namespace != "" {
		return mod.Namespace
	}
	return utils.SafeIdentifier(utils.ToPascalCase(mod.Name))
}

// paramsType renders a parameter group as an object type; indent is the
// indentation of the declaring line.
func (m typeMapper) paramsType(params []ir.IRParam, indent string) string {
	if len(params) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for _, p := range params {
		for _, line := range paramDoc(p) {
			b.WriteString(indent + "  " + line + "\n")
		}
		opt := ""
		if !p.Required {
			opt = "?"
		}
		b.WriteString(indent + "  " + utils.QuotePropName(p.Name) + opt + ": " + m.tsType(p.Schema) + ";\n")
	}
	b.WriteString(indent + "}")
	return b.String()
}

func paramDoc(p ir.IRParam) []string {
	lines := docLines(p.Description)
	if p.Schema.Format != "" {
		lines = append(lines, "@format "+p.Schema.Format)
	}
	return renderDoc(lines)
}

func (m typeMapper) bodyType(op ir.IROperation) string {
	if op.RequestBody == nil {
		return "never"
	}
	return m.tsType(op.RequestBody.Schema)
}

func (m typeMapper) responseType(op ir.IROperation) string {
	if op.Response.Void {
		return "void"
	}
	return m.tsType(op.Response.Schema)
}

func modelDoc(md ir.IRModelDef) []string {
	lines := docLines(md.Annotations.Description)
	if md.Annotations.Deprecated {
		lines = append(lines, "@deprecated")
	}
	return lines
}

func fieldDoc(f ir.IRField) []string {
	lines := docLines(f.Annotations.Description)
	if f.Type != nil && f.Type.Format != "" {
		lines = append(lines, "@format "+f.Type.Format)
	}
	if f.Annotations.Default != nil {
		if raw, err := json.Marshal(f.Annotations.Default); err == nil {
			lines = append(lines, "@default "+string(raw))
		}
	}
	if f.Annotations.Deprecated {
		lines = append(lines, "@deprecated")
	}
	return lines
}

func routeDoc(op ir.IROperation) []string {
	lines := docLines(op.Description)
	if len(lines) == 0 {
		lines = append(lines, "No description")
	}
	if len(op.OriginalTags) > 0 && op.OriginalTags[0] != "misc" {
		lines = append(lines, "@tags "+strings.Join(op.OriginalTags, ", "))
	}
	lines = append(lines, "@name "+op.RouteName)
	if op.Summary != "" {
		lines = append(lines, "@summary "+singleLine(op.Summary))
	}
	lines = append(lines, "@request "+op.Method+":"+op.Path)
	if op.Deprecated {
		lines = append(lines, "@deprecated")
	}
	return lines
}

func docLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(text, "\n") {
		out = append(out, commentSafe(strings.TrimRight(l, " \t\r")))
	}
	return out
}

func singleLine(s string) string {
	return commentSafe(strings.Join(strings.Fields(s), " "))
}

// commentSafe keeps text from closing the surrounding block comment.
func commentSafe(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}

// renderDoc formats lines as a JSDoc block, one output line per slice element.
func renderDoc(lines []string) []string {
	switch len(lines) {
	case 0:
		return nil
	case 1:
		return []string{"/** " + lines[0] + " */"}
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, "/**")
	for _, l := range lines {
		if l == "" {
			out = append(out, " *")
			continue
		}
		out = append(out, " * "+l)
	}
	return append(out, " */")
}

// jsdoc renders lines as a comment block indented by indent, followed by a newline
// and the indent for the declaration that follows. Empty input renders nothing.
func jsdoc(indent string, lines []string) string {
	rendered := renderDoc(lines)
	if len(rendered) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range rendered {
		b.WriteString(l)
		b.WriteString("\n")
		b.WriteString(indent)
	}
	return b.String()
}
