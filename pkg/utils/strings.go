package utils

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// RemoveAccents removes accents from a string, converting accented characters to their base forms
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitWords splits s on non-alphanumeric runs and camelCase boundaries.
// "XMLHttpRequest" splits into "XML", "Http", "Request".
func SplitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = RemoveAccents(s)

	var out []string
	for _, part := range nonAlnum.Split(s, -1) {
		if part == "" {
			continue
		}
		out = append(out, SplitCamelCase(part)...)
	}
	return out
}

// SplitCamelCase splits a camelCase or PascalCase string into words
func SplitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder

	rs := []rune(s)
	for i, r := range rs {
		isNewWord := false
		if i > 0 && isUppercase(r) {
			if !isUppercase(rs[i-1]) {
				// Previous char was lowercase, so this starts a new word
				isNewWord = true
			} else if i < len(rs)-1 && !isUppercase(rs[i+1]) && !isDigit(rs[i+1]) {
				// "XMLHttp" -> "XML", "Http"
				isNewWord = true
			}
		}

		if isNewWord && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUppercase(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool     { return r >= '0' && r <= '9' }

// ToPascalCase converts a string to PascalCase
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, p := range SplitWords(s) {
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(strings.ToLower(p[1:]))
		}
	}
	return b.String()
}

// ToCamelCase converts a string to camelCase
func ToCamelCase(s string) string {
	p := ToPascalCase(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// IsIdentifier reports whether s is usable as a TypeScript identifier as-is.
func IsIdentifier(s string) bool {
	return identifier.MatchString(s) && !reserved[s]
}

// SafeIdentifier returns name unchanged when it is already a valid identifier and
// a PascalCase rendition otherwise. Names starting with a digit get a leading underscore.
func SafeIdentifier(name string) string {
	if IsIdentifier(name) {
		return name
	}
	id := ToPascalCase(name)
	if id == "" {
		return "_"
	}
	if isDigit(rune(id[0])) || reserved[id] {
		id = "_" + id
	}
	return id
}

// QuotePropName renders an object key, quoting it when it is not a bare identifier.
func QuotePropName(name string) string {
	if identifier.MatchString(name) {
		return name
	}
	return QuoteString(name)
}

// QuoteString renders s as a double-quoted JavaScript string literal. Only JSON
// escapes are used, so the result is valid in both languages; HTML characters are
// left as is.
func QuoteString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// NameSet hands out identifiers that are unique within the set.
type NameSet map[string]bool

// Claim returns base when it is free, otherwise base followed by the lowest
// numeric suffix (from 2) not yet in the set. The result is marked as used.
func (s NameSet) Claim(base string) string {
	name := base
	for n := 2; s[name]; n++ {
		name = base + strconv.Itoa(n)
	}
	s[name] = true
	return name
}

var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
}
