package apigateway

import (
	"fmt"
	"sort"
	"strings"
)

// DatePattern replaces format: date, which API Gateway does not enforce.
const DatePattern = "^[0-9]{4}-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$"

// Dialect is the symbolic vocabulary a validation schema is written in.
type Dialect struct {
	Name          string
	ImportPath    string
	TypeEnum      string
	VersionEnum   string
	VersionMember string
	DatePattern   string
	// Types maps JSON Schema type tags to members of TypeEnum.
	Types map[string]string
}

var awsTypes = map[string]string{
	"object":  "OBJECT",
	"string":  "STRING",
	"array":   "ARRAY",
	"boolean": "BOOLEAN",
	"integer": "INTEGER",
	"number":  "NUMBER",
	"null":    "NULL",
}

var dialects = map[string]Dialect{
	"aws-cdk": {
		Name:          "aws-cdk",
		ImportPath:    "aws-cdk-lib/aws-apigateway",
		TypeEnum:      "JsonSchemaType",
		VersionEnum:   "JsonSchemaVersion",
		VersionMember: "DRAFT4",
		DatePattern:   DatePattern,
		Types:         awsTypes,
	},
	"aws-cdk-v1": {
		Name:          "aws-cdk-v1",
		ImportPath:    "@aws-cdk/aws-apigateway",
		TypeEnum:      "JsonSchemaType",
		VersionEnum:   "JsonSchemaVersion",
		VersionMember: "DRAFT4",
		DatePattern:   DatePattern,
		Types:         awsTypes,
	},
}

// LookupDialect returns the named dialect; "" selects aws-cdk.
func LookupDialect(name string) (Dialect, error) {
	if name == "" {
		name = "aws-cdk"
	}
	d, ok := dialects[name]
	if !ok {
		names := make([]string, 0, len(dialects))
		for n := range dialects {
			names = append(names, n)
		}
		sort.Strings(names)
		return Dialect{}, fmt.Errorf("unknown dialect %q (available: %s)", name, strings.Join(names, ", "))
	}
	return d, nil
}

// TypeSymbol returns the symbol for a type tag.
func (d Dialect) TypeSymbol(tag string) (string, bool) {
	member, ok := d.Types[tag]
	if !ok {
		return "", false
	}
	return d.TypeEnum + "." + member, true
}

// VersionSymbol returns the schema version marker.
func (d Dialect) VersionSymbol() string {
	return d.VersionEnum + "." + d.VersionMember
}

// UnknownTypeError reports a type tag the dialect has no symbol for.
type UnknownTypeError struct {
	Schema string
	Tag    any
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("schema %s: type %v has no symbol in the dialect", e.Schema, e.Tag)
}
