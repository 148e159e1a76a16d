package ir

// IR represents the complete intermediate representation of an interface description document
type IR struct {
	Title   string
	Version string
	// Modules groups operations for route-type namespaces, sorted by name
	Modules []IRModule
	// ModelDefs holds a language-agnostic structured representation of components schemas
	ModelDefs []IRModelDef
}

// IRModule represents a group of operations, keyed by first path segment or first tag
type IRModule struct {
	Name string
	// Namespace is the identifier the module renders under, unique within the IR
	Namespace  string
	Operations []IROperation
}

// IROperation represents a single API operation (endpoint + method)
type IROperation struct {
	OperationID string
	// RouteName is unique within its module and is a valid identifier
	RouteName    string
	Method       string
	Path         string
	Summary      string
	Description  string
	Deprecated   bool
	OriginalTags []string
	PathParams   []IRParam
	QueryParams  []IRParam
	HeaderParams []IRParam
	RequestBody  *IRRequestBody
	Response     IRResponse
}

// IRParam represents a parameter (path, query or header)
type IRParam struct {
	Name     string
	Required bool
	Schema   IRSchema
	// Description from the OpenAPI parameter
	Description string
}

// IRRequestBody represents a request body
type IRRequestBody struct {
	ContentType string
	Required    bool
	Schema      IRSchema
}

// IRResponse represents the success response chosen for an operation
type IRResponse struct {
	Status string
	// Void is set for 204 or success responses without content
	Void   bool
	Schema IRSchema
	// Description contains the response description chosen for this operation
	Description string
}

// IRModelDef represents a named model with a structured schema that is language-agnostic.
type IRModelDef struct {
	// Name is the component name; refs use it
	Name string
	// TypeName is the identifier the model renders under, unique within the IR
	TypeName    string
	Schema      IRSchema
	Annotations IRAnnotations
}

// IRAnnotations captures non-structural metadata that some generators may render.
type IRAnnotations struct {
	Title       string
	Description string
	Deprecated  bool
	ReadOnly    bool
	WriteOnly   bool
	Default     any
	Examples    []any
}

// IRSchemaKind represents the kind of schema
type IRSchemaKind string

const (
	IRKindUnknown IRSchemaKind = "unknown"
	IRKindString  IRSchemaKind = "string"
	IRKindNumber  IRSchemaKind = "number"
	IRKindInteger IRSchemaKind = "integer"
	IRKindBoolean IRSchemaKind = "boolean"
	IRKindNull    IRSchemaKind = "null"
	IRKindArray   IRSchemaKind = "array"
	IRKindObject  IRSchemaKind = "object"
	IRKindEnum    IRSchemaKind = "enum"
	IRKindRef     IRSchemaKind = "ref"
	IRKindOneOf   IRSchemaKind = "oneOf"
	IRKindAnyOf   IRSchemaKind = "anyOf"
	IRKindAllOf   IRSchemaKind = "allOf"
	IRKindNot     IRSchemaKind = "not"
)

// IRSchema models a schema shape in a language-agnostic way
type IRSchema struct {
	Kind     IRSchemaKind
	Nullable bool
	Format   string

	// Object
	Properties           []IRField
	AdditionalProperties *IRSchema // typed maps; nil when absent

	// Array
	Items *IRSchema

	// Enum
	EnumValues []string     // stringified values for portability
	EnumRaw    []any        // original values preserving type where possible
	EnumBase   IRSchemaKind // underlying base kind: string, number, integer, boolean, unknown

	// Ref holds the component name
	Ref string

	// Compositions
	OneOf []*IRSchema
	AnyOf []*IRSchema
	AllOf []*IRSchema
	Not   *IRSchema
}

// IRField represents a field in an object schema
type IRField struct {
	Name     string
	Type     *IRSchema
	Required bool
	// Pass-through annotations commonly used by generators
	Annotations IRAnnotations
}
