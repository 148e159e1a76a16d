package jsonschema

import (
	"fmt"
	"strings"
)

// CycleError reports a reference that leads back to itself. Full dereferencing
// of such a schema has no finite result.
type CycleError struct {
	Ref   string
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic reference %s (%s)", e.Ref, strings.Join(e.Chain, " -> "))
}

// ExternalRefError reports a reference outside the document being dereferenced.
type ExternalRefError struct {
	Ref string
}

func (e *ExternalRefError) Error() string {
	return fmt.Sprintf("external reference %s cannot be dereferenced", e.Ref)
}

// RefError reports an internal reference that does not resolve to a schema.
type RefError struct {
	Ref string
	Err error
}

func (e *RefError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unresolved reference %s: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("unresolved reference %s: target is not a schema", e.Ref)
}

func (e *RefError) Unwrap() error { return e.Err }
