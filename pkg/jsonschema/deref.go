package jsonschema

import (
	"net/url"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/mohae/deepcopy"
)

// Dereference returns a copy of tree in which every internal $ref in a schema
// position is replaced by a copy of its target. Keywords next to a $ref are
// merged over the target. tree is not modified.
func Dereference(tree Tree) (Tree, error) {
	d := &dereferencer{
		root:   tree,
		done:   map[string]map[string]any{},
		active: map[string]bool{},
	}
	out := map[string]any{}
	for _, name := range SchemaNames(tree) {
		ref := "#/components/schemas/" + jsonpointer.Escape(name)
		resolved, err := d.resolve(ref)
		if err != nil {
			return nil, err
		}
		out[name] = copyNode(resolved)
	}
	return Tree{"components": map[string]any{"schemas": out}}, nil
}

type dereferencer struct {
	root Tree
	// done holds fully dereferenced targets; callers copy before use.
	done   map[string]map[string]any
	active map[string]bool
	chain  []string
}

// resolve returns the dereferenced target of ref.
func (d *dereferencer) resolve(ref string) (map[string]any, error) {
	if r, ok := d.done[ref]; ok {
		return r, nil
	}
	if !strings.HasPrefix(ref, "#") {
		return nil, &ExternalRefError{Ref: ref}
	}
	if d.active[ref] {
		chain := append(append([]string(nil), d.chain...), ref)
		return nil, &CycleError{Ref: ref, Chain: chain}
	}

	fragment, err := url.PathUnescape(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil, &RefError{Ref: ref, Err: err}
	}
	ptr, err := jsonpointer.New(fragment)
	if err != nil {
		return nil, &RefError{Ref: ref, Err: err}
	}
	target, _, err := ptr.Get(d.root)
	if err != nil {
		return nil, &RefError{Ref: ref, Err: err}
	}
	node, ok := target.(map[string]any)
	if !ok {
		return nil, &RefError{Ref: ref}
	}

	d.active[ref] = true
	d.chain = append(d.chain, ref)
	resolved, err := d.schema(copyNode(node))
	d.chain = d.chain[:len(d.chain)-1]
	delete(d.active, ref)
	if err != nil {
		return nil, err
	}
	d.done[ref] = resolved
	return resolved, nil
}

// schema dereferences node, which the caller owns, and returns the result.
func (d *dereferencer) schema(node map[string]any) (map[string]any, error) {
	for _, key := range schemaMapKeywords {
		m, ok := node[key].(map[string]any)
		if !ok {
			continue
		}
		for _, name := range sortedKeys(m) {
			child, ok := m[name].(map[string]any)
			if !ok {
				continue
			}
			r, err := d.schema(child)
			if err != nil {
				return nil, err
			}
			m[name] = r
		}
	}
	for _, key := range schemaKeywords {
		child, ok := node[key].(map[string]any)
		if !ok {
			continue
		}
		r, err := d.schema(child)
		if err != nil {
			return nil, err
		}
		node[key] = r
	}
	for _, key := range schemaListKeywords {
		list, ok := node[key].([]any)
		if !ok {
			continue
		}
		for i, v := range list {
			child, ok := v.(map[string]any)
			if !ok {
				continue
			}
			r, err := d.schema(child)
			if err != nil {
				return nil, err
			}
			list[i] = r
		}
	}

	ref, ok := node["$ref"].(string)
	if !ok {
		return node, nil
	}
	target, err := d.resolve(ref)
	if err != nil {
		return nil, err
	}
	merged := copyNode(target)
	for k, v := range node {
		if k != "$ref" {
			merged[k] = v
		}
	}
	return merged, nil
}

func copyNode(node map[string]any) map[string]any {
	return deepcopy.Copy(node).(map[string]any)
}
