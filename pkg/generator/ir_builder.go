package generator

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/ir"
	"github.com/blimu-dev/contract-gen/pkg/utils"
	"github.com/getkin/kin-openapi/openapi3"
)

// MiscModule collects operations that have no usable tag or path segment.
const MiscModule = "misc"

// BuildOptions controls how operations are grouped into modules.
type BuildOptions struct {
	// ModuleNameFirstTag groups by the first tag instead of the first path segment
	ModuleNameFirstTag bool
}

type methodOp struct {
	method string
	op     *openapi3.Operation
}

// BuildIR creates an IR from an OpenAPI document
func BuildIR(doc *openapi3.T, opts BuildOptions) ir.IR {
	out := ir.IR{ModelDefs: buildStructuredModels(doc)}
	if doc == nil {
		return out
	}
	if doc.Info != nil {
		out.Title = doc.Info.Title
		out.Version = doc.Info.Version
	}
	if doc.Paths == nil {
		return out
	}

	modules := map[string]*ir.IRModule{}
	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for p := range items {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, path := range paths {
		item := items[path]
		if item == nil {
			continue
		}
		for _, mo := range pathOperations(item) {
			op := mo.op
			name := moduleName(path, op.Tags, opts.ModuleNameFirstTag)
			m, ok := modules[name]
			if !ok {
				m = &ir.IRModule{Name: name}
				modules[name] = m
			}

			// Copy original tags, defaulting to ["misc"] if no tags
			originalTags := append([]string(nil), op.Tags...)
			if len(originalTags) == 0 {
				originalTags = []string{MiscModule}
			}
			pathParams, queryParams, headerParams := collectParams(item, op)

			m.Operations = append(m.Operations, ir.IROperation{
				OperationID:  op.OperationID,
				Method:       mo.method,
				Path:         path,
				Summary:      op.Summary,
				Description:  op.Description,
				Deprecated:   op.Deprecated,
				OriginalTags: originalTags,
				PathParams:   pathParams,
				QueryParams:  queryParams,
				HeaderParams: headerParams,
				RequestBody:  extractRequestBody(op),
				Response:     extractResponse(op),
			})
		}
	}

	names := make([]string, 0, len(modules))
	for n := range modules {
		names = append(names, n)
	}
	sort.Strings(names)
	namespaces := utils.NameSet{}
	for _, n := range names {
		m := modules[n]
		m.Namespace = namespaces.Claim(utils.SafeIdentifier(utils.ToPascalCase(n)))
		sort.SliceStable(m.Operations, func(i, j int) bool {
			if m.Operations[i].Path == m.Operations[j].Path {
				return methodRank(m.Operations[i].Method) < methodRank(m.Operations[j].Method)
			}
			return m.Operations[i].Path < m.Operations[j].Path
		})
		assignRouteNames(m.Operations)
		out.Modules = append(out.Modules, *m)
	}
	return out
}

var methodOrder = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodOptions, http.MethodHead, http.MethodTrace,
}

func methodRank(m string) int {
	for i, v := range methodOrder {
		if v == m {
			return i
		}
	}
	return len(methodOrder)
}

func pathOperations(item *openapi3.PathItem) []methodOp {
	ops := []*openapi3.Operation{
		item.Get, item.Post, item.Put, item.Patch,
		item.Delete, item.Options, item.Head, item.Trace,
	}
	out := make([]methodOp, 0, len(ops))
	for i, op := range ops {
		if op != nil {
			out = append(out, methodOp{method: methodOrder[i], op: op})
		}
	}
	return out
}

// moduleName picks the namespace an operation belongs to.
func moduleName(path string, tags []string, byTag bool) string {
	if byTag {
		if len(tags) > 0 && strings.TrimSpace(tags[0]) != "" {
			return tags[0]
		}
		return MiscModule
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") {
			return MiscModule
		}
		return seg
	}
	return MiscModule
}

// assignRouteNames derives a route name per operation, unique within the module.
func assignRouteNames(ops []ir.IROperation) {
	used := utils.NameSet{}
	for i := range ops {
		base := utils.ToPascalCase(ops[i].OperationID)
		if base == "" {
			base = deriveRouteName(ops[i].Method, ops[i].Path)
		}
		ops[i].RouteName = used.Claim(utils.SafeIdentifier(base))
	}
}

// deriveRouteName builds a name from method and path, e.g. GET /products/{id} -> GetProductsById.
func deriveRouteName(method, path string) string {
	var b strings.Builder
	b.WriteString(utils.ToPascalCase(strings.ToLower(method)))
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			b.WriteString("By")
			b.WriteString(utils.ToPascalCase(strings.Trim(seg, "{}")))
			continue
		}
		b.WriteString(utils.ToPascalCase(seg))
	}
	return b.String()
}

// compileTagFilters compiles regex patterns for tag filtering
func compileTagFilters(include, exclude []string) ([]*regexp.Regexp, []*regexp.Regexp, error) {
	inc := make([]*regexp.Regexp, 0, len(include))
	for _, p := range include {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid includeTags pattern %q: %w", p, err)
		}
		inc = append(inc, r)
	}
	exc := make([]*regexp.Regexp, 0, len(exclude))
	for _, p := range exclude {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid excludeTags pattern %q: %w", p, err)
		}
		exc = append(exc, r)
	}
	return inc, exc, nil
}

// shouldIncludeOperation determines if an operation should be included based on its original tags
func shouldIncludeOperation(originalTags []string, include, exclude []*regexp.Regexp) bool {
	// If no include patterns, assume all tags are initially included
	included := len(include) == 0

	// Operation is included if ANY of its tags match ANY include pattern
	for _, tag := range originalTags {
		if included {
			break
		}
		for _, r := range include {
			if r.MatchString(tag) {
				included = true
				break
			}
		}
	}
	if !included {
		return false
	}

	// Operation is excluded if ANY of its tags match ANY exclude pattern
	for _, tag := range originalTags {
		for _, r := range exclude {
			if r.MatchString(tag) {
				return false
			}
		}
	}
	return true
}

// FilterIR applies a target's tag filters. Without filters the IR is returned as is;
// with filters, model defs not reachable from a kept operation are dropped.
func FilterIR(full ir.IR, target config.Target) (ir.IR, error) {
	if len(target.IncludeTags) == 0 && len(target.ExcludeTags) == 0 {
		return full, nil
	}
	include, exclude, err := compileTagFilters(target.IncludeTags, target.ExcludeTags)
	if err != nil {
		return ir.IR{}, err
	}

	filtered := ir.IR{Title: full.Title, Version: full.Version}
	for _, m := range full.Modules {
		ops := make([]ir.IROperation, 0, len(m.Operations))
		for _, op := range m.Operations {
			if shouldIncludeOperation(op.OriginalTags, include, exclude) {
				ops = append(ops, op)
			}
		}
		// Only keep the module if it has at least one operation after filtering
		if len(ops) > 0 {
			filtered.Modules = append(filtered.Modules, ir.IRModule{Name: m.Name, Namespace: m.Namespace, Operations: ops})
		}
	}
	filtered.ModelDefs = filterUnusedModelDefs(filtered, full.ModelDefs)
	return filtered, nil
}

// collectParams extracts parameters from an operation, including path-level ones.
// Operation-level parameters override path-level ones with the same name and location.
func collectParams(item *openapi3.PathItem, op *openapi3.Operation) (pathParams, queryParams, headerParams []ir.IRParam) {
	type key struct{ in, name string }
	merged := map[key]*openapi3.Parameter{}
	var order []key
	for _, list := range []openapi3.Parameters{item.Parameters, op.Parameters} {
		for _, pr := range list {
			if pr == nil || pr.Value == nil {
				continue
			}
			k := key{pr.Value.In, pr.Value.Name}
			if _, ok := merged[k]; !ok {
				order = append(order, k)
			}
			merged[k] = pr.Value
		}
	}
	for _, k := range order {
		p := merged[k]
		param := ir.IRParam{
			Name:        p.Name,
			Required:    p.Required,
			Schema:      schemaRefToIR(p.Schema),
			Description: p.Description,
		}
		switch p.In {
		case openapi3.ParameterInPath:
			param.Required = true
			pathParams = append(pathParams, param)
		case openapi3.ParameterInQuery:
			queryParams = append(queryParams, param)
		case openapi3.ParameterInHeader:
			headerParams = append(headerParams, param)
		}
	}
	// deterministic order
	sort.Slice(pathParams, func(i, j int) bool { return pathParams[i].Name < pathParams[j].Name })
	sort.Slice(queryParams, func(i, j int) bool { return queryParams[i].Name < queryParams[j].Name })
	sort.Slice(headerParams, func(i, j int) bool { return headerParams[i].Name < headerParams[j].Name })
	return
}

// preferredMedia picks application/json, then the first media type in sorted order.
func preferredMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	if media, ok := content["application/json"]; ok && media != nil {
		return "application/json", media
	}
	types := make([]string, 0, len(content))
	for ct := range content {
		types = append(types, ct)
	}
	sort.Strings(types)
	for _, ct := range types {
		if content[ct] != nil {
			return ct, content[ct]
		}
	}
	return "", nil
}

// extractRequestBody extracts request body information
func extractRequestBody(op *openapi3.Operation) *ir.IRRequestBody {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	rb := op.RequestBody.Value
	ct, media := preferredMedia(rb.Content)
	if media == nil {
		return nil
	}
	body := &ir.IRRequestBody{ContentType: ct, Required: rb.Required, Schema: schemaRefToIR(media.Schema)}
	if ct == "multipart/form-data" && media.Schema == nil {
		body.Schema = ir.IRSchema{Kind: ir.IRKindUnknown}
	}
	return body
}

// extractResponse picks 200, then 201, then the lowest other 2xx. 204 or a success
// response without content is void; no success response at all is unknown.
func extractResponse(op *openapi3.Operation) ir.IRResponse {
	if op.Responses == nil {
		return ir.IRResponse{Schema: ir.IRSchema{Kind: ir.IRKindUnknown}}
	}
	all := op.Responses.Map()
	codes := []string{"200", "201"}
	var others []string
	for code := range all {
		if len(code) == 3 && code[0] == '2' && code != "200" && code != "201" {
			others = append(others, code)
		}
	}
	sort.Strings(others)
	codes = append(codes, others...)

	for _, code := range codes {
		rr, ok := all[code]
		if !ok || rr == nil || rr.Value == nil {
			continue
		}
		desc := ""
		if rr.Value.Description != nil {
			desc = *rr.Value.Description
		}
		if code == "204" {
			return ir.IRResponse{Status: code, Void: true, Description: desc}
		}
		_, media := preferredMedia(rr.Value.Content)
		if media == nil {
			return ir.IRResponse{Status: code, Void: true, Description: desc}
		}
		return ir.IRResponse{Status: code, Schema: schemaRefToIR(media.Schema), Description: desc}
	}
	return ir.IRResponse{Schema: ir.IRSchema{Kind: ir.IRKindUnknown}}
}

// buildStructuredModels converts components.schemas into a language-agnostic IR
func buildStructuredModels(doc *openapi3.T) []ir.IRModelDef {
	out := []ir.IRModelDef{}
	if doc == nil || doc.Components == nil || doc.Components.Schemas == nil {
		return out
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	typeNames := utils.NameSet{}
	for _, name := range names {
		sr := doc.Components.Schemas[name]
		out = append(out, ir.IRModelDef{
			Name:        name,
			TypeName:    typeNames.Claim(utils.SafeIdentifier(name)),
			Schema:      schemaRefToIR(sr),
			Annotations: extractAnnotations(sr),
		})
	}
	return out
}

// filterUnusedModelDefs removes ModelDefs that are not referenced by any operations
func filterUnusedModelDefs(filteredIR ir.IR, allModelDefs []ir.IRModelDef) []ir.IRModelDef {
	modelDefMap := make(map[string]ir.IRModelDef)
	for _, md := range allModelDefs {
		modelDefMap[md.Name] = md
	}

	referenced := make(map[string]bool)
	var collectRefs func(schema ir.IRSchema)
	collectRefs = func(schema ir.IRSchema) {
		if schema.Kind == ir.IRKindRef && schema.Ref != "" {
			if referenced[schema.Ref] {
				return
			}
			referenced[schema.Ref] = true
			if md, ok := modelDefMap[schema.Ref]; ok {
				collectRefs(md.Schema)
			}
		}
		if schema.Items != nil {
			collectRefs(*schema.Items)
		}
		if schema.AdditionalProperties != nil {
			collectRefs(*schema.AdditionalProperties)
		}
		for _, subs := range [][]*ir.IRSchema{schema.OneOf, schema.AnyOf, schema.AllOf} {
			for _, sub := range subs {
				if sub != nil {
					collectRefs(*sub)
				}
			}
		}
		if schema.Not != nil {
			collectRefs(*schema.Not)
		}
		for _, field := range schema.Properties {
			if field.Type != nil {
				collectRefs(*field.Type)
			}
		}
	}

	for _, m := range filteredIR.Modules {
		for _, op := range m.Operations {
			for _, params := range [][]ir.IRParam{op.PathParams, op.QueryParams, op.HeaderParams} {
				for _, param := range params {
					collectRefs(param.Schema)
				}
			}
			if op.RequestBody != nil {
				collectRefs(op.RequestBody.Schema)
			}
			collectRefs(op.Response.Schema)
		}
	}

	filtered := make([]ir.IRModelDef, 0)
	for _, md := range allModelDefs {
		if referenced[md.Name] {
			filtered = append(filtered, md)
		}
	}
	return filtered
}
