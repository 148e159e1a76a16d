package generator

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/contract-gen/pkg/config"
	"github.com/blimu-dev/contract-gen/pkg/ir"
)

const productsSpec = `
openapi: 3.0.3
info: {title: Products API, version: 1.2.0}
paths:
  /products:
    get:
      tags: [products]
      operationId: listProducts
      parameters:
        - {name: limit, in: query, schema: {type: integer}}
        - {name: cursor, in: query, required: true, schema: {type: string}}
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: {type: array, items: {$ref: '#/components/schemas/Product'}}
    post:
      tags: [products]
      requestBody:
        required: true
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Product'}
      responses:
        "201":
          description: created
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Product'}
  /products/{id}:
    parameters:
      - {name: id, in: path, required: true, schema: {type: string}}
    get:
      tags: [products]
      responses:
        "202": {description: accepted, content: {application/json: {schema: {type: string}}}}
        "204": {description: none}
    delete:
      tags: [admin]
      operationId: deleteProduct
      parameters:
        - {name: X-Request-Id, in: header, schema: {type: string}}
      responses:
        "204": {description: deleted}
  /{tenant}/health:
    get:
      operationId: health
      responses:
        default: {description: error}
components:
  schemas:
    Product:
      type: object
      required: [id]
      properties:
        id: {type: string}
        price: {$ref: '#/components/schemas/Money'}
    Money: {type: number}
    Orphan: {type: string}
`

func loadDoc(t *testing.T, src string) *openapi3.T {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(src))
	require.NoError(t, err)
	return doc
}

func findOp(t *testing.T, in ir.IR, module, route string) ir.IROperation {
	t.Helper()
	for _, m := range in.Modules {
		if m.Name != module {
			continue
		}
		for _, op := range m.Operations {
			if op.RouteName == route {
				return op
			}
		}
	}
	t.Fatalf("operation %s.%s not found", module, route)
	return ir.IROperation{}
}

func TestBuildIR_ModulesAndRouteNames(t *testing.T) {
	got := BuildIR(loadDoc(t, productsSpec), BuildOptions{})

	assert.Equal(t, "Products API", got.Title)
	assert.Equal(t, "1.2.0", got.Version)
	require.Len(t, got.Modules, 2)
	assert.Equal(t, MiscModule, got.Modules[0].Name)
	assert.Equal(t, "products", got.Modules[1].Name)

	var routes []string
	for _, op := range got.Modules[1].Operations {
		routes = append(routes, op.Method+" "+op.RouteName)
	}
	assert.Equal(t, []string{
		"GET ListProducts",
		"POST PostProducts",
		"GET GetProductsById",
		"DELETE DeleteProduct",
	}, routes)
	assert.Equal(t, "Health", got.Modules[0].Operations[0].RouteName)
}

func TestBuildIR_ModuleNameFirstTag(t *testing.T) {
	got := BuildIR(loadDoc(t, productsSpec), BuildOptions{ModuleNameFirstTag: true})

	var names []string
	for _, m := range got.Modules {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"admin", MiscModule, "products"}, names)
}

func TestBuildIR_Params(t *testing.T) {
	got := BuildIR(loadDoc(t, productsSpec), BuildOptions{})

	list := findOp(t, got, "products", "ListProducts")
	require.Len(t, list.QueryParams, 2)
	assert.Equal(t, "cursor", list.QueryParams[0].Name)
	assert.True(t, list.QueryParams[0].Required)
	assert.Equal(t, "limit", list.QueryParams[1].Name)
	assert.False(t, list.QueryParams[1].Required)

	del := findOp(t, got, "products", "DeleteProduct")
	require.Len(t, del.PathParams, 1, "path-level parameters are inherited")
	assert.Equal(t, "id", del.PathParams[0].Name)
	require.Len(t, del.HeaderParams, 1)
	assert.Equal(t, "X-Request-Id", del.HeaderParams[0].Name)
}

func TestBuildIR_BodiesAndResponses(t *testing.T) {
	got := BuildIR(loadDoc(t, productsSpec), BuildOptions{})

	list := findOp(t, got, "products", "ListProducts")
	assert.Nil(t, list.RequestBody)
	assert.Equal(t, "200", list.Response.Status)
	assert.Equal(t, ir.IRKindArray, list.Response.Schema.Kind)
	assert.Equal(t, "Product", list.Response.Schema.Items.Ref)

	create := findOp(t, got, "products", "PostProducts")
	require.NotNil(t, create.RequestBody)
	assert.True(t, create.RequestBody.Required)
	assert.Equal(t, "application/json", create.RequestBody.ContentType)
	assert.Equal(t, "Product", create.RequestBody.Schema.Ref)
	assert.Equal(t, "201", create.Response.Status)

	byID := findOp(t, got, "products", "GetProductsById")
	assert.Equal(t, "202", byID.Response.Status, "lowest 2xx wins when neither 200 nor 201 exist")
	assert.False(t, byID.Response.Void)

	del := findOp(t, got, "products", "DeleteProduct")
	assert.True(t, del.Response.Void)

	health := findOp(t, got, MiscModule, "Health")
	assert.False(t, health.Response.Void)
	assert.Equal(t, ir.IRKindUnknown, health.Response.Schema.Kind)
}

func TestBuildIR_ModelDefsSorted(t *testing.T) {
	got := BuildIR(loadDoc(t, productsSpec), BuildOptions{})

	var names []string
	for _, md := range got.ModelDefs {
		names = append(names, md.Name)
	}
	assert.Equal(t, []string{"Money", "Orphan", "Product"}, names)
}

func TestBuildIR_NilAndEmpty(t *testing.T) {
	assert.Empty(t, BuildIR(nil, BuildOptions{}).Modules)

	doc := loadDoc(t, "openapi: 3.0.3\ninfo: {title: Empty, version: '0'}\npaths: {}\n")
	got := BuildIR(doc, BuildOptions{})
	assert.Empty(t, got.Modules)
	assert.Empty(t, got.ModelDefs)
}

func TestAssignRouteNames_Deduplicates(t *testing.T) {
	ops := []ir.IROperation{
		{OperationID: "get-item", Method: "GET", Path: "/a"},
		{OperationID: "getItem", Method: "GET", Path: "/b"},
		{OperationID: "delete", Method: "DELETE", Path: "/c"},
		{Method: "GET", Path: "/items/{item_id}/parts"},
	}
	assignRouteNames(ops)

	assert.Equal(t, "GetItem", ops[0].RouteName)
	assert.Equal(t, "GetItem2", ops[1].RouteName)
	assert.Equal(t, "Delete", ops[2].RouteName)
	assert.Equal(t, "GetItemsByItemIdParts", ops[3].RouteName)
}

func TestModuleName(t *testing.T) {
	tests := []struct {
		path  string
		tags  []string
		byTag bool
		want  string
	}{
		{"/products/{id}", nil, false, "products"},
		{"/", nil, false, MiscModule},
		{"/{tenant}/orders", nil, false, MiscModule},
		{"/products", []string{"catalog"}, true, "catalog"},
		{"/products", nil, true, MiscModule},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, moduleName(tt.path, tt.tags, tt.byTag), "%s %v", tt.path, tt.tags)
	}
}

func TestFilterIR(t *testing.T) {
	full := BuildIR(loadDoc(t, productsSpec), BuildOptions{})

	same, err := FilterIR(full, config.Target{})
	require.NoError(t, err)
	assert.Equal(t, full, same)

	onlyAdmin, err := FilterIR(full, config.Target{IncludeTags: []string{"^admin$"}})
	require.NoError(t, err)
	require.Len(t, onlyAdmin.Modules, 1)
	assert.Len(t, onlyAdmin.Modules[0].Operations, 1)
	assert.Empty(t, onlyAdmin.ModelDefs)

	noAdmin, err := FilterIR(full, config.Target{ExcludeTags: []string{"admin", "misc"}})
	require.NoError(t, err)
	require.Len(t, noAdmin.Modules, 1)
	assert.Len(t, noAdmin.Modules[0].Operations, 3)
	var names []string
	for _, md := range noAdmin.ModelDefs {
		names = append(names, md.Name)
	}
	assert.Equal(t, []string{"Money", "Product"}, names, "transitively referenced models are kept")

	_, err = FilterIR(full, config.Target{IncludeTags: []string{"("}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid includeTags pattern")
}

const collidingSpec = `
openapi: 3.0.3
info: {title: Catalog, version: 1.0.0}
paths:
  /items:
    get:
      tags: [Products]
      operationId: get
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: {$ref: '#/components/schemas/product-list'}
    post:
      tags: [products]
      operationId: get
      responses: {"204": {description: none}}
  /items/{id}:
    get:
      tags: [products]
      operationId: get
      responses: {"204": {description: none}}
    put:
      tags: [products]
      operationId: get2
      responses: {"204": {description: none}}
components:
  schemas:
    product-list: {type: string}
    ProductList: {type: integer}
`

func TestBuildIR_ModelTypeNamesAreUnique(t *testing.T) {
	got := BuildIR(loadDoc(t, collidingSpec), BuildOptions{})
	require.Len(t, got.ModelDefs, 2)

	assert.Equal(t, "ProductList", got.ModelDefs[0].Name)
	assert.Equal(t, "ProductList", got.ModelDefs[0].TypeName)
	assert.Equal(t, "product-list", got.ModelDefs[1].Name)
	assert.Equal(t, "ProductList2", got.ModelDefs[1].TypeName)
}

func TestBuildIR_NamespacesAreUnique(t *testing.T) {
	got := BuildIR(loadDoc(t, collidingSpec), BuildOptions{ModuleNameFirstTag: true})
	require.Len(t, got.Modules, 2)

	assert.Equal(t, "Products", got.Modules[0].Name)
	assert.Equal(t, "Products", got.Modules[0].Namespace)
	assert.Equal(t, "products", got.Modules[1].Name)
	assert.Equal(t, "Products2", got.Modules[1].Namespace)

	filtered, err := FilterIR(got, config.Target{ExcludeTags: []string{"^Products$"}})
	require.NoError(t, err)
	require.Len(t, filtered.Modules, 1)
	assert.Equal(t, "Products2", filtered.Modules[0].Namespace)
}

func TestBuildIR_RouteNamesAvoidSuffixedOperationIDs(t *testing.T) {
	got := BuildIR(loadDoc(t, collidingSpec), BuildOptions{})
	require.Len(t, got.Modules, 1)

	var routes []string
	for _, op := range got.Modules[0].Operations {
		routes = append(routes, op.Method+" "+op.RouteName)
	}
	assert.Equal(t, []string{"GET Get", "POST Get2", "GET Get3", "PUT Get22"}, routes)
}
