package openapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const widgetSpec = `openapi: 3.0.3
info:
  title: Widget API
  version: 1.2.0
paths:
  /widgets/{id}:
    get:
      operationId: getWidget
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Widget'
components:
  schemas:
    Widget:
      type: object
      required: [id]
      properties:
        id:
          type: string
        created:
          type: string
          format: date
`

const swaggerSpec = `swagger: "2.0"
info:
  title: Legacy
  version: "0.1"
paths:
  /things:
    get:
      operationId: listThings
      produces: [application/json]
      responses:
        "200":
          description: ok
          schema:
            type: array
            items:
              $ref: '#/definitions/Thing'
definitions:
  Thing:
    type: object
    properties:
      name:
        type: string
`

func writeSpec(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_OpenAPI3(t *testing.T) {
	doc, err := Load(context.Background(), writeSpec(t, widgetSpec))
	require.NoError(t, err)

	require.NotNil(t, doc.Components)
	widget := doc.Components.Schemas["Widget"]
	require.NotNil(t, widget)
	require.NotNil(t, widget.Value)
	assert.Contains(t, widget.Value.Properties, "created")

	op := doc.Paths.Find("/widgets/{id}").Get
	require.NotNil(t, op)
	resp := op.Responses.Status(200)
	require.NotNil(t, resp)
	ref := resp.Value.Content.Get("application/json").Schema
	assert.Equal(t, "#/components/schemas/Widget", ref.Ref)
	assert.NotNil(t, ref.Value, "internal refs are resolved")
}

func TestLoad_Swagger2IsConverted(t *testing.T) {
	doc, err := Load(context.Background(), writeSpec(t, swaggerSpec))
	require.NoError(t, err)
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	require.NotNil(t, doc.Components)
	require.Contains(t, doc.Components.Schemas, "Thing")
	assert.NotNil(t, doc.Components.Schemas["Thing"].Value)
}

func TestLoad_FromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(widgetSpec))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/openapi.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Widget API", doc.Info.Title)
}

func TestLoad_Errors(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	tests := []struct {
		name  string
		input string
		code  ErrorCode
	}{
		{"empty input", "", InputError},
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml"), InputError},
		{"no version", writeSpec(t, "info: {title: x, version: '1'}\n"), ParseError},
		{"unsupported version", writeSpec(t, "openapi: 4.0.0\ninfo: {title: x, version: '1'}\npaths: {}\n"), ParseError},
		{"not yaml", writeSpec(t, "openapi: [\n"), ParseError},
		{"http failure", notFound.URL + "/spec.yaml", NetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.input)
			require.Error(t, err)
			var se *SpecError
			require.True(t, errors.As(err, &se), "want *SpecError, got %T", err)
			assert.Equal(t, tt.code, se.Code)
		})
	}
}

func TestLoadAndValidate(t *testing.T) {
	_, res, err := LoadAndValidate(context.Background(), writeSpec(t, widgetSpec))
	require.NoError(t, err)
	assert.True(t, res.Valid())
	assert.Equal(t, "Widget API", res.Title)
	assert.Equal(t, "1.2.0", res.Version)
	assert.Equal(t, "3.0.3", res.OpenAPIVersion)
}

func TestValidate_InvalidDocumentIsReportedNotFatal(t *testing.T) {
	doc, res, err := LoadAndValidate(context.Background(), writeSpec(t, "openapi: 3.0.3\npaths: {}\n"))
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.False(t, res.Valid())
	assert.Error(t, res.Err)

	assert.Error(t, Validate(context.Background(), nil).Err)
}
