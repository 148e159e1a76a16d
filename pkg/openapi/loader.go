package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds the fetch of a remote document.
	HTTPTimeout time.Duration
	// AllowExternalRefs lets the loader follow $refs into other files or URLs.
	AllowExternalRefs bool
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout:       10 * time.Second,
		AllowExternalRefs: true,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithExternalRefs(allow bool) Option      { return func(s *Settings) { s.AllowExternalRefs = allow } }

var (
	openAPI3 = mustConstraint(">= 3.0.0-0, < 3.2.0-0")
	swagger2 = mustConstraint(">= 2.0.0-0, < 3.0.0-0")
)

// Load reads an interface description document from a local file path or an
// HTTP(S) URL and returns it with every internal reference resolved. Swagger 2.0
// input is converted to OpenAPI 3.
func Load(ctx context.Context, input string, opts ...Option) (*openapi3.T, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	location := input
	var (
		raw []byte
		uri *url.URL
		err error
	)
	if u, perr := url.Parse(input); perr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		uri = u
		raw, err = fetch(ctx, input, settings.HTTPTimeout)
		if err != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
	} else {
		location, err = filepath.Abs(input)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		raw, err = os.ReadFile(location)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", location, err), Location: location, Cause: err}
		}
		uri = &url.URL{Path: filepath.ToSlash(location)}
	}

	major, err := detectSpecVersion(raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = settings.AllowExternalRefs
	loader.Context = ctx

	switch major {
	case 3:
		doc, err := loader.LoadFromDataWithPath(raw, uri)
		if err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", location, err), Location: location, Cause: err}
		}
		return doc, nil
	default:
		doc, err := convertV2ToV3(raw)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert swagger 2.0 to openapi 3: %v", err), Location: location, Cause: err}
		}
		if err := loader.ResolveRefsIn(doc, uri); err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("resolve refs after conversion: %v", err), Location: location, Cause: err}
		}
		return doc, nil
	}
}

// LoadAndValidate loads the document and validates it. The returned error only
// reports load failures; validation problems are carried in the result.
func LoadAndValidate(ctx context.Context, input string, opts ...Option) (*openapi3.T, ValidationResult, error) {
	doc, err := Load(ctx, input, opts...)
	if err != nil {
		return nil, ValidationResult{}, err
	}
	return doc, Validate(ctx, doc), nil
}

// ValidateDocument loads and validates input, reporting either failure as an error.
func ValidateDocument(ctx context.Context, input string) error {
	_, res, err := LoadAndValidate(ctx, input)
	if err != nil {
		return err
	}
	return res.Err
}

// detectSpecVersion returns 3 for OpenAPI 3.0/3.1 and 2 for Swagger 2.0.
func detectSpecVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse spec: %w", err)
	}
	if s, ok := root["openapi"].(string); ok {
		v, err := semver.NewVersion(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("spec: invalid openapi version %q: %w", s, err)
		}
		if !openAPI3.Check(v) {
			return 0, fmt.Errorf("spec: unsupported openapi version %q (expected 3.0.x or 3.1.x)", s)
		}
		return 3, nil
	}
	if s, ok := root["swagger"].(string); ok {
		v, err := semver.NewVersion(strings.TrimSpace(s))
		if err == nil && swagger2.Check(v) {
			return 2, nil
		}
		return 0, fmt.Errorf("spec: unsupported swagger version %q (expected 2.0)", s)
	}
	return 0, fmt.Errorf("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

// convertV2ToV3 decodes YAML or JSON Swagger 2.0 bytes and converts them.
func convertV2ToV3(data []byte) (*openapi3.T, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(asJSON, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(resp.Body)
}

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}
