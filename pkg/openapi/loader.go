package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gtonic/legalapi-cli/pkg/apierror"

	"github.com/invopop/yaml"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
)

type loader struct {
	client *http.Client
	bearer string
}

type Option func(*loader)

func WithHTTPClient(client *http.Client) Option {
	return func(l *loader) {
		l.client = client
	}
}

func WithBearer(bearer string) Option {
	return func(l *loader) {
		l.bearer = bearer
	}
}

// Load fetches the interface description from its well-known locations under
// baseURL: /openapi.json first, /openapi.yaml as fallback. Construction-time
// only, so no retries here.
func Load(ctx context.Context, baseURL string, options ...Option) (*openapi3.T, error) {
	l := &loader{
		client: http.DefaultClient,
	}

	for _, o := range options {
		o(l)
	}

	jsonURL := strings.TrimRight(baseURL, "/") + "/openapi.json"
	yamlURL := strings.TrimRight(baseURL, "/") + "/openapi.yaml"

	var fetched bool

	if data, err := l.fetch(ctx, jsonURL, "application/json, */*"); err == nil {
		fetched = true

		if doc, err := parse(data); err == nil {
			return doc, nil
		}
	}

	if data, err := l.fetch(ctx, yamlURL, "application/yaml, */*"); err == nil {
		fetched = true

		if doc, err := parse(data); err == nil {
			return doc, nil
		}
	}

	if fetched {
		return nil, apierror.New(apierror.KindUnsupportedFormat, "schema document could not be decoded as OpenAPI JSON or YAML")
	}

	return nil, apierror.New(apierror.KindUnreachableSchema, "failed to load schema from %s or %s", jsonURL, yamlURL)
}

func (l *loader) fetch(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", accept)

	if l.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+l.bearer)
	}

	resp, err := l.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func parse(data []byte) (*openapi3.T, error) {
	// v2 documents carry "swagger" instead of "openapi" and must go through
	// the conversion path
	if doc, err := parseV3(data); err == nil && doc.OpenAPI != "" && doc.Paths != nil {
		return doc, nil
	}

	if doc, err := parseV2(data); err == nil && doc.Paths != nil {
		return doc, nil
	}

	return nil, errors.New("failed to parse OpenAPI document")
}

func parseV3(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	return loader.LoadFromData(data)
}

func parseV2(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc := new(openapi2.T)

	if err := json.Unmarshal(data, &doc); err == nil {
		return openapi2conv.ToV3WithLoader(doc, loader, nil)
	}

	if err := yaml.Unmarshal(data, &doc); err == nil {
		return openapi2conv.ToV3WithLoader(doc, loader, nil)
	}

	return nil, errors.New("failed to parse / convert OpenAPI v2 document")
}
