package openapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gtonic/legalapi-cli/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonSpec = `{
  "openapi": "3.0.0",
  "info": {"title": "legal-api", "version": "1.0.0"},
  "paths": {
    "/efrsb/notices": {
      "get": {"operationId": "searchEFRSBNotices", "responses": {"200": {"description": "ok"}}}
    }
  }
}`

const yamlSpec = `openapi: 3.0.0
info:
  title: legal-api
  version: 1.0.0
paths:
  /efrsb/notices:
    get:
      operationId: searchEFRSBNotices
      responses:
        "200":
          description: ok
`

const v2Spec = `{
  "swagger": "2.0",
  "info": {"title": "legal-api", "version": "1.0.0"},
  "paths": {
    "/efrsb/notices": {
      "get": {"operationId": "searchEFRSBNotices", "responses": {"200": {"description": "ok"}}}
    }
  }
}`

func TestLoadJSON(t *testing.T) {
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/openapi.json", r.URL.Path)

		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(jsonSpec))
	}))
	defer server.Close()

	doc, err := Load(t.Context(), server.URL, WithBearer("secret"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	require.NotNil(t, doc.Paths)
	assert.NotNil(t, doc.Paths.Find("/efrsb/notices"))
}

func TestLoadFallsBackToYAML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/openapi.json" {
			http.NotFound(w, r)
			return
		}

		require.Equal(t, "/openapi.yaml", r.URL.Path)

		w.Header().Set("Content-Type", "application/yaml")
		w.Write([]byte(yamlSpec))
	}))
	defer server.Close()

	doc, err := Load(t.Context(), server.URL)
	require.NoError(t, err)

	assert.NotNil(t, doc.Paths.Find("/efrsb/notices"))
}

func TestLoadConvertsV2(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.json" {
			http.NotFound(w, r)
			return
		}

		w.Write([]byte(v2Spec))
	}))
	defer server.Close()

	doc, err := Load(t.Context(), server.URL)
	require.NoError(t, err)

	assert.NotNil(t, doc.Paths.Find("/efrsb/notices"))
}

func TestLoadUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := Load(t.Context(), server.URL)
	require.Error(t, err)

	assert.True(t, apierror.IsKind(err, apierror.KindUnreachableSchema))
	assert.Contains(t, err.Error(), "/openapi.json")
	assert.Contains(t, err.Error(), "/openapi.yaml")
}

func TestLoadUnsupportedFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a schema</html>"))
	}))
	defer server.Close()

	_, err := Load(t.Context(), server.URL)
	require.Error(t, err)

	assert.True(t, apierror.IsKind(err, apierror.KindUnsupportedFormat))
}
