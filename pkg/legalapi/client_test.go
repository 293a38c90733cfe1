package legalapi

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gtonic/legalapi-cli/pkg/apierror"
	"github.com/gtonic/legalapi-cli/pkg/rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSpec = `{
  "openapi": "3.0.0",
  "info": {"title": "legal-api", "version": "1.0.0"},
  "paths": {
    "/efrsb/notices": {
      "get": {
        "operationId": "searchEFRSBNotices",
        "parameters": [{"name": "inn", "in": "query", "schema": {"type": "string"}}],
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/efrsb/debtors/{id}": {
      "get": {
        "operationId": "getEFRSBDebtor",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(testSpec))
	})

	mux.HandleFunc("/efrsb/notices", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 1, "items": [{"guid": "n-1", "inn": "` + r.URL.Query().Get("inn") + `"}]}`))
	})

	mux.HandleFunc("/efrsb/debtors/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "` + r.PathValue("id") + `", "name": "OOO Romashka"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	server := newTestServer(t)

	client, err := New(t.Context(), "secret", WithBaseURL(server.URL))
	require.NoError(t, err)

	return client
}

func TestNewUnreachableSchema(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	_, err := New(t.Context(), "secret", WithBaseURL(server.URL))
	require.Error(t, err)

	assert.True(t, apierror.IsKind(err, apierror.KindUnreachableSchema))
}

func TestOperations(t *testing.T) {
	client := newTestClient(t)

	assert.Equal(t, []string{"getEFRSBDebtor", "searchEFRSBNotices"}, client.Operations())
	assert.Zero(t, client.Collisions())
}

func TestCallByID(t *testing.T) {
	client := newTestClient(t)

	result, err := client.Call(t.Context(), "searchEFRSBNotices", rest.Args{
		Query: url.Values{"inn": {"7707083893"}},
	})
	require.NoError(t, err)

	value, err := result.Value()
	require.NoError(t, err)

	data, ok := value.(map[string]any)
	require.True(t, ok)

	assert.Equal(t, float64(1), data["total"])
}

func TestCallUnknownOperation(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Call(t.Context(), "noSuchOperation", rest.Args{})
	require.Error(t, err)

	assert.True(t, apierror.IsKind(err, apierror.KindUnknownOperation))
	assert.Contains(t, err.Error(), "noSuchOperation")
}

func TestInvoke(t *testing.T) {
	client := newTestClient(t)

	call, ok := client.Invoke("getEFRSBDebtor")
	require.True(t, ok)

	result, err := call(t.Context(), rest.Args{
		Path: map[string]string{"id": "12345"},
	})
	require.NoError(t, err)

	var debtor struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	require.NoError(t, result.Decode(&debtor))

	assert.Equal(t, "12345", debtor.ID)
	assert.Equal(t, "OOO Romashka", debtor.Name)

	_, ok = client.Invoke("noSuchOperation")
	assert.False(t, ok)
}

func TestNoticesResolvesByKeywords(t *testing.T) {
	client := newTestClient(t)

	// the keyword set ("efrsb", "notice", ...) must land on searchEFRSBNotices
	result, err := client.Notices(t.Context(), url.Values{"inn": {"7707083893"}})
	require.NoError(t, err)

	value, err := result.Value()
	require.NoError(t, err)

	items := value.(map[string]any)["items"].([]any)
	require.Len(t, items, 1)

	assert.Equal(t, "7707083893", items[0].(map[string]any)["inn"])
}

func TestDebtorResolvesByKeywords(t *testing.T) {
	client := newTestClient(t)

	result, err := client.Debtor(t.Context(), rest.Args{
		Path: map[string]string{"id": "12345"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.Status)
}

func TestEFRSBMethods(t *testing.T) {
	client := newTestClient(t)

	methods := client.EFRSBMethods()
	require.Len(t, methods, 2)
}
