package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/archivemark/urlcanon/internal/config"
	"github.com/archivemark/urlcanon/internal/dedup"
)

func newTestServer() *Server {
	cfg := config.Config{
		Server: config.ServerConfig{Port: 8080, TimeoutSeconds: 60},
		Store:  config.StoreConfig{Provider: "memory"},
	}
	return NewServer(dedup.NewMemoryStore(), cfg, zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}

func TestServer_Normalize(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(), http.MethodPost, "/v1/normalize",
		`{"url":"https://twitter.com/user/status/123?s=20&utm_source=x"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Canonical string `json:"canonical"`
		Platform  string `json:"platform"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "twitter.com/user/status/123", resp.Canonical)
	require.Equal(t, "twitter", resp.Platform)
}

func TestServer_Normalize_InvalidJSON(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(), http.MethodPost, "/v1/normalize", "{invalid")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Normalize_MissingURL(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(), http.MethodPost, "/v1/normalize", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "url required")
}

func TestServer_NormalizeBatch(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(), http.MethodPost, "/v1/normalize/batch",
		`{"urls":["https://www.youtube.com/watch?t=30&list=PL1&v=abc123","https://example.com/page?id=5&ref=home"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []struct {
			URL       string `json:"url"`
			Canonical string `json:"canonical"`
			Platform  string `json:"platform"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	require.Equal(t, "youtube.com/watch?v=abc123&list=PL1", resp.Results[0].Canonical)
	require.Equal(t, "youtube", resp.Results[0].Platform)
	require.Equal(t, "example.com/page?id=5", resp.Results[1].Canonical)
	require.Equal(t, "generic", resp.Results[1].Platform)
}

func TestServer_NormalizeBatch_Empty(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(), http.MethodPost, "/v1/normalize/batch", `{"urls":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "urls required")
}

func TestServer_Match(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(), http.MethodPost, "/v1/match",
		`{"url1":"https://x.com/a/status/1?s=20","url2":"https://twitter.com/a/status/1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Match      bool   `json:"match"`
		Canonical1 string `json:"canonical1"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Match)
	require.Equal(t, "twitter.com/a/status/1", resp.Canonical1)
}

func TestServer_Platform(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(), http.MethodPost, "/v1/platform",
		`{"url":"https://youtu.be/abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "youtube")
}

func TestServer_Records_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	s := newTestServer()

	rec := doJSON(t, s, http.MethodPost, "/v1/records",
		`{"url":"https://example.com/article?utm_source=mail"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"canonical":"example.com/article"`)

	// Same content under different noise comes back as a duplicate.
	rec = doJSON(t, s, http.MethodPost, "/v1/records",
		`{"url":"http://www.example.com/article?fbclid=abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"duplicate":true`)

	req := httptest.NewRequest(http.MethodGet,
		"/v1/records/lookup?url=https%3A%2F%2Fexample.com%2Farticle", nil)
	out := httptest.NewRecorder()
	s.Handler().ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code)
	require.Contains(t, out.Body.String(), `"canonical":"example.com/article"`)
}

func TestServer_Records_LookupMissing(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/records/lookup?url=https://example.com/none", nil)
	out := httptest.NewRecorder()
	s.Handler().ServeHTTP(out, req)
	require.Equal(t, http.StatusNotFound, out.Code)
}

func TestServer_APIKey(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Server: config.ServerConfig{Port: 8080, TimeoutSeconds: 60},
		Store:  config.StoreConfig{Provider: "memory"},
		Auth:   config.AuthConfig{Enabled: true, APIKey: "secret"},
	}
	s := NewServer(dedup.NewMemoryStore(), cfg, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1/normalize",
		bytes.NewBufferString(`{"url":"https://example.com"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/normalize",
		bytes.NewBufferString(`{"url":"https://example.com"}`))
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
