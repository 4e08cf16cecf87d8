package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indcat/internal/catalog"
	"indcat/internal/core"
	"indcat/internal/languages"
	"indcat/internal/store"
	"indcat/internal/userconfig"
)

// stubSource implements catalog.MetadataSource for handler tests.
type stubSource struct {
	mu      sync.Mutex
	records []core.RawRecord
	runs    int
}

func (s *stubSource) Discover(ctx context.Context, credential, category string, page int) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page == 1 {
		s.runs++
		return s.records, nil
	}
	return nil, nil
}

func (s *stubSource) Enrich(ctx context.Context, credential string, id int64) (core.Enrichment, error) {
	return core.Enrichment{Available: true, ExternalID: fmt.Sprintf("tt%07d", id)}, nil
}

func (s *stubSource) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

type testEnv struct {
	server *Server
	store  *store.MemoryStore
	source *stubSource
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	src := &stubSource{}
	st := store.NewMemoryStore()
	pipeline := catalog.NewPipeline(src, catalog.NewBuilder("https://image.tmdb.org/t/p"), 999, nil)
	service := catalog.NewService(st, pipeline, catalog.ServiceConfig{
		PageSize:             100,
		EmptyRetryInterval:   15 * time.Minute,
		MaxConcurrentFetches: 2,
	}, nil)

	return &testEnv{
		server: New(service, languages.Defaults(), nil),
		store:  st,
		source: src,
	}
}

func (env *testEnv) do(method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func encodedConfig(t *testing.T, apiKey string, langs ...string) string {
	t.Helper()
	encoded, err := userconfig.Encode(&userconfig.UserConfig{APIKey: apiKey, Languages: langs})
	require.NoError(t, err)
	return encoded
}

func TestHomeRedirectsToConfigure(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/", "")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/configure", rec.Header().Get("Location"))
}

func TestConfigureForm(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/configure", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="api_key"`)
	assert.Contains(t, body, "Malayalam")
	assert.Contains(t, body, "Tamil")
}

func TestConfigureSubmit(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{}
	form.Set("api_key", " tmdb-key-123 ")
	form.Add("languages", "ml")
	form.Add("languages", "ta")

	rec := env.do(http.MethodPost, "/configure", form.Encode())
	require.Equal(t, http.StatusFound, rec.Code)

	location := rec.Header().Get("Location")
	require.True(t, strings.HasSuffix(location, "/manifest.json"), "unexpected redirect %q", location)

	encoded := strings.TrimSuffix(strings.TrimPrefix(location, "/"), "/manifest.json")
	cfg, err := userconfig.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "tmdb-key-123", cfg.APIKey, "api key must be trimmed")
	assert.Equal(t, []string{"ml", "ta"}, cfg.Languages)
}

func TestConfigureSubmitDefaultsLanguages(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{}
	form.Set("api_key", "tmdb-key-123")

	rec := env.do(http.MethodPost, "/configure", form.Encode())
	require.Equal(t, http.StatusFound, rec.Code)

	encoded := strings.TrimSuffix(strings.TrimPrefix(rec.Header().Get("Location"), "/"), "/manifest.json")
	cfg, err := userconfig.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, userconfig.DefaultLanguages, cfg.Languages)
}

func TestConfigureSubmitRequiresAPIKey(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/configure", "api_key=")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDefaultManifest(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/manifest.json", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var m Manifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "org.indcat", m.ID)
	assert.True(t, m.BehaviorHints.ConfigurationRequired)
	assert.Empty(t, m.Catalogs)
}

func TestManifest(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/"+encodedConfig(t, "tmdb-key-123", "ml", "hi")+"/manifest.json", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var m Manifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, []string{"catalog"}, m.Resources)
	assert.Equal(t, []string{"tt"}, m.IDPrefixes)
	assert.False(t, m.BehaviorHints.ConfigurationRequired)

	require.Len(t, m.Catalogs, 2)
	assert.Equal(t, "ml", m.Catalogs[0].ID)
	assert.Equal(t, "Malayalam", m.Catalogs[0].Name)
	assert.Equal(t, "hi", m.Catalogs[1].ID)
	assert.Equal(t, "Hindi", m.Catalogs[1].Name)
}

func TestManifestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/bm90LWpzb24/manifest.json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogServedFromCache(t *testing.T) {
	env := newTestEnv(t)

	items := make([]core.CatalogItem, 120)
	for i := range items {
		items[i] = core.CatalogItem{ID: fmt.Sprintf("tt%07d", i), Type: "movie", Name: fmt.Sprintf("Movie %d", i)}
	}
	key := core.NewCacheKey("tmdb-key-123", "ml")
	require.NoError(t, env.store.Put(context.Background(), key, &store.Entry{Items: items, FetchedAt: time.Now()}))

	cfg := encodedConfig(t, "tmdb-key-123", "ml")

	t.Run("FirstPage", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/"+cfg+"/catalog/movie/ml.json", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp metasResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Metas, 100)
		assert.Equal(t, "tt0000000", resp.Metas[0].ID)
	})

	t.Run("SkipPaginates", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/"+cfg+"/catalog/movie/ml.json?skip=100", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp metasResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Metas, 20)
		assert.Equal(t, "tt0000100", resp.Metas[0].ID)
	})

	t.Run("SkipBeyondLengthIsEmptyNotError", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/"+cfg+"/catalog/movie/ml.json?skip=150", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp metasResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Metas)
		assert.Empty(t, resp.Metas)
	})

	t.Run("MalformedSkipReadsAsZero", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/"+cfg+"/catalog/movie/ml.json?skip=lots", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp metasResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Metas, 100)
	})
}

func TestCatalogMissReturnsEmptyAndPopulates(t *testing.T) {
	env := newTestEnv(t)
	env.source.records = []core.RawRecord{
		{ID: 1, Title: "One"},
		{ID: 2, Title: "Two"},
	}

	cfg := encodedConfig(t, "tmdb-key-123", "ml")

	rec := env.do(http.MethodGet, "/"+cfg+"/catalog/movie/ml.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp metasResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Metas)

	require.Eventually(t, func() bool {
		entry, _ := env.store.Get(context.Background(), core.NewCacheKey("tmdb-key-123", "ml"))
		return entry != nil && len(entry.Items) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCatalogInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/bm90LWpzb24/catalog/movie/ml.json", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp metasResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Metas)
	assert.Empty(t, resp.Metas)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.source.records = []core.RawRecord{{ID: 1, Title: "One"}}

	cfg := encodedConfig(t, "tmdb-key-123", "ml", "hi")

	rec := env.do(http.MethodGet, "/"+cfg+"/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh started in background")

	require.Eventually(t, func() bool {
		return env.source.runCount() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/bm90LWpzb24/refresh", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
