package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/hobbyfinder/hobby"
	"yashubustudio/hobbyfinder/internal/config"
)

const catalogJSON = `[
  {"name": "Chess", "short": "Classic strategy board game", "interests": ["chess", "strategy"],
   "pref_indoor": 1, "creative": 0, "social": 1, "cost_level": 1, "time_hours": 2,
   "how_to_start": ["Learn the moves"], "cost_label": "Low", "difficulty": "Medium"},
  {"name": "Hiking", "short": "Walking mountain trails", "interests": ["outdoors"],
   "pref_indoor": -2, "social": -1, "cost_level": 2, "time_per_week_hours": 6},
  {"name": "Painting", "short": "Watercolor and acrylic art", "interests": ["art"],
   "pref_indoor": 1, "creative": 1, "social": 1, "cost_level": 3, "time_hours": 3}
]`

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) *Server {
	t.Helper()
	cat, err := hobby.ParseCatalog([]byte(catalogJSON))
	require.NoError(t, err)

	factory := func(context.Context) (hobby.Embedder, error) { return hobby.NewHashEmbedder(128), nil }
	idx := hobby.NewIndex(hobby.IndexOptions{Model: factory})
	svc := hobby.NewServiceFromCatalog(context.Background(), cat, hobby.ServiceOptions{Index: idx})
	t.Cleanup(func() { _ = svc.Close() })

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>Hobby Finder</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := config.Default().Server
	cfg.StaticDir = static
	if mutate != nil {
		mutate(&cfg)
	}
	return New(svc, cfg, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRecommend(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/recommend",
		`{"interest":"chess","environment":"indoor","social":"solo","budget":"low","time":"low","top_k":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body hobby.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, hobby.ModeHybrid, body.Mode)
	assert.True(t, body.Semantic)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "Chess", body.Results[0].Name)
	assert.Contains(t, body.Results[0].WhyFit, hobby.ReasonInterest)
	assert.Equal(t, []any{"Learn the moves"}, body.Results[0].HowToStart)
}

func TestRecommendEmptyBodyUsesDefaults(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/recommend", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body hobby.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Semantic)
	assert.Len(t, body.Results, 3)
}

func TestRecommendRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	tests := map[string]string{
		"malformed": `{"interest":`,
		"array":     `[1,2,3]`,
		"top_k":     `{"top_k": 1000}`,
		"interest":  `{"interest":"` + strings.Repeat("x", 600) + `"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/recommend", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code"`)
		})
	}
}

func TestHobbies(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/hobbies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []hobby.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 3)
	assert.Equal(t, "Hiking", body.Results[1].Name)
	assert.Equal(t, 6.0, body.Results[1].TimePerWeek)
	assert.Equal(t, "Unknown", body.Results[1].CostLevel)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/search?q=watercolor+art&k=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []hobby.SearchHit `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Painting", body.Results[0].Name)
	assert.Equal(t, 2, body.Results[0].Index)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/search", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/search?q=x&k=0", "").Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var h hobby.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 3, h.Hobbies)
	assert.True(t, h.Index.Enabled)
	assert.Equal(t, "hash-128", h.Index.ModelID)
}

func TestStaticAndIndex(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hobby Finder")

	rec = do(t, s, http.MethodGet, "/static/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")
}

func TestIndexMissing(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) { c.StaticDir = t.TempDir() })
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/api/health", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hobby_http_requests_total")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/health", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	out := httptest.NewRecorder()
	s.Handler().ServeHTTP(out, req)
	assert.Equal(t, "abc-123", out.Header().Get(requestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/recommend", nil)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) {
		c.RateLimitRequests = 2
		c.RateLimitWindow = time.Minute
	})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/health", "").Code)
	rec := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/metrics", "").Code, "only /api is limited")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodGet, "/api/recommend", "").Code)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, func(c *config.ServerConfig) {
		c.Host = "127.0.0.1"
		c.Port = 0
		c.ShutdownTimeout = time.Second
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRecommendNonFiniteCatalogValues(t *testing.T) {
	cat, err := hobby.ParseCatalog([]byte(`[
  {"name": "Chess", "interests": ["chess"], "cost_level": "NaN", "pref_indoor": "Infinity"},
  {"name": "Knitting"}
]`))
	require.NoError(t, err)
	svc := hobby.NewServiceFromCatalog(context.Background(), cat, hobby.ServiceOptions{
		Index: hobby.NewIndex(hobby.IndexOptions{}),
	})
	s := New(svc, config.Default().Server, zerolog.Nop())

	rec := do(t, s, http.MethodPost, "/api/recommend", `{"interest":"chess"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body hobby.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Results)
	assert.Equal(t, "Chess", body.Results[0].Name)
	assert.Equal(t, 4.0, body.Results[0].MatchScore)
}
