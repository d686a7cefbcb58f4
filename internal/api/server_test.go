// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resource-workers/internal/catalog"
	"resource-workers/internal/common/logger"
	"resource-workers/internal/matching"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Fixtures
// ==========================

const testGuide = `{
  "version": "1.4",
  "last_updated": "2025-06-01",
  "resources": [
    {
      "basic_info": {
        "id": "legal-aid",
        "title_en": "Legal Aid Center",
        "title_es": "Centro de Ayuda Legal",
        "category": "Legal",
        "languages": ["en", "es"],
        "contact_phone": "864-555-0100"
      },
      "eligibility": {"service_area": {"zipcodes": ["29605"]}},
      "service_details": {"appointment_required": true, "walk_in_accepted": true}
    },
    {
      "basic_info": {
        "id": "hub",
        "title_en": "Community Hub",
        "title_es": "Centro Comunitario",
        "category": "Multi Services",
        "languages": ["es"]
      },
      "eligibility": {"service_area": {"zipcodes": ["29650"]}}
    }
  ]
}`

type testEnv struct {
	store  *catalog.Store
	server *httptest.Server
}

func newTestEnv(t *testing.T, loaded bool) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)

	store := catalog.NewStore(&catalog.StaticSource{Label: "test", Document: []byte(testGuide)}, catalog.StoreOptions{}, log)
	if loaded {
		store.Refresh(context.Background())
	}
	engine := matching.NewEngine(store, matching.DefaultOptions(), log)

	srv := NewServer(engine, store, Options{DefaultMinScore: 0.5, DefaultMaxResults: 10}, log)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return &testEnv{store: store, server: ts}
}

func (e *testEnv) post(t *testing.T, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", "req-1")
	return do(t, req)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func errorCode(body map[string]interface{}) string {
	e, _ := body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func matchIDs(body map[string]interface{}) []string {
	ids := []string{}
	matches, _ := body["matches"].([]interface{})
	for _, m := range matches {
		res := m.(map[string]interface{})["resource"].(map[string]interface{})
		ids = append(ids, res["id"].(string))
	}
	return ids
}

// ==========================
// Probes
// ==========================

func TestProbes(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, body = env.get(t, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "loading", body["status"])

	env.store.Refresh(context.Background())

	resp, body = env.get(t, "/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, true)

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ==========================
// Catalog
// ==========================

func TestServeCatalog(t *testing.T) {
	t.Run("not loaded", func(t *testing.T) {
		env := newTestEnv(t, false)
		resp, body := env.get(t, "/v1/catalog")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "MATCHING_UNAVAILABLE", errorCode(body))
	})

	t.Run("loaded", func(t *testing.T) {
		env := newTestEnv(t, true)
		resp, body := env.get(t, "/v1/catalog")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "1.4", body["version"])
		assert.Equal(t, "test", body["source"])
		assert.Equal(t, float64(2), body["resourceCount"])
		assert.Equal(t, false, body["fallback"])
	})
}

// ==========================
// Weighted Match
// ==========================

func TestHandleMatch(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantIDs    []string
		wantCode   string
		validate   func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "spanish legal request",
			body:       `{"language":"es","category":"Legal","zipcode":"29605"}`,
			wantStatus: http.StatusOK,
			wantIDs:    []string{"legal-aid", "hub"},
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, matching.ModeWeighted, body["mode"])
				assert.True(t, strings.HasPrefix(body["responseText"].(string), "Aquí hay algunos recursos"))
				assert.Contains(t, body["responseText"], "Centro de Ayuda Legal")
			},
		},
		{
			name:       "empty body matches everything above the default threshold",
			body:       ``,
			wantStatus: http.StatusOK,
			wantIDs:    []string{"legal-aid", "hub"},
		},
		{
			name:       "max results",
			body:       `{"maxResults":1}`,
			wantStatus: http.StatusOK,
			wantIDs:    []string{"legal-aid"},
		},
		{
			name:       "threshold filters everything",
			body:       `{"language":"fr","minScore":0.95}`,
			wantStatus: http.StatusOK,
			wantIDs:    []string{},
			validate: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Sorry, I couldn't find any resources matching your search.", body["responseText"])
			},
		},
		{
			name:       "negative age",
			body:       `{"age":-1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_MATCH_REQUEST",
			validate: func(t *testing.T, body map[string]interface{}) {
				e := body["error"].(map[string]interface{})
				assert.NotEmpty(t, e["errors"])
				assert.Equal(t, "req-1", e["requestId"])
			},
		},
		{
			name:       "malformed json",
			body:       `{"language":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_MATCH_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.post(t, "/v1/resources/match", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(body))
			} else {
				assert.Equal(t, tt.wantIDs, matchIDs(body))
				assert.Equal(t, float64(len(tt.wantIDs)), body["matchCount"])
				_, err := uuid.Parse(body["requestId"].(string))
				assert.NoError(t, err)
			}
			if tt.validate != nil {
				tt.validate(t, body)
			}
		})
	}
}

func TestHandleMatch_Unavailable(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.post(t, "/v1/resources/match", `{"language":"en"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "MATCHING_UNAVAILABLE", errorCode(body))
}

// ==========================
// Direct Filter
// ==========================

func TestHandleFilter(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name     string
		body     string
		wantMode string
		wantIDs  []string
	}{
		{
			name:     "strict",
			body:     `{"language":"en","category":"Legal","zipcode":"29605"}`,
			wantMode: matching.FilterStrict,
			wantIDs:  []string{"legal-aid"},
		},
		{
			name:     "relaxed",
			body:     `{"language":"Español","category":"Housing","zipcode":"11111"}`,
			wantMode: matching.FilterRelaxed,
			wantIDs:  []string{"hub"},
		},
		{
			name:     "none",
			body:     `{"language":"fr"}`,
			wantMode: matching.FilterNone,
			wantIDs:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.post(t, "/v1/resources/filter", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, matching.ModeFilter, body["mode"])
			assert.Equal(t, tt.wantMode, body["filterMode"])
			assert.Equal(t, tt.wantIDs, matchIDs(body))
		})
	}

	resp, body := env.post(t, "/v1/resources/filter", `{"latitude":"north"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_MATCH_REQUEST", errorCode(body))
}
