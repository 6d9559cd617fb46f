package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-hub/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Port:     8080,
		AuthMode: config.AuthModeNone,
		Blob:     config.BlobConfig{Mode: config.BlobModeLocal},
	}
	srv, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func call(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	w := call(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "memory", resp["storage"])
	assert.Equal(t, config.BlobModeLocal, resp["blob"])
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	w := call(t, srv.Handler(), http.MethodPost, "/healthz", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	call(t, h, http.MethodGet, "/v1/plans", nil)
	w := call(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "mealhub_http_requests_total")
	assert.Contains(t, body, `route="GET /v1/plans"`)
	assert.Contains(t, body, "go_goroutines")
}

type planBody struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	StartDate    string             `json:"start_date"`
	MealSlots    []string           `json:"meal_slots"`
	Assignments  map[string]*string `json:"assignments"`
	IsTemplate   bool               `json:"is_template"`
	TemplateName *string            `json:"template_name"`
	IsActive     bool               `json:"is_active"`
}

func TestPlanTemplateFlow(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()
	today := time.Now().UTC().Format("2006-01-02")

	w := call(t, h, http.MethodPost, "/v1/recipes", map[string]any{"name": "Pancakes", "servings": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = call(t, h, http.MethodPost, "/v1/plans", map[string]any{"name": "This month", "start_date": today})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plan := decode[planBody](t, w)
	assert.Equal(t, []string{"breakfast", "lunch", "dinner", "snacks"}, plan.MealSlots, "family defaults are used")
	assert.True(t, plan.IsActive)

	w = call(t, h, http.MethodPut, "/v1/plans/"+plan.ID+"/assignments", map[string]any{
		"date": today, "slot_id": "breakfast", "recipe_id": recipe.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assigned := decode[planBody](t, w)
	require.Len(t, assigned.Assignments, 1)

	w = call(t, h, http.MethodPost, "/v1/plans/"+plan.ID+"/template", map[string]any{"template_name": "Weekday mornings"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tmpl := decode[planBody](t, w)
	assert.True(t, tmpl.IsTemplate)
	assert.Len(t, tmpl.Assignments, 1)

	w = call(t, h, http.MethodGet, "/v1/templates/name-available?name=weekday%20MORNINGS", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[map[string]any](t, w)["available"].(bool))

	w = call(t, h, http.MethodPost, "/v1/templates/"+tmpl.ID+"/apply", map[string]any{"start_date": today})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	applied := decode[planBody](t, w)
	assert.False(t, applied.IsTemplate)
	assert.Equal(t, today, applied.StartDate)
	assert.Equal(t, "Meal Plan from Weekday mornings", applied.Name)
	for _, v := range applied.Assignments {
		require.NotNil(t, v)
		assert.Equal(t, recipe.ID, *v)
	}

	w = call(t, h, http.MethodGet, "/v1/templates/"+tmpl.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]int](t, w)
	assert.Equal(t, 1, stats["assigned_slots"])
	assert.Equal(t, 4, stats["meal_slots_count"])

	w = call(t, h, http.MethodDelete, "/v1/recipes/"+recipe.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "recipe is referenced by plans")

	w = call(t, h, http.MethodGet, "/v1/plans/"+plan.ID+"/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestUnknownPlanReturnsNotFound(t *testing.T) {
	srv := newTestServer(t)

	w := call(t, srv.Handler(), http.MethodGet, "/v1/plans/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	got []recordedRequest
}

func (f *fakeRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, recordedRequest{method, route, status})
}

func TestRequestLogMiddlewareRecordsRouteAndStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	mux.HandleFunc("GET /v1/implicit", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	rec := &fakeRecorder{}
	h := RequestLogMiddleware(rec, mux)

	for _, path := range []string{"/v1/things/42", "/v1/implicit", "/nope"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, rec.got, 3)
	assert.Equal(t, recordedRequest{"GET", "GET /v1/things/{id}", http.StatusTeapot}, rec.got[0])
	assert.Equal(t, recordedRequest{"GET", "GET /v1/implicit", http.StatusOK}, rec.got[1])
	assert.Equal(t, http.StatusNotFound, rec.got[2].status)
	assert.Empty(t, rec.got[2].route)
}
