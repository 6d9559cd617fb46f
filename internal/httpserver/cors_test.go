package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdg312/meal-hub/internal/config"
)

func TestCORSMiddleware(t *testing.T) {
	cfg := &config.Config{
		CORSAllowedOrigins:   []string{"https://app.example.com"},
		CORSAllowCredentials: true,
	}

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantInner   bool
		wantAllowed string
	}{
		{"preflight allowed", http.MethodOptions, "https://app.example.com", http.StatusNoContent, false, "https://app.example.com"},
		{"preflight disallowed", http.MethodOptions, "https://evil.com", http.StatusNoContent, false, ""},
		{"normal allowed", http.MethodGet, "https://app.example.com", http.StatusOK, true, "https://app.example.com"},
		{"normal disallowed", http.MethodGet, "https://evil.com", http.StatusOK, true, ""},
		{"no origin", http.MethodGet, "", http.StatusOK, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			innerCalled := false
			handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				innerCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/v1/plans", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if innerCalled != tt.wantInner {
				t.Errorf("inner handler called = %v, want %v", innerCalled, tt.wantInner)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("expected Allow-Origin %q, got %q", tt.wantAllowed, got)
			}
			if tt.wantAllowed != "" && rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("expected Allow-Credentials=true")
			}
		})
	}
}

func TestCORSPreflightAllowsPut(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"https://app.example.com"}}
	handler := CORSMiddleware(cfg, http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/plans/p1/assignments", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,PUT,PATCH,DELETE,OPTIONS" {
		t.Errorf("unexpected Allow-Methods %q", got)
	}
	if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("expected Max-Age=600, got %q", got)
	}
}

func TestCORSPolicyIgnoresBlankOrigins(t *testing.T) {
	p := newCORSPolicy(&config.Config{CORSAllowedOrigins: []string{" https://a.example ", "", "  "}})

	assert.True(t, p.allows("https://a.example"))
	assert.False(t, p.allows(""))
	assert.Len(t, p.origins, 1)
}

func TestCORSOptionsWithoutOriginReachesRouter(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"https://app.example.com"}}
	reached := false
	handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/plans", nil))

	assert.True(t, reached)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Methods"))
}
