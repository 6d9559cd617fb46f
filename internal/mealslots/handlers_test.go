package mealslots

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/meal-hub/internal/userctx"
)

func TestHandlers(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/meal-slots", h.HandleList)
	mux.HandleFunc("POST /v1/meal-slots", h.HandleCreate)
	mux.HandleFunc("DELETE /v1/meal-slots/{id}", h.HandleDelete)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req = req.WithContext(userctx.WithIdentity(req.Context(), "user-1", "fam-1"))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "/v1/meal-slots", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var list ListSlotsResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Slots) != 4 {
		t.Errorf("expected 4 default slots, got %d", len(list.Slots))
	}

	w = do(http.MethodPost, "/v1/meal-slots", `{"name":"Brunch"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d. Response body: %s", w.Code, w.Body.String())
	}

	w = do(http.MethodDelete, "/v1/meal-slots/breakfast", "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409 deleting a default slot, got %d", w.Code)
	}

	w = do(http.MethodPost, "/v1/meal-slots", `{`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid payload, got %d", w.Code)
	}
}
