package mealslots

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/userctx"
)

// Handler handles HTTP requests for meal slot configuration.
type Handler struct {
	service *Service
}

// NewHandler creates a new meal slots handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /v1/meal-slots
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.List(r.Context(), familyID(r))
	if err != nil {
		writeServiceError(w, err, "Failed to list meal slots")
		return
	}
	writeJSON(w, http.StatusOK, ListSlotsResponse{Slots: slots})
}

// HandleCreate handles POST /v1/meal-slots
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	slot, err := h.service.Create(r.Context(), familyID(r), req.Name)
	if err != nil {
		writeServiceError(w, err, "Failed to create meal slot")
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

// HandleRename handles PATCH /v1/meal-slots/{id}
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req RenameSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	slot, err := h.service.Rename(r.Context(), familyID(r), r.PathValue("id"), req.Name)
	if err != nil {
		writeServiceError(w, err, "Failed to rename meal slot")
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

// HandleReorder handles PUT /v1/meal-slots/order
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	slots, err := h.service.Reorder(r.Context(), familyID(r), req.IDs)
	if err != nil {
		writeServiceError(w, err, "Failed to reorder meal slots")
		return
	}
	writeJSON(w, http.StatusOK, ListSlotsResponse{Slots: slots})
}

// HandleDelete handles DELETE /v1/meal-slots/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), familyID(r), r.PathValue("id")); err != nil {
		writeServiceError(w, err, "Failed to delete meal slot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func familyID(r *http.Request) string {
	if id, ok := userctx.GetFamilyID(r.Context()); ok {
		return id
	}
	return userctx.DefaultFamilyID
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var typed *apperr.Error
	if errors.As(err, &typed) {
		writeError(w, apperr.HTTPStatus(typed.Code), typed.Code, typed.Message)
		return
	}
	log.Error().Err(err).Msg(fallback)
	writeError(w, http.StatusInternalServerError, "internal_error", fallback)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
