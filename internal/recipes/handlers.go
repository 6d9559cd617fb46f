package recipes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/apperr"
	"github.com/fdg312/meal-hub/internal/userctx"
)

// Handler handles HTTP requests for recipes.
type Handler struct {
	service *Service
}

// NewHandler creates a new recipes handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /v1/recipes?q=&tag=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.service.List(r.Context(), familyID(r), q.Get("q"), q.Get("tag"))
	if err != nil {
		writeServiceError(w, err, "Failed to list recipes")
		return
	}
	writeJSON(w, http.StatusOK, ListRecipesResponse{Recipes: list})
}

// HandleCreate handles POST /v1/recipes
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in RecipeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	userID, _ := userctx.GetUserID(r.Context())
	recipe, err := h.service.Create(r.Context(), familyID(r), userID, in)
	if err != nil {
		writeServiceError(w, err, "Failed to create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// HandleGet handles GET /v1/recipes/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.service.Get(r.Context(), familyID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "Failed to get recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// HandleUpdate handles PATCH /v1/recipes/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	recipe, err := h.service.Update(r.Context(), familyID(r), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, err, "Failed to update recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// HandleDelete handles DELETE /v1/recipes/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), familyID(r), r.PathValue("id")); err != nil {
		writeServiceError(w, err, "Failed to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePutPhoto handles PUT /v1/recipes/{id}/photo with the raw image as body.
func (h *Handler) HandlePutPhoto(w http.ResponseWriter, r *http.Request) {
	limit := h.service.maxPhotoBytes + 1
	data, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Failed to read photo")
		return
	}

	recipe, err := h.service.PutPhoto(r.Context(), familyID(r), r.PathValue("id"), data, r.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(w, err, "Failed to store recipe photo")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// HandleGetPhoto handles GET /v1/recipes/{id}/photo
func (h *Handler) HandleGetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.service.Photo(r.Context(), familyID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "Failed to get recipe photo")
		return
	}

	if photo.URL != "" {
		writeJSON(w, http.StatusOK, PhotoURLResponse{URL: photo.URL, ExpiresIn: photo.ExpiresIn})
		return
	}
	w.Header().Set("Content-Type", photo.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(photo.Data)
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
