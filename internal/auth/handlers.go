package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleDevAuth handles POST /v1/auth/dev. An empty body is allowed.
func (h *Handlers) HandleDevAuth(w http.ResponseWriter, r *http.Request) {
	var req DevAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON body")
		return
	}

	resp, err := h.service.SignInDev(req)
	if errors.Is(err, ErrDevAuthOff) {
		writeErrorResponse(w, http.StatusNotFound, "auth_disabled", "Dev auth is disabled")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("dev sign-in failed")
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	log.Info().Str("user_id", resp.UserID).Str("family_id", resp.FamilyID).Msg("dev token issued")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
