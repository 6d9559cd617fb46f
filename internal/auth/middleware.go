package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/config"
	"github.com/fdg312/meal-hub/internal/userctx"
)

// Middleware проверяет авторизацию запросов
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{
		config:  cfg,
		service: service,
	}
}

// Authenticate puts the caller's identity into the request context.
//
// With AUTH_MODE=none every request acts for the default user and family.
// Otherwise a Bearer token is verified when present; without one the request
// is rejected if AUTH_REQUIRED is set and acts for the defaults if not.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if m.config.AuthMode == config.AuthModeNone {
			next.ServeHTTP(w, r.WithContext(defaultIdentity(r)))
			return
		}

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			if m.config.AuthRequired {
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(defaultIdentity(r)))
			return
		}

		id, err := m.authenticateHeader(authHeader)
		if err != nil {
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		log.Debug().Str("user_id", id.UserID).Str("family_id", id.FamilyID).Str("path", r.URL.Path).Msg("auth token accepted")
		next.ServeHTTP(w, r.WithContext(userctx.WithIdentity(r.Context(), id.UserID, id.FamilyID)))
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (Identity, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Identity{}, ErrInvalidToken
	}
	return m.service.VerifyJWT(strings.TrimSpace(parts[1]))
}

func defaultIdentity(r *http.Request) context.Context {
	return userctx.WithIdentity(r.Context(), userctx.DefaultUserID, userctx.DefaultFamilyID)
}

func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/metrics" || strings.HasPrefix(path, "/v1/auth/")
}
