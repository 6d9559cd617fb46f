package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/meal-hub/internal/config"
	"github.com/fdg312/meal-hub/internal/userctx"
)

func testConfig(mode string, required bool) *config.Config {
	return &config.Config{
		AuthMode:      mode,
		AuthRequired:  required,
		JWTSecret:     "test-secret-key-for-testing-only",
		JWTIssuer:     "meal-hub-test",
		JWTTTLMinutes: 60,
	}
}

// echoIdentity writes the identity the middleware attached.
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	userID, _ := userctx.GetUserID(r.Context())
	familyID, _ := userctx.GetFamilyID(r.Context())
	w.Write([]byte(userID + "/" + familyID))
})

func TestSignInDevAndVerify(t *testing.T) {
	svc := NewService(testConfig(config.AuthModeDev, true))

	resp, err := svc.SignInDev(DevAuthRequest{UserID: "alice", FamilyID: "smiths"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	id, err := svc.VerifyJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "alice", FamilyID: "smiths"}, id)

	defaults, err := svc.SignInDev(DevAuthRequest{})
	require.NoError(t, err)
	assert.Equal(t, devUserID, defaults.UserID)
	assert.Equal(t, devFamilyID, defaults.FamilyID)
}

func TestSignInDevDisabled(t *testing.T) {
	svc := NewService(testConfig(config.AuthModeNone, false))
	_, err := svc.SignInDev(DevAuthRequest{})
	assert.ErrorIs(t, err, ErrDevAuthOff)
}

func TestVerifyJWT_Rejects(t *testing.T) {
	cfg := testConfig(config.AuthModeDev, true)
	svc := NewService(cfg)

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": sign("other", jwt.MapClaims{"sub": "u", "iss": cfg.JWTIssuer, "exp": future}),
		"wrong issuer": sign(cfg.JWTSecret, jwt.MapClaims{"sub": "u", "iss": "someone-else", "exp": future}),
		"expired":      sign(cfg.JWTSecret, jwt.MapClaims{"sub": "u", "iss": cfg.JWTIssuer, "exp": time.Now().Add(-time.Hour).Unix()}),
		"no subject":   sign(cfg.JWTSecret, jwt.MapClaims{"iss": cfg.JWTIssuer, "exp": future}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyJWT(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	noFamily := sign(cfg.JWTSecret, jwt.MapClaims{"sub": "bob", "iss": cfg.JWTIssuer, "exp": future})
	id, err := svc.VerifyJWT(noFamily)
	require.NoError(t, err)
	assert.Equal(t, "bob", id.FamilyID)
}

func TestMiddleware(t *testing.T) {
	devCfg := testConfig(config.AuthModeDev, true)
	token, err := NewService(devCfg).SignInDev(DevAuthRequest{UserID: "alice", FamilyID: "smiths"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		cfg        *config.Config
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"none mode uses defaults", testConfig(config.AuthModeNone, false), "/v1/plans", "Bearer junk", http.StatusOK, "default/default"},
		{"valid token", devCfg, "/v1/plans", "Bearer " + token.AccessToken, http.StatusOK, "alice/smiths"},
		{"missing token when required", devCfg, "/v1/plans", "", http.StatusUnauthorized, ""},
		{"missing token when optional", testConfig(config.AuthModeDev, false), "/v1/plans", "", http.StatusOK, "default/default"},
		{"bad scheme", devCfg, "/v1/plans", "Basic abc", http.StatusUnauthorized, ""},
		{"public path", devCfg, "/healthz", "", http.StatusOK, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewMiddleware(tt.cfg, NewService(tt.cfg))
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			mw.Authenticate(echoIdentity).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestHandleDevAuth(t *testing.T) {
	h := NewHandlers(NewService(testConfig(config.AuthModeDev, true)))

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/dev", bytes.NewBufferString(`{"family_id":"smiths"}`))
	w := httptest.NewRecorder()
	h.HandleDevAuth(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	var resp DevAuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "smiths", resp.FamilyID)
	assert.NotEmpty(t, resp.AccessToken)

	req = httptest.NewRequest(http.MethodPost, "/v1/auth/dev", nil)
	w = httptest.NewRecorder()
	h.HandleDevAuth(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "empty body is allowed")

	off := NewHandlers(NewService(testConfig(config.AuthModeNone, false)))
	w = httptest.NewRecorder()
	off.HandleDevAuth(w, httptest.NewRequest(http.MethodPost, "/v1/auth/dev", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
