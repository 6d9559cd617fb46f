package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fdg312/meal-hub/internal/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrDevAuthOff   = errors.New("dev auth is disabled")
)

const (
	devUserID   = "dev-user"
	devFamilyID = "dev-family"
)

// familyClaim carries the family a token acts for.
const familyClaim = "fam"

// Service сервис авторизации
type Service struct {
	config *config.Config
	now    func() time.Time
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg, now: time.Now}
}

// SignInDev issues a token for any identity. Only available with AUTH_MODE=dev.
func (s *Service) SignInDev(req DevAuthRequest) (*DevAuthResponse, error) {
	if s.config.AuthMode != config.AuthModeDev {
		return nil, ErrDevAuthOff
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = devUserID
	}
	familyID := strings.TrimSpace(req.FamilyID)
	if familyID == "" {
		familyID = devFamilyID
	}

	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute
	accessToken, err := s.generateJWT(Identity{UserID: userID, FamilyID: familyID}, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dev JWT: %w", err)
	}

	return &DevAuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      userID,
		FamilyID:    familyID,
	}, nil
}

func (s *Service) generateJWT(id Identity, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":       id.UserID,
		familyClaim: id.FamilyID,
		"iss":       s.config.JWTIssuer,
		"exp":       now.Add(ttl).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT проверяет JWT токен. Если в токене нет claim семьи, семьёй
// считается сам пользователь (family id = user id).
func (s *Service) VerifyJWT(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(s.config.JWTIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}
	fam, _ := claims[familyClaim].(string)
	if fam == "" {
		fam = sub
	}
	return Identity{UserID: sub, FamilyID: fam}, nil
}
