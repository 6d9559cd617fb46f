package auth

// DevAuthRequest тело запроса dev-авторизации, все поля необязательны
type DevAuthRequest struct {
	UserID   string `json:"user_id"`
	FamilyID string `json:"family_id"`
}

// DevAuthResponse ответ на dev-авторизацию
type DevAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
	FamilyID    string `json:"family_id"`
}

// Identity is who a verified token acts for.
type Identity struct {
	UserID   string
	FamilyID string
}

// ErrorResponse формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
