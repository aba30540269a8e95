package auth

import "errors"

// RoleAuthor is the only role that may edit quizzes.
const RoleAuthor = "author"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrNotConfigured      = errors.New("author account is not configured")
)

// Author is the configured account allowed to manage quizzes.
type Author struct {
	Email        string
	PasswordHash string
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
