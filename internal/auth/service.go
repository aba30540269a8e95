package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/auth/jwt"
)

// Service authenticates the quiz author and issues tokens.
type Service struct {
	author   Author
	tokenMgr *jwt.Manager
	redis    *redis.Client
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
	// Redis holds revoked refresh tokens. Nil disables logout.
	Redis *redis.Client
}

// NewService creates an authentication service.
func NewService(author Author, opts ServiceOptions, logger zerolog.Logger) *Service {
	author.Email = strings.ToLower(strings.TrimSpace(author.Email))
	return &Service{
		author:   author,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		redis:    opts.Redis,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

// Login checks the author's credentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	if s.author.Email == "" || s.author.PasswordHash == "" {
		return nil, ErrNotConfigured
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.author.Email)) == 1
	// bcrypt runs even for an unknown email
	passwordErr := VerifyPassword(s.author.PasswordHash, req.Password)
	if passwordErr != nil && !errors.Is(passwordErr, ErrInvalidPassword) {
		s.logger.Error().Err(passwordErr).Msg("author password hash is unusable")
	}
	if !emailOK || passwordErr != nil {
		s.logger.Warn().Str("email", email).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair()
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("email", email).Msg("author logged in")
	return tokens, nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims.Email != s.author.Email {
		return nil, ErrInvalidCredentials
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	access, err := s.tokenMgr.GenerateAccessToken(jwt.Subject{Email: claims.Email, Role: claims.Role})
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &TokenPair{
		AccessToken: access,
		ExpiresIn:   int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}

// Logout revokes a refresh token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return fmt.Errorf("invalid refresh token: %w", err)
	}
	if s.redis == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, revokedKey(claims.ID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info().Str("email", claims.Email).Msg("refresh token revoked")
	return nil
}

// ValidateToken validates an access token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

func (s *Service) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}

func (s *Service) generateTokenPair() (*TokenPair, error) {
	sub := jwt.Subject{Email: s.author.Email, Role: RoleAuthor}
	access, err := s.tokenMgr.GenerateAccessToken(sub)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokenMgr.GenerateRefreshToken(sub)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}
