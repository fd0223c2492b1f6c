package services

import (
	"context"
	"time"

	"github.com/salesdesk/crm-backend/auth"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/services/domain"
	"go.uber.org/zap"
)

// TokenResponse is the payload returned by a successful login
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// AuthService exchanges credentials for signed access tokens
type AuthService struct {
	users  *UserService
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users *UserService, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Warn("login failed", zap.String("username", username))
		return nil, err
	}

	token, expiresAt, err := s.tokens.IssueToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, domain.WrapInternal("failed to issue token", err)
	}

	s.logger.Info("login successful",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}
