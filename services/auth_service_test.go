package services

import (
	"errors"
	"testing"
	"time"

	"github.com/salesdesk/crm-backend/auth"
	"github.com/salesdesk/crm-backend/config"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/services/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService(repo *MockUserRepository) (*AuthService, *auth.TokenManager) {
	logger := zap.NewNop()
	users := newTestUserService(repo, &recordingAuditRepository{})
	tokens := auth.NewTokenManager(config.AuthConfig{
		Secret:   "test-secret",
		Issuer:   "crm-backend",
		TokenTTL: time.Hour,
	}, logger)
	return NewAuthService(users, tokens, logger), tokens
}

func TestAuthService_Login(t *testing.T) {
	t.Run("issues a validatable bearer token", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, tokens := newTestAuthService(repo)

		repo.On("GetByUsername", mock.Anything, "maria").Return(&models.User{
			ID:             4,
			Username:       "maria",
			HashedPassword: hashFor(t, "correct-password"),
			Role:           models.RoleSales,
			IsActive:       true,
		}, nil)

		response, err := service.Login(actorContext(4), "maria", "correct-password")

		require.NoError(t, err)
		assert.Equal(t, "bearer", response.TokenType)
		assert.Equal(t, int64(4), response.User.ID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), response.ExpiresAt, 5*time.Second)

		claims, err := tokens.ValidateToken(actorContext(4), response.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(4), claims.UserID)
		assert.Equal(t, "maria", claims.Username)
		assert.Equal(t, "sales", claims.Role)
	})

	t.Run("propagates invalid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		service, _ := newTestAuthService(repo)

		repo.On("GetByUsername", mock.Anything, "maria").Return(&models.User{
			ID:             4,
			Username:       "maria",
			HashedPassword: hashFor(t, "correct-password"),
			IsActive:       true,
		}, nil)

		_, err := service.Login(actorContext(4), "maria", "wrong-password")

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	})
}
