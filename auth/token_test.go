package auth

import (
	"context"
	"testing"
	"time"

	"github.com/salesdesk/crm-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return NewTokenManager(config.AuthConfig{
		Secret:   secret,
		Issuer:   issuer,
		TokenTTL: ttl,
	}, zap.NewNop())
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	manager := newTestManager("test-secret", "crm-backend", time.Hour)

	token, expiresAt, err := manager.IssueToken(42, "maria", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "maria", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenManager_ValidateToken(t *testing.T) {
	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		issuer := newTestManager("other-secret", "crm-backend", time.Hour)
		validator := newTestManager("test-secret", "crm-backend", time.Hour)

		token, _, err := issuer.IssueToken(42, "maria", "admin")
		require.NoError(t, err)

		_, err = validator.ValidateToken(context.Background(), token)
		assert.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		manager := newTestManager("test-secret", "crm-backend", -time.Minute)

		token, _, err := manager.IssueToken(42, "maria", "admin")
		require.NoError(t, err)

		_, err = manager.ValidateToken(context.Background(), token)
		assert.Error(t, err)
	})

	t.Run("rejects a token from a different issuer", func(t *testing.T) {
		issuer := newTestManager("test-secret", "other-service", time.Hour)
		validator := newTestManager("test-secret", "crm-backend", time.Hour)

		token, _, err := issuer.IssueToken(42, "maria", "admin")
		require.NoError(t, err)

		_, err = validator.ValidateToken(context.Background(), token)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		manager := newTestManager("test-secret", "crm-backend", time.Hour)

		_, err := manager.ValidateToken(context.Background(), "not.a.token")
		assert.Error(t, err)
	})
}
