package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret-at-least-32-characters!!", time.Hour)
	userID := uuid.New()

	token, err := mgr.GenerateToken(userID, "ash_ketchum")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "ash_ketchum", claims.Username)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	mgr := NewJWTManager("test-secret-at-least-32-characters!!", time.Hour)
	other := NewJWTManager("another-secret-also-32-characters!!!", time.Hour)

	token, err := mgr.GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	mgr := NewJWTManager("test-secret-at-least-32-characters!!", -time.Minute)

	token, err := mgr.GenerateToken(uuid.New(), "")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	require.Error(t, err)
}

func TestJWTManager_Garbage(t *testing.T) {
	mgr := NewJWTManager("test-secret-at-least-32-characters!!", time.Hour)
	_, err := mgr.ValidateToken("not.a.token")
	require.Error(t, err)
}
