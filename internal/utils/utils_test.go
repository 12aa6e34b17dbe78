package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.True(t, VerifyPassword(hash, "pw1"))
	assert.False(t, VerifyPassword(hash, "pw2"))
}

func TestSessionToken(t *testing.T) {
	tok, err := NewSessionToken("secret", Claims{UserID: 7, Name: "Ana", Email: "a@x.com", Role: "admin"}, 24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), tok.Exp, time.Minute)

	claims, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestParseSessionTokenRejects(t *testing.T) {
	tok, err := NewSessionToken("secret", Claims{UserID: 1}, time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewSessionToken("secret", Claims{UserID: 1}, -time.Minute)
	require.NoError(t, err)
	_, err = ParseSessionToken("secret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseSessionToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyPasswordEmptyHash(t *testing.T) {
	assert.False(t, VerifyPassword("", "unused"))
	assert.False(t, VerifyPassword("", ""))
}
