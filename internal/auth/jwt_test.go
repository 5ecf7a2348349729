package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", "pharmacy-auth")

	token, err := m.Generate("u-1", RolePatient, "u1@example.com", "Patient One", time.Hour)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, RolePatient, claims.Role)
	assert.Equal(t, "u1@example.com", claims.Email)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("other-secret", "pharmacy-auth")
	token, err := issuer.Generate("u-1", RolePatient, "", "", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret", "pharmacy-auth").Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", "")
	token, err := m.Generate("u-1", RolePatient, "", "", -time.Minute)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	token, err := NewTokenManager("test-secret", "someone-else").Generate("u-1", RolePatient, "", "", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret", "pharmacy-auth").Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsUnknownRole(t *testing.T) {
	m := NewTokenManager("test-secret", "")
	token, err := m.Generate("u-1", "superuser", "", "", time.Hour)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	token, err = m.Generate("u-1", "", "", "", time.Hour)
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("test-secret", "").Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_UnconfiguredSecret(t *testing.T) {
	_, err := NewTokenManager("", "").Parse("anything")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
