package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *Service {
	t.Helper()

	return NewService(&JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	})
}

func TestLoginEchoesVisitor(t *testing.T) {
	svc := newTestAuthService(t)

	user, token, err := svc.Login(context.Background(), " Jane@Example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, RoleVisitor, user.Role)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, RoleVisitor, claims.Role)
}

func TestLoginRejectsBadInput(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "not-an-email", "secret")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = svc.Login(ctx, "jane@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSignupUsesSubmittedName(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	first, token, err := svc.Signup(ctx, "<b>Jane</b> Roe", "jane@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", first.Name)
	assert.NotEmpty(t, token)

	second, _, err := svc.Signup(ctx, "Jane Roe", "jane@example.com", "secret")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, _, err = svc.Signup(ctx, "  ", "jane@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestValidateTokenRejectsForeignTokens(t *testing.T) {
	svc := newTestAuthService(t)
	other := NewService(&JWTConfig{Secret: []byte("other"), Issuer: "test", Audience: "test", TTL: time.Hour})

	_, token, err := other.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	wrongAudience := NewService(&JWTConfig{Secret: []byte("test-secret-change-me"), Issuer: "test", Audience: "elsewhere", TTL: time.Hour})
	_, token, err = wrongAudience.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	expired := NewService(&JWTConfig{Secret: []byte("test-secret-change-me"), Issuer: "test", Audience: "test", TTL: -time.Minute})
	_, token, err = expired.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
