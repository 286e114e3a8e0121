package services

import (
	"context"
	"testing"

	"github.com/josvita0323/devhost-2025-sub000/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-jwt-secret"

func TestAdminLoginAndVerify(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService("admin@example.com", string(hash), testJWTSecret)

	token, err := svc.AdminLogin(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := NewJWTVerifier(testJWTSecret).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "admin", identity.UID)
	require.Equal(t, "admin@example.com", identity.Email)
	require.Equal(t, models.RoleAdmin, identity.Role)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService("admin@example.com", string(hash), testJWTSecret)

	_, err = svc.AdminLogin(context.Background(), "admin@example.com", "wrong")
	require.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestAdminLoginWrongEmail(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService("admin@example.com", string(hash), testJWTSecret)

	_, err = svc.AdminLogin(context.Background(), "intruder@example.com", "s3cret")
	require.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestAdminLoginNotConfigured(t *testing.T) {
	svc := NewAuthService("", "", testJWTSecret)

	_, err := svc.AdminLogin(context.Background(), "admin@example.com", "s3cret")
	require.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewJWTVerifier(testJWTSecret).Verify("not-a-token")
	require.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService("admin@example.com", string(hash), testJWTSecret)
	token, err := svc.AdminLogin(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)

	_, err = NewJWTVerifier("another-secret").Verify(token)
	require.Error(t, err)
}
