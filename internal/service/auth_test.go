package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/repository/memory"
)

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.auth.Register(context.Background(), dto.RegisterRequest{
		Name: "Jane", Email: "Jane@Example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.Zero(t, resp.User.GreenPoints)

	stored, err := env.store.Users().GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.Password)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	req := dto.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "password123"}

	_, err := env.auth.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = env.auth.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Register_AdminRole(t *testing.T) {
	store := memory.New()
	req := dto.RegisterRequest{Name: "Root", Email: "root@example.com", Password: "password123", Role: model.RoleAdmin}

	allowed := NewAuthService(store.Users(), "s", time.Hour, true, nil)
	resp, err := allowed.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)

	denied := NewAuthService(store.Users(), "s", time.Hour, false, nil)
	req.Email = "other@example.com"
	resp, err = denied.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.User.Role)
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Register(context.Background(), dto.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)

	resp, err := env.auth.Login(context.Background(), dto.LoginRequest{
		Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, model.RoleUser, claims["role"])
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Register(context.Background(), dto.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = env.auth.Login(context.Background(), dto.LoginRequest{
		Email: "jane@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(context.Background(), dto.LoginRequest{
		Email: "nobody@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Me(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "jane", 40)

	me, err := env.auth.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, me.GreenPoints)

	_, err = env.auth.Me(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
