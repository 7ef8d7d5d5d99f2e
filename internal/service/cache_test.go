//go:build integration

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/repository/memory"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestLeaderboardCache_DroppedOnRegister(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	store := memory.New()
	auth := NewAuthService(store.Users(), "test-secret", time.Hour, false, rdb)
	green := NewSustainabilityService(store, store.Users(), store.Orders(), store.Cart(), store.Preferences(), rdb)

	_, err := auth.Register(ctx, dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	board, err := green.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	n, err := rdb.Exists(ctx, leaderboardCacheKey).Result()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = auth.Register(ctx, dto.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	board, err = green.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, []string{board[0].Name, board[1].Name})
}

func TestLeaderboardCache_DroppedOnCheckout(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	env := newTestEnv(t)
	env.orders = NewOrderService(env.store, env.store.Orders(), env.store.Cart(), env.store.Products(), env.store.Users(), nil, rdb, nil)
	green := NewSustainabilityService(env.store, env.store.Users(), env.store.Orders(), env.store.Cart(), env.store.Preferences(), rdb)

	u := env.user(t, "jane", 0)
	cup := env.product(t, "Cup", true, 1, 0, 5)
	board, err := green.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Zero(t, board[0].GreenPoints)

	env.addToCart(t, u.ID, cup.ID, 1)
	_, err = env.orders.CreateOrder(ctx, u.ID)
	require.NoError(t, err)

	board, err = green.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Positive(t, board[0].GreenPoints)
}
