package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/model"
)

func TestSustainabilityService_Dashboard_Rank(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "a", 50)
	b := env.user(t, "b", 30)
	c := env.user(t, "c", 30)
	env.user(t, "d", 10)

	dash, err := env.green.Dashboard(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.GlobalRank)
	assert.Equal(t, 4, dash.TotalUsers)
	assert.Equal(t, 30, dash.GreenPoints)

	dash, err = env.green.Dashboard(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, dash.GlobalRank)
}

func TestSustainabilityService_Dashboard_UserGone(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.green.Dashboard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSustainabilityService_Leaderboard(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 12; i++ {
		env.user(t, fmt.Sprintf("user%02d", i), i*10)
	}

	board, err := env.green.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 10)
	assert.Equal(t, "user11", board[0].Name)
	for i := 1; i < len(board); i++ {
		assert.GreaterOrEqual(t, board[i-1].GreenPoints, board[i].GreenPoints)
	}
}

func TestSustainabilityService_Preferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "jane", 0)

	pref, err := env.green.GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PackagingStandard, pref.PackagingPreference)
	assert.True(t, pref.NotifyGreenDeals)
	assert.True(t, pref.ShowCarbonFootprint)

	packaging := model.PackagingPlasticFree
	off := false
	updated, err := env.green.UpdatePreferences(ctx, u.ID, dto.UpdatePreferencesRequest{
		PackagingPreference: &packaging,
		NotifyGreenDeals:    &off,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PackagingPlasticFree, updated.PackagingPreference)
	assert.False(t, updated.NotifyGreenDeals)
	assert.True(t, updated.ShowCarbonFootprint)

	again, err := env.green.GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PackagingPlasticFree, again.PackagingPreference)
}

func TestSustainabilityService_Preferences_InvalidPackaging(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "jane", 0)

	bad := "cardboard-box"
	_, err := env.green.UpdatePreferences(context.Background(), u.ID, dto.UpdatePreferencesRequest{PackagingPreference: &bad})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSustainabilityService_CartImpact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "jane", 0)

	empty, err := env.green.CartImpact(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalItems)
	assert.Zero(t, empty.EcoPercentage)

	env.addToCart(t, u.ID, env.product(t, "Bamboo Cup", true, 1.2, 0, 10).ID, 2)
	impact, err := env.green.CartImpact(ctx, u.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2.4, impact.TotalCO2, 1e-9)
	assert.Equal(t, 1, impact.EcoFriendlyItems)
	assert.Equal(t, 10, impact.PotentialGreenPoints)
	assert.Equal(t, 100, impact.EcoPercentage)
}
