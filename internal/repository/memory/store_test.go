package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/repository"
)

func seed(t *testing.T, s *Store) (*model.User, *model.Product) {
	t.Helper()
	ctx := context.Background()
	u := &model.User{Email: "a@example.com", Name: "A", Role: model.RoleUser}
	require.NoError(t, s.Users().Create(ctx, u))
	p := &model.Product{Name: "Cup", Price: decimal.NewFromInt(5), Stock: 3, IsEcoFriendly: true}
	require.NoError(t, s.Products().Create(ctx, p))
	return u, p
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := New()
	u, p := seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Products().DecrementStock(ctx, p.ID, 2))
		require.NoError(t, s.Users().CreditReward(ctx, u.ID, model.RewardDelta{GreenPoints: 10}))
		require.NoError(t, s.Cart().AddItem(ctx, &model.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
	user, err := s.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, user.GreenPoints)
	cart, err := s.Cart().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestWithinTx_NestedCallsJoin(t *testing.T) {
	s := New()
	u, _ := seed(t, s)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			return s.Users().CreditReward(ctx, u.ID, model.RewardDelta{GreenPoints: 5})
		})
	})
	require.NoError(t, err)

	user, _ := s.Users().GetByID(ctx, u.ID)
	assert.Equal(t, 5, user.GreenPoints)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	s := New()
	seed(t, s)
	err := s.Users().Create(context.Background(), &model.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUsers_RevokeRewardFloorsAtZero(t *testing.T) {
	s := New()
	u, _ := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Users().CreditReward(ctx, u.ID, model.RewardDelta{GreenPoints: 10, CO2Saved: 1.5, PlasticSaved: 4}))
	require.NoError(t, s.Users().RevokeReward(ctx, u.ID, model.RewardDelta{GreenPoints: 30, CO2Saved: 2, PlasticSaved: 9}))

	user, _ := s.Users().GetByID(ctx, u.ID)
	assert.Zero(t, user.GreenPoints)
	assert.Zero(t, user.TotalCO2Saved)
	assert.Zero(t, user.TotalPlasticSaved)

	assert.ErrorIs(t, s.Users().CreditReward(ctx, uuid.New(), model.RewardDelta{}), repository.ErrNotFound)
}

func TestUsers_RankingTieBreak(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := make([]uuid.UUID, 0, 3)
	for i, pts := range []int{5, 20, 5} {
		u := &model.User{Email: string(rune('a'+i)) + "@x.io"}
		require.NoError(t, s.Users().Create(ctx, u))
		require.NoError(t, s.Users().CreditReward(ctx, u.ID, model.RewardDelta{GreenPoints: pts}))
		ids = append(ids, u.ID)
	}

	ranking, err := s.Users().Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[1], ids[0], ids[2]}, ranking)

	top, err := s.Users().TopByGreenPoints(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 20, top[0].GreenPoints)
}

func TestProducts_DecrementStockGuard(t *testing.T) {
	s := New()
	_, p := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Products().DecrementStock(ctx, p.ID, 3))
	assert.ErrorIs(t, s.Products().DecrementStock(ctx, p.ID, 1), repository.ErrInsufficientStock)
	require.NoError(t, s.Products().RestoreStock(ctx, p.ID, 2))

	got, _ := s.Products().GetByID(ctx, p.ID)
	assert.Equal(t, 2, got.Stock)
}

func TestProducts_DeleteCascadesAndDetaches(t *testing.T) {
	s := New()
	u, p := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Cart().AddItem(ctx, &model.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1}))
	pid := p.ID
	order := &model.Order{UserID: u.ID, Status: model.OrderStatusPending, Items: []model.OrderItem{
		{ProductID: &pid, ProductName: "Cup", Quantity: 1, Price: p.Price, IsEcoFriendly: true},
	}}
	require.NoError(t, s.Orders().Create(ctx, order))

	require.NoError(t, s.Products().Delete(ctx, p.ID))
	assert.ErrorIs(t, s.Products().Delete(ctx, p.ID), repository.ErrNotFound)

	cart, _ := s.Cart().ListByUser(ctx, u.ID)
	assert.Empty(t, cart)

	got, err := s.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].ProductID)
	assert.Equal(t, "Cup", got.Items[0].ProductName)
}

func TestCart_AddItemMergesLines(t *testing.T) {
	s := New()
	u, p := seed(t, s)
	ctx := context.Background()

	first := &model.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, s.Cart().AddItem(ctx, first))
	second := &model.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 2}
	require.NoError(t, s.Cart().AddItem(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	cart, _ := s.Cart().ListByUser(ctx, u.ID)
	require.Len(t, cart, 1)
	require.NotNil(t, cart[0].Product)
	assert.Equal(t, "Cup", cart[0].Product.Name)
}

func TestOrders_TransitionStatusIsConditional(t *testing.T) {
	s := New()
	u, _ := seed(t, s)
	ctx := context.Background()
	order := &model.Order{UserID: u.ID, Status: model.OrderStatusPending}
	require.NoError(t, s.Orders().Create(ctx, order))

	ok, err := s.Orders().TransitionStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Orders().TransitionStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrders_CountEcoItemsSkipsCancelled(t *testing.T) {
	s := New()
	u, _ := seed(t, s)
	ctx := context.Background()
	lines := []model.OrderItem{
		{ProductName: "a", IsEcoFriendly: true, Quantity: 4},
		{ProductName: "b", IsEcoFriendly: false, Quantity: 1},
	}
	kept := &model.Order{UserID: u.ID, Status: model.OrderStatusCompleted, Items: lines}
	dropped := &model.Order{UserID: u.ID, Status: model.OrderStatusCancelled, Items: lines}
	require.NoError(t, s.Orders().Create(ctx, kept))
	require.NoError(t, s.Orders().Create(ctx, dropped))

	n, err := s.Orders().CountEcoItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPreferences_GetOrCreateKeepsExisting(t *testing.T) {
	s := New()
	u, _ := seed(t, s)
	ctx := context.Background()

	p, err := s.Preferences().GetOrCreate(ctx, model.DefaultPreference(u.ID))
	require.NoError(t, err)
	assert.Equal(t, model.PackagingStandard, p.PackagingPreference)

	p.PackagingPreference = model.PackagingReusable
	require.NoError(t, s.Preferences().Upsert(ctx, p))

	again, err := s.Preferences().GetOrCreate(ctx, model.DefaultPreference(u.ID))
	require.NoError(t, err)
	assert.Equal(t, model.PackagingReusable, again.PackagingPreference)
}

func TestCart_DeleteItemsLeavesOtherLines(t *testing.T) {
	s := New()
	u, p := seed(t, s)
	ctx := context.Background()
	other := &model.Product{Name: "Straw", Price: decimal.NewFromInt(1), Stock: 9}
	require.NoError(t, s.Products().Create(ctx, other))

	first := &model.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, s.Cart().AddItem(ctx, first))
	late := &model.CartItem{UserID: u.ID, ProductID: other.ID, Quantity: 2}
	require.NoError(t, s.Cart().AddItem(ctx, late))

	require.NoError(t, s.Cart().DeleteItems(ctx, []uuid.UUID{first.ID}))
	require.NoError(t, s.Cart().DeleteItems(ctx, nil))

	cart, err := s.Cart().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, late.ID, cart[0].ID)
}
