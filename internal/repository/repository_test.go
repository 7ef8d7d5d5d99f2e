//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/green-store/internal/model"
)

func createUser(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: email, Password: "hashed", Role: model.RoleUser}
	require.NoError(t, NewUserRepository(testPool).Create(context.Background(), u))
	return u
}

func createProduct(t *testing.T, name string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name: name, Price: decimal.RequireFromString("9.99"), Stock: stock,
		IsEcoFriendly: true, CarbonFootprint: 1.2, EcoTags: []string{"bamboo"},
	}
	require.NoError(t, NewProductRepository(testPool).Create(context.Background(), p))
	return p
}

func TestUserRepo_CreateAndDuplicate(t *testing.T) {
	cleanupTables(t)
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	u := createUser(t, "test@example.com")
	assert.NotEqual(t, uuid.Nil, u.ID)

	found, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.Create(ctx, &model.User{Email: "test@example.com", Name: "x", Password: "x", Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepo_RewardsAndRanking(t *testing.T) {
	cleanupTables(t)
	repo := NewUserRepository(testPool)
	ctx := context.Background()

	low := createUser(t, "low@example.com")
	high := createUser(t, "high@example.com")
	require.NoError(t, repo.CreditReward(ctx, low.ID, model.RewardDelta{GreenPoints: 10, CO2Saved: 1}))
	require.NoError(t, repo.CreditReward(ctx, high.ID, model.RewardDelta{GreenPoints: 30, CO2Saved: 2.5}))

	ranking, err := repo.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{high.ID, low.ID}, ranking)

	top, err := repo.TopByGreenPoints(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 30, top[0].GreenPoints)

	require.NoError(t, repo.RevokeReward(ctx, low.ID, model.RewardDelta{GreenPoints: 50, CO2Saved: 5}))
	got, err := repo.GetByID(ctx, low.ID)
	require.NoError(t, err)
	assert.Zero(t, got.GreenPoints)
	assert.Zero(t, got.TotalCO2Saved)
}

func TestProductRepo_CRUDAndStockGuard(t *testing.T) {
	cleanupTables(t)
	repo := NewProductRepository(testPool)
	ctx := context.Background()

	p := createProduct(t, "Bamboo Cup", 2)
	found, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "9.99", found.Price.StringFixed(2))
	assert.Equal(t, []string{"bamboo"}, found.EcoTags)

	p.Name = "Bamboo Mug"
	require.NoError(t, repo.Update(ctx, p))
	found, _ = repo.GetByID(ctx, p.ID)
	assert.Equal(t, "Bamboo Mug", found.Name)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))
	assert.ErrorIs(t, repo.DecrementStock(ctx, p.ID, 1), ErrInsufficientStock)
	require.NoError(t, repo.RestoreStock(ctx, p.ID, 1))
	found, _ = repo.GetByID(ctx, p.ID)
	assert.Equal(t, 1, found.Stock)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrNotFound)
	found, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCartRepo_AddMergesAndCascades(t *testing.T) {
	cleanupTables(t)
	repo := NewCartRepository(testPool)
	ctx := context.Background()
	u := createUser(t, "cart@example.com")
	p := createProduct(t, "Jar", 10)

	first := &model.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, repo.AddItem(ctx, first))
	second := &model.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 2}
	require.NoError(t, repo.AddItem(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	items, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Jar", items[0].Product.Name)

	require.NoError(t, NewProductRepository(testPool).Delete(ctx, p.ID))
	items, err = repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepo_DeleteItemsKeepsLinesAddedAfterLock(t *testing.T) {
	cleanupTables(t)
	repo := NewCartRepository(testPool)
	ctx := context.Background()
	u := createUser(t, "lock@example.com")
	jar := createProduct(t, "Jar", 10)
	lid := createProduct(t, "Lid", 10)
	require.NoError(t, repo.AddItem(ctx, &model.CartItem{UserID: u.ID, ProductID: jar.ID, Quantity: 1}))

	var late model.CartItem
	err := NewTransactor(testPool).WithinTx(ctx, func(txCtx context.Context) error {
		locked, err := repo.LockByUser(txCtx, u.ID)
		if err != nil {
			return err
		}
		require.Len(t, locked, 1)

		// Another session adds a line and changes stock while the cart is locked.
		// Neither must block on the checkout's locks.
		late = model.CartItem{UserID: u.ID, ProductID: lid.ID, Quantity: 2}
		require.NoError(t, repo.AddItem(ctx, &late))
		require.NoError(t, NewProductRepository(testPool).DecrementStock(ctx, jar.ID, 1))

		ids := make([]uuid.UUID, len(locked))
		for i, ci := range locked {
			ids[i] = ci.ID
		}
		return repo.DeleteItems(txCtx, ids)
	})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteItems(ctx, nil))

	items, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, late.ID, items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestOrderRepo_SnapshotSurvivesProductDelete(t *testing.T) {
	cleanupTables(t)
	repo := NewOrderRepository(testPool)
	ctx := context.Background()
	u := createUser(t, "order@example.com")
	p := createProduct(t, "Soap", 5)

	pid := p.ID
	order := &model.Order{
		UserID: u.ID, Status: model.OrderStatusPending, Total: p.Price, GreenPointsEarned: 10,
		Items: []model.OrderItem{{ProductID: &pid, ProductName: "Soap", IsEcoFriendly: true, Quantity: 1, Price: p.Price}},
	}
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, NewProductRepository(testPool).Delete(ctx, p.ID))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].ProductID)
	assert.Equal(t, "Soap", got.Items[0].ProductName)

	n, err := repo.CountEcoItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := repo.TransitionStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.TransitionStatus(ctx, order.ID, model.OrderStatusPending, model.OrderStatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err = repo.CountEcoItems(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransactor_RollsBack(t *testing.T) {
	cleanupTables(t)
	tx := NewTransactor(testPool)
	products := NewProductRepository(testPool)
	ctx := context.Background()
	p := createProduct(t, "Bottle", 3)
	boom := errors.New("boom")

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, products.DecrementStock(ctx, p.ID, 3))
		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Stock)
}

func TestPreferenceRepo_GetOrCreate(t *testing.T) {
	cleanupTables(t)
	repo := NewPreferenceRepository(testPool)
	ctx := context.Background()
	u := createUser(t, "prefs@example.com")

	p, err := repo.GetOrCreate(ctx, model.DefaultPreference(u.ID))
	require.NoError(t, err)
	assert.Equal(t, model.PackagingStandard, p.PackagingPreference)
	assert.True(t, p.NotifyGreenDeals)

	p.PackagingPreference = model.PackagingPlasticFree
	require.NoError(t, repo.Upsert(ctx, p))

	again, err := repo.GetOrCreate(ctx, model.DefaultPreference(u.ID))
	require.NoError(t, err)
	assert.Equal(t, model.PackagingPlasticFree, again.PackagingPreference)
}
