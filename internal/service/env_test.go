package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/repository"
	"github.com/flicky/green-store/internal/repository/memory"
)

type testEnv struct {
	store     *memory.Store
	publisher *recordingPublisher
	auth      *AuthService
	products  *ProductService
	cart      *CartService
	orders    *OrderService
	green     *SustainabilityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	return newTestEnvWith(t, store, store.Users())
}

// newTestEnvWith lets a test swap the user repository for a failing wrapper.
func newTestEnvWith(t *testing.T, store *memory.Store, users repository.UserRepository) *testEnv {
	t.Helper()
	pub := &recordingPublisher{}
	return &testEnv{
		store:     store,
		publisher: pub,
		auth:      NewAuthService(users, "test-secret", time.Hour, true, nil),
		products:  NewProductService(store.Products(), nil),
		cart:      NewCartService(store.Cart(), store.Products()),
		orders:    NewOrderService(store, store.Orders(), store.Cart(), store.Products(), users, pub, nil, nil),
		green:     NewSustainabilityService(store, users, store.Orders(), store.Cart(), store.Preferences(), nil),
	}
}

func (e *testEnv) user(t *testing.T, name string, points int) *model.User {
	t.Helper()
	ctx := context.Background()
	u := &model.User{Email: name + "@example.com", Name: name, Password: "x", Role: model.RoleUser}
	require.NoError(t, e.store.Users().Create(ctx, u))
	if points > 0 {
		require.NoError(t, e.store.Users().CreditReward(ctx, u.ID, model.RewardDelta{GreenPoints: points}))
		u.GreenPoints = points
	}
	return u
}

func (e *testEnv) product(t *testing.T, name string, eco bool, carbon, plastic float64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:            name,
		Price:           decimal.RequireFromString("10.00"),
		Stock:           stock,
		IsEcoFriendly:   eco,
		CarbonFootprint: carbon,
		PlasticContent:  plastic,
	}
	require.NoError(t, e.store.Products().Create(context.Background(), p))
	return p
}

func (e *testEnv) addToCart(t *testing.T, userID, productID uuid.UUID, qty int) {
	t.Helper()
	_, err := e.cart.AddItem(context.Background(), userID, productID, qty)
	require.NoError(t, err)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []model.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.OrderEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// failingCredit fails every reward credit, after checkout has written everything else.
type failingCredit struct {
	repository.UserRepository
}

func (failingCredit) CreditReward(context.Context, uuid.UUID, model.RewardDelta) error {
	return errCreditFailed
}

var errCreditFailed = errors.New("credit failed")
