// Package memory is an in-process implementation of the repository interfaces.
// It backs DB_DRIVER=memory for local runs and the service and handler tests.
//
// A transaction holds the store lock for its whole duration and restores a
// snapshot when it fails, so every WithinTx call is atomic and serialized.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/green-store/internal/model"
)

type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*model.User
	products map[uuid.UUID]*model.Product
	cart     map[uuid.UUID]*model.CartItem
	orders   map[uuid.UUID]*model.Order
	prefs    map[uuid.UUID]*model.UserPreference
	last     time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*model.User),
		products: make(map[uuid.UUID]*model.Product),
		cart:     make(map[uuid.UUID]*model.CartItem),
		orders:   make(map[uuid.UUID]*model.Order),
		prefs:    make(map[uuid.UUID]*model.UserPreference),
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store lock unless ctx already belongs to one of its transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// tick returns a strictly increasing timestamp so creation order is total.
func (s *Store) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now
	return now
}

type snapshot struct {
	users    map[uuid.UUID]*model.User
	products map[uuid.UUID]*model.Product
	cart     map[uuid.UUID]*model.CartItem
	orders   map[uuid.UUID]*model.Order
	prefs    map[uuid.UUID]*model.UserPreference
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		users:    make(map[uuid.UUID]*model.User, len(s.users)),
		products: make(map[uuid.UUID]*model.Product, len(s.products)),
		cart:     make(map[uuid.UUID]*model.CartItem, len(s.cart)),
		orders:   make(map[uuid.UUID]*model.Order, len(s.orders)),
		prefs:    make(map[uuid.UUID]*model.UserPreference, len(s.prefs)),
	}
	for id, u := range s.users {
		c := *u
		snap.users[id] = &c
	}
	for id, p := range s.products {
		snap.products[id] = cloneProduct(p)
	}
	for id, ci := range s.cart {
		c := *ci
		snap.cart[id] = &c
	}
	for id, o := range s.orders {
		snap.orders[id] = cloneOrder(o)
	}
	for id, p := range s.prefs {
		c := *p
		snap.prefs[id] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.products = snap.products
	s.cart = snap.cart
	s.orders = snap.orders
	s.prefs = snap.prefs
}

func cloneProduct(p *model.Product) *model.Product {
	c := *p
	c.EcoTags = append([]string{}, p.EcoTags...)
	return &c
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = make([]model.OrderItem, len(o.Items))
	for i, item := range o.Items {
		c.Items[i] = item
		if item.ProductID != nil {
			pid := *item.ProductID
			c.Items[i].ProductID = &pid
		}
	}
	return &c
}
