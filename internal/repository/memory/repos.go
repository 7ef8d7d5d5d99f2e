package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/repository"
)

func (s *Store) Users() repository.UserRepository {
	return userRepo{s}
}

func (s *Store) Products() repository.ProductRepository {
	return productRepo{s}
}

func (s *Store) Cart() repository.CartRepository {
	return cartRepo{s}
}

func (s *Store) Orders() repository.OrderRepository {
	return orderRepo{s}
}

func (s *Store) Preferences() repository.PreferenceRepository {
	return preferenceRepo{s}
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *model.User) error {
	defer r.s.lock(ctx)()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	defer r.s.lock(ctx)()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r userRepo) ranked() []model.User {
	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if a.GreenPoints != b.GreenPoints {
			return a.GreenPoints > b.GreenPoints
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return users
}

func (r userRepo) Ranking(ctx context.Context) ([]uuid.UUID, error) {
	defer r.s.lock(ctx)()
	users := r.ranked()
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

func (r userRepo) TopByGreenPoints(ctx context.Context, limit int) ([]model.User, error) {
	defer r.s.lock(ctx)()
	users := r.ranked()
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r userRepo) CreditReward(ctx context.Context, id uuid.UUID, delta model.RewardDelta) error {
	defer r.s.lock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.GreenPoints += delta.GreenPoints
	u.TotalCO2Saved += delta.CO2Saved
	u.TotalPlasticSaved += delta.PlasticSaved
	u.UpdatedAt = r.s.tick()
	return nil
}

func (r userRepo) RevokeReward(ctx context.Context, id uuid.UUID, delta model.RewardDelta) error {
	defer r.s.lock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.GreenPoints = max(u.GreenPoints-delta.GreenPoints, 0)
	u.TotalCO2Saved = math.Max(u.TotalCO2Saved-delta.CO2Saved, 0)
	u.TotalPlasticSaved = math.Max(u.TotalPlasticSaved-delta.PlasticSaved, 0)
	u.UpdatedAt = r.s.tick()
	return nil
}

// --- products ---

type productRepo struct{ s *Store }

func (r productRepo) Create(ctx context.Context, p *model.Product) error {
	defer r.s.lock(ctx)()
	p.ID = uuid.New()
	if p.EcoTags == nil {
		p.EcoTags = []string{}
	}
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r productRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r productRepo) List(ctx context.Context) ([]model.Product, error) {
	defer r.s.lock(ctx)()
	products := make([]model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		products = append(products, *cloneProduct(p))
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r productRepo) Update(ctx context.Context, p *model.Product) error {
	defer r.s.lock(ctx)()
	existing, ok := r.s.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.EcoTags == nil {
		p.EcoTags = []string{}
	}
	p.SustainabilityScore = existing.SustainabilityScore
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.s.tick()
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

// Delete cascades to cart lines and detaches order lines, like the SQL schema.
func (r productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.products, id)
	for cid, ci := range r.s.cart {
		if ci.ProductID == id {
			delete(r.s.cart, cid)
		}
	}
	for _, o := range r.s.orders {
		for i := range o.Items {
			if pid := o.Items[i].ProductID; pid != nil && *pid == id {
				o.Items[i].ProductID = nil
			}
		}
	}
	return nil
}

func (r productRepo) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.products[productID]
	if !ok || p.Stock < quantity {
		return fmt.Errorf("product %s: %w", productID, repository.ErrInsufficientStock)
	}
	p.Stock -= quantity
	p.UpdatedAt = r.s.tick()
	return nil
}

func (r productRepo) RestoreStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	defer r.s.lock(ctx)()
	if p, ok := r.s.products[productID]; ok {
		p.Stock += quantity
		p.UpdatedAt = r.s.tick()
	}
	return nil
}

// --- cart ---

type cartRepo struct{ s *Store }

func (r cartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	defer r.s.lock(ctx)()
	items := []model.CartItem{}
	for _, ci := range r.s.cart {
		if ci.UserID != userID {
			continue
		}
		p, ok := r.s.products[ci.ProductID]
		if !ok {
			continue
		}
		item := *ci
		item.Product = cloneProduct(p)
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// LockByUser needs no extra locking: the caller's transaction already holds the store.
func (r cartRepo) LockByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	return r.ListByUser(ctx, userID)
}

func (r cartRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error) {
	defer r.s.lock(ctx)()
	ci, ok := r.s.cart[id]
	if !ok {
		return nil, nil
	}
	c := *ci
	return &c, nil
}

func (r cartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	defer r.s.lock(ctx)()
	for _, ci := range r.s.cart {
		if ci.UserID == item.UserID && ci.ProductID == item.ProductID {
			ci.Quantity += item.Quantity
			ci.UpdatedAt = r.s.tick()
			item.ID, item.Quantity = ci.ID, ci.Quantity
			item.CreatedAt, item.UpdatedAt = ci.CreatedAt, ci.UpdatedAt
			return nil
		}
	}
	item.ID = uuid.New()
	item.CreatedAt = r.s.tick()
	item.UpdatedAt = item.CreatedAt
	stored := *item
	stored.Product = nil
	r.s.cart[item.ID] = &stored
	return nil
}

func (r cartRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	defer r.s.lock(ctx)()
	ci, ok := r.s.cart[id]
	if !ok {
		return repository.ErrNotFound
	}
	ci.Quantity = quantity
	ci.UpdatedAt = r.s.tick()
	return nil
}

func (r cartRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.cart[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.cart, id)
	return nil
}

func (r cartRepo) DeleteItems(ctx context.Context, ids []uuid.UUID) error {
	defer r.s.lock(ctx)()
	for _, id := range ids {
		delete(r.s.cart, id)
	}
	return nil
}

// --- orders ---

type orderRepo struct{ s *Store }

func (r orderRepo) Create(ctx context.Context, order *model.Order) error {
	defer r.s.lock(ctx)()
	order.ID = uuid.New()
	order.CreatedAt = r.s.tick()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	defer r.s.lock(ctx)()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r orderRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	defer r.s.lock(ctx)()
	orders := []model.Order{}
	for _, o := range r.s.orders {
		if o.UserID == userID {
			orders = append(orders, *cloneOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r orderRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	defer r.s.lock(ctx)()
	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = r.s.tick()
	return true, nil
}

func (r orderRepo) CountEcoItems(ctx context.Context, userID uuid.UUID) (int, error) {
	defer r.s.lock(ctx)()
	n := 0
	for _, o := range r.s.orders {
		if o.UserID != userID || o.Status == model.OrderStatusCancelled {
			continue
		}
		for _, item := range o.Items {
			if item.IsEcoFriendly {
				n++
			}
		}
	}
	return n, nil
}

// --- preferences ---

type preferenceRepo struct{ s *Store }

func (r preferenceRepo) GetOrCreate(ctx context.Context, def model.UserPreference) (*model.UserPreference, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.prefs[def.UserID]
	if !ok {
		def.UpdatedAt = r.s.tick()
		p = &def
		r.s.prefs[def.UserID] = p
	}
	c := *p
	return &c, nil
}

func (r preferenceRepo) Upsert(ctx context.Context, pref *model.UserPreference) error {
	defer r.s.lock(ctx)()
	pref.UpdatedAt = r.s.tick()
	c := *pref
	r.s.prefs[pref.UserID] = &c
	return nil
}
