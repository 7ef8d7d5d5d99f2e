package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/repository"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return items, nil
}

// AddItem puts quantity units of a product in the cart, merging with an existing
// line for the same product. A zero quantity counts as one.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity < 0 {
		return nil, invalid("quantity", "must not be negative")
	}
	if quantity == 0 {
		quantity = 1
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	item := &model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	item.Product = product
	return item, nil
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less removes
// the line and returns nil.
func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
			return nil, s.mapNotFound(err, "delete cart item")
		}
		return nil, nil
	}

	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return nil, s.mapNotFound(err, "update cart item")
	}
	item.Quantity = quantity

	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	item.Product = product
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		return s.mapNotFound(err, "delete cart item")
	}
	return nil
}

// ownedItem hides other users' lines behind ErrCartItemNotFound.
func (s *CartService) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItem, error) {
	item, err := s.cartRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	if item == nil || item.UserID != userID {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

func (s *CartService) mapNotFound(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCartItemNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
