package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/repository"
	"github.com/flicky/green-store/internal/sustainability"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("access denied")
)

// OrderEventPublisher announces order lifecycle changes after they are committed.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event model.OrderEvent) error
}

type OrderService struct {
	tx          repository.Transactor
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	publisher   OrderEventPublisher
	redisClient *redis.Client
	log         *slog.Logger
}

func NewOrderService(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	publisher OrderEventPublisher,
	redisClient *redis.Client,
	log *slog.Logger,
) *OrderService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{
		tx:          tx,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		redisClient: redisClient,
		log:         log,
	}
}

// CreateOrder checks out the user's cart. The order, its items, the stock
// decrements, the emptied cart and the reward credit commit together or not at all.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.cartRepo.LockByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(cart))
		for _, ci := range cart {
			p := ci.Product
			if p == nil {
				return fmt.Errorf("cart item %s has no product", ci.ID)
			}
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(ci.Quantity))))
			productID := p.ID
			items = append(items, model.OrderItem{
				ProductID:     &productID,
				ProductName:   p.Name,
				IsEcoFriendly: p.IsEcoFriendly,
				Quantity:      ci.Quantity,
				Price:         p.Price,
			})
		}
		reward := sustainability.ComputeReward(CartLines(cart))

		order = &model.Order{
			UserID:            userID,
			Status:            model.OrderStatusPending,
			Total:             total,
			GreenPointsEarned: reward.GreenPoints,
			CO2Saved:          reward.CO2Saved,
			PlasticSaved:      reward.PlasticSaved,
			Items:             items,
		}
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		// Product rows are locked in id order so concurrent checkouts cannot deadlock.
		byProduct := slices.Clone(cart)
		slices.SortFunc(byProduct, func(a, b model.CartItem) int {
			return bytes.Compare(a.ProductID[:], b.ProductID[:])
		})
		for _, ci := range byProduct {
			if err := s.productRepo.DecrementStock(ctx, ci.ProductID, ci.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", ErrInsufficientStock, ci.Product.Name)
				}
				return fmt.Errorf("decrement stock: %w", err)
			}
		}

		lineIDs := make([]uuid.UUID, len(cart))
		for i, ci := range cart {
			lineIDs[i] = ci.ID
		}
		if err := s.cartRepo.DeleteItems(ctx, lineIDs); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		if err := s.userRepo.CreditReward(ctx, userID, rewardDelta(order)); err != nil {
			return fmt.Errorf("credit reward: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, model.OrderEventCreated, order)
	return order, nil
}

func (s *OrderService) GetByID(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// CancelOrder cancels a pending order the user owns, takes back the reward it
// earned and returns its units to stock.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.LockByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if order == nil || order.UserID != userID {
			return ErrOrderNotFound
		}
		if order.Status != model.OrderStatusPending {
			return ErrOrderNotPending
		}

		ok, err := s.orderRepo.TransitionStatus(ctx, orderID, model.OrderStatusPending, model.OrderStatusCancelled)
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		if !ok {
			return ErrOrderNotPending
		}

		if err := s.userRepo.RevokeReward(ctx, userID, rewardDelta(order)); err != nil {
			return fmt.Errorf("revoke reward: %w", err)
		}
		for _, item := range order.Items {
			if item.ProductID == nil {
				continue
			}
			if err := s.productRepo.RestoreStock(ctx, *item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
		order.Status = model.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, model.OrderEventCancelled, order)
	return order, nil
}

// CompleteOrder marks a pending order as fulfilled.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.LockByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status != model.OrderStatusPending {
			return ErrOrderNotPending
		}

		ok, err := s.orderRepo.TransitionStatus(ctx, orderID, model.OrderStatusPending, model.OrderStatusCompleted)
		if err != nil {
			return fmt.Errorf("complete order: %w", err)
		}
		if !ok {
			return ErrOrderNotPending
		}
		order.Status = model.OrderStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) afterCommit(ctx context.Context, typ model.OrderEventType, order *model.Order) {
	dropLeaderboard(ctx, s.redisClient)
	if s.publisher == nil {
		return
	}
	event := model.OrderEvent{Type: typ, OrderID: order.ID, UserID: order.UserID}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.log.Error("publish order event", "type", typ, "order_id", order.ID, "error", err)
	}
}

func rewardDelta(order *model.Order) model.RewardDelta {
	return model.RewardDelta{
		GreenPoints:  order.GreenPointsEarned,
		CO2Saved:     order.CO2Saved,
		PlasticSaved: order.PlasticSaved,
	}
}
