package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/green-store/internal/model"
)

type OrderRepository interface {
	// Create inserts the order and its items.
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// LockByID is GetByID with the order row locked until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	// TransitionStatus moves an order from one status to another and reports
	// whether the order was in the from status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error)
	// CountEcoItems counts eco-friendly order lines across the user's orders that
	// were not cancelled.
	CountEcoItems(ctx context.Context, userID uuid.UUID) (int, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderColumns = `id, user_id, status, total, green_points_earned, co2_saved, plastic_saved, created_at, updated_at`

func scanOrder(row scanner, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.Total, &o.GreenPointsEarned,
		&o.CO2Saved, &o.PlasticSaved, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	q := conn(ctx, r.pool)
	order.ID = uuid.New()
	err := q.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, status, total, green_points_earned, co2_saved, plastic_saved, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.Status, order.Total,
		order.GreenPointsEarned, order.CO2Saved, order.PlasticSaved,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New()
		item.OrderID = order.ID
		_, err = q.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, product_name, is_eco_friendly, quantity, price, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.IsEcoFriendly,
			item.Quantity, item.Price, i,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *pgOrderRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *pgOrderRepo) get(ctx context.Context, query string, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	if err := scanOrder(conn(ctx, r.pool).QueryRow(ctx, query, id), order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.items(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *pgOrderRepo) items(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, order_id, product_id, product_name, is_eco_friendly, quantity, price
		 FROM order_items WHERE order_id = ANY($1) ORDER BY position ASC`, orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.IsEcoFriendly, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	return byOrder, rows.Err()
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	var ids []uuid.UUID
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *pgOrderRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`, id, from, to,
	)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

func (r *pgOrderRepo) CountEcoItems(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.user_id = $1 AND o.status <> $2 AND oi.is_eco_friendly`,
		userID, model.OrderStatusCancelled,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count eco items: %w", err)
	}
	return n, nil
}
