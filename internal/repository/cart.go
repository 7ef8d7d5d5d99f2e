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

type CartRepository interface {
	// ListByUser returns the user's cart lines joined with their products, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	// LockByUser is ListByUser with the user's cart rows locked until the
	// surrounding transaction ends. Product rows are not locked.
	LockByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error)
	// AddItem inserts a line or increments the quantity of the existing
	// (user, product) line. item is updated with the stored row.
	AddItem(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	// DeleteItems removes exactly the given lines. Lines added since they were
	// read are left alone.
	DeleteItems(ctx context.Context, ids []uuid.UUID) error
}

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

const cartJoinQuery = `SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
	p.id, p.name, p.description, p.price, p.image_url, p.stock, p.category,
	p.is_eco_friendly, p.carbon_footprint, p.plastic_content, p.recyclable, p.locally_sourced,
	p.sustainability_score, p.eco_tags, p.created_at, p.updated_at
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	WHERE ci.user_id = $1
	ORDER BY ci.created_at ASC, ci.id ASC`

func (r *pgCartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	return r.list(ctx, cartJoinQuery, userID)
}

func (r *pgCartRepo) LockByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	return r.list(ctx, cartJoinQuery+` FOR UPDATE OF ci`, userID)
}

func (r *pgCartRepo) list(ctx context.Context, query string, userID uuid.UUID) ([]model.CartItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		p := &model.Product{}
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.Category,
			&p.IsEcoFriendly, &p.CarbonFootprint, &p.PlasticContent, &p.Recyclable, &p.LocallySourced,
			&p.SustainabilityScore, &p.EcoTags, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Product = p
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCartRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.CartItem, error) {
	item := &model.CartItem{}
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, user_id, product_id, quantity, created_at, updated_at FROM cart_items WHERE id = $1`, id,
	).Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

func (r *pgCartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	query := `INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
			  RETURNING id, quantity, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, uuid.New(), item.UserID, item.ProductID, item.Quantity).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgCartRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	ct, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgCartRepo) DeleteItems(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	return nil
}
