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

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error
	RestoreStock(ctx context.Context, productID uuid.UUID, quantity int) error
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, name, description, price, image_url, stock, category,
	is_eco_friendly, carbon_footprint, plastic_content, recyclable, locally_sourced,
	sustainability_score, eco_tags, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.Category,
		&p.IsEcoFriendly, &p.CarbonFootprint, &p.PlasticContent, &p.Recyclable, &p.LocallySourced,
		&p.SustainabilityScore, &p.EcoTags, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	if product.EcoTags == nil {
		product.EcoTags = []string{}
	}
	query := `INSERT INTO products (id, name, description, price, image_url, stock, category,
				is_eco_friendly, carbon_footprint, plastic_content, recyclable, locally_sourced,
				sustainability_score, eco_tags, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.ImageURL,
		product.Stock, product.Category, product.IsEcoFriendly, product.CarbonFootprint,
		product.PlasticContent, product.Recyclable, product.LocallySourced,
		product.SustainabilityScore, product.EcoTags,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p := &model.Product{}
	err := scanProduct(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	if product.EcoTags == nil {
		product.EcoTags = []string{}
	}
	query := `UPDATE products SET name=$2, description=$3, price=$4, image_url=$5, stock=$6,
				category=$7, is_eco_friendly=$8, carbon_footprint=$9, plastic_content=$10,
				recyclable=$11, locally_sourced=$12, eco_tags=$13, updated_at=NOW()
			  WHERE id=$1 RETURNING sustainability_score, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.ImageURL,
		product.Stock, product.Category, product.IsEcoFriendly, product.CarbonFootprint,
		product.PlasticContent, product.Recyclable, product.LocallySourced, product.EcoTags,
	).Scan(&product.SustainabilityScore, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgProductRepo) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrInsufficientStock)
	}
	return nil
}

// RestoreStock puts quantity back on a product. A product deleted since is ignored.
func (r *pgProductRepo) RestoreStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}
