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

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Ranking returns every user id ordered by green points, highest first.
	Ranking(ctx context.Context) ([]uuid.UUID, error)
	TopByGreenPoints(ctx context.Context, limit int) ([]model.User, error)
	CreditReward(ctx context.Context, id uuid.UUID, delta model.RewardDelta) error
	RevokeReward(ctx context.Context, id uuid.UUID, delta model.RewardDelta) error
}

type pgUserRepo struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepo{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, green_points, total_co2_saved, total_plastic_saved, created_at, updated_at`

const rankingOrder = `ORDER BY green_points DESC, created_at ASC, id ASC`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Password, &u.Role,
		&u.GreenPoints, &u.TotalCO2Saved, &u.TotalPlasticSaved, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	query := `INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.Password, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) Ranking(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id FROM users `+rankingOrder)
	if err != nil {
		return nil, fmt.Errorf("rank users: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgUserRepo) TopByGreenPoints(ctx context.Context, limit int) ([]model.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+userColumns+` FROM users `+rankingOrder+` LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *pgUserRepo) CreditReward(ctx context.Context, id uuid.UUID, delta model.RewardDelta) error {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE users SET green_points = green_points + $2,
		                  total_co2_saved = total_co2_saved + $3,
		                  total_plastic_saved = total_plastic_saved + $4,
		                  updated_at = NOW()
		 WHERE id = $1`,
		id, delta.GreenPoints, delta.CO2Saved, delta.PlasticSaved,
	)
	if err != nil {
		return fmt.Errorf("credit reward: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgUserRepo) RevokeReward(ctx context.Context, id uuid.UUID, delta model.RewardDelta) error {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE users SET green_points = GREATEST(green_points - $2, 0),
		                  total_co2_saved = GREATEST(total_co2_saved - $3, 0),
		                  total_plastic_saved = GREATEST(total_plastic_saved - $4, 0),
		                  updated_at = NOW()
		 WHERE id = $1`,
		id, delta.GreenPoints, delta.CO2Saved, delta.PlasticSaved,
	)
	if err != nil {
		return fmt.Errorf("revoke reward: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
