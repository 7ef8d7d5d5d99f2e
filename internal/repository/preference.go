package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/green-store/internal/model"
)

type PreferenceRepository interface {
	// GetOrCreate returns the stored preferences, inserting def first if the user
	// has none. Concurrent first reads converge on a single row.
	GetOrCreate(ctx context.Context, def model.UserPreference) (*model.UserPreference, error)
	Upsert(ctx context.Context, pref *model.UserPreference) error
}

type pgPreferenceRepo struct{ pool *pgxpool.Pool }

func NewPreferenceRepository(pool *pgxpool.Pool) PreferenceRepository {
	return &pgPreferenceRepo{pool: pool}
}

func (r *pgPreferenceRepo) GetOrCreate(ctx context.Context, def model.UserPreference) (*model.UserPreference, error) {
	q := conn(ctx, r.pool)
	_, err := q.Exec(ctx,
		`INSERT INTO user_preferences (user_id, packaging_preference, notify_green_deals, show_carbon_footprint, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		def.UserID, def.PackagingPreference, def.NotifyGreenDeals, def.ShowCarbonFootprint,
	)
	if err != nil {
		return nil, fmt.Errorf("create preferences: %w", err)
	}
	return r.get(ctx, q, def.UserID)
}

func (r *pgPreferenceRepo) get(ctx context.Context, q querier, userID uuid.UUID) (*model.UserPreference, error) {
	pref := &model.UserPreference{}
	err := q.QueryRow(ctx,
		`SELECT user_id, packaging_preference, notify_green_deals, show_carbon_footprint, updated_at
		 FROM user_preferences WHERE user_id = $1`, userID,
	).Scan(&pref.UserID, &pref.PackagingPreference, &pref.NotifyGreenDeals, &pref.ShowCarbonFootprint, &pref.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return pref, nil
}

func (r *pgPreferenceRepo) Upsert(ctx context.Context, pref *model.UserPreference) error {
	err := conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO user_preferences (user_id, packaging_preference, notify_green_deals, show_carbon_footprint, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		     packaging_preference = EXCLUDED.packaging_preference,
		     notify_green_deals = EXCLUDED.notify_green_deals,
		     show_carbon_footprint = EXCLUDED.show_carbon_footprint,
		     updated_at = NOW()
		 RETURNING updated_at`,
		pref.UserID, pref.PackagingPreference, pref.NotifyGreenDeals, pref.ShowCarbonFootprint,
	).Scan(&pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
