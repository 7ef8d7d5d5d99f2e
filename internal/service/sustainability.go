package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/repository"
	"github.com/flicky/green-store/internal/sustainability"
)

const (
	leaderboardCacheKey = "leaderboard:top"
	leaderboardCacheTTL = 30 * time.Second
	leaderboardSize     = 10
)

// dropLeaderboard forgets the cached leaderboard after anything that can
// change who is on it or in what order.
func dropLeaderboard(ctx context.Context, rdb *redis.Client) {
	if rdb != nil {
		rdb.Del(ctx, leaderboardCacheKey)
	}
}

type SustainabilityService struct {
	tx          repository.Transactor
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	prefRepo    repository.PreferenceRepository
	redisClient *redis.Client
}

func NewSustainabilityService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	prefRepo repository.PreferenceRepository,
	redisClient *redis.Client,
) *SustainabilityService {
	return &SustainabilityService{
		tx:          tx,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		prefRepo:    prefRepo,
		redisClient: redisClient,
	}
}

func (s *SustainabilityService) Dashboard(ctx context.Context, userID uuid.UUID) (*dto.DashboardResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	ecoItems, err := s.orderRepo.CountEcoItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count eco items: %w", err)
	}

	ranking, err := s.userRepo.Ranking(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank users: %w", err)
	}

	return &dto.DashboardResponse{
		GreenPoints:          user.GreenPoints,
		TotalCO2Saved:        user.TotalCO2Saved,
		TotalPlasticSaved:    user.TotalPlasticSaved,
		EcoProductsPurchased: ecoItems,
		GlobalRank:           sustainability.Rank(ranking, userID),
		TotalUsers:           len(ranking),
	}, nil
}

func (s *SustainabilityService) GetPreferences(ctx context.Context, userID uuid.UUID) (*model.UserPreference, error) {
	var pref *model.UserPreference
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		pref, err = s.prefRepo.GetOrCreate(ctx, model.DefaultPreference(userID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return pref, nil
}

// UpdatePreferences applies the fields present in req over the current values.
func (s *SustainabilityService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req dto.UpdatePreferencesRequest) (*model.UserPreference, error) {
	if req.PackagingPreference != nil && !model.ValidPackaging(*req.PackagingPreference) {
		return nil, invalid("packagingPreference", "must be one of standard, minimal, plastic-free, reusable")
	}

	var pref *model.UserPreference
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		pref, err = s.prefRepo.GetOrCreate(ctx, model.DefaultPreference(userID))
		if err != nil {
			return err
		}
		if req.PackagingPreference != nil {
			pref.PackagingPreference = *req.PackagingPreference
		}
		if req.NotifyGreenDeals != nil {
			pref.NotifyGreenDeals = *req.NotifyGreenDeals
		}
		if req.ShowCarbonFootprint != nil {
			pref.ShowCarbonFootprint = *req.ShowCarbonFootprint
		}
		return s.prefRepo.Upsert(ctx, pref)
	})
	if err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return pref, nil
}

func (s *SustainabilityService) Leaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, leaderboardCacheKey).Result(); err == nil {
			var entries []dto.LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	users, err := s.userRepo.TopByGreenPoints(ctx, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}

	entries := make([]dto.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, dto.LeaderboardEntry{
			Name:              u.Name,
			GreenPoints:       u.GreenPoints,
			TotalCO2Saved:     u.TotalCO2Saved,
			TotalPlasticSaved: u.TotalPlasticSaved,
		})
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(entries); err == nil {
			s.redisClient.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL)
		}
	}
	return entries, nil
}

// CartImpact projects the reward the user's current cart would earn at checkout.
func (s *SustainabilityService) CartImpact(ctx context.Context, userID uuid.UUID) (sustainability.Impact, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return sustainability.Impact{}, fmt.Errorf("list cart: %w", err)
	}
	return sustainability.CartImpact(CartLines(items)), nil
}

// CartLines converts cart rows into scoring lines. Rows without a product are skipped.
func CartLines(items []model.CartItem) []sustainability.Line {
	lines := make([]sustainability.Line, 0, len(items))
	for _, ci := range items {
		if ci.Product == nil {
			continue
		}
		lines = append(lines, sustainability.Line{
			Quantity:        ci.Quantity,
			CarbonFootprint: ci.Product.CarbonFootprint,
			PlasticContent:  ci.Product.PlasticContent,
			EcoFriendly:     ci.Product.IsEcoFriendly,
		})
	}
	return lines
}
