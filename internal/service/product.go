package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/repository"
)

var ErrProductNotFound = errors.New("product not found")

const (
	productCacheTTL     = 60 * time.Second
	productListCacheKey = "products:all"
)

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	product.SustainabilityScore = 0
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidateCache(ctx, product.ID)
	resp := dto.ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	var cached dto.ProductResponse
	if s.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := dto.ToProductResponse(product)
	s.writeCache(ctx, cacheKey, resp)
	return &resp, nil
}

// List returns the whole catalog, newest first.
func (s *ProductService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	var cached []dto.ProductResponse
	if s.readCache(ctx, productListCacheKey, &cached) {
		return cached, nil
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.ToProductResponse(&products[i]))
	}
	s.writeCache(ctx, productListCacheKey, items)
	return items, nil
}

// ListModels returns the catalog without the cache, for exports.
func (s *ProductService) ListModels(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error) {
	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	product.ID = id

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateCache(ctx, id)
	resp := dto.ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

// measure checks an impact figure is a finite, non-negative number.
func measure(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, "must not be negative")
	}
	return nil
}

func productFromRequest(req dto.ProductRequest) (*model.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, invalid("name", "is required")
	}
	if req.Price == nil {
		return nil, invalid("price", "is required")
	}
	if req.Price.IsNegative() {
		return nil, invalid("price", "must not be negative")
	}
	if req.Stock < 0 {
		return nil, invalid("stock", "must not be negative")
	}
	if err := measure("carbonFootprint", float64(req.CarbonFootprint)); err != nil {
		return nil, err
	}
	if err := measure("plasticContent", float64(req.PlasticContent)); err != nil {
		return nil, err
	}

	return &model.Product{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           req.Price.Round(2),
		ImageURL:        req.ImageURL,
		Stock:           int(req.Stock),
		Category:        req.Category,
		IsEcoFriendly:   bool(req.IsEcoFriendly),
		CarbonFootprint: float64(req.CarbonFootprint),
		PlasticContent:  float64(req.PlasticContent),
		Recyclable:      bool(req.Recyclable),
		LocallySourced:  bool(req.LocallySourced),
		EcoTags:         normalizeTags(req.EcoTags),
	}, nil
}

// normalizeTags trims, lower-cases and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *ProductService) readCache(ctx context.Context, key string, dst any) bool {
	if s.redisClient == nil {
		return false
	}
	cached, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

func (s *ProductService) writeCache(ctx context.Context, key string, v any) {
	if s.redisClient == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		s.redisClient.Set(ctx, key, data, productCacheTTL)
	}
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String(), productListCacheKey)
	}
}
