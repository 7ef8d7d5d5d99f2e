package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/sustainability"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	GreenPoints       int       `json:"greenPoints"`
	TotalCO2Saved     float64   `json:"totalCO2Saved"`
	TotalPlasticSaved float64   `json:"totalPlasticSaved"`
}

// --- Product ---

// ProductRequest is the body of both create and update; update replaces every field.
type ProductRequest struct {
	Name            string           `json:"name" binding:"required"`
	Description     string           `json:"description"`
	Price           *decimal.Decimal `json:"price" binding:"required"`
	ImageURL        string           `json:"imageUrl"`
	Stock           Int              `json:"stock"`
	Category        string           `json:"category"`
	IsEcoFriendly   Bool             `json:"isEcoFriendly"`
	CarbonFootprint Float            `json:"carbonFootprint"`
	PlasticContent  Float            `json:"plasticContent"`
	Recyclable      Bool             `json:"recyclable"`
	LocallySourced  Bool             `json:"locallySourced"`
	EcoTags         []string         `json:"ecoTags"`
}

type ProductResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	Price               decimal.Decimal `json:"price"`
	ImageURL            string          `json:"imageUrl"`
	Stock               int             `json:"stock"`
	Category            string          `json:"category"`
	IsEcoFriendly       bool            `json:"isEcoFriendly"`
	CarbonFootprint     float64         `json:"carbonFootprint"`
	PlasticContent      float64         `json:"plasticContent"`
	Recyclable          bool            `json:"recyclable"`
	LocallySourced      bool            `json:"locallySourced"`
	SustainabilityScore int             `json:"sustainabilityScore"`
	EcoTags             []string        `json:"ecoTags"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func ToProductResponse(p *model.Product) ProductResponse {
	tags := p.EcoTags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		Price:               p.Price,
		ImageURL:            p.ImageURL,
		Stock:               p.Stock,
		Category:            p.Category,
		IsEcoFriendly:       p.IsEcoFriendly,
		CarbonFootprint:     p.CarbonFootprint,
		PlasticContent:      p.PlasticContent,
		Recyclable:          p.Recyclable,
		LocallySourced:      p.LocallySourced,
		SustainabilityScore: p.SustainabilityScore,
		EcoTags:             tags,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"min=0"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CartItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   ProductResponse `json:"product"`
}

func ToCartResponse(items []model.CartItem) []CartItemResponse {
	resp := make([]CartItemResponse, 0, len(items))
	for i := range items {
		item := CartItemResponse{ID: items[i].ID, ProductID: items[i].ProductID, Quantity: items[i].Quantity}
		if items[i].Product != nil {
			item.Product = ToProductResponse(items[i].Product)
		}
		resp = append(resp, item)
	}
	return resp
}

// --- Order ---

type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"userId"`
	Status            model.OrderStatus   `json:"status"`
	Total             decimal.Decimal     `json:"total"`
	GreenPointsEarned int                 `json:"greenPointsEarned"`
	CO2Saved          float64             `json:"co2Saved"`
	PlasticSaved      float64             `json:"plasticSaved"`
	Items             []OrderItemResponse `json:"orderItems"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID *uuid.UUID       `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	Product   OrderItemProduct `json:"product"`
}

// OrderItemProduct is the product as it was at checkout.
type OrderItemProduct struct {
	Name          string `json:"name"`
	IsEcoFriendly bool   `json:"isEcoFriendly"`
}

func ToOrderResponse(order *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Product:   OrderItemProduct{Name: item.ProductName, IsEcoFriendly: item.IsEcoFriendly},
		})
	}
	return OrderResponse{
		ID:                order.ID,
		UserID:            order.UserID,
		Status:            order.Status,
		Total:             order.Total,
		GreenPointsEarned: order.GreenPointsEarned,
		CO2Saved:          order.CO2Saved,
		PlasticSaved:      order.PlasticSaved,
		Items:             items,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

// --- Sustainability ---

type DashboardResponse struct {
	GreenPoints          int     `json:"greenPoints"`
	TotalCO2Saved        float64 `json:"totalCO2Saved"`
	TotalPlasticSaved    float64 `json:"totalPlasticSaved"`
	EcoProductsPurchased int     `json:"ecoProductsPurchased"`
	GlobalRank           int     `json:"globalRank"`
	TotalUsers           int     `json:"totalUsers"`
}

type LeaderboardEntry struct {
	Name              string  `json:"name"`
	GreenPoints       int     `json:"greenPoints"`
	TotalCO2Saved     float64 `json:"totalCO2Saved"`
	TotalPlasticSaved float64 `json:"totalPlasticSaved"`
}

type CartImpactResponse = sustainability.Impact

type PreferencesResponse struct {
	UserID              uuid.UUID `json:"userId"`
	PackagingPreference string    `json:"packagingPreference"`
	NotifyGreenDeals    bool      `json:"notifyGreenDeals"`
	ShowCarbonFootprint bool      `json:"showCarbonFootprint"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type UpdatePreferencesRequest struct {
	PackagingPreference *string `json:"packagingPreference"`
	NotifyGreenDeals    *bool   `json:"notifyGreenDeals"`
	ShowCarbonFootprint *bool   `json:"showCarbonFootprint"`
}

func ToPreferencesResponse(p *model.UserPreference) PreferencesResponse {
	return PreferencesResponse{
		UserID:              p.UserID,
		PackagingPreference: p.PackagingPreference,
		NotifyGreenDeals:    p.NotifyGreenDeals,
		ShowCarbonFootprint: p.ShowCarbonFootprint,
		UpdatedAt:           p.UpdatedAt,
	}
}
