package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                uuid.UUID
	Email             string
	Name              string
	Password          string
	Role              string
	GreenPoints       int
	TotalCO2Saved     float64
	TotalPlasticSaved float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Product struct {
	ID                  uuid.UUID
	Name                string
	Description         string
	Price               decimal.Decimal
	ImageURL            string
	Stock               int
	Category            string
	IsEcoFriendly       bool
	CarbonFootprint     float64
	PlasticContent      float64
	Recyclable          bool
	LocallySourced      bool
	SustainabilityScore int
	EcoTags             []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Product   *Product
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Status            OrderStatus
	Total             decimal.Decimal
	GreenPointsEarned int
	CO2Saved          float64
	PlasticSaved      float64
	Items             []OrderItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem is a snapshot of a cart line at checkout. ProductID is nil once the
// product has been deleted from the catalog.
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     *uuid.UUID
	ProductName   string
	IsEcoFriendly bool
	Quantity      int
	Price         decimal.Decimal
}

// RewardDelta is what a checkout credits to a user, and what a cancellation takes back.
type RewardDelta struct {
	GreenPoints  int
	CO2Saved     float64
	PlasticSaved float64
}

const (
	PackagingStandard    = "standard"
	PackagingMinimal     = "minimal"
	PackagingPlasticFree = "plastic-free"
	PackagingReusable    = "reusable"
)

type UserPreference struct {
	UserID              uuid.UUID
	PackagingPreference string
	NotifyGreenDeals    bool
	ShowCarbonFootprint bool
	UpdatedAt           time.Time
}

func DefaultPreference(userID uuid.UUID) UserPreference {
	return UserPreference{
		UserID:              userID,
		PackagingPreference: PackagingStandard,
		NotifyGreenDeals:    true,
		ShowCarbonFootprint: true,
	}
}

func ValidPackaging(p string) bool {
	switch p {
	case PackagingStandard, PackagingMinimal, PackagingPlasticFree, PackagingReusable:
		return true
	}
	return false
}

type OrderEventType string

const (
	OrderEventCreated   OrderEventType = "order.created"
	OrderEventCancelled OrderEventType = "order.cancelled"
)

type OrderEvent struct {
	Type    OrderEventType `json:"type"`
	OrderID uuid.UUID      `json:"order_id"`
	UserID  uuid.UUID      `json:"user_id"`
}
