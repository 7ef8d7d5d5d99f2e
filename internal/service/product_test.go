package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/green-store/internal/dto"
)

func priceOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestProductService_Create(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.products.Create(context.Background(), dto.ProductRequest{
		Name: "Bamboo Cup", Price: priceOf("9.99"), Stock: 100,
		IsEcoFriendly: true, CarbonFootprint: 1.2,
		EcoTags: []string{" Bamboo", "bamboo", "", "Reusable"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bamboo Cup", resp.Name)
	assert.Equal(t, 100, resp.Stock)
	assert.True(t, resp.IsEcoFriendly)
	assert.Equal(t, []string{"bamboo", "reusable"}, resp.EcoTags)
	assert.Zero(t, resp.SustainabilityScore)
}

func TestProductService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]dto.ProductRequest{
		"price":            {Name: "x"},
		"negative price":   {Name: "x", Price: priceOf("-1")},
		"stock":            {Name: "x", Price: priceOf("1"), Stock: -1},
		"carbonFootprint":  {Name: "x", Price: priceOf("1"), CarbonFootprint: -0.5},
		"plasticContent":   {Name: "x", Price: priceOf("1"), PlasticContent: -2},
		"blank name":       {Name: "  ", Price: priceOf("1")},
		"NaN carbon":       {Name: "x", Price: priceOf("1"), CarbonFootprint: dto.Float(math.NaN())},
		"infinite plastic": {Name: "x", Price: priceOf("1"), PlasticContent: dto.Float(math.Inf(1))},
	}
	for name, req := range cases {
		_, err := env.products.Create(context.Background(), req)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, name)
	}
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.products.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Update(t *testing.T) {
	env := newTestEnv(t)
	p := env.product(t, "Cup", false, 1, 1, 5)

	resp, err := env.products.Update(context.Background(), p.ID, dto.ProductRequest{
		Name: "Glass Cup", Price: priceOf("12.50"), Stock: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Glass Cup", resp.Name)

	got, err := env.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")))

	_, err = env.products.Update(context.Background(), uuid.New(), dto.ProductRequest{Name: "x", Price: priceOf("1")})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_List_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.product(t, "first", false, 0, 0, 1)
	env.product(t, "second", false, 0, 0, 1)

	list, err := env.products.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name)
}

func TestProductService_Delete(t *testing.T) {
	env := newTestEnv(t)
	p := env.product(t, "Cup", false, 0, 0, 1)

	require.NoError(t, env.products.Delete(context.Background(), p.ID))
	_, err := env.products.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, env.products.Delete(context.Background(), p.ID), ErrProductNotFound)
}
