package client

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/flicky/green-store/internal/dto"
)

// SeedProduct is one entry of a YAML catalog file.
type SeedProduct struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Price           float64  `yaml:"price"`
	ImageURL        string   `yaml:"imageUrl"`
	Stock           int      `yaml:"stock"`
	Category        string   `yaml:"category"`
	IsEcoFriendly   bool     `yaml:"ecoFriendly"`
	CarbonFootprint float64  `yaml:"carbonFootprint"`
	PlasticContent  float64  `yaml:"plasticContent"`
	Recyclable      bool     `yaml:"recyclable"`
	LocallySourced  bool     `yaml:"locallySourced"`
	EcoTags         []string `yaml:"ecoTags"`
}

type seedFile struct {
	Products []SeedProduct `yaml:"products"`
}

// LoadCatalog decodes a YAML document of the form `products: [...]`.
func LoadCatalog(r io.Reader) ([]dto.ProductRequest, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	reqs := make([]dto.ProductRequest, 0, len(f.Products))
	for i, p := range f.Products {
		if p.Name == "" {
			return nil, fmt.Errorf("product %d: name is required", i+1)
		}
		price := decimal.NewFromFloat(p.Price).Round(2)
		reqs = append(reqs, dto.ProductRequest{
			Name:            p.Name,
			Description:     p.Description,
			Price:           &price,
			ImageURL:        p.ImageURL,
			Stock:           dto.Int(p.Stock),
			Category:        p.Category,
			IsEcoFriendly:   dto.Bool(p.IsEcoFriendly),
			CarbonFootprint: dto.Float(p.CarbonFootprint),
			PlasticContent:  dto.Float(p.PlasticContent),
			Recyclable:      dto.Bool(p.Recyclable),
			LocallySourced:  dto.Bool(p.LocallySourced),
			EcoTags:         p.EcoTags,
		})
	}
	return reqs, nil
}

// Seed creates every product in order and stops at the first failure. It
// returns how many were created.
func Seed(ctx context.Context, c *Client, reqs []dto.ProductRequest) (int, error) {
	for i, req := range reqs {
		if _, err := c.CreateProduct(ctx, req); err != nil {
			return i, fmt.Errorf("create %q: %w", req.Name, err)
		}
	}
	return len(reqs), nil
}
