package client

import (
	"sort"
	"strings"

	"github.com/flicky/green-store/internal/dto"
)

// FilterProducts narrows a fetched catalog locally. query matches name or
// description case-insensitively; category must match exactly. Empty values
// match everything.
func FilterProducts(products []dto.ProductResponse, query, category string) []dto.ProductResponse {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories lists the distinct non-empty categories in the catalog, sorted.
func Categories(products []dto.ProductResponse) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
