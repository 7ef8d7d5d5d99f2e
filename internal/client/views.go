package client

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/shopspring/decimal"

	"github.com/flicky/green-store/internal/dto"
)

const maxColWidth = 40

func newTable(header ...any) *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = maxColWidth
	t.Wrap = true
	t.AddRow(header...)
	return t
}

func flush(w io.Writer, t *uitable.Table) error {
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func RenderProducts(w io.Writer, products []dto.ProductResponse) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products found.")
		return err
	}
	t := newTable("ID", "NAME", "CATEGORY", "PRICE", "STOCK", "ECO", "CO2 KG", "PLASTIC G", "TAGS")
	for _, p := range products {
		t.AddRow(p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock, yesNo(p.IsEcoFriendly),
			p.CarbonFootprint, p.PlasticContent, strings.Join(p.EcoTags, ","))
	}
	return flush(w, t)
}

// RenderProduct is the detail view of a single product.
func RenderProduct(w io.Writer, p *dto.ProductResponse) error {
	t := uitable.New()
	t.MaxColWidth = 60
	t.Wrap = true
	t.AddRow("ID:", p.ID)
	t.AddRow("Name:", p.Name)
	t.AddRow("Description:", p.Description)
	t.AddRow("Category:", p.Category)
	t.AddRow("Price:", p.Price.StringFixed(2))
	t.AddRow("Stock:", p.Stock)
	t.AddRow("Eco-friendly:", yesNo(p.IsEcoFriendly))
	t.AddRow("Carbon footprint:", fmt.Sprintf("%g kg", p.CarbonFootprint))
	t.AddRow("Plastic content:", fmt.Sprintf("%g g", p.PlasticContent))
	t.AddRow("Recyclable:", yesNo(p.Recyclable))
	t.AddRow("Locally sourced:", yesNo(p.LocallySourced))
	t.AddRow("Tags:", strings.Join(p.EcoTags, ", "))
	return flush(w, t)
}

func RenderCart(w io.Writer, cart []dto.CartItemResponse) error {
	if len(cart) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty.")
		return err
	}
	total := decimal.Zero
	t := newTable("ITEM ID", "PRODUCT", "QTY", "PRICE", "SUBTOTAL", "ECO")
	for _, item := range cart {
		subtotal := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		t.AddRow(item.ID, item.Product.Name, item.Quantity, item.Product.Price.StringFixed(2),
			subtotal.StringFixed(2), yesNo(item.Product.IsEcoFriendly))
	}
	t.AddRow("", "", "", "TOTAL", total.StringFixed(2), "")
	return flush(w, t)
}

func RenderOrders(w io.Writer, orders []dto.OrderResponse) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders yet.")
		return err
	}
	t := newTable("ORDER ID", "STATUS", "TOTAL", "ITEMS", "POINTS", "CO2 SAVED", "PLASTIC SAVED", "PLACED")
	for _, o := range orders {
		t.AddRow(o.ID, o.Status, o.Total.StringFixed(2), len(o.Items), o.GreenPointsEarned,
			o.CO2Saved, o.PlasticSaved, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return flush(w, t)
}

// RenderOrder prints the order header followed by its frozen lines.
func RenderOrder(w io.Writer, o *dto.OrderResponse) error {
	if _, err := fmt.Fprintf(w, "Order %s  %s  total %s  +%d points\n",
		o.ID, o.Status, o.Total.StringFixed(2), o.GreenPointsEarned); err != nil {
		return err
	}
	t := newTable("PRODUCT", "QTY", "PRICE", "SUBTOTAL", "ECO")
	for _, item := range o.Items {
		t.AddRow(item.Product.Name, item.Quantity, item.Price.StringFixed(2),
			item.Subtotal.StringFixed(2), yesNo(item.Product.IsEcoFriendly))
	}
	return flush(w, t)
}

func RenderDashboard(w io.Writer, d *dto.DashboardResponse) error {
	t := uitable.New()
	t.AddRow("Green points:", d.GreenPoints)
	t.AddRow("CO2 saved:", fmt.Sprintf("%.1f kg", d.TotalCO2Saved))
	t.AddRow("Plastic saved:", fmt.Sprintf("%.0f g", d.TotalPlasticSaved))
	t.AddRow("Eco products purchased:", d.EcoProductsPurchased)
	if d.GlobalRank > 0 {
		t.AddRow("Global rank:", fmt.Sprintf("#%d of %d", d.GlobalRank, d.TotalUsers))
	} else {
		t.AddRow("Global rank:", fmt.Sprintf("unranked (%d users)", d.TotalUsers))
	}
	return flush(w, t)
}

func RenderLeaderboard(w io.Writer, entries []dto.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Nobody has earned green points yet.")
		return err
	}
	t := newTable("#", "NAME", "POINTS", "CO2 SAVED", "PLASTIC SAVED")
	for i, e := range entries {
		t.AddRow(i+1, e.Name, e.GreenPoints, fmt.Sprintf("%.1f", e.TotalCO2Saved), fmt.Sprintf("%.0f", e.TotalPlasticSaved))
	}
	return flush(w, t)
}

func RenderImpact(w io.Writer, impact *dto.CartImpactResponse) error {
	t := uitable.New()
	t.AddRow("Eco-friendly items:", fmt.Sprintf("%d of %d (%d%%)", impact.EcoFriendlyItems, impact.TotalItems, impact.EcoPercentage))
	t.AddRow("CO2:", fmt.Sprintf("%.1f kg", impact.TotalCO2))
	t.AddRow("Plastic:", fmt.Sprintf("%.0f g", impact.TotalPlastic))
	t.AddRow("Points on checkout:", impact.PotentialGreenPoints)
	return flush(w, t)
}

func RenderPreferences(w io.Writer, p *dto.PreferencesResponse) error {
	t := uitable.New()
	t.AddRow("Packaging:", p.PackagingPreference)
	t.AddRow("Green deal notifications:", p.NotifyGreenDeals)
	t.AddRow("Show carbon footprint:", p.ShowCarbonFootprint)
	return flush(w, t)
}

func RenderUser(w io.Writer, u *dto.UserResponse) error {
	t := uitable.New()
	t.AddRow("Name:", u.Name)
	t.AddRow("Email:", u.Email)
	t.AddRow("Role:", u.Role)
	t.AddRow("Green points:", u.GreenPoints)
	return flush(w, t)
}

// Toast prints a one-line notice. Errors are red, everything else green.
func Toast(w io.Writer, err error, format string, args ...any) {
	if err != nil {
		msg := err.Error()
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		color.New(color.FgRed).Fprintln(w, "✗ "+msg)
		return
	}
	color.New(color.FgGreen).Fprintln(w, "✓ "+fmt.Sprintf(format, args...))
}
