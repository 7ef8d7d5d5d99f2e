package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/flicky/green-store/internal/client"
	"github.com/flicky/green-store/internal/dto"
)

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID %q", kind, s)
	}
	return id, nil
}

func (a *app) productsCmd() *cobra.Command {
	var query, category string
	cmd := &cobra.Command{
		Use:   "products [id]",
		Short: "Browse the catalog, or show one product",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := parseID("product", args[0])
				if err != nil {
					return err
				}
				p, err := a.api().GetProduct(cmd.Context(), id)
				if err != nil {
					return err
				}
				return client.RenderProduct(a.out, p)
			}

			products, err := a.api().ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			return client.RenderProducts(a.out, client.FilterProducts(products, query, category))
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "match name or description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "exact category")
	return cmd
}

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cart",
		Short:   "Show and change your cart",
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.RefreshCart(cmd.Context()); err != nil {
				return err
			}
			return client.RenderCart(a.out, a.session.Cart)
		},
	}

	var qty int
	add := &cobra.Command{
		Use:     "add <product-id>",
		Short:   "Add a product, merging with an existing line",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			item, err := a.api().AddToCart(cmd.Context(), id, qty)
			if err != nil {
				return err
			}
			a.ok("%s x%d in cart", item.Product.Name, item.Quantity)
			return nil
		},
	}
	add.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")

	set := &cobra.Command{
		Use:     "set <item-id> <quantity>",
		Short:   "Set a line's quantity; 0 removes it",
		Args:    cobra.ExactArgs(2),
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cart item", args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			if err := a.api().SetCartQuantity(cmd.Context(), id, n); err != nil {
				return err
			}
			a.ok("Cart updated")
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <item-id>",
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("cart item", args[0])
			if err != nil {
				return err
			}
			if err := a.api().RemoveCartItem(cmd.Context(), id); err != nil {
				return err
			}
			a.ok("Item removed from cart")
			return nil
		},
	}

	cmd.AddCommand(add, set, rm)
	return cmd
}

func (a *app) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "checkout",
		Short:   "Place an order for everything in the cart",
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := a.api().Checkout(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.RenderOrder(a.out, order); err != nil {
				return err
			}
			a.ok("Order placed, you earned %d green points", order.GreenPointsEarned)
			return nil
		},
	}
}

func (a *app) ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "orders [id]",
		Short:   "List your orders, or show one",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := parseID("order", args[0])
				if err != nil {
					return err
				}
				order, err := a.api().GetOrder(cmd.Context(), id)
				if err != nil {
					return err
				}
				return client.RenderOrder(a.out, order)
			}
			orders, err := a.api().ListOrders(cmd.Context())
			if err != nil {
				return err
			}
			return client.RenderOrders(a.out, orders)
		},
	}
}

func (a *app) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "cancel <order-id>",
		Short:   "Cancel a pending order",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			if _, err := a.api().CancelOrder(cmd.Context(), id); err != nil {
				return err
			}
			a.ok("Order cancelled")
			return nil
		},
	}
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Short:   "Your sustainability totals and rank",
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.api().Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return client.RenderDashboard(a.out, d)
		},
	}
}

func (a *app) leaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Top green shoppers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.api().Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			return client.RenderLeaderboard(a.out, entries)
		},
	}
}

func (a *app) impactCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "impact",
		Short:   "What checking out the current cart would earn",
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, _ []string) error {
			impact, err := a.api().CartImpact(cmd.Context())
			if err != nil {
				return err
			}
			return client.RenderImpact(a.out, impact)
		},
	}
}

func (a *app) prefsCmd() *cobra.Command {
	var (
		packaging  string
		notify     bool
		showCarbon bool
	)
	cmd := &cobra.Command{
		Use:     "prefs",
		Short:   "Show or change sustainability preferences",
		PreRunE: a.requireUser,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req dto.UpdatePreferencesRequest
			flags := cmd.Flags()
			if flags.Changed("packaging") {
				req.PackagingPreference = &packaging
			}
			if flags.Changed("notify") {
				req.NotifyGreenDeals = &notify
			}
			if flags.Changed("show-carbon") {
				req.ShowCarbonFootprint = &showCarbon
			}

			var (
				prefs *dto.PreferencesResponse
				err   error
			)
			if req == (dto.UpdatePreferencesRequest{}) {
				prefs, err = a.api().Preferences(cmd.Context())
			} else {
				prefs, err = a.api().UpdatePreferences(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			return client.RenderPreferences(a.out, prefs)
		},
	}
	cmd.Flags().StringVar(&packaging, "packaging", "", "standard, minimal, plastic-free or reusable")
	cmd.Flags().BoolVar(&notify, "notify", true, "notify me about green deals")
	cmd.Flags().BoolVar(&showCarbon, "show-carbon", true, "show carbon footprints")
	return cmd
}
