package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/flicky/green-store/internal/client"
	"github.com/flicky/green-store/internal/dto"
)

// productFlags binds the editable product fields to command flags.
type productFlags struct {
	name, description, imageURL, category, price string
	stock                                        int
	eco, recyclable, local                       bool
	carbon, plastic                              float64
	tags                                         []string
}

func (f *productFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "product name")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.imageURL, "image", "", "image URL")
	fs.StringVar(&f.category, "category", "", "category")
	fs.StringVar(&f.price, "price", "", "price, e.g. 9.99")
	fs.IntVar(&f.stock, "stock", 0, "units in stock")
	fs.BoolVar(&f.eco, "eco", false, "eco-friendly")
	fs.BoolVar(&f.recyclable, "recyclable", false, "recyclable")
	fs.BoolVar(&f.local, "local", false, "locally sourced")
	fs.Float64Var(&f.carbon, "carbon", 0, "carbon footprint in kg")
	fs.Float64Var(&f.plastic, "plastic", 0, "plastic content in g")
	fs.StringSliceVar(&f.tags, "tags", nil, "comma separated eco tags")
}

// apply overwrites the fields of req whose flags were set.
func (f *productFlags) apply(fs *pflag.FlagSet, req *dto.ProductRequest) error {
	if fs.Changed("price") {
		p, err := decimal.NewFromString(strings.TrimSpace(f.price))
		if err != nil {
			return fmt.Errorf("invalid price %q", f.price)
		}
		req.Price = &p
	}
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("name", func() { req.Name = f.name })
	set("description", func() { req.Description = f.description })
	set("image", func() { req.ImageURL = f.imageURL })
	set("category", func() { req.Category = f.category })
	set("stock", func() { req.Stock = dto.Int(f.stock) })
	set("eco", func() { req.IsEcoFriendly = dto.Bool(f.eco) })
	set("recyclable", func() { req.Recyclable = dto.Bool(f.recyclable) })
	set("local", func() { req.LocallySourced = dto.Bool(f.local) })
	set("carbon", func() { req.CarbonFootprint = dto.Float(f.carbon) })
	set("plastic", func() { req.PlasticContent = dto.Float(f.plastic) })
	set("tags", func() { req.EcoTags = f.tags })
	return nil
}

// requestFrom turns a stored product back into a full-replace body.
func requestFrom(p *dto.ProductResponse) dto.ProductRequest {
	price := p.Price
	return dto.ProductRequest{
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
	}
}

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Catalog management (admin accounts only)",
	}
	cmd.AddCommand(
		a.adminCreateCmd(),
		a.adminUpdateCmd(),
		a.adminDeleteCmd(),
		a.adminSeedCmd(),
		a.adminExportCmd(),
		a.adminCompleteCmd(),
	)
	return cmd
}

func (a *app) adminCreateCmd() *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Add a product to the catalog",
		PreRunE: a.requireAdmin,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req dto.ProductRequest
			if err := f.apply(cmd.Flags(), &req); err != nil {
				return err
			}
			p, err := a.api().CreateProduct(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.ok("Created %s (%s)", p.Name, p.ID)
			return nil
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func (a *app) adminUpdateCmd() *cobra.Command {
	var f productFlags
	cmd := &cobra.Command{
		Use:     "update <product-id>",
		Short:   "Change some fields of a product",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireAdmin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			current, err := a.api().GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			req := requestFrom(current)
			if err := f.apply(cmd.Flags(), &req); err != nil {
				return err
			}
			p, err := a.api().UpdateProduct(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			a.ok("Updated %s", p.Name)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *app) adminDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <product-id>",
		Short:   "Remove a product from the catalog",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireAdmin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			if err := a.api().DeleteProduct(cmd.Context(), id); err != nil {
				return err
			}
			a.ok("Product deleted")
			return nil
		},
	}
}

func (a *app) adminSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "seed <catalog.yaml>",
		Short:   "Create every product listed in a YAML file",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireAdmin,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			reqs, err := client.LoadCatalog(f)
			if err != nil {
				return err
			}
			n, err := client.Seed(cmd.Context(), a.api(), reqs)
			if err != nil {
				return fmt.Errorf("seeded %d of %d: %w", n, len(reqs), err)
			}
			a.ok("Seeded %d products", n)
			return nil
		},
	}
}

func (a *app) adminExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Download the catalog as an Excel workbook",
		PreRunE: a.requireAdmin,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := a.api().ExportProducts(cmd.Context(), f); err != nil {
				f.Close()
				_ = os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.ok("Catalog written to %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "products.xlsx", "destination file")
	return cmd
}

func (a *app) adminCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "complete <order-id>",
		Short:   "Mark a pending order as completed",
		Args:    cobra.ExactArgs(1),
		PreRunE: a.requireAdmin,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			if _, err := a.api().CompleteOrder(cmd.Context(), id); err != nil {
				return err
			}
			a.ok("Order completed")
			return nil
		},
	}
}
