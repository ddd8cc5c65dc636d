package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/freshmart/storefront/internal/api"
)

var (
	productsSearch   string
	productsCategory int64
	productsPageSize int
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		page, err := app.client.Products(cmd.Context(), &api.ProductQuery{
			Search:   productsSearch,
			Category: productsCategory,
			PageSize: productsPageSize,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%-6s %-32s %10s %7s  %s\n", "ID", "NAME", "PRICE", "STOCK", "CATEGORY")
		for _, p := range page.Results {
			fmt.Printf("%-6d %-32s %10.2f %7d  %s\n", p.ID, p.Name, float64(p.Price), p.Stock, p.CategoryName)
		}
		fmt.Printf("%d product(s)\n", page.Count)
		return nil
	},
}

var productsGetCmd = &cobra.Command{
	Use:   "get <product-id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		p, err := app.client.Product(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("%s (#%d)\n", p.Name, p.ID)
		fmt.Printf("  Price:    %.2f\n", float64(p.Price))
		fmt.Printf("  Stock:    %d\n", p.Stock)
		fmt.Printf("  Category: %s\n", p.CategoryName)
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		page, err := app.client.Categories(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%-6s %-28s %8s\n", "ID", "NAME", "PRODUCTS")
		for _, c := range page.Results {
			fmt.Printf("%-6d %-28s %8d\n", c.ID, c.Name, c.ProductCount)
		}
		return nil
	},
}

func init() {
	productsListCmd.Flags().StringVar(&productsSearch, "search", "", "free-text search")
	productsListCmd.Flags().Int64Var(&productsCategory, "category", 0, "filter by category id")
	productsListCmd.Flags().IntVar(&productsPageSize, "page-size", 0, "results per page")

	productsCmd.AddCommand(productsListCmd, productsGetCmd)
	rootCmd.AddCommand(productsCmd, categoriesCmd)
}
