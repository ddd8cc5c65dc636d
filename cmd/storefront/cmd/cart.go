package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/freshmart/storefront/internal/domain/cart"
)

var cartAddQty int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		lines := app.cart.Lines()
		if len(lines) == 0 {
			fmt.Println("Cart is empty")
			return nil
		}

		fmt.Printf("%-6s %-32s %10s %5s %10s\n", "ID", "NAME", "PRICE", "QTY", "SUBTOTAL")
		for _, l := range lines {
			fmt.Printf("%-6d %-32s %10.2f %5d %10.2f\n", l.ProductID, l.Name, l.UnitPrice, l.Quantity, l.Subtotal())
		}
		fmt.Printf("%d item(s), total %.2f\n", app.cart.Count(), app.cart.Total())
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
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

		// Fetch the product for its current price and stock snapshot.
		p, err := app.client.Product(cmd.Context(), id)
		if err != nil {
			return err
		}

		if err := app.cart.Add(cart.Product{
			ID:    p.ID,
			Name:  p.Name,
			Price: float64(p.Price),
			Stock: p.Stock,
		}, cartAddQty); err != nil {
			return err
		}

		fmt.Printf("Added %d x %s (cart: %d item(s), total %.2f)\n",
			cartAddQty, p.Name, app.cart.Count(), app.cart.Total())
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
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

		app.cart.Remove(id)
		fmt.Println("Removed")
		return nil
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set a line's quantity (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		if err := app.cart.SetQuantity(id, qty); err != nil {
			return err
		}
		fmt.Printf("Cart: %d item(s), total %.2f\n", app.cart.Count(), app.cart.Total())
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		app.cart.Clear()
		fmt.Println("Cart cleared")
		return nil
	},
}

func init() {
	cartAddCmd.Flags().IntVar(&cartAddQty, "qty", 1, "quantity to add")

	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartSetCmd, cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}
