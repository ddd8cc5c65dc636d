package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/freshmart/storefront/internal/api"
)

var (
	checkoutAddress string
	checkoutNotes   string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "View and manage orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		page, err := app.client.Orders(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%-6s %-12s %10s %6s  %s\n", "ID", "STATUS", "TOTAL", "ITEMS", "CREATED")
		for _, o := range page.Results {
			fmt.Printf("%-6d %-12s %10.2f %6d  %s\n", o.ID, o.Status, float64(o.TotalAmount), o.ItemsCount, o.CreatedAt)
		}
		return nil
	},
}

var ordersGetCmd = &cobra.Command{
	Use:   "get <order-id>",
	Short: "Show one order with its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[0])
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		o, err := app.client.Order(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Order #%d  %s  total %.2f\n", o.ID, o.Status, float64(o.TotalAmount))
		fmt.Printf("  Ship to: %s\n", o.ShippingAddress)
		if o.OrderNotes != "" {
			fmt.Printf("  Notes:   %s\n", o.OrderNotes)
		}
		for _, item := range o.Items {
			fmt.Printf("  %d x %-32s %10.2f\n", item.Quantity, item.ProductName, float64(item.Subtotal))
		}
		return nil
	},
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a pending order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[0])
		}

		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		o, err := app.client.CancelOrder(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("Order #%d is now %s\n", o.ID, o.Status)
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from the cart (cash on delivery)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		lines := app.cart.Lines()
		if len(lines) == 0 {
			return errors.New("cart is empty")
		}

		items := make([]api.OrderItemCreate, 0, len(lines))
		for _, l := range lines {
			items = append(items, api.OrderItemCreate{Product: l.ProductID, Quantity: l.Quantity})
		}

		// Stock snapshots in the cart are not revalidated here; the order
		// endpoint is the authority on availability at placement time.
		o, err := app.client.CreateOrder(cmd.Context(), api.OrderCreate{
			ShippingAddress: checkoutAddress,
			OrderNotes:      checkoutNotes,
			Items:           items,
		})
		if err != nil {
			return err
		}

		app.cart.Clear()
		fmt.Printf("Order #%d placed, total %.2f\n", o.ID, float64(o.TotalAmount))
		return nil
	},
}

func init() {
	checkoutCmd.Flags().StringVar(&checkoutAddress, "address", "", "shipping address")
	checkoutCmd.Flags().StringVar(&checkoutNotes, "notes", "", "order notes")
	_ = checkoutCmd.MarkFlagRequired("address")

	ordersCmd.AddCommand(ordersListCmd, ordersGetCmd, ordersCancelCmd)
	rootCmd.AddCommand(ordersCmd, checkoutCmd)
}
