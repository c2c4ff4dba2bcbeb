package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slicemaster/storefront/internal/app"
	"github.com/slicemaster/storefront/internal/cart"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage your cart",
}

var cartAddQty int
var cartAddSize string

var cartShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()
		return printCart(a)
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <pizza-id>",
	Short: "Add a pizza to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		p, err := a.API.Pizza(ctx, args[0])
		if err != nil {
			return err
		}

		size := strings.ToUpper(cartAddSize)
		switch size {
		case cart.SizeSmall, cart.SizeMedium, cart.SizeLarge:
		default:
			return fmt.Errorf("unknown size %q (use SMALL, MEDIUM or LARGE)", cartAddSize)
		}

		a.Cart.Add(p.ID, p.Name, p.Price, cartAddQty, size, p.ImageURL)
		fmt.Printf("Added %d × %s (%s).\n", cartAddQty, p.Name, size)
		return printCart(a)
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <line-id> <delta>",
	Short: "Change a line's quantity by a delta (e.g. +1, -2)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		var delta int
		if _, err := fmt.Sscanf(args[1], "%d", &delta); err != nil {
			return fmt.Errorf("invalid delta %q", args[1])
		}
		a.Cart.UpdateQuantity(args[0], delta)
		return printCart(a)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <line-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		a.Cart.Remove(args[0])
		return printCart(a)
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		a.Cart.Clear()
		fmt.Println("Cart emptied.")
		return nil
	},
}

func printCart(a *app.App) error {
	items := a.Cart.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return nil
	}

	w := table("LINE", "PIZZA", "SIZE", "QTY", "PRICE", "AMOUNT")
	for _, i := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			i.ID, i.Name, i.Size, i.Quantity, money(i.Price), money(i.Price*float64(i.Quantity)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nSubtotal: %s\nDelivery: %s\nTotal:    %s\n",
		money(a.Cart.Subtotal()), money(a.Cart.DeliveryFee()), money(a.Cart.Total()))
	return nil
}

func init() {
	cartAddCmd.Flags().IntVarP(&cartAddQty, "quantity", "q", 1, "quantity to add")
	cartAddCmd.Flags().StringVarP(&cartAddSize, "size", "s", cart.DefaultSize, "SMALL, MEDIUM or LARGE")

	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartUpdateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
}
