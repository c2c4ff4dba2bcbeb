package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slicemaster/storefront/internal/checkout"
)

var (
	checkoutAddressID string
	checkoutPayment   string
	checkoutWatch     bool
)

// slice checkout — walk the address → payment → confirm flow in one shot.
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from the current cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.Sessions.IsAuthenticated() {
			return fmt.Errorf("sign in first: slice login <email>")
		}

		ctx, cancel := reqCtx()
		defer cancel()

		addressID := checkoutAddressID
		if addressID == "" {
			// Fall back to the default saved address.
			addrs, err := a.API.Addresses(ctx)
			if err != nil {
				return err
			}
			for _, addr := range addrs {
				if addr.IsDefault {
					addressID = addr.ID
					break
				}
			}
		}

		var rec checkout.Recorder
		if a.History != nil {
			rec = a.History
		}
		flow := checkout.New(a.Cart, a.API, a.Feed, rec)
		flow.SelectAddress(addressID)
		if err := flow.Advance(); err != nil {
			return err
		}
		flow.SelectPayment(strings.ToUpper(checkoutPayment))
		if err := flow.Advance(); err != nil {
			return err
		}

		placed, err := flow.PlaceOrder(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Order %s placed. Total %s, paying by %s.\n",
			placed.ID, money(placed.Total), placed.PaymentMethod)
		if placed.EstimatedTime != "" {
			fmt.Printf("Estimated delivery: %s\n", placed.EstimatedTime)
		}

		if checkoutWatch {
			return watchOrder(a, placed.ID)
		}
		return nil
	},
}

func init() {
	checkoutCmd.Flags().StringVarP(&checkoutAddressID, "address", "a", "", "delivery address id (defaults to your default address)")
	checkoutCmd.Flags().StringVarP(&checkoutPayment, "payment", "p", checkout.PaymentCOD, "COD, CARD, UPI, PAYPAL or CRYPTO")
	checkoutCmd.Flags().BoolVarP(&checkoutWatch, "watch", "w", false, "stay connected and stream delivery updates")
}
