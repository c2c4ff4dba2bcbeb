package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slicemaster/storefront/internal/api"
)

// slice offers — list promotions; slice offers apply CODE.
var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Show active offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		offers, err := a.API.ActiveOffers(ctx)
		if err != nil {
			return err
		}
		if len(offers) == 0 {
			fmt.Println("No active offers right now.")
			return nil
		}
		w := table("CODE", "DISCOUNT", "DESCRIPTION")
		for _, o := range offers {
			fmt.Fprintf(w, "%s\t%.0f%%\t%s\n", o.Code, o.Discount, o.Description)
		}
		return w.Flush()
	},
}

var offersApplyCmd = &cobra.Command{
	Use:   "apply <code>",
	Short: "Apply a promo code to your cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		offer, err := a.API.ApplyPromoCode(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Applied %s: %s\n", offer.Code, offer.Description)
		return nil
	},
}

// slice address — manage saved delivery addresses.
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Manage saved delivery addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		addrs, err := a.API.Addresses(ctx)
		if err != nil {
			return err
		}
		if len(addrs) == 0 {
			fmt.Println("No saved addresses. Run `slice address add`.")
			return nil
		}
		w := table("ID", "LABEL", "ADDRESS", "DEFAULT")
		for _, addr := range addrs {
			def := ""
			if addr.IsDefault {
				def = "✓"
			}
			fmt.Fprintf(w, "%s\t%s\t%s, %s %s\t%s\n", addr.ID, addr.Label, addr.Street, addr.City, addr.Pincode, def)
		}
		return w.Flush()
	},
}

var addressAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new delivery address",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		reader := bufio.NewReader(os.Stdin)
		addr := api.Address{
			Label:    prompt(reader, "Label (Home/Work): "),
			Street:   prompt(reader, "Street: "),
			City:     prompt(reader, "City: "),
			State:    prompt(reader, "State: "),
			Pincode:  prompt(reader, "Pincode: "),
			Landmark: prompt(reader, "Landmark (optional): "),
		}

		ctx, cancel := reqCtx()
		defer cancel()
		saved, err := a.API.AddAddress(ctx, addr)
		if err != nil {
			return err
		}
		fmt.Printf("Saved address %s.\n", saved.ID)
		return nil
	},
}

var addressRemoveCmd = &cobra.Command{
	Use:   "remove <address-id>",
	Short: "Delete a saved address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.API.DeleteAddress(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Address removed.")
		return nil
	},
}

var addressDefaultCmd = &cobra.Command{
	Use:   "default <address-id>",
	Short: "Mark a saved address as the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.API.SetDefaultAddress(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Default address updated.")
		return nil
	},
}

// slice newsletter — subscribe an email address.
var newsletterCmd = &cobra.Command{
	Use:   "newsletter <email>",
	Short: "Subscribe to the SliceMaster newsletter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		if err := a.API.SubscribeNewsletter(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Subscribed. Fresh deals incoming.")
		return nil
	},
}

func init() {
	offersCmd.AddCommand(offersApplyCmd)
	addressCmd.AddCommand(addressAddCmd)
	addressCmd.AddCommand(addressRemoveCmd)
	addressCmd.AddCommand(addressDefaultCmd)
}
