package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "slice",
	Short: "SliceMaster — pizza storefront CLI",
	Long: "slice is the SliceMaster storefront client. Browse the menu, manage " +
		"your cart, place orders, and follow live delivery updates from the terminal.",
	SilenceUsage: true,
}

func init() {
	// Account
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// Menu
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(searchCmd)

	// Cart
	rootCmd.AddCommand(cartCmd)

	// Orders
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)

	// Extras
	rootCmd.AddCommand(offersCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(newsletterCmd)

	// Development
	rootCmd.AddCommand(mockServerCmd)
}
