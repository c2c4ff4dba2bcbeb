package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slicemaster/storefront/internal/api"
)

var menuCategory string

// slice menu — list the menu, optionally one category.
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Browse the pizza menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()

		var pizzas []api.Pizza
		if menuCategory != "" {
			pizzas, err = a.API.PizzasByCategory(ctx, menuCategory)
		} else {
			pizzas, err = a.API.Pizzas(ctx)
		}
		if err != nil {
			return err
		}
		return printPizzas(pizzas)
	},
}

// slice search — free-text menu search.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the menu",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		pizzas, err := a.API.SearchPizzas(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printPizzas(pizzas)
	},
}

func printPizzas(pizzas []api.Pizza) error {
	if len(pizzas) == 0 {
		fmt.Println("No pizzas found.")
		return nil
	}
	w := table("ID", "NAME", "PRICE", "CATEGORY", "DESCRIPTION")
	for _, p := range pizzas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, money(p.Price), p.Category, p.Description)
	}
	return w.Flush()
}

func init() {
	menuCmd.Flags().StringVarP(&menuCategory, "category", "c", "", "only show one category")
}
