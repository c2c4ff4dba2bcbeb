package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slicemaster/storefront/internal/app"
	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/order"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List and track your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()
		return listOrders(a)
	},
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()

		o, err := a.API.Order(ctx, args[0])
		if err != nil {
			// Fall back to the local cache so the command works offline.
			if a.History != nil {
				if cached, ok, herr := a.History.Get(args[0]); herr == nil && ok {
					fmt.Println("(offline — showing cached copy)")
					printOrder(cached)
					return nil
				}
			}
			return err
		}
		printOrder(o)
		return nil
	},
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a not-yet-delivered order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := reqCtx()
		defer cancel()
		o, err := a.API.CancelOrder(ctx, args[0])
		if err != nil {
			return err
		}
		if a.History != nil {
			_ = a.History.UpdateStatus(o.ID, o.Status)
		}
		fmt.Printf("Order %s cancelled.\n", o.ID)
		return nil
	},
}

var ordersTrackCmd = &cobra.Command{
	Use:     "track <order-id>",
	Aliases: []string{"watch"},
	Short:   "Stream live delivery updates for an order",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()
		return watchOrder(a, args[0])
	},
}

func listOrders(a *app.App) error {
	ctx, cancel := reqCtx()
	defer cancel()

	orders, err := a.API.Orders(ctx)
	if err != nil {
		if a.History == nil {
			return err
		}
		cached, herr := a.History.List()
		if herr != nil || len(cached) == 0 {
			return err
		}
		fmt.Println("(offline — showing cached orders)")
		orders = cached
	}

	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}

	w := table("ORDER", "STATUS", "TOTAL", "PLACED")
	for _, o := range orders {
		placed := ""
		if !o.CreatedAt.IsZero() {
			placed = o.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.ID, o.Status.Label(), money(o.Total), placed)
	}
	return w.Flush()
}

func printOrder(o order.Order) {
	fmt.Printf("Order %s — %s\n", o.ID, o.Status.Label())
	for _, l := range o.Lines {
		fmt.Printf("  %d × %s (%s) %s\n", l.Quantity, l.Name, l.Size, money(l.Price*float64(l.Quantity)))
	}
	fmt.Printf("Total: %s\n", money(o.Total))
	if o.EstimatedTime != "" && !o.Status.Terminal() {
		fmt.Printf("Estimated delivery: %s\n", o.EstimatedTime)
	}

	if o.Status.Index() >= 0 {
		fmt.Print("Progress:")
		for _, step := range order.Ladder() {
			mark := " "
			if o.Status.Reached(step) {
				mark = "✓"
			}
			fmt.Printf(" [%s] %s", mark, step.Label())
		}
		fmt.Println()
	}
}

// watchOrder subscribes to the live feed and prints updates until the order
// reaches a terminal status or the user interrupts.
func watchOrder(a *app.App, orderID string) error {
	done := make(chan struct{})
	var once sync.Once

	a.Bus.Listen(events.OrderNotice, func(payload interface{}) {
		d, ok := payload.(events.OrderNoticeData)
		if !ok || d.OrderID != orderID {
			return
		}
		fmt.Printf("→ %s\n", d.Message)
	})
	a.Bus.Listen(events.OrderStatus, func(payload interface{}) {
		d, ok := payload.(events.OrderStatusData)
		if !ok || d.OrderID != orderID {
			return
		}
		if d.Status.Terminal() {
			once.Do(func() { close(done) })
		}
	})

	a.Feed.Subscribe(orderID)
	fmt.Printf("Tracking order %s (Ctrl-C to stop)…\n", orderID)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-done:
	case <-sig:
	}
	a.Feed.Shutdown()
	return nil
}

func init() {
	ordersCmd.AddCommand(ordersShowCmd)
	ordersCmd.AddCommand(ordersCancelCmd)
	ordersCmd.AddCommand(ordersTrackCmd)
}
