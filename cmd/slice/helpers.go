package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/slicemaster/storefront/internal/app"
)

const requestTimeout = 15 * time.Second

// boot wires a storefront instance from config and runs the startup work.
// Every command goes through here so pending-cart restoration and the
// event listeners are always in place.
func boot() (*app.App, error) {
	a, err := app.New(app.Options{})
	if err != nil {
		return nil, err
	}
	a.Startup()
	return a, nil
}

// reqCtx returns the per-command request context.
func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// table starts a tabwriter on stdout with the given header row.
func table(headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)
	return w
}

func money(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}
