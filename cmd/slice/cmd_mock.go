package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/slicemaster/storefront/config"
	"github.com/slicemaster/storefront/internal/devserver"
)

var (
	mockAddr    string
	mockAdvance time.Duration
)

// slice mock-server — run the embedded mock backend for local development.
var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a local mock SliceMaster backend",
	Long: "Runs an in-memory SliceMaster backend with a seeded menu and demo " +
		"account, including the websocket order feed and Prometheus metrics. " +
		"Point the client at it with API_BASE_URL and WS_URL.",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := devserver.New(devserver.Options{
			AdvanceEvery: mockAdvance,
			DeliveryFee:  config.DeliveryFee(),
		})
		fmt.Printf("Mock backend on %s\n", mockAddr)
		fmt.Printf("Demo account: %s / %s\n", devserver.DemoEmail, devserver.DemoPassword)
		return srv.Start(mockAddr)
	},
}

func init() {
	mockServerCmd.Flags().StringVar(&mockAddr, "addr", ":"+config.AppPort(), "listen address")
	mockServerCmd.Flags().DurationVar(&mockAdvance, "advance", 10*time.Second, "how often open orders progress one status (0 disables)")
}
