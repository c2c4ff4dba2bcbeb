// Package app assembles the storefront: state store, event bus, session,
// gateway, API client, cart, order feed, and local order history, wired
// together as one owned object instead of package-level singletons.
package app

import (
	"context"
	"time"

	"github.com/slicemaster/storefront/config"
	"github.com/slicemaster/storefront/internal/api"
	"github.com/slicemaster/storefront/internal/cart"
	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/gateway"
	"github.com/slicemaster/storefront/internal/history"
	"github.com/slicemaster/storefront/internal/orderfeed"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/event"
	"github.com/slicemaster/storefront/pkg/kvstore"
	"github.com/slicemaster/storefront/pkg/logger"
)

// Options overrides parts of the default (config-driven) wiring. Zero values
// mean "use config". Tests inject a memory state store and fake endpoints.
type Options struct {
	BaseURL       string
	WSURL         string
	KV            kvstore.Store
	HistoryDSN    string
	DeliveryFee   float64
	WSMaxAttempts int
	WSBaseDelay   time.Duration
}

// App is the shared application context.
type App struct {
	Bus      *event.Bus
	KV       kvstore.Store
	Sessions *session.Store
	Gateway  *gateway.Gateway
	API      *api.Client
	Cart     *cart.Cart
	Feed     *orderfeed.Feed
	History  *history.Store
}

// New wires a full storefront instance and registers the cross-module
// listeners: login triggers pending-cart restore and reconciliation; logout
// clears local cart state and shuts the feed down; pushed status events keep
// the local history cache current. The feed itself connects lazily on the
// first Subscribe.
func New(opts Options) (*App, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = config.APIBaseURL()
	}
	if opts.WSURL == "" {
		opts.WSURL = config.WSURL()
	}
	if opts.DeliveryFee == 0 {
		opts.DeliveryFee = config.DeliveryFee()
	}
	if opts.WSMaxAttempts == 0 {
		opts.WSMaxAttempts = config.WSMaxAttempts()
	}
	if opts.WSBaseDelay == 0 {
		opts.WSBaseDelay = config.WSBaseDelay()
	}

	kv := opts.KV
	if kv == nil {
		var err error
		if kv, err = kvstore.Open(); err != nil {
			return nil, err
		}
	}

	bus := event.NewBus()
	sessions := session.NewStore(kv)
	gw := gateway.New(opts.BaseURL, sessions, bus)
	client := api.New(gw, sessions, bus)
	basket := cart.New(kv, client, sessions, bus, opts.DeliveryFee)
	feed := orderfeed.New(opts.WSURL, sessions, bus, opts.WSMaxAttempts, opts.WSBaseDelay)

	var hist *history.Store
	dsn := opts.HistoryDSN
	if dsn == "" {
		dsn = config.HistoryDSN()
	}
	if h, err := history.Open(dsn); err != nil {
		// The cache is a convenience; the storefront works without it.
		logger.Warn("app: order history cache unavailable", "error", err)
	} else {
		hist = h
	}

	a := &App{
		Bus:      bus,
		KV:       kv,
		Sessions: sessions,
		Gateway:  gw,
		API:      client,
		Cart:     basket,
		Feed:     feed,
		History:  hist,
	}

	bus.Listen(events.Login, func(interface{}) {
		basket.RestorePending()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := basket.Reconcile(ctx); err != nil {
			logger.Error("app: cart reconciliation failed", "error", err)
		}
	})

	bus.Listen(events.Logout, func(interface{}) {
		basket.Clear()
		feed.Shutdown()
	})

	bus.Listen(events.OrderStatus, func(payload interface{}) {
		data, ok := payload.(events.OrderStatusData)
		if !ok || hist == nil {
			return
		}
		if err := hist.UpdateStatus(data.OrderID, data.Status); err != nil {
			logger.Warn("app: update cached order status", "orderId", data.OrderID, "error", err)
		}
	})

	return a, nil
}

// Startup runs the once-per-process work: merging a pending cart left over
// from before a login boundary.
func (a *App) Startup() {
	a.Cart.RestorePending()
}

// Close drains in-flight best-effort cart syncs so a short-lived process
// doesn't abandon them mid-request.
func (a *App) Close() {
	a.Cart.WaitSync()
}
