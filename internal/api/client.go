// Package api is the typed surface of the SliceMaster REST backend. Every
// group (auth, menu, cart, orders, addresses, payments, offers, newsletter)
// goes through the gateway, which owns headers, error mapping, and forced
// logout.
package api

import (
	"github.com/slicemaster/storefront/internal/gateway"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/event"
)

// Client groups the endpoint families of the backend.
type Client struct {
	gw       *gateway.Gateway
	sessions *session.Store
	bus      *event.Bus
}

// New builds the API client on top of a gateway.
func New(gw *gateway.Gateway, sessions *session.Store, bus *event.Bus) *Client {
	return &Client{gw: gw, sessions: sessions, bus: bus}
}
