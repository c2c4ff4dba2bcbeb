// Package events names the storefront's bus events and their payload types.
// Modules communicate through these instead of reaching into each other:
// the gateway announces forced logouts, the cart announces changes, the
// order feed announces pushed status updates.
package events

import (
	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/internal/session"
)

const (
	Login       = "auth.login"
	Logout      = "auth.logout"
	CartChanged = "cart.changed"
	OrderStatus = "order.status"
	OrderNotice = "order.notice"
)

// LoginData accompanies Login after a successful sign-in or registration.
type LoginData struct {
	Profile session.Profile
}

// LogoutData accompanies Logout. Reason is "user" for an explicit sign-out
// and "unauthorized" when the gateway force-cleared an invalid session.
type LogoutData struct {
	Reason string
}

// CartChangedData accompanies CartChanged after every cart mutation.
type CartChangedData struct {
	ItemCount int
	Total     float64
}

// OrderStatusData accompanies OrderStatus for pushed tracking updates.
type OrderStatusData struct {
	OrderID       string
	Status        order.Status
	EstimatedTime string
}

// OrderNoticeData accompanies OrderNotice: a transient, toast-style message.
type OrderNoticeData struct {
	OrderID string
	Message string
}
