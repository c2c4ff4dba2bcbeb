// Package order holds the client-side read model of remote orders: the
// status ladder, display metadata, and the order view returned by the
// backend. The client never mutates an order directly; every change arrives
// as a command acknowledgement or a pushed status event.
package order

// Status is the lifecycle position of an order. The zero-to-Delivered ladder
// is totally ordered for progress display; Cancelled branches off from any
// pre-delivery state and is rendered distinctly, not as a ladder position.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusReady          Status = "READY"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// ladder is the delivery progression in display order.
var ladder = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
}

// Ladder returns the delivery progression, Pending through Delivered.
func Ladder() []Status {
	out := make([]Status, len(ladder))
	copy(out, ladder)
	return out
}

// Index returns the position of s on the delivery ladder, or -1 for
// Cancelled and unknown statuses.
func (s Status) Index() int {
	for i, st := range ladder {
		if st == s {
			return i
		}
	}
	return -1
}

// Reached reports whether an order at status s has passed step. Used by the
// tracking view to mark completed steps.
func (s Status) Reached(step Status) bool {
	si, ti := s.Index(), step.Index()
	return si >= 0 && ti >= 0 && ti <= si
}

// CanTrack reports whether live tracking makes sense for s.
func (s Status) CanTrack() bool {
	switch s {
	case StatusConfirmed, StatusPreparing, StatusReady, StatusOutForDelivery:
		return true
	}
	return false
}

// Terminal reports whether no further status changes are expected.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Label returns the customer-facing description of s.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Order received"
	case StatusConfirmed:
		return "Order confirmed"
	case StatusPreparing:
		return "Being prepared"
	case StatusReady:
		return "Ready for pickup"
	case StatusOutForDelivery:
		return "Out for delivery"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}
