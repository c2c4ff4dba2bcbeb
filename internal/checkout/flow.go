// Package checkout drives the three-step order flow: pick a delivery
// address, pick a payment method, confirm. Advancing past the address step
// is gated on a selected address; placing the order submits the whole cart
// as one command, clears it, and opens live tracking for the new order.
package checkout

import (
	"context"

	"github.com/slicemaster/storefront/internal/api"
	"github.com/slicemaster/storefront/internal/cart"
	"github.com/slicemaster/storefront/internal/gateway"
	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/pkg/collection"
	"github.com/slicemaster/storefront/pkg/logger"
)

// Step is a checkout position. Success is terminal; a new checkout starts
// with Reset.
type Step int

const (
	StepAddress Step = iota
	StepPayment
	StepConfirm
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepPayment:
		return "payment"
	case StepConfirm:
		return "confirm"
	case StepSuccess:
		return "success"
	}
	return "unknown"
}

// Payment methods accepted by the backend.
const (
	PaymentCOD    = "COD"
	PaymentCard   = "CARD"
	PaymentUPI    = "UPI"
	PaymentPayPal = "PAYPAL"
	PaymentCrypto = "CRYPTO"
)

// Placer is the slice of the API client the flow needs.
type Placer interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (order.Order, error)
}

// Tracker opens live tracking for a placed order; *orderfeed.Feed satisfies it.
type Tracker interface {
	Subscribe(orderID string)
}

// Recorder caches placed orders locally; *history.Store satisfies it.
// May be nil.
type Recorder interface {
	Record(o order.Order) error
}

// Flow is one checkout attempt.
type Flow struct {
	step      Step
	addressID string
	payment   string
	placed    order.Order

	cart    *cart.Cart
	placer  Placer
	tracker Tracker
	rec     Recorder
}

// New starts a flow at the address step, defaulting to cash on delivery.
func New(c *cart.Cart, placer Placer, tracker Tracker, rec Recorder) *Flow {
	return &Flow{cart: c, placer: placer, tracker: tracker, rec: rec, payment: PaymentCOD}
}

// Step returns the current position.
func (f *Flow) Step() Step { return f.step }

// AddressID returns the selected delivery address, "" if none yet.
func (f *Flow) AddressID() string { return f.addressID }

// Payment returns the selected payment method.
func (f *Flow) Payment() string { return f.payment }

// Placed returns the created order once the flow reached Success.
func (f *Flow) Placed() order.Order { return f.placed }

// SelectAddress picks the delivery address.
func (f *Flow) SelectAddress(id string) { f.addressID = id }

// SelectPayment picks the payment method.
func (f *Flow) SelectPayment(method string) { f.payment = method }

// Advance moves one step forward. Leaving the address step without a
// selected address fails with a validation error and the step is unchanged.
func (f *Flow) Advance() error {
	switch f.step {
	case StepAddress:
		if f.addressID == "" {
			return &gateway.Error{Kind: gateway.KindValidation, Message: "select or add a delivery address"}
		}
		f.step = StepPayment
	case StepPayment:
		f.step = StepConfirm
	}
	return nil
}

// Back moves one step backward within Address..Confirm.
func (f *Flow) Back() {
	if f.step > StepAddress && f.step < StepSuccess {
		f.step--
	}
}

// Reset returns the flow to the address step for a fresh checkout.
func (f *Flow) Reset() {
	f.step = StepAddress
	f.addressID = ""
	f.payment = PaymentCOD
	f.placed = order.Order{}
}

// PlaceOrder submits the cart as one order command. On success the cart is
// cleared, the flow moves to Success, and tracking is opened for the new
// order. On failure the flow stays at Confirm for a manual retry; nothing is
// retried automatically.
func (f *Flow) PlaceOrder(ctx context.Context) (order.Order, error) {
	if f.step != StepConfirm {
		return order.Order{}, &gateway.Error{Kind: gateway.KindValidation, Message: "confirm the order summary first"}
	}

	items := f.cart.Items()
	if len(items) == 0 {
		return order.Order{}, &gateway.Error{Kind: gateway.KindValidation, Message: "your cart is empty"}
	}

	req := api.CreateOrderRequest{
		AddressID:     f.addressID,
		PaymentMethod: f.payment,
		Items: collection.Map(items, func(i cart.Item) api.OrderLine {
			return api.OrderLine{PizzaID: i.ProductID, Quantity: i.Quantity, Size: i.Size}
		}),
	}

	placed, err := f.placer.CreateOrder(ctx, req)
	if err != nil {
		return order.Order{}, err
	}

	f.cart.Clear()
	f.placed = placed
	f.step = StepSuccess

	if f.rec != nil {
		if rerr := f.rec.Record(placed); rerr != nil {
			logger.Warn("checkout: record order locally", "orderId", placed.ID, "error", rerr)
		}
	}
	if f.tracker != nil {
		f.tracker.Subscribe(placed.ID)
	}
	return placed, nil
}
