package api

import (
	"context"
	"net/url"

	"github.com/slicemaster/storefront/internal/order"
)

// OrderLine is one product line of an order create command.
type OrderLine struct {
	PizzaID  string `json:"pizzaId"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
}

// CreateOrderRequest submits the whole cart plus delivery and payment choice
// as a single command.
type CreateOrderRequest struct {
	AddressID     string      `json:"addressId"`
	PaymentMethod string      `json:"paymentMethod"`
	Items         []OrderLine `json:"items"`
}

// CreateOrder places an order and returns the server's view of it.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (order.Order, error) {
	var out order.Order
	err := c.gw.Post(ctx, "/orders", req, &out)
	return out, err
}

// Orders lists the signed-in user's order history.
func (c *Client) Orders(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	err := c.gw.Get(ctx, "/orders", &out)
	return out, err
}

// Order fetches one order by id.
func (c *Client) Order(ctx context.Context, id string) (order.Order, error) {
	var out order.Order
	err := c.gw.Get(ctx, "/orders/"+url.PathEscape(id), &out)
	return out, err
}

// CancelOrder requests cancellation of a not-yet-delivered order.
func (c *Client) CancelOrder(ctx context.Context, id string) (order.Order, error) {
	var out order.Order
	err := c.gw.Post(ctx, "/orders/"+url.PathEscape(id)+"/cancel", nil, &out)
	return out, err
}
