package api

import (
	"context"
	"net/url"
)

// RemoteCartItem is a server-owned cart line. Its ID replaces the locally
// generated one once the server has confirmed the line.
type RemoteCartItem struct {
	ID       string  `json:"id"`
	PizzaID  string  `json:"pizzaId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size"`
	Image    string  `json:"image"`
}

type remoteCart struct {
	Items []RemoteCartItem `json:"items"`
}

// FetchCart returns the server-side cart of the signed-in user.
func (c *Client) FetchCart(ctx context.Context) ([]RemoteCartItem, error) {
	var out remoteCart
	if err := c.gw.Get(ctx, "/cart", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// AddToCart appends or merges a line into the server-side cart.
func (c *Client) AddToCart(ctx context.Context, pizzaID string, quantity int, size string) error {
	body := map[string]interface{}{"pizzaId": pizzaID, "quantity": quantity, "size": size}
	return c.gw.Post(ctx, "/cart/add", body, nil)
}

// UpdateCartItem sets the quantity of a server-side cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	body := map[string]interface{}{"itemId": itemID, "quantity": quantity}
	return c.gw.Put(ctx, "/cart/update", body, nil)
}

// RemoveFromCart deletes one server-side cart line.
func (c *Client) RemoveFromCart(ctx context.Context, itemID string) error {
	return c.gw.Delete(ctx, "/cart/remove/"+url.PathEscape(itemID), nil)
}

// ClearCart empties the server-side cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.gw.Delete(ctx, "/cart/clear", nil)
}
