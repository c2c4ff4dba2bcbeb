package api

import (
	"context"

	"github.com/slicemaster/storefront/internal/gateway"
)

// Offer is an active promotion.
type Offer struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Discount    float64 `json:"discount"`
}

// ActiveOffers lists running promotions. Public endpoint.
func (c *Client) ActiveOffers(ctx context.Context) ([]Offer, error) {
	var out []Offer
	err := c.gw.Get(ctx, "/offers", &out, gateway.WithoutAuth())
	return out, err
}

// ApplyPromoCode applies a promo code to the signed-in user's cart.
func (c *Client) ApplyPromoCode(ctx context.Context, code string) (Offer, error) {
	var out Offer
	err := c.gw.Post(ctx, "/offers/apply", map[string]string{"code": code}, &out)
	return out, err
}

// SubscribeNewsletter signs an email address up for the newsletter. Public
// endpoint.
func (c *Client) SubscribeNewsletter(ctx context.Context, email string) error {
	return c.gw.Post(ctx, "/newsletter/subscribe", map[string]string{"email": email}, nil, gateway.WithoutAuth())
}
