package api

import (
	"context"
	"net/url"
)

// Address is a saved delivery address.
type Address struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
	Landmark  string `json:"landmark,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

// Addresses lists the saved delivery addresses.
func (c *Client) Addresses(ctx context.Context) ([]Address, error) {
	var out []Address
	err := c.gw.Get(ctx, "/addresses", &out)
	return out, err
}

// AddAddress saves a new delivery address.
func (c *Client) AddAddress(ctx context.Context, a Address) (Address, error) {
	var out Address
	err := c.gw.Post(ctx, "/addresses", a, &out)
	return out, err
}

// UpdateAddress rewrites a saved address.
func (c *Client) UpdateAddress(ctx context.Context, id string, a Address) (Address, error) {
	var out Address
	err := c.gw.Put(ctx, "/addresses/"+url.PathEscape(id), a, &out)
	return out, err
}

// DeleteAddress removes a saved address.
func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.gw.Delete(ctx, "/addresses/"+url.PathEscape(id), nil)
}

// SetDefaultAddress marks one saved address as the default.
func (c *Client) SetDefaultAddress(ctx context.Context, id string) error {
	return c.gw.Post(ctx, "/addresses/"+url.PathEscape(id)+"/default", nil, nil)
}
