package api

import (
	"context"
	"net/url"

	"github.com/slicemaster/storefront/internal/gateway"
)

// Pizza is one menu entry.
type Pizza struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
}

// Category groups menu entries.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Pizzas lists the whole menu. Public endpoint.
func (c *Client) Pizzas(ctx context.Context) ([]Pizza, error) {
	var out []Pizza
	err := c.gw.Get(ctx, "/pizzas", &out, gateway.WithoutAuth())
	return out, err
}

// Pizza fetches one menu entry by id.
func (c *Client) Pizza(ctx context.Context, id string) (Pizza, error) {
	var out Pizza
	err := c.gw.Get(ctx, "/pizzas/"+url.PathEscape(id), &out, gateway.WithoutAuth())
	return out, err
}

// Categories lists menu categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.gw.Get(ctx, "/categories", &out, gateway.WithoutAuth())
	return out, err
}

// PizzasByCategory lists the menu entries in one category.
func (c *Client) PizzasByCategory(ctx context.Context, slug string) ([]Pizza, error) {
	var out []Pizza
	err := c.gw.Get(ctx, "/pizzas/category/"+url.PathEscape(slug), &out, gateway.WithoutAuth())
	return out, err
}

// SearchPizzas searches the menu by free text.
func (c *Client) SearchPizzas(ctx context.Context, query string) ([]Pizza, error) {
	var out []Pizza
	err := c.gw.Get(ctx, "/pizzas/search?q="+url.QueryEscape(query), &out, gateway.WithoutAuth())
	return out, err
}
