package api

import (
	"context"

	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/gateway"
	"github.com/slicemaster/storefront/internal/session"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  session.Profile `json:"user"`
}

// Login authenticates, stores the session pair, and fires the login event so
// the cart reconciles and the order feed connects.
func (c *Client) Login(ctx context.Context, email, password string) (session.Profile, error) {
	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := c.gw.Post(ctx, "/auth/login", body, &resp, gateway.WithoutAuth()); err != nil {
		return session.Profile{}, err
	}

	if err := c.sessions.Set(resp.Token, resp.User); err != nil {
		return session.Profile{}, err
	}
	c.bus.Fire(events.Login, events.LoginData{Profile: resp.User})
	return resp.User, nil
}

// Register creates an account; the backend signs the new user in directly.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (session.Profile, error) {
	var resp authResponse
	if err := c.gw.Post(ctx, "/auth/register", req, &resp, gateway.WithoutAuth()); err != nil {
		return session.Profile{}, err
	}

	if err := c.sessions.Set(resp.Token, resp.User); err != nil {
		return session.Profile{}, err
	}
	c.bus.Fire(events.Login, events.LoginData{Profile: resp.User})
	return resp.User, nil
}

// Me fetches the current profile from the backend.
func (c *Client) Me(ctx context.Context) (session.Profile, error) {
	var p session.Profile
	err := c.gw.Get(ctx, "/auth/me", &p)
	return p, err
}

// Logout is purely local: clear the session pair and announce it.
func (c *Client) Logout() error {
	err := c.sessions.Clear()
	c.bus.Fire(events.Logout, events.LogoutData{Reason: "user"})
	return err
}
