// Package gateway is the single path to the SliceMaster backend. It wraps
// the outbound HTTP client with JSON content negotiation, bearer-token
// injection from the session store, and the unified error taxonomy, and it
// force-clears the session on any 401.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/event"
	httpx "github.com/slicemaster/storefront/pkg/http"
	"github.com/slicemaster/storefront/pkg/logger"
)

// Gateway issues authenticated JSON requests against a versioned base path.
type Gateway struct {
	base     string
	sessions *session.Store
	bus      *event.Bus
}

// New builds a gateway rooted at base (e.g. "http://host:8080/api/v1").
func New(base string, sessions *session.Store, bus *event.Bus) *Gateway {
	return &Gateway{base: base, sessions: sessions, bus: bus}
}

type callOptions struct {
	noAuth bool
}

// Option adjusts a single gateway call.
type Option func(*callOptions)

// WithoutAuth suppresses the Authorization header, for public endpoints like
// the menu and newsletter signup.
func WithoutAuth() Option {
	return func(o *callOptions) { o.noAuth = true }
}

// Get issues a GET and decodes a 2xx body into out (out may be nil).
func (g *Gateway) Get(ctx context.Context, endpoint string, out interface{}, opts ...Option) error {
	return g.Do(ctx, http.MethodGet, endpoint, nil, out, opts...)
}

// Post issues a POST with a JSON body.
func (g *Gateway) Post(ctx context.Context, endpoint string, body, out interface{}, opts ...Option) error {
	return g.Do(ctx, http.MethodPost, endpoint, body, out, opts...)
}

// Put issues a PUT with a JSON body.
func (g *Gateway) Put(ctx context.Context, endpoint string, body, out interface{}, opts ...Option) error {
	return g.Do(ctx, http.MethodPut, endpoint, body, out, opts...)
}

// Delete issues a DELETE.
func (g *Gateway) Delete(ctx context.Context, endpoint string, out interface{}, opts ...Option) error {
	return g.Do(ctx, http.MethodDelete, endpoint, nil, out, opts...)
}

// errEnvelope is the error body shape the backend returns on non-2xx.
type errEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Do executes one call. Failure is always a *Error:
//   - transport failure → KindNetwork
//   - 401 → session cleared, logout fired, KindUnauthorized
//   - other non-2xx → server-supplied kind/message with status and raw body
//
// A 2xx with an unparsable body is an empty success: out is left untouched.
func (g *Gateway) Do(ctx context.Context, method, endpoint string, body, out interface{}, opts ...Option) error {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	req := httpx.New(method, g.base+endpoint).WithContext(ctx)
	if body != nil {
		req.Body(body)
	}
	if !o.noAuth {
		if token := g.sessions.Token(); token != "" {
			req.Bearer(token)
		}
	}

	resp, err := req.Send()
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "unable to reach the server"}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token invalid or expired. Clear the session and tell everyone.
		// Concurrent requests may each observe the 401; listeners must
		// tolerate the repeated notification.
		if cerr := g.sessions.Clear(); cerr != nil {
			logger.Warn("gateway: clear session", "error", cerr)
		}
		g.bus.Fire(events.Logout, events.LogoutData{Reason: "unauthorized"})
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: "session expired", Raw: resp.Raw}
	}

	if !resp.OK() {
		var env errEnvelope
		_ = json.Unmarshal(resp.Raw, &env)

		kind := KindServer
		if env.Error != "" {
			kind = Kind(env.Error)
		}
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return &Error{Kind: kind, Status: resp.StatusCode, Message: msg, Raw: resp.Raw}
	}

	if out != nil && len(resp.Raw) > 0 {
		if derr := json.Unmarshal(resp.Raw, out); derr != nil {
			logger.Debug("gateway: unparsable success body treated as empty",
				"method", method, "endpoint", endpoint, "error", derr)
		}
	}
	return nil
}
