package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/gateway"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/event"
	"github.com/slicemaster/storefront/pkg/kvstore"
)

func newGateway(t *testing.T, handler http.Handler) (*gateway.Gateway, *session.Store, *event.Bus, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	sessions := session.NewStore(kvstore.NewMemory())
	bus := event.NewBus()
	return gateway.New(ts.URL, sessions, bus), sessions, bus, ts
}

func TestSuccessDecodesBody(t *testing.T) {
	gw, _, _, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Margherita"}`))
	}))

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, gw.Get(context.Background(), "/pizzas/P-1", &out))
	assert.Equal(t, "Margherita", out.Name)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	gw, sessions, _, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, sessions.Set("tok-123", session.Profile{ID: "U-1"}))
	require.NoError(t, gw.Get(context.Background(), "/cart", nil))
	assert.Equal(t, "Bearer tok-123", gotAuth)

	require.NoError(t, gw.Get(context.Background(), "/pizzas", nil, gateway.WithoutAuth()))
	assert.Equal(t, "", gotAuth)
}

func TestUnauthorizedClearsSessionAndFiresLogout(t *testing.T) {
	gw, sessions, bus, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"UNAUTHORIZED","message":"token expired"}`))
	}))

	logouts := 0
	bus.Listen(events.Logout, func(payload interface{}) {
		logouts++
		data, ok := payload.(events.LogoutData)
		require.True(t, ok)
		assert.Equal(t, "unauthorized", data.Reason)
	})

	require.NoError(t, sessions.Set("stale", session.Profile{ID: "U-1"}))

	err := gw.Get(context.Background(), "/cart", nil)
	require.Error(t, err)
	assert.True(t, gateway.IsUnauthorized(err))
	assert.Equal(t, "", sessions.Token())
	assert.Equal(t, 1, logouts)

	// A second 401 repeats the notification; listeners must tolerate it.
	_ = gw.Get(context.Background(), "/cart", nil)
	assert.Equal(t, 2, logouts)
}

func TestServerErrorKindPassedThrough(t *testing.T) {
	gw, _, _, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"VALIDATION_ERROR","message":"pincode is required"}`))
	}))

	err := gw.Post(context.Background(), "/addresses", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, gateway.IsKind(err, gateway.KindValidation))

	var gerr *gateway.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusBadRequest, gerr.Status)
	assert.Equal(t, "pincode is required", gerr.Message)
}

func TestUnlabelledFailureIsServerError(t *testing.T) {
	gw, _, _, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`oops`))
	}))

	err := gw.Get(context.Background(), "/pizzas", nil)
	require.Error(t, err)
	assert.True(t, gateway.IsKind(err, gateway.KindServer))
}

func TestNetworkFailure(t *testing.T) {
	gw, _, _, ts := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	err := gw.Get(context.Background(), "/pizzas", nil)
	require.Error(t, err)
	assert.True(t, gateway.IsNetwork(err))
}

func TestUnparsableSuccessBodyIsEmptySuccess(t *testing.T) {
	gw, _, _, _ := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<!doctype html>`)) // e.g. a proxy page
	}))

	out := struct {
		Name string `json:"name"`
	}{Name: "untouched"}
	require.NoError(t, gw.Get(context.Background(), "/pizzas/P-1", &out))
	assert.Equal(t, "untouched", out.Name)
}
