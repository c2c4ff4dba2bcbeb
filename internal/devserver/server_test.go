package devserver_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicemaster/storefront/internal/api"
	"github.com/slicemaster/storefront/internal/app"
	"github.com/slicemaster/storefront/internal/cart"
	"github.com/slicemaster/storefront/internal/checkout"
	"github.com/slicemaster/storefront/internal/devserver"
	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/internal/orderfeed"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/kvstore"
)

// start runs the mock backend and wires a full client against it.
func start(t *testing.T) (*devserver.Server, *app.App) {
	t.Helper()
	srv := devserver.New(devserver.Options{DeliveryFee: 40})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	a, err := app.New(app.Options{
		BaseURL:       ts.URL + "/api/v1",
		WSURL:         "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
		KV:            kvstore.NewMemory(),
		HistoryDSN:    ":memory:",
		DeliveryFee:   40,
		WSMaxAttempts: 3,
		WSBaseDelay:   time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		a.Feed.Shutdown()
		a.Close()
	})
	return srv, a
}

func login(t *testing.T, a *app.App) session.Profile {
	t.Helper()
	profile, err := a.API.Login(context.Background(), devserver.DemoEmail, devserver.DemoPassword)
	require.NoError(t, err)
	return profile
}

func TestLoginWithSeededAccount(t *testing.T) {
	_, a := start(t)

	profile := login(t, a)
	assert.Equal(t, "Demo", profile.FirstName)
	assert.True(t, a.Sessions.IsAuthenticated())

	me, err := a.API.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, profile.Email, me.Email)
}

func TestLoginBadPassword(t *testing.T) {
	_, a := start(t)

	_, err := a.API.Login(context.Background(), devserver.DemoEmail, "wrong")
	require.Error(t, err)
	assert.False(t, a.Sessions.IsAuthenticated())
}

func TestRegisterSignsIn(t *testing.T) {
	_, a := start(t)

	profile, err := a.API.Register(context.Background(), api.RegisterRequest{
		FirstName: "New",
		LastName:  "Customer",
		Email:     "new@example.com",
		Phone:     "1234567890",
		Password:  "secret1",
	})
	require.NoError(t, err)
	assert.True(t, a.Sessions.IsAuthenticated())
	assert.NotEmpty(t, profile.ID)

	// Duplicate registration is rejected.
	_, err = a.API.Register(context.Background(), api.RegisterRequest{
		FirstName: "New", Email: "new@example.com", Password: "secret1",
	})
	require.Error(t, err)
}

func TestMenuEndpoints(t *testing.T) {
	_, a := start(t)
	ctx := context.Background()

	pizzas, err := a.API.Pizzas(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, pizzas)

	one, err := a.API.Pizza(ctx, pizzas[0].ID)
	require.NoError(t, err)
	assert.Equal(t, pizzas[0].Name, one.Name)

	cats, err := a.API.Categories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cats)

	byCat, err := a.API.PizzasByCategory(ctx, cats[0].Slug)
	require.NoError(t, err)
	for _, p := range byCat {
		assert.Equal(t, cats[0].Slug, p.Category)
	}

	found, err := a.API.SearchPizzas(ctx, "margherita")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Margherita", found[0].Name)
}

func TestAnonymousCartSurvivesLogin(t *testing.T) {
	_, a := start(t)

	// Fill the cart signed out, then sign in: the login listener reconciles,
	// and since the remote cart is empty the local lines win and go up.
	a.Cart.Add("P-1", "Margherita", 199, 2, cart.SizeMedium, "")
	login(t, a)
	a.Cart.WaitSync()

	remote, err := a.API.FetchCart(context.Background())
	require.NoError(t, err)
	require.Len(t, remote, 1)
	assert.Equal(t, "P-1", remote[0].PizzaID)
	assert.Equal(t, 2, remote[0].Quantity)

	// Local state untouched by the push.
	require.Len(t, a.Cart.Items(), 1)
	assert.Equal(t, 438.0, a.Cart.Total()) // 199×2 + 40 fee
}

func TestServerCartReplacesLocalOnLogin(t *testing.T) {
	srv, a := start(t)
	_ = srv

	// Seed a server-side cart from a separate client session.
	login(t, a)
	require.NoError(t, a.API.AddToCart(context.Background(), "P-3", 1, cart.SizeLarge))
	require.NoError(t, a.API.Logout())

	// A local, signed-out cart now loses to the non-empty remote cart.
	a.Cart.Add("P-1", "Margherita", 199, 5, cart.SizeMedium, "")
	login(t, a)
	a.Cart.WaitSync()

	items := a.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "P-3", items[0].ProductID)
	assert.Equal(t, cart.SizeLarge, items[0].Size)
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	_, a := start(t)
	login(t, a)

	a.Cart.Add("P-1", "Margherita", 199, 2, cart.SizeMedium, "")
	a.Cart.Add("P-2", "Farmhouse", 249, 1, cart.SizeMedium, "")
	a.Cart.WaitSync()

	addrs, err := a.API.Addresses(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, addrs)

	flow := checkout.New(a.Cart, a.API, a.Feed, a.History)
	flow.SelectAddress(addrs[0].ID)
	require.NoError(t, flow.Advance())
	flow.SelectPayment(checkout.PaymentCOD)
	require.NoError(t, flow.Advance())

	placed, err := flow.PlaceOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 687.0, placed.Total) // 199×2 + 249 + 40 fee
	assert.Equal(t, order.StatusPending, placed.Status)

	// Cart cleared locally and remotely.
	a.Cart.WaitSync()
	assert.Empty(t, a.Cart.Items())
	remote, err := a.API.FetchCart(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remote)

	// Visible in the order history, remotely and in the local cache.
	orders, err := a.API.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, placed.ID, orders[0].ID)

	cached, ok, err := a.History.Get(placed.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, placed.Total, cached.Total)
}

func TestOrderCancellation(t *testing.T) {
	_, a := start(t)
	login(t, a)

	a.Cart.Add("P-1", "Margherita", 199, 1, cart.SizeMedium, "")
	placed, err := a.API.CreateOrder(context.Background(), api.CreateOrderRequest{
		AddressID:     "ADDR-1",
		PaymentMethod: checkout.PaymentCOD,
		Items:         []api.OrderLine{{PizzaID: "P-1", Quantity: 1, Size: cart.SizeMedium}},
	})
	require.NoError(t, err)

	cancelled, err := a.API.CancelOrder(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	// A delivered/cancelled order cannot be cancelled again.
	_, err = a.API.CancelOrder(context.Background(), placed.ID)
	require.Error(t, err)
}

func TestFeedDeliversPushedStatusUpdates(t *testing.T) {
	srv, a := start(t)
	login(t, a)

	placed, err := a.API.CreateOrder(context.Background(), api.CreateOrderRequest{
		AddressID:     "ADDR-1",
		PaymentMethod: checkout.PaymentCOD,
		Items:         []api.OrderLine{{PizzaID: "P-1", Quantity: 1, Size: cart.SizeMedium}},
	})
	require.NoError(t, err)

	statuses := make(chan events.OrderStatusData, 16)
	a.Bus.Listen(events.OrderStatus, func(p interface{}) {
		if d, ok := p.(events.OrderStatusData); ok {
			statuses <- d
		}
	})

	a.Feed.Subscribe(placed.ID)
	require.Eventually(t, func() bool { return a.Feed.State() == orderfeed.Connected },
		2*time.Second, 10*time.Millisecond, "feed never connected")

	// The SUBSCRIBE frame is in flight; advancing retries until one lands
	// after the server has registered the subscription.
	var got events.OrderStatusData
	received := false
	for i := 0; i < 5 && !received; i++ {
		srv.AdvanceOrder(placed.ID)
		select {
		case got = <-statuses:
			received = true
		case <-time.After(500 * time.Millisecond):
		}
	}
	require.True(t, received, "no status event arrived over the feed")
	assert.Equal(t, placed.ID, got.OrderID)
	assert.True(t, got.Status.Index() > order.StatusPending.Index())
}

func TestExpiredTokenForcesLogout(t *testing.T) {
	_, a := start(t)
	login(t, a)

	// Sabotage the stored token; the next authenticated call bounces with a
	// 401, which clears the session and fires the logout event.
	profile, _ := a.Sessions.Profile()
	require.NoError(t, a.Sessions.Set("tampered-token", profile))

	logouts := 0
	a.Bus.Listen(events.Logout, func(interface{}) { logouts++ })

	_, err := a.API.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, "", a.Sessions.Token())
	assert.Equal(t, 1, logouts)
}

func TestOffersAndNewsletter(t *testing.T) {
	_, a := start(t)
	ctx := context.Background()

	offers, err := a.API.ActiveOffers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, offers)

	login(t, a)
	applied, err := a.API.ApplyPromoCode(ctx, "slice20")
	require.NoError(t, err)
	assert.Equal(t, "SLICE20", applied.Code)

	_, err = a.API.ApplyPromoCode(ctx, "NOPE")
	require.Error(t, err)

	require.NoError(t, a.API.SubscribeNewsletter(ctx, "hungry@example.com"))
	require.Error(t, a.API.SubscribeNewsletter(ctx, "not-an-email"))
}

func TestAddressManagement(t *testing.T) {
	_, a := start(t)
	login(t, a)
	ctx := context.Background()

	added, err := a.API.AddAddress(ctx, api.Address{
		Label: "Work", Street: "1 Office Park", City: "Pune", State: "MH", Pincode: "411001",
	})
	require.NoError(t, err)
	assert.False(t, added.IsDefault) // the seeded address is already default

	require.NoError(t, a.API.SetDefaultAddress(ctx, added.ID))
	addrs, err := a.API.Addresses(ctx)
	require.NoError(t, err)
	for _, addr := range addrs {
		assert.Equal(t, addr.ID == added.ID, addr.IsDefault)
	}

	require.NoError(t, a.API.DeleteAddress(ctx, added.ID))
	addrs, err = a.API.Addresses(ctx)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
}
