// Package devserver is an in-memory SliceMaster backend: the REST API under
// /api/v1 plus the order feed at /ws/orders. `slice mock-server` runs it for
// local development, and the integration tests run the client against it so
// the whole storefront path is exercised without a real deployment.
package devserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slicemaster/storefront/internal/api"
	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/pkg/logger"
)

// Options tunes the mock backend.
type Options struct {
	// AdvanceEvery moves every open order one status forward on this
	// interval, pushing feed events. Zero disables the simulation (tests
	// drive status changes explicitly through PushStatus).
	AdvanceEvery time.Duration
	// DeliveryFee charged on any non-empty order, matching the client.
	DeliveryFee float64
}

// Server holds all mock state. Everything lives in memory and is lost on
// restart.
type Server struct {
	opts Options
	hub  *hub

	mu        sync.Mutex
	users     map[string]*user                // by email
	usersByID map[string]*user                // by id
	carts     map[string][]api.RemoteCartItem // by user id
	orders    map[string]*order.Order
	orderUser map[string]string // order id → user id
	addresses map[string][]api.Address
	pizzas    []api.Pizza
	offers    []api.Offer
	seq       int
}

// New seeds a mock backend with a demo user, a small menu, and one active
// offer.
func New(opts Options) *Server {
	if opts.DeliveryFee == 0 {
		opts.DeliveryFee = 40
	}
	s := &Server{
		opts:      opts,
		hub:       newHub(),
		users:     map[string]*user{},
		usersByID: map[string]*user{},
		carts:     map[string][]api.RemoteCartItem{},
		orders:    map[string]*order.Order{},
		orderUser: map[string]string{},
		addresses: map[string][]api.Address{},
	}
	s.seed()
	return s
}

// Handler returns the full HTTP handler: REST API, websocket feed, and
// Prometheus metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(metricsMiddleware)
	r.Use(recovery)
	r.Use(requestLog)
	r.Use(cors)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Get("/pizzas", s.handlePizzas)
		r.Get("/pizzas/search", s.handleSearchPizzas)
		r.Get("/pizzas/category/{slug}", s.handlePizzasByCategory)
		r.Get("/pizzas/{id}", s.handlePizza)
		r.Get("/categories", s.handleCategories)
		r.Get("/offers", s.handleOffers)
		r.Post("/newsletter/subscribe", s.handleNewsletter)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/auth/me", s.handleMe)
			r.Get("/cart", s.handleGetCart)
			r.Post("/cart/add", s.handleAddToCart)
			r.Put("/cart/update", s.handleUpdateCart)
			r.Delete("/cart/remove/{id}", s.handleRemoveFromCart)
			r.Delete("/cart/clear", s.handleClearCart)
			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders", s.handleListOrders)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Post("/orders/{id}/cancel", s.handleCancelOrder)
			r.Get("/addresses", s.handleListAddresses)
			r.Post("/addresses", s.handleAddAddress)
			r.Put("/addresses/{id}", s.handleUpdateAddress)
			r.Delete("/addresses/{id}", s.handleDeleteAddress)
			r.Post("/addresses/{id}/default", s.handleSetDefaultAddress)
			r.Post("/payments/paypal/create", s.handlePayPalCreate)
			r.Post("/payments/paypal/capture", s.handleAccepted)
			r.Post("/payments/crypto/initiate", s.handleCryptoInitiate)
			r.Post("/payments/crypto/verify", s.handleAccepted)
			r.Post("/offers/apply", s.handleApplyOffer)
		})
	})

	r.Get("/ws/orders", s.handleWS)
	r.Handle("/metrics", metricsHandler())
	return r
}

// Start serves on addr and, when configured, runs the order progression
// simulation. Blocks until the listener fails.
func (s *Server) Start(addr string) error {
	if s.opts.AdvanceEvery > 0 {
		go s.runSimulation()
	}
	logger.Info("devserver: listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// runSimulation walks every open order one ladder step per tick.
func (s *Server) runSimulation() {
	ticker := time.NewTicker(s.opts.AdvanceEvery)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		var due []string
		for id, o := range s.orders {
			if !o.Status.Terminal() {
				due = append(due, id)
			}
		}
		s.mu.Unlock()
		for _, id := range due {
			s.AdvanceOrder(id)
		}
	}
}

// AdvanceOrder moves one order a single status forward and pushes the
// change on the feed.
func (s *Server) AdvanceOrder(orderID string) {
	s.mu.Lock()
	o, ok := s.orders[orderID]
	if !ok || o.Status.Terminal() {
		s.mu.Unlock()
		return
	}
	ladder := order.Ladder()
	idx := o.Status.Index()
	if idx < 0 || idx+1 >= len(ladder) {
		s.mu.Unlock()
		return
	}
	o.Status = ladder[idx+1]
	next := o.Status
	s.mu.Unlock()

	s.PushStatus(orderID, next, "")
}

// PushStatus emits the feed envelopes for a status change: always an
// ORDER_STATUS_UPDATE, plus the milestone message for READY,
// OUT_FOR_DELIVERY and DELIVERED.
func (s *Server) PushStatus(orderID string, st order.Status, eta string) {
	s.hub.push(orderID, feedEnvelope{Type: "ORDER_STATUS_UPDATE", OrderID: orderID, Status: st, EstimatedTime: eta})
	switch st {
	case order.StatusReady:
		s.hub.push(orderID, feedEnvelope{Type: "ORDER_READY", OrderID: orderID, Status: st})
	case order.StatusOutForDelivery:
		s.hub.push(orderID, feedEnvelope{Type: "ORDER_OUT_FOR_DELIVERY", OrderID: orderID, Status: st})
	case order.StatusDelivered:
		s.hub.push(orderID, feedEnvelope{Type: "ORDER_DELIVERED", OrderID: orderID, Status: st})
	}
}
