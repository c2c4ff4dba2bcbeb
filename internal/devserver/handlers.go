package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slicemaster/storefront/internal/api"
	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/pkg/auth"
	"github.com/slicemaster/storefront/pkg/collection"
	"github.com/slicemaster/storefront/internal/session"
)

const tokenTTL = 24 * time.Hour

// ── auth ────────────────────────────────────────────────────────────

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || !auth.CheckPassword(u.passwordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
		return
	}

	s.issueSession(w, u)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.FirstName == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "firstName, email and password are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "VALIDATION_ERROR", "an account with this email already exists")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "could not create account")
		return
	}
	u := &user{
		profile: session.Profile{
			ID:        s.nextID("U"),
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     email,
			Phone:     req.Phone,
		},
		passwordHash: hash,
	}
	s.users[email] = u
	s.usersByID[u.profile.ID] = u
	s.mu.Unlock()

	s.issueSession(w, u)
}

func (s *Server) issueSession(w http.ResponseWriter, u *user) {
	token, err := auth.GenerateToken(u.profile.ID, u.profile.Email, tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  u.profile,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u, ok := s.usersByID[userID(r)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
		return
	}
	writeJSON(w, http.StatusOK, u.profile)
}

// ── menu ────────────────────────────────────────────────────────────

func (s *Server) handlePizzas(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.pizzas)
}

func (s *Server) handlePizza(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.pizzaByID(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "VALIDATION_ERROR", "pizza not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.categories())
}

func (s *Server) handlePizzasByCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.mu.Lock()
	out := collection.Filter(s.pizzas, func(p api.Pizza) bool { return p.Category == slug })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearchPizzas(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	s.mu.Lock()
	out := collection.Filter(s.pizzas, func(p api.Pizza) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// ── cart ────────────────────────────────────────────────────────────

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.carts[userID(r)]
	s.mu.Unlock()
	if items == nil {
		items = []api.RemoteCartItem{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PizzaID  string `json:"pizzaId"`
		Quantity int    `json:"quantity"`
		Size     string `json:"size"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pizzaByID(req.PizzaID)
	if !ok {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown pizza")
		return
	}

	uid := userID(r)
	items := s.carts[uid]
	idx := collection.IndexOf(items, func(i api.RemoteCartItem) bool {
		return i.PizzaID == req.PizzaID && i.Size == req.Size
	})
	if idx >= 0 {
		items[idx].Quantity += req.Quantity
	} else {
		items = append(items, api.RemoteCartItem{
			ID:       s.nextID("CI"),
			PizzaID:  p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: req.Quantity,
			Size:     req.Size,
			Image:    p.ImageURL,
		})
	}
	s.carts[uid] = items
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	items := s.carts[uid]
	idx := collection.IndexOf(items, func(i api.RemoteCartItem) bool { return i.ID == req.ItemID })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "VALIDATION_ERROR", "cart item not found")
		return
	}
	if req.Quantity <= 0 {
		items = append(items[:idx], items[idx+1:]...)
	} else {
		items[idx].Quantity = req.Quantity
	}
	s.carts[uid] = items
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	items := collection.Filter(s.carts[uid], func(i api.RemoteCartItem) bool { return i.ID != id })
	s.carts[uid] = items
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.carts[userID(r)] = nil
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": []api.RemoteCartItem{}})
}

// ── orders ──────────────────────────────────────────────────────────

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req api.CreateOrderRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "order has no items")
		return
	}
	if req.AddressID == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "delivery address is required")
		return
	}

	s.mu.Lock()
	uid := userID(r)

	var lines []order.Line
	var total float64
	for _, it := range req.Items {
		p, ok := s.pizzaByID(it.PizzaID)
		if !ok {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown pizza in order")
			return
		}
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		lines = append(lines, order.Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
			Size:      it.Size,
		})
		total += p.Price * float64(qty)
	}
	total += s.opts.DeliveryFee

	o := &order.Order{
		ID:            s.nextID("ORD"),
		Lines:         lines,
		Status:        order.StatusPending,
		Total:         total,
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		EstimatedTime: "30-40 min",
		CreatedAt:     time.Now(),
	}
	s.orders[o.ID] = o
	s.orderUser[o.ID] = uid
	s.carts[uid] = nil
	s.mu.Unlock()

	ordersPlaced.Inc()
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	s.mu.Lock()
	out := []order.Order{}
	for id, o := range s.orders {
		if s.orderUser[id] == uid {
			out = append(out, *o)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// orderFor returns the order when it exists and belongs to the requester.
func (s *Server) orderFor(r *http.Request, id string) (*order.Order, bool) {
	o, ok := s.orders[id]
	if !ok || s.orderUser[id] != userID(r) {
		return nil, false
	}
	return o, true
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	o, ok := s.orderFor(r, chi.URLParam(r, "id"))
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "VALIDATION_ERROR", "order not found")
		return
	}
	out := *o
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	o, ok := s.orderFor(r, chi.URLParam(r, "id"))
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "VALIDATION_ERROR", "order not found")
		return
	}
	if o.Status.Terminal() {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "order can no longer be cancelled")
		return
	}
	o.Status = order.StatusCancelled
	out := *o
	s.mu.Unlock()

	s.PushStatus(out.ID, order.StatusCancelled, "")
	writeJSON(w, http.StatusOK, out)
}

// ── addresses ───────────────────────────────────────────────────────

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]api.Address{}, s.addresses[userID(r)]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddAddress(w http.ResponseWriter, r *http.Request) {
	var a api.Address
	if !decode(w, r, &a) {
		return
	}
	if a.Street == "" || a.City == "" || a.Pincode == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "street, city and pincode are required")
		return
	}

	s.mu.Lock()
	uid := userID(r)
	a.ID = s.nextID("ADDR")
	if len(s.addresses[uid]) == 0 {
		a.IsDefault = true
	}
	s.addresses[uid] = append(s.addresses[uid], a)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	var a api.Address
	if !decode(w, r, &a) {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	list := s.addresses[uid]
	idx := collection.IndexOf(list, func(x api.Address) bool { return x.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "VALIDATION_ERROR", "address not found")
		return
	}
	a.ID = id
	a.IsDefault = list[idx].IsDefault
	list[idx] = a
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	uid := userID(r)
	s.addresses[uid] = collection.Filter(s.addresses[uid], func(x api.Address) bool { return x.ID != id })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := userID(r)
	list := s.addresses[uid]
	if !collection.Contains(list, func(x api.Address) bool { return x.ID == id }) {
		writeError(w, http.StatusNotFound, "VALIDATION_ERROR", "address not found")
		return
	}
	for i := range list {
		list[i].IsDefault = list[i].ID == id
	}
	writeJSON(w, http.StatusOK, nil)
}

// ── payments ────────────────────────────────────────────────────────

func (s *Server) handlePayPalCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":          "PP-" + req.OrderID,
		"approvalUrl": "https://paypal.example/approve/PP-" + req.OrderID,
	})
}

func (s *Server) handleCryptoInitiate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID  string `json:"orderId"`
		Currency string `json:"currency"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Currency == "" {
		req.Currency = "BTC"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"walletAddress": "bc1q-mock-" + req.OrderID,
		"currency":      req.Currency,
		"amount":        0.0042,
	})
}

// handleAccepted acknowledges fire-and-forget confirmation endpoints.
func (s *Server) handleAccepted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nil)
}

// ── offers and newsletter ───────────────────────────────────────────

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.offers)
}

func (s *Server) handleApplyOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	offer, ok := collection.First(s.offers, func(o api.Offer) bool {
		return strings.EqualFold(o.Code, req.Code)
	})
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "VALIDATION_ERROR", "invalid promo code")
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid email address")
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
