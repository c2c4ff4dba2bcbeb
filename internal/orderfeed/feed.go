// Package orderfeed maintains the persistent websocket connection that
// delivers pushed order-status events. It owns the connection lifecycle
// (connect, resubscribe on open, linear-backoff reconnect with a hard
// attempt cap) and translates inbound envelopes into bus events.
package orderfeed

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/event"
	"github.com/slicemaster/storefront/pkg/logger"
)

// State is the connection lifecycle position.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// ErrNotAuthenticated is returned by Connect while signed out; the feed URL
// embeds the bearer token, so there is nothing to dial without one.
var ErrNotAuthenticated = errors.New("orderfeed: not authenticated")

// Outbound and inbound envelope types on the wire.
const (
	typeSubscribe      = "SUBSCRIBE"
	typeUnsubscribe    = "UNSUBSCRIBE"
	typeStatusUpdate   = "ORDER_STATUS_UPDATE"
	typeReady          = "ORDER_READY"
	typeOutForDelivery = "ORDER_OUT_FOR_DELIVERY"
	typeDelivered      = "ORDER_DELIVERED"
)

// envelope is the JSON message shape in both directions.
type envelope struct {
	Type          string       `json:"type"`
	OrderID       string       `json:"orderId"`
	Status        order.Status `json:"status,omitempty"`
	EstimatedTime string       `json:"estimatedTime,omitempty"`
}

// Feed is the order status channel. Safe for concurrent use.
type Feed struct {
	mu        sync.Mutex
	state     State
	conn      *websocket.Conn
	subs      map[string]struct{}
	attempts  int
	reconnect *time.Timer
	closed    bool

	url         string
	maxAttempts int
	baseDelay   time.Duration
	sessions    *session.Store
	bus         *event.Bus
	dialer      *websocket.Dialer
}

// New builds a feed dialing <wsURL>/orders. maxAttempts caps reconnections;
// attempt N waits N times baseDelay before redialing.
func New(wsURL string, sessions *session.Store, bus *event.Bus, maxAttempts int, baseDelay time.Duration) *Feed {
	return &Feed{
		subs:        map[string]struct{}{},
		url:         wsURL,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sessions:    sessions,
		bus:         bus,
		dialer:      websocket.DefaultDialer,
	}
}

// Connect dials the feed. Only permitted while authenticated; a no-op unless
// currently disconnected. On success the whole subscription set is replayed
// so a reconnect resumes exactly where the last connection left off.
func (f *Feed) Connect() error {
	f.mu.Lock()
	if f.state != Disconnected {
		f.mu.Unlock()
		return nil
	}
	if !f.sessions.IsAuthenticated() {
		f.mu.Unlock()
		return ErrNotAuthenticated
	}
	f.closed = false
	f.state = Connecting
	token := f.sessions.Token()
	f.mu.Unlock()

	conn, _, err := f.dialer.Dial(f.url+"/orders?token="+token, nil)
	if err != nil {
		logger.Warn("orderfeed: dial failed", "error", err)
		f.onDisconnect(nil)
		return err
	}

	f.mu.Lock()
	f.state = Connected
	f.conn = conn
	f.attempts = 0
	for id := range f.subs {
		if werr := conn.WriteJSON(envelope{Type: typeSubscribe, OrderID: id}); werr != nil {
			logger.Warn("orderfeed: replay subscribe", "orderId", id, "error", werr)
		}
	}
	f.mu.Unlock()

	logger.Info("orderfeed: connected")
	go f.readLoop(conn)
	return nil
}

// Shutdown closes the connection, clears the subscription set, and cancels
// any pending reconnect timer. Called on logout; a later Connect starts
// fresh.
func (f *Feed) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.state = Disconnected
	f.attempts = 0
	f.subs = map[string]struct{}{}
	if f.reconnect != nil {
		f.reconnect.Stop()
		f.reconnect = nil
	}
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
}

// Subscribe adds an order to the subscription set. The SUBSCRIBE command is
// sent immediately when connected; otherwise the set itself queues it for
// the replay-on-open, and a connect attempt is triggered.
func (f *Feed) Subscribe(orderID string) {
	f.mu.Lock()
	f.subs[orderID] = struct{}{}
	connected := f.state == Connected && f.conn != nil
	if connected {
		if err := f.conn.WriteJSON(envelope{Type: typeSubscribe, OrderID: orderID}); err != nil {
			logger.Warn("orderfeed: subscribe", "orderId", orderID, "error", err)
		}
	}
	f.mu.Unlock()

	if !connected {
		_ = f.Connect()
	}
}

// Unsubscribe removes an order from the subscription set and tells the
// server when connected.
func (f *Feed) Unsubscribe(orderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.subs, orderID)
	if f.state == Connected && f.conn != nil {
		if err := f.conn.WriteJSON(envelope{Type: typeUnsubscribe, OrderID: orderID}); err != nil {
			logger.Warn("orderfeed: unsubscribe", "orderId", orderID, "error", err)
		}
	}
}

// State returns the current connection state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscriptions returns the current subscription set.
func (f *Feed) Subscriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.subs))
	for id := range f.subs {
		out = append(out, id)
	}
	return out
}

// Attempts returns how many reconnections have been scheduled since the
// last successful open.
func (f *Feed) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *Feed) readLoop(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			logger.Debug("orderfeed: read ended", "error", err)
			break
		}
		f.dispatch(env)
	}
	f.onDisconnect(conn)
}

// onDisconnect records the drop and schedules the next attempt with linear
// backoff. After maxAttempts the feed gives up quietly: tracking simply goes
// stale until the next explicit Connect.
func (f *Feed) onDisconnect(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if conn != nil && f.conn == conn {
		f.conn.Close()
		f.conn = nil
	}
	f.state = Disconnected
	if f.closed {
		return
	}

	if f.attempts >= f.maxAttempts {
		logger.Warn("orderfeed: giving up after max reconnect attempts", "attempts", f.attempts)
		return
	}
	f.attempts++
	delay := time.Duration(f.attempts) * f.baseDelay
	logger.Info("orderfeed: reconnecting", "attempt", f.attempts, "max", f.maxAttempts, "delay", delay)

	f.reconnect = time.AfterFunc(delay, func() {
		if f.sessions.IsAuthenticated() {
			_ = f.Connect()
		}
	})
}

func (f *Feed) dispatch(env envelope) {
	switch env.Type {
	case typeStatusUpdate:
		f.bus.Fire(events.OrderStatus, events.OrderStatusData{
			OrderID:       env.OrderID,
			Status:        env.Status,
			EstimatedTime: env.EstimatedTime,
		})
		f.bus.Fire(events.OrderNotice, events.OrderNoticeData{
			OrderID: env.OrderID,
			Message: env.Status.Label(),
		})
	case typeReady:
		f.bus.Fire(events.OrderNotice, events.OrderNoticeData{
			OrderID: env.OrderID,
			Message: "Your order is ready and being packed",
		})
	case typeOutForDelivery:
		f.bus.Fire(events.OrderNotice, events.OrderNoticeData{
			OrderID: env.OrderID,
			Message: "Your order is out for delivery",
		})
	case typeDelivered:
		f.bus.Fire(events.OrderNotice, events.OrderNoticeData{
			OrderID: env.OrderID,
			Message: "Your order has been delivered. Enjoy!",
		})
		f.Unsubscribe(env.OrderID)
	default:
		logger.Debug("orderfeed: unknown message type", "type", env.Type)
	}
}
