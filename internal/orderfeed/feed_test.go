package orderfeed_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/order"
	"github.com/slicemaster/storefront/internal/orderfeed"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/auth"
	"github.com/slicemaster/storefront/pkg/event"
	"github.com/slicemaster/storefront/pkg/kvstore"
)

type wireFrame struct {
	Type          string `json:"type"`
	OrderID       string `json:"orderId"`
	Status        string `json:"status,omitempty"`
	EstimatedTime string `json:"estimatedTime,omitempty"`
}

// wsServer runs a one-connection websocket endpoint and hands the connection
// to fn on its own goroutine.
func wsServer(t *testing.T, fn func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		fn(conn)
	}))
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func signedInSession(t *testing.T) *session.Store {
	t.Helper()
	s := session.NewStore(kvstore.NewMemory())
	token, err := auth.GenerateToken("U-1", "u@example.com", time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Set(token, session.Profile{ID: "U-1"}))
	return s
}

func TestConnectRequiresAuthentication(t *testing.T) {
	sessions := session.NewStore(kvstore.NewMemory())
	feed := orderfeed.New("ws://127.0.0.1:1", sessions, event.NewBus(), 3, time.Millisecond)

	err := feed.Connect()
	assert.ErrorIs(t, err, orderfeed.ErrNotAuthenticated)
	assert.Equal(t, orderfeed.Disconnected, feed.State())
}

func TestSubscribeWhileDisconnectedConnectsAndReplays(t *testing.T) {
	frames := make(chan wireFrame, 4)
	url := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var f wireFrame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		frames <- f
		// Hold the connection open until the client shuts down.
		for {
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
		}
	})

	feed := orderfeed.New(url, signedInSession(t), event.NewBus(), 3, time.Millisecond)
	defer feed.Shutdown()

	feed.Subscribe("ORD-1001")

	select {
	case f := <-frames:
		assert.Equal(t, "SUBSCRIBE", f.Type)
		assert.Equal(t, "ORD-1001", f.OrderID)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the SUBSCRIBE replay")
	}
	assert.Equal(t, orderfeed.Connected, feed.State())
	assert.Equal(t, []string{"ORD-1001"}, feed.Subscriptions())
}

func TestStatusUpdatesReachTheBus(t *testing.T) {
	url := wsServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		var f wireFrame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		conn.WriteJSON(wireFrame{Type: "ORDER_STATUS_UPDATE", OrderID: f.OrderID, Status: "PREPARING", EstimatedTime: "20 min"})
		conn.WriteJSON(wireFrame{Type: "ORDER_DELIVERED", OrderID: f.OrderID})
		// Wait for the client's UNSUBSCRIBE before closing.
		conn.ReadJSON(&f)
	})

	bus := event.NewBus()
	statuses := make(chan events.OrderStatusData, 4)
	notices := make(chan events.OrderNoticeData, 4)
	bus.Listen(events.OrderStatus, func(p interface{}) {
		if d, ok := p.(events.OrderStatusData); ok {
			statuses <- d
		}
	})
	bus.Listen(events.OrderNotice, func(p interface{}) {
		if d, ok := p.(events.OrderNoticeData); ok {
			notices <- d
		}
	})

	feed := orderfeed.New(url, signedInSession(t), bus, 3, time.Millisecond)
	defer feed.Shutdown()
	feed.Subscribe("ORD-7")

	select {
	case d := <-statuses:
		assert.Equal(t, "ORD-7", d.OrderID)
		assert.Equal(t, order.StatusPreparing, d.Status)
		assert.Equal(t, "20 min", d.EstimatedTime)
	case <-time.After(2 * time.Second):
		t.Fatal("no status event")
	}

	// DELIVERED produces a notice and drops the subscription.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case d := <-notices:
			if strings.Contains(d.Message, "delivered") {
				assert.Empty(t, feed.Subscriptions())
				return
			}
		case <-deadline:
			t.Fatal("no delivered notice")
		}
	}
}

func TestReconnectGivesUpAfterMaxAttempts(t *testing.T) {
	// Nothing listens here; every dial fails fast.
	feed := orderfeed.New("ws://127.0.0.1:1", signedInSession(t), event.NewBus(), 3, time.Millisecond)

	err := feed.Connect()
	require.Error(t, err)

	// Linear backoff at 1ms: all retries resolve almost immediately.
	require.Eventually(t, func() bool { return feed.Attempts() == 3 },
		2*time.Second, 10*time.Millisecond)

	// Quiet after the cap: no further attempts accumulate.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, feed.Attempts())
	assert.Equal(t, orderfeed.Disconnected, feed.State())
}

func TestShutdownClearsSubscriptionsAndStopsReconnects(t *testing.T) {
	feed := orderfeed.New("ws://127.0.0.1:1", signedInSession(t), event.NewBus(), 100, time.Hour)

	feed.Subscribe("ORD-1") // dial fails, a reconnect is scheduled far out
	feed.Shutdown()

	assert.Equal(t, orderfeed.Disconnected, feed.State())
	assert.Empty(t, feed.Subscriptions())
	assert.Equal(t, 0, feed.Attempts())
}

func TestConnectWhileConnectedIsNoOp(t *testing.T) {
	connections := make(chan struct{}, 2)
	url := wsServer(t, func(conn *websocket.Conn) {
		connections <- struct{}{}
		var f wireFrame
		for conn.ReadJSON(&f) == nil {
		}
		conn.Close()
	})

	feed := orderfeed.New(url, signedInSession(t), event.NewBus(), 3, time.Millisecond)
	defer feed.Shutdown()

	require.NoError(t, feed.Connect())
	require.NoError(t, feed.Connect())

	select {
	case <-connections:
	case <-time.After(2 * time.Second):
		t.Fatal("no connection arrived")
	}
	select {
	case <-connections:
		t.Fatal("second Connect dialed again")
	case <-time.After(100 * time.Millisecond):
	}
}
