// Package cart owns the shopping cart: an ordered list of line items held in
// memory, snapshotted to the client state store after every mutation, and
// synced to the server-side cart on a best-effort basis while signed in.
// Local state is the source of truth for the visible cart; remote sync
// failures are logged, never surfaced, and never rolled back.
package cart

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/slicemaster/storefront/internal/api"
	"github.com/slicemaster/storefront/internal/events"
	"github.com/slicemaster/storefront/internal/session"
	"github.com/slicemaster/storefront/pkg/collection"
	"github.com/slicemaster/storefront/pkg/event"
	"github.com/slicemaster/storefront/pkg/kvstore"
	"github.com/slicemaster/storefront/pkg/logger"
)

// Size variants of a line item.
const (
	SizeSmall  = "SMALL"
	SizeMedium = "MEDIUM"
	SizeLarge  = "LARGE"
)

// DefaultSize is used when the caller does not pick a variant.
const DefaultSize = SizeMedium

// State store keys. PendingKey carries an anonymous-session cart across a
// login boundary; it is merged and removed by RestorePending.
const (
	StateKey   = "cart"
	PendingKey = "pending_cart"
)

// Item is one cart line. The ID is locally generated until the server has
// confirmed the line (reconciliation replaces it with the server id).
type Item struct {
	ID        string  `json:"id"`
	ProductID string  `json:"pizzaId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Image     string  `json:"image,omitempty"`
}

// Syncer is the remote cart surface the cart needs; *api.Client satisfies it.
type Syncer interface {
	FetchCart(ctx context.Context) ([]api.RemoteCartItem, error)
	AddToCart(ctx context.Context, pizzaID string, quantity int, size string) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveFromCart(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// Cart is the owned cart state. All mutations go through its methods.
type Cart struct {
	mu       sync.Mutex
	items    []Item
	kv       kvstore.Store
	remote   Syncer
	sessions *session.Store
	bus      *event.Bus
	fee      float64
	syncs    sync.WaitGroup
}

// New hydrates the cart from the state store. An absent or corrupt snapshot
// yields an empty cart. fee is the flat delivery fee for non-empty carts.
func New(kv kvstore.Store, remote Syncer, sessions *session.Store, bus *event.Bus, fee float64) *Cart {
	c := &Cart{kv: kv, remote: remote, sessions: sessions, bus: bus, fee: fee}
	var items []Item
	if kv.Get(StateKey, &items) {
		c.items = items
	}
	return c
}

func newLineID() string {
	return "local-" + strconv.FormatInt(time.Now().UnixNano(), 10)
}

// Add merges quantity into an existing (product, size) line or appends a new
// one. Persists, announces the change, and best-effort syncs while signed in.
func (c *Cart) Add(productID, name string, price float64, quantity int, size, image string) {
	if quantity < 1 {
		quantity = 1
	}
	if size == "" {
		size = DefaultSize
	}

	c.mu.Lock()
	idx := collection.IndexOf(c.items, func(i Item) bool {
		return i.ProductID == productID && i.Size == size
	})
	if idx >= 0 {
		c.items[idx].Quantity += quantity
	} else {
		c.items = append(c.items, Item{
			ID:        newLineID(),
			ProductID: productID,
			Name:      name,
			Price:     price,
			Quantity:  quantity,
			Size:      size,
			Image:     image,
		})
	}
	changed := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Fire(events.CartChanged, changed)
	c.syncRemote("add", func(ctx context.Context) error {
		return c.remote.AddToCart(ctx, productID, quantity, size)
	})
}

// UpdateQuantity applies a delta to a line's quantity. A result of zero or
// less removes the line entirely; a negative quantity is never stored.
func (c *Cart) UpdateQuantity(lineID string, delta int) {
	c.mu.Lock()
	idx := collection.IndexOf(c.items, func(i Item) bool { return i.ID == lineID })
	if idx < 0 {
		c.mu.Unlock()
		return
	}

	next := c.items[idx].Quantity + delta
	if next <= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		changed := c.snapshotLocked()
		c.mu.Unlock()

		c.bus.Fire(events.CartChanged, changed)
		c.syncRemote("remove", func(ctx context.Context) error {
			return c.remote.RemoveFromCart(ctx, lineID)
		})
		return
	}

	c.items[idx].Quantity = next
	changed := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Fire(events.CartChanged, changed)
	c.syncRemote("update", func(ctx context.Context) error {
		return c.remote.UpdateCartItem(ctx, lineID, next)
	})
}

// Remove deletes a line by id.
func (c *Cart) Remove(lineID string) {
	c.mu.Lock()
	idx := collection.IndexOf(c.items, func(i Item) bool { return i.ID == lineID })
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	changed := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Fire(events.CartChanged, changed)
	c.syncRemote("remove", func(ctx context.Context) error {
		return c.remote.RemoveFromCart(ctx, lineID)
	})
}

// Clear empties the cart. While signed in the server-side cart is cleared
// too (best-effort); after a logout only local state is touched.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	changed := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Fire(events.CartChanged, changed)
	c.syncRemote("clear", func(ctx context.Context) error {
		return c.remote.ClearCart(ctx)
	})
}

// Reconcile merges local and remote cart state once after login. Policy:
// a non-empty local cart wins only when the remote cart is empty, in which
// case every local line is pushed remotely; in every other case the remote
// cart replaces local state wholesale. The asymmetry is deliberate and must
// stay.
func (c *Cart) Reconcile(ctx context.Context) error {
	remote, err := c.remote.FetchCart(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	localItems := make([]Item, len(c.items))
	copy(localItems, c.items)
	c.mu.Unlock()

	if len(localItems) > 0 && len(remote) == 0 {
		for _, item := range localItems {
			if err := c.remote.AddToCart(ctx, item.ProductID, item.Quantity, item.Size); err != nil {
				return err
			}
		}
		return nil
	}

	c.mu.Lock()
	c.items = collection.Map(remote, func(r api.RemoteCartItem) Item {
		size := r.Size
		if size == "" {
			size = DefaultSize
		}
		return Item{
			ID:        r.ID,
			ProductID: r.PizzaID,
			Name:      r.Name,
			Price:     r.Price,
			Quantity:  r.Quantity,
			Size:      size,
			Image:     r.Image,
		}
	})
	changed := c.snapshotLocked()
	c.mu.Unlock()

	c.bus.Fire(events.CartChanged, changed)
	return nil
}

// RestorePending merges a cart saved before a login boundary into the
// current cart, then discards it. No-op while signed out.
func (c *Cart) RestorePending() {
	if !c.sessions.IsAuthenticated() {
		return
	}

	var pending []Item
	if !c.kv.Get(PendingKey, &pending) {
		return
	}
	for _, item := range pending {
		c.Add(item.ProductID, item.Name, item.Price, item.Quantity, item.Size, item.Image)
	}
	if err := c.kv.Delete(PendingKey); err != nil {
		logger.Warn("cart: drop pending cart", "error", err)
	}
}

// SavePending snapshots the current lines under the pending-cart key so an
// anonymous cart survives the login round trip.
func (c *Cart) SavePending() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Put(PendingKey, c.items)
}

// ── Derived values ───────────────────────────────────────────────────────────

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Subtotal is the sum of price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotal(c.items)
}

// DeliveryFee is flat for a non-empty cart, zero otherwise.
func (c *Cart) DeliveryFee() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return deliveryFee(c.items, c.fee)
}

// Total is subtotal plus delivery fee.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotal(c.items) + deliveryFee(c.items, c.fee)
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return itemCount(c.items)
}

func subtotal(items []Item) float64 {
	return collection.Sum(items, func(i Item) float64 { return i.Price * float64(i.Quantity) })
}

func deliveryFee(items []Item, fee float64) float64 {
	if len(items) == 0 {
		return 0
	}
	return fee
}

func itemCount(items []Item) int {
	return collection.SumInt(items, func(i Item) int { return i.Quantity })
}

// ── Persistence and sync ─────────────────────────────────────────────────────

// snapshotLocked persists the current lines and builds the change payload.
// Caller holds the mutex.
func (c *Cart) snapshotLocked() events.CartChangedData {
	if err := c.kv.Put(StateKey, c.items); err != nil {
		logger.Warn("cart: persist snapshot", "error", err)
	}
	return events.CartChangedData{
		ItemCount: itemCount(c.items),
		Total:     subtotal(c.items) + deliveryFee(c.items, c.fee),
	}
}

// syncRemote runs one best-effort remote mutation in its own goroutine.
// Calls are independent and unordered; transient divergence self-heals on
// the next reconciliation.
func (c *Cart) syncRemote(op string, fn func(ctx context.Context) error) {
	if !c.sessions.IsAuthenticated() {
		return
	}
	c.syncs.Add(1)
	go func() {
		defer c.syncs.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Error("cart: remote sync failed", "op", op, "error", err)
		}
	}()
}

// WaitSync blocks until in-flight best-effort syncs finish. The CLI calls it
// before exiting so a short-lived process doesn't abandon its sync.
func (c *Cart) WaitSync() {
	c.syncs.Wait()
}
