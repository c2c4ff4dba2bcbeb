package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicemaster/storefront/internal/history"
	"github.com/slicemaster/storefront/internal/order"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(":memory:")
	require.NoError(t, err)
	return s
}

func sampleOrder(id string, placedAt time.Time) order.Order {
	return order.Order{
		ID:            id,
		Lines:         []order.Line{{ProductID: "P-1", Name: "Margherita", Price: 199, Quantity: 2, Size: "MEDIUM"}},
		Status:        order.StatusPending,
		Total:         438,
		AddressID:     "ADDR-1",
		PaymentMethod: "COD",
		EstimatedTime: "30-40 min",
		CreatedAt:     placedAt,
	}
}

func TestRecordAndGet(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Record(sampleOrder("ORD-1", time.Now())))

	got, ok, err := s.Get("ORD-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Equal(t, 438.0, got.Total)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Margherita", got.Lines[0].Name)
}

func TestGetUnknownOrder(t *testing.T) {
	s := openStore(t)
	_, ok, err := s.Get("ORD-404")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordIsUpsert(t *testing.T) {
	s := openStore(t)
	o := sampleOrder("ORD-1", time.Now())
	require.NoError(t, s.Record(o))

	o.Status = order.StatusConfirmed
	o.Total = 500
	require.NoError(t, s.Record(o))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.StatusConfirmed, list[0].Status)
	assert.Equal(t, 500.0, list[0].Total)
}

func TestUpdateStatus(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Record(sampleOrder("ORD-1", time.Now())))

	require.NoError(t, s.UpdateStatus("ORD-1", order.StatusOutForDelivery))
	got, ok, err := s.Get("ORD-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, order.StatusOutForDelivery, got.Status)

	// Unknown ids are ignored: a pushed event can outrun the checkout write.
	require.NoError(t, s.UpdateStatus("ORD-999", order.StatusDelivered))
}

func TestListMostRecentFirst(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Record(sampleOrder("ORD-old", time.Now().Add(-time.Hour))))
	require.NoError(t, s.Record(sampleOrder("ORD-new", time.Now())))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ORD-new", list[0].ID)
	assert.Equal(t, "ORD-old", list[1].ID)
}
