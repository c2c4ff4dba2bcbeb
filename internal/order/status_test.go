package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slicemaster/storefront/internal/order"
)

func TestLadderOrdering(t *testing.T) {
	ladder := order.Ladder()
	assert.Equal(t, order.StatusPending, ladder[0])
	assert.Equal(t, order.StatusDelivered, ladder[len(ladder)-1])

	for i, st := range ladder {
		assert.Equal(t, i, st.Index())
	}
}

func TestCancelledIsOffTheLadder(t *testing.T) {
	assert.Equal(t, -1, order.StatusCancelled.Index())
	assert.Equal(t, -1, order.Status("BOGUS").Index())
}

func TestReached(t *testing.T) {
	assert.True(t, order.StatusReady.Reached(order.StatusPending))
	assert.True(t, order.StatusReady.Reached(order.StatusReady))
	assert.False(t, order.StatusReady.Reached(order.StatusDelivered))
	assert.False(t, order.StatusCancelled.Reached(order.StatusPending))
}

func TestTerminalAndTrackable(t *testing.T) {
	assert.True(t, order.StatusDelivered.Terminal())
	assert.True(t, order.StatusCancelled.Terminal())
	assert.False(t, order.StatusOutForDelivery.Terminal())

	assert.True(t, order.StatusPreparing.CanTrack())
	assert.False(t, order.StatusDelivered.CanTrack())
	assert.False(t, order.StatusCancelled.CanTrack())
	assert.False(t, order.StatusPending.CanTrack())
}

func TestLabelFallsBackToRawValue(t *testing.T) {
	assert.Equal(t, "Out for delivery", order.StatusOutForDelivery.Label())
	assert.Equal(t, "SOMETHING_NEW", order.Status("SOMETHING_NEW").Label())
}
