package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slicemaster/storefront/pkg/event"
)

func TestFireInRegistrationOrder(t *testing.T) {
	bus := event.NewBus()

	var got []string
	bus.Listen("ping", func(interface{}) { got = append(got, "first") })
	bus.Listen("ping", func(interface{}) { got = append(got, "second") })

	bus.Fire("ping", nil)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestFirePayloadDelivered(t *testing.T) {
	bus := event.NewBus()

	var got interface{}
	bus.Listen("ping", func(p interface{}) { got = p })

	bus.Fire("ping", 42)
	assert.Equal(t, 42, got)
}

func TestFireNoListeners(t *testing.T) {
	bus := event.NewBus()
	bus.Fire("nobody-home", "payload") // must not panic
}

func TestFireAsync(t *testing.T) {
	bus := event.NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Listen("ping", func(interface{}) { wg.Done() })
	bus.Listen("ping", func(interface{}) { wg.Done() })

	bus.FireAsync("ping", nil)
	wg.Wait()
}

func TestFlushRemovesListeners(t *testing.T) {
	bus := event.NewBus()

	called := false
	bus.Listen("ping", func(interface{}) { called = true })
	bus.Flush()

	bus.Fire("ping", nil)
	assert.False(t, called)
}
