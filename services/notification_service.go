package services

import "github.com/comandapp/comandas-api/models"

// Channel is a named notification audience.
type Channel string

const (
	ChannelKitchen   Channel = "kitchen"
	ChannelWaiter    Channel = "waiter"
	ChannelBroadcast Channel = "tenant-broadcast"
)

// Valid reports whether c is one of the defined channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelKitchen, ChannelWaiter, ChannelBroadcast:
		return true
	}
	return false
}

// Event is the closed payload shape published on every channel.
type Event struct {
	RestaurantID uint               `json:"restaurant_id"`
	OrderID      uint               `json:"order_id"`
	Status       models.OrderStatus `json:"status"`
	Message      string             `json:"message"`
}

// Dispatcher fans an event out to every listener currently connected to a
// channel. Delivery is best-effort and at-most-once: no retries, no queue,
// no acknowledgments, and zero connected listeners is not an error.
// Implementations must never block the caller or return delivery failures:
// by the time an event is published the source-of-truth write has already
// committed.
type Dispatcher interface {
	Publish(channel Channel, event Event)
}

// NoopDispatcher discards every event. It is the default until the
// websocket gateway (or a test mock) is installed.
type NoopDispatcher struct{}

// Publish discards the event.
func (NoopDispatcher) Publish(Channel, Event) {}

var dispatcher Dispatcher = NoopDispatcher{}

// GetDispatcher returns the installed dispatcher instance.
func GetDispatcher() Dispatcher {
	return dispatcher
}

// SetDispatcher installs the dispatcher used by newly constructed services.
func SetDispatcher(d Dispatcher) {
	if d == nil {
		d = NoopDispatcher{}
	}
	dispatcher = d
}
