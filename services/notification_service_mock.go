package services

import "sync"

// PublishedEvent pairs an event with the channel it was published on.
type PublishedEvent struct {
	Channel Channel
	Event   Event
}

// MockDispatcher is a Dispatcher that records every published event for
// inspection in tests.
type MockDispatcher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// NewMockDispatcher creates a new mock dispatcher
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{}
}

// SetAsMockForTesting installs this mock as the global dispatcher instance
func (m *MockDispatcher) SetAsMockForTesting() {
	SetDispatcher(m)
}

// Publish records the event.
func (m *MockDispatcher) Publish(channel Channel, event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Channel: channel, Event: event})
}

// Events returns a copy of everything published so far.
func (m *MockDispatcher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOn returns the events published on one channel.
func (m *MockDispatcher) EventsOn(channel Channel) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, pe := range m.events {
		if pe.Channel == channel {
			out = append(out, pe.Event)
		}
	}
	return out
}

// Reset clears the recorded events.
func (m *MockDispatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
