package playback

// Subscribers get one ordered stream of Event values per subscription,
// mirroring the engine's single notification callback: every
// state-relevant change arrives on the same channel and consumers
// type-switch on the concrete event structs.
const eventBufferSize = 32

// Subscription is a registered event consumer. Delivery is best-effort:
// a subscriber that stops draining Events loses notifications rather
// than blocking the engine.
type Subscription struct {
	events chan Event
	done   chan struct{}
}

func newSubscription() *Subscription {
	return &Subscription{
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
	}
}

// Events returns the subscriber's notification stream.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Done is closed when the subscription is removed or the engine closes.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) close() {
	close(s.done)
}
