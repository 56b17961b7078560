package events

// ChannelEvent fans a value out to any number of listening channels.
// Sends never block: a listener whose buffer is full misses that value.
type ChannelEvent[T any] struct {
	reg registry[chan<- T, T]
}

// NewChannelEvent creates a ChannelEvent. With replay set, the newest value is
// pushed to a channel as soon as it starts listening.
func NewChannelEvent[T any](replay bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{reg: newRegistry[chan<- T, T](replay)}
}

// Listen registers ch and returns a func that removes it again.
// Calling the returned func more than once is safe.
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("events: channel cannot be nil")
	}
	unregister, last, ok := e.reg.add(ch)
	if ok {
		trySend(ch, last)
	}
	return unregister
}

func (e *ChannelEvent[T]) Notify(value T) {
	for _, ch := range e.reg.snapshot(value) {
		trySend(ch, value)
	}
}

// Latest returns the most recent value if replay is enabled and Notify has been called
func (e *ChannelEvent[T]) Latest() (T, bool) {
	return e.reg.latest()
}

func (e *ChannelEvent[T]) ListenerCount() int {
	return e.reg.count()
}

func trySend[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}
