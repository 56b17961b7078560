package events

// CallbackEvent calls every registered func synchronously on Notify
type CallbackEvent[T any] struct {
	reg registry[func(T), T]
}

func NewCallbackEvent[T any](replay bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{reg: newRegistry[func(T), T](replay)}
}

// Listen registers fn. With replay enabled and a previous Notify, fn is called
// immediately with the latest value before Listen returns.
func (e *CallbackEvent[T]) Listen(fn func(T)) func() {
	if fn == nil {
		panic("events: callback cannot be nil")
	}
	unregister, last, ok := e.reg.add(fn)
	if ok {
		fn(last)
	}
	return unregister
}

func (e *CallbackEvent[T]) Notify(value T) {
	for _, fn := range e.reg.snapshot(value) {
		fn(value)
	}
}

func (e *CallbackEvent[T]) ListenerCount() int {
	return e.reg.count()
}
