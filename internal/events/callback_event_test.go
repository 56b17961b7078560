package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects callback values
type recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func (r *recorder[T]) add(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *recorder[T]) get() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.values...)
}

func TestNewCallbackEvent(t *testing.T) {
	event := NewCallbackEvent[string](false)
	require.NotNil(t, event)
	assert.Equal(t, 0, event.ListenerCount())
	assert.True(t, NewCallbackEvent[int](true).reg.replay)
}

func TestCallbackEvent_ListenNotify(t *testing.T) {
	event := NewCallbackEvent[string](false)
	var rec recorder[string]
	unregister := event.Listen(rec.add)

	event.Notify("Workout paused.")
	event.Notify("Workout resumed.")
	assert.Equal(t, []string{"Workout paused.", "Workout resumed."}, rec.get())

	unregister()
	event.Notify("Workout reset.")
	assert.Len(t, rec.get(), 2)
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_Replay(t *testing.T) {
	type snapshot struct {
		Name      string
		Remaining int
	}
	event := NewCallbackEvent[snapshot](true)

	var first recorder[snapshot]
	defer event.Listen(first.add)()
	assert.Empty(t, first.get())

	event.Notify(snapshot{Name: "Plank", Remaining: 30})

	var second recorder[snapshot]
	defer event.Listen(second.add)()
	assert.Equal(t, []snapshot{{Name: "Plank", Remaining: 30}}, second.get())

	event.Notify(snapshot{Name: "Plank", Remaining: 29})
	assert.Len(t, first.get(), 2)
	assert.Equal(t, 29, second.get()[1].Remaining)
}

func TestCallbackEvent_NoReplay(t *testing.T) {
	event := NewCallbackEvent[int](false)
	event.Notify(1)

	var rec recorder[int]
	defer event.Listen(rec.add)()
	assert.Empty(t, rec.get())
}

func TestCallbackEvent_ConcurrentListenNotify(t *testing.T) {
	event := NewCallbackEvent[int](false)
	var rec recorder[int]

	var wg sync.WaitGroup
	var umu sync.Mutex
	var unregisters []func()
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := event.Listen(rec.add)
			umu.Lock()
			unregisters = append(unregisters, u)
			umu.Unlock()
		}()
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			event.Notify(v)
		}(i)
	}
	wg.Wait()
	assert.Len(t, rec.get(), 50)

	for _, u := range unregisters {
		u()
	}
	assert.Equal(t, 0, event.ListenerCount())
}

func TestCallbackEvent_NilCallbackPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewCallbackEvent[string](false).Listen(nil)
	})
}

func TestCallbackEvent_UnregisterDuringNotify(t *testing.T) {
	event := NewCallbackEvent[string](false)
	var rec recorder[string]
	var unregister func()
	unregister = event.Listen(func(v string) {
		rec.add(v)
		if v == "stop" {
			unregister()
		}
	})

	event.Notify("a")
	event.Notify("stop")
	event.Notify("b")

	assert.Equal(t, []string{"a", "stop"}, rec.get())
	assert.Equal(t, 0, event.ListenerCount())

	// repeated calls are harmless
	unregister()
	unregister()
}
