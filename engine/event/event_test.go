package event

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	cases := map[string]Event{
		"resized":          Resized{Width: 1, Height: 2},
		"close_requested":  CloseRequested{},
		"key":              Key{Code: 32, Pressed: true},
		"mouse_move":       MouseMove{},
		"mouse_click":      MouseClick{Button: MouseButtonMiddle},
		"scroll":           Scroll{DeltaY: 1},
		"focus":            Focus{Focused: true},
		"redraw_requested": RedrawRequested{},
		"cleared":          Cleared{},
		"nil":              nil,
	}
	for want, ev := range cases {
		assert.Equal(t, want, Name(ev))
	}
	assert.Equal(t, "user(event.User[string])", Name(User[string]{Payload: "x"}))
}

func TestProxyDeliversInOrder(t *testing.T) {
	var wakes atomic.Int32
	p := NewProxy[int](4, func() { wakes.Add(1) })

	for i := 1; i <= 3; i++ {
		require.NoError(t, p.Send(i))
	}
	assert.Equal(t, int32(3), wakes.Load())

	var got []int
	n := p.Drain(func(ev Event) {
		got = append(got, ev.(User[int]).Payload)
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 0, p.Drain(func(Event) { t.Fatal("queue should be empty") }))
}

func TestProxyFullAndClosed(t *testing.T) {
	p := NewProxy[string](1, nil)
	require.NoError(t, p.Send("a"))
	assert.ErrorIs(t, p.Send("b"), ErrProxyFull)

	p.Close()
	assert.ErrorIs(t, p.Send("c"), ErrProxyClosed)
	assert.Equal(t, 1, p.Drain(func(Event) {}), "queued events survive Close")
}

func TestProxyConcurrentSend(t *testing.T) {
	p := NewProxy[int](1000, nil)
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = p.Send(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, p.Drain(func(Event) {}))
}
