package window

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform records wakes and flags any that arrive after destroy.
type fakePlatform struct {
	destroyed   atomic.Bool
	wakes       atomic.Int64
	lateWakes   atomic.Int64
	destroys    int
	destroySlow time.Duration
}

func (p *fakePlatform) poll()              {}
func (p *fakePlatform) wait(time.Duration) {}
func (p *fakePlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return &wgpu.SurfaceDescriptor{}
}
func (p *fakePlatform) alive() bool { return !p.destroyed.Load() }

func (p *fakePlatform) wake() {
	if p.destroyed.Load() {
		p.lateWakes.Add(1)
		return
	}
	p.wakes.Add(1)
}

func (p *fakePlatform) destroy() {
	p.destroys++
	time.Sleep(p.destroySlow)
	p.destroyed.Store(true)
}

func TestQueuedEventsDeliverInOrder(t *testing.T) {
	w := &engineWindow{}
	var got []event.Event
	w.SetEventHandler(func(ev event.Event) { got = append(got, ev) })

	w.push(event.Focus{Focused: true})
	w.resized(640, 480)
	w.push(event.Key{Code: 65, Pressed: true})
	w.PollEvents()

	assert.Equal(t, []event.Event{
		event.Focus{Focused: true},
		event.Resized{Width: 640, Height: 480},
		event.Key{Code: 65, Pressed: true},
	}, got)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
	assert.Empty(t, w.queue)
}

func TestDeliveryIncludesEventsQueuedByHandler(t *testing.T) {
	w := &engineWindow{}
	var got []string
	w.SetEventHandler(func(ev event.Event) {
		got = append(got, event.Name(ev))
		if _, ok := ev.(event.Key); ok {
			w.push(event.RedrawRequested{})
		}
	})

	w.push(event.Key{Code: 1})
	w.WaitEventsTimeout(0)
	assert.Equal(t, []string{"key", "redraw_requested"}, got)
}

func TestUnopenedWindow(t *testing.T) {
	w := &engineWindow{}
	w.PollEvents()
	w.WaitEvents()
	w.Wake()
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.ErrorIs(t, w.Close(), ErrNotOpen)
}

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{}
	for _, opt := range []WindowBuilderOption{
		WithTitle("demo"),
		WithWidth(800),
		WithHeight(600),
		WithMinSize(100, 50),
		WithMaxSize(1920, 1080),
		WithResizable(false),
	} {
		opt(w)
	}
	assert.Equal(t, "demo", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 600, w.height)
	assert.Equal(t, 100, w.minWidth)
	assert.Equal(t, 50, w.minHeight)
	assert.Equal(t, 1920, w.maxWidth)
	assert.Equal(t, 1080, w.maxHeight)
	assert.False(t, w.resizable)
}

func TestWakeNeverReachesDestroyedPlatform(t *testing.T) {
	native := &fakePlatform{destroySlow: 5 * time.Millisecond}
	w := &engineWindow{native: native}
	require.True(t, w.IsRunning())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					w.Wake()
				}
			}
		}()
	}

	time.Sleep(time.Millisecond)
	require.NoError(t, w.Close())
	w.Wake()
	close(stop)
	wg.Wait()

	assert.Zero(t, native.lateWakes.Load())
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
}

func TestCloseIsIdempotent(t *testing.T) {
	native := &fakePlatform{}
	w := &engineWindow{native: native}
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, native.destroys)
}
