// Package window opens the desktop window the conductor draws into and turns its input into
// event.Event values.
package window

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotOpen is returned by Close when the window was never opened.
var ErrNotOpen = errors.New("window: not open")

// Window is the platform window. Everything except Wake belongs to the thread that created it.
type Window interface {
	// SetEventHandler installs the receiver for translated events. Callbacks fired inside a poll or
	// wait are queued and handed over in arrival order after that call returns.
	//
	// Parameters:
	//   - handler: the receiver; nil discards events
	SetEventHandler(handler func(ev event.Event))

	// PollEvents handles whatever platform events are pending and returns at once.
	PollEvents()

	// WaitEvents sleeps until the platform reports an event or Wake is called.
	WaitEvents()

	// WaitEventsTimeout is WaitEvents with an upper bound.
	//
	// Parameters:
	//   - timeout: the bound; zero or less polls instead
	WaitEventsTimeout(timeout time.Duration)

	// Wake interrupts a sleeping WaitEvents or WaitEventsTimeout from any goroutine.
	Wake()

	// SurfaceDescriptor describes the native handle a WebGPU surface is created from.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, nil when the window is not open
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports false once the window was closed or the user asked it to close.
	IsRunning() bool

	// Close destroys the window. Closing twice is a no-op.
	//
	// Returns:
	//   - error: ErrNotOpen if the window never opened
	Close() error

	// Width is the framebuffer width in pixels.
	Width() int

	// Height is the framebuffer height in pixels.
	Height() int
}

// platform is the native half of a window. Only wake may be called off the window thread.
type platform interface {
	poll()
	wait(timeout time.Duration)
	wake()
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	alive() bool
	destroy()
}

type engineWindow struct {
	title     string
	width     int
	height    int
	resizable bool

	// Resize limits, in screen coordinates.
	minWidth, minHeight int
	maxWidth, maxHeight int

	native platform
	// mu orders Wake against Close: the native side must not be woken once it is destroyed.
	mu     sync.RWMutex
	closed bool

	queue   []event.Event
	handler func(ev event.Event)
}

var _ Window = &engineWindow{}

// NewWindow opens a window configured by options, applied in order over the defaults: a resizable
// 1280x720 window titled "oxy-conductor".
//
// Parameters:
//   - options: window settings
//
// Returns:
//   - Window: the open window
//   - error: the platform error when the window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-conductor",
		width:     1280,
		height:    720,
		resizable: true,
		minWidth:  320,
		minHeight: 200,
		maxWidth:  3840,
		maxHeight: 2160,
	}
	for _, opt := range options {
		opt(w)
	}

	native, err := openNative(w)
	if err != nil {
		return nil, err
	}
	w.native = native
	return w, nil
}

func (w *engineWindow) SetEventHandler(handler func(ev event.Event)) {
	w.handler = handler
}

func (w *engineWindow) PollEvents() {
	if w.native != nil {
		w.native.poll()
	}
	w.deliver()
}

func (w *engineWindow) WaitEvents() {
	if w.native != nil {
		w.native.wait(0)
	}
	w.deliver()
}

func (w *engineWindow) WaitEventsTimeout(timeout time.Duration) {
	if timeout <= 0 {
		w.PollEvents()
		return
	}
	if w.native != nil {
		w.native.wait(timeout)
	}
	w.deliver()
}

func (w *engineWindow) Wake() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.native == nil || w.closed {
		return
	}
	w.native.wake()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.native == nil || w.isClosed() {
		return nil
	}
	return w.native.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.native != nil && !w.isClosed() && w.native.alive()
}

func (w *engineWindow) Close() error {
	if w.native == nil {
		return ErrNotOpen
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.native.destroy()
	return nil
}

func (w *engineWindow) isClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}

func (w *engineWindow) Width() int { return w.width }

func (w *engineWindow) Height() int { return w.height }

func (w *engineWindow) push(ev event.Event) {
	w.queue = append(w.queue, ev)
}

func (w *engineWindow) resized(width, height int) {
	w.width, w.height = width, height
	w.push(event.Resized{Width: width, Height: height})
}

// deliver empties the queue into the handler. Anything the handler queues while running is
// delivered in the same pass.
func (w *engineWindow) deliver() {
	for i := 0; i < len(w.queue); i++ {
		if w.handler != nil {
			w.handler(w.queue[i])
		}
	}
	clear(w.queue)
	w.queue = w.queue[:0]
}
