package window

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// nativeWindow is the GLFW side of an engineWindow.
type nativeWindow struct {
	handle *glfw.Window
	open   bool
}

var _ platform = &nativeWindow{}

// openNative initialises GLFW, creates a window without a client API for w and routes its
// callbacks into w's event queue. The framebuffer size read back after creation replaces the
// requested size, since the two differ on high-DPI displays.
func openNative(w *engineWindow) (*nativeWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if w.resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window %q: %w", w.title, err)
	}
	handle.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	n := &nativeWindow{handle: handle, open: true}
	n.route(w)
	w.width, w.height = handle.GetFramebufferSize()
	return n, nil
}

// route installs the GLFW callbacks. Each callback only queues events; delivery happens when the
// poll or wait returns.
func (n *nativeWindow) route(w *engineWindow) {
	h := n.handle

	h.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		ev := event.Key{Code: uint32(key), Pressed: action != glfw.Release, Repeat: action == glfw.Repeat}
		w.push(ev)
		// Escape doubles as the close button.
		if key == glfw.KeyEscape && action == glfw.Press {
			h.SetShouldClose(true)
			w.push(event.CloseRequested{})
		}
	})
	h.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		x, y := h.GetCursorPos()
		w.push(event.MouseClick{Button: mouseButton(button), Pressed: action == glfw.Press, X: int32(x), Y: int32(y)})
	})
	h.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.push(event.MouseMove{X: int32(x), Y: int32(y)})
	})
	h.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		w.push(event.Scroll{DeltaX: float32(dx), DeltaY: float32(dy)})
	})
	// Framebuffer size, not window size: the surface is configured in pixels.
	h.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})
	h.SetRefreshCallback(func(*glfw.Window) { w.push(event.RedrawRequested{}) })
	h.SetFocusCallback(func(_ *glfw.Window, focused bool) { w.push(event.Focus{Focused: focused}) })
	h.SetCloseCallback(func(*glfw.Window) { w.push(event.CloseRequested{}) })
}

func mouseButton(button glfw.MouseButton) event.MouseButton {
	switch button {
	case glfw.MouseButtonLeft:
		return event.MouseButtonLeft
	case glfw.MouseButtonRight:
		return event.MouseButtonRight
	case glfw.MouseButtonMiddle:
		return event.MouseButtonMiddle
	}
	return event.MouseButtonOther
}

// surfaceDescriptor asks the wgpuglfw bridge for the descriptor matching the running platform
// (HWND, Xlib, Wayland or a Metal layer).
func (n *nativeWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(n.handle)
}

func (n *nativeWindow) alive() bool {
	return n.open && !n.handle.ShouldClose()
}

// destroy tears down the window and GLFW itself. Later calls do nothing.
func (n *nativeWindow) destroy() {
	if !n.open {
		return
	}
	n.open = false
	n.handle.Destroy()
	glfw.Terminate()
}

func (n *nativeWindow) poll() {
	glfw.PollEvents()
}

// wait blocks for platform events; a zero timeout waits indefinitely.
func (n *nativeWindow) wait(timeout time.Duration) {
	if timeout <= 0 {
		glfw.WaitEvents()
		return
	}
	glfw.WaitEventsTimeout(timeout.Seconds())
}

func (n *nativeWindow) wake() {
	glfw.PostEmptyEvent()
}
