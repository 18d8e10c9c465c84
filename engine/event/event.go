// Package event defines the closed set of host events the conductor fans out to programs.
package event

import "fmt"

// Event is a host event. The set of implementations is closed: only the types in this package
// satisfy it.
type Event interface {
	isEvent()
}

// Resized is delivered when the framebuffer size changes. Width and height are in pixels and
// are zero while the window is minimized.
type Resized struct {
	Width  int
	Height int
}

// CloseRequested is delivered when the user asks to close the window.
type CloseRequested struct{}

// Key is delivered for key presses, repeats and releases. Code is a GLFW key code
// (see common.Key* constants).
type Key struct {
	Code    uint32
	Pressed bool
	Repeat  bool
}

// MouseButton identifies a mouse button.
type MouseButton int

// Mouse buttons reported by MouseClick. Buttons beyond the first three map to MouseButtonOther.
const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonOther
)

// MouseMove is delivered when the cursor moves within the window.
type MouseMove struct {
	X int32
	Y int32
}

// MouseClick is delivered when a mouse button is pressed or released.
type MouseClick struct {
	Button  MouseButton
	Pressed bool
	X       int32
	Y       int32
}

// Scroll is delivered for scroll-wheel and trackpad scrolling.
type Scroll struct {
	DeltaX float32
	DeltaY float32
}

// Focus is delivered when the window gains or loses input focus.
type Focus struct {
	Focused bool
}

// RedrawRequested is delivered when the platform asks for the window contents to be redrawn.
type RedrawRequested struct{}

// Cleared is delivered once per loop iteration after all pending events have been dispatched,
// right before the conductor's scheduling pass.
type Cleared struct{}

// User carries an application-defined payload posted through a Proxy.
type User[U any] struct {
	Payload U
}

func (Resized) isEvent()         {}
func (CloseRequested) isEvent()  {}
func (Key) isEvent()             {}
func (MouseMove) isEvent()       {}
func (MouseClick) isEvent()      {}
func (Scroll) isEvent()          {}
func (Focus) isEvent()           {}
func (RedrawRequested) isEvent() {}
func (Cleared) isEvent()         {}
func (User[U]) isEvent()         {}

// Name returns a short, stable name for ev suitable for log fields.
func Name(ev Event) string {
	switch ev.(type) {
	case Resized:
		return "resized"
	case CloseRequested:
		return "close_requested"
	case Key:
		return "key"
	case MouseMove:
		return "mouse_move"
	case MouseClick:
		return "mouse_click"
	case Scroll:
		return "scroll"
	case Focus:
		return "focus"
	case RedrawRequested:
		return "redraw_requested"
	case Cleared:
		return "cleared"
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("user(%T)", ev)
	}
}
