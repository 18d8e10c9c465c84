// Package programs holds the demo programs run by oxy-demo and the shared state they read.
package programs

import (
	"github.com/Carmen-Shannon/oxy-conductor/common"
	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rs/zerolog/log"
)

// User event payloads posted through the engine proxy by the demo command.
const (
	UserInterrupt = "interrupt"
	UserRedraw    = "redraw"
)

// DemoState is shared by every demo program.
type DemoState struct {
	Width  int
	Height int
	// Frame counts loop iterations.
	Frame   uint64
	Paused  bool
	Visible bool
	Keys    map[uint32]bool

	Background        wgpu.Color
	BackgroundVersion uint64
}

// NewDemoState returns the state for a window of the given size.
func NewDemoState(width, height int) *DemoState {
	return &DemoState{
		Width:      width,
		Height:     height,
		Visible:    true,
		Keys:       make(map[uint32]bool),
		Background: wgpu.Color{A: 1},
	}
}

// SetBackground replaces the background colour and bumps its version.
func (s *DemoState) SetBackground(c wgpu.Color) {
	s.Background = c
	s.BackgroundVersion++
}

// Route records window and keyboard state before programs see an event. It is installed as the
// conductor's input router.
func Route(s *DemoState, ev event.Event) {
	switch e := ev.(type) {
	case event.Resized:
		s.Width, s.Height = e.Width, e.Height
	case event.Focus:
		if !e.Focused {
			clear(s.Keys)
		}
	case event.Key:
		if s.Keys == nil {
			s.Keys = make(map[uint32]bool)
		}
		s.Keys[e.Code] = e.Pressed
		if !e.Pressed || e.Repeat {
			return
		}
		switch e.Code {
		case common.KeySpace:
			s.Paused = !s.Paused
		case common.KeyT:
			s.Visible = !s.Visible
		default:
			return
		}
		log.Debug().Str("key", common.KeyName(e.Code)).Bool("paused", s.Paused).Bool("visible", s.Visible).Msg("toggle")
	case event.Cleared:
		s.Frame++
	}
}

// pressed reports whether ev is the first press of code.
func pressed(ev event.Event, code uint32) bool {
	k, ok := ev.(event.Key)
	return ok && k.Pressed && !k.Repeat && k.Code == code
}

// userPayload returns the payload of a demo user event.
func userPayload(ev event.Event) (string, bool) {
	u, ok := ev.(event.User[string])
	return u.Payload, ok
}
