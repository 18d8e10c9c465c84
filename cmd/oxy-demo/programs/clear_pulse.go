package programs

import (
	"math"

	"github.com/Carmen-Shannon/oxy-conductor/common"
	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
	"github.com/cogentcore/webgpu/wgpu"
)

// ClearPulse animates the shared background colour. It never renders; Triangle draws the colour
// it publishes. It also owns the demo's exit keys.
type ClearPulse struct {
	program.Base[DemoState]

	options []program.ProgramRendererBuilderOption
	rate    timing.Timing
	phase   float64
}

var _ program.Program[DemoState] = &ClearPulse{}

// NewClearPulse creates the program. Options are applied over its defaults: update at 10Hz,
// render disabled.
func NewClearPulse(options ...program.ProgramRendererBuilderOption) *ClearPulse {
	return &ClearPulse{options: options}
}

func (p *ClearPulse) Init(s *DemoState, _ gpu.Context) (program.ProgramRenderer, error) {
	r := program.NewProgramRenderer(append([]program.ProgramRendererBuilderOption{
		program.WithUpdateRate(timing.MustFixedRate(10)),
		program.WithRenderRate(timing.Disabled()),
	}, p.options...)...)
	p.rate = r.UpdateTiming()
	s.SetBackground(pulseColor(p.phase))
	return r, nil
}

func (p *ClearPulse) OnEvent(s *DemoState, _ gpu.Context, _ program.ProgramRenderer, ev event.Event) program.Return {
	switch {
	case pressed(ev, common.KeyEsc):
		return program.Exit()
	case pressed(ev, common.KeySpace):
		if s.Paused {
			return program.Set(program.WithUpdateRate(timing.Disabled()))
		}
		return program.Set(program.WithUpdateRate(p.rate))
	}

	if _, ok := ev.(event.CloseRequested); ok {
		return program.Exit()
	}
	if payload, ok := userPayload(ev); ok && payload == UserInterrupt {
		return program.Exit()
	}
	return program.Continue()
}

func (p *ClearPulse) Update(s *DemoState, _ gpu.Context, _ program.ProgramRenderer) program.Return {
	p.phase = math.Mod(p.phase+0.02, 1)
	s.SetBackground(pulseColor(p.phase))
	return program.Continue()
}

// pulseColor maps phase in [0,1) to a dark, slowly cycling colour.
func pulseColor(phase float64) wgpu.Color {
	channel := func(offset float64) float64 {
		return 0.05 + 0.2*(0.5+0.5*math.Sin(2*math.Pi*(phase+offset)))
	}
	return wgpu.Color{R: channel(0), G: channel(1.0 / 3), B: channel(2.0 / 3), A: 1}
}
