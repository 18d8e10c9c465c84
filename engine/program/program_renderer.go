package program

import (
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
	"github.com/cogentcore/webgpu/wgpu"
)

// programRenderer is the implementation of the ProgramRenderer interface.
type programRenderer struct {
	target       gpu.RenderTarget
	clear        gpu.LoadOp
	updateTiming timing.Timing
	renderTiming timing.Timing
}

// ProgramRenderer is the per-program render descriptor: where the program draws, how its pass
// starts, and the two cadences gating its Update and Render calls.
//
// A ProgramRenderer belongs to exactly one Program. The setters are meant to be called only from
// that program's own OnEvent, Update and Render callbacks, and take effect at the next check.
// The conductor only checks and resets the timings.
type ProgramRenderer interface {
	// Target returns the render target the program's pass is begun against.
	Target() gpu.RenderTarget

	// SetTarget swaps between the shared surface and an offscreen texture the program owns.
	//
	// Parameters:
	//   - target: the new render target
	SetTarget(target gpu.RenderTarget)

	// Clear returns the load operation used when the program's pass begins.
	Clear() gpu.LoadOp

	// SetClear replaces the load operation used when the program's pass begins.
	//
	// Parameters:
	//   - op: the new load operation
	SetClear(op gpu.LoadOp)

	// UpdateTiming returns a copy of the cadence gating Update.
	UpdateTiming() timing.Timing

	// SetUpdateRate replaces the update cadence outright. The previous deadline is forgotten.
	//
	// Parameters:
	//   - t: the new update timing
	SetUpdateRate(t timing.Timing)

	// RenderTiming returns a copy of the cadence gating Render.
	RenderTiming() timing.Timing

	// SetRenderRate replaces the render cadence outright. The previous deadline is forgotten.
	//
	// Parameters:
	//   - t: the new render timing
	SetRenderRate(t timing.Timing)

	// CheckUpdate reports whether Update is due at now. Does not modify the timing.
	CheckUpdate(now time.Time) timing.Status

	// ResetUpdate re-arms the update timing after Update ran at now.
	ResetUpdate(now time.Time)

	// CheckRender reports whether Render is due at now. Does not modify the timing.
	CheckRender(now time.Time) timing.Status

	// ResetRender re-arms the render timing after Render ran at now.
	ResetRender(now time.Time)
}

var _ ProgramRenderer = &programRenderer{}

// NewProgramRenderer creates the render descriptor a program returns from Init.
// Defaults: surface target, clear to opaque black, Immediate update and render timings.
//
// Parameters:
//   - options: functional options to configure the descriptor
//
// Returns:
//   - ProgramRenderer: the configured descriptor
func NewProgramRenderer(options ...ProgramRendererBuilderOption) ProgramRenderer {
	r := &programRenderer{
		target:       gpu.Surface(),
		clear:        gpu.Clear(wgpu.Color{R: 0, G: 0, B: 0, A: 1}),
		updateTiming: timing.Immediate(),
		renderTiming: timing.Immediate(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *programRenderer) Target() gpu.RenderTarget {
	return r.target
}

func (r *programRenderer) SetTarget(target gpu.RenderTarget) {
	r.target = target
}

func (r *programRenderer) Clear() gpu.LoadOp {
	return r.clear
}

func (r *programRenderer) SetClear(op gpu.LoadOp) {
	r.clear = op
}

func (r *programRenderer) UpdateTiming() timing.Timing {
	return r.updateTiming
}

func (r *programRenderer) SetUpdateRate(t timing.Timing) {
	r.updateTiming = t
}

func (r *programRenderer) RenderTiming() timing.Timing {
	return r.renderTiming
}

func (r *programRenderer) SetRenderRate(t timing.Timing) {
	r.renderTiming = t
}

func (r *programRenderer) CheckUpdate(now time.Time) timing.Status {
	return r.updateTiming.CheckAt(now)
}

func (r *programRenderer) ResetUpdate(now time.Time) {
	r.updateTiming.ResetAt(now)
}

func (r *programRenderer) CheckRender(now time.Time) timing.Status {
	return r.renderTiming.CheckAt(now)
}

func (r *programRenderer) ResetRender(now time.Time) {
	r.renderTiming.ResetAt(now)
}
