package program

import (
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
)

// ProgramRendererBuilderOption configures a ProgramRenderer. The same options are used at
// construction time (NewProgramRenderer) and as deferred settings in a Set return value.
type ProgramRendererBuilderOption func(r *programRenderer)

// WithTarget sets the render target.
//
// Parameters:
//   - target: the surface or an offscreen texture owned by the program
//
// Returns:
//   - ProgramRendererBuilderOption: option function to apply
func WithTarget(target gpu.RenderTarget) ProgramRendererBuilderOption {
	return func(r *programRenderer) {
		r.target = target
	}
}

// WithClear sets the load operation used when the program's pass begins.
//
// Parameters:
//   - op: gpu.Clear(color) or gpu.Load()
//
// Returns:
//   - ProgramRendererBuilderOption: option function to apply
func WithClear(op gpu.LoadOp) ProgramRendererBuilderOption {
	return func(r *programRenderer) {
		r.clear = op
	}
}

// WithUpdateRate sets the update cadence.
//
// Parameters:
//   - t: the update timing
//
// Returns:
//   - ProgramRendererBuilderOption: option function to apply
func WithUpdateRate(t timing.Timing) ProgramRendererBuilderOption {
	return func(r *programRenderer) {
		r.updateTiming = t
	}
}

// WithRenderRate sets the render cadence.
//
// Parameters:
//   - t: the render timing
//
// Returns:
//   - ProgramRendererBuilderOption: option function to apply
func WithRenderRate(t timing.Timing) ProgramRendererBuilderOption {
	return func(r *programRenderer) {
		r.renderTiming = t
	}
}
