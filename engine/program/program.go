// Package program defines the contract a rendering program fulfils to be driven by a conductor,
// along with the per-program render descriptor and callback results.
package program

import (
	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
)

// Program is an independently written unit of update and draw logic sharing the state S and the
// GPU with every other program registered on the same conductor.
//
// The state pointer handed to each callback is only valid for the duration of that call. All
// callbacks run on the event loop thread.
type Program[S any] interface {
	// Init runs once at registration. It builds the program's GPU resources and returns the
	// render descriptor the conductor will drive. A non-nil error rejects the registration.
	//
	// Parameters:
	//   - state: the shared state
	//   - ctx: read access to the GPU device, queue and surface properties
	//
	// Returns:
	//   - ProgramRenderer: the program's render descriptor
	//   - error: an error if initialization failed
	Init(state *S, ctx gpu.Context) (ProgramRenderer, error)

	// OnEvent is called for every host event, in registration order, regardless of timings.
	OnEvent(state *S, ctx gpu.Context, r ProgramRenderer, ev event.Event) Return

	// Update is called when the update timing is due.
	Update(state *S, ctx gpu.Context, r ProgramRenderer) Return

	// Render records draw commands into pass when the render timing is due. The pass has already
	// been begun against the program's target with its clear policy; the conductor ends it.
	Render(state *S, ctx gpu.Context, r ProgramRenderer, pass gpu.RenderPass)

	// OnExit runs once during shutdown so the program can release what it owns.
	OnExit(state *S, ctx gpu.Context) error
}

// Base is an embeddable no-op implementation of every Program callback except Init.
type Base[S any] struct{}

func (Base[S]) OnEvent(*S, gpu.Context, ProgramRenderer, event.Event) Return {
	return Continue()
}

func (Base[S]) Update(*S, gpu.Context, ProgramRenderer) Return {
	return Continue()
}

func (Base[S]) Render(*S, gpu.Context, ProgramRenderer, gpu.RenderPass) {}

func (Base[S]) OnExit(*S, gpu.Context) error {
	return nil
}
