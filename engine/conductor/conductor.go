// Package conductor drives several independently written programs against one shared state,
// one GPU device and one presentation surface: one command submission and one present per tick.
package conductor

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/Carmen-Shannon/oxy-conductor/engine/timing"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrStateDetached is returned when an operation needing the shared state is called while the
	// state is lent to a program callback, e.g. Cycle called from inside Update.
	ErrStateDetached = errors.New("conductor: shared state is detached")

	// ErrProgramInit wraps the error of a program whose Init failed. The program is not registered.
	ErrProgramInit = errors.New("conductor: program init failed")

	// ErrUnknownProgram is returned by RemoveProgram for an id that is not registered.
	ErrUnknownProgram = errors.New("conductor: unknown program")

	// ErrClosed is returned by NewProgram after Exit.
	ErrClosed = errors.New("conductor: closed")
)

const (
	phaseInit   = "init"
	phaseEvent  = "event"
	phaseUpdate = "update"
	phaseRender = "render"
	phaseExit   = "exit"
)

// ProgramID identifies a registered program.
type ProgramID uuid.UUID

func (id ProgramID) String() string {
	return uuid.UUID(id).String()
}

// InputRouter pre-processes every host event with the detached shared state before the event is
// dispatched to programs.
type InputRouter[S any] func(state *S, ev event.Event)

// ProgramInfo is a read-only snapshot of one registered program.
type ProgramInfo struct {
	ID           ProgramID
	Name         string
	UpdateTiming timing.Timing
	RenderTiming timing.Timing
	Target       string
	Faulted      bool
	Events       uint64
	Updates      uint64
	Renders      uint64
}

// slot pairs a program with the renderer its Init produced.
type slot[S any] struct {
	id       ProgramID
	name     string
	program  program.Program[S]
	renderer program.ProgramRenderer
	faulted  bool
	events   uint64
	updates  uint64
	renders  uint64
}

// conductor is the implementation of the Conductor interface.
type conductor[S any] struct {
	ctx       gpu.Context
	presenter gpu.Presenter

	state    *S
	detached bool

	slots  []*slot[S]
	router InputRouter[S]

	logger          zerolog.Logger
	isolate         bool
	clock           func() time.Time
	skipIdlePresent bool

	exitRequested bool
	closed        bool
	stats         CycleStats
}

// Conductor owns the shared state S and an ordered set of programs, routes host events to them,
// and runs one scheduling pass per tick.
//
// A Conductor is not safe for concurrent use; every method must be called from the event loop
// thread.
type Conductor[S any] interface {
	// NewProgram runs p.Init with the shared state and registers p with the renderer it returns.
	// Programs render in registration order.
	//
	// Parameters:
	//   - name: a human readable name used in logs and ProgramInfo
	//   - p: the program to register
	//
	// Returns:
	//   - ProgramID: the id of the registered program
	//   - error: an error wrapping ErrProgramInit if Init failed or returned no renderer
	NewProgram(name string, p program.Program[S]) (ProgramID, error)

	// RemoveProgram runs OnExit for the program and unregisters it. The program is removed even
	// when OnExit fails.
	//
	// Parameters:
	//   - id: the program to remove
	//
	// Returns:
	//   - error: ErrClosed after Exit, ErrUnknownProgram, ErrStateDetached, or the error returned by OnExit
	RemoveProgram(id ProgramID) error

	// Programs returns a snapshot of every registered program in registration order.
	Programs() []ProgramInfo

	// ProcessInput hands ev to the input router, then to OnEvent of every program in registration
	// order. Timings never gate events. After Exit events are dropped and Exit is reported.
	//
	// Parameters:
	//   - ev: the host event
	//
	// Returns:
	//   - ControlFlow: Exit is set if a program asked to shut down
	ProcessInput(ev event.Event) ControlFlow

	// Cycle runs one scheduling pass: due updates, then due renders encoded into one command
	// buffer, one submit and at most one present.
	//
	// Returns:
	//   - ControlFlow: exit, or the shortest wait until the next due timer
	//   - error: ErrStateDetached on reentry, or a GPU error (gpu.ErrFrameUnavailable on acquire
	//     failure). The state is always reattached before Cycle returns.
	Cycle() (ControlFlow, error)

	// State returns the shared state, or nil while it is lent to a callback.
	State() *S

	// Exit runs OnExit for every program, including quarantined ones. Failures are logged and do
	// not stop the teardown of the remaining programs. Only the first call has any effect.
	Exit()

	// Stats returns what happened during the last Cycle.
	Stats() CycleStats
}

var _ Conductor[struct{}] = &conductor[struct{}]{}

// NewConductor creates a Conductor over the shared state.
//
// Parameters:
//   - ctx: the GPU context lent to program callbacks
//   - presenter: the surface the conductor acquires, submits and presents through
//   - state: the shared state, owned by the conductor between callbacks
//   - options: functional options to configure the conductor
//
// Returns:
//   - Conductor[S]: the new conductor
//   - error: an error if any of ctx, presenter or state is nil
func NewConductor[S any](ctx gpu.Context, presenter gpu.Presenter, state *S, options ...ConductorBuilderOption[S]) (Conductor[S], error) {
	if ctx == nil {
		return nil, errors.New("conductor: nil gpu context")
	}
	if presenter == nil {
		return nil, errors.New("conductor: nil presenter")
	}
	if state == nil {
		return nil, errors.New("conductor: nil state")
	}

	c := &conductor[S]{
		ctx:             ctx,
		presenter:       presenter,
		state:           state,
		logger:          log.Logger.With().Str("component", "conductor").Logger(),
		isolate:         true,
		clock:           time.Now,
		skipIdlePresent: true,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *conductor[S]) State() *S {
	return c.state
}

func (c *conductor[S]) Stats() CycleStats {
	return c.stats
}

func (c *conductor[S]) NewProgram(name string, p program.Program[S]) (ProgramID, error) {
	if p == nil {
		return ProgramID{}, fmt.Errorf("%w %q: nil program", ErrProgramInit, name)
	}
	if c.closed {
		return ProgramID{}, ErrClosed
	}
	state, err := c.detach()
	if err != nil {
		return ProgramID{}, err
	}

	var r program.ProgramRenderer
	err = func() (err error) {
		defer c.reattach(state)
		defer func() {
			if rec := recover(); rec != nil {
				if !c.isolate {
					panic(rec)
				}
				err = fmt.Errorf("panic: %v", rec)
			}
		}()
		r, err = p.Init(state, c.ctx)
		return err
	}()
	if err != nil {
		c.logger.Error().Str("program", name).Str("phase", phaseInit).Err(err).Msg("program not registered")
		return ProgramID{}, fmt.Errorf("%w %q: %w", ErrProgramInit, name, err)
	}
	if r == nil {
		return ProgramID{}, fmt.Errorf("%w %q: no renderer returned", ErrProgramInit, name)
	}

	s := &slot[S]{
		id:       ProgramID(uuid.New()),
		name:     name,
		program:  p,
		renderer: r,
	}
	c.slots = append(c.slots, s)
	c.logger.Debug().
		Str("program", name).
		Str("id", s.id.String()).
		Stringer("update", r.UpdateTiming()).
		Stringer("render", r.RenderTiming()).
		Stringer("target", r.Target()).
		Msg("program registered")
	return s.id, nil
}

func (c *conductor[S]) RemoveProgram(id ProgramID) error {
	if c.closed {
		return ErrClosed
	}
	idx := -1
	for i, s := range c.slots {
		if s.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, id)
	}
	state, err := c.detach()
	if err != nil {
		return err
	}
	s := c.slots[idx]
	func() {
		defer c.reattach(state)
		err = c.exitProgram(s, state)
	}()
	c.slots = append(c.slots[:idx], c.slots[idx+1:]...)
	c.logger.Debug().Str("program", s.name).Msg("program removed")
	return err
}

func (c *conductor[S]) Programs() []ProgramInfo {
	infos := make([]ProgramInfo, 0, len(c.slots))
	for _, s := range c.slots {
		infos = append(infos, ProgramInfo{
			ID:           s.id,
			Name:         s.name,
			UpdateTiming: s.renderer.UpdateTiming(),
			RenderTiming: s.renderer.RenderTiming(),
			Target:       s.renderer.Target().String(),
			Faulted:      s.faulted,
			Events:       s.events,
			Updates:      s.updates,
			Renders:      s.renders,
		})
	}
	return infos
}

func (c *conductor[S]) ProcessInput(ev event.Event) ControlFlow {
	if c.closed {
		return ControlFlow{Exit: true}
	}
	state, err := c.detach()
	if err != nil {
		c.logger.Warn().Str("event", event.Name(ev)).Err(err).Msg("event dropped")
		return ControlFlow{Exit: c.exitRequested}
	}

	func() {
		defer c.reattach(state)
		if c.router != nil {
			c.router(state, ev)
		}
		for _, s := range c.slots {
			if s.faulted {
				continue
			}
			var ret program.Return
			ok := c.guard(s, phaseEvent, func() {
				ret = s.program.OnEvent(state, c.ctx, s.renderer, ev)
			})
			if !ok {
				continue
			}
			s.events++
			c.apply(s, ret)
		}
	}()

	return ControlFlow{Exit: c.exitRequested}
}

func (c *conductor[S]) Cycle() (ControlFlow, error) {
	if c.exitRequested {
		return ControlFlow{Exit: true}, nil
	}
	state, err := c.detach()
	if err != nil {
		return ControlFlow{}, err
	}

	start := c.clock()
	stats := CycleStats{Cycle: c.stats.Cycle + 1}
	w, h := c.ctx.Size()
	frame := &frameScratch{presenter: c.presenter, surfaceless: w <= 0 || h <= 0}
	defer frame.release()

	var deadline timing.Deadline
	err = func() error {
		defer c.reattach(state)
		for _, s := range c.slots {
			if s.faulted {
				continue
			}
			if err := c.runUpdate(s, state, &deadline, &stats); err != nil {
				return err
			}
			if s.faulted {
				continue
			}
			if err := c.runRender(s, state, frame, &deadline, &stats); err != nil {
				return err
			}
		}
		return nil
	}()
	if err != nil {
		c.stats = stats
		return ControlFlow{Exit: c.exitRequested}, err
	}

	if !c.skipIdlePresent && !frame.surfaceless {
		if _, err := frame.surfaceFrame(); err != nil {
			c.stats = stats
			return ControlFlow{Exit: c.exitRequested}, err
		}
	}
	stats.Submits, err = frame.submit()
	if err != nil {
		c.stats = stats
		return ControlFlow{Exit: c.exitRequested}, err
	}
	stats.Presents = frame.present()

	wait, pending := deadline.Wait()
	stats.Wait = wait
	stats.Pending = pending
	stats.Duration = c.clock().Sub(start)
	c.stats = stats

	if c.exitRequested {
		return ControlFlow{Exit: true}, nil
	}
	return ControlFlow{Wait: wait, Pending: pending}, nil
}

// runUpdate checks the update timing of s and runs Update when it is due. The status after the
// reset is folded, so a program that re-arms to Immediate keeps the loop polling.
func (c *conductor[S]) runUpdate(s *slot[S], state *S, deadline *timing.Deadline, stats *CycleStats) error {
	status := s.renderer.CheckUpdate(c.clock())
	if !status.Ready() {
		deadline.Fold(status)
		return nil
	}

	var ret program.Return
	ok := c.guard(s, phaseUpdate, func() {
		ret = s.program.Update(state, c.ctx, s.renderer)
	})
	if !ok {
		stats.Faults++
		return nil
	}
	c.apply(s, ret)
	s.updates++
	stats.Updates++

	now := c.clock()
	s.renderer.ResetUpdate(now)
	deadline.Fold(s.renderer.CheckUpdate(now))
	return nil
}

// runRender checks the render timing of s and, when it is due, encodes the program's pass into
// the cycle's encoder.
func (c *conductor[S]) runRender(s *slot[S], state *S, frame *frameScratch, deadline *timing.Deadline, stats *CycleStats) error {
	status := s.renderer.CheckRender(c.clock())
	if !status.Ready() {
		deadline.Fold(status)
		return nil
	}

	target := s.renderer.Target()
	if !target.Valid() {
		stats.Skipped++
		c.logger.Warn().Str("program", s.name).Stringer("target", target).Msg("render skipped: invalid target")
		return nil
	}
	if target.IsSurface() && frame.surfaceless {
		// Left due and unfolded: the resize that restores the surface wakes the loop.
		stats.Skipped++
		c.logger.Trace().Str("program", s.name).Msg("render skipped: surface has no area")
		return nil
	}

	view, err := frame.view(target)
	if err != nil {
		return fmt.Errorf("program %q: %w", s.name, err)
	}
	enc, err := frame.commandEncoder()
	if err != nil {
		return err
	}

	pass := enc.BeginRenderPass(view, s.renderer.Clear())
	if !c.encodePass(s, state, pass) {
		stats.Faults++
		return nil
	}
	s.renders++
	stats.Renders++

	now := c.clock()
	s.renderer.ResetRender(now)
	deadline.Fold(s.renderer.CheckRender(now))
	return nil
}

// encodePass runs Render against a begun pass and always ends the pass, even if Render panics.
func (c *conductor[S]) encodePass(s *slot[S], state *S, pass gpu.RenderPassEncoder) bool {
	defer pass.End()
	return c.guard(s, phaseRender, func() {
		s.program.Render(state, c.ctx, s.renderer, pass)
	})
}

func (c *conductor[S]) Exit() {
	if c.closed {
		return
	}
	state, err := c.detach()
	if err != nil {
		c.logger.Error().Err(err).Msg("exit called from inside a program callback")
		return
	}
	defer c.reattach(state)

	c.closed = true
	c.exitRequested = true
	for _, s := range c.slots {
		if err := c.exitProgram(s, state); err != nil {
			c.logger.Error().Str("program", s.name).Str("phase", phaseExit).Err(err).Msg("program exit failed")
		}
	}
}

// exitProgram runs OnExit for s. Panics are always recovered here so teardown reaches every
// program.
func (c *conductor[S]) exitProgram(s *slot[S], state *S) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return s.program.OnExit(state, c.ctx)
}

// apply handles a callback's Return on behalf of s.
func (c *conductor[S]) apply(s *slot[S], ret program.Return) {
	switch ret.Kind() {
	case program.ReturnExit:
		if !c.exitRequested {
			c.logger.Info().Str("program", s.name).Msg("exit requested")
		}
		c.exitRequested = true
	case program.ReturnSet:
		ret.Apply(s.renderer)
	}
}

// guard runs fn on behalf of s. With fault isolation a panic is recovered, logged, and s is
// quarantined; without it the panic propagates. Returns false if fn panicked.
func (c *conductor[S]) guard(s *slot[S], phase string, fn func()) (ok bool) {
	if !c.isolate {
		fn()
		return true
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.faulted = true
			ok = false
			c.logger.Error().
				Str("program", s.name).
				Str("phase", phase).
				Interface("panic", rec).
				Msg("program panicked, quarantined")
		}
	}()
	fn()
	return true
}

// detach lends the shared state out. The conductor's own slot is empty until reattach.
func (c *conductor[S]) detach() (*S, error) {
	if c.detached {
		return nil, ErrStateDetached
	}
	state := c.state
	c.state = nil
	c.detached = true
	return state, nil
}

func (c *conductor[S]) reattach(state *S) {
	c.state = state
	c.detached = false
}
