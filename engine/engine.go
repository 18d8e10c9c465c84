package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/conductor"
	"github.com/Carmen-Shannon/oxy-conductor/engine/diag"
	"github.com/Carmen-Shannon/oxy-conductor/engine/event"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/profiler"
	"github.com/Carmen-Shannon/oxy-conductor/engine/program"
	"github.com/Carmen-Shannon/oxy-conductor/engine/window"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// engine owns the window, the GPU backend and the conductor, and runs them on one thread.
type engine[S any, U any] struct {
	state *S

	window        window.Window
	windowOptions []window.WindowBuilderOption

	backend        gpu.Backend
	backendOptions []gpu.BackendBuilderOption

	conductor        conductor.Conductor[S]
	conductorOptions []conductor.ConductorBuilderOption[S]
	router           conductor.InputRouter[S]

	proxy         *event.Proxy[U]
	proxyCapacity int

	profiler         *profiler.Profiler
	profilerOptions  []profiler.ProfilerBuilderOption
	profilingEnabled bool

	hub      *diag.Hub
	diagAddr string

	logger  zerolog.Logger
	maxWait time.Duration

	quit     atomic.Bool
	exit     bool
	fatalErr error
}

// Engine wires a window, a GPU backend and a conductor together. It runs the single-threaded host loop: wait for window events, hand them to the conductor,
// run one scheduling pass, and sleep until the next program is due.
type Engine[S any, U any] interface {
	// Window returns the window events are read from.
	Window() window.Window

	// Backend returns the GPU backend shared by every program.
	//
	// Returns:
	//   - gpu.Backend: the backend instance
	Backend() gpu.Backend

	// Conductor returns the conductor scheduling the programs.
	//
	// Returns:
	//   - conductor.Conductor[S]: the conductor instance
	Conductor() conductor.Conductor[S]

	// Proxy returns the proxy other goroutines use to post user events into the loop.
	//
	// Returns:
	//   - *event.Proxy[U]: the proxy instance
	Proxy() *event.Proxy[U]

	// AddProgram registers a program with the conductor. Programs render in the order they are added.
	//
	// Parameters:
	//   - name: a human readable name for logs
	//   - p: the program to register
	//
	// Returns:
	//   - conductor.ProgramID: the id of the registered program
	//   - error: an error wrapping conductor.ErrProgramInit if the program failed to initialize
	AddProgram(name string, p program.Program[S]) (conductor.ProgramID, error)

	// EnableProfiler starts feeding conductor stats to the profiler.
	EnableProfiler()

	// DisableProfiler stops the feed.
	DisableProfiler()

	// Run runs the host loop until a program asks to exit, the window closes, Quit is called, or a
	// scheduling pass fails. Programs are torn down and the window closed before Run returns.
	//
	// Returns:
	//   - error: the fatal error that stopped the loop, or nil for a normal exit
	Run() error

	// Quit asks the loop to stop after the current iteration. Safe to call from any goroutine and
	// more than once.
	Quit()
}

// NewEngine creates the window (unless WithWindow supplied one), the GPU backend (unless
// WithBackend supplied one) and the conductor over state.
//
// Parameters:
//   - state: the shared state handed to every program
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine[S, U]: the newly created engine
//   - error: error if the window, backend or conductor could not be created
func NewEngine[S any, U any](state *S, options ...EngineBuilderOption[S, U]) (Engine[S, U], error) {
	e := &engine[S, U]{
		state:         state,
		proxyCapacity: 64,
		maxWait:       time.Second,
		logger:        log.Logger.With().Str("component", "engine").Logger(),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		w, err := window.NewWindow(e.windowOptions...)
		if err != nil {
			return nil, fmt.Errorf("create window: %w", err)
		}
		e.window = w
	}

	if e.backend == nil {
		opts := append([]gpu.BackendBuilderOption{gpu.WithLogger(e.logger)}, e.backendOptions...)
		b, err := gpu.NewBackend(e.window.SurfaceDescriptor(), e.window.Width(), e.window.Height(), opts...)
		if err != nil {
			_ = e.window.Close()
			return nil, fmt.Errorf("create gpu backend: %w", err)
		}
		e.backend = b
	}

	copts := []conductor.ConductorBuilderOption[S]{conductor.WithLogger[S](e.logger)}
	if e.router != nil {
		copts = append(copts, conductor.WithInputRouter(e.router))
	}
	c, err := conductor.NewConductor(e.backend, e.backend, state, append(copts, e.conductorOptions...)...)
	if err != nil {
		e.backend.Release()
		_ = e.window.Close()
		return nil, err
	}
	e.conductor = c

	e.proxy = event.NewProxy[U](e.proxyCapacity, e.window.Wake)

	if e.diagAddr != "" {
		e.hub = diag.NewHub(diag.WithLogger(e.logger))
	}
	popts := []profiler.ProfilerBuilderOption{
		profiler.WithLogger(e.logger),
		profiler.WithSnapshotHandler(e.publishSnapshot),
	}
	e.profiler = profiler.NewProfiler(append(popts, e.profilerOptions...)...)

	e.window.SetEventHandler(e.handleEvent)
	return e, nil
}

func (e *engine[S, U]) Window() window.Window {
	return e.window
}

func (e *engine[S, U]) Backend() gpu.Backend {
	return e.backend
}

func (e *engine[S, U]) Conductor() conductor.Conductor[S] {
	return e.conductor
}

func (e *engine[S, U]) Proxy() *event.Proxy[U] {
	return e.proxy
}

func (e *engine[S, U]) AddProgram(name string, p program.Program[S]) (conductor.ProgramID, error) {
	return e.conductor.NewProgram(name, p)
}

func (e *engine[S, U]) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine[S, U]) DisableProfiler() {
	e.profilingEnabled = false
}

// Quit signals the loop to stop and wakes it if it is blocked waiting for events.
func (e *engine[S, U]) Quit() {
	if e.quit.CompareAndSwap(false, true) {
		e.window.Wake()
	}
}

func (e *engine[S, U]) Run() error {
	defer e.shutdown()

	if e.hub != nil {
		if _, err := e.hub.ListenAndServe(e.diagAddr); err != nil {
			e.logger.Warn().Err(err).Str("addr", e.diagAddr).Msg("diagnostics disabled")
			e.hub = nil
		}
	}

	// The first iteration polls so every program gets its initial update and render.
	flow := conductor.ControlFlow{Pending: true}
	for {
		if e.quit.Load() || !e.window.IsRunning() {
			return nil
		}

		e.wait(flow)
		if e.fatalErr != nil {
			return e.fatalErr
		}
		if !e.window.IsRunning() {
			return nil
		}
		e.proxy.Drain(e.dispatch)
		e.dispatch(event.Cleared{})
		if e.exit || e.quit.Load() {
			return nil
		}

		next, err := e.conductor.Cycle()
		if err != nil {
			if errors.Is(err, gpu.ErrFrameUnavailable) {
				e.logger.Error().Err(err).Msg("surface lost")
			}
			return fmt.Errorf("cycle: %w", err)
		}
		e.tickProfiler()
		if next.Exit {
			return nil
		}
		flow = next
	}
}

// wait blocks on the window according to the last control flow, capped at maxWait.
func (e *engine[S, U]) wait(flow conductor.ControlFlow) {
	switch {
	case flow.Exit:
		e.window.PollEvents()
	case !flow.Pending:
		if e.maxWait > 0 {
			e.window.WaitEventsTimeout(e.maxWait)
		} else {
			e.window.WaitEvents()
		}
	case flow.Wait <= 0:
		e.window.PollEvents()
	default:
		d := flow.Wait
		if e.maxWait > 0 {
			d = min(d, e.maxWait)
		}
		e.window.WaitEventsTimeout(d)
	}
}

// handleEvent receives every window event. The surface is reconfigured before programs see a
// resize so they can allocate matching offscreen targets.
func (e *engine[S, U]) handleEvent(ev event.Event) {
	if r, ok := ev.(event.Resized); ok {
		if err := e.backend.Resize(r.Width, r.Height); err != nil && e.fatalErr == nil {
			e.fatalErr = fmt.Errorf("resize surface: %w", err)
			return
		}
	}
	e.dispatch(ev)
}

func (e *engine[S, U]) dispatch(ev event.Event) {
	if e.conductor.ProcessInput(ev).Exit {
		e.exit = true
	}
}

func (e *engine[S, U]) tickProfiler() {
	if !e.profilingEnabled || e.profiler == nil {
		return
	}
	st := e.conductor.Stats()
	e.profiler.Tick(profiler.Sample{
		Updates:  st.Updates,
		Renders:  st.Renders,
		Submits:  st.Submits,
		Presents: st.Presents,
		Faults:   st.Faults,
		Busy:     st.Duration,
	})
}

func (e *engine[S, U]) publishSnapshot(s profiler.Snapshot) {
	if e.hub == nil {
		return
	}
	e.hub.Publish("profile", s)
	e.hub.Publish("programs", programViews(e.conductor.Programs()))
}

// shutdown tears programs down before the device they allocated from goes away.
func (e *engine[S, U]) shutdown() {
	e.conductor.Exit()
	e.proxy.Close()
	if e.hub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := e.hub.Close(ctx); err != nil {
			e.logger.Warn().Err(err).Msg("diagnostics shutdown")
		}
		cancel()
	}
	e.backend.Release()
	if err := e.window.Close(); err != nil {
		e.logger.Warn().Err(err).Msg("window close")
	}
}

// programView is the JSON shape of a conductor.ProgramInfo.
type programView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Update  string `json:"update"`
	Render  string `json:"render"`
	Target  string `json:"target"`
	Faulted bool   `json:"faulted"`
	Events  uint64 `json:"events"`
	Updates uint64 `json:"updates"`
	Renders uint64 `json:"renders"`
}

func programViews(infos []conductor.ProgramInfo) []programView {
	views := make([]programView, 0, len(infos))
	for _, info := range infos {
		views = append(views, programView{
			ID:      info.ID.String(),
			Name:    info.Name,
			Update:  info.UpdateTiming.Text(),
			Render:  info.RenderTiming.Text(),
			Target:  info.Target,
			Faulted: info.Faulted,
			Events:  info.Events,
			Updates: info.Updates,
			Renders: info.Renders,
		})
	}
	return views
}
