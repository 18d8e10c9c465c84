package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-conductor/engine/conductor"
	"github.com/Carmen-Shannon/oxy-conductor/engine/gpu"
	"github.com/Carmen-Shannon/oxy-conductor/engine/profiler"
	"github.com/Carmen-Shannon/oxy-conductor/engine/window"
	"github.com/rs/zerolog"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption[S any, U any] func(*engine[S, U])

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithProfiling[S any, U any](enabled bool) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerOptions configures the profiler created by the engine.
//
// Parameters:
//   - options: profiler options such as profiler.WithInterval
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithProfilerOptions[S any, U any](options ...profiler.ProfilerBuilderOption) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.profilerOptions = append(e.profilerOptions, options...)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithWindow[S any, U any](w window.Window) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.window = w
	}
}

// WithWindowOptions configures the window the engine creates. Ignored when WithWindow is used.
//
// Parameters:
//   - options: window options such as window.WithTitle
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithWindowOptions[S any, U any](options ...window.WindowBuilderOption) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithBackend sets a pre-built GPU backend rather than creating one for the window's surface.
//
// Parameters:
//   - b: the backend to use
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithBackend[S any, U any](b gpu.Backend) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.backend = b
	}
}

// WithBackendOptions configures the GPU backend the engine creates. Ignored when WithBackend is used.
//
// Parameters:
//   - options: backend options such as gpu.WithPresentMode
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithBackendOptions[S any, U any](options ...gpu.BackendBuilderOption) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.backendOptions = append(e.backendOptions, options...)
	}
}

// WithDiagnostics streams profiler snapshots and the program list over a websocket served at addr.
// Diagnostics are only published while profiling is enabled.
//
// Parameters:
//   - addr: the listen address, e.g. ":7070" (empty disables)
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithDiagnostics[S any, U any](addr string) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.diagAddr = addr
	}
}

// WithLogger sets the logger shared by the engine, backend, conductor and profiler.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithLogger[S any, U any](logger zerolog.Logger) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.logger = logger
	}
}

// WithInputRouter installs the conductor's input router.
//
// Parameters:
//   - router: function seeing every event with the shared state before programs do
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithInputRouter[S any, U any](router conductor.InputRouter[S]) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.router = router
	}
}

// WithConductorOptions passes extra options to the conductor.
//
// Parameters:
//   - options: conductor options such as conductor.WithFaultIsolation
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithConductorOptions[S any, U any](options ...conductor.ConductorBuilderOption[S]) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.conductorOptions = append(e.conductorOptions, options...)
	}
}

// WithProxyCapacity sets how many user events may be queued before Proxy.Send reports full.
//
// Parameters:
//   - n: the queue capacity (default 64)
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithProxyCapacity[S any, U any](n int) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		e.proxyCapacity = n
	}
}

// WithMaxWait caps how long the loop blocks waiting for events, even when no timer is pending.
// Pass 0 to block indefinitely while idle.
//
// Parameters:
//   - d: the longest wait (default 1s)
//
// Returns:
//   - EngineBuilderOption[S, U]: option function to apply
func WithMaxWait[S any, U any](d time.Duration) EngineBuilderOption[S, U] {
	return func(e *engine[S, U]) {
		if d < 0 {
			d = 0
		}
		e.maxWait = d
	}
}
