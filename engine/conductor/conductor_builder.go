package conductor

import (
	"time"

	"github.com/rs/zerolog"
)

// ConductorBuilderOption is a functional option for configuring a Conductor.
type ConductorBuilderOption[S any] func(c *conductor[S])

// WithInputRouter installs the function that sees every host event, with the detached state,
// before the event is dispatched to programs.
//
// Parameters:
//   - router: the routing function
//
// Returns:
//   - ConductorBuilderOption[S]: option function to apply
func WithInputRouter[S any](router InputRouter[S]) ConductorBuilderOption[S] {
	return func(c *conductor[S]) {
		c.router = router
	}
}

// WithLogger sets the logger used for program faults, skipped passes and teardown errors.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - ConductorBuilderOption[S]: option function to apply
func WithLogger[S any](logger zerolog.Logger) ConductorBuilderOption[S] {
	return func(c *conductor[S]) {
		c.logger = logger
	}
}

// WithFaultIsolation controls whether a panic inside one program is recovered and the program
// quarantined (true, the default), or propagated out of the conductor (false).
//
// Parameters:
//   - enabled: whether to isolate program panics
//
// Returns:
//   - ConductorBuilderOption[S]: option function to apply
func WithFaultIsolation[S any](enabled bool) ConductorBuilderOption[S] {
	return func(c *conductor[S]) {
		c.isolate = enabled
	}
}

// WithClock replaces time.Now as the conductor's time source.
//
// Parameters:
//   - now: returns the current instant
//
// Returns:
//   - ConductorBuilderOption[S]: option function to apply
func WithClock[S any](now func() time.Time) ConductorBuilderOption[S] {
	return func(c *conductor[S]) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithSkipIdlePresent controls whether a cycle in which no program rendered to the surface skips
// acquiring and presenting a surface frame (true, the default). When false, every cycle acquires
// and presents exactly one frame.
//
// Parameters:
//   - skip: whether to skip idle presents
//
// Returns:
//   - ConductorBuilderOption[S]: option function to apply
func WithSkipIdlePresent[S any](skip bool) ConductorBuilderOption[S] {
	return func(c *conductor[S]) {
		c.skipIdlePresent = skip
	}
}
