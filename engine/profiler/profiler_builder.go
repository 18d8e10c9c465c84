package profiler

import (
	"time"

	"github.com/rs/zerolog"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler)

// WithInterval sets how often statistics are aggregated and logged. Values <= 0 are ignored.
//
// Parameters:
//   - interval: the aggregation interval (default 1s)
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogger sets the logger the statistics are written to.
//
// Parameters:
//   - logger: the zerolog logger to use
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(logger zerolog.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithClock replaces time.Now as the profiler's time source.
//
// Parameters:
//   - now: returns the current instant
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.clock = now
		}
	}
}

// WithSnapshotHandler registers a function receiving every snapshot after it is logged.
//
// Parameters:
//   - fn: the snapshot handler
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithSnapshotHandler(fn func(Snapshot)) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.onSnapshot = fn
	}
}
