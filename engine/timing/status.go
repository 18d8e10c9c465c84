package timing

import "time"

// State is the readiness reported by a Timing check.
type State int

const (
	// StateReady means the guarded operation should run now.
	StateReady State = iota

	// StateWaiting means the operation becomes due after Status.Remaining.
	StateWaiting

	// StateIgnore means the timing does not participate in scheduling (Disabled).
	StateIgnore
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateWaiting:
		return "waiting"
	default:
		return "ignore"
	}
}

// Status is the result of checking a Timing. It carries both the remaining duration and the
// absolute due instant so callers can aggregate a minimum wait over many timers without
// checking them again.
type Status struct {
	State State

	// Remaining is the time left until the timing is due. Only meaningful for StateWaiting.
	Remaining time.Duration

	// Due is the absolute deadline of a fixed timing. Zero for Immediate and Disabled.
	Due time.Time
}

// Ready reports whether the status is StateReady.
func (s Status) Ready() bool {
	return s.State == StateReady
}

// Deadline folds timing statuses into the earliest pending wake-up.
// The zero value has nothing pending.
type Deadline struct {
	wait    time.Duration
	pending bool
}

// Fold merges s into the running minimum. Ready statuses count as a zero wait, waiting statuses
// contribute their remaining time, and ignored statuses are skipped.
//
// Parameters:
//   - s: the status to merge
func (d *Deadline) Fold(s Status) {
	var w time.Duration
	switch s.State {
	case StateReady:
		w = 0
	case StateWaiting:
		w = max(s.Remaining, 0)
	default:
		return
	}
	if !d.pending || w < d.wait {
		d.wait = w
		d.pending = true
	}
}

// Wait returns the minimum folded wait and whether any timing participated.
//
// Returns:
//   - time.Duration: the shortest wait folded so far
//   - bool: false when every folded status was StateIgnore (or nothing was folded)
func (d Deadline) Wait() (time.Duration, bool) {
	return d.wait, d.pending
}
