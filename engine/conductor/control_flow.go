package conductor

import (
	"fmt"
	"time"
)

// ControlFlow is what the conductor tells the host loop after each call: either stop, or keep
// going and wake no later than Wait from now.
type ControlFlow struct {
	// Exit is set once any program asked for the application to shut down.
	Exit bool

	// Wait is the shortest time until a participating timer becomes due. Zero means at least one
	// program is due right away. Only meaningful when Pending is true.
	Wait time.Duration

	// Pending is false when no timer participates (every timing is Disabled or no program is
	// registered). The host loop should then block until the next event.
	Pending bool
}

// Deadline converts the relative wait into an absolute wake-up instant.
//
// Parameters:
//   - now: the instant the wait is relative to
//
// Returns:
//   - time.Time: the instant the host loop should wake by
//   - bool: false when there is nothing pending or the loop should exit
func (cf ControlFlow) Deadline(now time.Time) (time.Time, bool) {
	if cf.Exit || !cf.Pending {
		return time.Time{}, false
	}
	return now.Add(cf.Wait), true
}

func (cf ControlFlow) String() string {
	switch {
	case cf.Exit:
		return "exit"
	case !cf.Pending:
		return "wait(event)"
	case cf.Wait == 0:
		return "poll"
	default:
		return fmt.Sprintf("wait(%s)", cf.Wait)
	}
}

// CycleStats describes what happened during the most recent Cycle.
type CycleStats struct {
	// Cycle is the number of scheduling passes run so far, including this one.
	Cycle uint64

	Updates  int
	Renders  int
	Skipped  int
	Faults   int
	Submits  int
	Presents int

	Wait    time.Duration
	Pending bool

	// Duration is the wall time spent inside the pass, measured with the conductor's clock.
	Duration time.Duration
}
