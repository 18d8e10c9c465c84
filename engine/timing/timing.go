// Package timing implements the periodic triggers that decide when a program's update or render
// step is due. Checking a Timing never mutates it; only Reset advances its deadline.
package timing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidFrequency is returned when a frequency is zero, negative, NaN, infinite, or too
	// large to be represented as a whole number of nanoseconds.
	ErrInvalidFrequency = errors.New("timing: frequency must be a finite value greater than zero")

	// ErrInvalidPeriod is returned when a period or interval is zero or negative.
	ErrInvalidPeriod = errors.New("timing: period must be greater than zero")
)

// Kind identifies which trigger variant a Timing holds.
type Kind int

const (
	// KindImmediate is always ready.
	KindImmediate Kind = iota

	// KindFixedRate fires at a fixed frequency, re-armed relative to the moment it was reset.
	KindFixedRate

	// KindFixedInterval fires after a fixed wait, re-armed relative to the moment it was reset.
	KindFixedInterval

	// KindDisabled never fires and does not participate in wait aggregation.
	KindDisabled
)

func (k Kind) String() string {
	switch k {
	case KindImmediate:
		return "immediate"
	case KindFixedRate:
		return "fixed-rate"
	case KindFixedInterval:
		return "fixed-interval"
	case KindDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Timing is a periodic trigger. The zero value is an Immediate timing.
//
// Fixed timings start out due: their deadline is the zero instant until the first Reset, so
// constructing one never reads the clock.
type Timing struct {
	kind    Kind
	period  time.Duration
	nextDue time.Time
}

// Immediate returns a Timing that is always ready.
//
// Returns:
//   - Timing: an immediate timing
func Immediate() Timing {
	return Timing{kind: KindImmediate}
}

// Disabled returns a Timing that is never ready and reports StateIgnore.
//
// Returns:
//   - Timing: a disabled timing
func Disabled() Timing {
	return Timing{kind: KindDisabled}
}

// FixedRate returns a Timing firing hz times per second. The period is 1e9/hz nanoseconds,
// floored to a whole nanosecond.
//
// Parameters:
//   - hz: the target frequency in Hertz
//
// Returns:
//   - Timing: the fixed-rate timing
//   - error: ErrInvalidFrequency if hz is not a usable frequency
func FixedRate(hz float64) (Timing, error) {
	period, err := periodFromFrequency(hz)
	if err != nil {
		return Timing{}, err
	}
	return Timing{kind: KindFixedRate, period: period}, nil
}

// FixedRatePeriod returns a fixed-rate Timing from an explicit period.
//
// Parameters:
//   - period: the time between firings
//
// Returns:
//   - Timing: the fixed-rate timing
//   - error: ErrInvalidPeriod if period <= 0
func FixedRatePeriod(period time.Duration) (Timing, error) {
	if period <= 0 {
		return Timing{}, fmt.Errorf("%w: got %s", ErrInvalidPeriod, period)
	}
	return Timing{kind: KindFixedRate, period: period}, nil
}

// FixedInterval returns a Timing that waits interval after each Reset before firing again.
//
// Parameters:
//   - interval: the wait between firings
//
// Returns:
//   - Timing: the fixed-interval timing
//   - error: ErrInvalidPeriod if interval <= 0
func FixedInterval(interval time.Duration) (Timing, error) {
	if interval <= 0 {
		return Timing{}, fmt.Errorf("%w: got %s", ErrInvalidPeriod, interval)
	}
	return Timing{kind: KindFixedInterval, period: interval}, nil
}

// FixedIntervalHz returns a fixed-interval Timing whose interval is derived from a frequency.
//
// Parameters:
//   - hz: the frequency in Hertz
//
// Returns:
//   - Timing: the fixed-interval timing
//   - error: ErrInvalidFrequency if hz is not a usable frequency
func FixedIntervalHz(hz float64) (Timing, error) {
	period, err := periodFromFrequency(hz)
	if err != nil {
		return Timing{}, err
	}
	return Timing{kind: KindFixedInterval, period: period}, nil
}

// MustFixedRate is like FixedRate but panics on an invalid frequency.
// Intended for literal cadences in program code.
func MustFixedRate(hz float64) Timing {
	t, err := FixedRate(hz)
	if err != nil {
		panic(err)
	}
	return t
}

// MustFixedInterval is like FixedInterval but panics on an invalid interval.
func MustFixedInterval(interval time.Duration) Timing {
	t, err := FixedInterval(interval)
	if err != nil {
		panic(err)
	}
	return t
}

func periodFromFrequency(hz float64) (time.Duration, error) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidFrequency, hz)
	}
	ns := math.Floor(float64(time.Second) / hz)
	if ns < 1 {
		return 0, fmt.Errorf("%w: %v Hz is below nanosecond resolution", ErrInvalidFrequency, hz)
	}
	return time.Duration(ns), nil
}

// Kind returns the variant held by t.
func (t Timing) Kind() Kind {
	return t.kind
}

// Period returns the period or interval of a fixed timing, or zero for other kinds.
func (t Timing) Period() time.Duration {
	return t.period
}

// NextDue returns the deadline of a fixed timing. The zero time means "due now".
func (t Timing) NextDue() time.Time {
	return t.nextDue
}

// Check reports the status of t against the current wall clock.
//
// Returns:
//   - Status: the readiness of the timing
func (t Timing) Check() Status {
	switch t.kind {
	case KindImmediate:
		return Status{State: StateReady}
	case KindDisabled:
		return Status{State: StateIgnore}
	}
	return t.CheckAt(time.Now())
}

// CheckAt reports the status of t as of now. It never modifies t, so it can be called any
// number of times between resets.
//
// Parameters:
//   - now: the instant to evaluate against
//
// Returns:
//   - Status: StateReady, StateWaiting with the remaining time and due instant, or StateIgnore
func (t Timing) CheckAt(now time.Time) Status {
	switch t.kind {
	case KindImmediate:
		return Status{State: StateReady}
	case KindFixedRate, KindFixedInterval:
		if !now.Before(t.nextDue) {
			return Status{State: StateReady, Due: t.nextDue}
		}
		return Status{State: StateWaiting, Remaining: t.nextDue.Sub(now), Due: t.nextDue}
	default:
		return Status{State: StateIgnore}
	}
}

// Reset re-arms t relative to the current wall clock.
func (t *Timing) Reset() {
	if t.kind != KindFixedRate && t.kind != KindFixedInterval {
		return
	}
	t.ResetAt(time.Now())
}

// ResetAt re-arms a fixed timing so that it is next due at now plus its period. Missed periods
// are not replayed: a timing reset long after its deadline fires once, not once per missed
// period. The deadline never moves backward.
//
// Parameters:
//   - now: the instant the timing fired
func (t *Timing) ResetAt(now time.Time) {
	if t.kind != KindFixedRate && t.kind != KindFixedInterval {
		return
	}
	next := now.Add(t.period)
	if next.After(t.nextDue) {
		t.nextDue = next
	}
}

func (t Timing) String() string {
	switch t.kind {
	case KindFixedRate:
		return fmt.Sprintf("fixed-rate(%s)", t.period)
	case KindFixedInterval:
		return fmt.Sprintf("fixed-interval(%s)", t.period)
	default:
		return t.kind.String()
	}
}
