package timing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFixedRatePeriodIsFlooredNanoseconds(t *testing.T) {
	cases := []struct {
		hz   float64
		want time.Duration
	}{
		{60, 16666666 * time.Nanosecond},
		{10, 100 * time.Millisecond},
		{3, 333333333 * time.Nanosecond},
		{0.5, 2 * time.Second},
		{1e9, time.Nanosecond},
	}
	for _, tc := range cases {
		tm, err := FixedRate(tc.hz)
		require.NoError(t, err, "hz=%v", tc.hz)
		assert.Equal(t, KindFixedRate, tm.Kind())
		assert.Equal(t, tc.want, tm.Period(), "hz=%v", tc.hz)
	}
}

func TestInvalidCadencesAreRejected(t *testing.T) {
	for _, hz := range []float64{0, -1, math.NaN(), math.Inf(1), 2e9} {
		_, err := FixedRate(hz)
		assert.ErrorIs(t, err, ErrInvalidFrequency, "hz=%v", hz)
		_, err = FixedIntervalHz(hz)
		assert.ErrorIs(t, err, ErrInvalidFrequency, "hz=%v", hz)
	}
	for _, d := range []time.Duration{0, -time.Second} {
		_, err := FixedInterval(d)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
		_, err = FixedRatePeriod(d)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	}
	assert.Panics(t, func() { MustFixedRate(0) })
	assert.Panics(t, func() { MustFixedInterval(0) })
}

func TestImmediateAndDisabled(t *testing.T) {
	imm := Immediate()
	assert.True(t, imm.CheckAt(epoch).Ready())
	imm.ResetAt(epoch)
	assert.True(t, imm.Check().Ready())
	assert.True(t, Timing{}.Check().Ready(), "zero value is immediate")

	off := Disabled()
	assert.Equal(t, StateIgnore, off.Check().State)
	off.Reset()
	assert.Equal(t, StateIgnore, off.CheckAt(epoch.Add(time.Hour)).State)
	assert.True(t, off.NextDue().IsZero())
}

func TestFixedTimingIsDueBeforeFirstReset(t *testing.T) {
	tm := MustFixedRate(60)
	assert.True(t, tm.CheckAt(epoch).Ready())
	assert.True(t, tm.NextDue().IsZero())
}

func TestCheckIsIdempotentAroundDeadline(t *testing.T) {
	tm := MustFixedInterval(100 * time.Millisecond)
	tm.ResetAt(epoch)
	due := epoch.Add(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		s := tm.CheckAt(epoch.Add(99 * time.Millisecond))
		assert.Equal(t, StateWaiting, s.State)
		assert.Equal(t, time.Millisecond, s.Remaining)
		assert.Equal(t, due, s.Due)
	}
	for _, offset := range []time.Duration{100 * time.Millisecond, 150 * time.Millisecond, time.Hour} {
		for i := 0; i < 3; i++ {
			assert.True(t, tm.CheckAt(epoch.Add(offset)).Ready(), "offset=%s", offset)
		}
	}
	assert.Equal(t, due, tm.NextDue(), "checking must not move the deadline")
}

func TestLateResetDoesNotAccumulateDrift(t *testing.T) {
	tm := MustFixedRate(10)
	tm.ResetAt(epoch)

	// The process stalls for ten periods; the timer fires once and re-arms from now.
	late := epoch.Add(time.Second + 5*time.Millisecond)
	require.True(t, tm.CheckAt(late).Ready())
	tm.ResetAt(late)

	s := tm.CheckAt(late.Add(time.Millisecond))
	assert.Equal(t, StateWaiting, s.State, "a late reset must not cause an immediate second fire")
	assert.Equal(t, late.Add(100*time.Millisecond), tm.NextDue())
}

func TestNextDueIsMonotonic(t *testing.T) {
	tm := MustFixedInterval(time.Second)
	resets := []time.Duration{0, 3 * time.Second, time.Second, 2 * time.Second, 10 * time.Second, 4 * time.Second}
	var last time.Time
	for _, r := range resets {
		tm.ResetAt(epoch.Add(r))
		assert.False(t, tm.NextDue().Before(last), "deadline moved backward after reset at %s", r)
		last = tm.NextDue()
	}
	assert.Equal(t, epoch.Add(11*time.Second), last)
}

func TestDeadlineFold(t *testing.T) {
	var d Deadline
	_, pending := d.Wait()
	assert.False(t, pending)

	d.Fold(Status{State: StateIgnore})
	_, pending = d.Wait()
	assert.False(t, pending, "ignored statuses do not count as pending work")

	d.Fold(Status{State: StateWaiting, Remaining: 30 * time.Millisecond})
	d.Fold(Status{State: StateWaiting, Remaining: 10 * time.Millisecond})
	d.Fold(Status{State: StateWaiting, Remaining: 20 * time.Millisecond})
	w, pending := d.Wait()
	assert.True(t, pending)
	assert.Equal(t, 10*time.Millisecond, w)

	d.Fold(Status{State: StateReady})
	w, _ = d.Wait()
	assert.Equal(t, time.Duration(0), w)
}

func TestParse(t *testing.T) {
	cases := []struct {
		in     string
		kind   Kind
		period time.Duration
	}{
		{"immediate", KindImmediate, 0},
		{"", KindImmediate, 0},
		{"disabled", KindDisabled, 0},
		{"OFF", KindDisabled, 0},
		{"60hz", KindFixedRate, 16666666 * time.Nanosecond},
		{" 10 Hz ", KindFixedRate, 100 * time.Millisecond},
		{"250ms", KindFixedInterval, 250 * time.Millisecond},
		{"1m30s", KindFixedInterval, 90 * time.Second},
	}
	for _, tc := range cases {
		tm, err := Parse(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.kind, tm.Kind(), "input %q", tc.in)
		assert.Equal(t, tc.period, tm.Period(), "input %q", tc.in)
	}

	for _, bad := range []string{"fast", "0hz", "-5hz", "xhz", "0s", "-1s"} {
		_, err := Parse(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestTextParsesBack(t *testing.T) {
	for _, tm := range []Timing{Immediate(), Disabled(), MustFixedRate(60), MustFixedRate(0.5), MustFixedInterval(250 * time.Millisecond)} {
		back, err := Parse(tm.Text())
		require.NoError(t, err, tm.Text())
		assert.Equal(t, tm.Kind(), back.Kind(), tm.Text())
		assert.Equal(t, tm.Period(), back.Period(), tm.Text())
	}
	assert.Equal(t, "60hz", MustFixedRate(60).Text())
}
