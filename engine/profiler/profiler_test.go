package profiler

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickAggregatesOverInterval(t *testing.T) {
	now := time.Unix(0, 0)
	var buf bytes.Buffer
	var handled []Snapshot
	p := NewProfiler(
		WithClock(func() time.Time { return now }),
		WithLogger(zerolog.New(&buf)),
		WithSnapshotHandler(func(s Snapshot) { handled = append(handled, s) }),
	)

	for i := 0; i < 9; i++ {
		now = now.Add(100 * time.Millisecond)
		_, ok := p.Tick(Sample{Updates: 1, Renders: 2, Submits: 1, Presents: 1, Busy: 10 * time.Millisecond})
		require.False(t, ok)
	}
	assert.Zero(t, buf.Len())

	now = now.Add(100 * time.Millisecond)
	snap, ok := p.Tick(Sample{Updates: 1, Faults: 1, Busy: 10 * time.Millisecond})
	require.True(t, ok)

	assert.Equal(t, 10, snap.Cycles)
	assert.InDelta(t, 10.0, snap.CycleRate, 1e-9)
	assert.InDelta(t, 9.0, snap.FPS, 1e-9)
	assert.InDelta(t, 10.0, snap.UpdateRate, 1e-9)
	assert.InDelta(t, 18.0, snap.RenderRate, 1e-9)
	assert.InDelta(t, 0.1, snap.BusyRatio, 1e-9)
	assert.Equal(t, 1, snap.Faults)
	assert.NotZero(t, snap.HeapBytes)
	assert.Contains(t, buf.String(), `"message":"profile"`)
	assert.Len(t, handled, 1)

	now = now.Add(10 * time.Millisecond)
	_, ok = p.Tick(Sample{})
	assert.False(t, ok, "counters restart after a snapshot")
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
	p = NewProfiler(WithInterval(250 * time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, p.updateInterval)
}

var sink []byte

func TestFirstSnapshotExcludesEarlierAllocations(t *testing.T) {
	const earlier = 64 << 20
	sink = make([]byte, earlier)
	sink = nil

	now := time.Unix(0, 0)
	p := NewProfiler(
		WithClock(func() time.Time { return now }),
		WithLogger(zerolog.Nop()),
	)
	now = now.Add(time.Second)
	snap, ok := p.Tick(Sample{})
	require.True(t, ok)
	assert.Less(t, snap.AllocRate, float64(earlier), "allocations before NewProfiler are not counted")
}
