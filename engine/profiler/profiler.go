package profiler

import (
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sample is what one scheduling pass reports to the profiler.
type Sample struct {
	Updates  int
	Renders  int
	Submits  int
	Presents int
	Faults   int
	Busy     time.Duration
}

// Snapshot is the aggregate over one profiler interval.
type Snapshot struct {
	At         time.Time     `json:"at"`
	Interval   time.Duration `json:"interval"`
	Cycles     int           `json:"cycles"`
	CycleRate  float64       `json:"cycle_rate"`
	FPS        float64       `json:"fps"`
	UpdateRate float64       `json:"update_rate"`
	RenderRate float64       `json:"render_rate"`
	Faults     int           `json:"faults"`
	BusyRatio  float64       `json:"busy_ratio"`
	HeapBytes  uint64        `json:"heap_bytes"`
	SysBytes   uint64        `json:"sys_bytes"`
	AllocRate  float64       `json:"alloc_rate"`
	GCCount    uint32        `json:"gc_count"`
	LastPause  time.Duration `json:"last_pause"`
	MaxPause   time.Duration `json:"max_pause"`
}

// Profiler tracks cycle, frame and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	updateInterval time.Duration
	logger         zerolog.Logger
	clock          func() time.Time
	onSnapshot     func(Snapshot)

	lastTime       time.Time
	cycles         int
	updates        int
	renders        int
	presents       int
	faults         int
	busy           time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		logger:         log.Logger.With().Str("component", "profiler").Logger(),
		clock:          time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.clock()
	// Baselines start at the current totals so the first snapshot covers only its own interval.
	runtime.ReadMemStats(&p.memStats)
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastGCCount = p.memStats.NumGC
	return p
}

// Tick should be called once per scheduling pass.
// Logs performance statistics when the update interval has elapsed: cycle rate, presented frames
// per second, update and render rates, heap usage, allocation rate, GC count and pause times.
//
// Parameters:
//   - s: what the pass did
//
// Returns:
//   - Snapshot: the aggregate for the elapsed interval, valid only when ok is true
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(s Sample) (snap Snapshot, ok bool) {
	p.cycles++
	p.updates += s.Updates
	p.renders += s.Renders
	p.presents += s.Presents
	p.faults += s.Faults
	p.busy += s.Busy

	currentTime := p.clock()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Snapshot{}, false
	}

	secs := elapsed.Seconds()
	snap = Snapshot{
		At:         currentTime,
		Interval:   elapsed,
		Cycles:     p.cycles,
		CycleRate:  float64(p.cycles) / secs,
		FPS:        float64(p.presents) / secs,
		UpdateRate: float64(p.updates) / secs,
		RenderRate: float64(p.renders) / secs,
		Faults:     p.faults,
		BusyRatio:  float64(p.busy) / float64(elapsed),
	}
	p.readMemory(&snap, secs)

	p.logger.Info().
		Float64("fps", round2(snap.FPS)).
		Float64("cycles_per_sec", round2(snap.CycleRate)).
		Float64("updates_per_sec", round2(snap.UpdateRate)).
		Float64("renders_per_sec", round2(snap.RenderRate)).
		Float64("busy", round2(snap.BusyRatio)).
		Int("faults", snap.Faults).
		Str("heap", humanize.Bytes(snap.HeapBytes)).
		Str("alloc_rate", humanize.Bytes(uint64(snap.AllocRate))+"/s").
		Uint32("gc", snap.GCCount).
		Dur("gc_last", snap.LastPause).
		Dur("gc_max", snap.MaxPause).
		Str("sys", humanize.Bytes(snap.SysBytes)).
		Msg("profile")

	if p.onSnapshot != nil {
		p.onSnapshot(snap)
	}

	p.cycles = 0
	p.updates = 0
	p.renders = 0
	p.presents = 0
	p.faults = 0
	p.busy = 0
	p.lastTime = currentTime
	return snap, true
}

// readMemory fills the memory fields of snap and advances the GC and allocation baselines.
func (p *Profiler) readMemory(snap *Snapshot, secs float64) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc: bytes of allocated heap objects (live memory)
	// TotalAlloc: cumulative bytes allocated for heap objects (tracks churn)
	// Sys: total bytes of memory obtained from the OS
	snap.HeapBytes = p.memStats.Alloc
	snap.SysBytes = p.memStats.Sys
	snap.AllocRate = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / secs

	gcCount := p.memStats.NumGC
	snap.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		snap.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > snap.MaxPause {
				snap.MaxPause = pause
			}
		}
	}

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
