package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Stats is one reporting window of a Profiler.
type Stats struct {
	Loop        string
	Rate        float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks loop rate and memory statistics for performance monitoring.
// Reports to slog at a configurable interval.
type Profiler struct {
	loop           string
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a Profiler for a named loop.
//
// Parameters:
//   - loop: the loop being measured, used as the log attribute (e.g. "render", "tick")
//   - interval: how often to report; values <= 0 default to 1 second
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(loop string, interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		loop:           loop,
		lastTime:       time.Now(),
		updateInterval: interval,
	}
}

// Tick should be called once per loop iteration.
// Logs rate, heap usage, allocation rate, GC count and pause times when the interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)

	// PauseNs is a circular buffer of the last 256 pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.last = Stats{
		Loop:        p.loop,
		Rate:        float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     gcCount,
		LastPauseUs: lastPauseUs,
		MaxPauseUs:  maxPauseUs,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
	}
	slog.Info("profiler: stats",
		"loop", p.last.Loop,
		"rate", p.last.Rate,
		"heap_mb", p.last.HeapMB,
		"alloc_mb_s", p.last.AllocRateMB,
		"gc", p.last.GCCount,
		"gc_last_us", p.last.LastPauseUs,
		"gc_max_us", p.last.MaxPauseUs,
		"sys_mb", p.last.SysMB,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently reported window.
//
// Returns:
//   - Stats: the last stats, zero before the first report
func (p *Profiler) Last() Stats {
	return p.last
}
