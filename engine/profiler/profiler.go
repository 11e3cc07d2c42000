package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/device"
)

// Report is one profiling interval: frame rate, memory and the render device's counters over
// the interval.
type Report struct {
	FPS          float64
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
	Device       device.Stats
	CallsPerDraw float64
	// AvoidedRatio is the share of binding and state requests the device dropped as redundant.
	AvoidedRatio float64
}

// Profiler tracks frame rate, memory and render device statistics for performance monitoring.
// Outputs a Report to its logger at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Report
}

// NewProfiler creates a new Profiler logging to slog.Default().
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		logger:         slog.Default(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// SetLogger sets the logger reports are written to. A nil logger restores slog.Default().
//
// Parameters:
//   - l: the logger to use
func (p *Profiler) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	p.logger = l
}

// SetInterval sets how often a report is produced.
//
// Parameters:
//   - d: the reporting interval
func (p *Profiler) SetInterval(d time.Duration) {
	p.updateInterval = d
}

// Last returns the most recent report, or the zero Report before the first interval elapsed.
//
// Returns:
//   - Report: the last logged report
func (p *Profiler) Last() Report {
	return p.last
}

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed it logs a Report built from the frame count, the runtime
// memory statistics and the device counters accumulated since the last report. The caller resets
// the device counters after a report so that each one covers a single interval.
//
// Parameters:
//   - stats: the render device counters since the last report
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats device.Stats) bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	r := Report{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		Device:      stats,
	}

	if r.GCCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if r.GCCount-startIdx > 256 {
			startIdx = r.GCCount - 256
		}
		for i := startIdx; i < r.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}

	if stats.Draws > 0 {
		r.CallsPerDraw = float64(stats.CallsIssued) / float64(stats.Draws)
	}
	if total := stats.CallsIssued + stats.CallsAvoided; total > 0 {
		r.AvoidedRatio = float64(stats.CallsAvoided) / float64(total)
	}

	p.logger.Info("profiler",
		slog.Float64("fps", r.FPS),
		slog.Float64("heap_mb", r.HeapMB),
		slog.Float64("alloc_rate_mb", r.AllocRateMB),
		slog.Uint64("gc", uint64(r.GCCount)),
		slog.Uint64("gc_last_us", r.LastPauseUs),
		slog.Uint64("gc_max_us", r.MaxPauseUs),
		slog.Float64("sys_mb", r.SysMB),
		slog.Group("device",
			slog.Int("applies", stats.Applies),
			slog.Int("draws", stats.Draws),
			slog.Int("calls_issued", stats.CallsIssued),
			slog.Int("calls_avoided", stats.CallsAvoided),
			slog.Int("uniform_uploads", stats.UniformUploads),
			slog.Int("live_descriptors", stats.LiveDescriptors),
		),
	)

	p.last = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
