package meshrecon

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    stageHistogram *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordStage(stage string, duration time.Duration, err error) {
//	    p.stageHistogram.WithLabelValues(stage).Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordStage is called after each pipeline stage.
	// duration is the time taken, err is nil if successful.
	RecordStage(stage string, duration time.Duration, err error)

	// RecordReconstruct is called after each Reconstruct call.
	// stats holds whatever was computed before a failure.
	RecordReconstruct(stats Stats, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStage(string, time.Duration, error)      {}
func (NoopMetricsCollector) RecordReconstruct(Stats, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ReconstructCount      atomic.Int64
	ReconstructErrors     atomic.Int64
	ReconstructTotalNanos atomic.Int64
	StageCount            atomic.Int64
	StageErrors           atomic.Int64
	PointsProcessed       atomic.Int64
	FacesProduced         atomic.Int64
	Collapses             atomic.Int64
	Flips                 atomic.Int64

	mu         sync.Mutex
	stageNanos map[string]int64
	stageRuns  map[string]int64
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(stage string, duration time.Duration, err error) {
	b.StageCount.Add(1)
	if err != nil {
		b.StageErrors.Add(1)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stageNanos == nil {
		b.stageNanos = make(map[string]int64)
		b.stageRuns = make(map[string]int64)
	}
	b.stageNanos[stage] += duration.Nanoseconds()
	b.stageRuns[stage]++
}

// RecordReconstruct implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReconstruct(stats Stats, duration time.Duration, err error) {
	b.ReconstructCount.Add(1)
	b.ReconstructTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReconstructErrors.Add(1)
		return
	}
	b.PointsProcessed.Add(int64(stats.Points))
	b.FacesProduced.Add(int64(stats.Faces))
	b.Collapses.Add(int64(stats.Collapses))
	b.Flips.Add(int64(stats.Flips))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	stageRuns := maps.Clone(b.stageRuns)
	stageAvg := make(map[string]int64, len(b.stageNanos))
	for stage, nanos := range b.stageNanos {
		stageAvg[stage] = nanos / b.stageRuns[stage]
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		ReconstructCount:    b.ReconstructCount.Load(),
		ReconstructErrors:   b.ReconstructErrors.Load(),
		ReconstructAvgNanos: b.getAvgReconstructNanos(),
		StageCount:          b.StageCount.Load(),
		StageErrors:         b.StageErrors.Load(),
		StageRuns:           stageRuns,
		StageAvgNanos:       stageAvg,
		PointsProcessed:     b.PointsProcessed.Load(),
		FacesProduced:       b.FacesProduced.Load(),
		Collapses:           b.Collapses.Load(),
		Flips:               b.Flips.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgReconstructNanos() int64 {
	count := b.ReconstructCount.Load()
	if count == 0 {
		return 0
	}
	return b.ReconstructTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReconstructCount    int64
	ReconstructErrors   int64
	ReconstructAvgNanos int64
	StageCount          int64
	StageErrors         int64
	StageRuns           map[string]int64
	StageAvgNanos       map[string]int64
	PointsProcessed     int64
	FacesProduced       int64
	Collapses           int64
	Flips               int64
}
