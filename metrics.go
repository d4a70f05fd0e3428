package plango

import (
	"sync/atomic"
	"time"
)

// SolveStats describes one finished solve call.
type SolveStats struct {
	Planner      string
	Solved       bool
	Duration     time.Duration
	Iterations   int
	TreeSize     int
	MotionChecks int64
	Cost         float64
	Err          error
}

// RoadmapStats describes one roadmap construction.
type RoadmapStats struct {
	Duration     time.Duration
	Vertices     int
	Edges        int
	Components   int
	MotionChecks int64
}

// MetricsCollector defines an interface for collecting planner metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus (see package metrics/prom).
type MetricsCollector interface {
	// RecordSolve is called after each solve call.
	RecordSolve(stats SolveStats)

	// RecordRoadmap is called after each roadmap construction.
	RecordRoadmap(stats RoadmapStats)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSolve(SolveStats)     {}
func (NoopMetricsCollector) RecordRoadmap(RoadmapStats) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SolveCount      atomic.Int64
	SolveSolved     atomic.Int64
	SolveErrors     atomic.Int64
	SolveTotalNanos atomic.Int64
	Iterations      atomic.Int64
	MotionChecks    atomic.Int64
	RoadmapCount    atomic.Int64
	RoadmapVertices atomic.Int64
	RoadmapEdges    atomic.Int64
}

// RecordSolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSolve(s SolveStats) {
	b.SolveCount.Add(1)
	b.SolveTotalNanos.Add(s.Duration.Nanoseconds())
	b.Iterations.Add(int64(s.Iterations))
	b.MotionChecks.Add(s.MotionChecks)
	if s.Err != nil {
		b.SolveErrors.Add(1)
	} else if s.Solved {
		b.SolveSolved.Add(1)
	}
}

// RecordRoadmap implements MetricsCollector. Vertex and edge counts hold
// the latest roadmap size.
func (b *BasicMetricsCollector) RecordRoadmap(s RoadmapStats) {
	b.RoadmapCount.Add(1)
	b.RoadmapVertices.Store(int64(s.Vertices))
	b.RoadmapEdges.Store(int64(s.Edges))
	b.MotionChecks.Add(s.MotionChecks)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SolveCount:      b.SolveCount.Load(),
		SolveSolved:     b.SolveSolved.Load(),
		SolveErrors:     b.SolveErrors.Load(),
		SolveAvgNanos:   b.getAvgSolveNanos(),
		Iterations:      b.Iterations.Load(),
		MotionChecks:    b.MotionChecks.Load(),
		RoadmapCount:    b.RoadmapCount.Load(),
		RoadmapVertices: b.RoadmapVertices.Load(),
		RoadmapEdges:    b.RoadmapEdges.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSolveNanos() int64 {
	count := b.SolveCount.Load()
	if count == 0 {
		return 0
	}
	return b.SolveTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SolveCount      int64
	SolveSolved     int64
	SolveErrors     int64
	SolveAvgNanos   int64
	Iterations      int64
	MotionChecks    int64
	RoadmapCount    int64
	RoadmapVertices int64
	RoadmapEdges    int64
}
