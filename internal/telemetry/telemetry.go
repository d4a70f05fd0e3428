// Package telemetry holds the OpenTelemetry tracer and meter instruments for
// planner runs. Without a configured provider every call is a no-op.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hupe1980/plango"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)
)

var (
	solveLatency    metric.Float64Histogram
	solveTotal      metric.Int64Counter
	solveIterations metric.Int64Histogram
	roadmapLatency  metric.Float64Histogram
	roadmapVertices metric.Int64Histogram
	motionChecks    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		solveLatency, err = meter.Float64Histogram(
			"plango_solve_duration_seconds",
			metric.WithDescription("Duration of planner solve calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		solveTotal, err = meter.Int64Counter(
			"plango_solve_total",
			metric.WithDescription("Total number of planner solve calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		solveIterations, err = meter.Int64Histogram(
			"plango_solve_iterations",
			metric.WithDescription("Iterations per solve call"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		roadmapLatency, err = meter.Float64Histogram(
			"plango_roadmap_duration_seconds",
			metric.WithDescription("Duration of roadmap construction"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		roadmapVertices, err = meter.Int64Histogram(
			"plango_roadmap_vertices",
			metric.WithDescription("Roadmap size after construction"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		motionChecks, err = meter.Int64Counter(
			"plango_motion_checks_total",
			metric.WithDescription("Total number of state validity checks"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// SolveResult summarises a solve call for RecordSolve.
type SolveResult struct {
	Planner      string
	Status       string
	Duration     time.Duration
	Iterations   int
	MotionChecks int64
}

// RecordSolve records the instruments for a finished solve call.
func RecordSolve(ctx context.Context, r SolveResult) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("planner", r.Planner),
		attribute.String("status", r.Status),
	)
	solveLatency.Record(ctx, r.Duration.Seconds(), attrs)
	solveTotal.Add(ctx, 1, attrs)
	solveIterations.Record(ctx, int64(r.Iterations), attrs)
	motionChecks.Add(ctx, r.MotionChecks, metric.WithAttributes(attribute.String("planner", r.Planner)))
}

// RecordRoadmap records the instruments for a roadmap construction.
func RecordRoadmap(ctx context.Context, duration time.Duration, vertices int) {
	if err := initMetrics(); err != nil {
		return
	}

	roadmapLatency.Record(ctx, duration.Seconds())
	roadmapVertices.Record(ctx, int64(vertices))
}

// StartSolveSpan starts the span covering one solve call.
func StartSolveSpan(ctx context.Context, planner, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, planner+".Solve",
		trace.WithAttributes(
			attribute.String("plango.planner", planner),
			attribute.String("plango.run_id", runID),
		),
	)
}

// StartRoadmapSpan starts the span covering roadmap construction.
func StartRoadmapSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "PRM.ConstructRoadmap",
		trace.WithAttributes(attribute.String("plango.run_id", runID)),
	)
}

// EndSpan sets the result attributes on span and ends it.
func EndSpan(span trace.Span, status string, iterations, treeSize int, err error) {
	span.SetAttributes(
		attribute.String("plango.status", status),
		attribute.Int("plango.iterations", iterations),
		attribute.Int("plango.tree_size", treeSize),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
