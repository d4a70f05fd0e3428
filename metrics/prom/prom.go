// Package prom exports planner metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, err := prom.NewCollector(reg, "robot")
//	rrt, _ := geometric.NewRRT(pd, 0.5, 0.05, geometric.WithMetricsCollector(mc))
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/plango"
)

// Collector implements plango.MetricsCollector on Prometheus instruments.
type Collector struct {
	solves          *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec
	iterations      *prometheus.CounterVec
	motionChecks    *prometheus.CounterVec
	pathCost        *prometheus.HistogramVec
	roadmaps        prometheus.Counter
	roadmapDuration prometheus.Histogram
	roadmapVertices prometheus.Gauge
	roadmapEdges    prometheus.Gauge
	components      prometheus.Gauge
}

var _ plango.MetricsCollector = (*Collector)(nil)

// NewCollector creates the instruments under namespace (subsystem
// "planner") and registers them with reg.
func NewCollector(reg prometheus.Registerer, namespace string) (*Collector, error) {
	const subsystem = "planner"
	c := &Collector{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "solves_total",
			Help:      "Finished solve calls by planner and outcome",
		}, []string{"planner", "outcome"}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "solve_duration_seconds",
			Help:      "Wall-clock time of solve calls",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"planner"}),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "iterations_total",
			Help:      "Planner loop iterations",
		}, []string{"planner"}),
		motionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "motion_checks_total",
			Help:      "Motion validity checks performed during solve calls",
		}, []string{"planner"}),
		pathCost: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "path_cost",
			Help:      "Cost of solution paths",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"planner"}),
		roadmaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "roadmap_builds_total",
			Help:      "Roadmap construction calls",
		}),
		roadmapDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "roadmap_duration_seconds",
			Help:      "Wall-clock time of roadmap construction",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
		}),
		roadmapVertices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "roadmap_vertices",
			Help:      "Vertices in the most recently built roadmap",
		}),
		roadmapEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "roadmap_edges",
			Help:      "Edges in the most recently built roadmap",
		}),
		components: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "roadmap_components",
			Help:      "Connected components of the most recently built roadmap",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.solves, c.solveDuration, c.iterations, c.motionChecks, c.pathCost,
		c.roadmaps, c.roadmapDuration, c.roadmapVertices, c.roadmapEdges, c.components,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordSolve implements plango.MetricsCollector.
func (c *Collector) RecordSolve(s plango.SolveStats) {
	c.solves.WithLabelValues(s.Planner, outcome(s)).Inc()
	c.solveDuration.WithLabelValues(s.Planner).Observe(s.Duration.Seconds())
	c.iterations.WithLabelValues(s.Planner).Add(float64(s.Iterations))
	c.motionChecks.WithLabelValues(s.Planner).Add(float64(s.MotionChecks))
	if s.Solved {
		c.pathCost.WithLabelValues(s.Planner).Observe(s.Cost)
	}
}

// RecordRoadmap implements plango.MetricsCollector.
func (c *Collector) RecordRoadmap(s plango.RoadmapStats) {
	c.roadmaps.Inc()
	c.roadmapDuration.Observe(s.Duration.Seconds())
	c.roadmapVertices.Set(float64(s.Vertices))
	c.roadmapEdges.Set(float64(s.Edges))
	c.components.Set(float64(s.Components))
}

func outcome(s plango.SolveStats) string {
	switch {
	case s.Err != nil:
		return "error"
	case s.Solved:
		return "solved"
	default:
		return "exhausted"
	}
}
