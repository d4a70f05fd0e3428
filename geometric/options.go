package geometric

import (
	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/nn"
)

// DefaultResolution is the motion-check step as a fraction of the space's
// maximum extent. Only the discretised states are checked, so a motion may
// cut an obstacle corner thinner than one step; inflate obstacles by at
// least one step, or lower the resolution, when that matters.
const DefaultResolution = 0.01

// defaultSeed is used when callers pass seed 0.
const defaultSeed int64 = 1

type options struct {
	seed               int64
	logger             *plango.Logger
	metricsCollector   plango.MetricsCollector
	resolution         float64
	nnFactory          nn.Factory
	workers            int
	maxIterations      int
	maxVertices        int
	shrinkingRadius    bool
	strictGoalContract bool
}

func defaultOptions() options {
	return options{
		seed:             defaultSeed,
		logger:           plango.NoopLogger(),
		metricsCollector: plango.NoopMetricsCollector{},
		resolution:       DefaultResolution,
		nnFactory:        nn.DefaultFactory,
		workers:          1,
	}
}

// Option configures a planner.
type Option func(*options)

// WithSeed seeds the planner RNG. The RNG is re-seeded at every Setup, so a
// planner set up twice with the same seed repeats its search. Seed 0 selects
// a fixed default seed.
func WithSeed(seed int64) Option {
	return func(o *options) {
		if seed == 0 {
			seed = defaultSeed
		}
		o.seed = seed
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(l *plango.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = plango.NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for solve and roadmap
// statistics. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &plango.BasicMetricsCollector{}
//	rrt, _ := geometric.NewRRT(pd, 0.5, 0.05, geometric.WithMetricsCollector(metrics))
//	// ... solve ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc plango.MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = plango.NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResolution sets the motion-check step as a fraction of the space's
// maximum extent. For unbounded spaces the fraction applies to the
// planner's step length instead.
func WithResolution(r float64) Option {
	return func(o *options) {
		if r > 0 && r <= 1 {
			o.resolution = r
		}
	}
}

// WithNearestNeighbors selects the nearest-neighbour index implementation.
func WithNearestNeighbors(f nn.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.nnFactory = f
		}
	}
}

// WithWorkers fans PRM edge checks out over n goroutines. The roadmap is
// identical to the sequential one, but the validity checker must be safe
// for concurrent use.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithMaxIterations bounds each Solve call by an iteration count in addition
// to its timeout. Iteration budgets make runs reproducible regardless of
// machine speed. 0 disables the limit.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = max(n, 0)
	}
}

// WithMaxVertices bounds PRM roadmap construction by vertex count in
// addition to the roadmap timeout. 0 disables the limit.
func WithMaxVertices(n int) Option {
	return func(o *options) {
		o.maxVertices = max(n, 0)
	}
}

// WithShrinkingRadius makes RRT* shrink its search radius with tree size
// as r = min(R, max(d_max, R·(ln n / n)^(1/dim))).
func WithShrinkingRadius(enabled bool) Option {
	return func(o *options) {
		o.shrinkingRadius = enabled
	}
}

// WithStrictGoalContract makes Solve fail with an
// *plango.InvalidGoalContractError when a goal hit reveals a goal whose
// IsSatisfied and DistanceGoal disagree. By default violations are logged
// and the search continues.
func WithStrictGoalContract(enabled bool) Option {
	return func(o *options) {
		o.strictGoalContract = enabled
	}
}
