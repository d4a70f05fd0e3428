package geometric

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/internal/telemetry"
	"github.com/hupe1980/plango/space"
)

// progressInterval throttles progress log lines inside solve loops.
const progressInterval = time.Second

// base carries the state every planner shares: the problem, options, RNG,
// motion validator and lifecycle status.
type base struct {
	name      string
	pd        *plango.ProblemDefinition
	opts      options
	rng       *rand.Rand
	validator *plango.MotionValidator
	status    Status
}

func newBase(name string, pd *plango.ProblemDefinition, optFns []Option) (base, error) {
	if pd == nil {
		return base{}, errors.New("geometric: problem definition is required")
	}
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return base{name: name, pd: pd, opts: opts}, nil
}

func (b *base) Name() string   { return b.name }
func (b *base) Status() Status { return b.status }

// setup binds the checker. step is the planner's characteristic length
// (max_distance or connection radius); it sizes motion checks on unbounded
// spaces.
func (b *base) setup(checker plango.StateValidityChecker, step float64) error {
	if checker == nil {
		return fmt.Errorf("%s: validity checker is required", b.name)
	}
	sp := b.pd.Space()
	segment := b.opts.resolution * sp.MaximumExtent()
	if math.IsInf(segment, 0) || segment <= 0 {
		segment = b.opts.resolution * step
	}
	mv, err := plango.NewMotionValidator(sp, checker, segment)
	if err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	b.validator = mv
	b.rng = rand.New(rand.NewSource(b.opts.seed))
	b.status = StatusReady
	return nil
}

// run tracks the budget and observability of one Solve call.
type run struct {
	ctx        context.Context
	span       trace.Span
	logger     *plango.Logger
	id         string
	started    time.Time
	deadline   time.Time
	timed      bool
	maxIter    int
	iterations int
	checks0    int64
	closest    float64
	progress   rate.Sometimes
}

// begin validates readiness and the start state and opens a run.
func (b *base) begin(ctx context.Context, timeout time.Duration) (*run, error) {
	if b.status == StatusUnconfigured || b.validator == nil {
		return nil, fmt.Errorf("%s: %w: call Setup before Solve", b.name, plango.ErrNotReady)
	}
	if timeout <= 0 && b.opts.maxIterations == 0 {
		return nil, fmt.Errorf("%s: %w", b.name, ErrNoBudget)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := b.pd.Start()
	if !b.validator.IsValid(start) {
		return nil, fmt.Errorf("%s: %w: %s", b.name, plango.ErrInvalidStartState, start)
	}

	id := uuid.NewString()
	ctx, span := telemetry.StartSolveSpan(ctx, b.name, id)
	now := time.Now()
	b.status = StatusSolving
	return &run{
		ctx:      ctx,
		span:     span,
		logger:   b.opts.logger.WithPlanner(b.name).WithRunID(id),
		id:       id,
		started:  now,
		deadline: now.Add(timeout),
		timed:    timeout > 0,
		maxIter:  b.opts.maxIterations,
		checks0:  b.validator.Checks(),
		closest:  math.Inf(1),
		progress: rate.Sometimes{Interval: progressInterval},
	}, nil
}

// next reports whether another iteration fits the budget and counts it.
// A cancelled context ends the run with its error.
func (r *run) next() (bool, error) {
	if err := r.ctx.Err(); err != nil {
		return false, err
	}
	if r.maxIter > 0 && r.iterations >= r.maxIter {
		return false, nil
	}
	if r.timed && !time.Now().Before(r.deadline) {
		return false, nil
	}
	r.iterations++
	return true, nil
}

// expired reports whether the wall-clock budget is spent.
func (r *run) expired() bool {
	return r.timed && !time.Now().Before(r.deadline)
}

func (r *run) logProgress(treeSize int, best float64) {
	r.progress.Do(func() {
		r.logger.LogProgress(r.ctx, r.iterations, treeSize, best)
	})
}

// finish records the outcome of a run and moves the planner to its
// terminal status. sol may be nil when err is set.
func (b *base) finish(r *run, sol *Solution, err error) (*Solution, error) {
	checks := b.validator.Checks() - r.checks0
	stats := plango.SolveStats{
		Planner:      b.name,
		Duration:     time.Since(r.started),
		Iterations:   r.iterations,
		MotionChecks: checks,
		Err:          err,
	}
	status := "error"
	if err != nil {
		b.status = StatusReady
	} else {
		sol.Iterations = r.iterations
		sol.Duration = stats.Duration
		sol.RunID = r.id
		sol.ClosestDistance = r.closest
		if sol.Found() {
			sol.ClosestDistance = 0
		}
		b.status = sol.Status
		status = sol.Status.String()
		stats.Solved = sol.Found()
		stats.TreeSize = sol.TreeSize
		stats.Cost = sol.Cost
	}

	b.opts.metricsCollector.RecordSolve(stats)
	r.logger.LogSolve(r.ctx, stats, err)
	telemetry.RecordSolve(r.ctx, telemetry.SolveResult{
		Planner:      b.name,
		Status:       status,
		Duration:     stats.Duration,
		Iterations:   r.iterations,
		MotionChecks: checks,
	})
	telemetry.EndSpan(r.span, status, r.iterations, stats.TreeSize, err)

	if err != nil {
		return nil, err
	}
	return sol, nil
}

// sample draws a goal sample with probability goalBias and a uniform space
// sample otherwise. A goal that fails to sample falls back to uniform
// sampling; a goal that returns a state foreign to the space is an error.
func (b *base) sample(goalBias float64) (space.State, error) {
	if goalBias > 0 && b.rng.Float64() < goalBias {
		s, ok, err := b.sampleGoal()
		if err != nil {
			return nil, err
		}
		if ok {
			return s, nil
		}
	}
	s, err := b.pd.Space().Sample(b.rng)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	return s, nil
}

// sampleGoal draws one goal sample. It reports false when the goal could
// not produce a state, and ErrGoalSampling when the state does not belong to
// the planning space.
func (b *base) sampleGoal() (space.State, bool, error) {
	s, err := b.pd.Goal().SampleGoal(b.rng)
	if err != nil || s == nil {
		return nil, false, nil
	}
	if err := b.pd.Space().Validate(s); err != nil {
		return nil, false, fmt.Errorf("%s: %w: %w", b.name, plango.ErrGoalSampling, err)
	}
	return s, true, nil
}

// steer moves from toward to by at most maxDistance along the space
// interpolation. It returns the new state, its distance from from, and
// whether to itself was reached.
func (b *base) steer(from, to space.State, maxDistance float64) (space.State, float64, bool) {
	sp := b.pd.Space()
	d := sp.Distance(from, to)
	if d <= maxDistance {
		return to, d, true
	}
	s := sp.Interpolate(from, to, maxDistance/d)
	return s, sp.Distance(from, s), false
}

// atGoal tests s against the goal and checks the goal contract on a hit.
// It also tracks the closest distance to the goal seen in the run.
func (b *base) atGoal(r *run, s space.State) (bool, error) {
	g := b.pd.Goal()
	if !g.IsSatisfied(s) {
		if d := g.DistanceGoal(s); d < r.closest {
			r.closest = d
		}
		return false, nil
	}
	r.closest = 0
	return true, b.checkContract(r, s)
}

// checkContract verifies that a goal-satisfying state has zero distance to
// the goal. Violations are logged, and returned in strict mode.
func (b *base) checkContract(r *run, s space.State) error {
	d := b.pd.Goal().DistanceGoal(s)
	if d <= plango.GoalContractTolerance && !math.IsNaN(d) {
		return nil
	}
	gce := &plango.InvalidGoalContractError{State: s, Satisfied: true, Distance: d}
	r.logger.LogGoalContract(r.ctx, gce)
	if b.opts.strictGoalContract {
		return gce
	}
	return nil
}

func newPath(states []space.State) *plango.Path {
	p, _ := plango.NewPath(states...)
	return p
}
