package geometric

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/internal/telemetry"
	"github.com/hupe1980/plango/nn"
	"github.com/hupe1980/plango/space"
)

const (
	// densifyBatch is the number of samples drawn per densification round
	// when a query fails.
	densifyBatch = 16

	goalSamplesPerAttempt = 2
	maxGoalSamples        = 32
)

// PRM is the probabilistic roadmap planner. ConstructRoadmap builds a
// reusable graph of valid states; each Solve connects the start and goal
// samples to it as temporary vertices and runs a shortest-path search,
// densifying the roadmap while the query fails and time remains.
type PRM struct {
	base
	roadmapTimeout   time.Duration
	connectionRadius float64
	rm               *roadmap
	constructed      bool
}

// NewPRM returns a PRM planner. roadmapTimeout bounds ConstructRoadmap and
// connectionRadius is the neighbourhood each vertex is connected within.
func NewPRM(pd *plango.ProblemDefinition, roadmapTimeout time.Duration, connectionRadius float64, opts ...Option) (*PRM, error) {
	if !(connectionRadius > 0) {
		return nil, fmt.Errorf("prm: connection radius must be positive, got %g", connectionRadius)
	}
	if roadmapTimeout < 0 {
		return nil, fmt.Errorf("prm: roadmap timeout must not be negative, got %s", roadmapTimeout)
	}
	b, err := newBase("PRM", pd, opts)
	if err != nil {
		return nil, err
	}
	return &PRM{base: b, roadmapTimeout: roadmapTimeout, connectionRadius: connectionRadius}, nil
}

// Setup implements Planner. It discards any previous roadmap.
func (p *PRM) Setup(checker plango.StateValidityChecker) error {
	if err := p.setup(checker, p.connectionRadius); err != nil {
		return err
	}
	p.rm = newRoadmap(p.pd.Space(), p.opts.nnFactory)
	p.constructed = false
	return nil
}

// RoadmapStats returns the size of the current roadmap.
func (p *PRM) RoadmapStats() plango.RoadmapStats {
	if p.rm == nil {
		return plango.RoadmapStats{}
	}
	return plango.RoadmapStats{
		Vertices:   p.rm.len(),
		Edges:      p.rm.edges,
		Components: p.rm.uf.count,
	}
}

// ConstructRoadmap samples valid states until the roadmap timeout elapses
// (or WithMaxVertices is reached) and connects each to every vertex within
// the connection radius reachable by a valid motion. Calling it again grows
// the existing roadmap.
func (p *PRM) ConstructRoadmap(ctx context.Context) error {
	if p.status == StatusUnconfigured || p.rm == nil {
		return fmt.Errorf("%s: %w: call Setup before ConstructRoadmap", p.name, plango.ErrNotReady)
	}
	if p.roadmapTimeout <= 0 && p.opts.maxVertices == 0 {
		return fmt.Errorf("%s: %w", p.name, ErrNoBudget)
	}

	id := uuid.NewString()
	ctx, span := telemetry.StartRoadmapSpan(ctx, id)
	logger := p.opts.logger.WithPlanner(p.name).WithRunID(id)
	started := time.Now()
	deadline := started.Add(p.roadmapTimeout)
	checks0 := p.validator.Checks()

	var err error
	for {
		if err = ctx.Err(); err != nil {
			break
		}
		if p.opts.maxVertices > 0 && p.rm.len() >= p.opts.maxVertices {
			break
		}
		if p.roadmapTimeout > 0 && !time.Now().Before(deadline) {
			break
		}
		if err = p.grow(ctx); err != nil {
			break
		}
	}

	stats := p.RoadmapStats()
	stats.Duration = time.Since(started)
	stats.MotionChecks = p.validator.Checks() - checks0

	logger.LogRoadmap(ctx, stats, err)
	telemetry.EndSpan(span, "built", 0, stats.Vertices, err)
	if err != nil {
		return err
	}
	p.constructed = true
	p.opts.metricsCollector.RecordRoadmap(stats)
	telemetry.RecordRoadmap(ctx, stats.Duration, stats.Vertices)
	return nil
}

// grow draws one uniform sample and adds it to the roadmap if it is valid.
func (p *PRM) grow(ctx context.Context) error {
	s, err := p.pd.Space().Sample(p.rng)
	if err != nil {
		return fmt.Errorf("%s: %w", p.name, err)
	}
	if !p.validator.IsValid(s) {
		return nil
	}
	return p.addVertex(ctx, s)
}

func (p *PRM) addVertex(ctx context.Context, s space.State) error {
	cands := p.rm.index.NearestR(s, p.connectionRadius)
	ok, err := p.checkEdges(ctx, s, cands)
	if err != nil {
		return err
	}
	id := p.rm.addVertex(s, p.pd.Goal().IsSatisfied(s))
	for i, c := range cands {
		if ok[i] {
			p.rm.addEdge(id, c.ID, c.Distance)
		}
	}
	return nil
}

// checkEdges checks the motions from every candidate to s. With more than one
// worker the checks run concurrently; results keep candidate order.
func (p *PRM) checkEdges(ctx context.Context, s space.State, cands []nn.Neighbor) ([]bool, error) {
	ok := make([]bool, len(cands))
	if p.opts.workers <= 1 || len(cands) < 2 {
		for i, c := range cands {
			ok[i] = p.validator.CheckMotion(c.State, s)
		}
		return ok, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.workers)
	for i, c := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok[i] = p.validator.CheckMotion(c.State, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ok, nil
}

// connectOverlay links o to the roadmap vertices added since its last scan.
func (p *PRM) connectOverlay(ctx context.Context, o *overlay) error {
	n := p.rm.len()
	if o.scanned == n {
		return nil
	}
	var cands []nn.Neighbor
	for _, c := range p.rm.index.NearestR(o.state, p.connectionRadius) {
		if c.ID >= o.scanned {
			cands = append(cands, c)
		}
	}
	ok, err := p.checkEdges(ctx, o.state, cands)
	if err != nil {
		return err
	}
	for i, c := range cands {
		if ok[i] {
			o.edges = append(o.edges, edge{to: c.ID, cost: c.Distance})
		}
	}
	o.scanned = n
	return nil
}

// addGoalSamples draws goal samples and keeps the valid, goal-satisfying
// ones as overlay vertices.
func (p *PRM) addGoalSamples(r *run, q *query) error {
	sp := p.pd.Space()
	for i := 0; i < goalSamplesPerAttempt && len(q.goals) < maxGoalSamples; i++ {
		s, ok, err := p.sampleGoal()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if !p.validator.IsValid(s) || !p.pd.Goal().IsSatisfied(s) {
			continue
		}
		if err := p.checkContract(r, s); err != nil {
			return err
		}
		j := len(q.goals)
		q.goals = append(q.goals, &overlay{state: s})
		if d := sp.Distance(q.start.state, s); d <= p.connectionRadius && p.validator.CheckMotion(q.start.state, s) {
			q.direct = append(q.direct, edge{to: j, cost: d})
		}
	}
	return nil
}

// densify adds up to densifyBatch samples to the roadmap.
func (p *PRM) densify(r *run) error {
	for i := 0; i < densifyBatch && !r.expired(); i++ {
		if err := p.grow(r.ctx); err != nil {
			return err
		}
	}
	return nil
}

// Solve implements Planner. It requires a constructed roadmap.
func (p *PRM) Solve(ctx context.Context, timeout time.Duration) (*Solution, error) {
	if p.status != StatusUnconfigured && !p.constructed {
		return nil, fmt.Errorf("%s: %w: call ConstructRoadmap before Solve", p.name, plango.ErrNotReady)
	}
	r, err := p.begin(ctx, timeout)
	if err != nil {
		return nil, err
	}

	start := p.pd.Start()
	if ok, err := p.atGoal(r, start); ok || err != nil {
		return p.finish(r, &Solution{Status: StatusSolved, Path: newPath([]space.State{start}), TreeSize: p.rm.len()}, err)
	}

	q := &query{rm: p.rm, start: &overlay{state: start}}
	for {
		ok, err := r.next()
		if err != nil {
			return p.finish(r, nil, err)
		}
		if !ok {
			break
		}

		if err := p.addGoalSamples(r, q); err != nil {
			return p.finish(r, nil, err)
		}
		if err := p.connectOverlay(r.ctx, q.start); err != nil {
			return p.finish(r, nil, err)
		}
		for _, g := range q.goals {
			if err := p.connectOverlay(r.ctx, g); err != nil {
				return p.finish(r, nil, err)
			}
		}

		if q.connected() {
			if nodes, cost, found := q.shortestPath(); found {
				return p.finish(r, &Solution{
					Status:   StatusSolved,
					Path:     newPath(q.states(nodes)),
					Cost:     cost,
					TreeSize: p.rm.len(),
				}, nil)
			}
		}

		if err := p.densify(r); err != nil {
			return p.finish(r, nil, err)
		}
		r.logProgress(p.rm.len(), math.Inf(1))
	}

	return p.finish(r, &Solution{Status: StatusExhausted, TreeSize: p.rm.len()}, nil)
}
