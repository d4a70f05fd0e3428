package geometric

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/nn"
	"github.com/hupe1980/plango/space"
)

// rewireEpsilon is the smallest cost improvement that triggers a rewire.
const rewireEpsilon = 1e-12

// RRTStar is the asymptotically optimal RRT. It keeps sampling for the full
// budget after the first goal hit, rewiring the tree toward lower costs, and
// returns the cheapest goal node found.
type RRTStar struct {
	base
	maxDistance  float64
	goalBias     float64
	searchRadius float64
}

// NewRRTStar returns an RRT* planner. searchRadius is the neighbourhood
// considered for parent selection and rewiring; with
// WithShrinkingRadius(true) it is the upper bound of a radius that shrinks
// as the tree grows.
func NewRRTStar(pd *plango.ProblemDefinition, maxDistance, goalBias, searchRadius float64, opts ...Option) (*RRTStar, error) {
	if err := validateStep(maxDistance, goalBias); err != nil {
		return nil, fmt.Errorf("rrt*: %w", err)
	}
	if !(searchRadius > 0) {
		return nil, fmt.Errorf("rrt*: search radius must be positive, got %g", searchRadius)
	}
	b, err := newBase("RRTStar", pd, opts)
	if err != nil {
		return nil, err
	}
	return &RRTStar{base: b, maxDistance: maxDistance, goalBias: goalBias, searchRadius: searchRadius}, nil
}

// Setup implements Planner.
func (p *RRTStar) Setup(checker plango.StateValidityChecker) error {
	return p.setup(checker, p.maxDistance)
}

// radius returns the neighbourhood radius for a tree of n nodes.
func (p *RRTStar) radius(n int) float64 {
	if !p.opts.shrinkingRadius || n < 2 {
		return p.searchRadius
	}
	dim := float64(p.pd.Space().Dimension())
	fn := float64(n)
	r := p.searchRadius * math.Pow(math.Log(fn)/fn, 1/dim)
	return math.Min(p.searchRadius, math.Max(p.maxDistance, r))
}

type parentCandidate struct {
	id   int
	cost float64
	edge float64
}

// Solve implements Planner.
func (p *RRTStar) Solve(ctx context.Context, timeout time.Duration) (*Solution, error) {
	r, err := p.begin(ctx, timeout)
	if err != nil {
		return nil, err
	}

	sp := p.pd.Space()
	t := newTree(sp, p.opts.nnFactory)
	root := t.addRoot(p.pd.Start())
	if ok, err := p.atGoal(r, t.state(root)); ok || err != nil {
		return p.finish(r, solvedAt(t, root), err)
	}

	var goals []int
	best := noParent
	for {
		ok, err := r.next()
		if err != nil {
			return p.finish(r, nil, err)
		}
		if !ok {
			break
		}

		target, err := p.sample(p.goalBias)
		if err != nil {
			return p.finish(r, nil, err)
		}
		nearest, _ := t.nearest(target)
		next, d, _ := p.steer(nearest.State, target, p.maxDistance)
		if d == 0 || !p.validator.CheckMotion(nearest.State, next) {
			continue
		}

		near := t.near(next, p.radius(t.len()))
		parent := p.chooseParent(t, nearest, d, next, near)
		id := t.add(next, parent.id, parent.edge)
		p.rewire(t, id, near)

		hit, err := p.atGoal(r, next)
		if err != nil {
			return p.finish(r, nil, err)
		}
		if hit {
			goals = append(goals, id)
		}
		best = cheapest(t, goals)

		bestCost := math.Inf(1)
		if best != noParent {
			bestCost = t.cost(best)
		}
		r.logProgress(t.len(), bestCost)
	}

	if best == noParent {
		return p.finish(r, &Solution{Status: StatusExhausted, TreeSize: t.len()}, nil)
	}
	return p.finish(r, solvedAt(t, best), nil)
}

// chooseParent picks the neighbour minimising cost-to-come through it among
// those with a valid motion to s. The nearest node, already checked by the
// caller, is the fallback.
func (p *RRTStar) chooseParent(t *tree, nearest nn.Neighbor, d float64, s space.State, near []nn.Neighbor) parentCandidate {
	best := parentCandidate{id: nearest.ID, cost: t.cost(nearest.ID) + d, edge: d}

	cands := make([]parentCandidate, 0, len(near))
	for _, n := range near {
		if n.ID == nearest.ID {
			continue
		}
		if c := t.cost(n.ID) + n.Distance; c < best.cost {
			cands = append(cands, parentCandidate{id: n.ID, cost: c, edge: n.Distance})
		}
	}
	slices.SortFunc(cands, func(a, b parentCandidate) int {
		switch {
		case a.cost < b.cost:
			return -1
		case a.cost > b.cost:
			return 1
		default:
			return a.id - b.id
		}
	})
	for _, c := range cands {
		if p.validator.CheckMotion(t.state(c.id), s) {
			return c
		}
	}
	return best
}

// rewire re-parents every neighbour whose cost strictly drops when reached
// through id, propagating the new costs to its descendants.
func (p *RRTStar) rewire(t *tree, id int, near []nn.Neighbor) {
	s := t.state(id)
	parent := t.parent(id)
	for _, n := range near {
		if n.ID == parent {
			continue
		}
		c := t.cost(id) + n.Distance
		if c >= t.cost(n.ID)-rewireEpsilon {
			continue
		}
		if p.validator.CheckMotion(s, n.State) {
			t.reparent(n.ID, id, n.Distance)
		}
	}
}

// cheapest returns the goal node with the lowest cost, or noParent.
func cheapest(t *tree, goals []int) int {
	best := noParent
	for _, g := range goals {
		if best == noParent || t.cost(g) < t.cost(best) {
			best = g
		}
	}
	return best
}
