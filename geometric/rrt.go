package geometric

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/plango"
)

// RRT is the rapidly-exploring random tree planner. It grows a single tree
// from the start and stops at the first node that satisfies the goal.
type RRT struct {
	base
	maxDistance float64
	goalBias    float64
}

// NewRRT returns an RRT planner. maxDistance bounds the length of each tree
// edge; goalBias in [0, 1] is the probability of sampling the goal.
func NewRRT(pd *plango.ProblemDefinition, maxDistance, goalBias float64, opts ...Option) (*RRT, error) {
	if err := validateStep(maxDistance, goalBias); err != nil {
		return nil, fmt.Errorf("rrt: %w", err)
	}
	b, err := newBase("RRT", pd, opts)
	if err != nil {
		return nil, err
	}
	return &RRT{base: b, maxDistance: maxDistance, goalBias: goalBias}, nil
}

// Setup implements Planner.
func (p *RRT) Setup(checker plango.StateValidityChecker) error {
	return p.setup(checker, p.maxDistance)
}

// Solve implements Planner.
func (p *RRT) Solve(ctx context.Context, timeout time.Duration) (*Solution, error) {
	r, err := p.begin(ctx, timeout)
	if err != nil {
		return nil, err
	}

	t := newTree(p.pd.Space(), p.opts.nnFactory)
	root := t.addRoot(p.pd.Start())
	if ok, err := p.atGoal(r, t.state(root)); ok || err != nil {
		return p.finish(r, solvedAt(t, root), err)
	}

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
		id := t.add(next, nearest.ID, d)

		hit, err := p.atGoal(r, next)
		if err != nil {
			return p.finish(r, nil, err)
		}
		if hit {
			return p.finish(r, solvedAt(t, id), nil)
		}
		r.logProgress(t.len(), r.closest)
	}

	return p.finish(r, &Solution{Status: StatusExhausted, TreeSize: t.len()}, nil)
}

// solvedAt builds the solution ending at node id.
func solvedAt(t *tree, id int) *Solution {
	return &Solution{
		Status:   StatusSolved,
		Path:     newPath(t.pathTo(id)),
		Cost:     t.cost(id),
		TreeSize: t.len(),
	}
}

func validateStep(maxDistance, goalBias float64) error {
	if !(maxDistance > 0) {
		return fmt.Errorf("max distance must be positive, got %g", maxDistance)
	}
	if !(goalBias >= 0 && goalBias <= 1) {
		return fmt.Errorf("goal bias must lie in [0, 1], got %g", goalBias)
	}
	return nil
}
