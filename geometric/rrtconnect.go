package geometric

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/space"
)

// goalRootAttempts bounds the goal samples drawn per iteration while the
// goal tree has no root.
const goalRootAttempts = 10

// RRTConnect grows one tree from the start and one from goal samples and
// greedily connects them.
type RRTConnect struct {
	base
	maxDistance float64
}

// NewRRTConnect returns an RRT-Connect planner. maxDistance bounds the
// length of each tree edge.
func NewRRTConnect(pd *plango.ProblemDefinition, maxDistance float64, opts ...Option) (*RRTConnect, error) {
	if err := validateStep(maxDistance, 0); err != nil {
		return nil, fmt.Errorf("rrt-connect: %w", err)
	}
	b, err := newBase("RRTConnect", pd, opts)
	if err != nil {
		return nil, err
	}
	return &RRTConnect{base: b, maxDistance: maxDistance}, nil
}

// Setup implements Planner.
func (p *RRTConnect) Setup(checker plango.StateValidityChecker) error {
	return p.setup(checker, p.maxDistance)
}

type extendResult uint8

const (
	trapped extendResult = iota
	advanced
	reached
)

// extend grows t one step from its nearest node toward target.
func (p *RRTConnect) extend(t *tree, target space.State) (extendResult, int) {
	nearest, _ := t.nearest(target)
	next, d, whole := p.steer(nearest.State, target, p.maxDistance)
	if d == 0 {
		return reached, nearest.ID
	}
	if !p.validator.CheckMotion(nearest.State, next) {
		return trapped, noParent
	}
	id := t.add(next, nearest.ID, d)
	if whole {
		return reached, id
	}
	return advanced, id
}

// connect extends t toward target until it is reached or blocked.
func (p *RRTConnect) connect(t *tree, target space.State) (extendResult, int) {
	for {
		res, id := p.extend(t, target)
		if res != advanced {
			return res, id
		}
	}
}

// seedGoalTree adds valid, goal-satisfying samples as goal tree roots.
func (p *RRTConnect) seedGoalTree(r *run, goalTree *tree) error {
	for i := 0; i < goalRootAttempts; i++ {
		s, ok, err := p.sampleGoal()
		if err != nil {
			return err
		}
		if !ok || !p.validator.IsValid(s) {
			continue
		}
		if !p.pd.Goal().IsSatisfied(s) {
			continue
		}
		if err := p.checkContract(r, s); err != nil {
			return err
		}
		goalTree.addRoot(s)
		return nil
	}
	return nil
}

// Solve implements Planner.
func (p *RRTConnect) Solve(ctx context.Context, timeout time.Duration) (*Solution, error) {
	r, err := p.begin(ctx, timeout)
	if err != nil {
		return nil, err
	}

	sp := p.pd.Space()
	startTree := newTree(sp, p.opts.nnFactory)
	goalTree := newTree(sp, p.opts.nnFactory)
	root := startTree.addRoot(p.pd.Start())
	if ok, err := p.atGoal(r, startTree.state(root)); ok || err != nil {
		return p.finish(r, solvedAt(startTree, root), err)
	}

	a, b := startTree, goalTree
	for {
		ok, err := r.next()
		if err != nil {
			return p.finish(r, nil, err)
		}
		if !ok {
			break
		}

		if goalTree.len() == 0 {
			if err := p.seedGoalTree(r, goalTree); err != nil {
				return p.finish(r, nil, err)
			}
			if goalTree.len() == 0 {
				continue
			}
		}

		target, err := p.sample(0)
		if err != nil {
			return p.finish(r, nil, err)
		}
		res, newID := p.extend(a, target)
		if res != trapped {
			newState := a.state(newID)
			if a == startTree {
				hit, err := p.atGoal(r, newState)
				if err != nil {
					return p.finish(r, nil, err)
				}
				if hit {
					return p.finish(r, solvedAt(startTree, newID), nil)
				}
			}

			if res, otherID := p.connect(b, newState); res == reached {
				startID, goalID := newID, otherID
				if a == goalTree {
					startID, goalID = otherID, newID
				}
				return p.finish(r, p.joined(startTree, goalTree, startID, goalID), nil)
			}
		}

		a, b = b, a
		r.logProgress(startTree.len()+goalTree.len(), r.closest)
	}

	return p.finish(r, &Solution{Status: StatusExhausted, TreeSize: startTree.len() + goalTree.len()}, nil)
}

// joined concatenates the start branch ending at startID with the reversed
// goal branch ending at goalID. Both nodes hold the same state; it appears
// once in the path.
func (p *RRTConnect) joined(startTree, goalTree *tree, startID, goalID int) *Solution {
	states := startTree.pathTo(startID)
	tail := goalTree.pathTo(goalID)
	slices.Reverse(tail)
	states = append(states, tail[1:]...)

	path := newPath(states)
	return &Solution{
		Status:   StatusSolved,
		Path:     path,
		Cost:     path.Cost(p.pd.Space()),
		TreeSize: startTree.len() + goalTree.len(),
	}
}
