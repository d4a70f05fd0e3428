package plango

import (
	"math"
	"math/rand"

	"github.com/hupe1980/plango/space"
)

// GoalContractTolerance is the largest DistanceGoal value accepted for a
// state that satisfies the goal.
const GoalContractTolerance = 1e-6

// Goal is a region of acceptable terminal states.
//
// IsSatisfied and DistanceGoal must agree: DistanceGoal returns 0 exactly
// when IsSatisfied holds. Planners check this opportunistically at goal hits.
// SampleGoal may return states that are invalid for the validity checker;
// planners re-check them.
type Goal interface {
	IsSatisfied(s space.State) bool
	DistanceGoal(s space.State) float64
	SampleGoal(r *rand.Rand) (space.State, error)
}

// GoalFuncs adapts three callbacks to the Goal interface.
type GoalFuncs struct {
	Satisfied func(s space.State) bool
	Distance  func(s space.State) float64
	Sample    func(r *rand.Rand) (space.State, error)
}

func (g GoalFuncs) IsSatisfied(s space.State) bool               { return g.Satisfied(s) }
func (g GoalFuncs) DistanceGoal(s space.State) float64           { return g.Distance(s) }
func (g GoalFuncs) SampleGoal(r *rand.Rand) (space.State, error) { return g.Sample(r) }

// GoalState is the ball of radius Threshold around Target under the space
// metric. A zero threshold accepts only the target itself (within
// GoalContractTolerance).
type GoalState struct {
	Space     space.Space
	Target    space.State
	Threshold float64
}

// NewGoalState validates target against sp and returns the goal ball.
func NewGoalState(sp space.Space, target space.State, threshold float64) (*GoalState, error) {
	if err := sp.Validate(target); err != nil {
		return nil, err
	}
	if threshold < 0 || math.IsNaN(threshold) {
		threshold = 0
	}
	return &GoalState{Space: sp, Target: target, Threshold: threshold}, nil
}

func (g *GoalState) IsSatisfied(s space.State) bool {
	return g.Space.Distance(g.Target, s) <= g.Threshold+GoalContractTolerance
}

func (g *GoalState) DistanceGoal(s space.State) float64 {
	return math.Max(0, g.Space.Distance(g.Target, s)-g.Threshold)
}

// SampleGoal draws a state inside the ball by moving from the target toward
// a uniform space sample. Unbounded spaces always yield the target.
func (g *GoalState) SampleGoal(r *rand.Rand) (space.State, error) {
	if g.Threshold == 0 {
		return g.Target, nil
	}
	s, err := g.Space.Sample(r)
	if err != nil {
		return g.Target, nil
	}
	d := g.Space.Distance(g.Target, s)
	if d == 0 {
		return g.Target, nil
	}
	t := math.Min(1, r.Float64()*g.Threshold/d)
	return g.Space.Interpolate(g.Target, s, t), nil
}

// CheckGoalContract returns an *InvalidGoalContractError when s satisfies g
// but DistanceGoal(s) exceeds GoalContractTolerance.
func CheckGoalContract(g Goal, s space.State) error {
	if !g.IsSatisfied(s) {
		return nil
	}
	if d := g.DistanceGoal(s); d > GoalContractTolerance || math.IsNaN(d) {
		return &InvalidGoalContractError{State: s, Satisfied: true, Distance: d}
	}
	return nil
}
