package plango

import (
	"errors"

	"github.com/hupe1980/plango/space"
)

// ProblemDefinition bundles the space, the start state and the goal.
// It is immutable once built.
type ProblemDefinition struct {
	space space.Space
	start space.State
	goal  Goal
}

// NewProblemDefinition validates start against sp and returns the problem.
func NewProblemDefinition(sp space.Space, start space.State, goal Goal) (*ProblemDefinition, error) {
	if sp == nil {
		return nil, errors.New("problem definition: space is required")
	}
	if err := sp.Validate(start); err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, errors.New("problem definition: goal is required")
	}
	return &ProblemDefinition{space: sp, start: start, goal: goal}, nil
}

func (pd *ProblemDefinition) Space() space.Space { return pd.space }
func (pd *ProblemDefinition) Start() space.State { return pd.start }
func (pd *ProblemDefinition) Goal() Goal         { return pd.goal }
