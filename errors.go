package plango

import (
	"errors"
	"fmt"

	"github.com/hupe1980/plango/space"
)

var (
	// ErrNotReady is returned when Solve is called before Setup, or when a
	// PRM is solved before its roadmap has been constructed.
	ErrNotReady = errors.New("planner is not ready")

	// ErrNoSolution is returned by Solution.Err when the budget ran out
	// without reaching the goal. Solve itself reports this as a result, not
	// an error.
	ErrNoSolution = errors.New("no solution found")

	// ErrInvalidStartState is returned when the start state is invalid or
	// outside the space bounds.
	ErrInvalidStartState = errors.New("invalid start state")

	// ErrGoalSampling is returned by Solve when the goal samples a state
	// that is not a well-formed state of the planning space.
	ErrGoalSampling = errors.New("goal sampling failed")

	// ErrConstruction matches every malformed space or state error.
	ErrConstruction = space.ErrConstruction
)

// ConstructionError reports a malformed space or state.
type ConstructionError = space.ConstructionError

// InvalidGoalContractError reports a state that satisfies the goal while
// DistanceGoal returns a value above GoalContractTolerance (or the reverse).
type InvalidGoalContractError struct {
	State     space.State
	Satisfied bool
	Distance  float64
}

func (e *InvalidGoalContractError) Error() string {
	return fmt.Sprintf("invalid goal contract: state %s satisfied=%t but distance to goal is %g", e.State, e.Satisfied, e.Distance)
}
