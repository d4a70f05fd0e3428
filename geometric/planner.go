package geometric

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/plango"
)

// ErrNoBudget is returned when Solve is given neither a positive timeout nor
// an iteration limit.
var ErrNoBudget = errors.New("solve requires a positive timeout or an iteration limit")

// Planner is a sampling-based planner bound to one problem definition.
//
// Planners are not safe for concurrent use; each Solve call owns the planner
// until it returns.
type Planner interface {
	// Name returns the algorithm name.
	Name() string

	// Setup binds the validity checker and seeds the RNG. It moves the
	// planner to StatusReady.
	Setup(checker plango.StateValidityChecker) error

	// Solve searches until the goal is reached or the budget is spent.
	// Running out of budget is not an error: the returned Solution has
	// StatusExhausted. Errors report misuse (plango.ErrNotReady,
	// plango.ErrInvalidStartState) or a cancelled context.
	Solve(ctx context.Context, timeout time.Duration) (*Solution, error)

	// Status returns the lifecycle state.
	Status() Status
}

// Status is the lifecycle state of a planner.
type Status uint8

const (
	StatusUnconfigured Status = iota
	StatusReady
	StatusSolving
	StatusSolved
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusUnconfigured:
		return "unconfigured"
	case StatusReady:
		return "ready"
	case StatusSolving:
		return "solving"
	case StatusSolved:
		return "solved"
	case StatusExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Solution is the result of a Solve call.
type Solution struct {
	Status Status
	// Path runs from the start state to a goal-satisfying state. It is nil
	// unless Status is StatusSolved.
	Path *plango.Path
	// Cost is the metric length of Path.
	Cost float64
	// Iterations counts loop iterations (PRM: search attempts).
	Iterations int
	// TreeSize is the number of tree nodes or roadmap vertices.
	TreeSize int
	// ClosestDistance is the smallest DistanceGoal over the states a tree
	// planner explored. PRM only measures the start state.
	ClosestDistance float64
	Duration        time.Duration
	// RunID tags the log lines and spans of this call.
	RunID string
}

// Found reports whether a path was found.
func (s *Solution) Found() bool { return s != nil && s.Status == StatusSolved }

// Err returns plango.ErrNoSolution when no path was found.
func (s *Solution) Err() error {
	if s.Found() {
		return nil
	}
	return plango.ErrNoSolution
}
