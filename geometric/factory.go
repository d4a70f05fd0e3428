package geometric

import (
	"fmt"

	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/config"
	"github.com/hupe1980/plango/nn"
)

// New builds the planner described by cfg. Options derived from cfg are
// applied first, so opts can override them.
func New(pd *plango.ProblemDefinition, cfg config.Planner, opts ...Option) (Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	factory, err := nn.FactoryFor(nn.Kind(cfg.NearestNeighbors))
	if err != nil {
		return nil, err
	}

	all := []Option{
		WithSeed(cfg.Seed),
		WithNearestNeighbors(factory),
		WithMaxIterations(cfg.MaxIterations),
		WithStrictGoalContract(cfg.StrictGoal),
	}
	if cfg.Resolution > 0 {
		all = append(all, WithResolution(cfg.Resolution))
	}
	all = append(all, opts...)

	switch cfg.Algorithm {
	case config.AlgorithmRRT:
		return planner(NewRRT(pd, cfg.MaxDistance, cfg.GoalBias, all...))
	case config.AlgorithmRRTConnect:
		return planner(NewRRTConnect(pd, cfg.MaxDistance, all...))
	case config.AlgorithmRRTStar:
		all = append([]Option{WithShrinkingRadius(cfg.Shrinking)}, all...)
		return planner(NewRRTStar(pd, cfg.MaxDistance, cfg.GoalBias, cfg.SearchRadius, all...))
	case config.AlgorithmPRM:
		all = append([]Option{WithMaxVertices(cfg.MaxVertices), WithWorkers(cfg.Workers)}, all...)
		return planner(NewPRM(pd, cfg.RoadmapTimeout, cfg.ConnectionRadius, all...))
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", config.ErrInvalid, cfg.Algorithm)
	}
}

// planner keeps a failed constructor from yielding a non-nil interface
// around a nil pointer.
func planner[P Planner](p P, err error) (Planner, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
