// Package plango provides sampling-based motion planning for Go.
//
// A planning problem consists of a configuration space (package space), a
// start state, a goal region and a validity predicate. The planners in
// package geometric (RRT, RRT-Connect, RRT* and PRM) search for a
// collision-free path from the start to any state satisfying the goal.
//
// # Quick Start
//
//	sp, _ := space.NewRealVectorSpace(2,
//		space.Bounds{Low: 0, High: 10},
//		space.Bounds{Low: 0, High: 10},
//	)
//	start := space.NewRealVectorState(1, 5)
//	goal, _ := plango.NewGoalState(sp, space.NewRealVectorState(9, 5), 0.5)
//	pd, _ := plango.NewProblemDefinition(sp, start, goal)
//
//	planner, err := geometric.NewRRT(pd, 0.5, 0.05, geometric.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//	_ = planner.Setup(plango.ValidityFunc(func(s space.State) bool { return true }))
//
//	sol, err := planner.Solve(ctx, 5*time.Second)
//	if err != nil {
//		// misuse: not ready, invalid start, cancelled context
//	}
//	if sol.Found() {
//		fmt.Println(sol.Path.Len(), sol.Cost)
//	}
//
// Planners can also be described in YAML and built with geometric.New; see
// package config.
//
// # Outcomes
//
// Solve distinguishes misuse from an unsuccessful search: a budget that runs
// out without reaching the goal yields a Solution with StatusExhausted and a
// nil error. ErrNotReady, ErrInvalidStartState and construction errors are
// returned as errors.
//
// # Observability
//
// Planners log through Logger (a thin log/slog wrapper), report per-call
// statistics to a MetricsCollector and emit OpenTelemetry spans. All three
// are no-ops unless configured.
package plango
