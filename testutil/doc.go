// Package testutil provides fixtures for planner tests and benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random States
//
//	rng := testutil.NewRNG(seed)
//	states := rng.States(sp, 100)
//
// # Scenarios
//
//	sc := testutil.WallScenario()
//	rrt, _ := geometric.NewRRT(sc.Problem, 0.5, 0.05)
//	rrt.Setup(sc.Checker)
//
// # Path Verification
//
//	err := testutil.VerifyPath(sc.Problem, sc.Checker, path, 0.01)
//
// # Ground Truth
//
//	nearest := testutil.BruteForceNearest(states, query, k, sp.Distance)
package testutil
