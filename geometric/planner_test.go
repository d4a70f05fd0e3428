package geometric

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/nn"
	"github.com/hupe1980/plango/space"
	"github.com/hupe1980/plango/testutil"
)

// testTimeout is generous; the tests bound runs by iteration counts so
// results do not depend on machine speed.
const testTimeout = 30 * time.Second

type plannerCase struct {
	name  string
	build func(pd *plango.ProblemDefinition, opts ...Option) (Planner, error)
}

func plannerCases() []plannerCase {
	return []plannerCase{
		{"RRT", func(pd *plango.ProblemDefinition, opts ...Option) (Planner, error) {
			return planner(NewRRT(pd, 0.5, 0.05, opts...))
		}},
		{"RRTConnect", func(pd *plango.ProblemDefinition, opts ...Option) (Planner, error) {
			return planner(NewRRTConnect(pd, 0.5, opts...))
		}},
		{"RRTStar", func(pd *plango.ProblemDefinition, opts ...Option) (Planner, error) {
			return planner(NewRRTStar(pd, 0.5, 0.05, 1.5, opts...))
		}},
		{"PRM", func(pd *plango.ProblemDefinition, opts ...Option) (Planner, error) {
			opts = append([]Option{WithMaxVertices(500)}, opts...)
			return planner(NewPRM(pd, 0, 1.0, opts...))
		}},
	}
}

// prepare runs Setup and, for PRM, ConstructRoadmap.
func prepare(t *testing.T, p Planner, checker plango.StateValidityChecker) {
	t.Helper()
	require.NoError(t, p.Setup(checker))
	require.Equal(t, StatusReady, p.Status())
	if prm, ok := p.(*PRM); ok {
		require.NoError(t, prm.ConstructRoadmap(context.Background()))
	}
}

func TestPlannersSolveWall(t *testing.T) {
	for _, tc := range plannerCases() {
		t.Run(tc.name, func(t *testing.T) {
			sc := testutil.WallScenario()
			p, err := tc.build(sc.Problem, WithSeed(42), WithMaxIterations(5000))
			require.NoError(t, err)
			assert.Equal(t, StatusUnconfigured, p.Status())
			prepare(t, p, sc.Checker)

			sol, err := p.Solve(context.Background(), testTimeout)
			require.NoError(t, err)
			require.True(t, sol.Found(), "status %s after %d iterations", sol.Status, sol.Iterations)
			assert.NoError(t, sol.Err())
			assert.Equal(t, StatusSolved, p.Status())

			assert.Greater(t, sol.Path.Len(), 1)
			assert.NoError(t, testutil.VerifyPath(sc.Problem, sc.Exact, sol.Path, 0.01))
			assert.InDelta(t, sol.Path.Cost(sc.Space), sol.Cost, 1e-6)
			// Straight line is 8 long minus the goal radius; the wall forces a detour.
			assert.Greater(t, sol.Cost, 7.5)
			assert.Zero(t, sol.ClosestDistance)
			assert.NotEmpty(t, sol.RunID)
			assert.Positive(t, sol.TreeSize)
		})
	}
}

func TestRRTSolvesExactWall(t *testing.T) {
	sc := testutil.WallScenario()
	p, err := NewRRT(sc.Problem, 0.5, 0.05, WithSeed(42), WithMaxIterations(5000))
	require.NoError(t, err)
	require.NoError(t, p.Setup(sc.Exact))

	sol, err := p.Solve(context.Background(), testTimeout)
	require.NoError(t, err)
	require.True(t, sol.Found())
	assert.Greater(t, sol.Path.Len(), 1)
	assert.Greater(t, sol.Cost, 7.5)
	for i, s := range sol.Path.States() {
		v := s.(space.RealVectorState)
		assert.False(t, sc.Wall.Contains(v.At(0), v.At(1)), "waypoint %d %s is inside the wall", i, s)
	}
	// Every motion-check sample of the path is outside the wall.
	segment := DefaultResolution * sc.Space.MaximumExtent()
	mv, err := plango.NewMotionValidator(sc.Space, sc.Exact, segment)
	require.NoError(t, err)
	for i := 1; i < sol.Path.Len(); i++ {
		assert.True(t, mv.CheckMotion(sol.Path.State(i-1), sol.Path.State(i)), "edge %d", i)
	}
}

func TestPlannersSolveForbiddenArc(t *testing.T) {
	for _, tc := range plannerCases() {
		t.Run(tc.name, func(t *testing.T) {
			sc := testutil.ArcScenario()
			p, err := tc.build(sc.Problem, WithSeed(3), WithMaxIterations(5000))
			require.NoError(t, err)
			prepare(t, p, sc.Checker)

			sol, err := p.Solve(context.Background(), testTimeout)
			require.NoError(t, err)
			require.True(t, sol.Found())
			assert.NoError(t, testutil.VerifyPath(sc.Problem, sc.Exact, sol.Path, 0.01))

			// The short way through 0 is blocked, so the path wraps through ±π.
			var crossed bool
			dense := sol.Path.Interpolate(sc.Space, 0.01)
			for i := 0; i < dense.Len(); i++ {
				if math.Abs(dense.State(i).(space.SO2State).Value()) > 3 {
					crossed = true
				}
			}
			assert.True(t, crossed)
		})
	}
}

func TestPlannersExhaustWhenBlocked(t *testing.T) {
	for _, tc := range plannerCases() {
		t.Run(tc.name, func(t *testing.T) {
			sc := testutil.BlockedScenario()
			p, err := tc.build(sc.Problem, WithSeed(5), WithMaxIterations(300))
			require.NoError(t, err)
			prepare(t, p, sc.Checker)

			sol, err := p.Solve(context.Background(), testTimeout)
			require.NoError(t, err)
			assert.False(t, sol.Found())
			assert.Equal(t, StatusExhausted, sol.Status)
			assert.Equal(t, StatusExhausted, p.Status())
			assert.ErrorIs(t, sol.Err(), plango.ErrNoSolution)
			assert.Nil(t, sol.Path)
			assert.Equal(t, 300, sol.Iterations)
			// Nothing left of the wall comes within 3.9 of the goal disk.
			assert.Greater(t, sol.ClosestDistance, 3.5)
		})
	}
}

func TestPRMExhaustsOnTimeout(t *testing.T) {
	sc := testutil.BlockedScenario()
	p, err := NewPRM(sc.Problem, 50*time.Millisecond, 1.0, WithSeed(9))
	require.NoError(t, err)
	prepare(t, p, sc.Checker)
	assert.Positive(t, p.RoadmapStats().Vertices)
	assert.GreaterOrEqual(t, p.RoadmapStats().Components, 2)

	start := time.Now()
	sol, err := p.Solve(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, StatusExhausted, sol.Status)
	assert.Less(t, time.Since(start), 5*time.Second)
	// PRM measures only the start state.
	assert.InDelta(t, 7.5, sol.ClosestDistance, 1e-9)
}

func TestSolveBeforeSetup(t *testing.T) {
	for _, tc := range plannerCases() {
		t.Run(tc.name, func(t *testing.T) {
			sc := testutil.WallScenario()
			p, err := tc.build(sc.Problem)
			require.NoError(t, err)

			_, err = p.Solve(context.Background(), time.Second)
			assert.ErrorIs(t, err, plango.ErrNotReady)
			assert.Equal(t, StatusUnconfigured, p.Status())
		})
	}
}

func TestPRMRequiresRoadmap(t *testing.T) {
	sc := testutil.WallScenario()
	p, err := NewPRM(sc.Problem, time.Second, 1.0)
	require.NoError(t, err)

	assert.ErrorIs(t, p.ConstructRoadmap(context.Background()), plango.ErrNotReady)
	require.NoError(t, p.Setup(sc.Checker))
	_, err = p.Solve(context.Background(), time.Second)
	assert.ErrorIs(t, err, plango.ErrNotReady)
}

func TestSolveBudgetAndContext(t *testing.T) {
	sc := testutil.WallScenario()
	p, err := NewRRT(sc.Problem, 0.5, 0.05)
	require.NoError(t, err)
	require.NoError(t, p.Setup(sc.Checker))

	_, err = p.Solve(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoBudget)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Solve(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusReady, p.Status())
}

func TestInvalidStartState(t *testing.T) {
	sc := testutil.WallScenario()
	pd, err := plango.NewProblemDefinition(sc.Space, space.NewRealVectorState(5, 5), sc.Problem.Goal())
	require.NoError(t, err)

	for _, tc := range plannerCases() {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.build(pd, WithMaxIterations(10))
			require.NoError(t, err)
			prepare(t, p, sc.Checker)

			_, err = p.Solve(context.Background(), time.Second)
			assert.ErrorIs(t, err, plango.ErrInvalidStartState)
		})
	}
}

func TestStartInsideGoal(t *testing.T) {
	sc := testutil.WallScenario()
	pd, err := plango.NewProblemDefinition(sc.Space, space.NewRealVectorState(9, 5.2), sc.Problem.Goal())
	require.NoError(t, err)

	for _, tc := range plannerCases() {
		t.Run(tc.name, func(t *testing.T) {
			p, err := tc.build(pd, WithMaxIterations(10))
			require.NoError(t, err)
			prepare(t, p, sc.Checker)

			sol, err := p.Solve(context.Background(), time.Second)
			require.NoError(t, err)
			require.True(t, sol.Found())
			assert.Equal(t, 1, sol.Path.Len())
			assert.Zero(t, sol.Cost)
			assert.Zero(t, sol.Iterations)
		})
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	for _, tc := range plannerCases() {
		t.Run(tc.name, func(t *testing.T) {
			sc := testutil.WallScenario()
			solve := func(p Planner) *Solution {
				prepare(t, p, sc.Checker)
				sol, err := p.Solve(context.Background(), testTimeout)
				require.NoError(t, err)
				require.True(t, sol.Found())
				return sol
			}

			linear, err := nn.FactoryFor(nn.KindLinear)
			require.NoError(t, err)
			p1, err := tc.build(sc.Problem, WithSeed(11), WithMaxIterations(5000), WithNearestNeighbors(linear))
			require.NoError(t, err)
			p2, err := tc.build(sc.Problem, WithSeed(11), WithMaxIterations(5000))
			require.NoError(t, err)

			a, b := solve(p1), solve(p2)
			assert.Equal(t, a.Path.States(), b.Path.States())
			assert.Equal(t, a.Iterations, b.Iterations)

			// Setup re-seeds, so the same planner repeats its search.
			again := solve(p1)
			assert.Equal(t, a.Path.States(), again.Path.States())
		})
	}
}

func TestRRTStarCostImprovesWithBudget(t *testing.T) {
	sc := testutil.WallScenario()
	prev := math.Inf(1)
	for _, budget := range []int{1500, 3000, 6000} {
		p, err := NewRRTStar(sc.Problem, 0.5, 0.05, 1.5, WithSeed(21), WithMaxIterations(budget))
		require.NoError(t, err)
		require.NoError(t, p.Setup(sc.Checker))

		sol, err := p.Solve(context.Background(), testTimeout)
		require.NoError(t, err)
		require.True(t, sol.Found(), "budget %d", budget)
		assert.Equal(t, budget, sol.Iterations)
		assert.LessOrEqual(t, sol.Cost, prev+1e-9, "budget %d", budget)
		assert.InDelta(t, sol.Path.Cost(sc.Space), sol.Cost, 1e-6)
		prev = sol.Cost
	}
}

func TestRRTStarRadius(t *testing.T) {
	sc := testutil.WallScenario()
	fixed, err := NewRRTStar(sc.Problem, 0.5, 0.05, 20)
	require.NoError(t, err)
	assert.Equal(t, 20.0, fixed.radius(1000))

	shrinking, err := NewRRTStar(sc.Problem, 0.5, 0.05, 20, WithShrinkingRadius(true))
	require.NoError(t, err)
	assert.Equal(t, 20.0, shrinking.radius(1))
	r := shrinking.radius(1000)
	assert.InDelta(t, 20*math.Sqrt(math.Log(1000)/1000), r, 1e-12)
	assert.Equal(t, 0.5, shrinking.radius(1_000_000))
}

func TestPRMWorkersMatchSequential(t *testing.T) {
	sc := testutil.WallScenario()
	build := func(workers int) (*PRM, *Solution) {
		p, err := NewPRM(sc.Problem, 0, 1.0, WithSeed(13), WithMaxVertices(400), WithWorkers(workers), WithMaxIterations(200))
		require.NoError(t, err)
		prepare(t, p, sc.Checker)
		sol, err := p.Solve(context.Background(), testTimeout)
		require.NoError(t, err)
		return p, sol
	}

	seq, seqSol := build(1)
	par, parSol := build(4)
	assert.Equal(t, seq.RoadmapStats(), par.RoadmapStats())
	assert.Equal(t, seq.rm.adj, par.rm.adj)
	assert.Equal(t, seqSol.Status, parSol.Status)
	if seqSol.Found() {
		assert.Equal(t, seqSol.Path.States(), parSol.Path.States())
	}
}

func TestPRMRoadmapGrowsAcrossCalls(t *testing.T) {
	sc := testutil.WallScenario()
	p, err := NewPRM(sc.Problem, 0, 1.0, WithMaxVertices(100))
	require.NoError(t, err)
	prepare(t, p, sc.Checker)
	assert.Equal(t, 100, p.RoadmapStats().Vertices)

	// The vertex cap is already met, so a second call adds nothing.
	require.NoError(t, p.ConstructRoadmap(context.Background()))
	assert.Equal(t, 100, p.RoadmapStats().Vertices)

	// Setup discards the roadmap.
	require.NoError(t, p.Setup(sc.Checker))
	assert.Zero(t, p.RoadmapStats().Vertices)
}

func TestGoalContract(t *testing.T) {
	sc := testutil.WallScenario()
	// Satisfied and Distance disagree on the goal region.
	broken := plango.GoalFuncs{
		Satisfied: func(s space.State) bool { return s.(space.RealVectorState).At(0) > 3 },
		Distance:  func(space.State) float64 { return 1 },
		Sample: func(*rand.Rand) (space.State, error) {
			return space.NewRealVectorState(3.5, 5), nil
		},
	}
	pd, err := plango.NewProblemDefinition(sc.Space, space.NewRealVectorState(1, 5), broken)
	require.NoError(t, err)

	var buf bytes.Buffer
	lenient, err := NewRRT(pd, 0.5, 0.05, WithMaxIterations(5000), WithLogger(plango.NewLogger(slog.NewJSONHandler(&buf, nil))))
	require.NoError(t, err)
	require.NoError(t, lenient.Setup(sc.Checker))
	sol, err := lenient.Solve(context.Background(), testTimeout)
	require.NoError(t, err)
	assert.True(t, sol.Found())
	assert.Contains(t, buf.String(), "goal contract")

	strict, err := NewRRT(pd, 0.5, 0.05, WithMaxIterations(5000), WithStrictGoalContract(true))
	require.NoError(t, err)
	require.NoError(t, strict.Setup(sc.Checker))
	_, err = strict.Solve(context.Background(), testTimeout)
	var gce *plango.InvalidGoalContractError
	require.True(t, errors.As(err, &gce))
	assert.True(t, gce.Satisfied)
	assert.Equal(t, 1.0, gce.Distance)
	assert.Equal(t, StatusReady, strict.Status())
}

func TestMalformedGoalSample(t *testing.T) {
	for _, tc := range plannerCases() {
		t.Run(tc.name, func(t *testing.T) {
			sc := testutil.WallScenario()
			goal := sc.Problem.Goal()
			malformed := plango.GoalFuncs{
				Satisfied: goal.IsSatisfied,
				Distance:  goal.DistanceGoal,
				Sample: func(*rand.Rand) (space.State, error) {
					return space.NewRealVectorState(9, 5, 0), nil
				},
			}
			pd, err := plango.NewProblemDefinition(sc.Space, sc.Problem.Start(), malformed)
			require.NoError(t, err)

			p, err := tc.build(pd, WithSeed(42), WithMaxIterations(5000))
			require.NoError(t, err)
			prepare(t, p, sc.Checker)

			sol, err := p.Solve(context.Background(), testTimeout)
			require.Error(t, err)
			assert.Nil(t, sol)
			assert.ErrorIs(t, err, plango.ErrGoalSampling)
			assert.ErrorIs(t, err, plango.ErrConstruction)
			assert.Equal(t, StatusReady, p.Status())
		})
	}
}

type spaceCase struct {
	name     string
	pd       *plango.ProblemDefinition
	checker  plango.StateValidityChecker
	exact    plango.StateValidityChecker
	maxIters int
}

func spaceCases(t *testing.T) []spaceCase {
	t.Helper()
	free := plango.ValidityFunc(func(space.State) bool { return true })

	so3, err := space.NewSO3Space()
	require.NoError(t, err)
	so3Goal, err := plango.NewGoalState(so3, space.SO3FromAxisAngle(0, 0, 1, 2.4), 0.25)
	require.NoError(t, err)
	so3PD, err := plango.NewProblemDefinition(so3, space.SO3Identity(), so3Goal)
	require.NoError(t, err)

	// A small cube sits on the straight line between start and goal.
	cube := func(margin float64) plango.ValidityFunc {
		lo, hi := 0.8-margin, 1.2+margin
		in := func(v float64) bool { return v >= lo && v <= hi }
		return func(s space.State) bool {
			p := s.(space.SE3State)
			return !(in(p.X()) && in(p.Y()) && in(p.Z()))
		}
	}
	b := space.Bounds{Low: 0, High: 2}
	se3, err := space.NewSE3Space(0.5, b, b, b)
	require.NoError(t, err)
	se3Goal, err := plango.NewGoalState(se3, space.NewSE3State(1.8, 1.8, 1.8, space.SO3FromAxisAngle(0, 0, 1, 1)), 0.4)
	require.NoError(t, err)
	se3PD, err := plango.NewProblemDefinition(se3, space.NewSE3State(0.2, 0.2, 0.2, space.SO3Identity()), se3Goal)
	require.NoError(t, err)

	// The wall only constrains the position component.
	wall := testutil.Box{MinX: 4.75, MinY: 4, MaxX: 5.25, MaxY: 6}
	onPosition := func(check plango.ValidityFunc) plango.ValidityFunc {
		return func(s space.State) bool {
			return check(s.(space.CompoundState).Component(0))
		}
	}
	plane, err := space.NewRealVectorSpace(2, space.Bounds{Low: 0, High: 10}, space.Bounds{Low: 0, High: 10})
	require.NoError(t, err)
	heading, err := space.NewSO2Space()
	require.NoError(t, err)
	compound, err := space.NewCompoundBuilder().Add(plane, 1).Add(heading, 0.5).Build()
	require.NoError(t, err)
	compoundStart, err := space.NewCompoundState(space.NewRealVectorState(1, 5), space.NewSO2State(0))
	require.NoError(t, err)
	compoundTarget, err := space.NewCompoundState(space.NewRealVectorState(9, 5), space.NewSO2State(math.Pi/2))
	require.NoError(t, err)
	compoundGoal, err := plango.NewGoalState(compound, compoundTarget, 0.5)
	require.NoError(t, err)
	compoundPD, err := plango.NewProblemDefinition(compound, compoundStart, compoundGoal)
	require.NoError(t, err)

	return []spaceCase{
		{"SO3", so3PD, free, free, 500},
		{"SE3", se3PD, cube(0.1), cube(0), 1500},
		{"Compound", compoundPD, onPosition(testutil.Obstacles(wall.Inflate(testutil.WallMargin))), onPosition(testutil.Obstacles(wall)), 3000},
	}
}

func TestPlannersSolveAcrossSpaces(t *testing.T) {
	for _, sc := range spaceCases(t) {
		for _, tc := range plannerCases() {
			t.Run(sc.name+"/"+tc.name, func(t *testing.T) {
				p, err := tc.build(sc.pd, WithSeed(11), WithMaxIterations(sc.maxIters))
				require.NoError(t, err)
				prepare(t, p, sc.checker)

				sol, err := p.Solve(context.Background(), testTimeout)
				require.NoError(t, err)
				require.True(t, sol.Found(), "status %s after %d iterations", sol.Status, sol.Iterations)
				assert.NoError(t, testutil.VerifyPath(sc.pd, sc.exact, sol.Path, 0.01))
				assert.InDelta(t, sol.Path.Cost(sc.pd.Space()), sol.Cost, 1e-6)
			})
		}
	}
}

func TestMetricsCollector(t *testing.T) {
	sc := testutil.WallScenario()
	metrics := &plango.BasicMetricsCollector{}
	p, err := NewPRM(sc.Problem, 0, 1.0, WithMaxVertices(300), WithMaxIterations(500), WithMetricsCollector(metrics))
	require.NoError(t, err)
	prepare(t, p, sc.Checker)

	_, err = p.Solve(context.Background(), testTimeout)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.RoadmapCount)
	assert.Equal(t, int64(300), stats.RoadmapVertices)
	assert.Equal(t, int64(1), stats.SolveCount)
	assert.Zero(t, stats.SolveErrors)
	assert.Positive(t, stats.MotionChecks)
}

func TestSE2Planning(t *testing.T) {
	sp, err := space.NewSE2Space(1, space.Bounds{Low: 0, High: 10}, space.Bounds{Low: 0, High: 10})
	require.NoError(t, err)
	goal, err := plango.NewGoalState(sp, space.NewSE2State(9, 9, math.Pi/2), 0.5)
	require.NoError(t, err)
	pd, err := plango.NewProblemDefinition(sp, space.NewSE2State(1, 1, 0), goal)
	require.NoError(t, err)

	free := plango.ValidityFunc(func(space.State) bool { return true })
	p, err := NewRRTConnect(pd, 1, WithSeed(1), WithMaxIterations(5000))
	require.NoError(t, err)
	require.NoError(t, p.Setup(free))

	sol, err := p.Solve(context.Background(), testTimeout)
	require.NoError(t, err)
	require.True(t, sol.Found())
	assert.NoError(t, testutil.VerifyPath(pd, free, sol.Path, 0.05))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "solved", StatusSolved.String())
	assert.Equal(t, "exhausted", StatusExhausted.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
