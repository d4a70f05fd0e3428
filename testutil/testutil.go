package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/plango"
	"github.com/hupe1980/plango/space"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// States draws n uniform samples from sp. It panics if sp cannot be
// sampled.
func (r *RNG) States(sp space.Space, n int) []space.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]space.State, n)
	for i := range out {
		s, err := sp.Sample(r.rand)
		if err != nil {
			panic(err)
		}
		out[i] = s
	}
	return out
}

// GaussianVectors draws n real vectors of dimension dim around the origin.
// Useful for unbounded spaces that cannot be sampled uniformly.
func (r *RNG) GaussianVectors(n, dim int, sigma float64) []space.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]space.State, n)
	v := make([]float64, dim)
	for i := range out {
		for j := range v {
			v[j] = r.rand.NormFloat64() * sigma
		}
		out[i] = space.NewRealVectorState(v...)
	}
	return out
}

// Box is an axis-aligned rectangle in the plane.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether (x, y) lies in the closed box.
func (b Box) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Inflate grows the box by m on every side.
func (b Box) Inflate(m float64) Box {
	return Box{MinX: b.MinX - m, MinY: b.MinY - m, MaxX: b.MaxX + m, MaxY: b.MaxY + m}
}

// Obstacles returns a validity checker for 2-D real vector states that
// rejects every state inside one of the boxes.
func Obstacles(boxes ...Box) plango.ValidityFunc {
	return func(s space.State) bool {
		v := s.(space.RealVectorState)
		for _, b := range boxes {
			if b.Contains(v.At(0), v.At(1)) {
				return false
			}
		}
		return true
	}
}

// ForbiddenArc returns a validity checker for SO2 states that rejects
// angles strictly inside (lo, hi).
func ForbiddenArc(lo, hi float64) plango.ValidityFunc {
	return func(s space.State) bool {
		a := s.(space.SO2State).Value()
		return a <= lo || a >= hi
	}
}

// WallMargin is how far the planning checker of the wall scenarios inflates
// the wall. It exceeds the default motion-check segment of the 10×10 square
// (0.01·√200), so a motion accepted by Checker never touches the real wall.
const WallMargin = 0.15

// Scenario bundles a problem with the validity checker it is meant to be
// solved against. Exact is the obstacle set paths are verified against;
// Checker may be more conservative.
type Scenario struct {
	Space   space.Space
	Problem *plango.ProblemDefinition
	Checker plango.StateValidityChecker
	Exact   plango.StateValidityChecker
	Wall    Box
}

// WallScenario is the 10×10 square with a wall at x ∈ [4.75, 5.25],
// y ∈ [2, 8]. The start is (1, 5) and the goal a disk of radius 0.5 at
// (9, 5).
func WallScenario() Scenario {
	wall := Box{MinX: 4.75, MinY: 2, MaxX: 5.25, MaxY: 8}
	return planarScenario(wall)
}

// BlockedScenario is WallScenario with a wall spanning the full height, so
// no path exists.
func BlockedScenario() Scenario {
	wall := Box{MinX: 4.75, MinY: 0, MaxX: 5.25, MaxY: 10}
	return planarScenario(wall)
}

func planarScenario(wall Box) Scenario {
	sp := must(space.NewRealVectorSpace(2, space.Bounds{Low: 0, High: 10}, space.Bounds{Low: 0, High: 10}))
	goal := must(plango.NewGoalState(sp, space.NewRealVectorState(9, 5), 0.5))
	pd := must(plango.NewProblemDefinition(sp, space.NewRealVectorState(1, 5), goal))
	return Scenario{
		Space:   sp,
		Problem: pd,
		Checker: Obstacles(wall.Inflate(WallMargin)),
		Exact:   Obstacles(wall),
		Wall:    wall,
	}
}

// ArcScenario plans on SO2 from -π/2 to π/2 (goal radius 0.2) while the
// arc (-0.5, 0.5) is forbidden, forcing the path through ±π.
func ArcScenario() Scenario {
	sp := must(space.NewSO2Space())
	goal := must(plango.NewGoalState(sp, space.NewSO2State(math.Pi/2), 0.2))
	pd := must(plango.NewProblemDefinition(sp, space.NewSO2State(-math.Pi/2), goal))
	arc := ForbiddenArc(-0.5, 0.5)
	return Scenario{Space: sp, Problem: pd, Checker: arc, Exact: arc}
}

// VerifyPath checks that path starts at the problem start, ends in the goal
// region and that every state of its interpolation at segment spacing is
// in bounds and valid.
func VerifyPath(pd *plango.ProblemDefinition, checker plango.StateValidityChecker, path *plango.Path, segment float64) error {
	if path == nil || path.Len() == 0 {
		return fmt.Errorf("empty path")
	}
	sp := pd.Space()
	if d := sp.Distance(path.First(), pd.Start()); d > 1e-9 {
		return fmt.Errorf("path starts %g away from the start state", d)
	}
	if !pd.Goal().IsSatisfied(path.Last()) {
		return fmt.Errorf("path ends at %s outside the goal", path.Last())
	}
	dense := path.Interpolate(sp, segment)
	for i := 0; i < dense.Len(); i++ {
		s := dense.State(i)
		if !sp.SatisfiesBounds(s) {
			return fmt.Errorf("state %d %s is out of bounds", i, s)
		}
		if !checker.IsValid(s) {
			return fmt.Errorf("state %d %s is invalid", i, s)
		}
	}
	return nil
}

// Neighbor is a brute-force search result.
type Neighbor struct {
	ID       int
	Distance float64
}

// BruteForceNearest returns the k states closest to query, ordered by
// (distance, id). IDs are indexes into states.
func BruteForceNearest(states []space.State, query space.State, k int, dist func(a, b space.State) float64) []Neighbor {
	out := make([]Neighbor, len(states))
	for i, s := range states {
		out[i] = Neighbor{ID: i, Distance: dist(query, s)}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	if k < len(out) {
		out = out[:k]
	}
	return out
}

// BruteForceRadius returns every state within r of query, ordered by
// (distance, id).
func BruteForceRadius(states []space.State, query space.State, r float64, dist func(a, b space.State) float64) []Neighbor {
	all := BruteForceNearest(states, query, len(states), dist)
	n := sort.Search(len(all), func(i int) bool { return all[i].Distance > r })
	return all[:n]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
