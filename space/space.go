package space

import (
	"fmt"
	"math"
	"math/rand"
)

// Space is a configuration manifold with a metric, an interpolation rule and
// a uniform sampler. The variant set is closed; only the types in this
// package implement it.
//
// Distance, Interpolate, SatisfiesBounds and EnforceBounds expect states that
// passed Validate. Handing them a state of a different variant is a
// programming error and panics.
type Space interface {
	// Kind returns the variant of the space.
	Kind() Kind

	// Dimension returns the number of degrees of freedom.
	Dimension() int

	// Distance returns the metric distance between a and b.
	Distance(a, b State) float64

	// Interpolate returns the state at fraction t ∈ [0, 1] along the path
	// from -> to. Interpolate(a, b, 0) = a and Interpolate(a, b, 1) = b.
	Interpolate(from, to State, t float64) State

	// Sample draws a state uniformly from the bounded region of the space.
	Sample(r *rand.Rand) (State, error)

	// SatisfiesBounds reports whether s lies inside the space bounds.
	SatisfiesBounds(s State) bool

	// EnforceBounds returns s projected back into the bounds.
	EnforceBounds(s State) State

	// MaximumExtent returns the largest possible distance between two states
	// (+Inf for unbounded spaces).
	MaximumExtent() float64

	// Validate reports whether s is a well-formed state of this space.
	Validate(s State) error

	isSpace()
}

// Bounds is a closed interval [Low, High].
type Bounds struct {
	Low  float64
	High float64
}

// Extent returns High - Low.
func (b Bounds) Extent() float64 { return b.High - b.Low }

// Contains reports whether v lies in [Low, High].
func (b Bounds) Contains(v float64) bool { return v >= b.Low && v <= b.High }

func (b Bounds) clamp(v float64) float64 {
	return math.Min(math.Max(v, b.Low), b.High)
}

func (b Bounds) validate() error {
	if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsInf(b.Low, 0) || math.IsInf(b.High, 0) {
		return fmt.Errorf("bounds [%g, %g] must be finite", b.Low, b.High)
	}
	if b.Low >= b.High {
		return fmt.Errorf("lower bound %g must be below upper bound %g", b.Low, b.High)
	}
	return nil
}

func (b Bounds) sample(r *rand.Rand) float64 {
	return b.Low + r.Float64()*(b.High-b.Low)
}

func kindMismatch(sp Kind, s State) error {
	if s == nil {
		return constructionErr(sp, "state is nil")
	}
	return constructionErr(sp, "state of kind %s does not belong to a %s space", s.Kind(), sp)
}

func lerp(a, b, t float64) float64 { return a + t*(b-a) }

// normalizeAngle maps a into (-π, π].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// angleDiff returns the signed shorter-arc difference to - from in (-π, π].
func angleDiff(from, to float64) float64 {
	return normalizeAngle(to - from)
}
