package space

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// RealVectorSpace is R^n with the Euclidean metric and optional per-dimension
// bounds.
type RealVectorSpace struct {
	dim    int
	bounds []Bounds
}

// NewRealVectorSpace builds an n-dimensional space. bounds must be empty
// (unbounded) or hold exactly one interval per dimension.
func NewRealVectorSpace(dim int, bounds ...Bounds) (*RealVectorSpace, error) {
	if dim <= 0 {
		return nil, constructionErr(KindRealVector, "dimension must be positive, got %d", dim)
	}
	if len(bounds) != 0 && len(bounds) != dim {
		return nil, constructionErr(KindRealVector, "expected %d bounds, got %d", dim, len(bounds))
	}
	for i, b := range bounds {
		if err := b.validate(); err != nil {
			return nil, wrapConstructionErr(KindRealVector, err, "dimension %d", i)
		}
	}
	return &RealVectorSpace{dim: dim, bounds: slices.Clone(bounds)}, nil
}

func (*RealVectorSpace) Kind() Kind        { return KindRealVector }
func (*RealVectorSpace) isSpace()          {}
func (sp *RealVectorSpace) Dimension() int { return sp.dim }

// Bounded reports whether the space has bounds.
func (sp *RealVectorSpace) Bounded() bool { return len(sp.bounds) != 0 }

// Bounds returns a copy of the per-dimension bounds (nil when unbounded).
func (sp *RealVectorSpace) Bounds() []Bounds { return slices.Clone(sp.bounds) }

func (sp *RealVectorSpace) Distance(a, b State) float64 {
	av, bv := sp.cast(a).values, sp.cast(b).values
	var sum float64
	for i := range av {
		d := av[i] - bv[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func (sp *RealVectorSpace) Interpolate(from, to State, t float64) State {
	av, bv := sp.cast(from).values, sp.cast(to).values
	out := make([]float64, len(av))
	for i := range av {
		out[i] = lerp(av[i], bv[i], t)
	}
	return RealVectorState{values: out}
}

func (sp *RealVectorSpace) Sample(r *rand.Rand) (State, error) {
	if !sp.Bounded() {
		return nil, fmt.Errorf("%s(%d): %w", KindRealVector, sp.dim, ErrUnbounded)
	}
	out := make([]float64, sp.dim)
	for i, b := range sp.bounds {
		out[i] = b.sample(r)
	}
	return RealVectorState{values: out}, nil
}

func (sp *RealVectorSpace) SatisfiesBounds(s State) bool {
	if !sp.Bounded() {
		return true
	}
	for i, v := range sp.cast(s).values {
		if !sp.bounds[i].Contains(v) {
			return false
		}
	}
	return true
}

func (sp *RealVectorSpace) EnforceBounds(s State) State {
	rv := sp.cast(s)
	if !sp.Bounded() {
		return rv
	}
	out := make([]float64, len(rv.values))
	for i, v := range rv.values {
		out[i] = sp.bounds[i].clamp(v)
	}
	return RealVectorState{values: out}
}

func (sp *RealVectorSpace) MaximumExtent() float64 {
	if !sp.Bounded() {
		return math.Inf(1)
	}
	var sum float64
	for _, b := range sp.bounds {
		sum += b.Extent() * b.Extent()
	}
	return math.Sqrt(sum)
}

func (sp *RealVectorSpace) Validate(s State) error {
	rv, ok := s.(RealVectorState)
	if !ok {
		return kindMismatch(KindRealVector, s)
	}
	if len(rv.values) != sp.dim {
		return constructionErr(KindRealVector, "state has %d values, space has dimension %d", len(rv.values), sp.dim)
	}
	for i, v := range rv.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return constructionErr(KindRealVector, "value %d is not finite", i)
		}
	}
	return nil
}

func (sp *RealVectorSpace) cast(s State) RealVectorState {
	rv, ok := s.(RealVectorState)
	if !ok || len(rv.values) != sp.dim {
		panic(fmt.Sprintf("space: %v is not a state of RealVector(%d)", s, sp.dim))
	}
	return rv
}
