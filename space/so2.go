package space

import (
	"fmt"
	"math"
	"math/rand"
)

// SO2Space is the group of planar rotations. Distances follow the shorter
// arc and lie in [0, π].
type SO2Space struct {
	bounds *Bounds
}

// NewSO2Space builds a rotation space. An optional interval restricts the
// admissible angles; it must lie inside [-π, π].
func NewSO2Space(bounds ...Bounds) (*SO2Space, error) {
	switch len(bounds) {
	case 0:
		return &SO2Space{}, nil
	case 1:
		b := bounds[0]
		if err := b.validate(); err != nil {
			return nil, wrapConstructionErr(KindSO2, err, "invalid bounds")
		}
		if b.Low < -math.Pi || b.High > math.Pi {
			return nil, constructionErr(KindSO2, "bounds [%g, %g] exceed [-π, π]", b.Low, b.High)
		}
		return &SO2Space{bounds: &b}, nil
	default:
		return nil, constructionErr(KindSO2, "expected at most one bounds interval, got %d", len(bounds))
	}
}

func (*SO2Space) Kind() Kind     { return KindSO2 }
func (*SO2Space) isSpace()       {}
func (*SO2Space) Dimension() int { return 1 }

// Bounds returns the angular bounds and whether the space is bounded.
func (sp *SO2Space) Bounds() (Bounds, bool) {
	if sp.bounds == nil {
		return Bounds{}, false
	}
	return *sp.bounds, true
}

func (sp *SO2Space) Distance(a, b State) float64 {
	return math.Abs(angleDiff(sp.cast(a).value, sp.cast(b).value))
}

func (sp *SO2Space) Interpolate(from, to State, t float64) State {
	a, b := sp.cast(from).value, sp.cast(to).value
	return NewSO2State(a + t*angleDiff(a, b))
}

func (sp *SO2Space) Sample(r *rand.Rand) (State, error) {
	if sp.bounds != nil {
		return NewSO2State(sp.bounds.sample(r)), nil
	}
	return NewSO2State(-math.Pi + r.Float64()*2*math.Pi), nil
}

func (sp *SO2Space) SatisfiesBounds(s State) bool {
	v := sp.cast(s).value
	if sp.bounds == nil {
		return v > -math.Pi && v <= math.Pi
	}
	return sp.contains(v)
}

// contains treats -π and π as the same angle.
func (sp *SO2Space) contains(v float64) bool {
	return sp.bounds.Contains(v) || (v == math.Pi && sp.bounds.Low == -math.Pi)
}

func (sp *SO2Space) EnforceBounds(s State) State {
	v := normalizeAngle(sp.cast(s).value)
	if sp.bounds == nil || sp.contains(v) {
		return SO2State{value: v}
	}
	// clamp to whichever bound is closer along the circle
	if math.Abs(angleDiff(v, sp.bounds.Low)) <= math.Abs(angleDiff(v, sp.bounds.High)) {
		return NewSO2State(sp.bounds.Low)
	}
	return NewSO2State(sp.bounds.High)
}

func (sp *SO2Space) MaximumExtent() float64 {
	if sp.bounds != nil {
		return math.Min(math.Pi, sp.bounds.Extent())
	}
	return math.Pi
}

func (sp *SO2Space) Validate(s State) error {
	so2, ok := s.(SO2State)
	if !ok {
		return kindMismatch(KindSO2, s)
	}
	if math.IsNaN(so2.value) || math.IsInf(so2.value, 0) {
		return constructionErr(KindSO2, "angle is not finite")
	}
	return nil
}

func (sp *SO2Space) cast(s State) SO2State {
	so2, ok := s.(SO2State)
	if !ok {
		panic(fmt.Sprintf("space: %v is not an SO2 state", s))
	}
	return so2
}
