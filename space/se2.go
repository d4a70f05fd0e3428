package space

import (
	"fmt"
	"math"
	"math/rand"
)

// SE2Space is the space of planar poses. The distance is
// sqrt(d_xy² + (w·d_yaw)²) where w is the rotation weight.
type SE2Space struct {
	position *RealVectorSpace
	rotation *SO2Space
	weight   float64
}

// NewSE2Space builds a planar pose space. bounds may be empty, hold the x
// and y intervals, or hold x, y and yaw intervals.
func NewSE2Space(weight float64, bounds ...Bounds) (*SE2Space, error) {
	if !(weight > 0) || math.IsInf(weight, 0) {
		return nil, constructionErr(KindSE2, "rotation weight must be positive and finite, got %g", weight)
	}
	var posBounds []Bounds
	var rotBounds []Bounds
	switch len(bounds) {
	case 0:
	case 2:
		posBounds = bounds
	case 3:
		posBounds, rotBounds = bounds[:2], bounds[2:]
	default:
		return nil, constructionErr(KindSE2, "expected 0, 2 or 3 bounds, got %d", len(bounds))
	}
	pos, err := NewRealVectorSpace(2, posBounds...)
	if err != nil {
		return nil, wrapConstructionErr(KindSE2, err, "position")
	}
	rot, err := NewSO2Space(rotBounds...)
	if err != nil {
		return nil, wrapConstructionErr(KindSE2, err, "rotation")
	}
	return &SE2Space{position: pos, rotation: rot, weight: weight}, nil
}

func (*SE2Space) Kind() Kind     { return KindSE2 }
func (*SE2Space) isSpace()       {}
func (*SE2Space) Dimension() int { return 3 }

// Weight returns the rotation weight.
func (sp *SE2Space) Weight() float64 { return sp.weight }

func (sp *SE2Space) Distance(a, b State) float64 {
	sa, sb := sp.cast(a), sp.cast(b)
	dx, dy := sa.x-sb.x, sa.y-sb.y
	dr := sp.weight * math.Abs(angleDiff(sa.yaw.value, sb.yaw.value))
	return math.Sqrt(dx*dx + dy*dy + dr*dr)
}

func (sp *SE2Space) Interpolate(from, to State, t float64) State {
	sa, sb := sp.cast(from), sp.cast(to)
	return SE2State{
		x:   lerp(sa.x, sb.x, t),
		y:   lerp(sa.y, sb.y, t),
		yaw: sp.rotation.Interpolate(sa.yaw, sb.yaw, t).(SO2State),
	}
}

func (sp *SE2Space) Sample(r *rand.Rand) (State, error) {
	pos, err := sp.position.Sample(r)
	if err != nil {
		return nil, fmt.Errorf("%s position: %w", KindSE2, err)
	}
	yaw, _ := sp.rotation.Sample(r)
	p := pos.(RealVectorState)
	return SE2State{x: p.values[0], y: p.values[1], yaw: yaw.(SO2State)}, nil
}

func (sp *SE2Space) SatisfiesBounds(s State) bool {
	st := sp.cast(s)
	return sp.position.SatisfiesBounds(RealVectorState{values: []float64{st.x, st.y}}) &&
		sp.rotation.SatisfiesBounds(st.yaw)
}

func (sp *SE2Space) EnforceBounds(s State) State {
	st := sp.cast(s)
	p := sp.position.EnforceBounds(RealVectorState{values: []float64{st.x, st.y}}).(RealVectorState)
	return SE2State{x: p.values[0], y: p.values[1], yaw: sp.rotation.EnforceBounds(st.yaw).(SO2State)}
}

func (sp *SE2Space) MaximumExtent() float64 {
	p := sp.position.MaximumExtent()
	r := sp.weight * sp.rotation.MaximumExtent()
	return math.Sqrt(p*p + r*r)
}

func (sp *SE2Space) Validate(s State) error {
	st, ok := s.(SE2State)
	if !ok {
		return kindMismatch(KindSE2, s)
	}
	for _, v := range []float64{st.x, st.y, st.yaw.value} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return constructionErr(KindSE2, "pose %v is not finite", st)
		}
	}
	return nil
}

func (sp *SE2Space) cast(s State) SE2State {
	st, ok := s.(SE2State)
	if !ok {
		panic(fmt.Sprintf("space: %v is not an SE2 state", s))
	}
	return st
}
