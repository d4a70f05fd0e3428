package space

import (
	"fmt"
	"math"
	"math/rand"
)

// SE3Space is the space of spatial poses. The distance is
// sqrt(d_xyz² + (w·d_SO3)²) where w is the rotation weight.
type SE3Space struct {
	position *RealVectorSpace
	rotation *SO3Space
	weight   float64
}

// NewSE3Space builds a spatial pose space. bounds may be empty or hold the
// x, y and z intervals; rotations are unbounded.
func NewSE3Space(weight float64, bounds ...Bounds) (*SE3Space, error) {
	if !(weight > 0) || math.IsInf(weight, 0) {
		return nil, constructionErr(KindSE3, "rotation weight must be positive and finite, got %g", weight)
	}
	if len(bounds) != 0 && len(bounds) != 3 {
		return nil, constructionErr(KindSE3, "expected 0 or 3 bounds, got %d", len(bounds))
	}
	pos, err := NewRealVectorSpace(3, bounds...)
	if err != nil {
		return nil, wrapConstructionErr(KindSE3, err, "position")
	}
	rot, _ := NewSO3Space()
	return &SE3Space{position: pos, rotation: rot, weight: weight}, nil
}

func (*SE3Space) Kind() Kind     { return KindSE3 }
func (*SE3Space) isSpace()       {}
func (*SE3Space) Dimension() int { return 6 }

// Weight returns the rotation weight.
func (sp *SE3Space) Weight() float64 { return sp.weight }

func (sp *SE3Space) Distance(a, b State) float64 {
	sa, sb := sp.cast(a), sp.cast(b)
	dx, dy, dz := sa.x-sb.x, sa.y-sb.y, sa.z-sb.z
	dr := sp.weight * so3Distance(sa.rotation, sb.rotation)
	return math.Sqrt(dx*dx + dy*dy + dz*dz + dr*dr)
}

func (sp *SE3Space) Interpolate(from, to State, t float64) State {
	sa, sb := sp.cast(from), sp.cast(to)
	return SE3State{
		x:        lerp(sa.x, sb.x, t),
		y:        lerp(sa.y, sb.y, t),
		z:        lerp(sa.z, sb.z, t),
		rotation: slerp(sa.rotation, sb.rotation, t),
	}
}

func (sp *SE3Space) Sample(r *rand.Rand) (State, error) {
	pos, err := sp.position.Sample(r)
	if err != nil {
		return nil, fmt.Errorf("%s position: %w", KindSE3, err)
	}
	p := pos.(RealVectorState)
	return SE3State{x: p.values[0], y: p.values[1], z: p.values[2], rotation: uniformSO3(r)}, nil
}

func (sp *SE3Space) SatisfiesBounds(s State) bool {
	st := sp.cast(s)
	return sp.position.SatisfiesBounds(RealVectorState{values: []float64{st.x, st.y, st.z}}) &&
		sp.rotation.SatisfiesBounds(st.rotation)
}

func (sp *SE3Space) EnforceBounds(s State) State {
	st := sp.cast(s)
	p := sp.position.EnforceBounds(RealVectorState{values: []float64{st.x, st.y, st.z}}).(RealVectorState)
	return SE3State{x: p.values[0], y: p.values[1], z: p.values[2], rotation: quatNormalize(st.rotation)}
}

func (sp *SE3Space) MaximumExtent() float64 {
	p := sp.position.MaximumExtent()
	r := sp.weight * sp.rotation.MaximumExtent()
	return math.Sqrt(p*p + r*r)
}

func (sp *SE3Space) Validate(s State) error {
	st, ok := s.(SE3State)
	if !ok {
		return kindMismatch(KindSE3, s)
	}
	for _, v := range []float64{st.x, st.y, st.z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return constructionErr(KindSE3, "translation of %v is not finite", st)
		}
	}
	if err := sp.rotation.Validate(st.rotation); err != nil {
		return wrapConstructionErr(KindSE3, err, "rotation")
	}
	return nil
}

func (sp *SE3Space) cast(s State) SE3State {
	st, ok := s.(SE3State)
	if !ok {
		panic(fmt.Sprintf("space: %v is not an SE3 state", s))
	}
	return st
}
