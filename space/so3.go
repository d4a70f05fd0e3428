package space

import (
	"fmt"
	"math"
	"math/rand"
)

// SO3Bounds restricts an SO3Space to the rotations within MaxAngle (under
// the SO3 metric) of Center.
type SO3Bounds struct {
	Center   SO3State
	MaxAngle float64
}

// SO3Space is the group of spatial rotations represented by unit
// quaternions. The distance acos(|q1·q2|) lies in [0, π/2] and treats q and
// -q as the same rotation.
type SO3Space struct {
	bounds *SO3Bounds
}

// NewSO3Space builds a rotation space, optionally bounded around a center.
func NewSO3Space(bounds ...SO3Bounds) (*SO3Space, error) {
	switch len(bounds) {
	case 0:
		return &SO3Space{}, nil
	case 1:
		b := bounds[0]
		if b.MaxAngle <= 0 || b.MaxAngle > math.Pi/2 || math.IsNaN(b.MaxAngle) {
			return nil, constructionErr(KindSO3, "max angle %g must lie in (0, π/2]", b.MaxAngle)
		}
		if math.Abs(quatNorm(b.Center)-1) > QuaternionTolerance {
			return nil, constructionErr(KindSO3, "bounds center is not a unit quaternion")
		}
		return &SO3Space{bounds: &b}, nil
	default:
		return nil, constructionErr(KindSO3, "expected at most one bounds region, got %d", len(bounds))
	}
}

func (*SO3Space) Kind() Kind     { return KindSO3 }
func (*SO3Space) isSpace()       {}
func (*SO3Space) Dimension() int { return 3 }

// Bounds returns the bounding region and whether the space is bounded.
func (sp *SO3Space) Bounds() (SO3Bounds, bool) {
	if sp.bounds == nil {
		return SO3Bounds{}, false
	}
	return *sp.bounds, true
}

func (sp *SO3Space) Distance(a, b State) float64 {
	return so3Distance(sp.cast(a), sp.cast(b))
}

func (sp *SO3Space) Interpolate(from, to State, t float64) State {
	return slerp(sp.cast(from), sp.cast(to), t)
}

func (sp *SO3Space) Sample(r *rand.Rand) (State, error) {
	if sp.bounds == nil {
		return uniformSO3(r), nil
	}
	// Rotate the center by a random axis-angle; the SO3 metric is half the
	// rotation angle, so angles up to 2*MaxAngle stay within bounds.
	axis := uniformSO3(r)
	angle := 2 * sp.bounds.MaxAngle * math.Cbrt(r.Float64())
	delta := SO3FromAxisAngle(axis.x, axis.y, axis.z, angle)
	return quatMul(sp.bounds.Center, delta), nil
}

func (sp *SO3Space) SatisfiesBounds(s State) bool {
	q := sp.cast(s)
	if math.Abs(quatNorm(q)-1) > QuaternionTolerance {
		return false
	}
	if sp.bounds == nil {
		return true
	}
	return so3Distance(sp.bounds.Center, q) <= sp.bounds.MaxAngle+1e-9
}

func (sp *SO3Space) EnforceBounds(s State) State {
	q := quatNormalize(sp.cast(s))
	if sp.bounds == nil {
		return q
	}
	d := so3Distance(sp.bounds.Center, q)
	if d <= sp.bounds.MaxAngle {
		return q
	}
	return slerp(sp.bounds.Center, q, sp.bounds.MaxAngle/d)
}

func (sp *SO3Space) MaximumExtent() float64 {
	if sp.bounds != nil {
		return math.Min(math.Pi/2, 2*sp.bounds.MaxAngle)
	}
	return math.Pi / 2
}

func (sp *SO3Space) Validate(s State) error {
	q, ok := s.(SO3State)
	if !ok {
		return kindMismatch(KindSO3, s)
	}
	if n := quatNorm(q); math.IsNaN(n) || math.Abs(n-1) > QuaternionTolerance {
		return constructionErr(KindSO3, "quaternion norm %g is not 1", n)
	}
	return nil
}

func (sp *SO3Space) cast(s State) SO3State {
	q, ok := s.(SO3State)
	if !ok {
		panic(fmt.Sprintf("space: %v is not an SO3 state", s))
	}
	return q
}

func quatDot(a, b SO3State) float64 {
	return a.x*b.x + a.y*b.y + a.z*b.z + a.w*b.w
}

func quatNorm(q SO3State) float64 {
	return math.Sqrt(quatDot(q, q))
}

func quatNormalize(q SO3State) SO3State {
	n := quatNorm(q)
	if n < 1e-12 {
		return SO3Identity()
	}
	return SO3State{x: q.x / n, y: q.y / n, z: q.z / n, w: q.w / n}
}

// quatMul returns the Hamilton product a*b.
func quatMul(a, b SO3State) SO3State {
	return quatNormalize(SO3State{
		x: a.w*b.x + a.x*b.w + a.y*b.z - a.z*b.y,
		y: a.w*b.y - a.x*b.z + a.y*b.w + a.z*b.x,
		z: a.w*b.z + a.x*b.y - a.y*b.x + a.z*b.w,
		w: a.w*b.w - a.x*b.x - a.y*b.y - a.z*b.z,
	})
}

// so3Distance is the angle between a and b on the unit quaternion sphere,
// taken over the closer of b and -b. The atan2 form is exact at zero, where
// acos of a rounded dot product is not.
func so3Distance(a, b SO3State) float64 {
	if quatDot(a, b) < 0 {
		b = SO3State{x: -b.x, y: -b.y, z: -b.z, w: -b.w}
	}
	diff := math.Sqrt(sq(a.x-b.x) + sq(a.y-b.y) + sq(a.z-b.z) + sq(a.w-b.w))
	sum := math.Sqrt(sq(a.x+b.x) + sq(a.y+b.y) + sq(a.z+b.z) + sq(a.w+b.w))
	return 2 * math.Atan2(diff, sum)
}

func sq(v float64) float64 { return v * v }

// slerp interpolates along the shorter great arc between from and to.
func slerp(from, to SO3State, t float64) SO3State {
	d := quatDot(from, to)
	if d < 0 {
		// q and -q are the same rotation; flip to take the short way.
		to = SO3State{x: -to.x, y: -to.y, z: -to.z, w: -to.w}
		d = -d
	}
	if d > 1-1e-12 {
		return quatNormalize(SO3State{
			x: lerp(from.x, to.x, t),
			y: lerp(from.y, to.y, t),
			z: lerp(from.z, to.z, t),
			w: lerp(from.w, to.w, t),
		})
	}
	theta := math.Acos(d)
	sinTheta := math.Sin(theta)
	s0 := math.Sin((1-t)*theta) / sinTheta
	s1 := math.Sin(t*theta) / sinTheta
	return quatNormalize(SO3State{
		x: s0*from.x + s1*to.x,
		y: s0*from.y + s1*to.y,
		z: s0*from.z + s1*to.z,
		w: s0*from.w + s1*to.w,
	})
}

// uniformSO3 draws a uniformly distributed rotation (Shoemake 1992).
func uniformSO3(r *rand.Rand) SO3State {
	u1, u2, u3 := r.Float64(), r.Float64(), r.Float64()
	s1, s2 := math.Sqrt(1-u1), math.Sqrt(u1)
	sin2, cos2 := math.Sincos(2 * math.Pi * u2)
	sin3, cos3 := math.Sincos(2 * math.Pi * u3)
	return SO3State{x: s1 * sin2, y: s1 * cos2, z: s2 * sin3, w: s2 * cos3}
}
