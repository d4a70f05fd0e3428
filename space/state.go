package space

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// QuaternionTolerance is the largest deviation of a quaternion norm from 1
// accepted by NewSO3State.
const QuaternionTolerance = 1e-6

// State is a point in a Space. The variant set is closed; only the types in
// this package implement it.
type State interface {
	Kind() Kind
	fmt.Stringer
	isState()
}

// RealVectorState is an ordered sequence of n floats.
type RealVectorState struct {
	values []float64
}

// NewRealVectorState copies values into a new state.
func NewRealVectorState(values ...float64) RealVectorState {
	return RealVectorState{values: slices.Clone(values)}
}

func (RealVectorState) Kind() Kind { return KindRealVector }
func (RealVectorState) isState()   {}

// Len returns the number of coordinates.
func (s RealVectorState) Len() int { return len(s.values) }

// At returns coordinate i.
func (s RealVectorState) At(i int) float64 { return s.values[i] }

// Values returns a copy of the coordinates.
func (s RealVectorState) Values() []float64 { return slices.Clone(s.values) }

func (s RealVectorState) String() string {
	return fmt.Sprintf("RealVector%v", s.values)
}

// SO2State is a planar rotation angle canonicalised to (-π, π].
type SO2State struct {
	value float64
}

// NewSO2State canonicalises angle into (-π, π].
func NewSO2State(angle float64) SO2State {
	return SO2State{value: normalizeAngle(angle)}
}

func (SO2State) Kind() Kind { return KindSO2 }
func (SO2State) isState()   {}

// Value returns the angle in radians.
func (s SO2State) Value() float64 { return s.value }

func (s SO2State) String() string { return fmt.Sprintf("SO2(%g)", s.value) }

// SO3State is a unit quaternion (x, y, z, w).
type SO3State struct {
	x, y, z, w float64
}

// NewSO3State builds a rotation from a quaternion that must already be of
// unit length (within QuaternionTolerance).
func NewSO3State(x, y, z, w float64) (SO3State, error) {
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if math.IsNaN(n) || math.Abs(n-1) > QuaternionTolerance {
		return SO3State{}, constructionErr(KindSO3, "quaternion norm %g is not 1", n)
	}
	return SO3State{x: x / n, y: y / n, z: z / n, w: w / n}, nil
}

// NormalizedSO3 builds a rotation from any non-zero quaternion.
func NormalizedSO3(x, y, z, w float64) (SO3State, error) {
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n < 1e-12 || math.IsNaN(n) || math.IsInf(n, 0) {
		return SO3State{}, constructionErr(KindSO3, "cannot normalise quaternion with norm %g", n)
	}
	return SO3State{x: x / n, y: y / n, z: z / n, w: w / n}, nil
}

// SO3Identity returns the identity rotation.
func SO3Identity() SO3State { return SO3State{w: 1} }

// SO3FromAxisAngle returns the rotation of angle radians about the axis.
// A zero axis yields the identity.
func SO3FromAxisAngle(ax, ay, az, angle float64) SO3State {
	n := math.Sqrt(ax*ax + ay*ay + az*az)
	if n < 1e-12 {
		return SO3Identity()
	}
	s, c := math.Sincos(angle / 2)
	return SO3State{x: ax / n * s, y: ay / n * s, z: az / n * s, w: c}
}

func (SO3State) Kind() Kind { return KindSO3 }
func (SO3State) isState()   {}

func (s SO3State) X() float64 { return s.x }
func (s SO3State) Y() float64 { return s.y }
func (s SO3State) Z() float64 { return s.z }
func (s SO3State) W() float64 { return s.w }

func (s SO3State) String() string {
	return fmt.Sprintf("SO3(%g, %g, %g, %g)", s.x, s.y, s.z, s.w)
}

// SE2State is a planar pose (x, y, yaw).
type SE2State struct {
	x, y float64
	yaw  SO2State
}

// NewSE2State builds a planar pose; yaw is canonicalised.
func NewSE2State(x, y, yaw float64) SE2State {
	return SE2State{x: x, y: y, yaw: NewSO2State(yaw)}
}

func (SE2State) Kind() Kind { return KindSE2 }
func (SE2State) isState()   {}

func (s SE2State) X() float64   { return s.x }
func (s SE2State) Y() float64   { return s.y }
func (s SE2State) Yaw() float64 { return s.yaw.value }

func (s SE2State) String() string {
	return fmt.Sprintf("SE2(%g, %g, %g)", s.x, s.y, s.yaw.value)
}

// SE3State is a spatial pose: translation plus rotation.
type SE3State struct {
	x, y, z  float64
	rotation SO3State
}

// NewSE3State builds a spatial pose.
func NewSE3State(x, y, z float64, rotation SO3State) SE3State {
	return SE3State{x: x, y: y, z: z, rotation: rotation}
}

func (SE3State) Kind() Kind { return KindSE3 }
func (SE3State) isState()   {}

func (s SE3State) X() float64         { return s.x }
func (s SE3State) Y() float64         { return s.y }
func (s SE3State) Z() float64         { return s.z }
func (s SE3State) Rotation() SO3State { return s.rotation }

func (s SE3State) String() string {
	return fmt.Sprintf("SE3(%g, %g, %g, %s)", s.x, s.y, s.z, s.rotation)
}

// CompoundState is an ordered sequence of heterogeneous sub-states, one per
// sub-space of the CompoundSpace it belongs to.
type CompoundState struct {
	components []State
}

// NewCompoundState builds a compound state. Component kinds are checked
// against a space by CompoundSpace.Validate.
func NewCompoundState(components ...State) (CompoundState, error) {
	if len(components) == 0 {
		return CompoundState{}, constructionErr(KindCompound, "compound state needs at least one component")
	}
	for i, c := range components {
		if c == nil {
			return CompoundState{}, constructionErr(KindCompound, "component %d is nil", i)
		}
	}
	return CompoundState{components: slices.Clone(components)}, nil
}

func (CompoundState) Kind() Kind { return KindCompound }
func (CompoundState) isState()   {}

// Len returns the number of components.
func (s CompoundState) Len() int { return len(s.components) }

// Component returns component i.
func (s CompoundState) Component(i int) State { return s.components[i] }

// Components returns a copy of the component slice.
func (s CompoundState) Components() []State { return slices.Clone(s.components) }

func (s CompoundState) String() string {
	parts := make([]string, len(s.components))
	for i, c := range s.components {
		parts[i] = c.String()
	}
	return "Compound[" + strings.Join(parts, ", ") + "]"
}

// CompoundStateBuilder assembles a CompoundState component by component.
type CompoundStateBuilder struct {
	components []State
}

// NewCompoundStateBuilder returns an empty builder.
func NewCompoundStateBuilder() *CompoundStateBuilder {
	return &CompoundStateBuilder{}
}

// Add appends a component.
func (b *CompoundStateBuilder) Add(s State) *CompoundStateBuilder {
	b.components = append(b.components, s)
	return b
}

// Build returns the compound state.
func (b *CompoundStateBuilder) Build() (CompoundState, error) {
	return NewCompoundState(b.components...)
}
