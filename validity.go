package plango

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hupe1980/plango/space"
)

// StateValidityChecker decides whether a single state is free.
// Implementations may be expensive; they must be deterministic for a given
// state. Checkers used with parallel roadmap construction must be safe for
// concurrent use.
type StateValidityChecker interface {
	IsValid(s space.State) bool
}

// ValidityFunc adapts a function to StateValidityChecker.
type ValidityFunc func(s space.State) bool

func (f ValidityFunc) IsValid(s space.State) bool { return f(s) }

// MotionValidator checks states and the straight-line motions between them
// by sampling the space interpolation at a fixed segment length.
// It caches nothing and is safe for concurrent use when the wrapped checker
// is.
type MotionValidator struct {
	space   space.Space
	checker StateValidityChecker
	segment float64
	checks  atomic.Int64
}

// NewMotionValidator returns a validator sampling motions every segment
// units of distance.
func NewMotionValidator(sp space.Space, checker StateValidityChecker, segment float64) (*MotionValidator, error) {
	if sp == nil || checker == nil {
		return nil, fmt.Errorf("motion validator: space and checker are required")
	}
	if !(segment > 0) || math.IsInf(segment, 0) {
		return nil, fmt.Errorf("motion validator: segment length must be positive and finite, got %g", segment)
	}
	return &MotionValidator{space: sp, checker: checker, segment: segment}, nil
}

// Space returns the space motions are checked in.
func (m *MotionValidator) Space() space.Space { return m.space }

// Segment returns the motion sampling resolution.
func (m *MotionValidator) Segment() float64 { return m.segment }

// Checks returns the number of state checks performed so far.
func (m *MotionValidator) Checks() int64 { return m.checks.Load() }

// IsValid reports whether s lies inside the space bounds and passes the
// checker.
func (m *MotionValidator) IsValid(s space.State) bool {
	m.checks.Add(1)
	return m.space.SatisfiesBounds(s) && m.checker.IsValid(s)
}

// CheckMotion reports whether every state on the interpolated motion from
// a to b is valid. The motion is split into ceil(d/segment) steps and both
// endpoints are checked; the first invalid sample ends the check.
func (m *MotionValidator) CheckMotion(a, b space.State) bool {
	d := m.space.Distance(a, b)
	n := int(math.Ceil(d / m.segment))
	if n < 1 {
		return m.IsValid(a) && (d == 0 || m.IsValid(b))
	}
	if !m.IsValid(a) {
		return false
	}
	for i := 1; i < n; i++ {
		if !m.IsValid(m.space.Interpolate(a, b, float64(i)/float64(n))) {
			return false
		}
	}
	return m.IsValid(b)
}
