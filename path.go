package plango

import (
	"errors"
	"math"
	"slices"
	"strings"

	"github.com/hupe1980/plango/space"
)

// Path is an immutable, non-empty sequence of states.
type Path struct {
	states []space.State
}

// NewPath copies states into a new path.
func NewPath(states ...space.State) (*Path, error) {
	if len(states) == 0 {
		return nil, errors.New("path: at least one state is required")
	}
	return &Path{states: slices.Clone(states)}, nil
}

// Len returns the number of states.
func (p *Path) Len() int { return len(p.states) }

// State returns state i.
func (p *Path) State(i int) space.State { return p.states[i] }

// States returns a copy of the state sequence.
func (p *Path) States() []space.State { return slices.Clone(p.states) }

// First returns the start of the path.
func (p *Path) First() space.State { return p.states[0] }

// Last returns the end of the path.
func (p *Path) Last() space.State { return p.states[len(p.states)-1] }

// Cost returns the summed metric length of the path segments.
func (p *Path) Cost(sp space.Space) float64 {
	var c float64
	for i := 1; i < len(p.states); i++ {
		c += sp.Distance(p.states[i-1], p.states[i])
	}
	return c
}

// Interpolate returns a denser path in which no two consecutive states are
// more than segment apart. The original states are kept.
func (p *Path) Interpolate(sp space.Space, segment float64) *Path {
	if !(segment > 0) || len(p.states) < 2 {
		return &Path{states: slices.Clone(p.states)}
	}
	out := []space.State{p.states[0]}
	for i := 1; i < len(p.states); i++ {
		a, b := p.states[i-1], p.states[i]
		n := int(math.Ceil(sp.Distance(a, b) / segment))
		for j := 1; j < n; j++ {
			out = append(out, sp.Interpolate(a, b, float64(j)/float64(n)))
		}
		out = append(out, b)
	}
	return &Path{states: out}
}

func (p *Path) String() string {
	parts := make([]string, len(p.states))
	for i, s := range p.states {
		parts[i] = s.String()
	}
	return "Path[" + strings.Join(parts, " -> ") + "]"
}
