package space

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// CompoundSpace is the weighted product of an ordered list of sub-spaces.
// Its distance is sqrt(Σ (wᵢ·dᵢ)²).
type CompoundSpace struct {
	subspaces []Space
	weights   []float64
}

// NewCompoundSpace builds a compound space. subspaces and weights must have
// the same non-zero length and every weight must be positive.
func NewCompoundSpace(subspaces []Space, weights []float64) (*CompoundSpace, error) {
	if len(subspaces) == 0 {
		return nil, constructionErr(KindCompound, "compound space needs at least one sub-space")
	}
	if len(subspaces) != len(weights) {
		return nil, constructionErr(KindCompound, "%d sub-spaces but %d weights", len(subspaces), len(weights))
	}
	for i, sp := range subspaces {
		if sp == nil {
			return nil, constructionErr(KindCompound, "sub-space %d is nil", i)
		}
		if w := weights[i]; !(w > 0) || math.IsInf(w, 0) {
			return nil, constructionErr(KindCompound, "weight %d must be positive and finite, got %g", i, w)
		}
	}
	return &CompoundSpace{subspaces: slices.Clone(subspaces), weights: slices.Clone(weights)}, nil
}

// CompoundBuilder assembles a CompoundSpace sub-space by sub-space.
type CompoundBuilder struct {
	subspaces []Space
	weights   []float64
}

// NewCompoundBuilder returns an empty builder.
func NewCompoundBuilder() *CompoundBuilder {
	return &CompoundBuilder{}
}

// Add appends a sub-space with its weight.
func (b *CompoundBuilder) Add(sp Space, weight float64) *CompoundBuilder {
	b.subspaces = append(b.subspaces, sp)
	b.weights = append(b.weights, weight)
	return b
}

// Build validates and returns the compound space.
func (b *CompoundBuilder) Build() (*CompoundSpace, error) {
	return NewCompoundSpace(b.subspaces, b.weights)
}

func (*CompoundSpace) Kind() Kind { return KindCompound }
func (*CompoundSpace) isSpace()   {}

// Len returns the number of sub-spaces.
func (sp *CompoundSpace) Len() int { return len(sp.subspaces) }

// Subspace returns sub-space i.
func (sp *CompoundSpace) Subspace(i int) Space { return sp.subspaces[i] }

// Weight returns the weight of sub-space i.
func (sp *CompoundSpace) Weight(i int) float64 { return sp.weights[i] }

func (sp *CompoundSpace) Dimension() int {
	n := 0
	for _, s := range sp.subspaces {
		n += s.Dimension()
	}
	return n
}

func (sp *CompoundSpace) Distance(a, b State) float64 {
	ca, cb := sp.cast(a), sp.cast(b)
	var sum float64
	for i, s := range sp.subspaces {
		d := sp.weights[i] * s.Distance(ca.components[i], cb.components[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func (sp *CompoundSpace) Interpolate(from, to State, t float64) State {
	ca, cb := sp.cast(from), sp.cast(to)
	out := make([]State, len(sp.subspaces))
	for i, s := range sp.subspaces {
		out[i] = s.Interpolate(ca.components[i], cb.components[i], t)
	}
	return CompoundState{components: out}
}

func (sp *CompoundSpace) Sample(r *rand.Rand) (State, error) {
	out := make([]State, len(sp.subspaces))
	for i, s := range sp.subspaces {
		c, err := s.Sample(r)
		if err != nil {
			return nil, fmt.Errorf("%s component %d: %w", KindCompound, i, err)
		}
		out[i] = c
	}
	return CompoundState{components: out}, nil
}

func (sp *CompoundSpace) SatisfiesBounds(s State) bool {
	cs := sp.cast(s)
	for i, sub := range sp.subspaces {
		if !sub.SatisfiesBounds(cs.components[i]) {
			return false
		}
	}
	return true
}

func (sp *CompoundSpace) EnforceBounds(s State) State {
	cs := sp.cast(s)
	out := make([]State, len(sp.subspaces))
	for i, sub := range sp.subspaces {
		out[i] = sub.EnforceBounds(cs.components[i])
	}
	return CompoundState{components: out}
}

func (sp *CompoundSpace) MaximumExtent() float64 {
	var sum float64
	for i, s := range sp.subspaces {
		e := sp.weights[i] * s.MaximumExtent()
		sum += e * e
	}
	return math.Sqrt(sum)
}

func (sp *CompoundSpace) Validate(s State) error {
	cs, ok := s.(CompoundState)
	if !ok {
		return kindMismatch(KindCompound, s)
	}
	if len(cs.components) != len(sp.subspaces) {
		return constructionErr(KindCompound, "state has %d components, space has %d", len(cs.components), len(sp.subspaces))
	}
	for i, sub := range sp.subspaces {
		if err := sub.Validate(cs.components[i]); err != nil {
			return wrapConstructionErr(KindCompound, err, "component %d", i)
		}
	}
	return nil
}

func (sp *CompoundSpace) cast(s State) CompoundState {
	cs, ok := s.(CompoundState)
	if !ok || len(cs.components) != len(sp.subspaces) {
		panic(fmt.Sprintf("space: %v is not a state of a %d-component compound space", s, len(sp.subspaces)))
	}
	return cs
}
