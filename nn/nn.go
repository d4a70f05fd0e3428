// Package nn provides exact nearest-neighbour indexes over planner states.
//
// Every index reports results sorted by (distance, id): ties resolve toward
// the lower id, so a planner run with a fixed seed visits the same vertices
// every time regardless of which index it uses.
package nn

import (
	"fmt"
	"slices"

	"github.com/hupe1980/plango/internal/queue"
	"github.com/hupe1980/plango/space"
)

// DistanceFunc measures the distance between two states.
type DistanceFunc func(a, b space.State) float64

// Neighbor is a search result.
type Neighbor struct {
	ID       int
	State    space.State
	Distance float64
}

// Index is a dynamic nearest-neighbour index. Ids must be unique.
// Implementations are not safe for concurrent use.
type Index interface {
	// Add inserts a state under id.
	Add(id int, s space.State)

	// Nearest returns the closest item, or false if the index is empty.
	Nearest(q space.State) (Neighbor, bool)

	// NearestK returns up to k closest items.
	NearestK(q space.State, k int) []Neighbor

	// NearestR returns every item within distance r (inclusive).
	NearestR(q space.State, r float64) []Neighbor

	// Len returns the number of items.
	Len() int

	// Clear removes every item.
	Clear()
}

// Factory creates an empty index over a metric.
type Factory func(dist DistanceFunc) Index

// Kind names an index implementation.
type Kind string

const (
	KindLinear Kind = "linear"
	KindVPTree Kind = "vptree"
)

// FactoryFor returns the factory for kind.
func FactoryFor(kind Kind) (Factory, error) {
	switch kind {
	case KindLinear:
		return func(d DistanceFunc) Index { return NewLinear(d) }, nil
	case KindVPTree, "":
		return func(d DistanceFunc) Index { return NewVPTree(d) }, nil
	default:
		return nil, fmt.Errorf("nn: unknown index kind %q", kind)
	}
}

// DefaultFactory builds VPTree indexes.
func DefaultFactory(dist DistanceFunc) Index { return NewVPTree(dist) }

type entry struct {
	id    int
	state space.State
}

// store keeps entries in insertion order with an id lookup.
type store struct {
	entries []entry
	pos     map[int]int
}

func newStore() store {
	return store{pos: make(map[int]int)}
}

func (s *store) add(id int, st space.State) {
	if _, ok := s.pos[id]; ok {
		panic(fmt.Sprintf("nn: duplicate id %d", id))
	}
	s.pos[id] = len(s.entries)
	s.entries = append(s.entries, entry{id: id, state: st})
}

func (s *store) clear() {
	s.entries = s.entries[:0]
	clear(s.pos)
}

func (s *store) neighbors(items []queue.Item) []Neighbor {
	out := make([]Neighbor, len(items))
	for i, it := range items {
		out[i] = Neighbor{ID: it.ID, State: s.entries[s.pos[it.ID]].state, Distance: it.Priority}
	}
	return out
}

func sortItems(items []queue.Item) {
	slices.SortFunc(items, func(a, b queue.Item) int {
		switch {
		case a.Priority < b.Priority:
			return -1
		case a.Priority > b.Priority:
			return 1
		default:
			return a.ID - b.ID
		}
	})
}
