package nn

import (
	"github.com/hupe1980/plango/internal/queue"
	"github.com/hupe1980/plango/space"
)

// Linear is a brute-force index. It is exact and has no build cost, which
// makes it the reference for VPTree and a good choice for small trees.
type Linear struct {
	dist  DistanceFunc
	store store
	heap  *queue.PriorityQueue
}

// NewLinear returns an empty brute-force index.
func NewLinear(dist DistanceFunc) *Linear {
	return &Linear{dist: dist, store: newStore(), heap: queue.NewPriorityQueue(true)}
}

func (l *Linear) Add(id int, s space.State) { l.store.add(id, s) }

func (l *Linear) Len() int { return len(l.store.entries) }

func (l *Linear) Clear() { l.store.clear() }

func (l *Linear) Nearest(q space.State) (Neighbor, bool) {
	res := l.NearestK(q, 1)
	if len(res) == 0 {
		return Neighbor{}, false
	}
	return res[0], true
}

func (l *Linear) NearestK(q space.State, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	l.heap.Reset()
	for _, e := range l.store.entries {
		l.heap.PushBounded(queue.Item{ID: e.id, Priority: l.dist(q, e.state)}, k)
	}
	return l.store.neighbors(l.heap.Drain())
}

func (l *Linear) NearestR(q space.State, r float64) []Neighbor {
	var items []queue.Item
	for _, e := range l.store.entries {
		if d := l.dist(q, e.state); d <= r {
			items = append(items, queue.Item{ID: e.id, Priority: d})
		}
	}
	sortItems(items)
	return l.store.neighbors(items)
}
