package nn

import (
	"math"
	"slices"

	"github.com/hupe1980/plango/internal/queue"
	"github.com/hupe1980/plango/space"
)

const (
	// minBuffer is the number of unindexed items tolerated before the first
	// rebuild.
	minBuffer = 32

	// slack absorbs floating point error in the triangle-inequality pruning.
	slack = 1e-9
)

type vpNode struct {
	entry   int // index into store.entries
	mu      float64
	inside  int // child index or -1
	outside int
}

// VPTree is a vantage-point tree. Items added since the last build live in a
// linear buffer; the tree is rebuilt once the buffer outgrows half the tree,
// so insertion stays amortised O(log n) builds.
type VPTree struct {
	dist  DistanceFunc
	store store
	nodes []vpNode
	root  int
	built int // entries[:built] are in the tree
	heap  *queue.PriorityQueue
}

// NewVPTree returns an empty vantage-point tree.
func NewVPTree(dist DistanceFunc) *VPTree {
	return &VPTree{dist: dist, store: newStore(), root: -1, heap: queue.NewPriorityQueue(true)}
}

func (t *VPTree) Add(id int, s space.State) {
	t.store.add(id, s)
	if pending := len(t.store.entries) - t.built; pending > max(minBuffer, t.built/2) {
		t.rebuild()
	}
}

func (t *VPTree) Len() int { return len(t.store.entries) }

func (t *VPTree) Clear() {
	t.store.clear()
	t.nodes = t.nodes[:0]
	t.root = -1
	t.built = 0
}

func (t *VPTree) Nearest(q space.State) (Neighbor, bool) {
	res := t.NearestK(q, 1)
	if len(res) == 0 {
		return Neighbor{}, false
	}
	return res[0], true
}

func (t *VPTree) NearestK(q space.State, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	t.heap.Reset()
	for _, e := range t.store.entries[t.built:] {
		t.heap.PushBounded(queue.Item{ID: e.id, Priority: t.dist(q, e.state)}, k)
	}
	t.searchK(t.root, q, k)
	return t.store.neighbors(t.heap.Drain())
}

func (t *VPTree) NearestR(q space.State, r float64) []Neighbor {
	var items []queue.Item
	for _, e := range t.store.entries[t.built:] {
		if d := t.dist(q, e.state); d <= r {
			items = append(items, queue.Item{ID: e.id, Priority: d})
		}
	}
	items = t.searchR(t.root, q, r, items)
	sortItems(items)
	return t.store.neighbors(items)
}

func (t *VPTree) tau(k int) float64 {
	if t.heap.Len() < k {
		return math.Inf(1)
	}
	top, _ := t.heap.Top()
	return top.Priority
}

func (t *VPTree) searchK(n int, q space.State, k int) {
	if n < 0 {
		return
	}
	node := t.nodes[n]
	e := t.store.entries[node.entry]
	d := t.dist(q, e.state)
	t.heap.PushBounded(queue.Item{ID: e.id, Priority: d}, k)

	if d <= node.mu {
		t.searchK(node.inside, q, k)
		if d+t.tau(k)+slack >= node.mu {
			t.searchK(node.outside, q, k)
		}
		return
	}
	t.searchK(node.outside, q, k)
	if d-t.tau(k)-slack <= node.mu {
		t.searchK(node.inside, q, k)
	}
}

func (t *VPTree) searchR(n int, q space.State, r float64, items []queue.Item) []queue.Item {
	if n < 0 {
		return items
	}
	node := t.nodes[n]
	e := t.store.entries[node.entry]
	d := t.dist(q, e.state)
	if d <= r {
		items = append(items, queue.Item{ID: e.id, Priority: d})
	}
	if d-r-slack <= node.mu {
		items = t.searchR(node.inside, q, r, items)
	}
	if d+r+slack >= node.mu {
		items = t.searchR(node.outside, q, r, items)
	}
	return items
}

type vpCandidate struct {
	entry int
	d     float64
}

func (t *VPTree) rebuild() {
	t.nodes = t.nodes[:0]
	t.built = len(t.store.entries)
	idx := make([]vpCandidate, t.built)
	for i := range idx {
		idx[i].entry = i
	}
	t.root = t.build(idx)
}

// build creates the subtree for items and returns its node index. The first
// item is the vantage point; the rest are split at the median distance.
func (t *VPTree) build(items []vpCandidate) int {
	if len(items) == 0 {
		return -1
	}
	n := len(t.nodes)
	vp := items[0].entry
	t.nodes = append(t.nodes, vpNode{entry: vp, inside: -1, outside: -1})

	rest := items[1:]
	if len(rest) == 0 {
		return n
	}
	vs := t.store.entries[vp].state
	for i := range rest {
		rest[i].d = t.dist(vs, t.store.entries[rest[i].entry].state)
	}
	slices.SortFunc(rest, func(a, b vpCandidate) int {
		switch {
		case a.d < b.d:
			return -1
		case a.d > b.d:
			return 1
		default:
			return a.entry - b.entry
		}
	})
	mid := len(rest) / 2
	mu := rest[mid].d
	// inside holds d <= mu, outside d > mu
	split := mid + 1
	for split < len(rest) && rest[split].d <= mu {
		split++
	}

	t.nodes[n].mu = mu
	inside := t.build(rest[:split])
	outside := t.build(rest[split:])
	t.nodes[n].inside = inside
	t.nodes[n].outside = outside
	return n
}
