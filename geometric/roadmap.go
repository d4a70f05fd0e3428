package geometric

import (
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/plango/internal/queue"
	"github.com/hupe1980/plango/internal/visited"
	"github.com/hupe1980/plango/nn"
	"github.com/hupe1980/plango/space"
)

type edge struct {
	to   int
	cost float64
}

// roadmap is an undirected graph of valid states with metric edge costs.
// Connected components are tracked with a union-find and goal-satisfying
// vertices with a bitmap.
type roadmap struct {
	states []space.State
	adj    [][]edge
	edges  int
	index  nn.Index
	uf     unionFind
	goals  *roaring.Bitmap

	// seen is reused by every shortest-path query.
	seen *visited.Set
}

func newRoadmap(sp space.Space, factory nn.Factory) *roadmap {
	return &roadmap{index: factory(sp.Distance), goals: roaring.New(), seen: visited.New(0)}
}

func (rm *roadmap) len() int { return len(rm.states) }

func (rm *roadmap) addVertex(s space.State, goal bool) int {
	id := len(rm.states)
	rm.states = append(rm.states, s)
	rm.adj = append(rm.adj, nil)
	rm.index.Add(id, s)
	rm.uf.add()
	if goal {
		rm.goals.Add(uint32(id))
	}
	return id
}

func (rm *roadmap) addEdge(a, b int, cost float64) {
	rm.adj[a] = append(rm.adj[a], edge{to: b, cost: cost})
	rm.adj[b] = append(rm.adj[b], edge{to: a, cost: cost})
	rm.edges++
	rm.uf.union(a, b)
}

func (rm *roadmap) component(v int) int { return rm.uf.find(v) }

// unionFind is a disjoint-set forest with union by rank and path halving.
type unionFind struct {
	parent []int
	rank   []uint8
	count  int
}

func (u *unionFind) add() {
	u.parent = append(u.parent, len(u.parent))
	u.rank = append(u.rank, 0)
	u.count++
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		ra, rb = rb, ra
	case u.rank[ra] == u.rank[rb]:
		u.rank[ra]++
	}
	u.parent[rb] = ra
	u.count--
}

// overlay is a temporary vertex (start or goal sample) connected to the
// roadmap without being part of it.
type overlay struct {
	state space.State
	edges []edge
	// scanned is the roadmap size the edges were computed against.
	scanned int
}

// query is a shortest-path problem over the roadmap plus overlays. Graph
// node ids: roadmap vertices are 0..n-1, the start is n and goal sample j is
// n+1+j.
type query struct {
	rm     *roadmap
	start  *overlay
	goals  []*overlay
	direct []edge // start -> goal sample, edge.to is the goal sample index
}

// connected reports whether the start can reach a goal vertex or goal sample
// through the union-find components.
func (q *query) connected() bool {
	if len(q.direct) > 0 {
		return true
	}
	comps := make(map[int]struct{}, len(q.start.edges))
	for _, e := range q.start.edges {
		comps[q.rm.component(e.to)] = struct{}{}
	}
	if len(comps) == 0 {
		return false
	}
	it := q.rm.goals.Iterator()
	for it.HasNext() {
		if _, ok := comps[q.rm.component(int(it.Next()))]; ok {
			return true
		}
	}
	for _, g := range q.goals {
		for _, e := range g.edges {
			if _, ok := comps[q.rm.component(e.to)]; ok {
				return true
			}
		}
	}
	return false
}

// shortestPath runs Dijkstra from the start to the nearest target (goal
// vertex or goal sample) with a lazy decrease-key heap. It returns the node
// sequence and its cost.
func (q *query) shortestPath() ([]int, float64, bool) {
	n := q.rm.len()
	startNode := n
	total := n + 1 + len(q.goals)

	// roadmap vertex -> goal sample edges
	toGoal := make(map[int][]edge)
	for j, g := range q.goals {
		for _, e := range g.edges {
			toGoal[e.to] = append(toGoal[e.to], edge{to: n + 1 + j, cost: e.cost})
		}
	}

	dist := make([]float64, total)
	prev := make([]int, total)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = noParent
	}
	done := q.rm.seen
	done.Reset()
	done.EnsureCapacity(total)
	pq := queue.NewPriorityQueue(false)

	dist[startNode] = 0
	pq.Push(queue.Item{ID: startNode, Priority: 0})

	relax := func(from int, e edge) {
		if done.Visited(e.to) {
			return
		}
		if nd := dist[from] + e.cost; nd < dist[e.to] {
			dist[e.to] = nd
			prev[e.to] = from
			pq.Push(queue.Item{ID: e.to, Priority: nd})
		}
	}

	for pq.Len() > 0 {
		item, _ := pq.Pop()
		u := item.ID
		if !done.Visit(u) {
			continue // stale entry
		}
		if u > n || (u < n && q.rm.goals.Contains(uint32(u))) {
			return q.unwind(prev, u), dist[u], true
		}

		switch {
		case u == startNode:
			for _, e := range q.start.edges {
				relax(u, e)
			}
			for _, e := range q.direct {
				relax(u, edge{to: n + 1 + e.to, cost: e.cost})
			}
		default:
			for _, e := range q.rm.adj[u] {
				relax(u, e)
			}
			for _, e := range toGoal[u] {
				relax(u, e)
			}
		}
	}
	return nil, math.Inf(1), false
}

func (q *query) unwind(prev []int, target int) []int {
	var out []int
	for v := target; v != noParent; v = prev[v] {
		out = append(out, v)
	}
	slices.Reverse(out)
	return out
}

// states maps graph node ids to states.
func (q *query) states(nodes []int) []space.State {
	n := q.rm.len()
	out := make([]space.State, len(nodes))
	for i, v := range nodes {
		switch {
		case v < n:
			out[i] = q.rm.states[v]
		case v == n:
			out[i] = q.start.state
		default:
			out[i] = q.goals[v-n-1].state
		}
	}
	return out
}
