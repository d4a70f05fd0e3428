package geometric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/plango/nn"
	"github.com/hupe1980/plango/space"
)

func line(t *testing.T) *space.RealVectorSpace {
	t.Helper()
	sp, err := space.NewRealVectorSpace(1)
	require.NoError(t, err)
	return sp
}

func rv(v float64) space.State { return space.NewRealVectorState(v) }

func TestTreeReparentPropagatesCost(t *testing.T) {
	tr := newTree(line(t), nn.DefaultFactory)
	root := tr.addRoot(rv(0))
	a := tr.add(rv(1), root, 1)
	b := tr.add(rv(3), a, 2)
	c := tr.add(rv(4), b, 1)
	d := tr.add(rv(5), c, 1)

	assert.Equal(t, 5.0, tr.cost(d))

	tr.reparent(b, root, 1.5)
	assert.Equal(t, root, tr.parent(b))
	assert.Equal(t, 1.5, tr.cost(b))
	assert.Equal(t, 2.5, tr.cost(c))
	assert.Equal(t, 3.5, tr.cost(d))
	assert.Empty(t, tr.nodes[a].children)
	assert.ElementsMatch(t, []int{a, b}, tr.nodes[root].children)

	assert.Equal(t, []space.State{rv(0), rv(3), rv(4), rv(5)}, tr.pathTo(d))
}

func TestTreeNearest(t *testing.T) {
	tr := newTree(line(t), nn.DefaultFactory)
	root := tr.addRoot(rv(0))
	tr.add(rv(2), root, 2)
	tr.add(rv(-3), root, 3)

	n, ok := tr.nearest(rv(1.5))
	require.True(t, ok)
	assert.Equal(t, 1, n.ID)
	assert.Len(t, tr.near(rv(0), 2), 2)
}

func TestUnionFind(t *testing.T) {
	var u unionFind
	for range 5 {
		u.add()
	}
	assert.Equal(t, 5, u.count)

	u.union(0, 1)
	u.union(3, 4)
	u.union(1, 0)
	assert.Equal(t, 3, u.count)
	assert.Equal(t, u.find(0), u.find(1))
	assert.NotEqual(t, u.find(1), u.find(3))

	u.union(1, 4)
	assert.Equal(t, 2, u.count)
	assert.Equal(t, u.find(0), u.find(3))
	assert.NotEqual(t, u.find(0), u.find(2))
}

func TestQueryShortestPath(t *testing.T) {
	sp := line(t)
	rm := newRoadmap(sp, nn.DefaultFactory)
	// 0 - 1 - 2 - 3 with a long shortcut 0 - 3.
	for _, v := range []float64{1, 2, 3, 4} {
		rm.addVertex(rv(v), false)
	}
	rm.addEdge(0, 1, 1)
	rm.addEdge(1, 2, 1)
	rm.addEdge(2, 3, 1)
	rm.addEdge(0, 3, 5)
	rm.addVertex(rv(10), false) // isolated

	q := &query{
		rm:    rm,
		start: &overlay{state: rv(0), edges: []edge{{to: 0, cost: 1}}},
		goals: []*overlay{{state: rv(5), edges: []edge{{to: 3, cost: 1}}}},
	}
	require.True(t, q.connected())

	nodes, cost, ok := q.shortestPath()
	require.True(t, ok)
	// start is node 5, the goal sample node 6.
	assert.Equal(t, []int{5, 0, 1, 2, 3, 6}, nodes)
	assert.Equal(t, 5.0, cost)
	assert.Equal(t, []space.State{rv(0), rv(1), rv(2), rv(3), rv(4), rv(5)}, q.states(nodes))

	// Repeated queries share the roadmap's visited set.
	again, againCost, ok := q.shortestPath()
	require.True(t, ok)
	assert.Equal(t, nodes, again)
	assert.Equal(t, cost, againCost)

	// Growing past the set's capacity keeps later queries correct.
	for i := range 200 {
		rm.addVertex(rv(20+float64(i)), false)
	}
	q.goals[0].edges = append(q.goals[0].edges, edge{to: 1, cost: 0.5})
	nodes, cost, ok = q.shortestPath()
	require.True(t, ok)
	assert.Equal(t, []int{205, 0, 1, 206}, nodes)
	assert.Equal(t, 2.5, cost)
}

func TestQueryGoalVertex(t *testing.T) {
	rm := newRoadmap(line(t), nn.DefaultFactory)
	rm.addVertex(rv(1), false)
	rm.addVertex(rv(2), true)
	rm.addVertex(rv(3), true)
	rm.addEdge(0, 1, 1)
	rm.addEdge(1, 2, 1)

	q := &query{rm: rm, start: &overlay{state: rv(0), edges: []edge{{to: 0, cost: 1}}}}
	require.True(t, q.connected())
	nodes, cost, ok := q.shortestPath()
	require.True(t, ok)
	assert.Equal(t, []int{3, 0, 1}, nodes)
	assert.Equal(t, 2.0, cost)
}

func TestQueryDisconnected(t *testing.T) {
	rm := newRoadmap(line(t), nn.DefaultFactory)
	rm.addVertex(rv(1), false)
	rm.addVertex(rv(9), false)

	q := &query{
		rm:    rm,
		start: &overlay{state: rv(0), edges: []edge{{to: 0, cost: 1}}},
		goals: []*overlay{{state: rv(10), edges: []edge{{to: 1, cost: 1}}}},
	}
	assert.False(t, q.connected())
	_, _, ok := q.shortestPath()
	assert.False(t, ok)

	q.direct = []edge{{to: 0, cost: 10}}
	assert.True(t, q.connected())
	nodes, cost, ok := q.shortestPath()
	require.True(t, ok)
	assert.Equal(t, []int{2, 3}, nodes)
	assert.Equal(t, 10.0, cost)
}
