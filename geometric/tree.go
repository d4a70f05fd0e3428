package geometric

import (
	"slices"

	"github.com/hupe1980/plango/nn"
	"github.com/hupe1980/plango/space"
)

const noParent = -1

type node struct {
	state    space.State
	parent   int
	children []int
	edge     float64 // cost of the edge from parent
	cost     float64 // cost from the root
}

// tree is an arena of nodes addressed by index. A tree may hold several
// roots (RRT-Connect goal trees grow from every goal sample).
type tree struct {
	sp    space.Space
	nodes []node
	index nn.Index
}

func newTree(sp space.Space, factory nn.Factory) *tree {
	return &tree{sp: sp, index: factory(sp.Distance)}
}

func (t *tree) len() int { return len(t.nodes) }

func (t *tree) state(id int) space.State { return t.nodes[id].state }

func (t *tree) cost(id int) float64 { return t.nodes[id].cost }

func (t *tree) parent(id int) int { return t.nodes[id].parent }

// addRoot inserts a parentless node with zero cost.
func (t *tree) addRoot(s space.State) int {
	return t.add(s, noParent, 0)
}

// add inserts s as a child of parent reached over an edge of cost edge.
func (t *tree) add(s space.State, parent int, edge float64) int {
	id := len(t.nodes)
	n := node{state: s, parent: parent, edge: edge}
	if parent != noParent {
		n.cost = t.nodes[parent].cost + edge
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	t.nodes = append(t.nodes, n)
	t.index.Add(id, s)
	return id
}

func (t *tree) nearest(s space.State) (nn.Neighbor, bool) {
	return t.index.Nearest(s)
}

func (t *tree) near(s space.State, r float64) []nn.Neighbor {
	return t.index.NearestR(s, r)
}

// reparent moves id under newParent and updates the cost of id and of every
// descendant, so each stored cost stays equal to the edge sum along its
// parent chain.
func (t *tree) reparent(id, newParent int, edge float64) {
	old := t.nodes[id].parent
	if old != noParent {
		siblings := t.nodes[old].children
		if i := slices.Index(siblings, id); i >= 0 {
			t.nodes[old].children = slices.Delete(siblings, i, i+1)
		}
	}
	t.nodes[id].parent = newParent
	t.nodes[id].edge = edge
	t.nodes[newParent].children = append(t.nodes[newParent].children, id)
	t.propagate(id)
}

// propagate recomputes costs in the subtree rooted at id.
func (t *tree) propagate(id int) {
	stack := []int{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p := t.nodes[n].parent; p != noParent {
			t.nodes[n].cost = t.nodes[p].cost + t.nodes[n].edge
		}
		stack = append(stack, t.nodes[n].children...)
	}
}

// pathTo returns the states from the root of id's branch to id.
func (t *tree) pathTo(id int) []space.State {
	var out []space.State
	for n := id; n != noParent; n = t.nodes[n].parent {
		out = append(out, t.nodes[n].state)
	}
	slices.Reverse(out)
	return out
}
