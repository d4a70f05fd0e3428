// Package queue implements the binary heaps used by nearest-neighbour search
// and roadmap shortest-path queries.
package queue

// Item is a vertex id with its priority (a distance or path cost).
type Item struct {
	ID       int
	Priority float64
}

// before orders items by priority, breaking ties toward the lower id so that
// heap output is deterministic.
func before(a, b Item) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID < b.ID
}

// PriorityQueue is a value-based binary heap of Items.
// It does NOT implement container/heap to avoid interface overhead.
type PriorityQueue struct {
	isMaxHeap bool
	items     []Item
}

// NewPriorityQueue creates a min heap, or a max heap if isMaxHeap is set.
func NewPriorityQueue(isMaxHeap bool) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: isMaxHeap,
		items:     make([]Item, 0, 16),
	}
}

// Reset clears the queue for reuse.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

// Len returns the number of items in the heap.
func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

// Top returns the top item without removing it.
func (pq *PriorityQueue) Top() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	return pq.items[0], true
}

// Push inserts an item.
func (pq *PriorityQueue) Push(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PushBounded inserts an item into a heap holding at most capacity items.
// On a max heap this keeps the capacity smallest items seen so far; on a min
// heap it keeps the largest.
func (pq *PriorityQueue) PushBounded(item Item, capacity int) {
	if capacity <= 0 {
		return
	}
	if len(pq.items) < capacity {
		pq.Push(item)
		return
	}

	top := pq.items[0]
	if pq.isMaxHeap && before(item, top) || !pq.isMaxHeap && before(top, item) {
		pq.items[0] = item
		pq.siftDown(0)
	}
}

// Pop removes and returns the top item.
func (pq *PriorityQueue) Pop() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}

	item := pq.items[0]
	pq.items[0] = pq.items[n-1]
	pq.items = pq.items[:n-1]

	if len(pq.items) > 0 {
		pq.siftDown(0)
	}
	return item, true
}

// Drain pops every item and returns them in ascending (priority, id) order,
// leaving the queue empty.
func (pq *PriorityQueue) Drain() []Item {
	out := make([]Item, len(pq.items))
	if pq.isMaxHeap {
		for i := len(out) - 1; i >= 0; i-- {
			out[i], _ = pq.Pop()
		}
	} else {
		for i := range out {
			out[i], _ = pq.Pop()
		}
	}
	return out
}

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.isMaxHeap {
		return before(pq.items[j], pq.items[i])
	}
	return before(pq.items[i], pq.items[j])
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.less(i, parent) {
			break
		}
		pq.items[i], pq.items[parent] = pq.items[parent], pq.items[i]
		i = parent
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && pq.less(right, left) {
			child = right
		}
		if !pq.less(child, i) {
			break
		}
		pq.items[i], pq.items[child] = pq.items[child], pq.items[i]
		i = child
	}
}
