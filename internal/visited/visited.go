// Package visited provides a reusable set of visited vertex ids.
package visited

// Set tracks visited vertices using a bitset and a dirty list for fast reset.
type Set struct {
	bits  []uint64
	dirty []int
}

// New creates a set sized for capacity vertices. It grows on demand.
func New(capacity int) *Set {
	return &Set{
		bits:  make([]uint64, (capacity+63)/64),
		dirty: make([]int, 0, 128),
	}
}

// Visit marks id as visited and reports whether it was newly marked.
func (v *Set) Visit(id int) bool {
	wordIdx := id >> 6
	bitMask := uint64(1) << (uint(id) & 63)

	if wordIdx >= len(v.bits) {
		v.grow(wordIdx + 1)
	}

	if v.bits[wordIdx]&bitMask != 0 {
		return false
	}
	v.bits[wordIdx] |= bitMask
	v.dirty = append(v.dirty, id)
	return true
}

// Visited reports whether id has been visited since the last Reset.
func (v *Set) Visited(id int) bool {
	wordIdx := id >> 6
	if wordIdx >= len(v.bits) {
		return false
	}
	return v.bits[wordIdx]&(uint64(1)<<(uint(id)&63)) != 0
}

// Reset clears every id visited in the current session.
func (v *Set) Reset() {
	for _, id := range v.dirty {
		v.bits[id>>6] &^= uint64(1) << (uint(id) & 63)
	}
	v.dirty = v.dirty[:0]
}

// EnsureCapacity ensures the set can hold at least capacity ids without
// growing.
func (v *Set) EnsureCapacity(capacity int) {
	if words := (capacity + 63) / 64; words > len(v.bits) {
		v.grow(words)
	}
}

func (v *Set) grow(newLen int) {
	newCap := len(v.bits) * 2
	if newCap < newLen {
		newCap = newLen
	}
	newBits := make([]uint64, newCap)
	copy(newBits, v.bits)
	v.bits = newBits
}
