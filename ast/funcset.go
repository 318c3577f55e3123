package ast

import "math/bits"

// FuncSet is a compact set of function ids using a bitmap.
// Ids are allocated densely by the Program, so the bitmap stays small.
type FuncSet struct {
	bits []uint64
}

// NewFuncSet creates a FuncSet that can hold ids up to maxID (inclusive)
// without growing.
func NewFuncSet(maxID int) *FuncSet {
	words := (maxID + 64) / 64
	return &FuncSet{bits: make([]uint64, words)}
}

// Add inserts id into the set.
func (s *FuncSet) Add(id FuncID) {
	word := uint32(id) / 64
	if int(word) >= len(s.bits) {
		s.grow(int(word) + 1)
	}
	s.bits[word] |= 1 << (uint32(id) % 64)
}

// Remove deletes id from the set.
func (s *FuncSet) Remove(id FuncID) {
	word := uint32(id) / 64
	if int(word) < len(s.bits) {
		s.bits[word] &^= 1 << (uint32(id) % 64)
	}
}

// Has returns true if id is in the set.
func (s *FuncSet) Has(id FuncID) bool {
	word := uint32(id) / 64
	if int(word) >= len(s.bits) {
		return false
	}
	return s.bits[word]&(1<<(uint32(id)%64)) != 0
}

// IDs returns the members in ascending order, which is creation order.
func (s *FuncSet) IDs() []FuncID {
	var result []FuncID
	for i, word := range s.bits {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			result = append(result, FuncID(i*64+bit))
			word &= word - 1
		}
	}
	return result
}

// Len returns the number of members.
func (s *FuncSet) Len() int {
	count := 0
	for _, word := range s.bits {
		count += bits.OnesCount64(word)
	}
	return count
}

// grow expands the set to n words.
// Callers guarantee n > len(s.bits).
func (s *FuncSet) grow(n int) {
	newBits := make([]uint64, n)
	copy(newBits, s.bits)
	s.bits = newBits
}
