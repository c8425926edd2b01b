package regions

import "math/bits"

// visitBitmap packs one visited flag per voxel of a working extent.
type visitBitmap struct {
	words []uint64
	n     int
}

// newVisitBitmap returns a bitmap of n flags, all set if visited is true.
func newVisitBitmap(n int, visited bool) visitBitmap {
	b := visitBitmap{words: make([]uint64, (n+63)/64), n: n}
	if visited {
		for i := range b.words {
			b.words[i] = ^uint64(0)
		}
		if tail := n % 64; tail != 0 {
			b.words[len(b.words)-1] = (uint64(1) << tail) - 1
		}
	}
	return b
}

func (b *visitBitmap) visited(i int) bool {
	return b.words[i>>6]&(uint64(1)<<(uint(i)&63)) != 0
}

func (b *visitBitmap) visit(i int) {
	b.words[i>>6] |= uint64(1) << (uint(i) & 63)
}

func (b *visitBitmap) unvisit(i int) {
	b.words[i>>6] &^= uint64(1) << (uint(i) & 63)
}

// nextUnvisited returns the first unvisited index >= from, or -1.
func (b *visitBitmap) nextUnvisited(from int) int {
	if from >= b.n {
		return -1
	}
	w := from >> 6
	word := ^b.words[w] &^ ((uint64(1) << (uint(from) & 63)) - 1)
	for {
		if word != 0 {
			i := w<<6 + bits.TrailingZeros64(word)
			if i >= b.n {
				return -1
			}
			return i
		}
		w++
		if w >= len(b.words) {
			return -1
		}
		word = ^b.words[w]
	}
}

// count returns the number of visited flags.
func (b *visitBitmap) count() int {
	var total int
	for _, word := range b.words {
		total += bits.OnesCount64(word)
	}
	return total
}
