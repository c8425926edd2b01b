package stencil

import (
	"fmt"
	"strings"
)

// rowStorage tags where a RowMask keeps its breakpoints.
type rowStorage uint8

const (
	// inlineStorage holds at most one range in the row's fixed pair, which
	// lives in the owning Volume's row table.
	inlineStorage rowStorage = iota

	// ownedStorage holds the breakpoints in a separately allocated buffer whose
	// capacity is a power of two.
	ownedStorage
)

// RowMask is the run-length list of "inside" x ranges for one grid row.  It
// stores an even number of strictly increasing breakpoints interpreted as
// half-open [start, end) pairs.  No two stored ranges touch or overlap.
//
// The zero RowMask is an empty row with inline storage.
type RowMask struct {
	storage rowStorage
	n       int32    // number of inline breakpoints, 0 or 2
	inline  [2]int32 // valid when storage == inlineStorage
	owned   []int32  // valid when storage == ownedStorage
}

// NewRowMask returns a row holding the given half-open ranges, which must be
// sorted and non-overlapping.  Abutting ranges are merged.
func NewRowMask(ranges ...[2]int32) RowMask {
	var r RowMask
	for _, rng := range ranges {
		r.Insert(rng[0], rng[1])
	}
	return r
}

// IsOwned returns true if the row has outgrown inline storage.
func (r *RowMask) IsOwned() bool {
	return r.storage == ownedStorage
}

// Cap returns the number of breakpoints the row can hold without reallocation.
func (r *RowMask) Cap() int {
	if r.storage == ownedStorage {
		return cap(r.owned)
	}
	return len(r.inline)
}

// values returns the live breakpoints.  The returned slice aliases the row.
func (r *RowMask) values() []int32 {
	if r.storage == ownedStorage {
		return r.owned
	}
	return r.inline[:r.n]
}

// Len returns the number of breakpoints, twice the number of ranges.
func (r *RowMask) Len() int {
	if r.storage == ownedStorage {
		return len(r.owned)
	}
	return int(r.n)
}

// NumRanges returns the number of disjoint inside ranges.
func (r *RowMask) NumRanges() int {
	return r.Len() / 2
}

// Empty returns true if no voxel of the row is inside.
func (r *RowMask) Empty() bool {
	return r.Len() == 0
}

// Ranges returns a copy of the stored half-open ranges.
func (r *RowMask) Ranges() [][2]int32 {
	v := r.values()
	ranges := make([][2]int32, 0, len(v)/2)
	for i := 0; i < len(v); i += 2 {
		ranges = append(ranges, [2]int32{v[i], v[i+1]})
	}
	return ranges
}

// Breakpoints returns a copy of the stored breakpoints.
func (r *RowMask) Breakpoints() []int32 {
	v := r.values()
	out := make([]int32, len(v))
	copy(out, v)
	return out
}

// NumVoxels returns the number of inside voxels in the row.
func (r *RowMask) NumVoxels() int64 {
	var total int64
	v := r.values()
	for i := 0; i < len(v); i += 2 {
		total += int64(v[i+1] - v[i])
	}
	return total
}

// Clear empties the row and releases any owned buffer.
func (r *RowMask) Clear() {
	*r = RowMask{}
}

// Clone returns a row with identical ranges that shares no storage with r.
func (r *RowMask) Clone() RowMask {
	dup := RowMask{storage: r.storage, n: r.n, inline: r.inline}
	if r.storage == ownedStorage {
		dup.owned = make([]int32, len(r.owned), cap(r.owned))
		copy(dup.owned, r.owned)
	}
	return dup
}

// Equal returns true if both rows hold the same ranges, regardless of storage.
func (r *RowMask) Equal(r2 *RowMask) bool {
	a, b := r.values(), r2.values()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Insert appends the half-open range [start, end) to the row.  Ranges must be
// inserted in non-decreasing order of start.  A range that abuts or overlaps
// the last stored range extends it in place.  Empty ranges are ignored.
func (r *RowMask) Insert(start, end int32) {
	if end <= start {
		return
	}
	n := r.Len()
	if n > 0 {
		v := r.values()
		if start <= v[n-1] {
			if end > v[n-1] {
				v[n-1] = end
			}
			return
		}
	}
	r.push(start, end)
}

// push appends a pair of breakpoints, promoting to owned storage or doubling
// the owned buffer as needed.
func (r *RowMask) push(start, end int32) {
	switch {
	case r.storage == inlineStorage && r.n == 0:
		r.inline = [2]int32{start, end}
		r.n = 2
		return
	case r.storage == inlineStorage:
		buf := make([]int32, 2, 4)
		buf[0], buf[1] = r.inline[0], r.inline[1]
		r.owned = buf
		r.storage = ownedStorage
		r.n = 0
		r.inline = [2]int32{}
	}
	n := len(r.owned)
	if n+2 > cap(r.owned) {
		newCap := cap(r.owned)
		for newCap < n+2 {
			newCap *= 2
		}
		buf := make([]int32, n, newCap)
		copy(buf, r.owned)
		r.owned = buf
	}
	r.owned = append(r.owned, start, end)
}

// setValues replaces the row's breakpoints with v, choosing inline storage
// when at most one range remains.
func (r *RowMask) setValues(v []int32) {
	switch {
	case len(v) == 0:
		*r = RowMask{}
	case len(v) == 2:
		*r = RowMask{storage: inlineStorage, n: 2, inline: [2]int32{v[0], v[1]}}
	default:
		c := 4
		for c < len(v) {
			c *= 2
		}
		buf := make([]int32, len(v), c)
		copy(buf, v)
		*r = RowMask{storage: ownedStorage, owned: buf}
	}
}

// IsInside returns true if x falls within one of the stored ranges.
func (r *RowMask) IsInside(x int32) bool {
	v := r.values()
	for i := 0; i < len(v); i += 2 {
		if x < v[i] {
			return false
		}
		if x < v[i+1] {
			return true
		}
	}
	return false
}

// NextExtent returns the next inclusive sub-range [r1, r2] of the row that
// lies within [lo, hi].  The iter cursor must start at 0 to enumerate the
// stored ranges, or at -1 to enumerate their complement, and must not be
// modified between calls.  ok is false once the enumeration is exhausted.
func (r *RowMask) NextExtent(lo, hi int32, iter *int) (r1, r2 int32, ok bool) {
	return nextExtent(r.values(), lo, hi, iter)
}

// nextExtent enumerates runs of a breakpoint list.  The cursor encodes the
// number k of breakpoints already consumed: iter = k for normal enumeration
// and iter = -(k+1) for the complement, where k >= 1 after the first run.
// The position to resume at is always breakpoint k-1.
func nextExtent(v []int32, lo, hi int32, iter *int) (r1, r2 int32, ok bool) {
	if hi < lo {
		return 0, 0, false
	}
	n := len(v)
	complement := *iter < 0
	var k int
	var cur int64
	switch {
	case *iter == 0 || *iter == -1:
		for k < n && v[k] <= lo {
			k++
		}
		cur = int64(lo)
	case complement:
		k = -*iter - 1
		if k > n {
			return 0, 0, false
		}
		cur = int64(v[k-1])
	default:
		k = *iter
		if k > n {
			return 0, 0, false
		}
		cur = int64(v[k-1])
	}
	last := int64(hi)
	for cur <= last {
		inside := (k%2 == 1) != complement
		if !inside {
			if k >= n {
				break
			}
			cur = int64(v[k])
			k++
			continue
		}
		end := last
		if k < n && int64(v[k])-1 < last {
			end = int64(v[k]) - 1
			k++
		} else {
			k = n + 1
		}
		r1, r2, ok = int32(cur), int32(end), true
		break
	}
	if !ok {
		k = n + 1
	}
	if complement {
		*iter = -(k + 1)
	} else {
		*iter = k
	}
	return
}

// Clip truncates the row to the inclusive range [lo, hi].  Ranges wholly
// outside are dropped and a range straddling a bound has that bound rewritten
// in place.  Returns true if the row changed.
func (r *RowMask) Clip(lo, hi int32) bool {
	v := r.values()
	if len(v) == 0 {
		return false
	}
	if hi < lo {
		r.Clear()
		return true
	}
	end := int64(hi) + 1
	var changed bool
	w := 0
	for i := 0; i < len(v); i += 2 {
		s, e := int64(v[i]), int64(v[i+1])
		if e <= int64(lo) || s >= end {
			changed = true
			continue
		}
		if s < int64(lo) {
			s = int64(lo)
			changed = true
		}
		if e > end {
			e = end
			changed = true
		}
		v[w], v[w+1] = int32(s), int32(e)
		w += 2
	}
	if !changed {
		return false
	}
	if w <= 2 {
		r.setValues(v[:w])
	} else if r.storage == ownedStorage {
		r.owned = r.owned[:w]
	}
	return true
}

func (r *RowMask) String() string {
	v := r.values()
	if len(v) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(v)/2)
	for i := 0; i < len(v); i += 2 {
		parts = append(parts, fmt.Sprintf("[%d,%d)", v[i], v[i+1]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
