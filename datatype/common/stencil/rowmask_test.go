package stencil

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testDomain = 200

// randomRanges returns sorted, non-touching half-open ranges within
// [0, testDomain).
func randomRanges(rng *rand.Rand, maxRanges int) [][2]int32 {
	var ranges [][2]int32
	x := int32(rng.Intn(10))
	for i := rng.Intn(maxRanges + 1); i > 0 && x < testDomain-2; i-- {
		length := int32(rng.Intn(15) + 1)
		end := x + length
		if end > testDomain {
			end = testDomain
		}
		ranges = append(ranges, [2]int32{x, end})
		x = end + int32(rng.Intn(12)+1)
	}
	return ranges
}

// reference expands half-open ranges into a boolean array over the domain.
func reference(ranges [][2]int32) []bool {
	ref := make([]bool, testDomain)
	for _, r := range ranges {
		for x := r[0]; x < r[1]; x++ {
			ref[x] = true
		}
	}
	return ref
}

func TestRowMaskAbuttingInsert(t *testing.T) {
	var r RowMask
	r.Insert(2, 5)
	r.Insert(5, 9)
	if diff := cmp.Diff([][2]int32{{2, 9}}, r.Ranges()); diff != "" {
		t.Errorf("Abutting ranges not collapsed (-want +got):\n%s", diff)
	}
	if r.IsOwned() {
		t.Errorf("Single range row should stay inline\n")
	}

	r.Insert(7, 12)
	if diff := cmp.Diff([][2]int32{{2, 12}}, r.Ranges()); diff != "" {
		t.Errorf("Overlapping range not merged (-want +got):\n%s", diff)
	}
	r.Insert(20, 20)
	if r.NumRanges() != 1 {
		t.Errorf("Empty range should be ignored, got %s\n", r.String())
	}
}

func TestRowMaskIsInside(t *testing.T) {
	// Inclusive [0,4] and [6,8].
	r := NewRowMask([2]int32{0, 5}, [2]int32{6, 9})
	tests := []struct {
		x      int32
		inside bool
	}{
		{-1, false}, {0, true}, {3, true}, {4, true}, {5, false},
		{6, true}, {8, true}, {9, false}, {100, false},
	}
	for _, tc := range tests {
		if got := r.IsInside(tc.x); got != tc.inside {
			t.Errorf("IsInside(%d) on %s: expected %t, got %t\n", tc.x, r.String(), tc.inside, got)
		}
	}
	if r.NumVoxels() != 8 {
		t.Errorf("Expected 8 voxels, got %d\n", r.NumVoxels())
	}
}

func TestRowMaskStorageGrowth(t *testing.T) {
	var r RowMask
	if r.Cap() != 2 || r.IsOwned() {
		t.Fatalf("Zero row should be inline with room for one range\n")
	}
	r.Insert(0, 2)
	if r.IsOwned() {
		t.Errorf("One range should fit inline\n")
	}
	r.Insert(4, 6)
	if !r.IsOwned() || r.Cap() != 4 {
		t.Errorf("Expected owned storage of capacity 4 after second range, got owned=%t cap=%d\n", r.IsOwned(), r.Cap())
	}
	r.Insert(8, 10)
	if r.Cap() != 8 {
		t.Errorf("Expected capacity 8 after third range, got %d\n", r.Cap())
	}
	r.Insert(12, 14)
	r.Insert(16, 18)
	if r.Cap() != 16 {
		t.Errorf("Expected capacity 16 after fifth range, got %d\n", r.Cap())
	}
	want := [][2]int32{{0, 2}, {4, 6}, {8, 10}, {12, 14}, {16, 18}}
	if diff := cmp.Diff(want, r.Ranges()); diff != "" {
		t.Errorf("Bad ranges after growth (-want +got):\n%s", diff)
	}

	dup := r.Clone()
	dup.Insert(30, 31)
	if r.NumRanges() != 5 {
		t.Errorf("Clone shares storage with original: %s\n", r.String())
	}

	// Clipping down to a single range returns to inline storage.
	if !r.Clip(4, 5) {
		t.Errorf("Expected clip to change row\n")
	}
	if r.IsOwned() {
		t.Errorf("Expected inline storage after clipping to one range\n")
	}
	if diff := cmp.Diff([][2]int32{{4, 6}}, r.Ranges()); diff != "" {
		t.Errorf("Bad clipped row (-want +got):\n%s", diff)
	}
}

func TestRowMaskPredicateEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for trial := 0; trial < 200; trial++ {
		ranges := randomRanges(rng, 8)
		var r RowMask
		for _, rg := range ranges {
			r.Insert(rg[0], rg[1])
		}
		ref := reference(ranges)
		for x := int32(0); x < testDomain; x++ {
			if r.IsInside(x) != ref[x] {
				t.Fatalf("Trial %d: IsInside(%d) = %t for ranges %v\n", trial, x, r.IsInside(x), ranges)
			}
		}
		if r.IsInside(-1) || r.IsInside(testDomain) {
			t.Fatalf("Trial %d: voxel outside domain reported inside\n", trial)
		}
	}
}

// enumerate collects every run returned by NextExtent starting at iter.
func enumerate(t *testing.T, r *RowMask, lo, hi int32, iter int) [][2]int32 {
	var runs [][2]int32
	for guard := 0; guard < testDomain+2; guard++ {
		r1, r2, ok := r.NextExtent(lo, hi, &iter)
		if !ok {
			return runs
		}
		runs = append(runs, [2]int32{r1, r2})
	}
	t.Fatalf("Enumeration of %s over [%d,%d] did not terminate\n", r.String(), lo, hi)
	return nil
}

func TestRowMaskNextExtent(t *testing.T) {
	r := NewRowMask([2]int32{2, 9})
	if diff := cmp.Diff([][2]int32{{4, 6}}, enumerate(t, &r, 4, 6, 0)); diff != "" {
		t.Errorf("Bad sub-range of a single run (-want +got):\n%s", diff)
	}
	if runs := enumerate(t, &r, 4, 6, -1); len(runs) != 0 {
		t.Errorf("Expected empty complement, got %v\n", runs)
	}
	if diff := cmp.Diff([][2]int32{{0, 1}, {9, 12}}, enumerate(t, &r, 0, 12, -1)); diff != "" {
		t.Errorf("Bad complement (-want +got):\n%s", diff)
	}

	var empty RowMask
	if runs := enumerate(t, &empty, 0, 5, 0); len(runs) != 0 {
		t.Errorf("Expected no runs in empty row, got %v\n", runs)
	}
	if diff := cmp.Diff([][2]int32{{0, 5}}, enumerate(t, &empty, 0, 5, -1)); diff != "" {
		t.Errorf("Complement of empty row should be whole bound (-want +got):\n%s", diff)
	}
}

func TestRowMaskEnumerationCompleteness(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 300; trial++ {
		ranges := randomRanges(rng, 10)
		r := NewRowMask(ranges...)
		ref := reference(ranges)
		lo := int32(rng.Intn(testDomain))
		hi := lo + int32(rng.Intn(testDomain-int(lo)))

		for _, start := range []int{0, -1} {
			complement := start == -1
			runs := enumerate(t, &r, lo, hi, start)
			got := make([]bool, testDomain)
			prevEnd := lo - 2
			for _, run := range runs {
				if run[0] > run[1] || run[0] < lo || run[1] > hi {
					t.Fatalf("Trial %d: run %v outside bound [%d,%d]\n", trial, run, lo, hi)
				}
				if run[0] <= prevEnd+1 {
					t.Fatalf("Trial %d: runs %v are not sorted and separated\n", trial, runs)
				}
				prevEnd = run[1]
				for x := run[0]; x <= run[1]; x++ {
					got[x] = true
				}
			}
			for x := lo; x <= hi; x++ {
				want := ref[x] != complement
				if got[x] != want {
					t.Fatalf("Trial %d (complement %t): voxel %d enumerated %t, expected %t; ranges %v bound [%d,%d] runs %v\n",
						trial, complement, x, got[x], want, ranges, lo, hi, runs)
				}
			}
		}
	}
}

func TestRowMaskClip(t *testing.T) {
	r := NewRowMask([2]int32{0, 5}, [2]int32{8, 12}, [2]int32{20, 30})
	if !r.Clip(3, 24) {
		t.Fatalf("Expected clip to change row\n")
	}
	want := [][2]int32{{3, 5}, {8, 12}, {20, 25}}
	if diff := cmp.Diff(want, r.Ranges()); diff != "" {
		t.Errorf("Bad clip (-want +got):\n%s", diff)
	}
	if r.Clip(3, 24) {
		t.Errorf("Second identical clip should not change row\n")
	}
	if diff := cmp.Diff(want, r.Ranges()); diff != "" {
		t.Errorf("Clip not idempotent (-want +got):\n%s", diff)
	}
	if !r.Clip(13, 19) || !r.Empty() {
		t.Errorf("Clipping to a gap should empty row, got %s\n", r.String())
	}
}
