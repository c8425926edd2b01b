package stencil

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/janelia-flyem/stencil/dvid"
)

func TestVolumeConstruction(t *testing.T) {
	v := NewVolume()
	if !v.Extents().Empty() || v.NumRows() != 0 {
		t.Fatalf("New stencil should be empty, got %s\n", v)
	}
	ext := dvid.NewExtents3d(-2, 10, 3, 5, 0, 1)
	v.SetExtents(ext)
	if err := v.AllocateExtents(); err != nil {
		t.Fatalf("Couldn't allocate: %v\n", err)
	}
	if v.NumRows() != 6 {
		t.Errorf("Expected 6 rows, got %d\n", v.NumRows())
	}

	v.InsertNextExtent(-5, 0, 3, 0) // clipped to x >= -2
	v.InsertNextExtent(4, 6, 3, 0)
	v.InsertNextExtent(7, 20, 3, 0) // abuts previous, clipped to x <= 10
	v.InsertNextExtent(0, 1, 9, 0)  // row outside extent
	want := [][2]int32{{-2, 1}, {4, 11}}
	if diff := cmp.Diff(want, v.Row(3, 0).Ranges()); diff != "" {
		t.Errorf("Bad row after inserts (-want +got):\n%s", diff)
	}
	if v.Row(9, 0) != nil {
		t.Errorf("Expected nil row outside extent\n")
	}
	if v.NumVoxels() != 10 {
		t.Errorf("Expected 10 voxels, got %d\n", v.NumVoxels())
	}
	if v.IsInside(1, 3, 0) || !v.IsInside(-2, 3, 0) || !v.IsInside(10, 3, 0) || v.IsInside(11, 3, 0) {
		t.Errorf("Bad IsInside results for %s\n", v.Row(3, 0))
	}
	if v.MemorySize() <= 0 {
		t.Errorf("Expected positive memory size\n")
	}

	v.Fill()
	if v.NumVoxels() != ext.NumVoxels() {
		t.Errorf("Filled stencil has %d voxels, expected %d\n", v.NumVoxels(), ext.NumVoxels())
	}
	v.Clear()
	if v.NumVoxels() != 0 || !v.Extents().Equals(ext) {
		t.Errorf("Clear should empty rows but keep extent, got %s\n", v)
	}
}

func TestVolumeMergeAndRemoveExtent(t *testing.T) {
	ext := dvid.NewExtents3d(0, 30, 0, 0, 0, 0)
	v, _ := NewVolumeWithExtents(ext)
	v.InsertAndMergeExtent(10, 12, 0, 0)
	v.InsertAndMergeExtent(2, 4, 0, 0)
	v.InsertAndMergeExtent(5, 9, 0, 0)
	v.InsertAndMergeExtent(20, 22, 0, 0)
	want := [][2]int32{{2, 13}, {20, 23}}
	if diff := cmp.Diff(want, v.Row(0, 0).Ranges()); diff != "" {
		t.Errorf("Bad out of order inserts (-want +got):\n%s", diff)
	}
	v.RemoveExtent(5, 6, 0, 0)
	v.RemoveExtent(21, 40, 0, 0)
	want = [][2]int32{{2, 5}, {7, 13}, {20, 21}}
	if diff := cmp.Diff(want, v.Row(0, 0).Ranges()); diff != "" {
		t.Errorf("Bad removals (-want +got):\n%s", diff)
	}
}

func TestVolumeGetNextExtent(t *testing.T) {
	ext := dvid.NewExtents3d(0, 20, 0, 1, 0, 0)
	v, _ := NewVolumeWithExtents(ext)
	v.InsertNextExtent(3, 5, 0, 0)
	v.InsertNextExtent(9, 12, 0, 0)

	var runs [][2]int32
	iter := 0
	for {
		r1, r2, ok := v.GetNextExtent(4, 15, 0, 0, &iter)
		if !ok {
			break
		}
		runs = append(runs, [2]int32{r1, r2})
	}
	if diff := cmp.Diff([][2]int32{{4, 5}, {9, 12}}, runs); diff != "" {
		t.Errorf("Bad inside runs (-want +got):\n%s", diff)
	}

	// A row outside the extent is entirely outside.
	iter = 0
	if _, _, ok := v.GetNextExtent(0, 5, 7, 0, &iter); ok {
		t.Errorf("Expected no inside runs in row outside extent\n")
	}
	iter = -1
	r1, r2, ok := v.GetNextExtent(0, 5, 7, 0, &iter)
	if !ok || r1 != 0 || r2 != 5 {
		t.Errorf("Expected complement [0,5] in row outside extent, got [%d,%d] %t\n", r1, r2, ok)
	}
}

func TestVolumeChangeExtents(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	ext := dvid.NewExtents3d(0, 25, 0, 6, 0, 3)
	orig := randomVolume(t, rng, ext)

	grown := orig.Copy()
	bigger := dvid.NewExtents3d(-5, 40, -2, 10, -1, 5)
	if err := grown.ChangeExtents(bigger); err != nil {
		t.Fatalf("ChangeExtents failed: %v\n", err)
	}
	if !grown.Extents().Equals(bigger) || grown.NumRows() != 13*7 {
		t.Errorf("Unexpected grown stencil %s\n", grown)
	}
	if !grown.Equal(orig) {
		t.Errorf("Growing the extent lost data\n")
	}

	shrunk := orig.Copy()
	smaller := dvid.NewExtents3d(5, 15, 2, 4, 1, 2)
	if err := shrunk.ChangeExtents(smaller); err != nil {
		t.Fatalf("ChangeExtents failed: %v\n", err)
	}
	checkVoxels(t, "shrunk", shrunk, ext, func(x, y, z int32) bool {
		return smaller.Contains(x, y, z) && orig.IsInside(x, y, z)
	})

	disjoint := orig.Copy()
	if err := disjoint.ChangeExtents(dvid.NewExtents3d(100, 110, 0, 1, 0, 1)); err != nil {
		t.Fatalf("ChangeExtents failed: %v\n", err)
	}
	if disjoint.NumVoxels() != 0 {
		t.Errorf("Disjoint extent kept %d voxels\n", disjoint.NumVoxels())
	}

	// The original must be untouched by its copies.
	if orig.Extents() != ext {
		t.Errorf("Original extent changed to %s\n", orig.Extents())
	}
}

func TestVolumeRLEs(t *testing.T) {
	rng := rand.New(rand.NewSource(33))
	ext := dvid.NewExtents3d(-3, 20, 1, 5, 2, 4)
	v := randomVolume(t, rng, ext)
	rles := v.RLEs()
	numVoxels, _ := rles.Stats()
	if int64(numVoxels) != v.NumVoxels() {
		t.Errorf("RLEs hold %d voxels, stencil has %d\n", numVoxels, v.NumVoxels())
	}
	if !sort.IsSorted(rles) {
		t.Errorf("RLEs not in z, y, x order\n")
	}

	// Shuffled runs rebuild the same stencil.
	rng.Shuffle(len(rles), func(i, j int) { rles[i], rles[j] = rles[j], rles[i] })
	rebuilt, err := FromRLEs(ext, rles)
	if err != nil {
		t.Fatalf("FromRLEs failed: %v\n", err)
	}
	if !rebuilt.Equal(v) {
		t.Errorf("Stencil rebuilt from RLEs differs\n")
	}
}
