package regions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testRegions(sizes ...int64) regionList {
	rl := newRegionList()
	for i, size := range sizes {
		rl = append(rl, Region{ID: uint32(i + 1), Size: size, SeedID: -1})
	}
	return rl
}

func TestRegionLUTs(t *testing.T) {
	rl := testRegions(5, 1, 9, 1, 9)
	if rl.largest() != 3 || rl.smallest() != 2 {
		t.Errorf("Expected largest 3 and smallest 2, got %d and %d\n", rl.largest(), rl.smallest())
	}
	if diff := cmp.Diff([]uint32{0, 1, 0, 2, 3, 4}, rl.dropLUT(2)); diff != "" {
		t.Errorf("Bad drop LUT (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{0, 0, 0, 1, 0, 0}, rl.keepOnlyLUT(3)); diff != "" {
		t.Errorf("Bad keep LUT (-want +got):\n%s", diff)
	}
	lut, pruned := rl.sizeFilterLUT(2, 100)
	if !pruned {
		t.Errorf("Expected size filter to prune\n")
	}
	if diff := cmp.Diff([]uint32{0, 1, 0, 2, 0, 3}, lut); diff != "" {
		t.Errorf("Bad size LUT (-want +got):\n%s", diff)
	}
	if _, pruned := rl.sizeFilterLUT(1, 9); pruned {
		t.Errorf("Size filter covering every region should not prune\n")
	}
	if diff := cmp.Diff([]uint32{3, 5, 1, 2, 4}, rl.sizeRankOrder()); diff != "" {
		t.Errorf("Bad size rank order (-want +got):\n%s", diff)
	}

	remapped := rl.remap(lut)
	if remapped.numRegions() != 3 {
		t.Fatalf("Expected 3 regions after remap, got %d\n", remapped.numRegions())
	}
	for id := 1; id <= 3; id++ {
		if remapped[id].ID != uint32(id) {
			t.Errorf("Remapped region %d has id %d\n", id, remapped[id].ID)
		}
	}
	if remapped[2].Size != 9 || remapped[3].Size != 9 || remapped[1].Size != 5 {
		t.Errorf("Remap lost region order\n")
	}
}

func TestVisitBitmap(t *testing.T) {
	b := newVisitBitmap(130, true)
	if b.count() != 130 {
		t.Errorf("Expected 130 visited flags, got %d\n", b.count())
	}
	if b.nextUnvisited(0) != -1 {
		t.Errorf("Expected no unvisited flags\n")
	}
	for _, i := range []int{3, 64, 129} {
		b.unvisit(i)
	}
	var found []int
	for i := b.nextUnvisited(0); i >= 0; i = b.nextUnvisited(i + 1) {
		found = append(found, i)
	}
	if diff := cmp.Diff([]int{3, 64, 129}, found); diff != "" {
		t.Errorf("Bad unvisited scan (-want +got):\n%s", diff)
	}
	b.visit(64)
	if !b.visited(64) || b.visited(3) || b.count() != 128 {
		t.Errorf("Bad bitmap state after visit\n")
	}

	empty := newVisitBitmap(70, false)
	if empty.nextUnvisited(69) != 69 || empty.nextUnvisited(70) != -1 {
		t.Errorf("Bad scan at end of bitmap\n")
	}
}
