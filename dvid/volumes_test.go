package dvid

import (
	"sort"
	"testing"
)

func TestRLEs(t *testing.T) {
	rles := RLEs{
		NewRLE(Point3d{5, 2, 1}, 4),
		NewRLE(Point3d{0, 0, 3}, 2),
		NewRLE(Point3d{-3, 2, 1}, 3),
		NewRLE(Point3d{1, 7, 0}, 1),
	}
	numVoxels, numRuns := rles.Stats()
	if numVoxels != 10 || numRuns != 4 {
		t.Errorf("Expected 10 voxels in 4 runs, got %d in %d\n", numVoxels, numRuns)
	}
	if end := rles[0].EndPt(); end != (Point3d{8, 2, 1}) {
		t.Errorf("Bad run end %s\n", end)
	}
	want := NewExtents3d(-3, 8, 0, 7, 0, 3)
	if ext := rles.Extents(); !ext.Equals(want) {
		t.Errorf("RLE extents %s, expected %s\n", ext, want)
	}

	sort.Sort(rles)
	order := []Point3d{{1, 7, 0}, {-3, 2, 1}, {5, 2, 1}, {0, 0, 3}}
	for i, pt := range order {
		if rles[i].StartPt() != pt {
			t.Errorf("Run %d starts at %s, expected %s\n", i, rles[i].StartPt(), pt)
		}
	}
	if !(RLEs{}).Extents().Empty() {
		t.Errorf("No runs should give empty extents\n")
	}
}
