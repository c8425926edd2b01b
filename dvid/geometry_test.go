package dvid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtentsBasics(t *testing.T) {
	ext := NewExtents3d(-2, 5, 0, 3, 10, 10)
	if ext.Empty() {
		t.Fatalf("Extent %s should not be empty\n", ext)
	}
	if diff := cmp.Diff(Point3d{8, 4, 1}, ext.Size()); diff != "" {
		t.Errorf("Bad size (-want +got):\n%s", diff)
	}
	if ext.NumVoxels() != 32 {
		t.Errorf("Expected 32 voxels, got %d\n", ext.NumVoxels())
	}
	if n, err := ext.RowCount(); err != nil || n != 4 {
		t.Errorf("Expected 4 rows, got %d (%v)\n", n, err)
	}
	if !ext.Contains(-2, 3, 10) || ext.Contains(6, 0, 10) || ext.Contains(0, 0, 11) {
		t.Errorf("Bad containment for %s\n", ext)
	}
	if ext.String() != "[-2,5]x[0,3]x[10,10]" {
		t.Errorf("Bad string %q\n", ext.String())
	}
	arr := ext.Array()
	back, err := ExtentsFromArray(arr[:])
	if err != nil || back != ext {
		t.Errorf("Array round trip gave %s (%v)\n", back, err)
	}
	if _, err := ExtentsFromArray([]int32{1, 2, 3}); err == nil {
		t.Errorf("Expected error for short extent array\n")
	}
}

func TestExtentsEmpty(t *testing.T) {
	empty := EmptyExtents3d()
	if !empty.Empty() || empty.NumVoxels() != 0 || empty.String() != "(empty)" {
		t.Errorf("Bad empty extent %s\n", empty)
	}
	other := NewExtents3d(5, 4, 0, 10, 0, 10)
	if !other.Empty() || !other.Equals(empty) {
		t.Errorf("All empty extents should be equal\n")
	}
	if n, err := empty.RowCount(); n != 0 || err != nil {
		t.Errorf("Empty extent has %d rows\n", n)
	}
	ext := NewExtents3d(0, 1, 0, 1, 0, 1)
	if !ext.Union(empty).Equals(ext) || !empty.Union(ext).Equals(ext) {
		t.Errorf("Union with empty extent should be identity\n")
	}
	if !ext.ContainsExtents(empty) {
		t.Errorf("Any extent contains the empty extent\n")
	}
}

func TestExtentsSetOps(t *testing.T) {
	a := NewExtents3d(0, 10, 0, 10, 0, 10)
	b := NewExtents3d(5, 15, -5, 5, 8, 20)
	want := NewExtents3d(5, 10, 0, 5, 8, 10)
	if got := a.Intersect(b); !got.Equals(want) {
		t.Errorf("Intersect gave %s, expected %s\n", got, want)
	}
	if !a.Overlaps(b) || a.Overlaps(NewExtents3d(11, 12, 0, 1, 0, 1)) {
		t.Errorf("Bad overlap test\n")
	}
	union := NewExtents3d(0, 15, -5, 10, 0, 20)
	if got := a.Union(b); !got.Equals(union) {
		t.Errorf("Union gave %s, expected %s\n", got, union)
	}
	if !union.ContainsExtents(a) || a.ContainsExtents(b) {
		t.Errorf("Bad extent containment\n")
	}

	ext := EmptyExtents3d()
	ext.AdjustPoint(3, 4, 5)
	if !ext.Equals(NewExtents3d(3, 3, 4, 4, 5, 5)) {
		t.Errorf("AdjustPoint on empty extent gave %s\n", ext)
	}
	ext.AdjustPoint(-1, 6, 5)
	if !ext.Equals(NewExtents3d(-1, 3, 4, 6, 5, 5)) {
		t.Errorf("AdjustPoint gave %s\n", ext)
	}
}

func TestPoint3d(t *testing.T) {
	a := Point3d{10, 21, 837821}
	b := Point3d{78312, -200, 40123}
	if diff := cmp.Diff(Point3d{a[0] + b[0], a[1] + b[1], a[2] + b[2]}, a.Add(b)); diff != "" {
		t.Errorf("Bad Add (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Point3d{a[0] - b[0], a[1] - b[1], a[2] - b[2]}, a.Sub(b)); diff != "" {
		t.Errorf("Bad Sub (-want +got):\n%s", diff)
	}
	if a.AddScalar(1) != (Point3d{11, 22, 837822}) {
		t.Errorf("Bad AddScalar\n")
	}
	if (Point3d{2, 3, 4}).Prod() != 24 {
		t.Errorf("Bad Prod\n")
	}
	min, max := a, a
	min.SetMinimum(b)
	max.SetMaximum(b)
	if min != (Point3d{10, -200, 40123}) || max != (Point3d{78312, 21, 837821}) {
		t.Errorf("Bad min/max: %s, %s\n", min, max)
	}

	pt, err := StringToPoint3d("4, -2,7", ",")
	if err != nil || pt != (Point3d{4, -2, 7}) {
		t.Errorf("Couldn't parse point: %s (%v)\n", pt, err)
	}
	if _, err := StringToPoint3d("1_2", "_"); err == nil {
		t.Errorf("Expected error parsing 2d point\n")
	}
	if _, err := StringToPoint3d("1_a_2", "_"); err == nil {
		t.Errorf("Expected error parsing non-integer point\n")
	}
}
