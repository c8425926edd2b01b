package dvid

import (
	"fmt"
	"math"
)

// Extents3d is an inclusive, axis-aligned box of voxel coordinates.  An
// extent whose maximum is smaller than its minimum along any axis is empty.
type Extents3d struct {
	MinPoint Point3d
	MaxPoint Point3d
}

// NewExtents3d returns the extent given as [xmin,xmax,ymin,ymax,zmin,zmax].
func NewExtents3d(xmin, xmax, ymin, ymax, zmin, zmax int32) Extents3d {
	return Extents3d{
		MinPoint: Point3d{xmin, ymin, zmin},
		MaxPoint: Point3d{xmax, ymax, zmax},
	}
}

// EmptyExtents3d returns an extent that contains no voxels.
func EmptyExtents3d() Extents3d {
	return Extents3d{
		MinPoint: Point3d{0, 0, 0},
		MaxPoint: Point3d{-1, -1, -1},
	}
}

// ExtentsFromArray converts a six-element [xmin,xmax,ymin,ymax,zmin,zmax] slice.
func ExtentsFromArray(a []int32) (Extents3d, error) {
	if len(a) != 6 {
		return Extents3d{}, fmt.Errorf("Extent requires 6 values, got %d", len(a))
	}
	return NewExtents3d(a[0], a[1], a[2], a[3], a[4], a[5]), nil
}

// Array returns the extent as [xmin,xmax,ymin,ymax,zmin,zmax].
func (ext Extents3d) Array() [6]int32 {
	return [6]int32{
		ext.MinPoint[0], ext.MaxPoint[0],
		ext.MinPoint[1], ext.MaxPoint[1],
		ext.MinPoint[2], ext.MaxPoint[2],
	}
}

// StartPoint returns the first voxel of the extent.
func (ext Extents3d) StartPoint() Point3d {
	return ext.MinPoint
}

// EndPoint returns the last voxel of the extent.
func (ext Extents3d) EndPoint() Point3d {
	return ext.MaxPoint
}

// Empty returns true if the extent holds no voxels.
func (ext Extents3d) Empty() bool {
	return ext.MaxPoint[0] < ext.MinPoint[0] ||
		ext.MaxPoint[1] < ext.MinPoint[1] ||
		ext.MaxPoint[2] < ext.MinPoint[2]
}

// Size returns the number of voxels along each axis, all zero for an empty extent.
func (ext Extents3d) Size() Point3d {
	if ext.Empty() {
		return Point3d{}
	}
	return ext.MaxPoint.Sub(ext.MinPoint).AddScalar(1)
}

// NumVoxels returns the number of voxels within the extent.
func (ext Extents3d) NumVoxels() int64 {
	return ext.Size().Prod()
}

// Contains returns true if the voxel lies within the extent.
func (ext Extents3d) Contains(x, y, z int32) bool {
	return x >= ext.MinPoint[0] && x <= ext.MaxPoint[0] &&
		y >= ext.MinPoint[1] && y <= ext.MaxPoint[1] &&
		z >= ext.MinPoint[2] && z <= ext.MaxPoint[2]
}

// ContainsPoint is Contains for a Point3d.
func (ext Extents3d) ContainsPoint(pt Point3d) bool {
	return ext.Contains(pt[0], pt[1], pt[2])
}

// ContainsExtents returns true if every voxel of ext2 lies within the receiver.
// An empty ext2 is contained by any extent.
func (ext Extents3d) ContainsExtents(ext2 Extents3d) bool {
	if ext2.Empty() {
		return true
	}
	return ext.ContainsPoint(ext2.MinPoint) && ext.ContainsPoint(ext2.MaxPoint)
}

// Intersect returns the overlap of two extents, which may be empty.
func (ext Extents3d) Intersect(ext2 Extents3d) Extents3d {
	result := ext
	result.MinPoint.SetMaximum(ext2.MinPoint)
	result.MaxPoint.SetMinimum(ext2.MaxPoint)
	return result
}

// Overlaps returns true if the two extents share at least one voxel.
func (ext Extents3d) Overlaps(ext2 Extents3d) bool {
	return !ext.Intersect(ext2).Empty()
}

// Union returns the smallest extent holding both extents.  Empty extents
// do not contribute.
func (ext Extents3d) Union(ext2 Extents3d) Extents3d {
	if ext.Empty() {
		return ext2
	}
	if ext2.Empty() {
		return ext
	}
	result := ext
	result.MinPoint.SetMinimum(ext2.MinPoint)
	result.MaxPoint.SetMaximum(ext2.MaxPoint)
	return result
}

// Equals returns true if both extents describe the same voxels.  All empty
// extents are equal.
func (ext Extents3d) Equals(ext2 Extents3d) bool {
	if ext.Empty() || ext2.Empty() {
		return ext.Empty() && ext2.Empty()
	}
	return ext.MinPoint == ext2.MinPoint && ext.MaxPoint == ext2.MaxPoint
}

// AdjustPoint widens the extent so it includes the given voxel.  An empty
// extent becomes the single voxel.
func (ext *Extents3d) AdjustPoint(x, y, z int32) {
	if ext.Empty() {
		ext.MinPoint = Point3d{x, y, z}
		ext.MaxPoint = Point3d{x, y, z}
		return
	}
	pt := Point3d{x, y, z}
	ext.MinPoint.SetMinimum(pt)
	ext.MaxPoint.SetMaximum(pt)
}

// RowCount returns the number of (y,z) rows in the extent or an error if
// that count cannot be addressed.
func (ext Extents3d) RowCount() (int, error) {
	if ext.Empty() {
		return 0, nil
	}
	size := ext.Size()
	n := int64(size[1]) * int64(size[2])
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("Extent %s has too many rows (%d)", ext, n)
	}
	return int(n), nil
}

func (ext Extents3d) String() string {
	if ext.Empty() {
		return "(empty)"
	}
	return fmt.Sprintf("[%d,%d]x[%d,%d]x[%d,%d]",
		ext.MinPoint[0], ext.MaxPoint[0],
		ext.MinPoint[1], ext.MaxPoint[1],
		ext.MinPoint[2], ext.MaxPoint[2])
}
