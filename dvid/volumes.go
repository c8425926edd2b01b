/*
	This file contains run-length encoded spans used to exchange sparse
	volumes between stencils and other label-oriented code.
*/

package dvid

import "fmt"

// RLE is a single run-length encoded span with a start coordinate and length along
// a coordinate (typically X).
type RLE struct {
	start  Point3d
	length int32
}

func NewRLE(start Point3d, length int32) RLE {
	return RLE{start, length}
}

// StartPt returns the first voxel of the span.
func (rle RLE) StartPt() Point3d {
	return rle.start
}

// Length returns the number of voxels in the span.
func (rle RLE) Length() int32 {
	return rle.length
}

// EndPt returns the last voxel of the span.
func (rle RLE) EndPt() Point3d {
	end := rle.start
	end[0] += rle.length - 1
	return end
}

func (rle RLE) String() string {
	return fmt.Sprintf("%s+%d", rle.start, rle.length)
}

// RLEs are simply a slice of RLE.
type RLEs []RLE

// Stats returns the total number of voxels and runs.
func (rles RLEs) Stats() (numVoxels uint64, numRuns int32) {
	if len(rles) == 0 {
		return 0, 0
	}
	for _, rle := range rles {
		numVoxels += uint64(rle.length)
	}
	return numVoxels, int32(len(rles))
}

// Extents returns the bounding box of all spans, empty if there are none.
func (rles RLEs) Extents() Extents3d {
	ext := EmptyExtents3d()
	for _, rle := range rles {
		if rle.length <= 0 {
			continue
		}
		s := rle.start
		e := rle.EndPt()
		ext.AdjustPoint(s[0], s[1], s[2])
		ext.AdjustPoint(e[0], e[1], e[2])
	}
	return ext
}

// Less orders spans by z, then y, then starting x.
func (rles RLEs) Less(i, j int) bool {
	a, b := rles[i].start, rles[j].start
	if a[2] != b[2] {
		return a[2] < b[2]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[0] < b[0]
}

func (rles RLEs) Len() int      { return len(rles) }
func (rles RLEs) Swap(i, j int) { rles[i], rles[j] = rles[j], rles[i] }
