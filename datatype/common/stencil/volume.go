/*
	Package stencil implements sparse boolean volume masks.  A Volume records,
	for every (y,z) row of an extent, the run-length list of x ranges that are
	"inside".  Volumes can be combined with a small set algebra and traversed
	span-by-span alongside dense voxel arrays with an Iterator.

	A Volume has no internal locking.  Any number of iterators may read a
	Volume concurrently as long as no mutation happens at the same time.
*/
package stencil

import (
	"fmt"

	"github.com/DmitriyVTitov/size"

	"github.com/janelia-flyem/stencil/dvid"
)

// Volume is a 3d stencil: an extent plus one RowMask per (y,z) row.
type Volume struct {
	extents dvid.Extents3d
	rows    []RowMask
}

// NewVolume returns an empty stencil with an empty extent and no rows.
func NewVolume() *Volume {
	return &Volume{extents: dvid.EmptyExtents3d()}
}

// NewVolumeWithExtents returns a stencil with rows allocated for ext.
func NewVolumeWithExtents(ext dvid.Extents3d) (*Volume, error) {
	v := NewVolume()
	v.SetExtents(ext)
	if err := v.AllocateExtents(); err != nil {
		return nil, err
	}
	return v, nil
}

// Extents returns the extent addressed by the stencil.
func (v *Volume) Extents() dvid.Extents3d {
	return v.extents
}

// SetExtents sets the extent for a following AllocateExtents.  Rows for a
// different extent are discarded; use ChangeExtents to resize while keeping
// data.
func (v *Volume) SetExtents(ext dvid.Extents3d) {
	if ext.Empty() {
		ext = dvid.EmptyExtents3d()
	}
	if !ext.Equals(v.extents) {
		v.rows = v.rows[:0]
	}
	v.extents = ext
}

// AllocateExtents (re)sizes the row table to the current extent and clears
// every row.  Existing owned buffers are released.
func (v *Volume) AllocateExtents() error {
	numRows, err := v.extents.RowCount()
	if err != nil {
		return err
	}
	if cap(v.rows) >= numRows {
		v.rows = v.rows[:numRows]
		for i := range v.rows {
			v.rows[i] = RowMask{}
		}
		return nil
	}
	v.rows = make([]RowMask, numRows)
	return nil
}

// ensureRows allocates the row table if an extent was set without
// AllocateExtents.
func (v *Volume) ensureRows() error {
	if len(v.rows) == 0 && !v.extents.Empty() {
		return v.AllocateExtents()
	}
	return nil
}

// NumRows returns the number of (y,z) rows held.
func (v *Volume) NumRows() int {
	return len(v.rows)
}

// rowIndex returns the table index of row (y,z) or false if the row lies
// outside the extent.
func (v *Volume) rowIndex(y, z int32) (int, bool) {
	if len(v.rows) == 0 {
		return 0, false
	}
	minPt, maxPt := v.extents.MinPoint, v.extents.MaxPoint
	if y < minPt[1] || y > maxPt[1] || z < minPt[2] || z > maxPt[2] {
		return 0, false
	}
	ny := int(maxPt[1] - minPt[1] + 1)
	return int(z-minPt[2])*ny + int(y-minPt[1]), true
}

// Row returns the row at (y,z), or nil if it lies outside the extent.  The
// returned row must only be modified through its methods.
func (v *Volume) Row(y, z int32) *RowMask {
	i, ok := v.rowIndex(y, z)
	if !ok {
		return nil
	}
	return &v.rows[i]
}

// InsertNextExtent adds the inclusive x range [r1, r2] to row (y,z).  Calls
// for one row must come in non-decreasing x order.  Rows outside the extent
// are ignored and x is clipped to the extent.
func (v *Volume) InsertNextExtent(r1, r2, y, z int32) {
	i, ok := v.rowIndex(y, z)
	if !ok {
		return
	}
	r1, r2 = v.clampX(r1, r2)
	if r2 < r1 {
		return
	}
	v.rows[i].Insert(r1, r2+1)
}

// InsertAndMergeExtent adds the inclusive x range [r1, r2] to row (y,z) in
// any order, merging it with overlapping or adjacent stored ranges.
func (v *Volume) InsertAndMergeExtent(r1, r2, y, z int32) {
	i, ok := v.rowIndex(y, z)
	if !ok {
		return
	}
	r1, r2 = v.clampX(r1, r2)
	if r2 < r1 {
		return
	}
	add := NewRowMask([2]int32{r1, r2 + 1})
	lo, hi := v.extents.MinPoint[0], v.extents.MaxPoint[0]
	v.rows[i] = combineRows(&v.rows[i], false, &add, false, lo, hi, opOr)
}

// RemoveExtent removes the inclusive x range [r1, r2] from row (y,z).
func (v *Volume) RemoveExtent(r1, r2, y, z int32) {
	i, ok := v.rowIndex(y, z)
	if !ok {
		return
	}
	r1, r2 = v.clampX(r1, r2)
	if r2 < r1 {
		return
	}
	del := NewRowMask([2]int32{r1, r2 + 1})
	lo, hi := v.extents.MinPoint[0], v.extents.MaxPoint[0]
	v.rows[i] = combineRows(&v.rows[i], false, &del, true, lo, hi, opAnd)
}

func (v *Volume) clampX(r1, r2 int32) (int32, int32) {
	if r1 < v.extents.MinPoint[0] {
		r1 = v.extents.MinPoint[0]
	}
	if r2 > v.extents.MaxPoint[0] {
		r2 = v.extents.MaxPoint[0]
	}
	return r1, r2
}

// IsInside returns true if voxel (x,y,z) is inside the stencil.
func (v *Volume) IsInside(x, y, z int32) bool {
	i, ok := v.rowIndex(y, z)
	if !ok || x < v.extents.MinPoint[0] || x > v.extents.MaxPoint[0] {
		return false
	}
	return v.rows[i].IsInside(x)
}

// GetNextExtent enumerates the inside sub-ranges of row (y,z) within the
// inclusive bound [lo, hi].  Start iter at 0 for the inside ranges or at -1
// for the complement.  A row outside the extent is entirely outside, so its
// complement is the whole bound.
func (v *Volume) GetNextExtent(lo, hi, y, z int32, iter *int) (r1, r2 int32, ok bool) {
	i, inRange := v.rowIndex(y, z)
	if !inRange {
		return nextExtent(nil, lo, hi, iter)
	}
	return v.rows[i].NextExtent(lo, hi, iter)
}

// ChangeExtents resizes the stencil to ext while keeping the data that lies
// within both the old and new extents.  Rows that fall outside the new y/z
// bounds are released and retained rows are clipped in x.  The new row table
// is built completely before it replaces the old one, so on error the stencil
// is unchanged.
func (v *Volume) ChangeExtents(ext dvid.Extents3d) error {
	if ext.Empty() {
		ext = dvid.EmptyExtents3d()
	}
	if ext.Equals(v.extents) {
		return nil
	}
	numRows, err := ext.RowCount()
	if err != nil {
		return err
	}
	rows := make([]RowMask, numRows)
	overlap := ext.Intersect(v.extents)
	if !overlap.Empty() && len(v.rows) != 0 {
		xlo, xhi := ext.MinPoint[0], ext.MaxPoint[0]
		clipX := xlo > v.extents.MinPoint[0] || xhi < v.extents.MaxPoint[0]
		ny := int(ext.MaxPoint[1] - ext.MinPoint[1] + 1)
		for z := overlap.MinPoint[2]; z <= overlap.MaxPoint[2]; z++ {
			for y := overlap.MinPoint[1]; y <= overlap.MaxPoint[1]; y++ {
				oldI, _ := v.rowIndex(y, z)
				newI := int(z-ext.MinPoint[2])*ny + int(y-ext.MinPoint[1])
				// Moving the struct copies inline values and hands over any
				// owned buffer; the old table is dropped below.
				rows[newI] = v.rows[oldI]
				if clipX {
					rows[newI].Clip(xlo, xhi)
				}
			}
		}
	}
	v.extents = ext
	v.rows = rows
	return nil
}

// Fill marks every voxel of the extent as inside.
func (v *Volume) Fill() {
	lo, hi := v.extents.MinPoint[0], v.extents.MaxPoint[0]
	for i := range v.rows {
		v.rows[i] = NewRowMask([2]int32{lo, hi + 1})
	}
}

// Clear empties every row but keeps the extent.
func (v *Volume) Clear() {
	for i := range v.rows {
		v.rows[i] = RowMask{}
	}
}

// Copy returns a deep copy sharing no row storage with v.
func (v *Volume) Copy() *Volume {
	dup := &Volume{extents: v.extents, rows: make([]RowMask, len(v.rows))}
	for i := range v.rows {
		dup.rows[i] = v.rows[i].Clone()
	}
	return dup
}

// NumVoxels returns the number of inside voxels.
func (v *Volume) NumVoxels() int64 {
	var total int64
	for i := range v.rows {
		total += v.rows[i].NumVoxels()
	}
	return total
}

// Equal returns true if both stencils mark the same voxels as inside,
// regardless of their extents.
func (v *Volume) Equal(v2 *Volume) bool {
	ext := v.extents.Union(v2.extents)
	if ext.Empty() {
		return true
	}
	var empty RowMask
	for z := ext.MinPoint[2]; z <= ext.MaxPoint[2]; z++ {
		for y := ext.MinPoint[1]; y <= ext.MaxPoint[1]; y++ {
			r1, r2 := v.Row(y, z), v2.Row(y, z)
			if r1 == nil {
				r1 = &empty
			}
			if r2 == nil {
				r2 = &empty
			}
			if !r1.Equal(r2) {
				return false
			}
		}
	}
	return true
}

// MemorySize returns the approximate number of bytes used by the stencil.
func (v *Volume) MemorySize() int {
	return size.Of(v)
}

// RLEs returns the inside voxels as x-runs ordered by z, y, then x.
func (v *Volume) RLEs() dvid.RLEs {
	var rles dvid.RLEs
	ext := v.extents
	if ext.Empty() || len(v.rows) == 0 {
		return rles
	}
	i := 0
	for z := ext.MinPoint[2]; z <= ext.MaxPoint[2]; z++ {
		for y := ext.MinPoint[1]; y <= ext.MaxPoint[1]; y++ {
			vals := v.rows[i].values()
			for j := 0; j < len(vals); j += 2 {
				rles = append(rles, dvid.NewRLE(dvid.Point3d{vals[j], y, z}, vals[j+1]-vals[j]))
			}
			i++
		}
	}
	return rles
}

// FromRLEs builds a stencil over ext from x-runs in any order.  Runs are
// clipped to ext; an empty ext uses the bounding box of the runs.
func FromRLEs(ext dvid.Extents3d, rles dvid.RLEs) (*Volume, error) {
	if ext.Empty() {
		ext = rles.Extents()
	}
	v, err := NewVolumeWithExtents(ext)
	if err != nil {
		return nil, err
	}
	for _, rle := range rles {
		if rle.Length() <= 0 {
			continue
		}
		s, e := rle.StartPt(), rle.EndPt()
		v.InsertAndMergeExtent(s[0], e[0], s[1], s[2])
	}
	return v, nil
}

func (v *Volume) String() string {
	return fmt.Sprintf("stencil %s with %d rows, %d voxels inside", v.extents, len(v.rows), v.NumVoxels())
}
