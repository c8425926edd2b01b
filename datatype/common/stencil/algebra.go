package stencil

import "github.com/janelia-flyem/stencil/dvid"

// boolOp is the truth table applied by the sweep to the states of its two
// operands.
type boolOp func(a, b bool) bool

func opOr(a, b bool) bool  { return a || b }
func opAnd(a, b bool) bool { return a && b }

// combineRows sweeps the breakpoints of two rows over the inclusive range
// [lo, hi] and returns the row where op(inA, inB) holds.  Either operand may
// be logically negated, so OR gives a union and AND with a negated second
// operand gives a difference.  Breakpoints shared by both rows toggle both
// states in the same step.
func combineRows(a *RowMask, negA bool, b *RowMask, negB bool, lo, hi int32, op boolOp) RowMask {
	var out RowMask
	if hi < lo {
		return out
	}
	av, bv := a.values(), b.values()
	stateA, stateB := negA, negB

	i, j := 0, 0
	for i < len(av) && av[i] < lo {
		stateA = !stateA
		i++
	}
	for j < len(bv) && bv[j] < lo {
		stateB = !stateB
		j++
	}

	end := int64(hi) + 1
	cur := int64(lo)
	for cur < end {
		t1, t2 := end, end
		if i < len(av) && int64(av[i]) < end {
			t1 = int64(av[i])
		}
		if j < len(bv) && int64(bv[j]) < end {
			t2 = int64(bv[j])
		}
		next := t1
		if t2 < next {
			next = t2
		}
		if next > cur && op(stateA, stateB) {
			out.Insert(int32(cur), int32(next))
		}
		if t1 == next && i < len(av) && int64(av[i]) == next {
			stateA = !stateA
			i++
		}
		if t2 == next && j < len(bv) && int64(bv[j]) == next {
			stateB = !stateB
			j++
		}
		cur = next
	}
	return out
}

// spliceRow returns r, which spans at most [xlo, xhi], with the inclusive
// window [lo, hi] replaced by the contents of replacement over that window.
func spliceRow(r *RowMask, replacement *RowMask, lo, hi, xlo, xhi int32) RowMask {
	window := NewRowMask([2]int32{lo, hi + 1})
	kept := combineRows(r, false, &window, true, xlo, xhi, opAnd)
	return combineRows(&kept, false, replacement, false, xlo, xhi, opOr)
}

// Merge adds every inside voxel of other to the receiver (OR).  The receiver's
// extent grows to the union of both extents.  Returns true if anything changed.
func (v *Volume) Merge(other *Volume) bool {
	if other == nil || other.extents.Empty() || len(other.rows) == 0 {
		return false
	}
	if err := v.ensureRows(); err != nil {
		dvid.Errorf("Unable to allocate stencil %s: %v\n", v.extents, err)
		return false
	}
	union := v.extents.Union(other.extents)
	if !union.Equals(v.extents) {
		if err := v.ChangeExtents(union); err != nil {
			dvid.Errorf("Unable to grow stencil %s to %s for merge: %v\n", v.extents, union, err)
			return false
		}
	}
	lo, hi := v.extents.MinPoint[0], v.extents.MaxPoint[0]
	var changed bool
	oext := other.extents
	for z := oext.MinPoint[2]; z <= oext.MaxPoint[2]; z++ {
		for y := oext.MinPoint[1]; y <= oext.MaxPoint[1]; y++ {
			orow := other.Row(y, z)
			if orow.Empty() {
				continue
			}
			row := v.Row(y, z)
			merged := combineRows(row, false, orow, false, lo, hi, opOr)
			if !merged.Equal(row) {
				*row = merged
				changed = true
			}
		}
	}
	return changed
}

// Subtract removes every inside voxel of other from the receiver (AND NOT).
// Returns true if anything changed.
func (v *Volume) Subtract(other *Volume) bool {
	if other == nil {
		return false
	}
	overlap := v.extents.Intersect(other.extents)
	if overlap.Empty() || len(v.rows) == 0 || len(other.rows) == 0 {
		return false
	}
	lo, hi := v.extents.MinPoint[0], v.extents.MaxPoint[0]
	var changed bool
	for z := overlap.MinPoint[2]; z <= overlap.MaxPoint[2]; z++ {
		for y := overlap.MinPoint[1]; y <= overlap.MaxPoint[1]; y++ {
			row, orow := v.Row(y, z), other.Row(y, z)
			if row.Empty() || orow.Empty() {
				continue
			}
			erased := combineRows(row, false, orow, true, lo, hi, opAnd)
			if !erased.Equal(row) {
				*row = erased
				changed = true
			}
		}
	}
	return changed
}

// Intersect keeps only the voxels inside both the receiver and other (AND).
// Returns true if anything changed.
func (v *Volume) Intersect(other *Volume) bool {
	if len(v.rows) == 0 {
		return false
	}
	var changed bool
	lo, hi := v.extents.MinPoint[0], v.extents.MaxPoint[0]
	var empty RowMask
	i := 0
	for z := v.extents.MinPoint[2]; z <= v.extents.MaxPoint[2]; z++ {
		for y := v.extents.MinPoint[1]; y <= v.extents.MaxPoint[1]; y++ {
			row := &v.rows[i]
			i++
			if row.Empty() {
				continue
			}
			var orow *RowMask
			if other != nil {
				orow = other.Row(y, z)
			}
			if orow == nil {
				orow = &empty
			}
			kept := combineRows(row, false, orow, false, lo, hi, opAnd)
			if !kept.Equal(row) {
				*row = kept
				changed = true
			}
		}
	}
	return changed
}

// Replace overwrites the receiver with other within other's extent: voxels in
// that extent become inside exactly where other is inside, and voxels outside
// it are untouched.  The receiver's extent grows to hold other's extent.
// Returns true if anything changed.
func (v *Volume) Replace(other *Volume) bool {
	if other == nil || other.extents.Empty() || len(other.rows) == 0 {
		return false
	}
	if err := v.ensureRows(); err != nil {
		dvid.Errorf("Unable to allocate stencil %s: %v\n", v.extents, err)
		return false
	}
	union := v.extents.Union(other.extents)
	if !union.Equals(v.extents) {
		if err := v.ChangeExtents(union); err != nil {
			dvid.Errorf("Unable to grow stencil %s to %s for replace: %v\n", v.extents, union, err)
			return false
		}
	}
	oext := other.extents
	olo, ohi := oext.MinPoint[0], oext.MaxPoint[0]
	xlo, xhi := v.extents.MinPoint[0], v.extents.MaxPoint[0]
	var changed bool
	for z := oext.MinPoint[2]; z <= oext.MaxPoint[2]; z++ {
		for y := oext.MinPoint[1]; y <= oext.MaxPoint[1]; y++ {
			row := v.Row(y, z)
			spliced := spliceRow(row, other.Row(y, z), olo, ohi, xlo, xhi)
			if !spliced.Equal(row) {
				*row = spliced
				changed = true
			}
		}
	}
	return changed
}

// Invert complements the stencil within its extent.
func (v *Volume) Invert() bool {
	if len(v.rows) == 0 {
		return false
	}
	lo, hi := v.extents.MinPoint[0], v.extents.MaxPoint[0]
	var empty RowMask
	for i := range v.rows {
		v.rows[i] = combineRows(&v.rows[i], true, &empty, false, lo, hi, opOr)
	}
	return true
}

// Clip restricts the stencil to ext, dropping every voxel outside it and
// shrinking the extent to the overlap.  Returns true if anything changed.
func (v *Volume) Clip(ext dvid.Extents3d) bool {
	clipped := v.extents.Intersect(ext)
	if clipped.Equals(v.extents) {
		return false
	}
	if err := v.ChangeExtents(clipped); err != nil {
		dvid.Errorf("Unable to clip stencil %s to %s: %v\n", v.extents, ext, err)
		return false
	}
	return true
}
