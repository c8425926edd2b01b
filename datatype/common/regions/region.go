package regions

import (
	"sort"

	"github.com/janelia-flyem/stencil/dvid"
)

// Region is one connected component found by flood fill.
type Region struct {
	ID      uint32         // 0 is the background, 1..N in discovery order
	Size    int64          // number of voxels
	Extents dvid.Extents3d // bounding box of the voxels
	SeedID  int            // index of the originating seed, or -1
}

// regionList holds the regions found so far.  Index 0 is always the
// background sentinel and index i holds the region with id i.
type regionList []Region

func newRegionList() regionList {
	return regionList{{ID: 0, SeedID: -1, Extents: dvid.EmptyExtents3d()}}
}

// numRegions returns the number of real regions, excluding the sentinel.
func (rl regionList) numRegions() int {
	return len(rl) - 1
}

// remap keeps the regions whose lut entry is non-zero, renumbered to their
// lut entries, which must be 1..K in the original order.
func (rl regionList) remap(lut []uint32) regionList {
	out := rl[:1]
	for id := 1; id < len(rl); id++ {
		if lut[id] == 0 {
			continue
		}
		r := rl[id]
		r.ID = lut[id]
		out = append(out, r)
	}
	return out
}

// sizeFilterLUT maps each id to its compacted id, or 0 if the region's size
// is outside [minSize, maxSize].  ok is false if every region is kept.
func (rl regionList) sizeFilterLUT(minSize, maxSize int64) (lut []uint32, ok bool) {
	lut = make([]uint32, len(rl))
	var next uint32 = 1
	for id := 1; id < len(rl); id++ {
		size := rl[id].Size
		if size < minSize || size > maxSize {
			ok = true
			continue
		}
		lut[id] = next
		next++
	}
	return lut, ok
}

// largest returns the id of the largest region, the earliest on ties, or 0.
func (rl regionList) largest() uint32 {
	var best uint32
	for id := 1; id < len(rl); id++ {
		if best == 0 || rl[id].Size > rl[best].Size {
			best = uint32(id)
		}
	}
	return best
}

// smallest returns the id of the smallest region, the earliest on ties, or 0.
func (rl regionList) smallest() uint32 {
	var best uint32
	for id := 1; id < len(rl); id++ {
		if best == 0 || rl[id].Size < rl[best].Size {
			best = uint32(id)
		}
	}
	return best
}

// keepOnlyLUT maps keep to 1 and every other region to the background.
func (rl regionList) keepOnlyLUT(keep uint32) []uint32 {
	lut := make([]uint32, len(rl))
	lut[keep] = 1
	return lut
}

// dropLUT removes one region and shifts every higher id down by one.
func (rl regionList) dropLUT(drop uint32) []uint32 {
	lut := make([]uint32, len(rl))
	for id := 1; id < len(rl); id++ {
		switch {
		case uint32(id) < drop:
			lut[id] = uint32(id)
		case uint32(id) > drop:
			lut[id] = uint32(id) - 1
		}
	}
	return lut
}

// sizeRankOrder returns region ids sorted by descending size, ties kept in
// discovery order.
func (rl regionList) sizeRankOrder() []uint32 {
	order := make([]uint32, 0, len(rl)-1)
	for id := 1; id < len(rl); id++ {
		order = append(order, uint32(id))
	}
	sort.SliceStable(order, func(i, j int) bool {
		return rl[order[i]].Size > rl[order[j]].Size
	})
	return order
}
