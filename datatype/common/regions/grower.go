package regions

import (
	"context"

	"github.com/janelia-flyem/stencil/datatype/common/stencil"
	"github.com/janelia-flyem/stencil/dvid"
)

// Result holds the label volume and the per-region metadata of a Grow call.
// The region slices are parallel: entry i describes the region whose voxels
// carry RegionLabels[i].  With SizeRank labeling they are ordered by label.
type Result struct {
	Labels        *dvid.Array
	RegionSizes   []int64
	RegionSeedIDs []int
	RegionLabels  []int64

	// RegionExtents is only filled when Config.GenerateRegionExtents is set.
	RegionExtents []dvid.Extents3d

	// Aborted is set if the context was cancelled.  The labels then hold
	// internal region ids for whatever was filled before cancellation.
	Aborted bool
}

// NumRegions returns the number of regions in the result.
func (r *Result) NumRegions() int {
	return len(r.RegionSizes)
}

// grower holds the state of one Grow invocation.
type grower struct {
	ctx  context.Context
	done <-chan struct{}
	cfg  Config

	input  *dvid.Array
	labels *dvid.Array

	work   dvid.Extents3d // voxels that may be visited
	output dvid.Extents3d // voxels that may be written
	nx, ny int
	nxy    int
	nz     int

	visited visitBitmap
	regions regionList
	maxID   uint32
	stack   []int
	aborted bool
}

// Grow labels the 6-connected regions of input voxels that lie within the
// scalar range and inside st, which may be nil.  Regions are grown from the
// seeds and, when there are no seeds or AllRegions extraction is requested,
// from every remaining voxel in z, y, x raster order.  The returned labels
// cover the input extent, are zero outside any region, and are only written
// within Config.OutputExtents if it is set.
//
// Configuration errors are returned before any output is made.  A cancelled
// context is not an error: the partial result is returned with Aborted set.
func Grow(ctx context.Context, input *dvid.Array, st *stencil.Volume, seeds []Seed, cfg Config) (*Result, error) {
	if err := cfg.validate(input); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	maxID, _ := maxLabel(cfg.LabelType)
	labels, err := dvid.NewArray(input.Extents(), cfg.LabelType, 1)
	if err != nil {
		return nil, err
	}

	g := &grower{
		ctx:     ctx,
		done:    ctx.Done(),
		cfg:     cfg,
		input:   input,
		labels:  labels,
		work:    input.Extents(),
		output:  input.Extents(),
		regions: newRegionList(),
		maxID:   maxID,
	}
	if st != nil {
		g.work = g.work.Intersect(st.Extents())
	}
	if cfg.OutputExtents != nil {
		g.output = g.output.Intersect(*cfg.OutputExtents)
	}
	if g.work.Empty() {
		dvid.Debugf("Region growing skipped: input %s does not overlap stencil\n", input.Extents())
		return g.result(nil), nil
	}

	timedLog := dvid.NewTimeLog()
	if !g.markVisitable(st) {
		return g.result(nil), nil
	}
	g.seededPass(seeds)
	if !g.aborted && (len(seeds) == 0 || cfg.ExtractionMode == AllRegions) {
		g.unseededPass()
	}
	if g.aborted {
		timedLog.Infof("Region growing cancelled after %d regions", g.regions.numRegions())
		return g.result(nil), nil
	}
	res := g.finish(seeds)
	timedLog.Debugf("Grew %d regions over %s (%s mode, %s labels)",
		res.NumRegions(), g.work, cfg.ExtractionMode, cfg.LabelMode)
	return res, nil
}

// markVisitable builds the visited bitmap so that only voxels inside the
// stencil and within the scalar range are left unvisited.  It returns false
// if the traversal was cancelled.
func (g *grower) markVisitable(st *stencil.Volume) bool {
	size := g.work.Size()
	g.nx, g.ny, g.nz = int(size[0]), int(size[1]), int(size[2])
	g.nxy = g.nx * g.ny
	g.visited = newVisitBitmap(g.nxy*g.nz, true)

	lo, hi := g.cfg.ScalarRange[0], g.cfg.ScalarRange[1]
	comps := int(g.input.NumComponents())
	active := int(g.cfg.ActiveComponent)

	it := stencil.NewIterator(g.ctx, g.input, st, &g.work, g.cfg.Progress, 0)
	for !it.IsAtEnd() {
		if it.IsInStencil() {
			x0, _, y, z := it.SpanExtent()
			w := g.workIndex(x0, y, z)
			for i := it.BeginSpan() + active; i < it.EndSpan(); i += comps {
				if v := g.input.Value(i); v >= lo && v <= hi {
					g.visited.unvisit(w)
				}
				w++
			}
		}
		it.NextSpan()
	}
	if it.Aborted() {
		g.aborted = true
		return false
	}
	return true
}

func (g *grower) workIndex(x, y, z int32) int {
	minPt := g.work.MinPoint
	return (int(z-minPt[2])*g.ny+int(y-minPt[1]))*g.nx + int(x-minPt[0])
}

func (g *grower) workCoord(w int) (x, y, z int32) {
	minPt := g.work.MinPoint
	zi := w / g.nxy
	rem := w - zi*g.nxy
	yi := rem / g.nx
	xi := rem - yi*g.nx
	return minPt[0] + int32(xi), minPt[1] + int32(yi), minPt[2] + int32(zi)
}

func (g *grower) seededPass(seeds []Seed) {
	for seedID, seed := range seeds {
		if seed.HasValue && seed.Value == 0 {
			continue
		}
		pt := seed.Point
		if !g.work.ContainsPoint(pt) {
			continue
		}
		w := g.workIndex(pt[0], pt[1], pt[2])
		if g.visited.visited(w) {
			continue
		}
		g.grow(w, seedID)
		if g.aborted {
			return
		}
	}
}

func (g *grower) unseededPass() {
	for w := g.visited.nextUnvisited(0); w >= 0; w = g.visited.nextUnvisited(w + 1) {
		g.grow(w, -1)
		if g.aborted {
			return
		}
	}
}

// grow adds a region and flood fills it from work index start, which must
// be unvisited.
func (g *grower) grow(start int, seedID int) {
	if uint32(g.regions.numRegions()) >= g.maxID {
		g.makeRoom()
	}
	id := uint32(len(g.regions))
	g.regions = append(g.regions, Region{ID: id, SeedID: seedID, Extents: dvid.EmptyExtents3d()})
	region := &g.regions[id]

	g.stack = append(g.stack[:0], start)
	for len(g.stack) > 0 {
		select {
		case <-g.done:
			g.aborted = true
			return
		default:
		}
		w := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]
		if g.visited.visited(w) {
			continue
		}
		g.visited.visit(w)

		x, y, z := g.workCoord(w)
		region.Size++
		region.Extents.AdjustPoint(x, y, z)
		if g.output.Contains(x, y, z) {
			g.labels.SetLabel(g.labels.Index(x, y, z), id)
		}

		// Pushed z first and x last, so x neighbors are popped first.
		minPt, maxPt := g.work.MinPoint, g.work.MaxPoint
		if z > minPt[2] {
			g.push(w - g.nxy)
		}
		if z < maxPt[2] {
			g.push(w + g.nxy)
		}
		if y > minPt[1] {
			g.push(w - g.nx)
		}
		if y < maxPt[1] {
			g.push(w + g.nx)
		}
		if x > minPt[0] {
			g.push(w - 1)
		}
		if x < maxPt[0] {
			g.push(w + 1)
		}
	}
}

func (g *grower) push(w int) {
	if !g.visited.visited(w) {
		g.stack = append(g.stack, w)
	}
}

// makeRoom frees at least one region id by pruning regions outside the size
// range and, if that is not enough, either collapsing to the largest region
// or dropping the smallest one.
func (g *grower) makeRoom() {
	minSize, maxSize := g.cfg.SizeRange[0], g.cfg.SizeRange[1]
	if lut, pruned := g.regions.sizeFilterLUT(minSize, maxSize); pruned {
		g.relabel(lut)
		if dvid.Verbose {
			dvid.Debugf("Pruned regions outside size range: %d of %d kept\n",
				countNonZero(lut), g.regions.numRegions())
		}
		g.regions = g.regions.remap(lut)
	}
	if uint32(g.regions.numRegions()) < g.maxID {
		return
	}
	var lut []uint32
	if g.cfg.ExtractionMode == LargestRegion {
		lut = g.regions.keepOnlyLUT(g.regions.largest())
	} else {
		lut = g.regions.dropLUT(g.regions.smallest())
	}
	g.relabel(lut)
	g.regions = g.regions.remap(lut)
}

// relabel rewrites every written label through lut.
func (g *grower) relabel(lut []uint32) {
	if g.output.Empty() {
		return
	}
	minPt, maxPt := g.output.MinPoint, g.output.MaxPoint
	for z := minPt[2]; z <= maxPt[2]; z++ {
		for y := minPt[1]; y <= maxPt[1]; y++ {
			i := g.labels.Index(minPt[0], y, z)
			for x := minPt[0]; x <= maxPt[0]; x++ {
				if id := g.labels.Label(i); id != 0 {
					g.labels.SetLabel(i, lut[id])
				}
				i++
			}
		}
	}
}

// finish applies the final size filter and extraction mode, assigns labels
// and builds the result.
func (g *grower) finish(seeds []Seed) *Result {
	if lut, pruned := g.regions.sizeFilterLUT(g.cfg.SizeRange[0], g.cfg.SizeRange[1]); pruned {
		g.relabel(lut)
		g.regions = g.regions.remap(lut)
	}
	if g.cfg.ExtractionMode == LargestRegion && g.regions.numRegions() > 1 {
		lut := g.regions.keepOnlyLUT(g.regions.largest())
		g.relabel(lut)
		g.regions = g.regions.remap(lut)
	}

	numRegions := g.regions.numRegions()
	order := make([]uint32, numRegions)
	for i := range order {
		order[i] = uint32(i + 1)
	}
	final := make([]uint32, numRegions+1)
	switch g.cfg.LabelMode {
	case SizeRank:
		order = g.regions.sizeRankOrder()
		for rank, id := range order {
			final[id] = g.clampLabel(float64(rank + 1))
		}
	case ConstantValue:
		for id := 1; id <= numRegions; id++ {
			final[id] = g.clampLabel(float64(g.cfg.LabelConstant))
		}
	default:
		for id := 1; id <= numRegions; id++ {
			value := float64(g.cfg.LabelConstant)
			if seedID := g.regions[id].SeedID; seedID >= 0 && seeds[seedID].HasValue {
				value = seeds[seedID].Value
			}
			final[id] = g.clampLabel(value)
		}
	}
	g.relabel(final)
	return g.result(&resultOrder{ids: order, labels: final})
}

func (g *grower) clampLabel(v float64) uint32 {
	return uint32(g.cfg.LabelType.Clamp(v))
}

// resultOrder gives the region ids to report, in order, and their labels.
type resultOrder struct {
	ids    []uint32
	labels []uint32
}

// result packages the current regions.  Without an order, regions are
// reported in id order labeled with their internal ids.
func (g *grower) result(ro *resultOrder) *Result {
	res := &Result{Labels: g.labels, Aborted: g.aborted}
	n := g.regions.numRegions()
	if ro == nil {
		ro = &resultOrder{ids: make([]uint32, n), labels: make([]uint32, n+1)}
		for i := 0; i < n; i++ {
			ro.ids[i] = uint32(i + 1)
			ro.labels[i+1] = uint32(i + 1)
		}
	}
	res.RegionSizes = make([]int64, n)
	res.RegionSeedIDs = make([]int, n)
	res.RegionLabels = make([]int64, n)
	if g.cfg.GenerateRegionExtents {
		res.RegionExtents = make([]dvid.Extents3d, n)
	}
	for i, id := range ro.ids {
		region := g.regions[id]
		res.RegionSizes[i] = region.Size
		res.RegionSeedIDs[i] = region.SeedID
		res.RegionLabels[i] = int64(ro.labels[id])
		if res.RegionExtents != nil {
			res.RegionExtents[i] = region.Extents
		}
	}
	return res
}

func countNonZero(lut []uint32) int {
	var n int
	for _, v := range lut[1:] {
		if v != 0 {
			n++
		}
	}
	return n
}
