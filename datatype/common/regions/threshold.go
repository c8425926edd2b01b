package regions

import (
	"context"
	"fmt"
	"math"

	"github.com/janelia-flyem/stencil/datatype/common/stencil"
	"github.com/janelia-flyem/stencil/dvid"
)

// DefaultRadiusEpsilon widens the neighborhood ellipsoid so that voxels lying
// exactly on its surface are counted despite rounding.
const DefaultRadiusEpsilon = 1e-5

// ThresholdConfig holds the settings for GrowThreshold.
type ThresholdConfig struct {
	// Lower and Upper give the inclusive range of accepted input values.
	Lower float64 `toml:"lower"`
	Upper float64 `toml:"upper"`

	// Voxels in the grown region become InValue if ReplaceIn is set, and all
	// other voxels become OutValue if ReplaceOut is set.  Otherwise the input
	// value of the active component is copied.
	InValue    float64 `toml:"in_value"`
	OutValue   float64 `toml:"out_value"`
	ReplaceIn  bool    `toml:"replace_in"`
	ReplaceOut bool    `toml:"replace_out"`

	// OutputType is the scalar type of the single-component output.
	OutputType dvid.DataType `toml:"output_type"`

	// NeighborhoodRadius is the ellipsoid radius in voxels along x, y and z.
	// A zero radius tests only the voxel itself.
	NeighborhoodRadius [3]float64 `toml:"neighborhood_radius"`

	// NeighborhoodFraction is the minimum fraction of the neighborhood that
	// must be within the threshold for a voxel to join the region.
	NeighborhoodFraction float64 `toml:"neighborhood_fraction"`

	// RadiusEpsilon is added to the normalized ellipsoid radius.
	RadiusEpsilon float64 `toml:"radius_epsilon"`

	// Bounds, if set, limits growing to a sub-extent of the input.
	Bounds *dvid.Extents3d `toml:"-"`

	ActiveComponent int32 `toml:"active_component"`

	Progress stencil.ProgressFunc `toml:"-"`
}

// DefaultThresholdConfig returns settings producing a binary uint8 mask of
// the region of non-negative values grown from the seeds.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		Lower:                0,
		Upper:                math.MaxFloat64,
		InValue:              1,
		OutValue:             0,
		ReplaceIn:            true,
		ReplaceOut:           true,
		OutputType:           dvid.T_uint8,
		NeighborhoodFraction: 0.5,
		RadiusEpsilon:        DefaultRadiusEpsilon,
	}
}

// ThresholdBetween accepts values in [lower, upper].
func (c *ThresholdConfig) ThresholdBetween(lower, upper float64) {
	c.Lower, c.Upper = lower, upper
}

// ThresholdByLower accepts values less than or equal to v.
func (c *ThresholdConfig) ThresholdByLower(v float64) {
	c.Lower, c.Upper = -math.MaxFloat64, v
}

// ThresholdByUpper accepts values greater than or equal to v.
func (c *ThresholdConfig) ThresholdByUpper(v float64) {
	c.Lower, c.Upper = v, math.MaxFloat64
}

func (c *ThresholdConfig) validate(input *dvid.Array) error {
	if input == nil {
		return fmt.Errorf("No input array given for threshold growing")
	}
	if !c.OutputType.IsValid() {
		return fmt.Errorf("Unsupported output type %d", c.OutputType)
	}
	if c.ActiveComponent < 0 || c.ActiveComponent >= input.NumComponents() {
		return fmt.Errorf("Active component %d is out of range for input with %d components",
			c.ActiveComponent, input.NumComponents())
	}
	for axis, r := range c.NeighborhoodRadius {
		if r < 0 {
			return fmt.Errorf("Neighborhood radius along axis %d is negative: %g", axis, r)
		}
	}
	if c.NeighborhoodFraction < 0 || c.NeighborhoodFraction > 1 {
		return fmt.Errorf("Neighborhood fraction must be in [0,1], got %g", c.NeighborhoodFraction)
	}
	return nil
}

// ThresholdResult is the output of GrowThreshold.
type ThresholdResult struct {
	Output      *dvid.Array
	NumInVoxels int64
	Aborted     bool
}

// neighborOffset is a relative voxel position within the neighborhood.
type neighborOffset struct {
	dx, dy, dz int32
}

type thresholdGrower struct {
	cfg     ThresholdConfig
	input   *dvid.Array
	comps   int
	work    dvid.Extents3d
	inputEx dvid.Extents3d
	nx, ny  int
	nxy     int

	visited  visitBitmap // voxels already tested or not growable
	inRegion visitBitmap
	offsets  []neighborOffset
	stack    []int
}

// GrowThreshold grows a single region from the seeds over 6-connected voxels
// inside st (nil for no stencil) whose neighborhood passes the threshold.
// A voxel joins the region if at least NeighborhoodFraction of the input
// voxels within its ellipsoidal neighborhood are within [Lower, Upper].
// Seeds outside the input, the stencil or Bounds are ignored, as are seeds
// with a zero value.
func GrowThreshold(ctx context.Context, input *dvid.Array, st *stencil.Volume, seeds []Seed,
	cfg ThresholdConfig) (*ThresholdResult, error) {

	if err := cfg.validate(input); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	output, err := dvid.NewArray(input.Extents(), cfg.OutputType, 1)
	if err != nil {
		return nil, err
	}
	res := &ThresholdResult{Output: output}

	g := &thresholdGrower{
		cfg:     cfg,
		input:   input,
		comps:   int(input.NumComponents()),
		work:    input.Extents(),
		inputEx: input.Extents(),
	}
	if st != nil {
		g.work = g.work.Intersect(st.Extents())
	}
	if cfg.Bounds != nil {
		g.work = g.work.Intersect(*cfg.Bounds)
	}

	if !g.work.Empty() {
		timedLog := dvid.NewTimeLog()
		size := g.work.Size()
		g.nx, g.ny = int(size[0]), int(size[1])
		g.nxy = g.nx * g.ny
		n := g.nxy * int(size[2])
		g.visited = newVisitBitmap(n, true)
		g.inRegion = newVisitBitmap(n, false)
		g.offsets = ellipsoidOffsets(cfg.NeighborhoodRadius, cfg.RadiusEpsilon)

		it := stencil.NewIterator(ctx, input, st, &g.work, cfg.Progress, 0)
		for !it.IsAtEnd() {
			if it.IsInStencil() {
				x0, x1, y, z := it.SpanExtent()
				w := g.workIndex(x0, y, z)
				for x := x0; x <= x1; x++ {
					g.visited.unvisit(w)
					w++
				}
			}
			it.NextSpan()
		}
		if it.Aborted() {
			res.Aborted = true
		} else {
			res.Aborted = g.fill(ctx, seeds)
		}
		timedLog.Debugf("Threshold growing over %s accepted %d voxels", g.work, g.inRegion.count())
	}

	res.NumInVoxels = g.writeOutput(output)
	return res, nil
}

// ellipsoidOffsets lists the voxel offsets within the ellipsoid of the
// given radii, including the center.
func ellipsoidOffsets(radius [3]float64, eps float64) []neighborOffset {
	var r [3]int32
	for i := range radius {
		r[i] = int32(math.Floor(radius[i] + eps))
	}
	term := func(d int32, rad float64) float64 {
		if d == 0 {
			return 0
		}
		f := float64(d) / rad
		return f * f
	}
	var offsets []neighborOffset
	for dz := -r[2]; dz <= r[2]; dz++ {
		for dy := -r[1]; dy <= r[1]; dy++ {
			for dx := -r[0]; dx <= r[0]; dx++ {
				if term(dx, radius[0])+term(dy, radius[1])+term(dz, radius[2]) <= 1+eps {
					offsets = append(offsets, neighborOffset{dx, dy, dz})
				}
			}
		}
	}
	return offsets
}

func (g *thresholdGrower) workIndex(x, y, z int32) int {
	minPt := g.work.MinPoint
	return (int(z-minPt[2])*g.ny+int(y-minPt[1]))*g.nx + int(x-minPt[0])
}

func (g *thresholdGrower) workCoord(w int) (x, y, z int32) {
	minPt := g.work.MinPoint
	zi := w / g.nxy
	rem := w - zi*g.nxy
	yi := rem / g.nx
	return minPt[0] + int32(rem-yi*g.nx), minPt[1] + int32(yi), minPt[2] + int32(zi)
}

func (g *thresholdGrower) inThreshold(x, y, z int32) bool {
	v := g.input.Value(g.input.Index(x, y, z)*g.comps + int(g.cfg.ActiveComponent))
	return v >= g.cfg.Lower && v <= g.cfg.Upper
}

// accept tests the neighborhood of (x,y,z).  Offsets falling outside the
// input are not counted.
func (g *thresholdGrower) accept(x, y, z int32) bool {
	if len(g.offsets) <= 1 {
		return g.inThreshold(x, y, z)
	}
	var total, in int
	for _, off := range g.offsets {
		nx, ny, nz := x+off.dx, y+off.dy, z+off.dz
		if !g.inputEx.Contains(nx, ny, nz) {
			continue
		}
		total++
		if g.inThreshold(nx, ny, nz) {
			in++
		}
	}
	return total > 0 && float64(in) >= g.cfg.NeighborhoodFraction*float64(total)
}

// fill grows from every usable seed and returns true if cancelled.
func (g *thresholdGrower) fill(ctx context.Context, seeds []Seed) bool {
	done := ctx.Done()
	for _, seed := range seeds {
		if seed.HasValue && seed.Value == 0 {
			continue
		}
		if !g.work.ContainsPoint(seed.Point) {
			continue
		}
		g.stack = append(g.stack[:0], g.workIndex(seed.Point[0], seed.Point[1], seed.Point[2]))
		for len(g.stack) > 0 {
			select {
			case <-done:
				return true
			default:
			}
			w := g.stack[len(g.stack)-1]
			g.stack = g.stack[:len(g.stack)-1]
			if g.visited.visited(w) {
				continue
			}
			g.visited.visit(w)
			x, y, z := g.workCoord(w)
			if !g.accept(x, y, z) {
				continue
			}
			g.inRegion.visit(w)

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
	return false
}

func (g *thresholdGrower) push(w int) {
	if !g.visited.visited(w) {
		g.stack = append(g.stack, w)
	}
}

// writeOutput fills output from the region membership and returns the number
// of region voxels.
func (g *thresholdGrower) writeOutput(output *dvid.Array) int64 {
	var numIn int64
	ext := g.inputEx
	active := int(g.cfg.ActiveComponent)
	i := 0
	for z := ext.MinPoint[2]; z <= ext.MaxPoint[2]; z++ {
		for y := ext.MinPoint[1]; y <= ext.MaxPoint[1]; y++ {
			for x := ext.MinPoint[0]; x <= ext.MaxPoint[0]; x++ {
				in := g.work.Contains(x, y, z) && g.inRegion.visited(g.workIndex(x, y, z))
				switch {
				case in && g.cfg.ReplaceIn:
					output.SetValue(i, g.cfg.InValue)
				case !in && g.cfg.ReplaceOut:
					output.SetValue(i, g.cfg.OutValue)
				default:
					output.SetValue(i, g.input.Value(i*g.comps+active))
				}
				if in {
					numIn++
				}
				i++
			}
		}
	}
	return numIn
}
