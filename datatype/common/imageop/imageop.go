/*
	Package imageop applies stencils to dense voxel arrays.  Work is split into
	z slabs that run concurrently, each traversing its slab with its own
	stencil.Iterator.  Only the first slab reports progress.
*/
package imageop

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/janelia-flyem/stencil/datatype/common/stencil"
	"github.com/janelia-flyem/stencil/dvid"
)

// Options controls ApplyStencil.
type Options struct {
	// Background replaces every value of voxels that are masked out.
	Background float64

	// Reverse masks out the voxels inside the stencil instead of outside.
	Reverse bool

	// Workers is the number of concurrent slabs.  Zero uses GOMAXPROCS.
	Workers int

	Progress stencil.ProgressFunc
}

// slabs splits the z range of ext into at most n contiguous extents.
func slabs(ext dvid.Extents3d, n int) []dvid.Extents3d {
	if ext.Empty() {
		return nil
	}
	nz := int(ext.MaxPoint[2] - ext.MinPoint[2] + 1)
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > nz {
		n = nz
	}
	out := make([]dvid.Extents3d, 0, n)
	z := ext.MinPoint[2]
	for i := 0; i < n; i++ {
		depth := int32(nz / n)
		if i < nz%n {
			depth++
		}
		slab := ext
		slab.MinPoint[2] = z
		slab.MaxPoint[2] = z + depth - 1
		out = append(out, slab)
		z += depth
	}
	return out
}

// ApplyStencil returns a copy of in where voxels outside the stencil (inside,
// if Reverse is set) have every component set to the background value.  A
// nil stencil masks nothing.  If ctx is cancelled the partially processed
// copy is returned with the context's error.
func ApplyStencil(ctx context.Context, in *dvid.Array, st *stencil.Volume, opts Options) (*dvid.Array, error) {
	if in == nil {
		return nil, fmt.Errorf("No array given to apply stencil")
	}
	out := in.Copy()
	if st == nil {
		return out, nil
	}
	timedLog := dvid.NewTimeLog()
	parts := slabs(in.Extents(), opts.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for workerID, slab := range parts {
		workerID, slab := workerID, slab
		g.Go(func() error {
			it := stencil.NewIterator(gctx, out, st, &slab, opts.Progress, workerID)
			for !it.IsAtEnd() {
				if it.IsInStencil() == opts.Reverse {
					for i := it.BeginSpan(); i < it.EndSpan(); i++ {
						out.SetValue(i, opts.Background)
					}
				}
				it.NextSpan()
			}
			if it.Aborted() {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	timedLog.Debugf("Applied stencil to %s using %d slabs", in.Extents(), len(parts))
	return out, nil
}

// Stats summarizes the values of one component over the voxels inside a
// stencil.
type Stats struct {
	Count  int64
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

func (s Stats) String() string {
	return fmt.Sprintf("n=%d min=%g max=%g mean=%g stddev=%g", s.Count, s.Min, s.Max, s.Mean, s.StdDev)
}

// Statistics computes Stats for component over voxels of in that lie inside
// st, or over every voxel if st is nil.
func Statistics(ctx context.Context, in *dvid.Array, st *stencil.Volume, component int32) (Stats, error) {
	if in == nil {
		return Stats{}, fmt.Errorf("No array given for statistics")
	}
	if component < 0 || component >= in.NumComponents() {
		return Stats{}, fmt.Errorf("Component %d is out of range for array with %d components",
			component, in.NumComponents())
	}
	comps := int(in.NumComponents())
	var values []float64
	it := stencil.NewIterator(ctx, in, st, nil, nil, 0)
	for !it.IsAtEnd() {
		if it.IsInStencil() {
			for i := it.BeginSpan() + int(component); i < it.EndSpan(); i += comps {
				values = append(values, in.Value(i))
			}
		}
		it.NextSpan()
	}
	if it.Aborted() {
		return Stats{}, ctx.Err()
	}
	s := Stats{Count: int64(len(values))}
	if len(values) == 0 {
		return s, nil
	}
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		s.StdDev = 0
	}
	return s, nil
}
