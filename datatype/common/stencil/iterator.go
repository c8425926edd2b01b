package stencil

import (
	"context"

	"github.com/janelia-flyem/stencil/dvid"
)

// Layout is the addressing of a dense voxel array: its extent and the number
// of values stored per voxel.  *dvid.Array satisfies it.
type Layout interface {
	Extents() dvid.Extents3d
	NumComponents() int32
}

// ProgressFunc receives the fraction [0,1] of rows traversed so far.
type ProgressFunc func(fraction float64)

// IterState is the position of an Iterator relative to row and slice ends.
type IterState uint8

const (
	// InRow means the current span began within a row.
	InRow IterState = iota

	// RowBoundary means the current span is the first of a new row.
	RowBoundary

	// SliceBoundary means the current span is the first of a new z slice.
	SliceBoundary

	// AtEnd means traversal is complete or was cancelled.
	AtEnd
)

func (s IterState) String() string {
	switch s {
	case InRow:
		return "in row"
	case RowBoundary:
		return "row boundary"
	case SliceBoundary:
		return "slice boundary"
	default:
		return "at end"
	}
}

// Iterator walks the voxels of a dense array within a requested extent, row
// by row, yielding maximal spans that are entirely inside or entirely outside
// a stencil.  Span bounds are value indices (voxel index * components) into the
// array's data, so a consumer handles a whole span with one loop.
//
// Typical use:
//
//	it := stencil.NewIterator(ctx, arr, st, nil, nil, 0)
//	for !it.IsAtEnd() {
//		for i := it.BeginSpan(); i < it.EndSpan(); i++ {
//			...
//		}
//		it.NextSpan()
//	}
//
// An Iterator is not safe for concurrent use, but any number of Iterators may
// share a stencil.
type Iterator struct {
	ctx        context.Context
	stencil    *Volume
	components int

	extents dvid.Extents3d // traversed extent, within the array's extent

	// Linear voxel indices into the dense array.  spanEnd, rowEnd, sliceEnd
	// and end are exclusive.
	pos, spanEnd, rowEnd, sliceEnd, end int
	rowIncr, sliceIncr                  int
	sliceStride                         int

	x, y, z int32 // x of the current span start, current row

	// stencil cursor for the current row
	row        *RowMask
	stencilRow int
	iter       int
	r1, r2     int32
	pending    bool

	inStencil bool
	state     IterState
	aborted   bool

	progress  ProgressFunc
	rowCount  int64
	totalRows int64
	target    int64
}

// NewIterator prepares traversal of layout restricted to requested (the whole
// array if nil).  A nil stencil makes every voxel inside.  Progress is only
// reported when workerID is 0; cancelling ctx ends the traversal at the next
// row boundary.
func NewIterator(ctx context.Context, layout Layout, st *Volume, requested *dvid.Extents3d,
	progress ProgressFunc, workerID int) *Iterator {

	if ctx == nil {
		ctx = context.Background()
	}
	it := &Iterator{
		ctx:        ctx,
		stencil:    st,
		components: int(layout.NumComponents()),
		stencilRow: -1,
	}
	if workerID == 0 {
		it.progress = progress
	}

	dataExt := layout.Extents()
	ext := dataExt
	if requested != nil {
		ext = ext.Intersect(*requested)
	}
	it.extents = ext
	if ext.Empty() || dataExt.Empty() {
		it.state = AtEnd
		return it
	}

	dsize := dataExt.Size()
	nx, ny := int(dsize[0]), int(dsize[1])
	rsize := ext.Size()
	rnx, rny := int(rsize[0]), int(rsize[1])

	dx := int(ext.MinPoint[0] - dataExt.MinPoint[0])
	dy := int(ext.MinPoint[1] - dataExt.MinPoint[1])
	dz := int(ext.MinPoint[2] - dataExt.MinPoint[2])
	it.pos = (dz*ny+dy)*nx + dx
	it.rowEnd = it.pos + rnx
	it.rowIncr = nx - rnx
	it.sliceStride = nx * ny
	it.sliceEnd = it.pos + (rny-1)*nx + rnx
	it.sliceIncr = (ny - rny) * nx
	it.end = it.pos + (int(rsize[2])-1)*it.sliceStride + (rny-1)*nx + rnx

	it.y, it.z = ext.MinPoint[1], ext.MinPoint[2]
	it.totalRows = int64(rny) * int64(rsize[2])
	it.target = it.totalRows/50 + 1
	it.state = SliceBoundary

	if ctx.Err() != nil {
		it.abort()
		return it
	}
	it.startRow()
	return it
}

// Extents returns the extent being traversed.
func (it *Iterator) Extents() dvid.Extents3d {
	return it.extents
}

// IsAtEnd returns true when every span has been visited or traversal was
// cancelled.
func (it *Iterator) IsAtEnd() bool {
	return it.state == AtEnd
}

// State returns where the current span lies relative to row and slice ends.
func (it *Iterator) State() IterState {
	return it.state
}

// Aborted returns true if traversal ended because the context was cancelled.
func (it *Iterator) Aborted() bool {
	return it.aborted
}

// IsInStencil returns true if the current span is inside the stencil.
func (it *Iterator) IsInStencil() bool {
	return it.inStencil
}

// BeginSpan returns the value index of the first value of the current span.
func (it *Iterator) BeginSpan() int {
	return it.pos * it.components
}

// EndSpan returns the value index one past the last value of the current span.
func (it *Iterator) EndSpan() int {
	return it.spanEnd * it.components
}

// SpanLength returns the number of voxels in the current span.
func (it *Iterator) SpanLength() int {
	return it.spanEnd - it.pos
}

// SpanExtent returns the inclusive x range and the row of the current span.
func (it *Iterator) SpanExtent() (x0, x1, y, z int32) {
	return it.x, it.x + int32(it.spanEnd-it.pos) - 1, it.y, it.z
}

// StencilRow returns the index of the current row in the stencil's row table,
// or -1 if the row lies outside the stencil.
func (it *Iterator) StencilRow() int {
	return it.stencilRow
}

// NextSpan moves to the next span, crossing row and slice boundaries as
// needed.
func (it *Iterator) NextSpan() {
	if it.state == AtEnd {
		return
	}
	if it.spanEnd < it.rowEnd {
		it.x += int32(it.spanEnd - it.pos)
		it.pos = it.spanEnd
		it.state = InRow
		it.setSpan()
		return
	}

	it.rowCount++
	if it.progress != nil && it.rowCount%it.target == 0 {
		it.progress(float64(it.rowCount) / float64(it.totalRows))
	}
	if it.rowEnd >= it.end {
		it.pos = it.end
		it.spanEnd = it.end
		it.state = AtEnd
		return
	}
	if it.ctx.Err() != nil {
		it.abort()
		return
	}
	if it.rowEnd == it.sliceEnd {
		it.pos = it.rowEnd + it.rowIncr + it.sliceIncr
		it.sliceEnd += it.sliceStride
		it.y = it.extents.MinPoint[1]
		it.z++
		it.state = SliceBoundary
	} else {
		it.pos = it.rowEnd + it.rowIncr
		it.y++
		it.state = RowBoundary
	}
	it.rowEnd = it.pos + int(it.extents.MaxPoint[0]-it.extents.MinPoint[0]) + 1
	it.startRow()
}

func (it *Iterator) abort() {
	it.aborted = true
	it.state = AtEnd
	it.pos = it.end
	it.spanEnd = it.end
	it.inStencil = false
}

// startRow positions the stencil cursor at the first span of row (y,z).
func (it *Iterator) startRow() {
	it.x = it.extents.MinPoint[0]
	it.iter = 0
	it.row = nil
	it.stencilRow = -1
	it.pending = false
	if it.stencil != nil {
		if i, ok := it.stencil.rowIndex(it.y, it.z); ok {
			it.stencilRow = i
			it.row = &it.stencil.rows[i]
		}
		it.fetch()
	}
	it.setSpan()
}

// fetch loads the next inside range of the current row.
func (it *Iterator) fetch() {
	if it.row == nil {
		it.pending = false
		return
	}
	it.r1, it.r2, it.pending = it.row.NextExtent(it.extents.MinPoint[0], it.extents.MaxPoint[0], &it.iter)
}

// setSpan computes the span starting at the current position.
func (it *Iterator) setSpan() {
	switch {
	case it.stencil == nil:
		it.inStencil = true
		it.spanEnd = it.rowEnd
	case !it.pending:
		it.inStencil = false
		it.spanEnd = it.rowEnd
	case it.x < it.r1:
		it.inStencil = false
		it.spanEnd = it.pos + int(it.r1-it.x)
	default:
		it.inStencil = true
		it.spanEnd = it.pos + int(it.r2-it.x) + 1
		it.fetch()
	}
}
