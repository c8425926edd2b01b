/*
Module stencil holds the sparse volume masks and connected-region growing used to
prepare label volumes from dense image data.

Packages

	dvid                       points, extents, dense voxel arrays, RLEs and logging
	datatype/common/stencil    run-length row masks, 3d stencil volumes, set algebra
	                           and the span iterator over dense arrays
	datatype/common/regions    connected-component labeling and threshold growing
	                           restricted to a stencil
	datatype/common/sources    stencil producers: boxes, ellipsoids, signed distance
	                           functions and thresholded arrays
	datatype/common/imageop    masking and statistics of dense arrays under a stencil
	cmd/regiongrow             command-line driver configured by a TOML file

A stencil stores, for every (y,z) row of its extent, the sorted list of half-open
x ranges that are inside.  Rows are combined with a single sweep over their
breakpoints, so unions, intersections and differences never touch voxels that are
outside every operand.  Traversal of a dense array under a stencil is done by span:
each step of the iterator covers a maximal run of voxels in one row that are all
inside or all outside.

Region growing runs a stack-based flood fill over 6-connected voxels whose scalar
value passes a range test and that lie inside the stencil.  When the label type runs out of ids, small
regions are pruned and the remaining labels compacted before growing continues.

	% regiongrow -verbose config.toml

See "regiongrow -help" for an example configuration.
*/
package stencil
