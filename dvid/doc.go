/*
	Package dvid provides the types and functions shared by every stencil and
	region package: integer points and extents, dense voxel arrays with their
	scalar data types, run-length spans, and leveled logging.  These have no
	dependencies on the higher layers and are kept here for reuse.
*/
package dvid
