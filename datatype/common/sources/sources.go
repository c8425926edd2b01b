// Package sources builds stencils from boxes, analytic ellipsoids, signed
// distance functions and thresholded dense arrays.  Every producer fills rows
// in non-decreasing x order through Volume.InsertNextExtent.
package sources

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/janelia-flyem/stencil/datatype/common/stencil"
	"github.com/janelia-flyem/stencil/dvid"
)

// Box returns a stencil over ext that is inside everywhere within box.
func Box(ext, box dvid.Extents3d) (*stencil.Volume, error) {
	st, err := stencil.NewVolumeWithExtents(ext)
	if err != nil {
		return nil, err
	}
	in := ext.Intersect(box)
	if in.Empty() {
		return st, nil
	}
	for z := in.MinPoint[2]; z <= in.MaxPoint[2]; z++ {
		for y := in.MinPoint[1]; y <= in.MaxPoint[1]; y++ {
			st.InsertNextExtent(in.MinPoint[0], in.MaxPoint[0], y, z)
		}
	}
	return st, nil
}

// Ellipsoid returns a stencil over ext that is inside for voxel centers with
// ((x-cx)/rx)^2 + ((y-cy)/ry)^2 + ((z-cz)/rz)^2 <= 1.  Each row's x range is
// solved directly.
func Ellipsoid(ext dvid.Extents3d, center, radius [3]float64) (*stencil.Volume, error) {
	for axis, r := range radius {
		if r <= 0 {
			return nil, fmt.Errorf("Ellipsoid radius along axis %d must be positive, got %g", axis, r)
		}
	}
	st, err := stencil.NewVolumeWithExtents(ext)
	if err != nil {
		return nil, err
	}
	if ext.Empty() {
		return st, nil
	}
	for z := ext.MinPoint[2]; z <= ext.MaxPoint[2]; z++ {
		dz := (float64(z) - center[2]) / radius[2]
		for y := ext.MinPoint[1]; y <= ext.MaxPoint[1]; y++ {
			dy := (float64(y) - center[1]) / radius[1]
			rem := 1 - dz*dz - dy*dy
			if rem < 0 {
				continue
			}
			half := radius[0] * math.Sqrt(rem)
			x1 := int32(math.Ceil(center[0] - half))
			x2 := int32(math.Floor(center[0] + half))
			if x2 < x1 {
				continue
			}
			st.InsertNextExtent(x1, x2, y, z)
		}
	}
	return st, nil
}

// FromSDF samples s at every voxel center of ext, mapping voxel (x,y,z) to
// origin + spacing*(x,y,z), and marks voxels with distance <= 0 as inside.
func FromSDF(ext dvid.Extents3d, s sdf.SDF3, origin, spacing [3]float64) (*stencil.Volume, error) {
	if s == nil {
		return nil, fmt.Errorf("No signed distance function given")
	}
	st, err := stencil.NewVolumeWithExtents(ext)
	if err != nil {
		return nil, err
	}
	if ext.Empty() {
		return st, nil
	}

	// Skip rows that cannot touch the shape's bounding box.
	bb := s.BoundingBox()
	for z := ext.MinPoint[2]; z <= ext.MaxPoint[2]; z++ {
		pz := origin[2] + spacing[2]*float64(z)
		if pz < bb.Min.Z || pz > bb.Max.Z {
			continue
		}
		for y := ext.MinPoint[1]; y <= ext.MaxPoint[1]; y++ {
			py := origin[1] + spacing[1]*float64(y)
			if py < bb.Min.Y || py > bb.Max.Y {
				continue
			}
			start, inside := int32(0), false
			for x := ext.MinPoint[0]; x <= ext.MaxPoint[0]; x++ {
				p := v3.Vec{X: origin[0] + spacing[0]*float64(x), Y: py, Z: pz}
				in := s.Evaluate(p) <= 0
				switch {
				case in && !inside:
					start, inside = x, true
				case !in && inside:
					st.InsertNextExtent(start, x-1, y, z)
					inside = false
				}
			}
			if inside {
				st.InsertNextExtent(start, ext.MaxPoint[0], y, z)
			}
		}
	}
	return st, nil
}

// FromThreshold returns a stencil over the array's extent that is inside
// where the given component lies within [lower, upper].
func FromThreshold(arr *dvid.Array, lower, upper float64, component int32) (*stencil.Volume, error) {
	if component < 0 || component >= arr.NumComponents() {
		return nil, fmt.Errorf("Component %d is out of range for array with %d components",
			component, arr.NumComponents())
	}
	ext := arr.Extents()
	st, err := stencil.NewVolumeWithExtents(ext)
	if err != nil {
		return nil, err
	}
	if ext.Empty() {
		return st, nil
	}
	comps := int(arr.NumComponents())
	for z := ext.MinPoint[2]; z <= ext.MaxPoint[2]; z++ {
		for y := ext.MinPoint[1]; y <= ext.MaxPoint[1]; y++ {
			i := arr.Index(ext.MinPoint[0], y, z)*comps + int(component)
			start, inside := int32(0), false
			for x := ext.MinPoint[0]; x <= ext.MaxPoint[0]; x++ {
				v := arr.Value(i)
				in := v >= lower && v <= upper
				switch {
				case in && !inside:
					start, inside = x, true
				case !in && inside:
					st.InsertNextExtent(start, x-1, y, z)
					inside = false
				}
				i += comps
			}
			if inside {
				st.InsertNextExtent(start, ext.MaxPoint[0], y, z)
			}
		}
	}
	return st, nil
}

// Sphere returns a sphere of the given radius centered at c.
func Sphere(c [3]float64, radius float64) (sdf.SDF3, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: c[0], Y: c[1], Z: c[2]})), nil
}

// RoundedBox returns a box of the given size and corner rounding centered at c.
func RoundedBox(c, size [3]float64, round float64) (sdf.SDF3, error) {
	s, err := sdf.Box3D(v3.Vec{X: size[0], Y: size[1], Z: size[2]}, round)
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: c[0], Y: c[1], Z: c[2]})), nil
}

// Cylinder returns a z-aligned cylinder centered at c.
func Cylinder(c [3]float64, height, radius float64) (sdf.SDF3, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, err
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: c[0], Y: c[1], Z: c[2]})), nil
}
