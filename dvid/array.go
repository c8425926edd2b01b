/*
	This file contains a dense voxel array: a box of voxels, each holding one
	or more components of a single scalar DataType packed little endian.
*/

package dvid

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Array is a dense 3d array of voxel values addressed by voxel coordinates
// within its extent.  Voxels are stored in x-fastest, then y, then z order.
type Array struct {
	extents    Extents3d
	dataType   DataType
	components int32
	data       []byte
}

// NewArray allocates a zeroed array covering the given extent.
func NewArray(ext Extents3d, t DataType, components int32) (*Array, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("Unsupported array data type %d", t)
	}
	if components < 1 {
		return nil, fmt.Errorf("Array must have at least one component, got %d", components)
	}
	if ext.Empty() {
		ext = EmptyExtents3d()
	}
	numBytes := ext.NumVoxels() * int64(components) * int64(typeBytes[t])
	if numBytes > math.MaxInt {
		return nil, fmt.Errorf("Array of %s with %d components is too large", ext, components)
	}
	return &Array{
		extents:    ext,
		dataType:   t,
		components: components,
		data:       make([]byte, numBytes),
	}, nil
}

// NewArrayFromData wraps existing little-endian data without copying.
func NewArrayFromData(ext Extents3d, t DataType, components int32, data []byte) (*Array, error) {
	a := &Array{extents: ext, dataType: t, components: components}
	if !t.IsValid() || components < 1 {
		return nil, fmt.Errorf("Bad array layout: type %s with %d components", t, components)
	}
	if ext.Empty() {
		a.extents = EmptyExtents3d()
	}
	expected := a.extents.NumVoxels() * int64(components) * int64(typeBytes[t])
	if int64(len(data)) != expected {
		return nil, fmt.Errorf("Expected %d bytes for %s array of %s, got %d", expected, t, ext, len(data))
	}
	a.data = data
	return a, nil
}

// Extents returns the voxel extent of the array.
func (a *Array) Extents() Extents3d {
	return a.extents
}

// DataType returns the scalar type of each component.
func (a *Array) DataType() DataType {
	return a.dataType
}

// NumComponents returns the number of values per voxel.
func (a *Array) NumComponents() int32 {
	return a.components
}

// NumVoxels returns the number of voxels held.
func (a *Array) NumVoxels() int64 {
	return a.extents.NumVoxels()
}

// NumValues returns the number of scalar values held, i.e., voxels * components.
func (a *Array) NumValues() int {
	return int(a.extents.NumVoxels()) * int(a.components)
}

// Bytes returns the underlying little-endian data.
func (a *Array) Bytes() []byte {
	return a.data
}

// Index returns the linear voxel index of (x,y,z), which must lie within
// the extent.  Multiply by NumComponents() to get a value index.
func (a *Array) Index(x, y, z int32) int {
	size := a.extents.Size()
	dx := int(x - a.extents.MinPoint[0])
	dy := int(y - a.extents.MinPoint[1])
	dz := int(z - a.extents.MinPoint[2])
	return (dz*int(size[1])+dy)*int(size[0]) + dx
}

// Coord returns the voxel coordinate of a linear voxel index.
func (a *Array) Coord(i int) Point3d {
	size := a.extents.Size()
	nx := int(size[0])
	nxy := nx * int(size[1])
	z := i / nxy
	y := (i - z*nxy) / nx
	x := i - z*nxy - y*nx
	return a.extents.MinPoint.Add(Point3d{int32(x), int32(y), int32(z)})
}

// Value returns the value at value index i.
func (a *Array) Value(i int) float64 {
	switch a.dataType {
	case T_uint8:
		return float64(a.data[i])
	case T_int8:
		return float64(int8(a.data[i]))
	case T_uint16:
		return float64(binary.LittleEndian.Uint16(a.data[i*2:]))
	case T_int16:
		return float64(int16(binary.LittleEndian.Uint16(a.data[i*2:])))
	case T_uint32:
		return float64(binary.LittleEndian.Uint32(a.data[i*4:]))
	case T_int32:
		return float64(int32(binary.LittleEndian.Uint32(a.data[i*4:])))
	case T_uint64:
		return float64(binary.LittleEndian.Uint64(a.data[i*8:]))
	case T_int64:
		return float64(int64(binary.LittleEndian.Uint64(a.data[i*8:])))
	case T_float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(a.data[i*4:])))
	case T_float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(a.data[i*8:]))
	}
	return 0
}

// SetValue stores v at value index i, clamping and rounding to the array type.
func (a *Array) SetValue(i int, v float64) {
	v = a.dataType.Clamp(v)
	switch a.dataType {
	case T_uint8:
		a.data[i] = uint8(v)
	case T_int8:
		a.data[i] = uint8(int8(v))
	case T_uint16:
		binary.LittleEndian.PutUint16(a.data[i*2:], uint16(v))
	case T_int16:
		binary.LittleEndian.PutUint16(a.data[i*2:], uint16(int16(v)))
	case T_uint32:
		binary.LittleEndian.PutUint32(a.data[i*4:], uint32(v))
	case T_int32:
		binary.LittleEndian.PutUint32(a.data[i*4:], uint32(int32(v)))
	case T_uint64:
		binary.LittleEndian.PutUint64(a.data[i*8:], uint64(v))
	case T_int64:
		binary.LittleEndian.PutUint64(a.data[i*8:], uint64(int64(v)))
	case T_float32:
		binary.LittleEndian.PutUint32(a.data[i*4:], math.Float32bits(float32(v)))
	case T_float64:
		binary.LittleEndian.PutUint64(a.data[i*8:], math.Float64bits(v))
	}
}

// Label returns the unsigned integer at value index i of a uint8, uint16 or
// uint32 array.  Other types fall back to a converted Value().
func (a *Array) Label(i int) uint32 {
	switch a.dataType {
	case T_uint8:
		return uint32(a.data[i])
	case T_uint16:
		return uint32(binary.LittleEndian.Uint16(a.data[i*2:]))
	case T_uint32:
		return binary.LittleEndian.Uint32(a.data[i*4:])
	}
	return uint32(a.Value(i))
}

// SetLabel stores an unsigned integer at value index i without range checks
// for uint8, uint16 and uint32 arrays.
func (a *Array) SetLabel(i int, label uint32) {
	switch a.dataType {
	case T_uint8:
		a.data[i] = uint8(label)
	case T_uint16:
		binary.LittleEndian.PutUint16(a.data[i*2:], uint16(label))
	case T_uint32:
		binary.LittleEndian.PutUint32(a.data[i*4:], label)
	default:
		a.SetValue(i, float64(label))
	}
}

// Fill sets every value of the array to v.
func (a *Array) Fill(v float64) {
	n := a.NumValues()
	if n == 0 {
		return
	}
	a.SetValue(0, v)
	width := int(typeBytes[a.dataType])
	for filled := width; filled < len(a.data); filled *= 2 {
		copy(a.data[filled:], a.data[:filled])
	}
}

// Copy returns a deep copy of the array.
func (a *Array) Copy() *Array {
	dup := *a
	dup.data = make([]byte, len(a.data))
	copy(dup.data, a.data)
	return &dup
}
