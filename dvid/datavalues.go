/*
   This file handles the layout of voxel values: the scalar type of each
   component and conversions between that type and float64 / integer labels.
*/

package dvid

import (
	"fmt"
	"math"
	"strings"
)

// DataType is a unique ID for each scalar type a voxel component can take,
// e.g., a uint8 or a float32.
type DataType uint8

const (
	T_uint8 DataType = iota
	T_int8
	T_uint16
	T_int16
	T_uint32
	T_int32
	T_uint64
	T_int64
	T_float32
	T_float64
)

var typeBytes = map[DataType]int32{
	T_uint8:   1,
	T_int8:    1,
	T_uint16:  2,
	T_int16:   2,
	T_uint32:  4,
	T_int32:   4,
	T_uint64:  8,
	T_int64:   8,
	T_float32: 4,
	T_float64: 8,
}

var typeNames = map[DataType]string{
	T_uint8:   "uint8",
	T_int8:    "int8",
	T_uint16:  "uint16",
	T_int16:   "int16",
	T_uint32:  "uint32",
	T_int32:   "int32",
	T_uint64:  "uint64",
	T_int64:   "int64",
	T_float32: "float32",
	T_float64: "float64",
}

// DataTypeBytes returns the # of bytes for a given type.  No error checking
// is performed to make sure the type is valid.
func DataTypeBytes(t DataType) int32 {
	return typeBytes[t]
}

// DataTypeFromString returns the DataType named by s, e.g., "uint16".
func DataTypeFromString(s string) (DataType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, tname := range typeNames {
		if tname == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("Unknown data type %q", s)
}

func (t DataType) String() string {
	if name, found := typeNames[t]; found {
		return name
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// UnmarshalText allows a DataType to be given by name in TOML configuration.
func (t *DataType) UnmarshalText(text []byte) error {
	dt, err := DataTypeFromString(string(text))
	if err != nil {
		return err
	}
	*t = dt
	return nil
}

// MarshalText returns the type name.
func (t DataType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsValid returns true for one of the known scalar types.
func (t DataType) IsValid() bool {
	_, found := typeBytes[t]
	return found
}

// IsFloat returns true for floating point types.
func (t DataType) IsFloat() bool {
	return t == T_float32 || t == T_float64
}

// Range returns the minimum and maximum values representable by the type.
func (t DataType) Range() (min, max float64) {
	switch t {
	case T_uint8:
		return 0, math.MaxUint8
	case T_int8:
		return math.MinInt8, math.MaxInt8
	case T_uint16:
		return 0, math.MaxUint16
	case T_int16:
		return math.MinInt16, math.MaxInt16
	case T_uint32:
		return 0, math.MaxUint32
	case T_int32:
		return math.MinInt32, math.MaxInt32
	case T_uint64:
		return 0, math.MaxUint64
	case T_int64:
		return math.MinInt64, math.MaxInt64
	case T_float32:
		return -math.MaxFloat32, math.MaxFloat32
	default:
		return -math.MaxFloat64, math.MaxFloat64
	}
}

// Clamp limits v to the range of the type and rounds it for integer types.
func (t DataType) Clamp(v float64) float64 {
	min, max := t.Range()
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	if !t.IsFloat() {
		return math.Round(v)
	}
	return v
}
