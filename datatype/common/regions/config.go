/*
	Package regions labels connected components of a thresholded scalar volume.
	Regions are grown by an explicit-stack flood fill over 6-connected voxels
	that pass a scalar range test and lie inside an optional stencil.  Region
	ids are written with the output label width, so when more regions are found
	than the width can hold, regions are pruned on the fly.

	A sibling, GrowThreshold, grows from seeds using a noise-robust acceptance
	test over an ellipsoidal neighborhood.
*/
package regions

import (
	"fmt"
	"math"
	"strings"

	"github.com/janelia-flyem/stencil/datatype/common/stencil"
	"github.com/janelia-flyem/stencil/dvid"
)

// LabelMode selects how final labels are assigned to surviving regions.
type LabelMode uint8

const (
	// SeedScalar labels each region with the value of the seed that started it.
	// Regions without a seed value get the label constant.
	SeedScalar LabelMode = iota

	// ConstantValue gives every region the label constant.
	ConstantValue

	// SizeRank labels regions 1..K from largest to smallest, ties broken by
	// discovery order.
	SizeRank
)

var labelModeNames = map[LabelMode]string{
	SeedScalar:    "seedscalar",
	ConstantValue: "constant",
	SizeRank:      "sizerank",
}

func (m LabelMode) String() string {
	if name, found := labelModeNames[m]; found {
		return name
	}
	return fmt.Sprintf("LabelMode(%d)", uint8(m))
}

// UnmarshalText parses a label mode name, e.g., "sizerank".
func (m *LabelMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for mode, name := range labelModeNames {
		if name == s {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("Unknown label mode %q", string(text))
}

// ExtractionMode selects which regions are extracted.
type ExtractionMode uint8

const (
	// SeededRegions grows only from the supplied seeds.  Without seeds, every
	// region is extracted.
	SeededRegions ExtractionMode = iota

	// AllRegions grows from the seeds and then from every remaining voxel.
	AllRegions

	// LargestRegion keeps only the single largest region.
	LargestRegion
)

var extractionModeNames = map[ExtractionMode]string{
	SeededRegions: "seeded",
	AllRegions:    "all",
	LargestRegion: "largest",
}

func (m ExtractionMode) String() string {
	if name, found := extractionModeNames[m]; found {
		return name
	}
	return fmt.Sprintf("ExtractionMode(%d)", uint8(m))
}

// UnmarshalText parses an extraction mode name, e.g., "largest".
func (m *ExtractionMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for mode, name := range extractionModeNames {
		if name == s {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("Unknown extraction mode %q", string(text))
}

// Config holds the settings for Grow.
type Config struct {
	// ScalarRange is the inclusive range of input values that may be visited.
	ScalarRange [2]float64 `toml:"scalar_range"`

	// SizeRange is the inclusive range of region sizes, in voxels, kept in the output.
	SizeRange [2]int64 `toml:"size_range"`

	LabelMode      LabelMode      `toml:"label_mode"`
	ExtractionMode ExtractionMode `toml:"extraction_mode"`

	// LabelConstant is used by ConstantValue, and by SeedScalar for regions
	// lacking a seed value.
	LabelConstant int64 `toml:"label_constant"`

	// LabelType is the output label width: uint8, uint16 or uint32.
	LabelType dvid.DataType `toml:"label_type"`

	// ActiveComponent is the input component tested against ScalarRange.
	ActiveComponent int32 `toml:"active_component"`

	// GenerateRegionExtents requests a bounding extent per region in the result.
	GenerateRegionExtents bool `toml:"generate_region_extents"`

	// OutputExtents, if set, restricts the label output to a sub-extent of the
	// input.  Regions are still grown over the whole input.
	OutputExtents *dvid.Extents3d `toml:"-"`

	// Progress receives the fraction of rows scanned while the visitable
	// voxels are determined.
	Progress stencil.ProgressFunc `toml:"-"`
}

// DefaultConfig returns settings that label every region reached from the
// seeds with 8-bit labels, accepting any scalar value of at least 0.5.
func DefaultConfig() Config {
	return Config{
		ScalarRange:    [2]float64{0.5, math.MaxFloat64},
		SizeRange:      [2]int64{1, math.MaxInt64},
		LabelMode:      SeedScalar,
		ExtractionMode: SeededRegions,
		LabelConstant:  255,
		LabelType:      dvid.T_uint8,
	}
}

// maxLabel returns the largest region id representable with the label type.
func maxLabel(t dvid.DataType) (uint32, error) {
	switch t {
	case dvid.T_uint8:
		return math.MaxUint8, nil
	case dvid.T_uint16:
		return math.MaxUint16, nil
	case dvid.T_uint32:
		return math.MaxUint32, nil
	}
	return 0, fmt.Errorf("Unsupported label type %s: must be uint8, uint16 or uint32", t)
}

// validate checks the settings against the input before any output is made.
func (c *Config) validate(input *dvid.Array) error {
	if input == nil {
		return fmt.Errorf("No input array given for region growing")
	}
	if _, err := maxLabel(c.LabelType); err != nil {
		return err
	}
	if _, found := labelModeNames[c.LabelMode]; !found {
		return fmt.Errorf("Unknown label mode %d", c.LabelMode)
	}
	if _, found := extractionModeNames[c.ExtractionMode]; !found {
		return fmt.Errorf("Unknown extraction mode %d", c.ExtractionMode)
	}
	if c.ActiveComponent < 0 || c.ActiveComponent >= input.NumComponents() {
		return fmt.Errorf("Active component %d is out of range for input with %d components",
			c.ActiveComponent, input.NumComponents())
	}
	if c.ScalarRange[0] > c.ScalarRange[1] {
		return fmt.Errorf("Bad scalar range [%g, %g]", c.ScalarRange[0], c.ScalarRange[1])
	}
	if c.SizeRange[0] > c.SizeRange[1] {
		return fmt.Errorf("Bad region size range [%d, %d]", c.SizeRange[0], c.SizeRange[1])
	}
	return nil
}

// Seed is a voxel to start growing from.  If HasValue is set, a zero Value
// disables the seed and a non-zero Value becomes the region's label in
// SeedScalar mode.
type Seed struct {
	Point    dvid.Point3d
	Value    float64
	HasValue bool
}

// NewSeed returns a seed with an associated value.
func NewSeed(x, y, z int32, value float64) Seed {
	return Seed{Point: dvid.Point3d{x, y, z}, Value: value, HasValue: true}
}
