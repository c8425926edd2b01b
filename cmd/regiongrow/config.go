package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/deadsy/sdfx/sdf"

	"github.com/janelia-flyem/stencil/datatype/common/regions"
	"github.com/janelia-flyem/stencil/datatype/common/sources"
	"github.com/janelia-flyem/stencil/datatype/common/stencil"
	"github.com/janelia-flyem/stencil/dvid"
)

type tomlConfig struct {
	Logging dvid.LogConfig
	Volume  volumeConfig
	Shape   []shapeConfig
	Field   fieldConfig
	Grow    regions.Config
	Seed    []seedConfig
}

type volumeConfig struct {
	Extents [6]int32
	Origin  [3]float64
	Spacing [3]float64
	Workers int
}

// shapeConfig is one solid added to or removed from the stencil.
type shapeConfig struct {
	Kind   string // sphere, box or cylinder
	Op     string // merge (default) or subtract
	Center [3]float64
	Radius float64
	Size   [3]float64
	Round  float64
	Height float64
}

type fieldConfig struct {
	Kind  string // distance (default) or constant
	Value float64
}

type seedConfig struct {
	Point [3]int32
	Value float64
}

// loadConfig reads a TOML configuration, filling unset values with defaults.
func loadConfig(filename string) (*tomlConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("No TOML configuration file provided")
	}
	tc := &tomlConfig{
		Volume: volumeConfig{Spacing: [3]float64{1, 1, 1}},
		Field:  fieldConfig{Kind: "distance"},
		Grow:   regions.DefaultConfig(),
	}
	if _, err := toml.DecodeFile(filename, tc); err != nil {
		return nil, fmt.Errorf("Could not decode TOML config: %v", err)
	}
	if err := tc.convertPathsToAbsolute(filename); err != nil {
		return nil, err
	}
	if err := tc.check(); err != nil {
		return nil, err
	}
	return tc, nil
}

// convertPathsToAbsolute makes relative paths relative to the config file.
func (tc *tomlConfig) convertPathsToAbsolute(configPath string) error {
	if tc.Logging.Logfile == "" || filepath.IsAbs(tc.Logging.Logfile) {
		return nil
	}
	logfile, err := filepath.Abs(filepath.Join(filepath.Dir(configPath), tc.Logging.Logfile))
	if err != nil {
		return fmt.Errorf("Error converting logfile %q to absolute path: %v", tc.Logging.Logfile, err)
	}
	tc.Logging.Logfile = logfile
	return nil
}

func (tc *tomlConfig) check() error {
	if tc.extents().Empty() {
		return fmt.Errorf("Volume extents %v are empty", tc.Volume.Extents)
	}
	for axis, s := range tc.Volume.Spacing {
		if s <= 0 {
			return fmt.Errorf("Volume spacing along axis %d must be positive", axis)
		}
	}
	if len(tc.Shape) == 0 {
		return fmt.Errorf("At least one [[shape]] must be given")
	}
	tc.Field.Kind = strings.ToLower(tc.Field.Kind)
	switch tc.Field.Kind {
	case "distance", "constant":
	default:
		return fmt.Errorf("Unknown field kind %q", tc.Field.Kind)
	}
	return nil
}

func (tc *tomlConfig) extents() dvid.Extents3d {
	e := tc.Volume.Extents
	return dvid.NewExtents3d(e[0], e[1], e[2], e[3], e[4], e[5])
}

func (tc *tomlConfig) seeds() []regions.Seed {
	seeds := make([]regions.Seed, len(tc.Seed))
	for i, s := range tc.Seed {
		seeds[i] = regions.NewSeed(s.Point[0], s.Point[1], s.Point[2], s.Value)
	}
	return seeds
}

func (sc shapeConfig) solid() (sdf.SDF3, error) {
	switch strings.ToLower(sc.Kind) {
	case "sphere":
		return sources.Sphere(sc.Center, sc.Radius)
	case "box":
		return sources.RoundedBox(sc.Center, sc.Size, sc.Round)
	case "cylinder":
		return sources.Cylinder(sc.Center, sc.Height, sc.Radius)
	}
	return nil, fmt.Errorf("Unknown shape kind %q", sc.Kind)
}

func (sc shapeConfig) subtract() (bool, error) {
	switch strings.ToLower(sc.Op) {
	case "", "merge":
		return false, nil
	case "subtract":
		return true, nil
	}
	return false, fmt.Errorf("Unknown shape op %q", sc.Op)
}

// buildShapes rasterizes every shape and combines them in order into one
// stencil, also returning the combined solid.
func (tc *tomlConfig) buildShapes() (*stencil.Volume, sdf.SDF3, error) {
	ext := tc.extents()
	st, err := stencil.NewVolumeWithExtents(ext)
	if err != nil {
		return nil, nil, err
	}
	var combined sdf.SDF3
	for i, sc := range tc.Shape {
		solid, err := sc.solid()
		if err != nil {
			return nil, nil, fmt.Errorf("Shape %d: %v", i, err)
		}
		sub, err := sc.subtract()
		if err != nil {
			return nil, nil, fmt.Errorf("Shape %d: %v", i, err)
		}
		shapeStencil, err := sources.FromSDF(ext, solid, tc.Volume.Origin, tc.Volume.Spacing)
		if err != nil {
			return nil, nil, fmt.Errorf("Shape %d: %v", i, err)
		}
		switch {
		case sub:
			st.Subtract(shapeStencil)
			if combined != nil {
				combined = sdf.Difference3D(combined, solid)
			}
		case combined == nil:
			st.Merge(shapeStencil)
			combined = solid
		default:
			st.Merge(shapeStencil)
			combined = sdf.Union3D(combined, solid)
		}
		dvid.Debugf("Shape %d (%s %s): %d voxels, stencil now %d voxels\n",
			i, sc.Op, sc.Kind, shapeStencil.NumVoxels(), st.NumVoxels())
	}
	if combined == nil {
		return nil, nil, fmt.Errorf("No shape is merged into the stencil")
	}
	return st, combined, nil
}
