// Command regiongrow labels connected regions of a synthetic scalar volume
// masked by a stencil built from solid shapes described in a TOML file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"github.com/janelia-flyem/stencil/datatype/common/imageop"
	"github.com/janelia-flyem/stencil/datatype/common/regions"
	"github.com/janelia-flyem/stencil/datatype/common/stencil"
	"github.com/janelia-flyem/stencil/dvid"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")
)

const helpMessage = `
regiongrow labels the connected regions of a volume inside a stencil of solid shapes

Usage: regiongrow [options] <config.toml>

      -verbose    (flag)    Run in verbose mode.
  -h, -help       (flag)    Show help message

A configuration looks like:

	[logging]
	logfile = "/tmp/regiongrow.log"

	[volume]
	extents = [0, 63, 0, 63, 0, 63]   # xmin, xmax, ymin, ymax, zmin, zmax

	[[shape]]
	kind = "sphere"
	center = [32.0, 32.0, 32.0]
	radius = 20.0

	[[shape]]
	kind = "box"
	op = "subtract"
	center = [32.0, 32.0, 32.0]
	size = [64.0, 4.0, 64.0]

	[field]
	kind = "distance"                 # depth inside the shapes, or "constant"

	[grow]
	scalar_range = [1.0, 1000.0]
	extraction_mode = "all"           # seeded, all or largest
	label_mode = "sizerank"           # seedscalar, constant or sizerank
	label_type = "uint16"

	[[seed]]
	point = [32, 32, 20]
	value = 7.0
`

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = func() { fmt.Print(helpMessage) }
	flag.Parse()

	if *runVerbose {
		dvid.Verbose = true
		dvid.SetLogMode(dvid.DebugMode)
	}
	if *showHelp || flag.NArg() != 1 {
		flag.Usage()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		dvid.Shutdown()
		os.Exit(1)
	}
	dvid.Shutdown()
}

func run(ctx context.Context, filename string) error {
	tc, err := loadConfig(filename)
	if err != nil {
		return err
	}
	tc.Logging.SetLogger()

	st, solid, err := tc.buildShapes()
	if err != nil {
		return err
	}
	dvid.Infof("Stencil %s uses %s\n", st, humanize.Bytes(uint64(st.MemorySize())))

	field, err := tc.scalarField(solid)
	if err != nil {
		return err
	}
	masked, err := imageop.ApplyStencil(ctx, field, st, imageop.Options{Workers: tc.Volume.Workers, Progress: progress("masking")})
	if err != nil {
		return err
	}
	fieldStats, err := imageop.Statistics(ctx, masked, st, 0)
	if err != nil {
		return err
	}
	fmt.Printf("Field inside stencil: %s\n", fieldStats)

	cfg := tc.Grow
	cfg.GenerateRegionExtents = true
	cfg.Progress = progress("thresholding")
	res, err := regions.Grow(ctx, masked, st, tc.seeds(), cfg)
	if err != nil {
		return err
	}
	if res.Aborted {
		return fmt.Errorf("Region growing was interrupted after %d regions", res.NumRegions())
	}
	report(res, st)
	return nil
}

// scalarField samples the configured field over the volume as float32.
func (tc *tomlConfig) scalarField(solid sdf.SDF3) (*dvid.Array, error) {
	ext := tc.extents()
	field, err := dvid.NewArray(ext, dvid.T_float32, 1)
	if err != nil {
		return nil, err
	}
	if tc.Field.Kind == "constant" {
		field.Fill(tc.Field.Value)
		return field, nil
	}
	origin, spacing := tc.Volume.Origin, tc.Volume.Spacing
	i := 0
	for z := ext.MinPoint[2]; z <= ext.MaxPoint[2]; z++ {
		for y := ext.MinPoint[1]; y <= ext.MaxPoint[1]; y++ {
			for x := ext.MinPoint[0]; x <= ext.MaxPoint[0]; x++ {
				p := v3.Vec{
					X: origin[0] + spacing[0]*float64(x),
					Y: origin[1] + spacing[1]*float64(y),
					Z: origin[2] + spacing[2]*float64(z),
				}
				field.SetValue(i, -solid.Evaluate(p))
				i++
			}
		}
	}
	return field, nil
}

func progress(task string) stencil.ProgressFunc {
	if !dvid.Verbose {
		return nil
	}
	return func(fraction float64) {
		dvid.Debugf("%s: %.0f%%\n", task, fraction*100)
	}
}

func report(res *regions.Result, st *stencil.Volume) {
	fmt.Printf("%d regions found within %s stencil voxels\n",
		res.NumRegions(), humanize.Comma(st.NumVoxels()))
	fmt.Printf("%8s %14s %6s  %s\n", "label", "voxels", "seed", "extents")
	for i := 0; i < res.NumRegions(); i++ {
		fmt.Printf("%8d %14s %6d  %s\n", res.RegionLabels[i], humanize.Comma(res.RegionSizes[i]),
			res.RegionSeedIDs[i], res.RegionExtents[i])
	}
	if res.NumRegions() == 0 {
		return
	}
	sizes := make([]float64, res.NumRegions())
	var total int64
	for i, size := range res.RegionSizes {
		sizes[i] = float64(size)
		total += size
	}
	mean, stddev := stat.MeanStdDev(sizes, nil)
	if len(sizes) == 1 {
		stddev = 0
	}
	fmt.Printf("Labeled %s voxels, mean region %s voxels (stddev %.1f), label volume %s\n",
		humanize.Comma(total), humanize.Commaf(mean), stddev, humanize.Bytes(uint64(len(res.Labels.Bytes()))))
}
