package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"

	"slitspec/internal/models"
	"slitspec/pkg/axes"
	"slitspec/pkg/config"
	"slitspec/pkg/cube"
	"slitspec/pkg/radiometry"
	"slitspec/pkg/wcs"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "slitspec.yaml", "Observation descriptor YAML file")
	createConfig := flag.Bool("create-config", false, "Write the default descriptor to the config path and exit")
	correct := flag.Bool("correct", false, "Apply the exposure time correction to the sequence")
	undo := flag.Bool("undo", false, "Undo the exposure time correction instead of applying it")
	force := flag.Bool("force", false, "Apply or undo the correction even if the data unit contradicts it")
	photons := flag.Bool("photons", false, "Convert detector counts to photon counts before reporting")
	dust := flag.Bool("dust", false, "Report the dust-affected pixel fraction per scan")
	scan := flag.Int("scan", -1, "Print the summary of a single scan instead of the sequence")
	flag.Parse()

	if *createConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default observation descriptor written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("SLIT SPECTROGRAPH RASTER SEQUENCE INSPECTOR")
	fmt.Println("================================")

	raster, err := buildRaster(cfg)
	if err != nil {
		log.Fatalf("Failed to assemble raster sequence: %v", err)
	}

	if *photons {
		raster, err = convertToPhotons(raster)
		if err != nil {
			log.Fatalf("Photon conversion failed: %v", err)
		}
		if cfg.Output.Verbose {
			fmt.Println("Converted detector counts to photon counts.")
		}
	}

	if *correct || *undo {
		corrected, err := raster.ApplyExposureTimeCorrection(*undo, true, *force)
		if err != nil {
			log.Fatalf("Exposure time correction failed: %v", err)
		}
		raster = corrected
		if cfg.Output.Verbose {
			if *undo {
				fmt.Println("Exposure time correction undone.")
			} else {
				fmt.Println("Exposure time correction applied.")
			}
		}
	}

	if *scan >= 0 {
		if *scan >= raster.Len() {
			log.Fatalf("Scan %d out of range: the sequence has %d scans", *scan, raster.Len())
		}
		c := raster.Cubes()[*scan]
		fmt.Printf("\n%s\n", c)
		reportStats(fmt.Sprintf("Scan %d", *scan), c.Data())
		return
	}

	fmt.Printf("\n%s\n\n", raster)
	fmt.Printf("Raster axes: %v\n", raster.RasterInstrumentAxesTypes())
	fmt.Printf("Sit-and-stare axes: %v\n", raster.SnSInstrumentAxesTypes())
	if dims, err := raster.SnSDimensions(); err == nil {
		fmt.Printf("Sit-and-stare dimensions: %v\n", dims)
	}
	fmt.Println()
	for i, c := range raster.Cubes() {
		reportStats(fmt.Sprintf("Scan %d", i), c.Data())
		if *dust {
			mask, err := radiometry.DustMask(c.Data())
			if err != nil {
				log.Fatalf("Dust mask failed for scan %d: %v", i, err)
			}
			masked := 0
			for _, m := range mask {
				if m {
					masked++
				}
			}
			fmt.Printf("Scan %d: %d of %d pixels dust-affected (%.2f%%)\n",
				i, masked, len(mask), 100*float64(masked)/float64(len(mask)))
		}
	}
}

// buildRaster assembles a raster sequence from the observation
// descriptor. Each scan carries a synthetic emission line profile so the
// statistics are meaningful without instrument file I/O.
func buildRaster(cfg *config.Config) (*cube.RasterSequence, error) {
	channel, err := radiometry.ParseChannel(cfg.Observation.Detector)
	if err != nil {
		return nil, err
	}
	meta := &models.Observation{
		Instrument:     cfg.Observation.Instrument,
		OBSID:          cfg.Observation.OBSID,
		Detector:       cfg.Observation.Detector,
		SpectralWindow: cfg.Observation.SpectralWindow,
	}

	steps := cfg.Raster.SlitSteps
	slit := cfg.Raster.SlitPositions
	bins := cfg.Raster.SpectralBins
	co := cfg.Coordinates

	exposure := make([]float64, steps)
	for i := range exposure {
		exposure[i] = co.ExposureTime
	}

	cubes := make([]*cube.Cube, cfg.Raster.Scans)
	for s := range cubes {
		frame, err := wcs.New(
			wcs.Axis{
				PhysicalType: "time",
				Start:        co.TimeStart + float64(s*steps)*co.TimeStep,
				Step:         co.TimeStep,
				Len:          steps,
			},
			wcs.Axis{PhysicalType: "custom:pos.helioprojective.lat", Start: co.LatStart, Step: co.LatStep, Len: slit},
			wcs.Axis{PhysicalType: "em.wl", Start: co.SpectralStart, Step: co.SpectralStep, Len: bins},
		)
		if err != nil {
			return nil, err
		}
		data := sparse.ZerosDense(steps, slit, bins)
		fillLineProfile(data, co.SpectralStart, co.SpectralStep)
		c, err := cube.New(data, frame, &cube.Options{
			Extras: []axes.ExtraCoord{
				{Name: "exposure time", Axes: []int{0}, Values: exposure},
			},
			Unit: channel.DNUnit(),
			Meta: meta,
		})
		if err != nil {
			return nil, fmt.Errorf("scan %d: %w", s, err)
		}
		cubes[s] = c
	}
	return cube.NewRasterSequence(cubes, 0, meta)
}

// fillLineProfile writes a Gaussian emission line over the spectral axis
// of a (slit step, slit position, spectral) array, on top of a flat
// continuum.
func fillLineProfile(data *sparse.DenseArray, spectralStart, spectralStep float64) {
	steps, slit, bins := data.Shape[0], data.Shape[1], data.Shape[2]
	center := spectralStart + 0.5*float64(bins)*spectralStep
	sigma := 4 * spectralStep
	for i := 0; i < steps; i++ {
		for j := 0; j < slit; j++ {
			for k := 0; k < bins; k++ {
				wl := spectralStart + float64(k)*spectralStep
				d := (wl - center) / sigma
				data.Elements[(i*slit+j)*bins+k] = 20 + 400*math.Exp(-0.5*d*d)
			}
		}
	}
}

// convertToPhotons rescales every scan from detector counts to photon
// counts, preserving the raster structure.
func convertToPhotons(r *cube.RasterSequence) (*cube.RasterSequence, error) {
	cubes := r.Cubes()
	for i, c := range cubes {
		nc, err := c.ConvertTo(radiometry.Photon())
		if err != nil {
			return nil, fmt.Errorf("scan %d: %w", i, err)
		}
		cubes[i] = nc
	}
	return cube.NewRasterSequence(cubes, r.CommonAxis(), r.Meta())
}

// reportStats prints summary statistics of one scan's data values.
func reportStats(label string, data *sparse.DenseArray) {
	mean := stat.Mean(data.Elements, nil)
	sd := stat.StdDev(data.Elements, nil)
	fmt.Printf("%s: shape %v, mean %.3f, stddev %.3f\n", label, data.Shape, mean, sd)
}
