package grid

import (
	"fmt"

	"github.com/floatchat/floatchat/internal/models"
)

// Options controls grid sampling: strides over the time/lat/lon axes and
// value-sanity bounds for surface measurements. Strides must be positive;
// a stride of 1 samples every grid point.
type Options struct {
	TimeStride int
	LatStride  int
	LonStride  int
	MinTemp    float64
	MaxTemp    float64
	MinSal     float64
	MaxSal     float64
}

// DefaultOptions returns the production sampling parameters: every 10th
// grid point on each axis, temperature in [-5, 50] °C, salinity in [0, 50] PSU.
func DefaultOptions() Options {
	return Options{
		TimeStride: 10,
		LatStride:  10,
		LonStride:  10,
		MinTemp:    -5,
		MaxTemp:    50,
		MinSal:     0,
		MaxSal:     50,
	}
}

// Sample extracts virtual profiles from the surface level (depth index 0) of
// the grid. Indices are walked in ascending (time, lat, lon) order, so the
// output order and the dense zero-based profile IDs are reproducible across
// runs on identical input. Cells that are masked in either measurement, or
// whose value falls outside the sanity bounds, are skipped without consuming
// an ID.
//
// Returns a SchemaError when a required axis or measurement variable is
// missing. An empty result with a nil error means every sampled cell was
// filtered out.
func Sample(g *Grid, opts Options) ([]models.Profile, error) {
	if opts.TimeStride <= 0 || opts.LatStride <= 0 || opts.LonStride <= 0 {
		return nil, fmt.Errorf("sampling stride must be a positive integer, got (%d, %d, %d)",
			opts.TimeStride, opts.LatStride, opts.LonStride)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	decode, err := ParseTimeUnits(g.TimeUnits)
	if err != nil {
		return nil, fmt.Errorf("decode time axis: %w", err)
	}

	var profiles []models.Profile
	id := 0
	for t := 0; t < len(g.Time); t += opts.TimeStride {
		for latIdx := 0; latIdx < len(g.Lat); latIdx += opts.LatStride {
			for lonIdx := 0; lonIdx < len(g.Lon); lonIdx += opts.LonStride {
				temp, ok := g.Temperature.At(t, 0, lonIdx, latIdx)
				if !ok {
					continue
				}
				sal, ok := g.Salinity.At(t, 0, lonIdx, latIdx)
				if !ok {
					continue
				}
				if temp < opts.MinTemp || temp > opts.MaxTemp || sal < opts.MinSal || sal > opts.MaxSal {
					continue
				}
				profiles = append(profiles, models.Profile{
					ID:          id,
					FloatID:     models.FloatIDForProfile(id),
					Timestamp:   decode(g.Time[t]),
					Latitude:    g.Lat[latIdx],
					Longitude:   g.Lon[lonIdx],
					SurfaceTemp: temp,
					SurfaceSal:  sal,
				})
				id++
			}
		}
	}
	return profiles, nil
}
