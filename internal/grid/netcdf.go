package grid

import (
	"fmt"
	"math"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// LoadNetCDF reads a gridded dataset from a NetCDF file. Cells equal to the
// variable's _FillValue (or missing_value) attribute, and non-finite cells,
// are masked. Missing required variables surface as SchemaError.
func LoadNetCDF(path string) (*Grid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open netcdf %s: %w", path, err)
	}
	defer nc.Close()

	timeVals, timeUnits, err := loadAxis(nc, VarTime)
	if err != nil {
		return nil, err
	}
	latVals, _, err := loadAxis(nc, VarLat)
	if err != nil {
		return nil, err
	}
	lonVals, _, err := loadAxis(nc, VarLon)
	if err != nil {
		return nil, err
	}
	// The depth axis is informational only; sampling reads the surface level.
	depthVals, _, _ := loadAxis(nc, VarDepth)

	temp, err := loadMeasurement(nc, VarTemp)
	if err != nil {
		return nil, err
	}
	sal, err := loadMeasurement(nc, VarSal)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		Source:      path,
		TimeUnits:   timeUnits,
		Time:        timeVals,
		Depth:       depthVals,
		Lat:         latVals,
		Lon:         lonVals,
		Temperature: temp,
		Salinity:    sal,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// loadAxis reads a 1-D coordinate variable and its units attribute.
func loadAxis(nc api.Group, name string) ([]float64, string, error) {
	vr, err := nc.GetVariable(name)
	if err != nil || vr == nil {
		return nil, "", &SchemaError{Variable: name}
	}
	vals, ok := toFloat64Slice(vr.Values)
	if !ok {
		return nil, "", fmt.Errorf("variable %q is not a numeric 1-D axis", name)
	}
	units := ""
	if u, has := vr.Attributes.Get("units"); has {
		if s, isStr := u.(string); isStr {
			units = s
		}
	}
	return vals, units, nil
}

// loadMeasurement reads a 4-D measurement variable into a masked Var4D.
func loadMeasurement(nc api.Group, name string) (*Var4D, error) {
	vr, err := nc.GetVariable(name)
	if err != nil || vr == nil {
		return nil, &SchemaError{Variable: name}
	}
	fill, hasFill := fillValue(vr)

	switch data := vr.Values.(type) {
	case [][][][]float32:
		return buildVar4D(len(data), dim1f32(data), dim2f32(data), dim3f32(data), func(t, d, x, y int) float64 {
			return float64(data[t][d][x][y])
		}, fill, hasFill)
	case [][][][]float64:
		return buildVar4D(len(data), dim1f64(data), dim2f64(data), dim3f64(data), func(t, d, x, y int) float64 {
			return data[t][d][x][y]
		}, fill, hasFill)
	default:
		return nil, fmt.Errorf("variable %q is not a 4-D float grid (got %T)", name, vr.Values)
	}
}

func buildVar4D(nt, nd, nlon, nlat int, at func(t, d, x, y int) float64, fill float64, hasFill bool) (*Var4D, error) {
	if nt == 0 || nd == 0 || nlon == 0 || nlat == 0 {
		return nil, fmt.Errorf("empty measurement grid")
	}
	v := NewVar4D(nt, nd, nlon, nlat)
	for t := 0; t < nt; t++ {
		for d := 0; d < nd; d++ {
			for x := 0; x < nlon; x++ {
				for y := 0; y < nlat; y++ {
					val := at(t, d, x, y)
					if hasFill && sameFill(val, fill) {
						continue
					}
					v.Set(t, d, x, y, val)
				}
			}
		}
	}
	return v, nil
}

// fillValue returns the variable's fill value, preferring _FillValue over
// missing_value (CF convention).
func fillValue(vr *api.Variable) (float64, bool) {
	for _, key := range []string{"_FillValue", "missing_value"} {
		if raw, has := vr.Attributes.Get(key); has {
			if f, ok := attrToFloat(raw); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// sameFill compares a cell against the fill value with a relative tolerance,
// since fill values declared as float32 lose precision against float64 cells.
func sameFill(val, fill float64) bool {
	if val == fill {
		return true
	}
	if fill == 0 {
		return false
	}
	return math.Abs(val-fill) <= math.Abs(fill)*1e-6
}

func attrToFloat(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case []float64:
		if len(x) > 0 {
			return x[0], true
		}
	case []float32:
		if len(x) > 0 {
			return float64(x[0]), true
		}
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

func toFloat64Slice(raw any) ([]float64, bool) {
	switch x := raw.(type) {
	case []float64:
		return x, true
	case []float32:
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = float64(v)
		}
		return out, true
	case []int32:
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = float64(v)
		}
		return out, true
	case []int64:
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = float64(v)
		}
		return out, true
	}
	return nil, false
}

func dim1f32(d [][][][]float32) int {
	if len(d) == 0 {
		return 0
	}
	return len(d[0])
}

func dim2f32(d [][][][]float32) int {
	if len(d) == 0 || len(d[0]) == 0 {
		return 0
	}
	return len(d[0][0])
}

func dim3f32(d [][][][]float32) int {
	if len(d) == 0 || len(d[0]) == 0 || len(d[0][0]) == 0 {
		return 0
	}
	return len(d[0][0][0])
}

func dim1f64(d [][][][]float64) int {
	if len(d) == 0 {
		return 0
	}
	return len(d[0])
}

func dim2f64(d [][][][]float64) int {
	if len(d) == 0 || len(d[0]) == 0 {
		return 0
	}
	return len(d[0][0])
}

func dim3f64(d [][][][]float64) int {
	if len(d) == 0 || len(d[0]) == 0 || len(d[0][0]) == 0 {
		return 0
	}
	return len(d[0][0][0])
}
