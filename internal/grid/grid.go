// Package grid models a 4-D gridded oceanographic dataset and samples it
// into discrete virtual profiles.
package grid

import (
	"fmt"
	"math"
)

// Canonical variable names in the gridded dataset. XAXIS carries latitude
// coordinates and YAXIS longitude coordinates; measurement grids are laid
// out [time, depth, lon, lat].
const (
	VarTime  = "TAXIS"
	VarDepth = "ZAX"
	VarLat   = "XAXIS"
	VarLon   = "YAXIS"
	VarTemp  = "TEMP"
	VarSal   = "SAL"
)

// SchemaError reports a required axis or measurement variable missing from
// the dataset. It is fatal to the ingestion run that hit it.
type SchemaError struct {
	Variable string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("grid schema: required variable %q is missing", e.Variable)
}

// Var4D is a 4-D measurement array with a per-cell mask. The dimension order
// is [time, depth, lon, lat].
type Var4D struct {
	shape [4]int
	data  []float64
	mask  []bool
}

// NewVar4D allocates a fully masked variable of the given shape.
func NewVar4D(t, d, lon, lat int) *Var4D {
	n := t * d * lon * lat
	v := &Var4D{shape: [4]int{t, d, lon, lat}, data: make([]float64, n), mask: make([]bool, n)}
	for i := range v.mask {
		v.mask[i] = true
	}
	return v
}

// Shape returns the dimension lengths [time, depth, lon, lat].
func (v *Var4D) Shape() [4]int { return v.shape }

func (v *Var4D) index(t, d, lon, lat int) int {
	return ((t*v.shape[1]+d)*v.shape[2]+lon)*v.shape[3] + lat
}

// Set stores a value and clears the mask at the given cell.
// Non-finite values leave the cell masked.
func (v *Var4D) Set(t, d, lon, lat int, val float64) {
	i := v.index(t, d, lon, lat)
	if math.IsNaN(val) || math.IsInf(val, 0) {
		v.data[i] = 0
		v.mask[i] = true
		return
	}
	v.data[i] = val
	v.mask[i] = false
}

// Mask marks the cell as having no observation.
func (v *Var4D) Mask(t, d, lon, lat int) {
	i := v.index(t, d, lon, lat)
	v.data[i] = 0
	v.mask[i] = true
}

// At returns the cell value and whether an observation is present.
func (v *Var4D) At(t, d, lon, lat int) (float64, bool) {
	i := v.index(t, d, lon, lat)
	return v.data[i], !v.mask[i]
}

// Grid is an immutable 4-D dataset: axis coordinates plus parallel
// temperature and salinity measurement arrays of identical shape.
type Grid struct {
	Source    string
	TimeUnits string
	Time      []float64
	Depth     []float64
	Lat       []float64
	Lon       []float64

	Temperature *Var4D
	Salinity    *Var4D
}

// Validate checks that all required axes and measurement variables are
// present and that measurement shapes match the axis lengths.
func (g *Grid) Validate() error {
	switch {
	case len(g.Time) == 0:
		return &SchemaError{Variable: VarTime}
	case len(g.Lat) == 0:
		return &SchemaError{Variable: VarLat}
	case len(g.Lon) == 0:
		return &SchemaError{Variable: VarLon}
	case g.Temperature == nil:
		return &SchemaError{Variable: VarTemp}
	case g.Salinity == nil:
		return &SchemaError{Variable: VarSal}
	}
	want := g.Temperature.Shape()
	if g.Salinity.Shape() != want {
		return fmt.Errorf("grid shape mismatch: TEMP %v vs SAL %v", want, g.Salinity.Shape())
	}
	if want[0] != len(g.Time) || want[2] != len(g.Lon) || want[3] != len(g.Lat) {
		return fmt.Errorf("grid shape %v does not match axis lengths time=%d lon=%d lat=%d",
			want, len(g.Time), len(g.Lon), len(g.Lat))
	}
	return nil
}
