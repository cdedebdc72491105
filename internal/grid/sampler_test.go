package grid

import (
	"errors"
	"math"
	"testing"
)

// testGrid builds a fully observed grid with the given shape. Every surface
// cell holds temp 20°C and sal 35 PSU unless modified by the caller.
func testGrid(nt, nd, nlon, nlat int) *Grid {
	g := &Grid{
		Source:      "test.nc",
		TimeUnits:   "days since 1950-01-01",
		Time:        make([]float64, nt),
		Depth:       make([]float64, nd),
		Lat:         make([]float64, nlat),
		Lon:         make([]float64, nlon),
		Temperature: NewVar4D(nt, nd, nlon, nlat),
		Salinity:    NewVar4D(nt, nd, nlon, nlat),
	}
	for i := range g.Time {
		g.Time[i] = float64(i)
	}
	for i := range g.Lat {
		g.Lat[i] = -45 + float64(i)
	}
	for i := range g.Lon {
		g.Lon[i] = 40 + float64(i)
	}
	for t := 0; t < nt; t++ {
		for d := 0; d < nd; d++ {
			for x := 0; x < nlon; x++ {
				for y := 0; y < nlat; y++ {
					g.Temperature.Set(t, d, x, y, 20)
					g.Salinity.Set(t, d, x, y, 35)
				}
			}
		}
	}
	return g
}

func strideOpts(stride int) Options {
	o := DefaultOptions()
	o.TimeStride, o.LatStride, o.LonStride = stride, stride, stride
	return o
}

func TestSample_ProductionShape(t *testing.T) {
	// 144 time steps, 61 lon, 91 lat (single depth level: only the surface
	// is read). Two masked surface cells at sampled triples.
	g := testGrid(144, 1, 61, 91)
	g.Temperature.Set(0, 0, 0, 0, 22.5)
	g.Salinity.Set(0, 0, 0, 0, 35.1)
	g.Temperature.Mask(0, 0, 0, 10)
	g.Salinity.Mask(10, 0, 0, 0)

	profiles, err := Sample(g, strideOpts(10))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	// ceil(144/10) * ceil(91/10) * ceil(61/10) = 15*10*7 sampled triples,
	// minus the two masked cells.
	want := 15*10*7 - 2
	if len(profiles) != want {
		t.Fatalf("got %d profiles, want %d", len(profiles), want)
	}
	first := profiles[0]
	if first.ID != 0 || first.FloatID != "grid_profile_0" {
		t.Errorf("first profile id = %d (%s), want 0", first.ID, first.FloatID)
	}
	if first.SurfaceTemp != 22.5 || first.SurfaceSal != 35.1 {
		t.Errorf("first profile temp/sal = %v/%v, want 22.5/35.1", first.SurfaceTemp, first.SurfaceSal)
	}
	if got := first.Timestamp.Format("2006-01-02 15:04:05"); got != "1950-01-01 00:00:00" {
		t.Errorf("first profile timestamp = %s", got)
	}
}

func TestSample_IDsAreDenseAndIncreasing(t *testing.T) {
	g := testGrid(6, 1, 5, 5)
	g.Temperature.Mask(0, 0, 0, 2) // skipped cells must not consume IDs
	profiles, err := Sample(g, strideOpts(2))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for i, p := range profiles {
		if p.ID != i {
			t.Fatalf("profile %d has ID %d; IDs must be dense and zero-based", i, p.ID)
		}
	}
}

func TestSample_OrderedByTimeLatLon(t *testing.T) {
	g := testGrid(4, 1, 4, 4)
	profiles, err := Sample(g, strideOpts(2))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for i := 1; i < len(profiles); i++ {
		prev, cur := profiles[i-1], profiles[i]
		if cur.Timestamp.Before(prev.Timestamp) {
			t.Fatalf("profile %d out of time order", i)
		}
		if cur.Timestamp.Equal(prev.Timestamp) && cur.Latitude < prev.Latitude {
			t.Fatalf("profile %d out of latitude order within time step", i)
		}
	}
}

func TestSample_SkipsOutOfRangeValues(t *testing.T) {
	g := testGrid(1, 1, 2, 2)
	g.Temperature.Set(0, 0, 0, 0, 99)  // above max temp
	g.Temperature.Set(0, 0, 0, 1, -20) // below min temp
	g.Salinity.Set(0, 0, 1, 0, 60)     // above max sal
	profiles, err := Sample(g, strideOpts(1))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want 1 (three cells out of range)", len(profiles))
	}
	if profiles[0].ID != 0 {
		t.Errorf("surviving profile ID = %d, want 0", profiles[0].ID)
	}
}

func TestSample_AllFilteredIsEmptyNotError(t *testing.T) {
	g := testGrid(2, 1, 2, 2)
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			g.Temperature.Mask(0, 0, x, y)
			g.Temperature.Mask(1, 0, x, y)
		}
	}
	profiles, err := Sample(g, strideOpts(1))
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("got %d profiles, want 0", len(profiles))
	}
}

func TestSample_MissingVariableIsSchemaError(t *testing.T) {
	g := testGrid(2, 1, 2, 2)
	g.Salinity = nil
	_, err := Sample(g, strideOpts(1))
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Variable != VarSal {
		t.Errorf("SchemaError names %q, want %q", schemaErr.Variable, VarSal)
	}
}

func TestSample_InvalidStride(t *testing.T) {
	g := testGrid(2, 1, 2, 2)
	opts := DefaultOptions()
	opts.TimeStride = 0
	if _, err := Sample(g, opts); err == nil {
		t.Error("expected error for zero stride")
	}
}

func TestVar4D_NonFiniteStaysMasked(t *testing.T) {
	v := NewVar4D(1, 1, 1, 1)
	v.Set(0, 0, 0, 0, math.NaN())
	if _, ok := v.At(0, 0, 0, 0); ok {
		t.Error("NaN cell should remain masked")
	}
}
