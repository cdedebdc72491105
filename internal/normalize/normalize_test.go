package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/floatchat/floatchat/internal/models"
)

func sampleProfile() models.Profile {
	return models.Profile{
		ID:          0,
		FloatID:     "grid_profile_0",
		Timestamp:   time.Date(1993, 4, 15, 12, 0, 0, 0, time.UTC),
		Latitude:    -12.5,
		Longitude:   67.25,
		SurfaceTemp: 28.34,
		SurfaceSal:  35.12,
	}
}

func TestProfileText(t *testing.T) {
	got := ProfileText(sampleProfile())
	want := "ARGO float profile grid_profile_0 collected on 1993-04-15 12:00:00 " +
		"at location -12.50°N, 67.25°E. " +
		"Surface temperature: 28.3°C, " +
		"Surface salinity: 35.1 PSU. " +
		"Ocean region with coordinates lat=-12.50, lon=67.25."
	if got != want {
		t.Errorf("ProfileText:\n got %q\nwant %q", got, want)
	}
}

func TestUnits_Profiles_RoundTrip(t *testing.T) {
	units := Units(Source{
		Kind:     KindProfiles,
		Name:     "tempsal.nc",
		Profiles: []models.Profile{sampleProfile()},
	})
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	u := units[0]
	if u.Metadata["source"] != "tempsal.nc" {
		t.Errorf("source = %v", u.Metadata["source"])
	}
	if u.Metadata["table"] != "argo_profiles" {
		t.Errorf("table = %v", u.Metadata["table"])
	}
	regen, ok := ProfileTextFromMetadata(u.Metadata)
	if !ok {
		t.Fatal("ProfileTextFromMetadata failed")
	}
	if regen != u.Text {
		t.Errorf("round trip mismatch:\n unit %q\nregen %q", u.Text, regen)
	}
}

func TestProfileTextFromMetadata_MissingField(t *testing.T) {
	md := map[string]any{"float_id": "grid_profile_0"}
	if _, ok := ProfileTextFromMetadata(md); ok {
		t.Error("expected failure for incomplete metadata")
	}
}

func TestUnits_Rows_RoundTrip(t *testing.T) {
	columns := []string{"float_id", "latitude", "surface_temp"}
	units := Units(Source{
		Kind:    KindRows,
		Name:    "tempsal_data.db",
		Table:   "measurements",
		Columns: columns,
		Rows: [][]string{
			{"grid_profile_0", "-12.50", "28.3"},
			{"grid_profile_1", "4.00", "26.9"},
		},
	})
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].Text != "float_id: grid_profile_0, latitude: -12.50, surface_temp: 28.3" {
		t.Errorf("row text = %q", units[0].Text)
	}
	if units[0].Metadata["table"] != "measurements" {
		t.Errorf("table = %v", units[0].Metadata["table"])
	}
	for _, u := range units {
		regen, ok := RowTextFromMetadata(u.Metadata, columns)
		if !ok {
			t.Fatal("RowTextFromMetadata failed")
		}
		if regen != u.Text {
			t.Errorf("round trip mismatch:\n unit %q\nregen %q", u.Text, regen)
		}
	}
}

func TestUnits_Rows_ShortRowRendersEmptyValues(t *testing.T) {
	units := Units(Source{
		Kind:    KindRows,
		Name:    "x.db",
		Table:   "t",
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"1"}},
	})
	if units[0].Text != "a: 1, b: " {
		t.Errorf("text = %q", units[0].Text)
	}
}

func TestUnits_Document(t *testing.T) {
	units := Units(Source{Kind: KindDocument, Name: "/data/notes.md", Text: "ocean notes"})
	if len(units) != 1 {
		t.Fatalf("got %d units", len(units))
	}
	if units[0].Text != "ocean notes" {
		t.Errorf("text = %q", units[0].Text)
	}
	if units[0].Source() != "/data/notes.md" {
		t.Errorf("source = %q", units[0].Source())
	}
}

func TestProfileText_FieldOrderIsStable(t *testing.T) {
	// The template is a contract: location before measurements, °N before °E.
	text := ProfileText(sampleProfile())
	latIdx := strings.Index(text, "°N")
	tempIdx := strings.Index(text, "°C")
	salIdx := strings.Index(text, "PSU")
	if !(latIdx < tempIdx && tempIdx < salIdx) {
		t.Errorf("field order changed: %q", text)
	}
}
