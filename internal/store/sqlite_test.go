package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/floatchat/floatchat/internal/models"
)

func testProfile(id int) models.Profile {
	return models.Profile{
		ID:          id,
		FloatID:     models.FloatIDForProfile(id),
		Timestamp:   time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, id),
		Latitude:    22.5,
		Longitude:   35.1,
		SurfaceTemp: 20.0,
		SurfaceSal:  35.0,
	}
}

func TestProfileStore_SaveAndGet(t *testing.T) {
	s, err := NewProfileStore(filepath.Join(t.TempDir(), "floatchat.db"))
	if err != nil {
		t.Fatalf("NewProfileStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	profiles := []models.Profile{testProfile(0), testProfile(1), testProfile(2)}
	if err := s.SaveProfiles(ctx, profiles); err != nil {
		t.Fatalf("SaveProfiles: %v", err)
	}

	got, err := s.GetProfile(ctx, "grid_profile_1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.FloatID != "grid_profile_1" {
		t.Errorf("FloatID = %q", got.FloatID)
	}
	if got.Latitude != 22.5 || got.SurfaceTemp != 20.0 {
		t.Errorf("profile = %+v", got)
	}
	want := time.Date(1950, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, want)
	}

	if _, err := s.GetProfile(ctx, "grid_profile_99"); err == nil {
		t.Error("missing profile should return an error")
	}
}

func TestProfileStore_ReingestReplacesRows(t *testing.T) {
	s, err := NewProfileStore(filepath.Join(t.TempDir(), "floatchat.db"))
	if err != nil {
		t.Fatalf("NewProfileStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	p := testProfile(0)
	if err := s.SaveProfiles(ctx, []models.Profile{p}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	p.SurfaceTemp = 23.4
	if err := s.SaveProfiles(ctx, []models.Profile{p}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	n, err := s.CountProfiles(ctx)
	if err != nil {
		t.Fatalf("CountProfiles: %v", err)
	}
	if n != 1 {
		t.Errorf("CountProfiles = %d, want 1", n)
	}
	got, err := s.GetProfile(ctx, p.FloatID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.SurfaceTemp != 23.4 {
		t.Errorf("SurfaceTemp = %v, want updated value", got.SurfaceTemp)
	}
}

func TestProfileStore_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "floatchat.db")
	ctx := context.Background()

	s, err := NewProfileStore(dbPath)
	if err != nil {
		t.Fatalf("NewProfileStore: %v", err)
	}
	if err := s.SaveProfiles(ctx, []models.Profile{testProfile(0)}); err != nil {
		t.Fatalf("SaveProfiles: %v", err)
	}
	s.Close()

	reopened, err := NewProfileStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.CountProfiles(ctx)
	if err != nil {
		t.Fatalf("CountProfiles: %v", err)
	}
	if n != 1 {
		t.Errorf("CountProfiles after reopen = %d, want 1", n)
	}
}
