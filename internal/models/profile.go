// Package models defines core data structures for profiles, knowledge units, and chunks.
package models

import (
	"fmt"
	"time"
)

// Profile is a virtual profile sampled from a gridded dataset at the surface
// depth level. It is not a physically deployed float's profile; it is a point
// observation synthesized by striding the grid.
type Profile struct {
	ID          int       `json:"id"`
	FloatID     string    `json:"float_id"`
	Timestamp   time.Time `json:"datetime"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SurfaceTemp float64   `json:"surface_temp"`
	SurfaceSal  float64   `json:"surface_sal"`
}

// FloatIDForProfile returns the float_id assigned to the profile with the
// given sequential ID. IDs are dense and zero-based within a sampling run.
func FloatIDForProfile(id int) string {
	return fmt.Sprintf("grid_profile_%d", id)
}

// TimestampLayout is the wire format for profile timestamps, in both the
// relational sink and knowledge-unit metadata.
const TimestampLayout = "2006-01-02 15:04:05"
