// Package normalize converts heterogeneous sources (virtual profile
// batches, table rows, extracted documents) into uniform knowledge units.
package normalize

import (
	"fmt"
	"strings"

	"github.com/floatchat/floatchat/internal/models"
)

// Kind tags the closed set of ingestible source kinds.
type Kind int

const (
	KindProfiles Kind = iota
	KindRows
	KindDocument
)

// Source is a tagged variant over the ingestible source kinds. Name is the
// origin identifier (file path or logical dataset name) recorded in every
// unit's metadata.
type Source struct {
	Kind Kind
	Name string

	// KindProfiles
	Profiles []models.Profile

	// KindRows
	Table   string
	Columns []string
	Rows    [][]string

	// KindDocument
	Text string
}

// Units converts a source into knowledge units. The mapping is one unit per
// profile, per row, or per document.
func Units(src Source) []models.KnowledgeUnit {
	switch src.Kind {
	case KindProfiles:
		units := make([]models.KnowledgeUnit, 0, len(src.Profiles))
		for _, p := range src.Profiles {
			units = append(units, profileUnit(src.Name, p))
		}
		return units
	case KindRows:
		units := make([]models.KnowledgeUnit, 0, len(src.Rows))
		for _, row := range src.Rows {
			units = append(units, rowUnit(src.Name, src.Table, src.Columns, row))
		}
		return units
	case KindDocument:
		return []models.KnowledgeUnit{{
			Text:     src.Text,
			Metadata: map[string]any{"source": src.Name},
		}}
	default:
		return nil
	}
}

// profileTemplate is the fixed serialization of a virtual profile. Field
// order and formats are a contract: the text must be regenerable from unit
// metadata byte for byte.
const profileTemplate = "ARGO float profile %s collected on %s " +
	"at location %.2f°N, %.2f°E. " +
	"Surface temperature: %.1f°C, " +
	"Surface salinity: %.1f PSU. " +
	"Ocean region with coordinates lat=%.2f, lon=%.2f."

// ProfileText renders the fixed template for a profile.
func ProfileText(p models.Profile) string {
	return fmt.Sprintf(profileTemplate,
		p.FloatID,
		p.Timestamp.Format(models.TimestampLayout),
		p.Latitude, p.Longitude,
		p.SurfaceTemp, p.SurfaceSal,
		p.Latitude, p.Longitude,
	)
}

func profileUnit(source string, p models.Profile) models.KnowledgeUnit {
	return models.KnowledgeUnit{
		Text: ProfileText(p),
		Metadata: map[string]any{
			"source":       source,
			"table":        "argo_profiles",
			"float_id":     p.FloatID,
			"datetime":     p.Timestamp.Format(models.TimestampLayout),
			"latitude":     p.Latitude,
			"longitude":    p.Longitude,
			"surface_temp": p.SurfaceTemp,
			"surface_sal":  p.SurfaceSal,
		},
	}
}

// ProfileTextFromMetadata regenerates the template text from unit metadata.
// Returns false when a required field is missing or mistyped.
func ProfileTextFromMetadata(md map[string]any) (string, bool) {
	floatID, ok1 := md["float_id"].(string)
	datetime, ok2 := md["datetime"].(string)
	lat, ok3 := metadataFloat(md, "latitude")
	lon, ok4 := metadataFloat(md, "longitude")
	temp, ok5 := metadataFloat(md, "surface_temp")
	sal, ok6 := metadataFloat(md, "surface_sal")
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return "", false
	}
	return fmt.Sprintf(profileTemplate, floatID, datetime, lat, lon, temp, sal, lat, lon), true
}

func rowUnit(source, table string, columns []string, row []string) models.KnowledgeUnit {
	md := map[string]any{
		"source": source,
		"table":  table,
	}
	for i, col := range columns {
		if i < len(row) {
			md[col] = row[i]
		}
	}
	return models.KnowledgeUnit{
		Text:     RowText(columns, row),
		Metadata: md,
	}
}

// RowText renders a table row as "col: val, col: val" in column order.
func RowText(columns []string, row []string) string {
	pairs := make([]string, 0, len(columns))
	for i, col := range columns {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		pairs = append(pairs, col+": "+val)
	}
	return strings.Join(pairs, ", ")
}

// RowTextFromMetadata regenerates row text from unit metadata given the
// table's column order. Returns false when a column is missing.
func RowTextFromMetadata(md map[string]any, columns []string) (string, bool) {
	row := make([]string, len(columns))
	for i, col := range columns {
		v, ok := md[col].(string)
		if !ok {
			return "", false
		}
		row[i] = v
	}
	return RowText(columns, row), true
}

func metadataFloat(md map[string]any, key string) (float64, bool) {
	switch v := md[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
