package grid

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimeUnits is assumed when the time axis carries no units attribute.
const DefaultTimeUnits = "days since 1950-01-01"

var epochLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TimeDecoder converts encoded time-axis values to absolute timestamps.
type TimeDecoder func(value float64) time.Time

// ParseTimeUnits parses a unit string of the form "<units> since <epoch>"
// and returns a decoder. Supported units are days, hours, minutes, and
// seconds. Decoded timestamps are truncated to whole seconds.
func ParseTimeUnits(units string) (TimeDecoder, error) {
	if strings.TrimSpace(units) == "" {
		units = DefaultTimeUnits
	}
	parts := strings.SplitN(units, " since ", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("unsupported time units %q: missing \"since\"", units)
	}
	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "days", "day":
		step = 24 * time.Hour
	case "hours", "hour":
		step = time.Hour
	case "minutes", "minute":
		step = time.Minute
	case "seconds", "second":
		step = time.Second
	default:
		return nil, fmt.Errorf("unsupported time units %q", units)
	}

	epochStr := strings.TrimSpace(parts[1])
	// Drop a trailing timezone designator ("UTC", "+00:00"); the axis is UTC.
	epochStr = strings.TrimSuffix(epochStr, " UTC")
	epochStr = strings.TrimSuffix(epochStr, "Z")

	var epoch time.Time
	var err error
	for _, layout := range epochLayouts {
		epoch, err = time.Parse(layout, epochStr)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("unsupported time epoch %q", epochStr)
	}

	return func(value float64) time.Time {
		offset := time.Duration(value * float64(step))
		return epoch.Add(offset).Truncate(time.Second)
	}, nil
}
