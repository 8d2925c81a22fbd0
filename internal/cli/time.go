// Package cli holds argument helpers shared by the ha-history commands.
package cli

import (
	"time"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/types"
)

// dateFormats are tried in order by ParseFlexibleDate.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFlexibleDate parses a date/time string in various common formats.
// Supported formats:
//   - RFC3339 (e.g., "2024-01-02T15:04:05Z07:00")
//   - "2006-01-02T15:04:05"
//   - "2006-01-02 15:04:05"
//   - "2006-01-02 15:04"
//   - "2006-01-02" (date only)
//
// Values without a zone are UTC.
func ParseFlexibleDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.ErrInvalidArgument("unable to parse date: " + s)
}

// CalculateTimeRange resolves --from and --to. A missing end is now; a
// missing start is window before the end.
func CalculateTimeRange(from, to string, window time.Duration, now time.Time) (types.TimeRange, error) {
	endTime := now
	if to != "" {
		t, err := ParseFlexibleDate(to)
		if err != nil {
			return types.TimeRange{}, errors.ErrInvalidArgument("invalid --to value: " + to).WithCause(err)
		}
		endTime = t
	}

	startTime := endTime.Add(-window)
	if from != "" {
		t, err := ParseFlexibleDate(from)
		if err != nil {
			return types.TimeRange{}, errors.ErrInvalidArgument("invalid --from value: " + from).WithCause(err)
		}
		startTime = t
	}

	if endTime.Before(startTime) {
		return types.TimeRange{}, errors.ErrInvalidArgument("--to is before --from")
	}
	return types.TimeRange{StartTime: startTime, EndTime: endTime}, nil
}
