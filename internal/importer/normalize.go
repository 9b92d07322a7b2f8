package importer

import (
	"strings"
	"time"

	"github.com/assetiq/backend/internal/models"
)

// NormalizePlatform coerces a raw platform string into the canonical
// vocabulary. Unknown, empty, or garbage input maps to "other"; this
// function never fails.
func NormalizePlatform(raw string) models.Platform {
	v := strings.ToLower(raw)
	switch {
	case strings.Contains(v, "chrome"):
		return models.PlatformChromebook
	case strings.Contains(v, "win"):
		return models.PlatformWindows
	case strings.Contains(v, "mac"), strings.Contains(v, "os x"):
		return models.PlatformMac
	case strings.Contains(v, "ipad"), strings.Contains(v, "ios"):
		return models.PlatformIPad
	default:
		return models.PlatformOther
	}
}

// NormalizeStatus returns the canonical lowercase status when raw is a
// case/whitespace variant of one of the five known values, and "active"
// otherwise. This function never fails.
func NormalizeStatus(raw string) models.Status {
	v := models.Status(strings.TrimSpace(strings.ToLower(raw)))
	switch v {
	case models.StatusActive, models.StatusAssigned, models.StatusRetired, models.StatusLost, models.StatusRepair:
		return v
	default:
		return models.StatusActive
	}
}

// dateLayouts are tried in order when parsing user-entered dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// NormalizeDate parses raw as a date and returns it truncated to the day,
// or nil when it cannot be parsed. Invalid dates are dropped, not rejected:
// a bad warranty cell must not break the rest of the row.
func NormalizeDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
