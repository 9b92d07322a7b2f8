package devices

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetiq/backend/internal/models"
)

// Classification partitions an organization's fleet into attention sets.
type Classification struct {
	Stale          []models.Device
	NeedsAttention []models.Device
}

// Classify derives the stale and needs-attention sets from a device list and
// the organization's threshold in days. Pure function of its inputs; now is
// passed in so callers and tests control the clock.
//
// A device is stale when its last-seen timestamp is strictly before
// now - threshold, or, lacking one, when its creation timestamp is. A device
// with neither timestamp is never stale, so freshly created devices don't
// light up before their first check-in. Needs-attention is the union of
// stale devices and those in lost or repair status, deduplicated by ID.
func Classify(list []models.Device, thresholdDays int, now time.Time) Classification {
	if thresholdDays <= 0 {
		thresholdDays = models.DefaultStaleThresholdDays
	}
	cutoff := now.Add(-time.Duration(thresholdDays) * 24 * time.Hour)

	var c Classification
	seen := make(map[uuid.UUID]struct{}, len(list))

	for _, d := range list {
		if isStale(d, cutoff) {
			c.Stale = append(c.Stale, d)
			c.NeedsAttention = append(c.NeedsAttention, d)
			seen[d.ID] = struct{}{}
		}
	}
	for _, d := range list {
		if d.Status != models.StatusLost && d.Status != models.StatusRepair {
			continue
		}
		if _, ok := seen[d.ID]; ok {
			continue
		}
		c.NeedsAttention = append(c.NeedsAttention, d)
		seen[d.ID] = struct{}{}
	}
	return c
}

func isStale(d models.Device, cutoff time.Time) bool {
	if d.LastSeenAt != nil {
		return d.LastSeenAt.Before(cutoff)
	}
	if !d.CreatedAt.IsZero() {
		return d.CreatedAt.Before(cutoff)
	}
	return false
}
