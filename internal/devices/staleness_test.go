package devices

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/assetiq/backend/internal/models"
)

func device(tag string, status models.Status, lastSeen *time.Time, created time.Time) models.Device {
	return models.Device{
		ID:         uuid.New(),
		AssetTag:   tag,
		Status:     status,
		LastSeenAt: lastSeen,
		CreatedAt:  created,
	}
}

func TestClassifyLastSeenBoundary(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	cutoff := now.Add(-30 * 24 * time.Hour)

	exactly := cutoff
	justBefore := cutoff.Add(-time.Second)
	justAfter := cutoff.Add(time.Second)

	list := []models.Device{
		device("AT-CUTOFF", models.StatusActive, &exactly, now),
		device("BEFORE", models.StatusActive, &justBefore, now),
		device("AFTER", models.StatusActive, &justAfter, now),
	}
	c := Classify(list, 30, now)

	if len(c.Stale) != 1 {
		t.Fatalf("stale count = %d, want 1", len(c.Stale))
	}
	// Strictly before the cutoff; the boundary itself is fresh.
	if c.Stale[0].AssetTag != "BEFORE" {
		t.Errorf("stale device = %s", c.Stale[0].AssetTag)
	}
}

func TestClassifyFallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-60 * 24 * time.Hour)
	recent := now.Add(-time.Hour)

	list := []models.Device{
		device("NEVER-SEEN-OLD", models.StatusActive, nil, old),
		device("NEVER-SEEN-NEW", models.StatusActive, nil, recent),
	}
	c := Classify(list, 30, now)

	if len(c.Stale) != 1 || c.Stale[0].AssetTag != "NEVER-SEEN-OLD" {
		t.Errorf("stale = %+v", tags(c.Stale))
	}
}

func TestClassifyNoTimestampsIsNeverStale(t *testing.T) {
	now := time.Now()
	list := []models.Device{device("BLANK", models.StatusActive, nil, time.Time{})}
	c := Classify(list, 30, now)
	if len(c.Stale) != 0 {
		t.Errorf("device with no timestamps classified stale")
	}
}

func TestClassifyNeedsAttentionUnion(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	old := now.Add(-90 * 24 * time.Hour)
	fresh := now.Add(-time.Hour)

	staleAndLost := device("STALE-LOST", models.StatusLost, &old, old)
	staleOnly := device("STALE", models.StatusActive, &old, old)
	lostOnly := device("LOST", models.StatusLost, &fresh, fresh)
	repairOnly := device("REPAIR", models.StatusRepair, &fresh, fresh)
	healthy := device("OK", models.StatusActive, &fresh, fresh)

	c := Classify([]models.Device{staleAndLost, staleOnly, lostOnly, repairOnly, healthy}, 30, now)

	if got := tags(c.Stale); len(got) != 2 {
		t.Errorf("stale = %v", got)
	}
	got := tags(c.NeedsAttention)
	if len(got) != 4 {
		t.Fatalf("needs_attention = %v, want 4 entries", got)
	}
	// A device both stale and lost appears once.
	counts := map[string]int{}
	for _, tag := range got {
		counts[tag]++
	}
	if counts["STALE-LOST"] != 1 {
		t.Errorf("STALE-LOST appears %d times", counts["STALE-LOST"])
	}
	for _, tag := range got {
		if tag == "OK" {
			t.Error("healthy device in needs_attention")
		}
	}
}

func TestClassifyZeroThresholdUsesDefault(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seen := now.Add(-10 * 24 * time.Hour)
	c := Classify([]models.Device{device("D", models.StatusActive, &seen, seen)}, 0, now)
	if len(c.Stale) != 0 {
		t.Errorf("10-day-old device stale under default 30-day threshold")
	}
}

func tags(list []models.Device) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.AssetTag)
	}
	return out
}
