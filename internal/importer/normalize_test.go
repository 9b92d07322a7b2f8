package importer

import (
	"testing"
	"time"

	"github.com/assetiq/backend/internal/models"
)

func TestNormalizePlatform(t *testing.T) {
	cases := []struct {
		raw  string
		want models.Platform
	}{
		{"Chromebook", models.PlatformChromebook},
		{"chrome os", models.PlatformChromebook},
		{"ChromeOS Flex", models.PlatformChromebook},
		{"Windows 11", models.PlatformWindows},
		{"win", models.PlatformWindows},
		{"macOS", models.PlatformMac},
		{"Mac OS X", models.PlatformMac},
		{"MacBook Air", models.PlatformMac},
		{"iPadOS", models.PlatformIPad},
		{"iOS 17", models.PlatformIPad},
		{"Linux", models.PlatformOther},
		{"", models.PlatformOther},
		{"???", models.PlatformOther},
	}
	for _, tc := range cases {
		if got := NormalizePlatform(tc.raw); got != tc.want {
			t.Errorf("NormalizePlatform(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want models.Status
	}{
		{"active", models.StatusActive},
		{"ASSIGNED", models.StatusAssigned},
		{"  Retired  ", models.StatusRetired},
		{"Lost", models.StatusLost},
		{"repair", models.StatusRepair},
		{"broken", models.StatusActive},
		{"", models.StatusActive},
	}
	for _, tc := range cases {
		if got := NormalizeStatus(tc.raw); got != tc.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		"2025-03-15",
		"2025/03/15",
		"03/15/2025",
		"3/15/2025",
		"15-03-2025",
		"Mar 15, 2025",
		"15 Mar 2025",
		"2025-03-15T10:30:00Z",
	} {
		got := NormalizeDate(raw)
		if got == nil {
			t.Errorf("NormalizeDate(%q) = nil, want %s", raw, want)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("NormalizeDate(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestNormalizeDateInvalid(t *testing.T) {
	for _, raw := range []string{"", "  ", "not a date", "2025-13-45", "warranty"} {
		if got := NormalizeDate(raw); got != nil {
			t.Errorf("NormalizeDate(%q) = %s, want nil", raw, got)
		}
	}
}

func TestNormalizeDateTruncatesToDay(t *testing.T) {
	got := NormalizeDate("2025-03-15T23:59:59Z")
	if got == nil {
		t.Fatal("expected a parsed date")
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Errorf("expected midnight UTC, got %s", got)
	}
}
