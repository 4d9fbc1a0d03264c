package timezones

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadZones_DedupesSortsAndIgnoresComments(t *testing.T) {
	zones, err := LoadZones(strings.NewReader("\n# Comment\nEurope/Paris\nAmerica/New_York\nEurope/Paris\n\nUTC\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []string{"America/New_York", "Europe/Paris", "UTC"}
	if strings.Join(zones, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected zones: %#v", zones)
	}
}

func TestDefaultZones_EveryEntryLoads(t *testing.T) {
	zones, err := DefaultZones()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(zones) < 250 {
		t.Fatalf("expected the canonical list, got %d entries", len(zones))
	}
	for _, zone := range zones {
		if !Valid(zone) {
			t.Fatalf("embedded zone %q does not load", zone)
		}
	}
}

func TestValid(t *testing.T) {
	for zone, want := range map[string]bool{
		"America/New_York": true,
		"UTC":              true,
		"":                 false,
		"Local":            false,
		"Mars/Olympus":     false,
	} {
		if got := Valid(zone); got != want {
			t.Fatalf("Valid(%q) = %v, want %v", zone, got, want)
		}
	}
}

func TestDetect_PrefersTZ(t *testing.T) {
	t.Setenv("TZ", "Asia/Tokyo")
	if got := Detect(); got != "Asia/Tokyo" {
		t.Fatalf("expected TZ zone, got %q", got)
	}
}

func TestDetect_ReadsLocaltimeSymlink(t *testing.T) {
	t.Setenv("TZ", "")
	dir := t.TempDir()
	target := filepath.Join(dir, "zoneinfo", "Europe", "Berlin")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(target, []byte("TZif"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(dir, "localtime")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	previous := localtimePath
	localtimePath = link
	t.Cleanup(func() { localtimePath = previous })

	if got := Detect(); got != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %q", got)
	}
}

func TestOffsetLabels(t *testing.T) {
	winter := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC)

	if got := Label("America/New_York", winter); got != "America/New_York (UTC-05:00)" {
		t.Fatalf("unexpected winter label %q", got)
	}
	if got := Label("America/New_York", summer); got != "America/New_York (UTC-04:00)" {
		t.Fatalf("unexpected summer label %q", got)
	}
	if got := Label("Asia/Kolkata", winter); got != "Asia/Kolkata (UTC+05:30)" {
		t.Fatalf("unexpected half-hour label %q", got)
	}
	if got := Label("Nowhere/Special", winter); got != "Nowhere/Special" {
		t.Fatalf("unknown zones should keep the bare name, got %q", got)
	}
}

var sampleZones = []string{
	"America/Argentina/Buenos_Aires",
	"America/Los_Angeles",
	"America/New_York",
	"Asia/Kolkata",
	"Asia/Yangon",
	"Europe/London",
	"Europe/Paris",
	"UTC",
}

func TestSearch_CityNames(t *testing.T) {
	opts := NewOptions()
	cases := []struct {
		query string
		want  []string
	}{
		{"new york", []string{"America/New_York"}},
		{"  NEW   York ", []string{"America/New_York"}},
		{"buenos", []string{"America/Argentina/Buenos_Aires"}},
		{"europe/", []string{"Europe/London", "Europe/Paris"}},
		{"mars", []string{}},
	}
	for _, tc := range cases {
		got := Search(sampleZones, tc.query, 0, opts)
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Fatalf("Search(%q) = %#v, want %#v", tc.query, got, tc.want)
		}
	}
}

func TestSearch_RanksCityAheadOfSubstring(t *testing.T) {
	zones := []string{"America/Parisville", "Europe/Paris", "Pacific/Nonparis"}
	got := Search(zones, "paris", 0, NewOptions())
	want := []string{"Europe/Paris", "America/Parisville", "Pacific/Nonparis"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected ranking: %#v", got)
	}
}

func TestSearch_ByOffset(t *testing.T) {
	winter := func() time.Time { return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC) }
	opts := NewOptions(WithClock(winter))

	cases := []struct {
		query string
		want  []string
	}{
		{"+5:30", []string{"Asia/Kolkata"}},
		{"UTC+05", []string{"Asia/Kolkata"}},
		{"utc-5", []string{"America/New_York"}},
		{"gmt+0", []string{"Europe/London", "UTC"}},
		{"+6:30", []string{"Asia/Yangon"}},
	}
	for _, tc := range cases {
		got := Search(sampleZones, tc.query, 0, opts)
		if strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Fatalf("Search(%q) = %#v, want %#v", tc.query, got, tc.want)
		}
	}
}

func TestSearch_EmptyQueryPinsPreferred(t *testing.T) {
	zones := []string{"a", "b", "c", "d"}
	opts := NewOptions(WithDefaultLimit(2), WithMaxLimit(3), WithPreferred("c"))

	if got := Search(zones, "", 0, opts); strings.Join(got, ",") != "c,a" {
		t.Fatalf("unexpected results: %#v", got)
	}
	if got := Search(zones, "", 10, opts); len(got) != 3 {
		t.Fatalf("expected the max limit to apply, got %#v", got)
	}
}

func TestSearchOptions_UsesClock(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) }
	results := SearchOptions([]string{"UTC", "Europe/Paris"}, "paris", 10, NewOptions(WithClock(clock)))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	want := Option{Value: "Europe/Paris", Label: "Europe/Paris (UTC+01:00)", Offset: "UTC+01:00"}
	if results[0] != want {
		t.Fatalf("unexpected option: %#v", results[0])
	}
}
