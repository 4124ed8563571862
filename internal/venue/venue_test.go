package venue

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLayout(t *testing.T) {
	v := Default()
	if len(v.Zones) != 4 {
		t.Fatalf("expected 4 zones, got %d", len(v.Zones))
	}
	if got := v.MaxPartySize(); got != 8 {
		t.Fatalf("expected max party size 8, got %d", got)
	}
	if _, ok := v.Zone("VIP"); !ok {
		t.Fatalf("VIP zone missing")
	}
	if _, ok := v.Zone("vip"); !ok {
		t.Fatalf("zone lookup should be case-insensitive")
	}
	if _, ok := v.TableInZone("VIP", "vip-1"); !ok {
		t.Fatalf("table lookup should be case-insensitive")
	}
	if _, ok := v.TableInZone("Bar", "VIP-1"); ok {
		t.Fatalf("VIP-1 must not resolve inside Bar")
	}
}

func TestWithinHoursWrapsMidnight(t *testing.T) {
	v := Default() // 18:00–04:00
	cases := []struct {
		hour, minute int
		want         bool
	}{
		{18, 0, true},  // opening bound inclusive
		{23, 30, true}, // before midnight
		{1, 15, true},  // after midnight
		{4, 0, true},   // closing bound inclusive
		{4, 1, false},  // just past closing
		{12, 0, false}, // afternoon
		{17, 59, false},
	}
	for _, c := range cases {
		if got := v.WithinHours(c.hour, c.minute); got != c.want {
			t.Errorf("WithinHours(%02d:%02d) = %v, want %v", c.hour, c.minute, got, c.want)
		}
	}
}

func TestWithinHoursNonWrapping(t *testing.T) {
	v := &Venue{
		Zones:     []Zone{{ID: "Main", Tables: []Table{{ID: "M-1", Capacity: 4}}}},
		OpenFrom:  "10:00",
		OpenUntil: "22:00",
	}
	if err := v.init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !v.WithinHours(12, 0) {
		t.Fatalf("12:00 should be inside 10:00–22:00")
	}
	if v.WithinHours(23, 0) {
		t.Fatalf("23:00 should be outside 10:00–22:00")
	}
}

func TestLoadFromYAML(t *testing.T) {
	raw := `
open_from: "19:00"
open_until: "03:00"
zones:
  - id: Terrace
    tables:
      - id: T-1
        capacity: 4
      - id: T-2
        capacity: 10
`
	path := filepath.Join(t.TempDir(), "venue.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write temp venue: %v", err)
	}
	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.MaxPartySize() != 10 {
		t.Fatalf("expected max party size 10, got %d", v.MaxPartySize())
	}
	if _, ok := v.TableInZone("terrace", "t-2"); !ok {
		t.Fatalf("expected T-2 in Terrace")
	}
	if v.WithinHours(18, 0) {
		t.Fatalf("18:00 should be outside 19:00–03:00")
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"no zones":        `open_from: "18:00"`,
		"empty zone":      "zones:\n  - id: A\n    tables: []\n",
		"zero capacity":   "zones:\n  - id: A\n    tables:\n      - id: A-1\n        capacity: 0\n",
		"duplicate table": "zones:\n  - id: A\n    tables:\n      - id: A-1\n        capacity: 2\n      - id: a-1\n        capacity: 2\n",
		"bad clock":       "open_from: \"25:00\"\nzones:\n  - id: A\n    tables:\n      - id: A-1\n        capacity: 2\n",
	}
	for name, raw := range cases {
		path := filepath.Join(t.TempDir(), "venue.yaml")
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatalf("write temp venue: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error, got none", name)
		}
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if len(v.Zones) == 0 {
		t.Fatalf("default venue should have zones")
	}
}
