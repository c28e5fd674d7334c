package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ShortSqueeze.AlertScore != 8 || s.Pairs.DollarPerLeg != 5000 {
		t.Fatalf("defaults not applied: %+v", s)
	}
	if s.Breakout.MinRSvsSPY != nil {
		t.Fatal("RS filter should default to disabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	body := `breakout:
  proximity_pct: 1.0
  volume_multiple: 2.0
  min_rs_vs_spy: 3.5
short_squeeze:
  alert_score: 7
  medium_score: 8
  high_score: 10
  extreme_score: 12
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Breakout.ProximityPct != 1.0 || s.Breakout.MinRSvsSPY == nil || *s.Breakout.MinRSvsSPY != 3.5 {
		t.Fatalf("breakout overrides not applied: %+v", s.Breakout)
	}
	if s.ShortSqueeze.AlertScore != 7 {
		t.Fatalf("squeeze override not applied: %+v", s.ShortSqueeze)
	}
	// Sections absent from the file keep their defaults.
	if s.Pairs.LookbackDays != 60 {
		t.Fatalf("pairs defaults lost: %+v", s.Pairs)
	}
}

func TestLoadRejectsBadThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	body := `pairs:
  entry_z_score: 4.0
  stop_z_score: 2.0
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
