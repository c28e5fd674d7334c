// Package settings loads optional scanner threshold overrides from a
// YAML file. Missing files fall back to built-in defaults so the
// scanners run with zero configuration.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "settings.yaml"

type Settings struct {
	Breakout struct {
		ProximityPct   float64  `yaml:"proximity_pct"`
		VolumeMultiple float64  `yaml:"volume_multiple"`
		MinRSvsSPY     *float64 `yaml:"min_rs_vs_spy"`
	} `yaml:"breakout"`

	ShortSqueeze struct {
		AlertScore   int `yaml:"alert_score"`
		MediumScore  int `yaml:"medium_score"`
		HighScore    int `yaml:"high_score"`
		ExtremeScore int `yaml:"extreme_score"`
	} `yaml:"short_squeeze"`

	MeanReversion struct {
		AlertScore  int     `yaml:"alert_score"`
		MediumScore int     `yaml:"medium_score"`
		HighScore   int     `yaml:"high_score"`
		EntryZScore float64 `yaml:"entry_z_score"`
	} `yaml:"mean_reversion"`

	Pairs struct {
		LookbackDays int     `yaml:"lookback_days"`
		EntryZScore  float64 `yaml:"entry_z_score"`
		StopZScore   float64 `yaml:"stop_z_score"`
		DollarPerLeg float64 `yaml:"dollar_per_leg"`
	} `yaml:"pairs"`

	ORB struct {
		MinRangePct  float64 `yaml:"min_range_pct"`
		BreakoutPct  float64 `yaml:"breakout_pct"`
		RangeMinutes int     `yaml:"range_minutes"`
	} `yaml:"orb"`
}

// Defaults returns the thresholds the scanners ship with.
func Defaults() Settings {
	var s Settings

	s.Breakout.ProximityPct = 0.5
	s.Breakout.VolumeMultiple = 1.5

	s.ShortSqueeze.AlertScore = 8
	s.ShortSqueeze.MediumScore = 9
	s.ShortSqueeze.HighScore = 11
	s.ShortSqueeze.ExtremeScore = 13

	s.MeanReversion.AlertScore = 6
	s.MeanReversion.MediumScore = 7
	s.MeanReversion.HighScore = 9
	s.MeanReversion.EntryZScore = -2.0

	s.Pairs.LookbackDays = 60
	s.Pairs.EntryZScore = 2.0
	s.Pairs.StopZScore = 3.5
	s.Pairs.DollarPerLeg = 5000

	s.ORB.MinRangePct = 0.5
	s.ORB.BreakoutPct = 0.2
	s.ORB.RangeMinutes = 30

	return s
}

// Load reads overrides from path on top of the defaults. A missing
// file is not an error.
func Load(path string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Defaults(), err
	}
	return s, nil
}

// Validate rejects override combinations that would disable alerting.
func (s Settings) Validate() error {
	if s.ShortSqueeze.AlertScore > s.ShortSqueeze.MediumScore {
		return fmt.Errorf("short_squeeze alert_score %d above medium_score %d",
			s.ShortSqueeze.AlertScore, s.ShortSqueeze.MediumScore)
	}
	if s.MeanReversion.AlertScore > s.MeanReversion.MediumScore {
		return fmt.Errorf("mean_reversion alert_score %d above medium_score %d",
			s.MeanReversion.AlertScore, s.MeanReversion.MediumScore)
	}
	if s.Pairs.EntryZScore <= 0 || s.Pairs.StopZScore <= s.Pairs.EntryZScore {
		return fmt.Errorf("pairs z-scores must satisfy 0 < entry < stop")
	}
	if s.Breakout.ProximityPct <= 0 || s.Breakout.VolumeMultiple <= 0 {
		return fmt.Errorf("breakout thresholds must be positive")
	}
	return nil
}
