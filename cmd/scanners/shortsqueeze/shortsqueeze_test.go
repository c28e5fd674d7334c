package main

import (
	"math"
	"testing"
)

func TestClassifyStage(t *testing.T) {
	cases := []struct {
		name        string
		momentum5d  float64
		change1d    float64
		volumeRatio float64
		breakout    bool
		want        string
	}{
		{"extreme volume with daily pop", 0, 6, 5.5, false, STAGE_ACTIVE},
		{"volume spike with weekly run", 12, 0, 2.5, false, STAGE_STARTING},
		{"both ladders hit, most advanced wins", 12, 6, 5.5, false, STAGE_ACTIVE},
		{"daily pop on quiet volume", 0, 6, 1.5, true, STAGE_BREAKOUT},
		{"breakout only", 0, 0, 1, true, STAGE_BREAKOUT},
		{"nothing yet", 0, 0, 1, false, STAGE_FORMING},
	}
	for _, c := range cases {
		got := classifyStage(c.momentum5d, c.change1d, c.volumeRatio, c.breakout)
		if got != c.want {
			t.Errorf("%s: classifyStage = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestCoveringDays(t *testing.T) {
	// 12M shares short, 1M average daily volume: 12M * 0.35 / 1M.
	got := coveringDays(12000000, 1000000)
	if math.Abs(got-4.2) > 1e-9 {
		t.Fatalf("coveringDays = %v, want 4.2", got)
	}
	if got := coveringDays(12000000, 0); got != 0 {
		t.Fatalf("coveringDays with no volume = %v, want 0", got)
	}
}
