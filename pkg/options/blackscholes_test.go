package options

import (
	"math"
	"testing"
)

func within(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestComputeGreeksATMCall(t *testing.T) {
	// S=100, K=100, T=1y, r=5%, iv=20%: d1=0.35, d2=0.15.
	g := ComputeGreeks(100, 100, 1, 0.05, 0.20, true)
	if !within(g.Delta, 0.6368, 0.0002) {
		t.Fatalf("call delta = %v, want ~0.6368", g.Delta)
	}
	if !within(g.Gamma, 0.018762, 0.00001) {
		t.Fatalf("call gamma = %v, want ~0.018762", g.Gamma)
	}
	if !within(g.Theta, -0.0176, 0.0002) {
		t.Fatalf("call theta = %v, want ~-0.0176", g.Theta)
	}
	if !within(g.Vega, 0.3752, 0.0002) {
		t.Fatalf("call vega = %v, want ~0.3752", g.Vega)
	}
}

func TestComputeGreeksATMPut(t *testing.T) {
	g := ComputeGreeks(100, 100, 1, 0.05, 0.20, false)
	if !within(g.Delta, -0.3632, 0.0002) {
		t.Fatalf("put delta = %v, want ~-0.3632", g.Delta)
	}
	if !within(g.Theta, -0.0045, 0.0002) {
		t.Fatalf("put theta = %v, want ~-0.0045", g.Theta)
	}
	// Gamma and vega are the same for calls and puts.
	call := ComputeGreeks(100, 100, 1, 0.05, 0.20, true)
	if g.Gamma != call.Gamma || g.Vega != call.Vega {
		t.Fatalf("put gamma/vega %v/%v differ from call %v/%v", g.Gamma, g.Vega, call.Gamma, call.Vega)
	}
}

func TestComputeGreeksDeepITMCall(t *testing.T) {
	g := ComputeGreeks(200, 100, 0.25, 0.05, 0.30, true)
	if g.Delta < 0.99 {
		t.Fatalf("deep ITM call delta = %v, want near 1", g.Delta)
	}
}

func TestComputeGreeksDegenerateInputs(t *testing.T) {
	for _, g := range []Greeks{
		ComputeGreeks(0, 100, 1, 0.05, 0.2, true),
		ComputeGreeks(100, 100, 0, 0.05, 0.2, true),
		ComputeGreeks(100, 100, 1, 0.05, 0, true),
	} {
		if g != (Greeks{}) {
			t.Fatalf("degenerate inputs produced %+v", g)
		}
	}
}

func TestIVPercentile(t *testing.T) {
	observed := []float64{0.2, 0.3, 0.4, 0.5, 0.6}
	if got := IVPercentile(0.55, observed); !within(got, 0.8, 1e-9) {
		t.Fatalf("IVPercentile = %v, want 0.8", got)
	}
	if got := IVPercentile(0.1, observed); got != 0 {
		t.Fatalf("IVPercentile below range = %v, want 0", got)
	}
	if got := IVPercentile(0.5, nil); got != 0 {
		t.Fatalf("IVPercentile empty sample = %v, want 0", got)
	}
}
