package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestMeanAndStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Mean(values); !almostEqual(got, 5.0, 1e-9) {
		t.Fatalf("Mean = %v, want 5", got)
	}
	// Sample std of the series above is sqrt(32/7).
	want := math.Sqrt(32.0 / 7.0)
	if got := StdDev(values); !almostEqual(got, want, 1e-9) {
		t.Fatalf("StdDev = %v, want %v", got, want)
	}
}

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	if got := SMA(closes, 3); !almostEqual(got, 5.0, 1e-9) {
		t.Fatalf("SMA(3) = %v, want 5", got)
	}
	if got := SMA(closes, 10); got != 0 {
		t.Fatalf("SMA with short series = %v, want 0", got)
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24}
	if got := RSI(closes, 14); !almostEqual(got, 100, 1e-9) {
		t.Fatalf("RSI of monotonic gains = %v, want 100", got)
	}
}

func TestRSIMixed(t *testing.T) {
	// Alternating +2/-1 moves: avg gain 2*7/14 = 1, avg loss 1*7/14 = 0.5,
	// RS = 2, RSI = 100 - 100/3.
	closes := make([]float64, 15)
	closes[0] = 100
	for i := 1; i < 15; i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 2
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	want := 100 - 100.0/3.0
	if got := RSI(closes, 14); !almostEqual(got, want, 1e-9) {
		t.Fatalf("RSI = %v, want %v", got, want)
	}
}

func TestZScore(t *testing.T) {
	// 19 values at 100, last at 110.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	closes[19] = 110

	got := ZScore(closes, 20)
	if got <= 0 {
		t.Fatalf("ZScore of upside outlier = %v, want positive", got)
	}
	// Mean 100.5, sample std sqrt(19*0.25 + 90.25)/sqrt(19).
	mean := 100.5
	var sum float64
	for _, v := range closes {
		sum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sum / 19)
	want := (110 - mean) / std
	if !almostEqual(got, want, 1e-9) {
		t.Fatalf("ZScore = %v, want %v", got, want)
	}
}

func TestBollinger(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 50
	}
	mid, upper, lower, width := Bollinger(closes, 20, 2)
	if mid != 50 || upper != 50 || lower != 50 || width != 0 {
		t.Fatalf("flat series bands = %v/%v/%v width %v", mid, upper, lower, width)
	}
}

func TestRelativeStrength(t *testing.T) {
	stock := []float64{100, 120} // +20%
	bench := []float64{100, 105} // +5%
	if got := RelativeStrength(stock, bench); !almostEqual(got, 15, 1e-9) {
		t.Fatalf("RelativeStrength = %v, want 15", got)
	}
}

func TestReturns(t *testing.T) {
	closes := []float64{100, 110, 99}
	rets := Returns(closes)
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if !almostEqual(rets[0], 0.10, 1e-9) || !almostEqual(rets[1], -0.10, 1e-9) {
		t.Fatalf("unexpected returns %v", rets)
	}
}

func TestCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	if got := Correlation(a, b); !almostEqual(got, 1, 1e-9) {
		t.Fatalf("perfect correlation = %v, want 1", got)
	}
	c := []float64{10, 8, 6, 4, 2}
	if got := Correlation(a, c); !almostEqual(got, -1, 1e-9) {
		t.Fatalf("perfect anticorrelation = %v, want -1", got)
	}
}

func TestOLSKnownLine(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v + 7
	}
	beta, alpha, _ := OLS(y, x)
	if !almostEqual(beta, 3, 1e-9) || !almostEqual(alpha, 7, 1e-9) {
		t.Fatalf("OLS = beta %v alpha %v, want 3 and 7", beta, alpha)
	}
}

func TestHalfLifeMeanReverting(t *testing.T) {
	// AR(1) with lambda = -0.2 reverts with half-life ln2/0.2 ≈ 3.47 days.
	spread := make([]float64, 200)
	spread[0] = 10
	for i := 1; i < len(spread); i++ {
		spread[i] = spread[i-1] + -0.2*spread[i-1]
	}
	hl, ok := HalfLife(spread)
	if !ok {
		t.Fatal("expected mean-reverting spread")
	}
	if !almostEqual(hl, math.Ln2/0.2, 0.2) {
		t.Fatalf("HalfLife = %v, want about %v", hl, math.Ln2/0.2)
	}
}

func TestHalfLifeTrending(t *testing.T) {
	spread := make([]float64, 100)
	for i := range spread {
		spread[i] = float64(i) * float64(i)
	}
	if _, ok := HalfLife(spread); ok {
		t.Fatal("trending series should not report a half-life")
	}
}

func TestCointegrationStationarySpread(t *testing.T) {
	// price2 trends steadily, price1 tracks 2*price2 plus a bounded
	// oscillation, so the spread is strongly stationary.
	n := 120
	price2 := make([]float64, n)
	price1 := make([]float64, n)
	for i := 0; i < n; i++ {
		price2[i] = 100 + float64(i)*0.5
		osc := 3 * math.Sin(float64(i)*1.3)
		price1[i] = 2*price2[i] + osc
	}
	tstat, pvalue := Cointegration(price1, price2)
	if tstat >= -3.34 {
		t.Fatalf("ADF stat %v too weak for stationary spread", tstat)
	}
	if pvalue > 0.05 {
		t.Fatalf("pvalue = %v, want <= 0.05", pvalue)
	}
}
