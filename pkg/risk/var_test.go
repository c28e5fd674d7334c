package risk

import (
	"math"
	"math/rand"
	"testing"
)

func within(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestNormPPF(t *testing.T) {
	cases := []struct{ p, want float64 }{
		{0.5, 0},
		{0.05, -1.6449},
		{0.95, 1.6449},
		{0.01, -2.3263},
		{0.99, 2.3263},
		{0.001, -3.0902},
	}
	for _, c := range cases {
		if got := NormPPF(c.p); !within(got, c.want, 0.0005) {
			t.Errorf("NormPPF(%v) = %v, want %v", c.p, got, c.want)
		}
	}
	if !math.IsInf(NormPPF(0), -1) || !math.IsInf(NormPPF(1), 1) {
		t.Error("NormPPF should return infinities at the boundaries")
	}
}

func TestNormPPFRoundTrip(t *testing.T) {
	for _, p := range []float64{0.001, 0.01, 0.1, 0.3, 0.5, 0.7, 0.9, 0.99, 0.999} {
		if got := NormCDF(NormPPF(p)); !within(got, p, 1e-6) {
			t.Errorf("CDF(PPF(%v)) = %v", p, got)
		}
	}
}

func TestHistorical(t *testing.T) {
	// 100 returns: -0.10, -0.09, ..., down to the 5% tail.
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = -0.10 + float64(i)*0.002
	}
	est := Historical(returns, 0.95)
	// Index 5 of the sorted series is -0.09.
	if !within(est.VaR, 0.09, 1e-9) {
		t.Fatalf("VaR = %v, want 0.09", est.VaR)
	}
	// CVaR is the mean of the six worst returns.
	if !within(est.CVaR, 0.095, 1e-9) {
		t.Fatalf("CVaR = %v, want 0.095", est.CVaR)
	}
	if est.CVaR < est.VaR {
		t.Fatal("CVaR must be at least VaR")
	}
}

func TestHistoricalEmpty(t *testing.T) {
	if est := Historical(nil, 0.95); est != (Estimate{}) {
		t.Fatalf("empty returns produced %+v", est)
	}
}

func TestParametric(t *testing.T) {
	// Symmetric series with mean 0 and known sigma.
	var returns []float64
	for i := -50; i <= 50; i++ {
		returns = append(returns, float64(i)*0.001)
	}
	mu := mean(returns)
	sigma := stdDev(returns, mu)

	est := Parametric(returns, 0.95)
	wantVaR := -(mu + NormPPF(0.05)*sigma)
	if !within(est.VaR, wantVaR, 1e-9) {
		t.Fatalf("VaR = %v, want %v", est.VaR, wantVaR)
	}
	if est.CVaR <= est.VaR {
		t.Fatal("parametric CVaR must exceed VaR")
	}
}

func TestMonteCarloMatchesParametric(t *testing.T) {
	// Single asset, full weight: Monte Carlo should agree with the
	// parametric estimate within sampling noise.
	rng := rand.New(rand.NewSource(7))
	returns := make([]float64, 252)
	for i := range returns {
		returns[i] = 0.0003 + 0.01*rng.NormFloat64()
	}

	para := Parametric(returns, 0.95)
	mc := MonteCarlo([][]float64{returns}, []float64{1}, 0.95, 20000, rand.New(rand.NewSource(42)))
	if !within(mc.VaR, para.VaR, 0.002) {
		t.Fatalf("MC VaR = %v, parametric = %v", mc.VaR, para.VaR)
	}
	if !within(mc.CVaR, para.CVaR, 0.003) {
		t.Fatalf("MC CVaR = %v, parametric = %v", mc.CVaR, para.CVaR)
	}
}

func TestMonteCarloDiversification(t *testing.T) {
	// Two anticorrelated assets hedge each other, so the portfolio VaR
	// should come in well under a single asset's.
	rng := rand.New(rand.NewSource(11))
	a := make([]float64, 252)
	b := make([]float64, 252)
	for i := range a {
		shock := 0.01 * rng.NormFloat64()
		a[i] = shock
		b[i] = -shock + 0.001*rng.NormFloat64()
	}
	single := MonteCarlo([][]float64{a}, []float64{1}, 0.95, 10000, rand.New(rand.NewSource(1)))
	hedged := MonteCarlo([][]float64{a, b}, []float64{0.5, 0.5}, 0.95, 10000, rand.New(rand.NewSource(1)))
	if hedged.VaR >= single.VaR/2 {
		t.Fatalf("hedged VaR %v should be far below single %v", hedged.VaR, single.VaR)
	}
}

func TestPortfolioReturns(t *testing.T) {
	a := []float64{0.01, 0.02}
	b := []float64{-0.01, 0.04}
	port := PortfolioReturns([][]float64{a, b}, []float64{0.5, 0.5})
	if len(port) != 2 || !within(port[0], 0, 1e-12) || !within(port[1], 0.03, 1e-12) {
		t.Fatalf("unexpected portfolio returns %v", port)
	}
	if PortfolioReturns([][]float64{a}, []float64{0.5, 0.5}) != nil {
		t.Fatal("mismatched weights should return nil")
	}
}

func TestCholesky(t *testing.T) {
	m := [][]float64{{4, 2}, {2, 3}}
	l, ok := Cholesky(m)
	if !ok {
		t.Fatal("matrix is positive definite")
	}
	// Reconstruct L*L^T.
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			var sum float64
			for k := 0; k < 2; k++ {
				sum += l[i][k] * l[j][k]
			}
			if !within(sum, m[i][j], 1e-9) {
				t.Fatalf("L*L^T[%d][%d] = %v, want %v", i, j, sum, m[i][j])
			}
		}
	}
	if _, ok := Cholesky([][]float64{{1, 2}, {2, 1}}); ok {
		t.Fatal("indefinite matrix should fail")
	}
}
