// Package risk computes portfolio Value-at-Risk and expected shortfall
// with historical, parametric and Monte Carlo estimators.
package risk

import (
	"math"
	"math/rand"
	"sort"
)

// Estimate is a one-day loss estimate. VaR and CVaR are positive
// fractions of portfolio value (0.025 means a 2.5% loss).
type Estimate struct {
	VaR  float64 `json:"var"`
	CVaR float64 `json:"cvar"`
}

// PortfolioReturns collapses per-asset return series into a single
// weighted portfolio series. All series must share the same length.
func PortfolioReturns(assetReturns [][]float64, weights []float64) []float64 {
	if len(assetReturns) == 0 || len(assetReturns) != len(weights) {
		return nil
	}
	n := len(assetReturns[0])
	port := make([]float64, n)
	for i, series := range assetReturns {
		if len(series) != n {
			return nil
		}
		for day, r := range series {
			port[day] += weights[i] * r
		}
	}
	return port
}

// Historical estimates VaR and CVaR from the empirical return
// distribution at the given confidence level (e.g. 0.95).
func Historical(returns []float64, confidence float64) Estimate {
	if len(returns) == 0 {
		return Estimate{}
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * (1 - confidence))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	tail := sorted[:idx+1]
	var sum float64
	for _, r := range tail {
		sum += r
	}
	return Estimate{
		VaR:  -sorted[idx],
		CVaR: -sum / float64(len(tail)),
	}
}

// Parametric estimates VaR and CVaR assuming normally distributed
// returns with the sample mean and standard deviation.
func Parametric(returns []float64, confidence float64) Estimate {
	if len(returns) < 2 {
		return Estimate{}
	}
	mu := mean(returns)
	sigma := stdDev(returns, mu)
	z := NormPPF(1 - confidence)
	return Estimate{
		VaR:  -(mu + z*sigma),
		CVaR: -(mu - sigma*NormPDF(z)/(1-confidence)),
	}
}

// MonteCarlo simulates correlated asset returns from the sample mean
// vector and covariance matrix, then reads VaR and CVaR off the
// simulated portfolio distribution. Falls back to independent draws
// when the covariance matrix is not positive definite.
func MonteCarlo(assetReturns [][]float64, weights []float64, confidence float64, sims int, rng *rand.Rand) Estimate {
	n := len(assetReturns)
	if n == 0 || n != len(weights) || sims <= 0 {
		return Estimate{}
	}

	mu := make([]float64, n)
	for i, series := range assetReturns {
		mu[i] = mean(series)
	}
	cov := Covariance(assetReturns)

	// Regularize so near-singular matrices still factor.
	for i := 0; i < n; i++ {
		cov[i][i] += 1e-8
	}

	chol, ok := Cholesky(cov)
	simulated := make([]float64, sims)
	z := make([]float64, n)
	for s := 0; s < sims; s++ {
		for i := range z {
			z[i] = rng.NormFloat64()
		}
		var port float64
		for i := 0; i < n; i++ {
			r := mu[i]
			if ok {
				for j := 0; j <= i; j++ {
					r += chol[i][j] * z[j]
				}
			} else {
				r += math.Sqrt(cov[i][i]) * z[i]
			}
			port += weights[i] * r
		}
		simulated[s] = port
	}
	return Historical(simulated, confidence)
}

// Covariance returns the sample covariance matrix of the asset return
// series.
func Covariance(assetReturns [][]float64) [][]float64 {
	n := len(assetReturns)
	cov := make([][]float64, n)
	means := make([]float64, n)
	for i, series := range assetReturns {
		cov[i] = make([]float64, n)
		means[i] = mean(series)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum float64
			obs := len(assetReturns[i])
			if len(assetReturns[j]) < obs {
				obs = len(assetReturns[j])
			}
			for k := 0; k < obs; k++ {
				sum += (assetReturns[i][k] - means[i]) * (assetReturns[j][k] - means[j])
			}
			if obs > 1 {
				sum /= float64(obs - 1)
			}
			cov[i][j] = sum
			cov[j][i] = sum
		}
	}
	return cov
}

// Cholesky factors a symmetric positive definite matrix as L*L^T and
// returns the lower triangle. ok is false when the matrix is not
// positive definite.
func Cholesky(m [][]float64) (lower [][]float64, ok bool) {
	n := len(m)
	lower = make([][]float64, n)
	for i := range lower {
		lower[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m[i][j]
			for k := 0; k < j; k++ {
				sum -= lower[i][k] * lower[j][k]
			}
			if i == j {
				if sum <= 0 {
					return nil, false
				}
				lower[i][i] = math.Sqrt(sum)
			} else {
				lower[i][j] = sum / lower[j][j]
			}
		}
	}
	return lower, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, mu float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += (v - mu) * (v - mu)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
