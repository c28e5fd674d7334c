package indicators

import "math"

// OLS fits y = alpha + beta*x by least squares and returns the slope,
// intercept, and the t-statistic of the slope.
func OLS(y, x []float64) (beta, alpha, tstat float64) {
	n := len(x)
	if n != len(y) || n < 3 {
		return 0, 0, 0
	}
	meanX := Mean(x)
	meanY := Mean(y)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}
	if sxx == 0 {
		return 0, 0, 0
	}
	beta = sxy / sxx
	alpha = meanY - beta*meanX

	// Residual variance for the slope's standard error.
	var rss float64
	for i := 0; i < n; i++ {
		r := y[i] - alpha - beta*x[i]
		rss += r * r
	}
	s2 := rss / float64(n-2)
	se := math.Sqrt(s2 / sxx)
	if se == 0 {
		return beta, alpha, 0
	}
	return beta, alpha, beta / se
}

// HedgeRatio regresses price1 on price2 and returns the hedge beta.
func HedgeRatio(price1, price2 []float64) float64 {
	beta, _, _ := OLS(price1, price2)
	return beta
}

// Spread returns price1 - beta*price2.
func Spread(price1, price2 []float64, beta float64) []float64 {
	n := len(price1)
	if n != len(price2) {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = price1[i] - beta*price2[i]
	}
	return out
}

// HalfLife estimates the mean-reversion half-life of a spread in days from
// an AR(1) regression of spread changes on the lagged spread. ok is false
// when the spread shows no mean reversion.
func HalfLife(spread []float64) (days float64, ok bool) {
	if len(spread) < 12 {
		return 0, false
	}
	lag := spread[:len(spread)-1]
	ret := make([]float64, len(spread)-1)
	for i := 1; i < len(spread); i++ {
		ret[i-1] = spread[i] - spread[i-1]
	}

	lambda, _, _ := OLS(ret, lag)
	if lambda >= 0 {
		return 0, false
	}
	return -math.Ln2 / lambda, true
}

// Engle-Granger critical values for the ADF statistic on a fitted spread
// (two variables, constant term). Used to bracket a p-value the way the
// scanners score cointegration strength.
var egCriticalValues = []struct {
	stat float64
	p    float64
}{
	{-3.90, 0.01},
	{-3.59, 0.03},
	{-3.34, 0.05},
	{-3.04, 0.10},
}

// ADFStat runs a Dickey-Fuller regression with constant on the series and
// returns the t-statistic of the lagged level. Strongly negative values
// reject a unit root.
func ADFStat(series []float64) float64 {
	if len(series) < 12 {
		return 0
	}
	lag := series[:len(series)-1]
	diff := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		diff[i-1] = series[i] - series[i-1]
	}
	_, _, tstat := OLS(diff, lag)
	return tstat
}

// Cointegration tests price1 and price2 for cointegration Engle-Granger
// style: fit the hedge ratio, then ADF-test the spread. The returned
// p-value is bracketed against tabulated critical values.
func Cointegration(price1, price2 []float64) (tstat, pvalue float64) {
	beta := HedgeRatio(price1, price2)
	spread := Spread(price1, price2, beta)
	tstat = ADFStat(spread)

	pvalue = 0.50
	for _, cv := range egCriticalValues {
		if tstat <= cv.stat {
			pvalue = cv.p
			break
		}
	}
	return tstat, pvalue
}
