package indicators

import "math"

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation (n-1 denominator, matching
// the rolling std the scanners were tuned against).
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// SMA returns the simple moving average over the trailing period.
// Values are ordered oldest first.
func SMA(values []float64, period int) float64 {
	if len(values) < period || period <= 0 {
		return 0
	}
	return Mean(values[len(values)-period:])
}

// EMA returns the exponential moving average over the full series, seeded
// with an SMA of the first period values.
func EMA(values []float64, period int) float64 {
	if len(values) < period || period <= 0 {
		return 0
	}
	k := 2.0 / (float64(period) + 1.0)
	ema := Mean(values[:period])
	for _, v := range values[period:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// RSI returns the relative strength index for the latest close.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}
	window := closes[len(closes)-period-1:]

	gains := 0.0
	losses := 0.0
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Bollinger returns the middle band (SMA), upper/lower bands at k standard
// deviations, and the band width as a fraction of the middle band.
func Bollinger(closes []float64, period int, k float64) (mid, upper, lower, width float64) {
	if len(closes) < period {
		return 0, 0, 0, 0
	}
	window := closes[len(closes)-period:]
	mid = Mean(window)
	std := StdDev(window)
	upper = mid + k*std
	lower = mid - k*std
	if mid != 0 {
		width = (upper - lower) / mid
	}
	return mid, upper, lower, width
}

// ZScore returns how many standard deviations the latest close sits from
// its trailing mean.
func ZScore(closes []float64, period int) float64 {
	if len(closes) < period {
		return 0
	}
	window := closes[len(closes)-period:]
	std := StdDev(window)
	if std == 0 {
		return 0
	}
	return (closes[len(closes)-1] - Mean(window)) / std
}

// PercentChange returns the percentage move from a base price.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// Returns converts a close series into simple daily returns.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// RelativeStrength returns the stock's period performance minus the
// benchmark's, both in percent.
func RelativeStrength(stock, benchmark []float64) float64 {
	if len(stock) < 2 || len(benchmark) < 2 {
		return 0
	}
	stockPerf := PercentChange(stock[0], stock[len(stock)-1])
	benchPerf := PercentChange(benchmark[0], benchmark[len(benchmark)-1])
	return stockPerf - benchPerf
}

// Correlation returns the Pearson correlation of two equal-length series.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if n != len(b) || n < 2 {
		return 0
	}
	meanA := Mean(a)
	meanB := Mean(b)
	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// Max returns the highest value in the series.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the lowest value in the series.
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
