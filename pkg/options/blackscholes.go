// Package options prices option Greeks and flags unusual contract activity.
package options

import (
	"math"
)

// Greeks holds the Black-Scholes sensitivities for a single contract.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// ComputeGreeks returns the Black-Scholes Greeks for a contract.
// spot and strike are in dollars, tYears is time to expiry in years,
// rate is the annual risk-free rate and iv the implied volatility,
// both as fractions. Theta is per calendar day, vega per 1% vol move.
func ComputeGreeks(spot, strike, tYears, rate, iv float64, isCall bool) Greeks {
	if spot <= 0 || strike <= 0 || tYears <= 0 || iv <= 0 {
		return Greeks{}
	}

	sqrtT := math.Sqrt(tYears)
	d1 := (math.Log(spot/strike) + (rate+iv*iv/2)*tYears) / (iv * sqrtT)
	d2 := d1 - iv*sqrtT

	var delta, theta float64
	if isCall {
		delta = normCDF(d1)
		theta = (-spot*normPDF(d1)*iv/(2*sqrtT) -
			rate*strike*math.Exp(-rate*tYears)*normCDF(d2)) / 365
	} else {
		delta = -normCDF(-d1)
		theta = (-spot*normPDF(d1)*iv/(2*sqrtT) +
			rate*strike*math.Exp(-rate*tYears)*normCDF(-d2)) / 365
	}

	gamma := normPDF(d1) / (spot * iv * sqrtT)
	vega := spot * normPDF(d1) * sqrtT / 100

	return Greeks{
		Delta: round(delta, 4),
		Gamma: round(gamma, 6),
		Theta: round(theta, 4),
		Vega:  round(vega, 4),
	}
}

// IVPercentile ranks iv against a set of observed implied vols on a 0-1
// scale. Returns 0 when the sample is empty.
func IVPercentile(iv float64, observed []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	below := 0
	for _, v := range observed {
		if v < iv {
			below++
		}
	}
	return float64(below) / float64(len(observed))
}
