package domain

import "math"

// Greeks is a read-only risk snapshot for a single option leg. It is
// purely additive: nothing in the rule set or executor consumes it, the
// rules already carry the one Greek (delta) they need from the strike
// solver. A host UI can call OptionGreeks against any MarketSnapshot +
// OpenOption pair for display.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// OptionGreeks computes the full Black-Scholes Greek set for one leg.
func OptionGreeks(spot, strike, t, r, vol float64, optType OptionType) Greeks {
	d1, d2 := bsD1D2(spot, strike, t, r, vol)
	disc := math.Exp(-r * t)
	sqrtT := math.Sqrt(t)

	gamma := normPDF(d1) / (spot * vol * sqrtT)
	vega := spot * normPDF(d1) * sqrtT / 100

	var delta, theta, rho float64
	if optType == OptionCall {
		delta = normCDF(d1)
		theta = (-spot*normPDF(d1)*vol/(2*sqrtT) - r*strike*disc*normCDF(d2)) / 365
		rho = strike * t * disc * normCDF(d2) / 100
	} else {
		delta = normCDF(d1) - 1.0
		theta = (-spot*normPDF(d1)*vol/(2*sqrtT) + r*strike*disc*normCDF(-d2)) / 365
		rho = -strike * t * disc * normCDF(-d2) / 100
	}

	return Greeks{Delta: delta, Gamma: gamma, Theta: theta, Vega: vega, Rho: rho}
}
