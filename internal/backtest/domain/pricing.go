package domain

import "math"

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// normCDF is the standard normal CDF via the Abramowitz & Stegun 26.2.17
// rational approximation (absolute error below 7.5e-8), used in place of
// the teacher's math.Erf-based normCdf so the approximation error itself
// is a documented, fixed constant rather than whatever the platform libm
// gives for Erf.
func normCDF(x float64) float64 {
	const (
		a1 = 0.319381530
		a2 = -0.356563782
		a3 = 1.781477937
		a4 = -1.821255978
		a5 = 1.330274429
		p  = 0.2316419
	)
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}
	k := 1.0 / (1.0 + p*x)
	poly := k * (a1 + k*(a2+k*(a3+k*(a4+k*a5))))
	cdf := 1.0 - normPDF(x)*poly
	if sign < 0 {
		return 1.0 - cdf
	}
	return cdf
}

// bsD1D2 returns the Black-Scholes d1, d2 terms.
func bsD1D2(spot, strike, t, r, vol float64) (float64, float64) {
	d1 := (math.Log(spot/strike) + (r+0.5*vol*vol)*t) / (vol * math.Sqrt(t))
	d2 := d1 - vol*math.Sqrt(t)
	return d1, d2
}

// BSPrice returns the Black-Scholes European price for optType.
func BSPrice(optType OptionType, spot, strike, t, r, vol float64) float64 {
	d1, d2 := bsD1D2(spot, strike, t, r, vol)
	disc := math.Exp(-r * t)
	if optType == OptionCall {
		return spot*normCDF(d1) - strike*disc*normCDF(d2)
	}
	return strike*disc*normCDF(-d2) - spot*normCDF(-d1)
}

// BSDelta returns the signed Black-Scholes delta: positive for calls,
// negative for puts.
func BSDelta(optType OptionType, spot, strike, t, r, vol float64) float64 {
	d1, _ := bsD1D2(spot, strike, t, r, vol)
	if optType == OptionCall {
		return normCDF(d1)
	}
	return normCDF(d1) - 1.0
}

// FindStrikeForDelta bisects for the strike whose absolute delta equals
// targetAbsDelta, bracketing [0.5*spot, spot] for puts and [spot, 1.5*spot]
// for calls (put |delta| increases with strike; call |delta| decreases
// with strike). Stops when the bracket width is below 0.01 or after 100
// iterations, returning the midpoint. A target outside the absolute deltas
// reachable inside the bracket (for example a put target above the
// at-the-money put delta) yields a strike at the nearer bracket end, whose
// delta does not equal the target.
func FindStrikeForDelta(targetAbsDelta, spot, t, r, vol float64, optType OptionType) float64 {
	var lo, hi float64
	if optType == OptionPut {
		lo, hi = 0.5*spot, spot
	} else {
		lo, hi = spot, 1.5*spot
	}

	absDeltaAt := func(k float64) float64 {
		return math.Abs(BSDelta(optType, spot, k, t, r, vol))
	}

	for i := 0; i < 100 && (hi-lo) >= 0.01; i++ {
		mid := (lo + hi) / 2
		d := absDeltaAt(mid)
		var increasing bool
		if optType == OptionPut {
			increasing = true // |delta| increases with strike
		} else {
			increasing = false // |delta| decreases with strike
		}
		if (increasing && d < targetAbsDelta) || (!increasing && d > targetAbsDelta) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
