package domain

import "math"

const dayFraction = 1.0 / 365.0

// PricePath is the output of GeneratePrices: a daily price series and, for
// the stochastic-volatility models, the instantaneous-vol series observed
// alongside it.
type PricePath struct {
	Prices []float64
	IVPath []float64 // nil for ModelGBM and ModelJump
}

// GeneratePrices draws a deterministic daily price path under params.Model,
// seeded by seed. All four models share one Rng stream; the draw order per
// step is fixed and documented on each branch below — changing it changes
// every downstream result for a given seed.
func GeneratePrices(params *MarketParams, seed uint64) *PricePath {
	rng := NewRng(seed)
	days := params.Days
	prices := make([]float64, days)
	prices[0] = params.StartPrice

	switch params.Model {
	case ModelHeston:
		iv := make([]float64, days)
		iv[0] = math.Sqrt(math.Max(params.Heston.V0, 0))
		v := params.Heston.V0
		for i := 1; i < days; i++ {
			v = hestonStep(rng, prices, i, params, v)
			iv[i] = math.Sqrt(math.Max(v, 0))
		}
		return &PricePath{Prices: prices, IVPath: iv}

	case ModelHestonJump:
		iv := make([]float64, days)
		iv[0] = math.Sqrt(math.Max(params.Heston.V0, 0))
		v := params.Heston.V0
		for i := 1; i < days; i++ {
			v = hestonJumpStep(rng, prices, i, params, v)
			iv[i] = math.Sqrt(math.Max(v, 0))
		}
		return &PricePath{Prices: prices, IVPath: iv}

	case ModelJump:
		for i := 1; i < days; i++ {
			jumpStep(rng, prices, i, params)
		}
		return &PricePath{Prices: prices, IVPath: nil}

	default: // ModelGBM
		for i := 1; i < days; i++ {
			gbmStep(rng, prices, i, params)
		}
		return &PricePath{Prices: prices, IVPath: nil}
	}
}

// gbmStep draws one normal Z and steps the price under plain GBM.
func gbmStep(rng *Rng, prices []float64, i int, params *MarketParams) {
	z := rng.NextNormal()
	mu, sigma := params.AnnualMu, params.AnnualVol
	prices[i] = prices[i-1] * math.Exp((mu-0.5*sigma*sigma)*dayFraction+sigma*math.Sqrt(dayFraction)*z)
}

// qeNextVariance runs one step of the Andersen quadratic-exponential
// scheme: draws one normal in the quadratic branch (psi <= 1.5) or one
// uniform in the exponential branch, and returns the clamped next
// variance.
func qeNextVariance(rng *Rng, v float64, h *HestonParams) float64 {
	expKappaDt := math.Exp(-h.Kappa * dayFraction)
	m := h.Theta + (v-h.Theta)*expKappaDt
	s2 := v*h.Xi*h.Xi*expKappaDt*(1-expKappaDt)/h.Kappa +
		h.Theta*h.Xi*h.Xi*(1-expKappaDt)*(1-expKappaDt)/(2*h.Kappa)

	var psi float64
	if m > 0 {
		psi = s2 / (m * m)
	} else {
		psi = math.Inf(1)
	}

	var vNext float64
	if psi <= 1.5 {
		invPsi := 2 / psi
		b2 := invPsi - 1 + math.Sqrt(invPsi*(invPsi-1))
		a := m / (1 + b2)
		z := rng.NextNormal()
		root := math.Sqrt(b2) + z
		vNext = a * root * root
	} else {
		p := (psi - 1) / (psi + 1)
		beta := (1 - p) / m
		u := rng.NextUniform()
		if u <= p {
			vNext = 0
		} else {
			vNext = math.Log((1-p)/(1-u)) / beta
		}
	}
	if vNext < 0 {
		vNext = 0
	}
	return vNext
}

// hestonStep draws the QE variance update then two price normals, steps
// the price, and returns the new variance.
func hestonStep(rng *Rng, prices []float64, i int, params *MarketParams, v float64) float64 {
	h := params.Heston
	vNext := qeNextVariance(rng, v, h)

	z1 := rng.NextNormal()
	z2 := rng.NextNormal()
	zs := h.Rho*z1 + math.Sqrt(1-h.Rho*h.Rho)*z2

	sigmaBar := math.Sqrt(math.Max((v+vNext)/2, 0))
	prices[i] = prices[i-1] * math.Exp((params.AnnualMu-0.5*sigmaBar*sigmaBar)*dayFraction+sigmaBar*math.Sqrt(dayFraction)*zs)
	return vNext
}

// jumpCompensator is the drift adjustment that keeps E[S_t] on track under
// the Merton compound-Poisson jump component.
func jumpCompensator(j *JumpParams) float64 {
	return j.Lambda * (math.Exp(j.MuJ+0.5*j.SigmaJ*j.SigmaJ) - 1)
}

// jumpStep draws the diffusion normal, the jump test, and (conditionally)
// the jump-size normal, and steps the price under jump-compensated GBM.
func jumpStep(rng *Rng, prices []float64, i int, params *MarketParams) {
	z := rng.NextNormal()
	j := params.Jump
	comp := jumpCompensator(j)
	mu, sigma := params.AnnualMu, params.AnnualVol
	logRet := (mu-0.5*sigma*sigma-comp)*dayFraction + sigma*math.Sqrt(dayFraction)*z

	u := rng.NextUniform()
	if u < j.Lambda*dayFraction {
		zj := rng.NextNormal()
		logRet += j.MuJ + j.SigmaJ*zj
	}
	prices[i] = prices[i-1] * math.Exp(logRet)
}

// hestonJumpStep runs a Heston QE step (without the price update it would
// normally apply) combined with the jump test, in the draw order: QE
// randoms, two price normals, jump uniform, optional jump normal.
func hestonJumpStep(rng *Rng, prices []float64, i int, params *MarketParams, v float64) float64 {
	h := params.Heston
	vNext := qeNextVariance(rng, v, h)

	z1 := rng.NextNormal()
	z2 := rng.NextNormal()
	zs := h.Rho*z1 + math.Sqrt(1-h.Rho*h.Rho)*z2

	sigmaBar := math.Sqrt(math.Max((v+vNext)/2, 0))
	j := params.Jump
	comp := jumpCompensator(j)
	logRet := (params.AnnualMu-0.5*sigmaBar*sigmaBar-comp)*dayFraction + sigmaBar*math.Sqrt(dayFraction)*zs

	u := rng.NextUniform()
	if u < j.Lambda*dayFraction {
		zj := rng.NextNormal()
		logRet += j.MuJ + j.SigmaJ*zj
	}
	prices[i] = prices[i-1] * math.Exp(logRet)
	return vNext
}
