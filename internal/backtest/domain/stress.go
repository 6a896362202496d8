package domain

// StressedSummary pairs one parallel spot shock with the RunSummary that
// results from re-simulating the same historical path scaled by it.
type StressedSummary struct {
	Shock   float64
	Summary RunSummary
}

// StressSweep re-runs Simulate once per shock in shocks, against the same
// price (and, if present, vol) path scaled by (1+shock) at every point. It
// calls the unmodified Simulate entrypoint N times and changes no
// semantics of the core pipeline.
func StressSweep(prices []float64, ivPath []float64, rules []Rule, config *StrategyConfig, executor Executor, shocks []float64) []StressedSummary {
	out := make([]StressedSummary, len(shocks))
	for i, shock := range shocks {
		shocked := make([]float64, len(prices))
		for j, p := range prices {
			shocked[j] = p * (1 + shock)
		}
		sim := Simulate(shocked, ivPath, rules, config, executor)
		out[i] = StressedSummary{Shock: shock, Summary: computeRunSummary(shocked, sim, config)}
	}
	return out
}
