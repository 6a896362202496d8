package domain

import "sort"

// EvaluateRules sorts a copy of rules by ascending priority (stable on
// ties, preserving insertion order) and returns the first non-nil signal,
// or HOLD if every rule abstains.
func EvaluateRules(rules []Rule, market MarketSnapshot, portfolio PortfolioState, config *StrategyConfig) Signal {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	for _, rule := range ordered {
		if sig := rule.Evaluate(market, portfolio, config); sig != nil {
			return *sig
		}
	}
	return Signal{Kind: SignalHold}
}
