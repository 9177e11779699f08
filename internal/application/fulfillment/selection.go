package fulfillment

import (
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// Strategy names a provider selection policy
type Strategy string

const (
	StrategyCost    Strategy = "cost"
	StrategySpeed   Strategy = "speed"
	StrategyQuality Strategy = "quality"
)

// IsValid returns true if the strategy is valid
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyCost, StrategySpeed, StrategyQuality:
		return true
	default:
		return false
	}
}

// String returns the string representation of Strategy
func (s Strategy) String() string {
	return string(s)
}

// Selector picks a provider quote according to a strategy. QualityRank is an
// ordered provider preference, best first, supplied by configuration.
type Selector struct {
	QualityRank []fulfillment.ProviderCode
}

// Select filters the fan-out results to usable quotes and applies the
// strategy. A quote is usable when the provider answered and every order item
// is available. Ties keep the earlier result, which preserves provider
// registration order.
func (sel *Selector) Select(results []QuoteResult, strategy Strategy) (*fulfillment.Quote, error) {
	if !strategy.IsValid() {
		return nil, fulfillment.ErrUnknownStrategy
	}

	var candidates []*fulfillment.Quote
	for _, r := range results {
		if r.Quote == nil || !r.Quote.AllItemsAvailable() {
			continue
		}
		candidates = append(candidates, r.Quote)
	}
	if len(candidates) == 0 {
		return nil, fulfillment.ErrNoEligibleProvider
	}

	best := candidates[0]
	for _, q := range candidates[1:] {
		if sel.better(q, best, strategy) {
			best = q
		}
	}
	return best, nil
}

func (sel *Selector) better(q, best *fulfillment.Quote, strategy Strategy) bool {
	switch strategy {
	case StrategyCost:
		return q.TotalCost.LessThan(best.TotalCost)
	case StrategySpeed:
		return q.ProductionDays < best.ProductionDays
	case StrategyQuality:
		return sel.qualityIndex(q.Provider) < sel.qualityIndex(best.Provider)
	default:
		return false
	}
}

// qualityIndex returns the position in the configured preference list.
// Providers absent from the list rank behind every listed one.
func (sel *Selector) qualityIndex(code fulfillment.ProviderCode) int {
	for i, c := range sel.QualityRank {
		if c == code {
			return i
		}
	}
	return len(sel.QualityRank)
}
