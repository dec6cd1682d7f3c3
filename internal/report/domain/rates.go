package report

import "sort"

// DepositTier prices first deposits for counts strictly below Bound.
type DepositTier struct {
	Bound int
	Rate  float64
}

// Rates holds every configurable constant the derivation engine consumes.
// Rates are configuration, never engine logic; each country may override any
// subset of the global defaults.
type Rates struct {
	// ChannelRates maps ad channel name to its agency commission rate.
	ChannelRates map[string]float64

	SettlementCommission float64
	BuyerRate            float64
	RepeatHandlerRate    float64

	// DepositTiers are checked in ascending Bound order; a first-deposit
	// count below a tier's bound uses that tier's per-deposit rate.
	DepositTiers []DepositTier
	// TopTierRate applies when the count reaches every bound.
	TopTierRate float64

	BonusThreshold    int
	BonusAmount       float64
	PayrollMultiplier float64

	// FixedDailyPay lists roles priced per day rather than per metric.
	FixedDailyPay map[string]float64

	// FallbackOwnRate is the supplied exchange rate used when the own-revenue
	// pair cannot infer one.
	FallbackOwnRate float64
}

// DefaultRates returns the global defaults.
func DefaultRates() Rates {
	return Rates{
		ChannelRates: map[string]float64{
			"facebook": 0.09,
			"google":   0.08,
			"tiktok":   0.08,
		},
		SettlementCommission: 0.15,
		BuyerRate:            0.12,
		RepeatHandlerRate:    0.04,
		DepositTiers: []DepositTier{
			{Bound: 5, Rate: 3},
			{Bound: 10, Rate: 4},
		},
		TopTierRate:       5,
		BonusThreshold:    5,
		BonusAmount:       15,
		PayrollMultiplier: 1.2,
		FixedDailyPay: map[string]float64{
			"teamlead": 10,
		},
	}
}

// TierRate selects the per-deposit rate for a first-deposit count. Bounds are
// exclusive: count 4 sits in the first tier, count 5 in the next.
func (r Rates) TierRate(count int) float64 {
	tiers := append([]DepositTier(nil), r.DepositTiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Bound < tiers[j].Bound })
	for _, tier := range tiers {
		if count < tier.Bound {
			return tier.Rate
		}
	}
	return r.TopTierRate
}

// FixedRolePay sums the configured fixed daily role amounts.
func (r Rates) FixedRolePay() float64 {
	var total float64
	for _, amount := range r.FixedDailyPay {
		total += amount
	}
	return total
}
