package token

// Default rates in USD per 1,000 tokens (gpt-4o-mini, Feb 2025).
const (
	DefaultInputPer1K  = 0.00015
	DefaultOutputPer1K = 0.00060
)

// Pricing is a linear cost model expressed per 1,000 tokens.
type Pricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// DefaultPricing returns the gpt-4o-mini rates.
func DefaultPricing() Pricing {
	return Pricing{InputPer1K: DefaultInputPer1K, OutputPer1K: DefaultOutputPer1K}
}

// InputCost returns the cost of n prompt tokens. Negative n counts as 0.
func (p Pricing) InputCost(n int) float64 {
	return perThousand(n) * p.InputPer1K
}

// OutputCost returns the cost of n completion tokens. Negative n counts as 0.
func (p Pricing) OutputCost(n int) float64 {
	return perThousand(n) * p.OutputPer1K
}

func perThousand(n int) float64 {
	if n < 0 {
		return 0
	}
	return float64(n) / 1000
}
