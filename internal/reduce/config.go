package reduce

import "fmt"

// Default reduction parameters.
const (
	DefaultMaxTokens          = 2000
	DefaultRetentionCap       = 0.3
	DefaultShrinkFactor       = 0.5
	DefaultRatioFloor         = 0.05
	DefaultFirstFallbackWords = 600
	DefaultFallbackWords      = 400
)

// Config holds the heuristics of the reduction loop.
type Config struct {
	// MaxTokens is the token budget the reduced text must fit.
	MaxTokens int

	// RetentionCap bounds the first-round ratio from above.
	RetentionCap float64

	// ShrinkFactor multiplies the ratio after each round over budget.
	ShrinkFactor float64

	// RatioFloor stops the loop once the ratio decays to it or below.
	RatioFloor float64

	// FirstFallbackWords is the word target of the first round when its
	// ratio summary comes back empty.
	FirstFallbackWords int

	// FallbackWords is the word target of every later round.
	FallbackWords int
}

// DefaultConfig returns the default reduction parameters.
func DefaultConfig() Config {
	return Config{
		MaxTokens:          DefaultMaxTokens,
		RetentionCap:       DefaultRetentionCap,
		ShrinkFactor:       DefaultShrinkFactor,
		RatioFloor:         DefaultRatioFloor,
		FirstFallbackWords: DefaultFirstFallbackWords,
		FallbackWords:      DefaultFallbackWords,
	}
}

// Validate checks every field and returns an error wrapping ErrInvalidConfig
// for the first one out of range.
func (c Config) Validate() error {
	switch {
	case c.MaxTokens <= 0:
		return fmt.Errorf("max tokens must be positive, got %d: %w", c.MaxTokens, ErrInvalidConfig)
	case c.RetentionCap <= 0 || c.RetentionCap > 1:
		return fmt.Errorf("retention cap must be in (0, 1], got %g: %w", c.RetentionCap, ErrInvalidConfig)
	case c.ShrinkFactor <= 0 || c.ShrinkFactor >= 1:
		return fmt.Errorf("shrink factor must be in (0, 1), got %g: %w", c.ShrinkFactor, ErrInvalidConfig)
	case c.RatioFloor <= 0 || c.RatioFloor >= 1:
		return fmt.Errorf("ratio floor must be in (0, 1), got %g: %w", c.RatioFloor, ErrInvalidConfig)
	case c.FirstFallbackWords <= 0 || c.FallbackWords <= 0:
		return fmt.Errorf("fallback words must be positive, got %d/%d: %w",
			c.FirstFallbackWords, c.FallbackWords, ErrInvalidConfig)
	}
	return nil
}

// InitialRatio returns the first-round ratio for a text of originalTokens:
// the budget share of the text, capped at RetentionCap.
func (c Config) InitialRatio(originalTokens int) float64 {
	if originalTokens <= 0 {
		return c.RetentionCap
	}
	return min(c.RetentionCap, float64(c.MaxTokens)/float64(originalTokens))
}

// MaxRounds returns the most rounds a reduction starting at initial can run:
// one first round plus one per halving while the ratio stays above the floor,
// that is 1 + ceil(log2(initial/floor)) for the default shrink factor.
func (c Config) MaxRounds(initial float64) int {
	rounds := 1
	for ratio := initial; ratio > c.RatioFloor; ratio *= c.ShrinkFactor {
		rounds++
	}
	return rounds
}
