// Package reduce shrinks text to a token budget through repeated extractive
// summarization.
//
// The Controller measures the text, and when it exceeds the budget runs a
// first summarization round at a ratio derived from the budget. Each later
// round multiplies the ratio by the shrink factor and summarizes the previous
// round's output, until the text fits or the ratio reaches the floor.
// Missing the budget is reported on the Result, never as an error.
package reduce

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alnah/go-ytarticle/internal/summarize"
	"github.com/alnah/go-ytarticle/internal/token"
)

// Attempt records one summarization round.
type Attempt struct {
	Round         int // 1-based
	Ratio         float64
	FallbackWords int
	Input         string
	Output        string
	OutputTokens  int
}

// Result is the outcome of a reduction.
type Result struct {
	Text           string
	Tokens         int
	OriginalTokens int
	InitialRatio   float64 // 0 when no round ran
	Rounds         int
	Converged      bool
	Attempts       []Attempt
}

// Reduction returns the fraction of tokens removed, in [0, 1].
func (r Result) Reduction() float64 {
	if r.OriginalTokens <= 0 || r.Tokens >= r.OriginalTokens {
		return 0
	}
	return 1 - float64(r.Tokens)/float64(r.OriginalTokens)
}

// Controller runs the reduction loop. It keeps no state between calls and
// can be shared by concurrent pipelines when its collaborators can.
type Controller struct {
	cfg           Config
	counter       token.Counter
	newSummarizer summarize.Factory
	onRound       func(Attempt)
	logger        *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig replaces the default reduction parameters.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithOnRound registers a hook called after every round.
func WithOnRound(fn func(Attempt)) Option {
	return func(c *Controller) {
		c.onRound = fn
	}
}

// WithLogger sets the logger for round diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Controller measuring with counter and building one
// summarizer per round with newSummarizer.
// Returns an error wrapping ErrInvalidConfig if the configuration is out of range.
func New(counter token.Counter, newSummarizer summarize.Factory, opts ...Option) (*Controller, error) {
	c := &Controller{
		cfg:           DefaultConfig(),
		counter:       counter,
		newSummarizer: newSummarizer,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if counter == nil || newSummarizer == nil {
		return nil, fmt.Errorf("counter and summarizer factory are required: %w", ErrInvalidConfig)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the reduction parameters in use.
func (c *Controller) Config() Config {
	return c.cfg
}

// Reduce shrinks text, whose token count is originalTokens, to the budget.
// Text already within budget is returned unchanged with zero rounds.
// The only errors come from ctx, checked before each round.
func (c *Controller) Reduce(ctx context.Context, text string, originalTokens int) (Result, error) {
	if originalTokens <= c.cfg.MaxTokens {
		return Result{
			Text:           text,
			Tokens:         originalTokens,
			OriginalTokens: originalTokens,
			Converged:      true,
		}, nil
	}

	initial := c.cfg.InitialRatio(originalTokens)
	var attempts []Attempt

	ratio := initial
	last, err := c.round(ctx, &attempts, text, ratio, c.cfg.FirstFallbackWords)
	if err != nil {
		return Result{}, err
	}

	for last.OutputTokens > c.cfg.MaxTokens && ratio > c.cfg.RatioFloor {
		ratio *= c.cfg.ShrinkFactor
		last, err = c.round(ctx, &attempts, last.Output, ratio, c.cfg.FallbackWords)
		if err != nil {
			return Result{}, err
		}
	}

	result := Result{
		Text:           last.Output,
		Tokens:         last.OutputTokens,
		OriginalTokens: originalTokens,
		InitialRatio:   initial,
		Rounds:         len(attempts),
		Converged:      last.OutputTokens <= c.cfg.MaxTokens,
		Attempts:       attempts,
	}
	if !result.Converged {
		c.logger.Warn("token budget not reached at ratio floor",
			slog.Int("tokens", result.Tokens),
			slog.Int("max_tokens", c.cfg.MaxTokens),
			slog.Int("rounds", result.Rounds),
			slog.Float64("ratio", ratio))
	}
	return result, nil
}

// round summarizes input once, measures the output and appends the attempt.
func (c *Controller) round(ctx context.Context, attempts *[]Attempt, input string, ratio float64, fallbackWords int) (Attempt, error) {
	if err := ctx.Err(); err != nil {
		return Attempt{}, fmt.Errorf("reduction interrupted after %d rounds: %w", len(*attempts), err)
	}

	output := c.newSummarizer(ratio, fallbackWords).Summarize(input)
	a := Attempt{
		Round:         len(*attempts) + 1,
		Ratio:         ratio,
		FallbackWords: fallbackWords,
		Input:         input,
		Output:        output,
		OutputTokens:  c.counter.Count(output),
	}
	*attempts = append(*attempts, a)

	c.logger.Debug("reduction round",
		slog.Int("round", a.Round),
		slog.Float64("ratio", a.Ratio),
		slog.Int("fallback_words", a.FallbackWords),
		slog.Int("tokens", a.OutputTokens))
	if c.onRound != nil {
		c.onRound(a)
	}
	return a, nil
}
