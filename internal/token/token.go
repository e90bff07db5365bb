// Package token counts tokens with an OpenAI-compatible BPE encoding and
// turns counts into cost estimates under a fixed linear pricing model.
//
// Counts are estimates: the encoding for the configured model is used when
// tiktoken knows it, otherwise cl100k_base, otherwise a character heuristic.
package token

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Defaults for gpt-4o-mini.
const (
	DefaultModel = "gpt-4o-mini"

	// FallbackEncoding is used when the model has no known encoding.
	FallbackEncoding = "cl100k_base"

	// heuristicCharsPerToken approximates English BPE density when no
	// encoding can be loaded at all (offline, no cached BPE file).
	heuristicCharsPerToken = 4
)

// Counter converts text to a token count.
type Counter interface {
	Count(text string) int
}

// Encoder is the subset of *tiktoken.Tiktoken used by Meter.
type Encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// Compile-time interface compliance checks.
var (
	_ Counter = (*Meter)(nil)
	_ Encoder = (*tiktoken.Tiktoken)(nil)
)

// encoderLoader resolves an encoder by model name or encoding name.
type encoderLoader func(name string) (Encoder, error)

// Meter counts tokens and estimates cost. The encoder is loaded lazily on
// first use and reused for the lifetime of the Meter; Count is safe for
// concurrent use.
type Meter struct {
	model    string
	pricing  Pricing
	logger   *slog.Logger
	forModel encoderLoader
	byName   encoderLoader
	once     sync.Once
	enc      Encoder
	encoding string
}

// Option configures a Meter.
type Option func(*Meter)

// WithModel sets the model whose encoding is used for counting.
func WithModel(model string) Option {
	return func(m *Meter) {
		if model != "" {
			m.model = model
		}
	}
}

// WithPricing sets the per-1K-token rates.
func WithPricing(p Pricing) Option {
	return func(m *Meter) {
		m.pricing = p
	}
}

// WithLogger sets the logger used for tokenizer fallback warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Meter) {
		if l != nil {
			m.logger = l
		}
	}
}

// withLoaders replaces the tiktoken loaders (for testing).
func withLoaders(forModel, byName encoderLoader) Option {
	return func(m *Meter) {
		m.forModel = forModel
		m.byName = byName
	}
}

// NewMeter creates a Meter for DefaultModel with DefaultPricing.
func NewMeter(opts ...Option) *Meter {
	m := &Meter{
		model:    DefaultModel,
		pricing:  DefaultPricing(),
		logger:   slog.Default(),
		forModel: tiktokenForModel,
		byName:   tiktokenByName,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Count returns the number of tokens in text. Empty text yields 0.
func (m *Meter) Count(text string) int {
	if text == "" {
		return 0
	}
	m.once.Do(m.load)
	if m.enc == nil {
		return (len(text) + heuristicCharsPerToken - 1) / heuristicCharsPerToken
	}
	return len(m.enc.Encode(text, nil, nil))
}

// Encoding reports which encoding backs Count: the model name, the fallback
// encoding name, or "heuristic".
func (m *Meter) Encoding() string {
	m.once.Do(m.load)
	return m.encoding
}


// EstimateInputCost returns the cost of sending n prompt tokens.
func (m *Meter) EstimateInputCost(n int) float64 {
	return m.pricing.InputCost(n)
}

// EstimateOutputCost returns the cost of receiving n completion tokens.
func (m *Meter) EstimateOutputCost(n int) float64 {
	return m.pricing.OutputCost(n)
}

// EstimateTotalCost returns input plus output cost.
func (m *Meter) EstimateTotalCost(inputTokens, outputTokens int) float64 {
	return m.EstimateInputCost(inputTokens) + m.EstimateOutputCost(outputTokens)
}

func (m *Meter) load() {
	enc, err := m.forModel(m.model)
	if err == nil {
		m.enc, m.encoding = enc, m.model
		return
	}
	m.logger.Warn("no tokenizer for model, using fallback encoding",
		slog.String("model", m.model),
		slog.String("encoding", FallbackEncoding),
		slog.Any("error", err))

	enc, err = m.byName(FallbackEncoding)
	if err == nil {
		m.enc, m.encoding = enc, FallbackEncoding
		return
	}
	m.logger.Warn("fallback encoding unavailable, estimating tokens from length",
		slog.String("encoding", FallbackEncoding),
		slog.Any("error", err))
	m.encoding = "heuristic"
}

// encoders caches tiktoken encoders process-wide; they are read-only in use
// and expensive to build.
var encoders sync.Map

func tiktokenForModel(model string) (Encoder, error) {
	if enc, ok := encoders.Load("model:" + model); ok {
		return enc.(Encoder), nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("encoding for model %q: %w", model, err)
	}
	encoders.Store("model:"+model, enc)
	return enc, nil
}

func tiktokenByName(name string) (Encoder, error) {
	if enc, ok := encoders.Load("name:" + name); ok {
		return enc.(Encoder), nil
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("get encoding %q: %w", name, err)
	}
	encoders.Store("name:"+name, enc)
	return enc, nil
}
