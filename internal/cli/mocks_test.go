package cli

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/alnah/go-ytarticle/internal/article"
	"github.com/alnah/go-ytarticle/internal/config"
	"github.com/alnah/go-ytarticle/internal/pipeline"
	"github.com/alnah/go-ytarticle/internal/store"
	"github.com/alnah/go-ytarticle/internal/token"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock SourceFactory + CaptionSource
// ---------------------------------------------------------------------------

type mockSourceFactory struct {
	mockSource *mockSource

	mu             sync.Mutex
	newSourceCalls [][]string // language preferences passed
}

func (m *mockSourceFactory) NewSource(languages []string, _ *slog.Logger) CaptionSource {
	m.mu.Lock()
	m.newSourceCalls = append(m.newSourceCalls, languages)
	m.mu.Unlock()

	if m.mockSource != nil {
		return m.mockSource
	}
	return &mockSource{}
}

func (m *mockSourceFactory) NewSourceCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.newSourceCalls...)
}

type mockSource struct {
	TranscribeFunc    func(ctx context.Context, videoID string) (youtube.Document, error)
	ListLanguagesFunc func(ctx context.Context, videoID string) ([]string, error)

	mu              sync.Mutex
	transcribeCalls []string
}

func (m *mockSource) Transcribe(ctx context.Context, videoID string) (youtube.Document, error) {
	m.mu.Lock()
	m.transcribeCalls = append(m.transcribeCalls, videoID)
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, videoID)
	}
	return youtube.Document{
		VideoID:   videoID,
		Languages: []string{"en"},
		Text:      "1 languages found for " + videoID + " :\nshort caption text",
		Available: true,
	}, nil
}

func (m *mockSource) ListLanguages(ctx context.Context, videoID string) ([]string, error) {
	if m.ListLanguagesFunc != nil {
		return m.ListLanguagesFunc(ctx, videoID)
	}
	return []string{"en"}, nil
}

func (m *mockSource) TranscribeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.transcribeCalls...)
}

// ---------------------------------------------------------------------------
// Mock MeterFactory + word meter
// ---------------------------------------------------------------------------

type meterCall struct {
	Model   string
	Pricing token.Pricing
}

type mockMeterFactory struct {
	mu            sync.Mutex
	newMeterCalls []meterCall
}

func (m *mockMeterFactory) NewMeter(model string, pricing token.Pricing, _ *slog.Logger) pipeline.Meter {
	m.mu.Lock()
	m.newMeterCalls = append(m.newMeterCalls, meterCall{Model: model, Pricing: pricing})
	m.mu.Unlock()

	return &wordMeter{pricing: pricing}
}

func (m *mockMeterFactory) NewMeterCalls() []meterCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]meterCall(nil), m.newMeterCalls...)
}

// wordMeter counts one token per whitespace-separated word.
type wordMeter struct {
	pricing token.Pricing
}

func (w *wordMeter) Count(text string) int { return len(strings.Fields(text)) }
func (w *wordMeter) Encoding() string { return "words" }
func (w *wordMeter) EstimateInputCost(n int) float64 { return w.pricing.InputCost(n) }
func (w *wordMeter) EstimateOutputCost(n int) float64 { return w.pricing.OutputCost(n) }

// ---------------------------------------------------------------------------
// Mock RewriterFactory + Rewriter
// ---------------------------------------------------------------------------

type rewriterCall struct {
	Provider article.Provider
	APIKey   string
	Opts     int // number of options passed
}

type mockRewriterFactory struct {
	NewRewriterErr error
	mockRewriter   *mockRewriter

	mu               sync.Mutex
	newRewriterCalls []rewriterCall
}

func (m *mockRewriterFactory) NewRewriter(p article.Provider, apiKey string, opts ...article.Option) (article.Rewriter, error) {
	m.mu.Lock()
	m.newRewriterCalls = append(m.newRewriterCalls, rewriterCall{Provider: p, APIKey: apiKey, Opts: len(opts)})
	m.mu.Unlock()

	if m.NewRewriterErr != nil {
		return nil, m.NewRewriterErr
	}
	if m.mockRewriter != nil {
		return m.mockRewriter, nil
	}
	return &mockRewriter{}, nil
}

func (m *mockRewriterFactory) NewRewriterCalls() []rewriterCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]rewriterCall(nil), m.newRewriterCalls...)
}

type mockRewriter struct {
	RewriteFunc func(ctx context.Context, text string) (string, error)

	mu           sync.Mutex
	rewriteCalls []string
}

func (m *mockRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.rewriteCalls = append(m.rewriteCalls, text)
	m.mu.Unlock()

	if m.RewriteFunc != nil {
		return m.RewriteFunc(ctx, text)
	}
	return "Headline\n\nArticle body.", nil
}

func (m *mockRewriter) RewriteCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.rewriteCalls...)
}

// ---------------------------------------------------------------------------
// Mock TrendingFactory + TrendingSearcher
// ---------------------------------------------------------------------------

type mockTrendingFactory struct {
	NewTrendingErr error
	mockSearcher   *mockTrendingSearcher

	mu     sync.Mutex
	apiKey string
}

func (m *mockTrendingFactory) NewTrending(apiKey string) (TrendingSearcher, error) {
	m.mu.Lock()
	m.apiKey = apiKey
	m.mu.Unlock()

	if m.NewTrendingErr != nil {
		return nil, m.NewTrendingErr
	}
	if m.mockSearcher != nil {
		return m.mockSearcher, nil
	}
	return &mockTrendingSearcher{}, nil
}

func (m *mockTrendingFactory) APIKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apiKey
}

type mockTrendingSearcher struct {
	Videos []youtube.Video
	Err    error

	mu      sync.Mutex
	queries []youtube.TrendingQuery
}

func (m *mockTrendingSearcher) Trending(_ context.Context, q youtube.TrendingQuery) ([]youtube.Video, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	return m.Videos, m.Err
}

func (m *mockTrendingSearcher) Queries() []youtube.TrendingQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]youtube.TrendingQuery(nil), m.queries...)
}

// ---------------------------------------------------------------------------
// Mock HistoryOpener + History
// ---------------------------------------------------------------------------

type mockHistoryOpener struct {
	OpenErr     error
	mockHistory *mockHistory

	mu        sync.Mutex
	openPaths []string
}

func (m *mockHistoryOpener) Open(path string) (History, error) {
	m.mu.Lock()
	m.openPaths = append(m.openPaths, path)
	m.mu.Unlock()

	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	if m.mockHistory != nil {
		return m.mockHistory, nil
	}
	return &mockHistory{}, nil
}

func (m *mockHistoryOpener) OpenPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.openPaths...)
}

type mockHistory struct {
	RecordErr error
	Runs      []store.Run // returned by List
	Sum       store.Totals

	mu        sync.Mutex
	recorded  []store.Run
	listCalls []string // video IDs passed to List
	closed    bool
}

func (m *mockHistory) Record(_ context.Context, run store.Run) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return 0, m.RecordErr
	}
	m.recorded = append(m.recorded, run)
	return int64(len(m.recorded)), nil
}

func (m *mockHistory) List(_ context.Context, videoID string, limit int) ([]store.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, videoID)
	if limit < len(m.Runs) {
		return m.Runs[:limit], nil
	}
	return m.Runs, nil
}

func (m *mockHistory) Totals(context.Context) (store.Totals, error) {
	return m.Sum, nil
}

func (m *mockHistory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockHistory) Recorded() []store.Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Run(nil), m.recorded...)
}

func (m *mockHistory) ListCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.listCalls...)
}

func (m *mockHistory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*mockConfigLoader)(nil)
	_ SourceFactory    = (*mockSourceFactory)(nil)
	_ CaptionSource    = (*mockSource)(nil)
	_ MeterFactory     = (*mockMeterFactory)(nil)
	_ RewriterFactory  = (*mockRewriterFactory)(nil)
	_ article.Rewriter = (*mockRewriter)(nil)
	_ TrendingFactory  = (*mockTrendingFactory)(nil)
	_ TrendingSearcher = (*mockTrendingSearcher)(nil)
	_ HistoryOpener    = (*mockHistoryOpener)(nil)
	_ History          = (*mockHistory)(nil)
)
