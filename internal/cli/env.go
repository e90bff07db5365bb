package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-ytarticle/internal/article"
	"github.com/alnah/go-ytarticle/internal/config"
	"github.com/alnah/go-ytarticle/internal/pipeline"
	"github.com/alnah/go-ytarticle/internal/store"
	"github.com/alnah/go-ytarticle/internal/token"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time
	// Logger receives library diagnostics. Nil means slog.Default() at call time.
	Logger *slog.Logger

	// Factories for domain objects
	ConfigLoader    ConfigLoader
	SourceFactory   SourceFactory
	MeterFactory    MeterFactory
	RewriterFactory RewriterFactory
	TrendingFactory TrendingFactory
	HistoryOpener   HistoryOpener
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// CaptionSource fetches captions and lists their languages.
type CaptionSource interface {
	youtube.Source
	ListLanguages(ctx context.Context, videoID string) ([]string, error)
}

// SourceFactory creates caption sources.
type SourceFactory interface {
	NewSource(languages []string, logger *slog.Logger) CaptionSource
}

// MeterFactory creates token meters.
type MeterFactory interface {
	NewMeter(model string, pricing token.Pricing, logger *slog.Logger) pipeline.Meter
}

// RewriterFactory creates article rewriters.
type RewriterFactory interface {
	NewRewriter(p article.Provider, apiKey string, opts ...article.Option) (article.Rewriter, error)
}

// TrendingSearcher finds the most viewed videos on a topic.
type TrendingSearcher interface {
	Trending(ctx context.Context, q youtube.TrendingQuery) ([]youtube.Video, error)
}

// TrendingFactory creates trending searchers.
type TrendingFactory interface {
	NewTrending(apiKey string) (TrendingSearcher, error)
}

// History is the run history.
type History interface {
	Record(ctx context.Context, run store.Run) (int64, error)
	List(ctx context.Context, videoID string, limit int) ([]store.Run, error)
	Totals(ctx context.Context) (store.Totals, error)
	Close() error
}

// HistoryOpener opens the run history.
type HistoryOpener interface {
	Open(path string) (History, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the stdin reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = l
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithSourceFactory sets the caption source factory.
func WithSourceFactory(f SourceFactory) EnvOption {
	return func(e *Env) {
		e.SourceFactory = f
	}
}

// WithMeterFactory sets the token meter factory.
func WithMeterFactory(f MeterFactory) EnvOption {
	return func(e *Env) {
		e.MeterFactory = f
	}
}

// WithRewriterFactory sets the rewriter factory.
func WithRewriterFactory(f RewriterFactory) EnvOption {
	return func(e *Env) {
		e.RewriterFactory = f
	}
}

// WithTrendingFactory sets the trending searcher factory.
func WithTrendingFactory(f TrendingFactory) EnvOption {
	return func(e *Env) {
		e.TrendingFactory = f
	}
}

// WithHistoryOpener sets the run history opener.
func WithHistoryOpener(o HistoryOpener) EnvOption {
	return func(e *Env) {
		e.HistoryOpener = o
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Getenv:          os.Getenv,
		Now:             time.Now,
		ConfigLoader:    &defaultConfigLoader{},
		SourceFactory:   &defaultSourceFactory{},
		MeterFactory:    &defaultMeterFactory{},
		RewriterFactory: &defaultRewriterFactory{},
		TrendingFactory: &defaultTrendingFactory{},
		HistoryOpener:   &defaultHistoryOpener{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// logger returns the diagnostics logger.
func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultSourceFactory implements SourceFactory with the YouTube caption client.
type defaultSourceFactory struct{}

func (defaultSourceFactory) NewSource(languages []string, logger *slog.Logger) CaptionSource {
	return youtube.NewClient(youtube.WithLanguages(languages), youtube.WithLogger(logger))
}

// defaultMeterFactory implements MeterFactory with tiktoken.
type defaultMeterFactory struct{}

func (defaultMeterFactory) NewMeter(model string, pricing token.Pricing, logger *slog.Logger) pipeline.Meter {
	return token.NewMeter(token.WithModel(model), token.WithPricing(pricing), token.WithLogger(logger))
}

// defaultRewriterFactory implements RewriterFactory with go-openai.
type defaultRewriterFactory struct{}

func (defaultRewriterFactory) NewRewriter(p article.Provider, apiKey string, opts ...article.Option) (article.Rewriter, error) {
	r, err := article.New(p, apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// defaultTrendingFactory implements TrendingFactory with the YouTube Data API.
type defaultTrendingFactory struct{}

func (defaultTrendingFactory) NewTrending(apiKey string) (TrendingSearcher, error) {
	c, err := youtube.NewTrendingClient(apiKey)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// defaultHistoryOpener implements HistoryOpener with SQLite.
type defaultHistoryOpener struct{}

func (defaultHistoryOpener) Open(path string) (History, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*defaultConfigLoader)(nil)
	_ SourceFactory    = (*defaultSourceFactory)(nil)
	_ MeterFactory     = (*defaultMeterFactory)(nil)
	_ RewriterFactory  = (*defaultRewriterFactory)(nil)
	_ TrendingFactory  = (*defaultTrendingFactory)(nil)
	_ HistoryOpener    = (*defaultHistoryOpener)(nil)
	_ CaptionSource    = (*youtube.Client)(nil)
	_ TrendingSearcher = (*youtube.TrendingClient)(nil)
	_ History          = (*store.Store)(nil)
)
