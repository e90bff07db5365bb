package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-ytarticle/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	source       *mockSourceFactory
	meter        *mockMeterFactory
	rewriter     *mockRewriterFactory
	trending     *mockTrendingFactory
	history      *mockHistoryOpener
}

func newTestMocks() *testMocks {
	return &testMocks{
		configLoader: &mockConfigLoader{},
		source:       &mockSourceFactory{mockSource: &mockSource{}},
		meter:        &mockMeterFactory{},
		rewriter:     &mockRewriterFactory{mockRewriter: &mockRewriter{}},
		trending:     &mockTrendingFactory{mockSearcher: &mockTrendingSearcher{}},
		history:      &mockHistoryOpener{mockHistory: &mockHistory{}},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testEnvOptions configures a test environment.
type testEnvOptions struct {
	stdin  io.Reader
	getenv func(string) string
	now    func() time.Time
	mocks  *testMocks
}

// testEnvOption configures testEnv.
type testEnvOption func(*testEnvOptions)

// withTestStdin sets the stdin content of the test Env.
func withTestStdin(s string) testEnvOption {
	return func(o *testEnvOptions) {
		o.stdin = strings.NewReader(s)
	}
}

// withTestGetenv sets the environment of the test Env.
func withTestGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) {
		o.getenv = fn
	}
}

// withTestConfig makes the config loader return cfg.
func withTestConfig(cfg config.Config) testEnvOption {
	return func(o *testEnvOptions) {
		o.mocks.configLoader.LoadFunc = func() (config.Config, error) { return cfg, nil }
	}
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env, its stdout and stderr buffers, and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *syncBuffer, *syncBuffer, *testMocks) {
	options := &testEnvOptions{
		stdin:  strings.NewReader(""),
		getenv: defaultTestEnv,
		now:    fixedTime(time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)),
		mocks:  newTestMocks(),
	}

	for _, opt := range opts {
		opt(options)
	}

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Env{
		Stdin:           options.stdin,
		Stdout:          stdout,
		Stderr:          stderr,
		Getenv:          options.getenv,
		Now:             options.now,
		Logger:          discardLogger(),
		ConfigLoader:    options.mocks.configLoader,
		SourceFactory:   options.mocks.source,
		MeterFactory:    options.mocks.meter,
		RewriterFactory: options.mocks.rewriter,
		TrendingFactory: options.mocks.trending,
		HistoryOpener:   options.mocks.history,
	}

	return env, stdout, stderr, options.mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns API keys for OpenAI, DeepSeek and the Data API.
func defaultTestEnv(key string) string {
	switch key {
	case "OPENAI_API_KEY":
		return "test-openai-key"
	case "DEEPSEEK_API_KEY":
		return "test-deepseek-key"
	case EnvYouTubeAPIKey:
		return "test-youtube-key"
	default:
		return ""
	}
}

// createTestTextFile writes content to a temporary file and returns its path.
func createTestTextFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// readFile returns the content of path, failing the test on error.
func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile(%q) unexpected error: %v", path, err)
	}
	return string(b)
}

// longText returns n distinct sentences, one token per word with wordMeter.
func longText(n int) string {
	topics := []string{"rivers", "mountains", "cities", "forests", "oceans", "deserts"}
	var b strings.Builder
	for i := range n {
		topic := topics[i%len(topics)]
		b.WriteString("The report about " + topic + " describes how " + topic +
			" change over many long years of careful study number " + string(rune('a'+i%26)) + ". ")
	}
	return b.String()
}

// discardLogger returns a logger that drops every record.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// executeCmd runs cmd with args and a background context.
func executeCmd(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}
