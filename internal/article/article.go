// Package article rewrites reduced transcripts into articles through an
// OpenAI-compatible chat completion API.
package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-ytarticle/internal/apierr"
	"github.com/alnah/go-ytarticle/internal/lang"
	"github.com/alnah/go-ytarticle/internal/template"
)

// Rewriter turns plain text into an article in the same language.
type Rewriter interface {
	// Rewrite returns "" for empty or whitespace-only text without a remote call.
	Rewrite(ctx context.Context, text string) (string, error)
}

// chatCompleter is the subset of *openai.Client used here.
// It allows injecting mocks in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Rewriter      = (*ChatRewriter)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

// Default configuration values.
const (
	defaultTemperature = 0.4
	defaultCallTimeout = 2 * time.Minute
)

// ChatRewriter rewrites text with a single chat completion call.
// Transient failures (rate limits, timeouts, server errors) are retried with
// exponential backoff.
type ChatRewriter struct {
	client      chatCompleter
	model       string
	style       template.Name
	language    string
	temperature float32
	callTimeout time.Duration
	retry       apierr.RetryConfig
	logger      *slog.Logger
}

// Option configures a ChatRewriter.
type Option func(*ChatRewriter)

// WithModel sets the chat model. Empty keeps the default.
func WithModel(model string) Option {
	return func(r *ChatRewriter) {
		if model != "" {
			r.model = model
		}
	}
}

// WithStyle selects the article style.
func WithStyle(style template.Name) Option {
	return func(r *ChatRewriter) {
		if !style.IsZero() {
			r.style = style
		}
	}
}

// WithLanguage pins the article language to a caption language code.
// English and empty codes add no instruction.
func WithLanguage(code string) Option {
	return func(r *ChatRewriter) {
		r.language = code
	}
}

// WithCallTimeout bounds each completion request.
func WithCallTimeout(d time.Duration) Option {
	return func(r *ChatRewriter) {
		if d > 0 {
			r.callTimeout = d
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(r *ChatRewriter) {
		if n >= 0 {
			r.retry.MaxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) Option {
	return func(r *ChatRewriter) {
		if base > 0 {
			r.retry.BaseDelay = base
		}
		if max > 0 {
			r.retry.MaxDelay = max
		}
	}
}

// WithLogger sets the logger for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *ChatRewriter) {
		if l != nil {
			r.logger = l
		}
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(cc chatCompleter) Option {
	return func(r *ChatRewriter) {
		r.client = cc
	}
}

// NewChatRewriter creates a ChatRewriter on top of client.
func NewChatRewriter(client *openai.Client, opts ...Option) *ChatRewriter {
	r := &ChatRewriter{
		client:      client,
		model:       DefaultOpenAIModel,
		style:       template.Default,
		temperature: defaultTemperature,
		callTimeout: defaultCallTimeout,
		retry:       apierr.DefaultRetryConfig,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// New creates a ChatRewriter for a provider, using its default model unless
// WithModel overrides it.
func New(p Provider, apiKey string, opts ...Option) (*ChatRewriter, error) {
	client, err := NewClient(p, apiKey, "")
	if err != nil {
		return nil, err
	}
	return NewChatRewriter(client, append([]Option{WithModel(p.DefaultModel())}, opts...)...), nil
}

// Rewrite sends text to the model and returns the trimmed article.
func (r *ChatRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: r.systemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: template.UserPrompt(text),
			},
		},
		Temperature: r.temperature,
	}

	retry := r.retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		r.logger.Debug("retrying article rewrite",
			slog.Int("attempt", attempt), slog.String("model", r.model),
			slog.Duration("wait", wait), slog.Any("error", err))
	}
	return apierr.RetryWithBackoff(ctx, retry, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		defer cancel()

		resp, err := r.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			return "", classifyError(err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrEmptyResponse
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return "", ErrEmptyResponse
		}
		return content, nil
	}, apierr.IsRetryable)
}

// systemPrompt returns the style prompt, with a language line for
// non-English captions.
func (r *ChatRewriter) systemPrompt() string {
	prompt := r.style.Prompt()
	if r.language == "" || lang.BaseCode(r.language) == "en" {
		return prompt
	}
	return fmt.Sprintf("%s\n\nWrite the article in %s.", prompt, lang.DisplayName(r.language))
}

// classifyError maps go-openai errors to apierr sentinels.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if isContextLength(err.Error()) {
		return fmt.Errorf("provider rejected input: %w", ErrTextTooLong)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apierr.Classify(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return apierr.Classify(reqErr.HTTPStatusCode, msg)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}

func isContextLength(msg string) bool {
	return strings.Contains(msg, "context_length") ||
		strings.Contains(msg, "maximum context length")
}
