package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ytdl "github.com/kkdai/youtube/v2"
	"golang.org/x/time/rate"

	"github.com/alnah/go-ytarticle/internal/apierr"
)

// Client defaults.
const (
	defaultHTTPTimeout  = 30 * time.Second
	defaultRequestRate  = 2 // requests per second
	defaultRequestBurst = 2

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	maxTimedTextSize = 4 * 1024 * 1024
)

// videoLoader reads video metadata and transcript panels.
// *ytdl.Client implements it.
type videoLoader interface {
	GetVideoContext(ctx context.Context, id string) (*ytdl.Video, error)
	GetTranscriptCtx(ctx context.Context, video *ytdl.Video, lang string) (ytdl.VideoTranscript, error)
}

// Compile-time interface compliance checks.
var (
	_ Source      = (*Client)(nil)
	_ videoLoader = (*ytdl.Client)(nil)
)

// Client fetches captions of YouTube videos.
// Requests are paced by a token bucket shared by every call on the Client.
type Client struct {
	httpClient *http.Client
	videos     videoLoader
	languages  []string
	limiter    *rate.Limiter
	retry      apierr.RetryConfig
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLanguages sets caption language preferences, most preferred first.
// Without preferences the first listed track is used.
func WithLanguages(codes []string) Option {
	return func(c *Client) {
		c.languages = codes
	}
}

// WithHTTPClient sets the HTTP client used for metadata and caption downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit sets the request pace. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithRetry sets the retry policy for transient HTTP failures.
func WithRetry(cfg apierr.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithLogger sets the logger used for degraded results.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// withVideoLoader replaces the YouTube metadata client (for testing).
func withVideoLoader(l videoLoader) Option {
	return func(c *Client) {
		c.videos = l
	}
}

// NewClient creates a caption Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestRate), defaultRequestBurst),
		retry:      apierr.DefaultRetryConfig,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.videos == nil {
		c.videos = &ytdl.Client{HTTPClient: c.httpClient}
	}
	return c
}

// Transcribe returns the merged captions of videoID.
// A video without usable captions yields the NoCaptionsText placeholder and
// a nil error. Blocked requests, network and HTTP failures are returned.
func (c *Client) Transcribe(ctx context.Context, videoID string) (Document, error) {
	video, tracks, err := c.tracks(ctx, videoID)
	if err != nil {
		return c.degrade(videoID, err)
	}

	track, merged, err := c.fetch(ctx, video, tracks)
	if err != nil {
		return c.degrade(videoID, err)
	}
	if strings.TrimSpace(merged) == "" {
		c.logger.Warn("caption track is empty, using placeholder",
			slog.String("video_id", videoID), slog.String("language", track.LanguageCode))
		return unavailableDocument(videoID), nil
	}

	langs := trackLanguages(tracks)
	return Document{
		VideoID:   videoID,
		Languages: langs,
		Language:  track.LanguageCode,
		Text:      fmt.Sprintf("%s languages found for %s :\n%s", strings.Join(langs, ", "), videoID, merged),
		Available: true,
	}, nil
}

// degrade turns source-unavailable errors into the placeholder Document.
func (c *Client) degrade(videoID string, err error) (Document, error) {
	if !IsSourceUnavailable(err) {
		return Document{}, err
	}
	c.logger.Warn("no transcript available, using placeholder",
		slog.String("video_id", videoID), slog.Any("error", err))
	return unavailableDocument(videoID), nil
}

// fetch downloads the preferred track. When every track URL needs a browser
// session, the same language is read from the transcript panel instead.
func (c *Client) fetch(ctx context.Context, video *ytdl.Video, tracks []CaptionTrack) (CaptionTrack, string, error) {
	if track, ok := pickTrack(tracks, c.languages); ok {
		body, err := c.get(ctx, track.BaseURL, maxTimedTextSize)
		if err != nil {
			return track, "", fmt.Errorf("fetch %s captions: %w", track.LanguageCode, err)
		}
		merged, err := parseTimedText(body)
		return track, merged, err
	}

	track := chooseTrack(tracks, c.languages)
	c.logger.Debug("caption URLs need a browser session, reading the transcript panel",
		slog.String("video_id", video.ID), slog.String("language", track.LanguageCode))
	segments, err := apierr.RetryWithBackoff(ctx, c.retryConfig(), func(ctx context.Context) (ytdl.VideoTranscript, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		segments, err := c.videos.GetTranscriptCtx(ctx, video, track.LanguageCode)
		if err != nil {
			return nil, classifyTranscriptError(video.ID, err)
		}
		return segments, nil
	}, nil)
	if err != nil {
		return track, "", err
	}
	return track, joinSegments(segments), nil
}

// Tracks lists the caption tracks of videoID in the order YouTube reports them.
// Returns ErrVideoUnavailable or ErrNoCaptions when the video offers nothing
// to fetch, and ErrBlocked when YouTube refuses to serve it.
func (c *Client) Tracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	_, tracks, err := c.tracks(ctx, videoID)
	return tracks, err
}

func (c *Client) tracks(ctx context.Context, videoID string) (*ytdl.Video, []CaptionTrack, error) {
	video, err := apierr.RetryWithBackoff(ctx, c.retryConfig(), func(ctx context.Context) (*ytdl.Video, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		video, err := c.videos.GetVideoContext(ctx, videoID)
		if err != nil {
			return nil, classifyVideoError(videoID, err)
		}
		return video, nil
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	tracks := captionTracks(video)
	if len(tracks) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", videoID, ErrNoCaptions)
	}
	return video, tracks, nil
}

// ListLanguages returns the caption language codes of videoID.
func (c *Client) ListLanguages(ctx context.Context, videoID string) ([]string, error) {
	tracks, err := c.Tracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return trackLanguages(tracks), nil
}

// retryConfig returns the retry policy with debug logging of each retry.
func (c *Client) retryConfig() apierr.RetryConfig {
	retry := c.retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.logger.Debug("retrying YouTube request",
			slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
	}
	return retry
}

// get fetches url after waiting for the limiter, retrying transient failures.
func (c *Client) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	return apierr.RetryWithBackoff(ctx, c.retryConfig(), func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.do(ctx, url, limit)
	}, nil)
}

func (c *Client) do(ctx context.Context, url string, limit int64) (_ []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
		}
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := string(body[:min(len(body), 256)])
		return nil, apierr.ClassifyResponse(resp, strings.TrimSpace(snippet), time.Now())
	}
	return body, nil
}
