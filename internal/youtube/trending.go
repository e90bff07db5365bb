package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	gtransport "google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	dataapi "google.golang.org/api/youtube/v3"

	"github.com/alnah/go-ytarticle/internal/apierr"
)

// Data API defaults.
const (
	defaultTrendingDays = 1
	defaultTrendingTop  = 10
	maxTrendingTop      = 50
)

// Video is a search result with its view count.
type Video struct {
	ID          string
	Title       string
	Channel     string
	Views       int64
	PublishedAt time.Time
	URL         string
}

// TrendingQuery selects the most viewed videos on a topic.
type TrendingQuery struct {
	Topic   string
	Days    int    // look-back window; ignored when AllTime
	Top     int    // number of results, 1..50
	Region  string // ISO 3166-1 alpha-2, optional
	AllTime bool
}

// TrendingClient queries the YouTube Data API v3.
type TrendingClient struct {
	service    *dataapi.Service
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      apierr.RetryConfig
	logger     *slog.Logger
	now        func() time.Time
}

// TrendingOption configures a TrendingClient.
type TrendingOption func(*TrendingClient)

// WithDataAPIEndpoint overrides the Data API root URL (for testing).
func WithDataAPIEndpoint(u string) TrendingOption {
	return func(c *TrendingClient) {
		c.endpoint = strings.TrimSuffix(u, "/") + "/"
	}
}

// WithDataAPIHTTPClient sets the HTTP client the API key is attached to.
func WithDataAPIHTTPClient(hc *http.Client) TrendingOption {
	return func(c *TrendingClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithDataAPIRetry sets the retry policy for transient API failures.
func WithDataAPIRetry(cfg apierr.RetryConfig) TrendingOption {
	return func(c *TrendingClient) {
		c.retry = cfg
	}
}

// withClock sets the time source (for testing).
func withClock(now func() time.Time) TrendingOption {
	return func(c *TrendingClient) {
		c.now = now
	}
}

// NewTrendingClient creates a Data API client. apiKey is required.
func NewTrendingClient(apiKey string, opts ...TrendingOption) (*TrendingClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &TrendingClient{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestRate), defaultRequestBurst),
		retry:      apierr.DefaultRetryConfig,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	// A custom HTTP client bypasses the library's credential handling, so
	// the key is attached by the transport.
	keyed := *c.httpClient
	base := keyed.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	keyed.Transport = &gtransport.APIKey{Key: apiKey, Transport: base}

	serviceOpts := []option.ClientOption{option.WithHTTPClient(&keyed)}
	if c.endpoint != "" {
		serviceOpts = append(serviceOpts, option.WithEndpoint(c.endpoint))
	}
	service, err := dataapi.NewService(context.Background(), serviceOpts...)
	if err != nil {
		return nil, fmt.Errorf("create Data API client: %w", err)
	}
	c.service = service
	return c, nil
}

// Trending returns the most viewed videos matching q, sorted by views descending.
func (c *TrendingClient) Trending(ctx context.Context, q TrendingQuery) ([]Video, error) {
	if strings.TrimSpace(q.Topic) == "" {
		return nil, fmt.Errorf("topic is required: %w", apierr.ErrBadRequest)
	}
	top := q.Top
	if top <= 0 {
		top = defaultTrendingTop
	}
	top = min(top, maxTrendingTop)

	search := c.service.Search.List([]string{"id"}).
		Q(q.Topic).
		Type("video").
		Order("viewCount").
		MaxResults(int64(top))
	if q.Region != "" {
		search = search.RegionCode(strings.ToUpper(q.Region))
	}
	if !q.AllTime {
		days := q.Days
		if days <= 0 {
			days = defaultTrendingDays
		}
		after := c.now().UTC().AddDate(0, 0, -days).Truncate(time.Second)
		search = search.PublishedAfter(after.Format(time.RFC3339))
	}

	found, err := call(ctx, c, func(ctx context.Context) (*dataapi.SearchListResponse, error) {
		return search.Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Topic, err)
	}

	ids := make([]string, 0, len(found.Items))
	for _, item := range found.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.videos(ctx, ids)
}

// videos fetches snippet and statistics for ids.
func (c *TrendingClient) videos(ctx context.Context, ids []string) ([]Video, error) {
	list := c.service.Videos.List([]string{"snippet", "statistics"}).Id(ids...)
	resp, err := call(ctx, c, func(ctx context.Context) (*dataapi.VideoListResponse, error) {
		return list.Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("video details: %w", err)
	}

	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		v := Video{ID: item.Id, URL: WatchURL(item.Id)}
		if s := item.Snippet; s != nil {
			v.Title = s.Title
			v.Channel = s.ChannelTitle
			v.PublishedAt, _ = time.Parse(time.RFC3339, s.PublishedAt)
		}
		if st := item.Statistics; st != nil {
			v.Views = int64(st.ViewCount)
		}
		videos = append(videos, v)
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].Views > videos[j].Views
	})
	return videos, nil
}

// call runs one Data API request after waiting for the limiter, retrying
// transient failures. API errors are mapped to apierr sentinels.
func call[T any](ctx context.Context, c *TrendingClient, do func(context.Context) (T, error)) (T, error) {
	retry := c.retry
	retry.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.logger.Debug("retrying Data API request",
			slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
	}
	return apierr.RetryWithBackoff(ctx, retry, func(ctx context.Context) (T, error) {
		var zero T
		if err := c.limiter.Wait(ctx); err != nil {
			return zero, err
		}
		out, err := do(ctx)
		if err != nil {
			return zero, classifyDataAPIError(err, c.now())
		}
		return out, nil
	}, nil)
}

// classifyDataAPIError maps a Data API failure to the apierr sentinels,
// keeping any Retry-After hint.
func classifyDataAPIError(err error, now time.Time) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
		}
		return err
	}
	resp := &http.Response{
		StatusCode: apiErr.Code,
		Status:     fmt.Sprintf("%d %s", apiErr.Code, http.StatusText(apiErr.Code)),
		Header:     apiErr.Header,
	}
	return apierr.ClassifyResponse(resp, apiErr.Message, now)
}
