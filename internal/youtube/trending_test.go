package youtube_test

// Notes:
// - The Data API is served by httptest at the generated client's paths.
//   Multi-valued parameters may arrive repeated or comma-joined, so tests
//   compare them through joined().

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-ytarticle/internal/apierr"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

var fixedNow = time.Date(2026, 3, 10, 12, 30, 45, 500, time.UTC)

type dataAPI struct {
	mu       sync.Mutex
	searches []url.Values
	lookups  []url.Values
}

func (d *dataAPI) Search() url.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.searches[len(d.searches)-1]
}

func (d *dataAPI) Lookups() []url.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]url.Values(nil), d.lookups...)
}

func newDataAPI(t *testing.T, searchBody, videosBody string) (*httptest.Server, *dataAPI) {
	t.Helper()
	rec := &dataAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/youtube/v3/search":
			rec.searches = append(rec.searches, r.URL.Query())
			_, _ = fmt.Fprint(w, searchBody)
		case "/youtube/v3/videos":
			rec.lookups = append(rec.lookups, r.URL.Query())
			_, _ = fmt.Fprint(w, videosBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTrending(t *testing.T, srv *httptest.Server) *youtube.TrendingClient {
	t.Helper()
	c, err := youtube.NewTrendingClient("yt-key",
		youtube.WithDataAPIEndpoint(srv.URL),
		youtube.WithDataAPIHTTPClient(srv.Client()),
		youtube.WithDataAPIRetry(apierr.RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}),
		youtube.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return c
}

// joined returns the values of key as one comma-separated list.
func joined(q url.Values, key string) string {
	return strings.Join(q[key], ",")
}

const searchTwo = `{"items":[{"id":{"videoId":"aaaaaaaaaaa"}},{"id":{"kind":"channel"}},{"id":{"videoId":"bbbbbbbbbbb"}}]}`

const videosTwo = `{"items":[
 {"id":"aaaaaaaaaaa","snippet":{"title":"Less viewed","channelTitle":"A","publishedAt":"2026-03-10T08:00:00Z"},"statistics":{"viewCount":"1200"}},
 {"id":"bbbbbbbbbbb","snippet":{"title":"Most viewed","channelTitle":"B","publishedAt":"2026-03-09T20:00:00Z"},"statistics":{"viewCount":"98000"}}
]}`

func TestTrending(t *testing.T) {
	t.Parallel()

	srv, rec := newDataAPI(t, searchTwo, videosTwo)

	videos, err := newTrending(t, srv).Trending(context.Background(), youtube.TrendingQuery{
		Topic: "ritchie blackmore", Days: 2, Top: 5, Region: "gb",
	})
	require.NoError(t, err)

	require.Len(t, videos, 2)
	assert.Equal(t, "bbbbbbbbbbb", videos[0].ID)
	assert.Equal(t, int64(98000), videos[0].Views)
	assert.Equal(t, "Most viewed", videos[0].Title)
	assert.Equal(t, "B", videos[0].Channel)
	assert.Equal(t, "https://www.youtube.com/watch?v=bbbbbbbbbbb", videos[0].URL)
	assert.Equal(t, time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC), videos[0].PublishedAt)
	assert.Equal(t, "aaaaaaaaaaa", videos[1].ID)

	q := rec.Search()
	assert.Equal(t, "ritchie blackmore", q.Get("q"))
	assert.Equal(t, "viewCount", q.Get("order"))
	assert.Equal(t, "video", q.Get("type"))
	assert.Equal(t, "5", q.Get("maxResults"))
	assert.Equal(t, "GB", q.Get("regionCode"))
	assert.Equal(t, "2026-03-08T12:30:45Z", q.Get("publishedAfter"))
	assert.Equal(t, "id", joined(q, "part"))
	assert.Equal(t, "yt-key", q.Get("key"))

	lookups := rec.Lookups()
	require.Len(t, lookups, 1)
	assert.Equal(t, "aaaaaaaaaaa,bbbbbbbbbbb", joined(lookups[0], "id"))
	assert.Equal(t, "snippet,statistics", joined(lookups[0], "part"))
	assert.Equal(t, "yt-key", lookups[0].Get("key"))
}

func TestTrending_AllTimeAndDefaults(t *testing.T) {
	t.Parallel()

	srv, rec := newDataAPI(t, searchTwo, videosTwo)
	c := newTrending(t, srv)

	_, err := c.Trending(context.Background(), youtube.TrendingQuery{Topic: "go", AllTime: true, Top: 500})
	require.NoError(t, err)
	q := rec.Search()
	assert.Empty(t, q.Get("publishedAfter"))
	assert.Empty(t, q.Get("regionCode"))
	assert.Equal(t, "50", q.Get("maxResults"), "capped")

	_, err = c.Trending(context.Background(), youtube.TrendingQuery{Topic: "go"})
	require.NoError(t, err)
	q = rec.Search()
	assert.Equal(t, "10", q.Get("maxResults"))
	assert.Equal(t, "2026-03-09T12:30:45Z", q.Get("publishedAfter"), "one day back")
}

func TestTrending_NoResults(t *testing.T) {
	t.Parallel()

	srv, rec := newDataAPI(t, `{"items":[]}`, videosTwo)

	videos, err := newTrending(t, srv).Trending(context.Background(), youtube.TrendingQuery{Topic: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, videos)
	assert.Empty(t, rec.Lookups(), "no detail lookup without ids")
}

func TestTrending_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var searches, lookups atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/youtube/v3/search":
			if searches.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprint(w, `{"error":{"code":503,"message":"Backend Error"}}`)
				return
			}
			_, _ = fmt.Fprint(w, searchTwo)
		case "/youtube/v3/videos":
			if lookups.Add(1) == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = fmt.Fprint(w, `{"error":{"code":429,"message":"Too many requests"}}`)
				return
			}
			_, _ = fmt.Fprint(w, videosTwo)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	videos, err := newTrending(t, srv).Trending(context.Background(), youtube.TrendingQuery{Topic: "go"})
	require.NoError(t, err)

	assert.Len(t, videos, 2)
	assert.Equal(t, int32(2), searches.Load())
	assert.Equal(t, int32(2), lookups.Load())
}

func TestTrending_PersistentFailureIsReturned(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, `{"error":{"code":500,"message":"Backend Error"}}`)
	}))
	t.Cleanup(srv.Close)

	_, err := newTrending(t, srv).Trending(context.Background(), youtube.TrendingQuery{Topic: "go"})

	require.ErrorIs(t, err, apierr.ErrTimeout)
	assert.Equal(t, int32(3), calls.Load(), "two retries")
}

func TestTrending_Errors(t *testing.T) {
	t.Parallel()

	t.Run("quota", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = fmt.Fprint(w, `{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota."}}`)
		}))
		t.Cleanup(srv.Close)

		_, err := newTrending(t, srv).Trending(context.Background(), youtube.TrendingQuery{Topic: "go"})
		assert.ErrorIs(t, err, apierr.ErrQuotaExceeded)
		assert.Equal(t, int32(1), calls.Load(), "quota errors are not retried")
	})

	t.Run("bad key", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid."}}`)
		}))
		t.Cleanup(srv.Close)

		_, err := newTrending(t, srv).Trending(context.Background(), youtube.TrendingQuery{Topic: "go"})
		assert.ErrorIs(t, err, apierr.ErrBadRequest)
		assert.ErrorContains(t, err, "API key not valid")
	})

	t.Run("empty topic", func(t *testing.T) {
		t.Parallel()

		srv, _ := newDataAPI(t, searchTwo, videosTwo)
		_, err := newTrending(t, srv).Trending(context.Background(), youtube.TrendingQuery{Topic: "  "})
		assert.ErrorIs(t, err, apierr.ErrBadRequest)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		_, err := youtube.NewTrendingClient("")
		assert.ErrorIs(t, err, youtube.ErrMissingAPIKey)
	})
}
