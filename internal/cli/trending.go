package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alnah/go-ytarticle/internal/format"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

// Trending flag bounds.
const (
	maxTrendingTop   = 50
	maxTrendingDays  = 365
	maxTitleColumn   = 60
	regionCodeLength = 2
)

// trendingOptions holds validated options for the trending command.
type trendingOptions struct {
	query youtube.TrendingQuery
	ids   bool
}

// TrendingCmd creates the trending command (most viewed videos on a topic).
// The env parameter provides injectable dependencies for testing.
func TrendingCmd(env *Env) *cobra.Command {
	var (
		days    int
		top     int
		region  string
		allTime bool
		idsOnly bool
	)

	cmd := &cobra.Command{
		Use:   "trending <topic>",
		Short: "Find the most viewed videos on a topic",
		Long: `Search YouTube for the most viewed videos on a topic, published in the
last --days days or at any time with --all-time, sorted by views.

Requires a YouTube Data API v3 key in YT_DATA_API_KEY.
With --ids, prints only video IDs so results can feed the article command.`,
		Example: `  ytarticle trending "rust programming"
  ytarticle trending golang --days 7 --top 5 --region US
  ytarticle trending "machine learning" --all-time
  ytarticle article $(ytarticle trending golang --top 3 --ids)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseTrendingOptions(strings.Join(args, " "), days, top, region, allTime, idsOnly)
			if err != nil {
				return err
			}
			return runTrending(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 1, "Look-back window in days (1-365)")
	cmd.Flags().IntVarP(&top, "top", "n", 10, "Number of videos (1-50)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "Region code (ISO 3166-1 alpha-2, e.g. US, FR)")
	cmd.Flags().BoolVar(&allTime, "all-time", false, "Ignore the publication date")
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "Print video IDs only, one per line")

	return cmd
}

// parseTrendingOptions validates and parses CLI inputs into trendingOptions.
func parseTrendingOptions(topic string, days, top int, region string, allTime, ids bool) (trendingOptions, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return trendingOptions{}, fmt.Errorf("topic is required: %w", ErrInvalidFlag)
	}
	if top < 1 || top > maxTrendingTop {
		return trendingOptions{}, fmt.Errorf("--top must be between 1 and %d, got %d: %w", maxTrendingTop, top, ErrInvalidFlag)
	}
	if !allTime && (days < 1 || days > maxTrendingDays) {
		return trendingOptions{}, fmt.Errorf("--days must be between 1 and %d, got %d: %w", maxTrendingDays, days, ErrInvalidFlag)
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region != "" && len(region) != regionCodeLength {
		return trendingOptions{}, fmt.Errorf("--region must be a two-letter country code, got %q: %w", region, ErrInvalidFlag)
	}

	return trendingOptions{
		query: youtube.TrendingQuery{
			Topic:   topic,
			Days:    days,
			Top:     top,
			Region:  region,
			AllTime: allTime,
		},
		ids: ids,
	}, nil
}

// runTrending searches and prints the most viewed videos.
func runTrending(ctx context.Context, env *Env, opts trendingOptions) error {
	apiKey := env.Getenv(EnvYouTubeAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%s: %w (set it with: export %s=...)", EnvYouTubeAPIKey, ErrAPIKeyMissing, EnvYouTubeAPIKey)
	}

	searcher, err := env.TrendingFactory.NewTrending(apiKey)
	if err != nil {
		return err
	}

	q := opts.query
	if !opts.ids {
		window := fmt.Sprintf("last %d days", q.Days)
		if q.AllTime {
			window = "all time"
		}
		fmt.Fprintf(env.Stderr, "Searching most viewed videos on %q (%s)...\n", q.Topic, window)
	}

	videos, err := searcher.Trending(ctx, q)
	if err != nil {
		return err
	}

	if opts.ids {
		for _, v := range videos {
			fmt.Fprintln(env.Stdout, v.ID)
		}
		return nil
	}

	if len(videos) == 0 {
		fmt.Fprintln(env.Stderr, "No videos found.")
		return nil
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVIEWS\tPUBLISHED\tCHANNEL\tTITLE\tURL")
	for i, v := range videos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, format.Count(v.Views), v.PublishedAt.Format("2006-01-02"),
			v.Channel, truncate(v.Title, maxTitleColumn), v.URL)
	}
	return tw.Flush()
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
