package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alnah/go-ytarticle/internal/format"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// HistoryCmd creates the history command (past runs and spending).
// The env parameter provides injectable dependencies for testing.
func HistoryCmd(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [video-id-or-url]",
		Short: "Show past article runs and estimated spending",
		Long: `Show the most recent article runs, newest first, with their token counts
and estimated cost, followed by totals over the whole history.

Runs are recorded by the article command unless --no-history is given.
The database lives in the config directory, or at the history-db setting.`,
		Example: `  ytarticle history
  ytarticle history --limit 5
  ytarticle history dQw4w9WgXcQ`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				parsed, err := youtube.ParseVideoID(args[0])
				if err != nil {
					return err
				}
				id = parsed
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d: %w", limit, ErrInvalidFlag)
			}
			return runHistory(cmd.Context(), env, id, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of runs to show")

	return cmd
}

// runHistory prints recorded runs and totals to stdout.
func runHistory(ctx context.Context, env *Env, videoID string, limit int) error {
	cfg := loadConfig(env)

	path, err := historyPath(cfg)
	if err != nil {
		return err
	}
	h, err := env.HistoryOpener.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open history: %w", err)
	}
	defer func() { _ = h.Close() }()

	runs, err := h.List(ctx, videoID, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(env.Stdout, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tVIDEO\tMODEL\tTOKENS\tSENT\tARTICLE\tCOST\tFILE")
	for _, r := range runs {
		sent := format.Count(int64(r.SentTokens))
		if !r.Converged {
			sent += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.VideoID, r.Model,
			format.Count(int64(r.OriginalTokens)), sent, format.Count(int64(r.ArticleTokens)),
			format.Cost(r.TotalCost), r.ArticlePath)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if videoID != "" {
		return nil
	}
	totals, err := h.Totals(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "\nTotal: %d runs, %s tokens sent, %s article tokens, estimated cost %s\n",
		totals.Runs, format.Count(totals.SentTokens), format.Count(totals.ArticleTokens), format.Cost(totals.TotalCost))
	return nil
}
