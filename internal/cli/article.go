package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-ytarticle/internal/article"
	"github.com/alnah/go-ytarticle/internal/config"
	"github.com/alnah/go-ytarticle/internal/format"
	"github.com/alnah/go-ytarticle/internal/interrupt"
	"github.com/alnah/go-ytarticle/internal/lang"
	"github.com/alnah/go-ytarticle/internal/pipeline"
	"github.com/alnah/go-ytarticle/internal/reduce"
	"github.com/alnah/go-ytarticle/internal/store"
	"github.com/alnah/go-ytarticle/internal/template"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

// articleFlags holds raw flag values of the article command.
type articleFlags struct {
	outputDir   string
	provider    string
	model       string
	style       string
	languages   string
	articleLang string
	maxTokens   int
	parallel    int
	force       bool
	noHistory   bool
}

// articleOptions holds validated options for the article command.
// Zero values defer to the config file, then to built-in defaults.
type articleOptions struct {
	videoIDs    []string
	outputDir   string
	provider    string // validated, "" = config or default
	model       string
	style       string // validated, "" = config or default
	languages   string // validated, "" = config
	articleLang string
	maxTokens   int
	parallel    int
	force       bool
	noHistory   bool
}

// ArticleCmd creates the article command (video captions -> article).
// The env parameter provides injectable dependencies for testing.
func ArticleCmd(env *Env) *cobra.Command {
	var f articleFlags

	cmd := &cobra.Command{
		Use:   "article <video-id-or-url>...",
		Short: "Turn YouTube videos into articles",
		Long: `Fetch the captions of one or more YouTube videos and rewrite them as articles.

Captions over the token budget (max-tokens, default 2000) are first shortened
with extractive summarization, so the cost of the rewrite stays bounded.
Each video produces <id>_transcript.txt and <id>_article.txt in the output
directory. Existing files are never overwritten unless --force is given.

Rewriting uses OpenAI by default, or DeepSeek with --provider deepseek.`,
		Example: `  ytarticle article dQw4w9WgXcQ
  ytarticle article https://youtu.be/dQw4w9WgXcQ -o ~/articles --style blog
  ytarticle article id1 id2 id3 --parallel 3
  ytarticle article dQw4w9WgXcQ --lang fr,en --provider deepseek`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseArticleOptions(args, f)
			if err != nil {
				return err
			}
			return runArticle(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for transcript and article files (default: config output-dir or cwd)")
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider: openai, deepseek (default: config or openai)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Chat model (default: provider's model)")
	cmd.Flags().StringVarP(&f.style, "style", "s", "", "Article style: news, brief, blog (default: config or news)")
	cmd.Flags().StringVarP(&f.languages, "lang", "l", "", "Preferred caption languages, comma-separated (e.g. en,fr)")
	cmd.Flags().StringVar(&f.articleLang, "article-lang", "", "Write the article in this language (ISO 639-1 code)")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "Token budget of the text sent for rewriting (default: config or 2000)")
	cmd.Flags().IntVarP(&f.parallel, "parallel", "p", 1, "Videos processed concurrently (1-5)")
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Overwrite existing output files")
	cmd.Flags().BoolVar(&f.noHistory, "no-history", false, "Do not record the run in the history database")

	return cmd
}

// parseArticleOptions validates and parses CLI inputs into articleOptions.
// All parsing happens at the CLI boundary.
func parseArticleOptions(args []string, f articleFlags) (articleOptions, error) {
	ids := make([]string, 0, len(args))
	seen := make(map[string]bool, len(args))
	for _, arg := range args {
		id, err := youtube.ParseVideoID(arg)
		if err != nil {
			return articleOptions{}, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if f.provider != "" {
		if _, err := article.ParseProvider(f.provider); err != nil {
			return articleOptions{}, err
		}
	}
	if f.style != "" {
		if _, err := template.ParseName(f.style); err != nil {
			return articleOptions{}, err
		}
	}
	if _, err := lang.ParseList(f.languages); err != nil {
		return articleOptions{}, err
	}
	if err := lang.Validate(f.articleLang); err != nil {
		return articleOptions{}, err
	}
	if f.maxTokens < 0 {
		return articleOptions{}, fmt.Errorf("--max-tokens must be positive, got %d: %w", f.maxTokens, ErrInvalidFlag)
	}

	return articleOptions{
		videoIDs:    ids,
		outputDir:   f.outputDir,
		provider:    f.provider,
		model:       f.model,
		style:       f.style,
		languages:   f.languages,
		articleLang: f.articleLang,
		maxTokens:   f.maxTokens,
		parallel:    clampParallel(f.parallel),
		force:       f.force,
		noHistory:   f.noHistory,
	}, nil
}

// articleRun holds everything shared by the pipelines of one invocation.
type articleRun struct {
	env      *Env
	source   youtube.Source
	meter    pipeline.Meter
	rewriter article.Rewriter
	writer   pipeline.ArtifactWriter
	recorder pipeline.Recorder
	reduce   reduce.Config
	prefs    []string
	out      *progress
	batch    bool
}

// runArticle executes the article command with validated options.
// Validation order: config -> provider -> API key -> style -> languages ->
// budget -> output dir.
func runArticle(ctx context.Context, env *Env, opts articleOptions) error {
	// === VALIDATION (fail-fast) ===

	cfg := loadConfig(env)

	provider, err := resolveProvider(opts.provider, cfg.Provider)
	if err != nil {
		return err
	}
	apiKey, err := providerAPIKey(env, provider)
	if err != nil {
		return err
	}

	styleName := opts.style
	if styleName == "" {
		styleName = cfg.Style
	}
	style, err := template.ParseName(styleName)
	if err != nil {
		return err
	}

	prefs, err := captionLanguages(opts.languages, cfg)
	if err != nil {
		return err
	}

	rc, err := reduceConfig(cfg, opts.maxTokens)
	if err != nil {
		return err
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	if outputDir != "" {
		outputDir = config.ExpandPath(outputDir)
		if err := config.EnsureOutputDir(outputDir); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
	}

	model := opts.model
	if model == "" {
		model = cfg.Model
	}
	if model == "" {
		model = provider.DefaultModel()
	}

	// === COLLABORATORS ===

	logger := env.logger()
	rewriterOpts := []article.Option{
		article.WithModel(model),
		article.WithStyle(style),
		article.WithLanguage(opts.articleLang),
		article.WithLogger(logger),
	}
	if cfg.RewriteTimeout > 0 {
		rewriterOpts = append(rewriterOpts, article.WithCallTimeout(cfg.RewriteTimeout))
	}
	if cfg.MaxRetries > 0 {
		rewriterOpts = append(rewriterOpts, article.WithMaxRetries(cfg.MaxRetries))
	}
	rewriter, err := env.RewriterFactory.NewRewriter(provider, apiKey, rewriterOpts...)
	if err != nil {
		return err
	}

	run := &articleRun{
		env:      env,
		source:   env.SourceFactory.NewSource(prefs, logger),
		meter:    env.MeterFactory.NewMeter(model, pricing(cfg), logger),
		rewriter: rewriter,
		writer:   pipeline.NewFileWriter(outputDir, opts.force),
		reduce:   rc,
		prefs:    prefs,
		out:      newProgress(env.Stderr),
		batch:    len(opts.videoIDs) > 1,
	}

	if !opts.noHistory {
		if h := openHistory(env, cfg); h != nil {
			defer func() { _ = h.Close() }()
			run.recorder = &historyRecorder{
				history:  h,
				provider: string(provider),
				model:    model,
				now:      env.Now,
				out:      run.out,
			}
		}
	}

	fmt.Fprintf(env.Stderr, "Rewriting with %s (%s, style: %s, budget: %s)\n",
		provider, model, style, format.Tokens(rc.MaxTokens))

	// === RUN ===

	return run.all(ctx, opts.videoIDs, opts.parallel)
}

// all runs every video, at most parallel at a time. A failed video does not
// stop the others; failures are joined in the returned error. In a batch,
// the first Ctrl+C lets the videos in progress finish and skips the rest.
func (r *articleRun) all(ctx context.Context, ids []string, parallel int) error {
	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures []error
		reports  []pipeline.Report
		drain    <-chan struct{}
	)
	g.SetLimit(parallel)
	if r.batch {
		drain = interrupt.Drain(ctx)
	}

	for _, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil || interrupt.Requested(drain) {
				return nil
			}
			report, err := r.one(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return nil
			}
			reports = append(reports, report)
			return nil
		})
	}
	_ = g.Wait()

	if r.batch {
		r.printSummary(len(ids), reports, failures)
	}
	if done := len(reports) + len(failures); done < len(ids) {
		if err := ctx.Err(); err != nil {
			failures = append(failures, fmt.Errorf("batch interrupted: %w", err))
		} else if interrupt.Requested(drain) {
			failures = append(failures, fmt.Errorf("batch stopped, %d of %d videos not started: %w",
				len(ids)-done, len(ids), interrupt.ErrStopped))
		}
	}
	return errors.Join(failures...)
}

// one runs the pipeline for a single video.
func (r *articleRun) one(ctx context.Context, id string) (pipeline.Report, error) {
	prefix := prefixFor(r.batch, id)
	logger := r.env.logger().With(slog.String("video", id))

	reducerFor := func(language string) (pipeline.Reducer, error) {
		return reduce.New(r.meter, summarizerFactory(r.env, language),
			reduce.WithConfig(r.reduce),
			reduce.WithOnRound(r.out.onRound(prefix)),
			reduce.WithLogger(logger))
	}
	controller, err := reducerFor(firstLanguage(r.prefs))
	if err != nil {
		return pipeline.Report{}, err
	}

	opts := []pipeline.Option{
		pipeline.WithReducerFor(reducerFor),
		pipeline.WithOnStage(r.out.onStage(r.batch)),
		pipeline.WithLogger(logger),
		pipeline.WithClock(r.env.Now),
	}
	if r.recorder != nil {
		opts = append(opts, pipeline.WithRecorder(r.recorder))
	}

	p, err := pipeline.New(r.source, r.meter, controller, r.rewriter, r.writer, opts...)
	if err != nil {
		return pipeline.Report{}, err
	}

	report, err := p.Run(ctx, id)
	if err != nil {
		r.out.printf(prefix, "Error: %v", err)
		return pipeline.Report{}, err
	}
	r.out.printReport(prefix, report)
	return report, nil
}

// printSummary writes the batch totals.
func (r *articleRun) printSummary(total int, reports []pipeline.Report, failures []error) {
	var cost float64
	for _, rep := range reports {
		cost += rep.TotalCost
	}
	r.out.printf("", "Batch: %d/%d articles written, %d failed, estimated cost %s",
		len(reports), total, len(failures), format.Cost(cost))
}

// openHistory opens the run history. Failures are printed as a warning and
// the run continues without history.
func openHistory(env *Env, cfg config.Config) History {
	path, err := historyPath(cfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: %v\n", err)
		return nil
	}
	h, err := env.HistoryOpener.Open(path)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: history disabled: %v\n", err)
		return nil
	}
	return h
}

// historyRecorder stores pipeline reports as history runs.
type historyRecorder struct {
	history  History
	provider string
	model    string
	now      func() time.Time
	out      *progress
}

// Compile-time interface compliance check.
var _ pipeline.Recorder = (*historyRecorder)(nil)

func (h *historyRecorder) Record(ctx context.Context, r pipeline.Report) error {
	run := store.Run{
		VideoID:        r.VideoID,
		Provider:       h.provider,
		Model:          h.model,
		Captions:       r.Captions,
		OriginalTokens: r.OriginalTokens,
		SentTokens:     r.SentTokens,
		ArticleTokens:  r.ArticleTokens,
		Rounds:         r.Rounds,
		Converged:      r.Converged,
		InputCost:      r.InputCost,
		OutputCost:     r.OutputCost,
		TotalCost:      r.TotalCost,
		ArticlePath:    r.ArticlePath,
		Elapsed:        r.Elapsed,
	}
	if h.now != nil {
		run.CreatedAt = h.now()
	}
	if _, err := h.history.Record(ctx, run); err != nil {
		if h.out != nil {
			h.out.printf("", "Warning: failed to record %s in history: %v", r.VideoID, err)
		}
		return err
	}
	return nil
}
