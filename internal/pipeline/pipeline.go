// Package pipeline turns one video into an article.
//
// A run fetches the captions, counts their tokens, reduces them to the token
// budget when needed, rewrites the result as an article and saves both the
// transcript and the article. Costs are estimated from the token count of
// the text actually sent to the rewriter.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-ytarticle/internal/article"
	"github.com/alnah/go-ytarticle/internal/reduce"
	"github.com/alnah/go-ytarticle/internal/token"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

// Stage names a step of a run, reported through WithOnStage.
type Stage string

// Run stages, in order.
const (
	StageFetch   Stage = "fetch"
	StageCount   Stage = "count"
	StageReduce  Stage = "reduce"
	StageRewrite Stage = "rewrite"
	StageSave    Stage = "save"
)

// Meter counts tokens and prices them.
type Meter interface {
	token.Counter
	EstimateInputCost(tokens int) float64
	EstimateOutputCost(tokens int) float64
}

// Reducer shrinks text to the token budget.
type Reducer interface {
	Reduce(ctx context.Context, text string, originalTokens int) (reduce.Result, error)
}

// Recorder receives the report of every successful run.
type Recorder interface {
	Record(ctx context.Context, r Report) error
}

// Compile-time interface compliance checks.
var (
	_ Meter   = (*token.Meter)(nil)
	_ Reducer = (*reduce.Controller)(nil)
)

// Report summarizes one run.
type Report struct {
	VideoID        string
	Languages      []string
	Captions       bool // false when the placeholder text was used
	OriginalTokens int
	SentTokens     int // tokens of the text sent to the rewriter
	ArticleTokens  int
	Rounds         int
	Converged      bool
	Reduction      float64 // fraction of tokens removed before rewriting
	InputCost      float64
	OutputCost     float64
	TotalCost      float64
	TranscriptPath string
	ArticlePath    string
	Elapsed        time.Duration
}

// Pipeline sequences one run. It keeps no per-run state, so a Pipeline can
// serve concurrent runs when its collaborators can.
type Pipeline struct {
	source   youtube.Source
	meter    Meter
	reducer  Reducer
	reducers func(language string) (Reducer, error)
	rewriter article.Rewriter
	writer   ArtifactWriter
	recorder Recorder
	onStage  func(videoID string, stage Stage)
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder stores every successful run report.
// Recording failures are logged, not returned.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithReducerFor builds the reducer for the language of the fetched captions.
// The reducer given to New is used when the language is unknown, as for the
// placeholder text.
func WithReducerFor(fn func(language string) (Reducer, error)) Option {
	return func(p *Pipeline) {
		p.reducers = fn
	}
}

// WithOnStage sets a callback invoked when a run enters a stage.
func WithOnStage(fn func(videoID string, stage Stage)) Option {
	return func(p *Pipeline) {
		p.onStage = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the time source used for Report.Elapsed.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Pipeline. Every collaborator is required.
func New(source youtube.Source, meter Meter, reducer Reducer, rewriter article.Rewriter, writer ArtifactWriter, opts ...Option) (*Pipeline, error) {
	switch {
	case source == nil:
		return nil, fmt.Errorf("source: %w", ErrMissingCollaborator)
	case meter == nil:
		return nil, fmt.Errorf("meter: %w", ErrMissingCollaborator)
	case reducer == nil:
		return nil, fmt.Errorf("reducer: %w", ErrMissingCollaborator)
	case rewriter == nil:
		return nil, fmt.Errorf("rewriter: %w", ErrMissingCollaborator)
	case writer == nil:
		return nil, fmt.Errorf("writer: %w", ErrMissingCollaborator)
	}

	p := &Pipeline{
		source:   source,
		meter:    meter,
		reducer:  reducer,
		rewriter: rewriter,
		writer:   writer,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run produces the article for videoID.
// Missing captions are not an error: the run continues on the placeholder
// text. Remote failures and artifact conflicts abort the run.
func (p *Pipeline) Run(ctx context.Context, videoID string) (Report, error) {
	if videoID == "" {
		return Report{}, ErrEmptyVideoID
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	start := p.now()

	if c, ok := p.writer.(artifactChecker); ok {
		if err := c.Check(TranscriptName(videoID), ArticleName(videoID)); err != nil {
			return Report{}, err
		}
	}

	p.stage(videoID, StageFetch)
	doc, err := p.source.Transcribe(ctx, videoID)
	if err != nil {
		return Report{}, &StageError{Stage: StageFetch, VideoID: videoID, Err: err}
	}
	if !doc.Available {
		p.logger.Warn("no captions, continuing with placeholder text", slog.String("video", videoID))
	}

	transcriptPath, err := p.writer.Write(TranscriptName(videoID), doc.Text)
	if err != nil {
		return Report{}, &StageError{Stage: StageSave, VideoID: videoID, Err: err}
	}

	p.stage(videoID, StageCount)
	original := p.meter.Count(doc.Text)

	p.stage(videoID, StageReduce)
	reducer, err := p.reducerFor(doc)
	if err != nil {
		return Report{}, &StageError{Stage: StageReduce, VideoID: videoID, Err: err}
	}
	reduced, err := reducer.Reduce(ctx, doc.Text, original)
	if err != nil {
		return Report{}, &StageError{Stage: StageReduce, VideoID: videoID, Err: err}
	}
	if !reduced.Converged {
		p.logger.Warn("transcript still over token budget",
			slog.String("video", videoID),
			slog.Int("tokens", reduced.Tokens))
	}

	p.stage(videoID, StageRewrite)
	text, err := p.rewriter.Rewrite(ctx, reduced.Text)
	if err != nil {
		return Report{}, &StageError{Stage: StageRewrite, VideoID: videoID, Err: err}
	}

	p.stage(videoID, StageSave)
	articlePath, err := p.writer.Write(ArticleName(videoID), text)
	if err != nil {
		return Report{}, &StageError{Stage: StageSave, VideoID: videoID, Err: err}
	}

	articleTokens := p.meter.Count(text)
	report := Report{
		VideoID:        videoID,
		Languages:      doc.Languages,
		Captions:       doc.Available,
		OriginalTokens: original,
		SentTokens:     reduced.Tokens,
		ArticleTokens:  articleTokens,
		Rounds:         reduced.Rounds,
		Converged:      reduced.Converged,
		Reduction:      reduced.Reduction(),
		InputCost:      p.meter.EstimateInputCost(reduced.Tokens),
		OutputCost:     p.meter.EstimateOutputCost(articleTokens),
		TranscriptPath: transcriptPath,
		ArticlePath:    articlePath,
		Elapsed:        p.now().Sub(start),
	}
	report.TotalCost = report.InputCost + report.OutputCost

	if p.recorder != nil {
		if err := p.recorder.Record(ctx, report); err != nil {
			p.logger.Warn("failed to record run", slog.String("video", videoID), slog.Any("error", err))
		}
	}

	return report, nil
}

// reducerFor returns the reducer matching the caption language of doc.
func (p *Pipeline) reducerFor(doc youtube.Document) (Reducer, error) {
	if p.reducers == nil || doc.Language == "" {
		return p.reducer, nil
	}
	r, err := p.reducers(doc.Language)
	if err != nil {
		return nil, fmt.Errorf("reducer for %s: %w", doc.Language, err)
	}
	return r, nil
}

func (p *Pipeline) stage(videoID string, s Stage) {
	p.logger.Debug("pipeline stage", slog.String("video", videoID), slog.String("stage", string(s)))
	if p.onStage != nil {
		p.onStage(videoID, s)
	}
}
