package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-ytarticle/internal/format"
	"github.com/alnah/go-ytarticle/internal/pipeline"
	"github.com/alnah/go-ytarticle/internal/reduce"
)

// progress writes prefixed status lines. Safe for concurrent use so that
// batch runs do not interleave partial lines.
type progress struct {
	mu sync.Mutex
	w  io.Writer
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

// printf writes one line prefixed with "[id] ", or unprefixed when id is empty.
func (p *progress) printf(id, msg string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id != "" {
		_, _ = fmt.Fprintf(p.w, "[%s] ", id)
	}
	_, _ = fmt.Fprintf(p.w, msg+"\n", args...)
}

// stageMessages are the status lines printed when a run enters a stage.
var stageMessages = map[pipeline.Stage]string{
	pipeline.StageFetch:   "Fetching captions...",
	pipeline.StageCount:   "Counting tokens...",
	pipeline.StageReduce:  "Checking token budget...",
	pipeline.StageRewrite: "Writing article...",
	pipeline.StageSave:    "Saving article...",
}

// onStage returns a pipeline stage callback printing to p.
func (p *progress) onStage(prefix bool) func(videoID string, s pipeline.Stage) {
	return func(videoID string, s pipeline.Stage) {
		msg, ok := stageMessages[s]
		if !ok {
			return
		}
		p.printf(prefixFor(prefix, videoID), "%s", msg)
	}
}

// onRound returns a reduction round callback printing to p.
func (p *progress) onRound(id string) func(reduce.Attempt) {
	return func(a reduce.Attempt) {
		p.printf(id, "  Round %d: keeping %s of sentences -> %s",
			a.Round, format.Percent(a.Ratio), format.Tokens(a.OutputTokens))
	}
}

func prefixFor(prefix bool, id string) string {
	if prefix {
		return id
	}
	return ""
}

// printReport writes the token and cost summary of one run.
func (p *progress) printReport(id string, r pipeline.Report) {
	if r.Captions {
		p.printf(id, "Captions: %s", strings.Join(r.Languages, ", "))
	} else {
		p.printf(id, "Warning: no captions available, the article was written from placeholder text")
	}

	if r.Rounds == 0 {
		p.printf(id, "Tokens: %s (within budget, no reduction)", format.Count(int64(r.OriginalTokens)))
	} else {
		p.printf(id, "Tokens: %s -> %s sent (%s reduction, %d rounds)",
			format.Count(int64(r.OriginalTokens)), format.Count(int64(r.SentTokens)),
			format.Percent(r.Reduction), r.Rounds)
	}
	if !r.Converged {
		p.printf(id, "Warning: token budget not reached, sending %s", format.Tokens(r.SentTokens))
	}

	p.printf(id, "Article: %s", format.Tokens(r.ArticleTokens))
	p.printf(id, "Estimated cost: %s input + %s output = %s",
		format.Cost(r.InputCost), format.Cost(r.OutputCost), format.Cost(r.TotalCost))
	p.printf(id, "Done: %s (transcript: %s) in %s",
		r.ArticlePath, r.TranscriptPath, formatElapsed(r.Elapsed))
}

// formatElapsed renders short runs with one decimal second.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return format.DurationHuman(d)
}
