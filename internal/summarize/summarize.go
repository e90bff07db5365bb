// Package summarize implements extractive summarization with TextRank.
//
// A TextRank summarizer keeps the highest-ranked sentences of its input in
// their original order. It first targets a fraction of the sentence count
// (ratio mode); when that selects nothing, which happens on short inputs, it
// retries once targeting a fixed number of words.
package summarize

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/alnah/go-ytarticle/internal/lang"
)

// Summarizer shortens text. Implementations hold no state between calls.
type Summarizer interface {
	Summarize(text string) string
}

// Factory builds a Summarizer for one reduction round.
type Factory func(ratio float64, fallbackWords int) Summarizer

// Compile-time interface compliance check.
var _ Summarizer = (*TextRank)(nil)

// TextRank is an extractive summarizer configured with a retention ratio and
// a fallback word target.
type TextRank struct {
	ratio         float64
	fallbackWords int
	stemmer       string
	stopwords     map[string]bool
	logger        *slog.Logger
}

// Option configures a TextRank summarizer.
type Option func(*TextRank)

// WithLanguage selects stemming and stopwords for a language code ("en", "fr-CA").
// Languages without a Snowball stemmer are ranked on unstemmed words.
func WithLanguage(code string) Option {
	return func(s *TextRank) {
		s.stemmer = lang.StemmerName(code)
		s.stopwords = stopwordsFor(s.stemmer)
	}
}

// WithLogger sets the logger used to report the word-count fallback.
func WithLogger(l *slog.Logger) Option {
	return func(s *TextRank) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a TextRank summarizer. ratio is the fraction of sentences to
// keep, in (0, 1]; fallbackWords is the word target used when the ratio
// selects nothing. English is assumed until WithLanguage says otherwise.
func New(ratio float64, fallbackWords int, opts ...Option) *TextRank {
	s := &TextRank{
		ratio:         ratio,
		fallbackWords: fallbackWords,
		stemmer:       "english",
		stopwords:     stopwordsFor("english"),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFactory returns a Factory producing TextRank summarizers that share opts.
func NewFactory(opts ...Option) Factory {
	return func(ratio float64, fallbackWords int) Summarizer {
		return New(ratio, fallbackWords, opts...)
	}
}

// Summarize returns the summary of text. Empty or whitespace-only text
// returns "" without ranking anything.
func (s *TextRank) Summarize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	sentences := s.rank(text)
	summary := join(byRatio(sentences, s.ratio))
	if strings.TrimSpace(summary) != "" {
		return summary
	}

	s.logger.Debug("ratio summary empty, retrying with word target",
		slog.Float64("ratio", s.ratio),
		slog.Int("sentences", len(sentences)),
		slog.Int("words", s.fallbackWords))
	return join(byWords(sentences, s.fallbackWords))
}

// rank splits text into sentences and scores them.
func (s *TextRank) rank(text string) []sentence {
	sentences := splitSentences(text)
	for i := range sentences {
		sentences[i].terms = s.terms(sentences[i].text)
	}
	scoreSentences(sentences)
	return sentences
}

// byRatio keeps floor(len*ratio) of the best sentences.
func byRatio(sentences []sentence, ratio float64) []sentence {
	if ratio <= 0 {
		return nil
	}
	n := int(float64(len(sentences)) * ratio)
	return bestFirst(sentences)[:min(n, len(sentences))]
}

// byWords adds best sentences while each addition brings the word count
// closer to target.
func byWords(sentences []sentence, target int) []sentence {
	var selected []sentence
	count := 0
	for _, sent := range bestFirst(sentences) {
		words := len(strings.Fields(sent.text))
		if abs(target-count-words) > abs(target-count) {
			break
		}
		selected = append(selected, sent)
		count += words
	}
	return selected
}

// bestFirst returns a copy of sentences sorted by descending score; ties keep
// document order.
func bestFirst(sentences []sentence) []sentence {
	sorted := make([]sentence, len(sentences))
	copy(sorted, sentences)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].score > sorted[j].score
	})
	return sorted
}

// join restores document order and joins sentences one per line.
func join(selected []sentence) string {
	if len(selected) == 0 {
		return ""
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].index < selected[j].index
	})
	parts := make([]string, len(selected))
	for i, sent := range selected {
		parts[i] = sent.text
	}
	return strings.Join(parts, "\n")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
