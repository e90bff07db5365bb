package summarize

import (
	"math"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// TextRank parameters.
const (
	damping       = 0.85
	convergence   = 1e-4
	maxIterations = 100

	// Auto-generated captions carry no punctuation, which would turn a whole
	// transcript into one sentence. Runs longer than maxSentenceWords are cut
	// into windows of windowWords.
	maxSentenceWords = 40
	windowWords      = 25
)

type sentence struct {
	index int
	text  string
	terms []string
	score float64
}

// splitSentences cuts text at terminal punctuation followed by whitespace
// and at line breaks.
func splitSentences(text string) []sentence {
	var (
		sentences []sentence
		current   strings.Builder
	)
	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s == "" {
			return
		}
		for _, part := range window(s) {
			sentences = append(sentences, sentence{index: len(sentences), text: part})
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			flush()
			continue
		}
		current.WriteRune(r)
		if isTerminal(r) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			flush()
		}
	}
	flush()
	return sentences
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

// window splits an overlong sentence into fixed-size word runs.
func window(s string) []string {
	words := strings.Fields(s)
	if len(words) <= maxSentenceWords {
		return []string{s}
	}
	var parts []string
	for start := 0; start < len(words); start += windowWords {
		end := min(start+windowWords, len(words))
		parts = append(parts, strings.Join(words[start:end], " "))
	}
	return parts
}

// terms lowercases, drops stopwords and stems the words of a sentence.
func (s *TextRank) terms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "'")
		if w == "" || s.stopwords[w] {
			continue
		}
		if s.stemmer != "" {
			if stemmed, err := snowball.Stem(w, s.stemmer, true); err == nil && stemmed != "" {
				w = stemmed
			}
		}
		terms = append(terms, w)
	}
	return terms
}

// similarity is the TextRank overlap measure: shared distinct terms
// normalized by the log lengths of both sentences.
func similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	norm := math.Log10(float64(len(a))) + math.Log10(float64(len(b)))
	if norm == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	common := 0
	for _, t := range distinct(b) {
		if set[t] {
			common++
		}
	}
	return float64(common) / norm
}

func distinct(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// scoreSentences runs weighted PageRank over the sentence similarity graph.
// Sentences with no edges keep a score of 0.
func scoreSentences(sentences []sentence) {
	n := len(sentences)
	if n == 0 {
		return
	}

	weights := make([][]float64, n)
	outSum := make([]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			w := similarity(sentences[i].terms, sentences[j].terms)
			if w <= 0 {
				continue
			}
			weights[i][j], weights[j][i] = w, w
			outSum[i] += w
			outSum[j] += w
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		if outSum[i] > 0 {
			scores[i] = 1
		}
	}

	next := make([]float64, n)
	for range maxIterations {
		delta := 0.0
		for i := range n {
			if outSum[i] == 0 {
				next[i] = 0
				continue
			}
			rank := 0.0
			for j := range n {
				if weights[j][i] > 0 {
					rank += weights[j][i] / outSum[j] * scores[j]
				}
			}
			next[i] = (1 - damping) + damping*rank
			delta = math.Max(delta, math.Abs(next[i]-scores[i]))
		}
		scores, next = next, scores
		if delta < convergence {
			break
		}
	}

	for i := range sentences {
		sentences[i].score = scores[i]
	}
}
