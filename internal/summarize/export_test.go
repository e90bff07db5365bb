package summarize

// SplitSentences exports splitSentences for testing, returning sentence texts.
func SplitSentences(text string) []string {
	sentences := splitSentences(text)
	out := make([]string, len(sentences))
	for i, s := range sentences {
		out[i] = s.text
	}
	return out
}

// Similarity exports similarity for testing.
var Similarity = similarity
