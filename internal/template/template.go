// Package template holds the article styles the rewriter can produce.
//
// Each style is a system prompt. The text to rewrite travels in a separate
// user message built by UserPrompt.
package template

import (
	"fmt"
	"strings"
)

// Style name constants.
// Use these instead of string literals for compile-time safety.
const (
	News  = "news"
	Brief = "brief"
	Blog  = "blog"
)

// ---------------------------------------------------------------------------
// Name type - represents a validated style name
// ---------------------------------------------------------------------------

// Name represents a validated style name.
// Zero value is invalid and must not be used with Prompt().
// Use ParseName to create from user input, or the pre-parsed values.
type Name struct {
	name string
}

// Pre-parsed style names for use in code.
var (
	NewsName  = Name{name: News}
	BriefName = Name{name: Brief}
	BlogName  = Name{name: Blog}
)

// Default is the style used when none is requested.
var Default = NewsName

// ParseName validates and parses a style name string.
// An empty string selects Default; any other unknown name returns ErrUnknown.
func ParseName(s string) (Name, error) {
	if s == "" {
		return Default, nil
	}
	if _, ok := prompts[s]; !ok {
		return Name{}, fmt.Errorf("unknown style %q (available: %s): %w",
			s, strings.Join(Names(), ", "), ErrUnknown)
	}
	return Name{name: s}, nil
}

// MustParseName parses a style name, panicking if invalid.
// Use only for constants and tests.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the style name string.
func (n Name) String() string {
	return n.name
}

// IsZero returns true if this is the zero value.
func (n Name) IsZero() bool {
	return n.name == ""
}

// Prompt returns the system prompt for this style.
// Panics if called on zero value.
func (n Name) Prompt() string {
	if n.name == "" {
		panic("template.Name.Prompt called on zero value")
	}
	return prompts[n.name]
}

// styleOrder defines the canonical order for Names().
var styleOrder = []string{News, Brief, Blog}

// prompts maps style names to their system prompts.
var prompts = map[string]string{
	News:  newsPrompt,
	Brief: briefPrompt,
	Blog:  blogPrompt,
}

// Names returns the available style names, default first.
func Names() []string {
	result := make([]string, len(styleOrder))
	copy(result, styleOrder)
	return result
}

// UserPrompt wraps text in the rewrite request sent as the user message.
func UserPrompt(text string) string {
	return fmt.Sprintf(userPromptFormat, text)
}

const userPromptFormat = `Rewrite the following text as an article.
Keep the language the text was written in. Do not translate it.
Keep it concise, structured, and easy to read. Do not add information
that is not already present in the original text.

--- ORIGINAL TEXT START ---
%s
--- ORIGINAL TEXT END ---`

// System prompts in English.
// For a known caption language, a "Write the article in {language}" line is appended.

const newsPrompt = `You are a professional news editor.
You rewrite input text into a clear, structured news article.

Rules:
- Headline first, then a one-paragraph lede answering who, what, when
- Body paragraphs ordered by importance
- Neutral tone, third person
- Remove filler words and caption artifacts ([Music], [Applause])
- Do not invent facts, quotes, or figures
- Keep the language the text was written in`

const briefPrompt = `You are a news desk editor writing briefs.
You condense input text into a short news brief.

Rules:
- One headline line
- Three to five bullet points, one fact per bullet
- No opinions, no speculation
- Remove filler words and caption artifacts ([Music], [Applause])
- Do not invent facts, quotes, or figures
- Keep the language the text was written in`

const blogPrompt = `You are an editor turning video transcripts into blog posts.
You rewrite input text into an engaging, readable blog post in markdown.

Rules:
- H1 title inferred from the content
- H2 sections when the speaker changes topic
- Conversational but precise tone; keep the speaker's point of view
- Remove filler words and caption artifacts ([Music], [Applause])
- Do not invent facts, quotes, or figures
- Keep the language the text was written in`
