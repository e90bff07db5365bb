// Package lang validates and compares the language codes used for caption
// preferences, article language and summarizer stemming.
//
// Codes are ISO 639-1 bases with an optional region or script subtag
// ("en", "pt-BR", "zh-Hans"). YouTube reports caption tracks with the same
// shape, so preferences and track codes are compared after Normalize.
package lang

import (
	"fmt"
	"strings"
)

// language describes one supported base code.
type language struct {
	name    string
	stemmer string // Snowball stemmer name, "" when none
}

// languages lists the base codes accepted as preferences. YouTube publishes
// captions in more languages; these are the ones the article prompt handles.
var languages = map[string]language{
	"af": {name: "Afrikaans"},
	"ar": {name: "Arabic"},
	"bg": {name: "Bulgarian"},
	"bn": {name: "Bengali"},
	"ca": {name: "Catalan"},
	"cs": {name: "Czech"},
	"da": {name: "Danish"},
	"de": {name: "German"},
	"el": {name: "Greek"},
	"en": {name: "English", stemmer: "english"},
	"es": {name: "Spanish", stemmer: "spanish"},
	"et": {name: "Estonian"},
	"fa": {name: "Persian"},
	"fi": {name: "Finnish"},
	"fr": {name: "French", stemmer: "french"},
	"gu": {name: "Gujarati"},
	"he": {name: "Hebrew"},
	"hi": {name: "Hindi"},
	"hr": {name: "Croatian"},
	"hu": {name: "Hungarian"},
	"id": {name: "Indonesian"},
	"it": {name: "Italian"},
	"ja": {name: "Japanese"},
	"kn": {name: "Kannada"},
	"ko": {name: "Korean"},
	"lt": {name: "Lithuanian"},
	"lv": {name: "Latvian"},
	"mk": {name: "Macedonian"},
	"ml": {name: "Malayalam"},
	"mr": {name: "Marathi"},
	"ms": {name: "Malay"},
	"nl": {name: "Dutch"},
	"no": {name: "Norwegian"},
	"pa": {name: "Punjabi"},
	"pl": {name: "Polish"},
	"pt": {name: "Portuguese"},
	"ro": {name: "Romanian"},
	"ru": {name: "Russian", stemmer: "russian"},
	"sk": {name: "Slovak"},
	"sl": {name: "Slovenian"},
	"sr": {name: "Serbian"},
	"sv": {name: "Swedish", stemmer: "swedish"},
	"sw": {name: "Swahili"},
	"ta": {name: "Tamil"},
	"te": {name: "Telugu"},
	"th": {name: "Thai"},
	"tl": {name: "Tagalog"},
	"tr": {name: "Turkish"},
	"uk": {name: "Ukrainian"},
	"ur": {name: "Urdu"},
	"vi": {name: "Vietnamese"},
	"zh": {name: "Chinese"},
}

// variants names the regional and script variants YouTube commonly labels.
var variants = map[string]string{
	"en-us":   "American English",
	"en-gb":   "British English",
	"fr-ca":   "Canadian French",
	"es-mx":   "Mexican Spanish",
	"es-419":  "Latin American Spanish",
	"pt-br":   "Brazilian Portuguese",
	"pt-pt":   "European Portuguese",
	"zh-cn":   "Simplified Chinese",
	"zh-hans": "Simplified Chinese",
	"zh-tw":   "Traditional Chinese",
	"zh-hant": "Traditional Chinese",
}

// Normalize trims a code and lowercases it with hyphen separators.
// "pt_BR", " PT-br " -> "pt-br"
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}

// BaseCode returns the base language of a code: "pt-BR" -> "pt".
func BaseCode(code string) string {
	base, _, _ := strings.Cut(Normalize(code), "-")
	return base
}

// Validate checks that the base of code is supported. Empty means "any
// language" and is valid.
func Validate(code string) error {
	if strings.TrimSpace(code) == "" {
		return nil
	}
	if _, ok := languages[BaseCode(code)]; !ok {
		return fmt.Errorf("invalid language code %q (use ISO 639-1 codes like 'en', 'fr', 'pt-BR'): %w",
			code, ErrInvalid)
	}
	return nil
}

// DisplayName returns a readable name for a code, trying the exact variant,
// then the base language. Unknown codes are returned unchanged.
func DisplayName(code string) string {
	normalized := Normalize(code)
	if name, ok := variants[normalized]; ok {
		return name
	}
	if l, ok := languages[BaseCode(normalized)]; ok {
		return l.name
	}
	return code
}

// ParseList splits a comma-separated preference list ("en,fr-CA, de"),
// validates each entry and returns normalized codes in order, without
// duplicates. An empty string yields nil (no preference).
func ParseList(s string) ([]string, error) {
	var codes []string
	seen := make(map[string]bool)
	for part := range strings.SplitSeq(s, ",") {
		code := Normalize(part)
		if code == "" || seen[code] {
			continue
		}
		if err := Validate(strings.TrimSpace(part)); err != nil {
			return nil, err
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

// Matches reports whether a caption track code satisfies a preference.
// A bare preference ("en") accepts any variant of its base; a preference
// with a subtag ("pt-BR") requires that exact variant.
func Matches(code, pref string) bool {
	code, pref = Normalize(code), Normalize(pref)
	if pref == "" {
		return false
	}
	if strings.Contains(pref, "-") {
		return code == pref
	}
	return BaseCode(code) == pref
}

// StemmerName returns the Snowball stemmer for a code, or "" when the
// language has none.
func StemmerName(code string) string {
	return languages[BaseCode(code)].stemmer
}
