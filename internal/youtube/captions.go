package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"regexp"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"

	"github.com/alnah/go-ytarticle/internal/apierr"
	"github.com/alnah/go-ytarticle/internal/lang"
)

// CaptionTrack is one caption track offered for a video.
type CaptionTrack struct {
	BaseURL      string
	LanguageCode string
	Kind         string // "asr" for auto-generated
}

// AutoGenerated reports whether the track was produced by speech recognition.
func (t CaptionTrack) AutoGenerated() bool {
	return t.Kind == "asr"
}

// needsPoToken reports whether the track URL only works in a browser session.
func (t CaptionTrack) needsPoToken() bool {
	return strings.Contains(t.BaseURL, "&exp=xpe")
}

// captionTracks lists the caption tracks of v in the order YouTube reports them.
func captionTracks(v *ytdl.Video) []CaptionTrack {
	tracks := make([]CaptionTrack, 0, len(v.CaptionTracks))
	for _, t := range v.CaptionTracks {
		tracks = append(tracks, CaptionTrack{
			BaseURL:      t.BaseURL,
			LanguageCode: t.LanguageCode,
			Kind:         t.Kind,
		})
	}
	return tracks
}

// classifyVideoError maps a metadata failure to the package sentinels.
// Removed, private and unplayable videos are unavailable. Sign-in walls and
// responses without a usable player (consent pages) are ErrBlocked. HTTP
// failures go through apierr so that transient ones are retried.
func classifyVideoError(videoID string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var status ytdl.ErrUnexpectedStatusCode
	if errors.As(err, &status) {
		if int(status) == http.StatusNotFound {
			return fmt.Errorf("%s: %w", videoID, ErrVideoUnavailable)
		}
		return fmt.Errorf("%s: %w", videoID, apierr.Classify(int(status), ""))
	}

	var playability *ytdl.ErrPlayabiltyStatus
	if errors.As(err, &playability) {
		reason := playability.Reason
		if reason == "" {
			reason = strings.ToLower(playability.Status)
		}
		switch playability.Status {
		case "ERROR", "UNPLAYABLE":
			return fmt.Errorf("%s: %s: %w", videoID, reason, ErrVideoUnavailable)
		}
		return fmt.Errorf("%s: %s: %w", videoID, reason, ErrBlocked)
	}

	if errors.Is(err, ytdl.ErrVideoPrivate) {
		return fmt.Errorf("%s: %w", videoID, ErrVideoUnavailable)
	}
	if errors.Is(err, ytdl.ErrLoginRequired) {
		return fmt.Errorf("%s: %w: %w", videoID, ErrBlocked, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%s: %w: %w", videoID, apierr.ErrTimeout, err)
		}
		return fmt.Errorf("%s: %w", videoID, err)
	}

	return fmt.Errorf("%s: %w: %w", videoID, ErrBlocked, err)
}

// classifyTranscriptError maps a transcript panel failure to the package sentinels.
func classifyTranscriptError(videoID string, err error) error {
	if errors.Is(err, ytdl.ErrTranscriptDisabled) {
		return fmt.Errorf("%s: %w", videoID, ErrCaptionsDisabled)
	}
	return classifyVideoError(videoID, err)
}

// pickTrack selects the track to download. Tracks that need a browser
// session are skipped; ok is false when none is left.
func pickTrack(tracks []CaptionTrack, prefs []string) (CaptionTrack, bool) {
	usable := make([]CaptionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !t.needsPoToken() {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return CaptionTrack{}, false
	}
	return chooseTrack(usable, prefs), true
}

// chooseTrack applies the language preferences to a non-empty track list.
// A manual track in a preferred language wins over an auto-generated one;
// without a match the first track is used.
func chooseTrack(tracks []CaptionTrack, prefs []string) CaptionTrack {
	for _, wantASR := range []bool{false, true} {
		for _, pref := range prefs {
			for _, t := range tracks {
				if t.AutoGenerated() == wantASR && lang.Matches(t.LanguageCode, pref) {
					return t
				}
			}
		}
	}
	return tracks[0]
}

// trackLanguages lists distinct track languages in order.
func trackLanguages(tracks []CaptionTrack) []string {
	seen := make(map[string]bool, len(tracks))
	langs := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.LanguageCode != "" && !seen[t.LanguageCode] {
			seen[t.LanguageCode] = true
			langs = append(langs, t.LanguageCode)
		}
	}
	return langs
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

var tagRE = regexp.MustCompile(`<[^>]*>`)

// parseTimedText merges timedtext XML lines into one space-separated string.
func parseTimedText(body []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}
	parts := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		// Lines are escaped twice: XML decoding leaves "&#39;" behind.
		parts = appendText(parts, tagRE.ReplaceAllString(html.UnescapeString(line.Text), ""))
	}
	return strings.Join(parts, " "), nil
}

// joinSegments merges transcript panel segments like parseTimedText merges lines.
func joinSegments(segments ytdl.VideoTranscript) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = appendText(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

// appendText appends text with collapsed whitespace, skipping blank lines.
func appendText(parts []string, text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return parts
	}
	return append(parts, text)
}
