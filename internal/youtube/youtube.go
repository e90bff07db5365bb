// Package youtube fetches video captions and searches popular videos.
//
// Caption tracks are discovered with github.com/kkdai/youtube/v2 and each
// track serves timedtext XML. Popular video discovery uses the YouTube Data
// API v3 client from google.golang.org/api.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// NoCaptionsText is the placeholder text of a Document without captions.
const NoCaptionsText = "No captions available for this video."

// Document is the text of one video. It is never modified after Transcribe.
type Document struct {
	VideoID   string
	Languages []string // caption languages found, in track order
	Language  string   // language of the track the text comes from
	Text      string
	Available bool // false for the NoCaptionsText placeholder
}

// Source supplies the text of a video.
type Source interface {
	Transcribe(ctx context.Context, videoID string) (Document, error)
}

// unavailableDocument returns the placeholder Document for videoID.
func unavailableDocument(videoID string) Document {
	return Document{VideoID: videoID, Text: NoCaptionsText}
}

// IsSourceUnavailable reports whether err means the video has no usable captions.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrNoCaptions) ||
		errors.Is(err, ErrCaptionsDisabled) ||
		errors.Is(err, ErrVideoUnavailable)
}

var (
	videoIDRE  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	videoURLRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
)

// ParseVideoID accepts a bare 11-character video ID or any common YouTube URL
// and returns the video ID.
func ParseVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if videoIDRE.MatchString(s) {
		return s, nil
	}
	if m := videoURLRE.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}
	return "", fmt.Errorf("%q is not an 11-character ID or a YouTube URL: %w", s, ErrInvalidVideoID)
}

// WatchURL returns the watch page URL of a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
