package youtube

import (
	"errors"
	"fmt"

	"github.com/alnah/go-ytarticle/internal/apierr"
)

// Sentinel errors for caption retrieval. The first three mark a source that
// cannot supply text; Source.Transcribe degrades them to the placeholder
// Document instead of returning them.
var (
	// ErrNoCaptions indicates the video has no caption tracks.
	ErrNoCaptions = errors.New("no captions available")

	// ErrCaptionsDisabled indicates the uploader disabled captions.
	ErrCaptionsDisabled = errors.New("captions are disabled")

	// ErrVideoUnavailable indicates the video is private, removed or region locked.
	ErrVideoUnavailable = errors.New("video unavailable")

	// ErrBlocked indicates YouTube refused to serve the video to this client:
	// a sign-in wall ("confirm you're not a bot", age gate) or a consent page
	// instead of the player. It is never degraded to the placeholder.
	ErrBlocked = fmt.Errorf("YouTube refused the request (sign-in or consent required): %w", apierr.ErrAuthFailed)

	// ErrInvalidVideoID indicates input that is neither a video ID nor a watch URL.
	ErrInvalidVideoID = errors.New("invalid video ID")

	// ErrMissingAPIKey indicates the Data API key is not set.
	ErrMissingAPIKey = errors.New("YouTube Data API key is required")
)
