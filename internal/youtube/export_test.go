package youtube

// Exports for testing internal parsing, selection and the metadata seam.
var (
	ParseTimedText  = parseTimedText
	PickTrack       = pickTrack
	WithClock       = withClock
	WithVideoLoader = withVideoLoader
)

// VideoLoader is the metadata client interface replaced in tests.
type VideoLoader = videoLoader
