package article

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// ChatCompleter exposes the client interface for mocks.
type ChatCompleter = chatCompleter

var (
	WithChatCompleter = withChatCompleter
	ClassifyError     = classifyError
)
