package article

import "errors"

// ErrEmptyAPIKey indicates that the provider API key was not provided.
var ErrEmptyAPIKey = errors.New("API key is required")

// ErrUnknownProvider indicates a provider name other than openai or deepseek.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrEmptyResponse indicates the model returned no choices or blank content.
var ErrEmptyResponse = errors.New("empty response from model")

// ErrTextTooLong indicates the provider rejected the input as exceeding its context window.
var ErrTextTooLong = errors.New("text exceeds model context length")
