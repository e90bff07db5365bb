package token

// Exports for black-box tests.

// EncoderLoader exports encoderLoader for testing.
type EncoderLoader = encoderLoader

// WithLoaders exports withLoaders for testing.
var WithLoaders = withLoaders
