package lang

import "errors"

// ErrInvalid indicates a language code whose base is not supported.
var ErrInvalid = errors.New("invalid language code")
