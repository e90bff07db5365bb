package reduce

import "errors"

// ErrInvalidConfig indicates a Config value outside its allowed range.
var ErrInvalidConfig = errors.New("invalid reduction config")
