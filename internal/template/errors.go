package template

import "errors"

// ErrUnknown indicates an article style name that does not exist.
var ErrUnknown = errors.New("unknown template")
