package store

import "errors"

// ErrInvalidRun indicates a run that cannot be recorded.
var ErrInvalidRun = errors.New("invalid run")
