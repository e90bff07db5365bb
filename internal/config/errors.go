package config

import "errors"

// Sentinel errors for configuration handling.
var (
	// ErrInvalidKey indicates a key that cannot be stored in the config file.
	ErrInvalidKey = errors.New("invalid config key")

	// ErrUnknownKey indicates a key the application does not read.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidValue indicates a value that does not parse for its key.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrInvalidSyntax indicates a config line without key=value form.
	ErrInvalidSyntax = errors.New("invalid config syntax")

	// ErrNotDirectory indicates an output-dir that points at a file.
	ErrNotDirectory = errors.New("path is not a directory")

	// ErrNotWritable indicates an output-dir the user cannot write to.
	ErrNotWritable = errors.New("directory is not writable")
)
