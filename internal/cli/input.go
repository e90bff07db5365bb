package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// stdinArg is the argument naming standard input.
const stdinArg = "-"

// readInput returns the text of a file, or of stdin when path is "" or "-".
// Whitespace-only input returns ErrEmptyInput.
func readInput(env *Env, path string) (string, error) {
	var (
		content []byte
		err     error
		name    = path
	)

	if isStdin(path) {
		name = "stdin"
		content, err = io.ReadAll(env.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		// #nosec G304 -- path is user-provided
		content, err = os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("%s: %w", path, ErrFileNotFound)
			}
			return "", fmt.Errorf("cannot read file: %w", err)
		}
	}

	text := string(content)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", name, ErrEmptyInput)
	}
	return text, nil
}

// isStdin reports whether path names standard input.
func isStdin(path string) bool {
	return path == "" || path == stdinArg
}
