package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact name suffixes.
const (
	transcriptSuffix = "_transcript.txt"
	articleSuffix    = "_article.txt"
)

// TranscriptName returns the transcript artifact name for videoID.
func TranscriptName(videoID string) string { return videoID + transcriptSuffix }

// ArticleName returns the article artifact name for videoID.
func ArticleName(videoID string) string { return videoID + articleSuffix }

// ArtifactWriter persists named text artifacts and returns where they went.
type ArtifactWriter interface {
	Write(name, content string) (string, error)
}

// artifactChecker is implemented by writers that can refuse a run before any
// remote call is made.
type artifactChecker interface {
	Check(names ...string) error
}

// Compile-time interface compliance checks.
var (
	_ ArtifactWriter  = (*FileWriter)(nil)
	_ artifactChecker = (*FileWriter)(nil)
)

// FileWriter writes artifacts as files in one directory.
// Without force, existing files are never overwritten.
type FileWriter struct {
	dir   string
	force bool
}

// NewFileWriter returns a FileWriter for dir. An empty dir means the
// current directory.
func NewFileWriter(dir string, force bool) *FileWriter {
	return &FileWriter{dir: dir, force: force}
}

// Path returns the file path used for name.
func (w *FileWriter) Path(name string) string {
	if w.dir == "" {
		return filepath.Clean(name)
	}
	return filepath.Join(w.dir, name)
}

// Check returns ErrOutputExists when any named file exists and force is off.
func (w *FileWriter) Check(names ...string) error {
	if w.force {
		return nil
	}
	for _, name := range names {
		p := w.Path(name)
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("%s: %w (use --force to overwrite)", p, ErrOutputExists)
		}
	}
	return nil
}

// Write creates the file for name with content.
// Without force it fails if the file already exists (O_EXCL).
// On write failure, the partial file is removed.
func (w *FileWriter) Write(name, content string) (string, error) {
	p := w.Path(name)

	flags := os.O_CREATE | os.O_WRONLY | os.O_EXCL
	if w.force {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	// #nosec G302 G304 -- artifact file under the user's output dir
	f, err := os.OpenFile(p, flags, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%s: %w", p, ErrOutputExists)
		}
		return "", fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(p)
		return "", writeErr
	}

	return p, nil
}
