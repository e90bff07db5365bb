package cli

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestReadInput(t *testing.T) {
	t.Parallel()

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		env, _, _, _ := testEnv()
		path := createTestTextFile(t, "notes.txt", "Some text.\n")

		got, err := readInput(env, path)
		if err != nil {
			t.Fatalf("readInput() unexpected error: %v", err)
		}
		if got != "Some text.\n" {
			t.Errorf("readInput() = %q, want %q", got, "Some text.\n")
		}
	})

	for _, arg := range []string{"", "-"} {
		t.Run("stdin "+arg, func(t *testing.T) {
			t.Parallel()

			env, _, _, _ := testEnv(withTestStdin("piped text"))
			got, err := readInput(env, arg)
			if err != nil {
				t.Fatalf("readInput(%q) unexpected error: %v", arg, err)
			}
			if got != "piped text" {
				t.Errorf("readInput(%q) = %q, want %q", arg, got, "piped text")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		env, _, _, _ := testEnv()
		_, err := readInput(env, filepath.Join(t.TempDir(), "nope.txt"))
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("readInput() error = %v, want %v", err, ErrFileNotFound)
		}
	})

	t.Run("whitespace file", func(t *testing.T) {
		t.Parallel()

		env, _, _, _ := testEnv()
		path := createTestTextFile(t, "blank.txt", "  \n\t\n")
		_, err := readInput(env, path)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("readInput() error = %v, want %v", err, ErrEmptyInput)
		}
	})

	t.Run("empty stdin", func(t *testing.T) {
		t.Parallel()

		env, _, _, _ := testEnv()
		_, err := readInput(env, "-")
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("readInput() error = %v, want %v", err, ErrEmptyInput)
		}
	})
}
