package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-ytarticle/internal/config"
	"github.com/alnah/go-ytarticle/internal/lang"
	"github.com/alnah/go-ytarticle/internal/pipeline"
	"github.com/alnah/go-ytarticle/internal/reduce"
)

// Notes:
// - The mocked meter counts words, so longText(n) weighs 17*n tokens.
// - Summaries come from the real TextRank summarizer; tests assert on the
//   budget and the files, not on which sentences survive.

func TestDeriveReducedOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"talk.txt", "talk_reduced.txt"},
		{"dQw4w9WgXcQ_transcript.txt", "dQw4w9WgXcQ_reduced.txt"},
		{"notes.md", "notes_reduced.md"},
		{"notes", "notes_reduced.txt"},
		{"dir/talk.txt", "dir/talk_reduced.txt"},
	}

	for _, tt := range tests {
		if got := DeriveReducedOutputPath(tt.input); got != tt.want {
			t.Errorf("DeriveReducedOutputPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseReduceOptions(t *testing.T) {
	t.Parallel()

	opts, err := parseReduceOptions("in.txt", "out.txt", "FR", "gpt-4o", 500, true)
	if err != nil {
		t.Fatalf("parseReduceOptions() unexpected error: %v", err)
	}
	if opts.languages[0] != "fr" || opts.maxTokens != 500 || !opts.force {
		t.Errorf("parseReduceOptions() = %+v", opts)
	}

	if _, err := parseReduceOptions("in.txt", "", "xx", "", 0, false); !errors.Is(err, lang.ErrInvalid) {
		t.Errorf("invalid --lang error = %v, want %v", err, lang.ErrInvalid)
	}
	if _, err := parseReduceOptions("in.txt", "", "", "", -1, false); !errors.Is(err, ErrInvalidFlag) {
		t.Errorf("negative --max-tokens error = %v, want %v", err, ErrInvalidFlag)
	}
}

func TestRunReduce_FileToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	env, stdout, stderr, mocks := testEnv(withTestConfig(config.Config{OutputDir: dir, Model: "gpt-4o"}))
	input := createTestTextFile(t, "talk_transcript.txt", longText(100))

	err := executeCmd(ReduceCmd(env), input, "--max-tokens", "500")
	if err != nil {
		t.Fatalf("reduce unexpected error: %v", err)
	}

	got := readFile(t, filepath.Join(dir, "talk_reduced.txt"))
	if n := len(strings.Fields(got)); n == 0 || n > 1700 {
		t.Errorf("reduced text has %d words, want between 1 and 1700", n)
	}
	if stdout.String() != "" {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
	for _, want := range []string{"Reducing 1,700 tokens to a budget of 500 tokens", "Round 1:", "Done: "} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr missing %q\ngot:\n%s", want, stderr.String())
		}
	}
	if calls := mocks.meter.NewMeterCalls(); len(calls) != 1 || calls[0].Model != "gpt-4o" {
		t.Errorf("NewMeter calls = %+v, want one with the configured model", calls)
	}
}

func TestRunReduce_StdinToStdout(t *testing.T) {
	t.Parallel()

	env, stdout, stderr, _ := testEnv(withTestStdin("A short note. Nothing to cut."))

	err := executeCmd(ReduceCmd(env), "-")
	if err != nil {
		t.Fatalf("reduce unexpected error: %v", err)
	}

	if stdout.String() != "A short note. Nothing to cut.\n" {
		t.Errorf("stdout = %q, want the input unchanged", stdout.String())
	}
	if !strings.Contains(stderr.String(), "within budget") {
		t.Errorf("stderr = %q, want a within-budget notice", stderr.String())
	}
}

func TestRunReduce_OutputExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "short.txt")
	if err := os.WriteFile(output, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	input := createTestTextFile(t, "in.txt", "Some text to keep.")

	env, _, _, _ := testEnv()
	err := executeCmd(ReduceCmd(env), input, "-o", output)
	if !errors.Is(err, pipeline.ErrOutputExists) {
		t.Fatalf("reduce error = %v, want %v", err, pipeline.ErrOutputExists)
	}
	if readFile(t, output) != "old" {
		t.Error("existing output was modified")
	}

	env, _, _, _ = testEnv()
	if err := executeCmd(ReduceCmd(env), input, "-o", output, "--force"); err != nil {
		t.Fatalf("reduce --force unexpected error: %v", err)
	}
	if got := readFile(t, output); got != "Some text to keep.\n" {
		t.Errorf("output = %q, want the new text", got)
	}
}

func TestRunReduce_InvalidConfig(t *testing.T) {
	t.Parallel()

	env, _, _, _ := testEnv(withTestStdin("text"), withTestConfig(config.Config{RatioFloor: 1.5}))

	err := runReduce(context.Background(), env, reduceOptions{inputPath: "-"})
	if !errors.Is(err, reduce.ErrInvalidConfig) {
		t.Errorf("runReduce() error = %v, want %v", err, reduce.ErrInvalidConfig)
	}
}

func TestRunReduce_MissingFile(t *testing.T) {
	t.Parallel()

	env, _, _, _ := testEnv()
	err := executeCmd(ReduceCmd(env), filepath.Join(t.TempDir(), "missing.txt"), "-o", filepath.Join(t.TempDir(), "out.txt"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("reduce error = %v, want %v", err, ErrFileNotFound)
	}
}
