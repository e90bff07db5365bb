package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-ytarticle/internal/config"
	"github.com/alnah/go-ytarticle/internal/format"
	"github.com/alnah/go-ytarticle/internal/lang"
	"github.com/alnah/go-ytarticle/internal/pipeline"
	"github.com/alnah/go-ytarticle/internal/reduce"
)

// reduceOptions holds validated options for the reduce command.
type reduceOptions struct {
	inputPath string
	output    string
	languages []string
	model     string
	maxTokens int
	force     bool
}

// ReduceCmd creates the reduce command (shorten text to a token budget).
// The env parameter provides injectable dependencies for testing.
func ReduceCmd(env *Env) *cobra.Command {
	var (
		output    string
		language  string
		model     string
		maxTokens int
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "reduce <file|->",
		Short: "Shorten a text file to a token budget",
		Long: `Shorten a text with extractive summarization until it fits a token budget.

Each round keeps the highest-ranked sentences of the previous round's output,
halving the kept fraction until the budget or the ratio floor is reached.
No LLM is called. Reads stdin when the argument is "-".

Output goes to <input>_reduced.txt, or to stdout when reading stdin
without --output.`,
		Example: `  ytarticle reduce dQw4w9WgXcQ_transcript.txt
  ytarticle reduce notes.txt --max-tokens 500 -o short.txt
  cat talk.txt | ytarticle reduce - --lang fr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseReduceOptions(args[0], output, language, model, maxTokens, force)
			if err != nil {
				return err
			}
			return runReduce(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>_reduced.txt)")
	cmd.Flags().StringVarP(&language, "lang", "l", "", "Language of the text, for stemming (default: config languages or en)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model whose tokenizer counts tokens (default: config or gpt-4o-mini)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Token budget (default: config or 2000)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output file")

	return cmd
}

// parseReduceOptions validates and parses CLI inputs into reduceOptions.
func parseReduceOptions(inputPath, output, language, model string, maxTokens int, force bool) (reduceOptions, error) {
	codes, err := lang.ParseList(language)
	if err != nil {
		return reduceOptions{}, err
	}
	if maxTokens < 0 {
		return reduceOptions{}, fmt.Errorf("--max-tokens must be positive, got %d: %w", maxTokens, ErrInvalidFlag)
	}
	return reduceOptions{
		inputPath: inputPath,
		output:    output,
		languages: codes,
		model:     model,
		maxTokens: maxTokens,
		force:     force,
	}, nil
}

// deriveReducedOutputPath converts an input path to a reduced output path.
// Example: "talk_transcript.txt" -> "talk_reduced.txt"
func deriveReducedOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	base = strings.TrimSuffix(base, "_transcript")
	if ext == "" {
		ext = ".txt"
	}
	return base + "_reduced" + ext
}

// runReduce executes the reduce command with validated options.
func runReduce(ctx context.Context, env *Env, opts reduceOptions) error {
	// === VALIDATION (fail-fast) ===

	cfg := loadConfig(env)

	rc, err := reduceConfig(cfg, opts.maxTokens)
	if err != nil {
		return err
	}

	prefs := opts.languages
	if len(prefs) == 0 {
		if prefs, err = captionLanguages("", cfg); err != nil {
			return err
		}
	}

	toStdout := isStdin(opts.inputPath) && opts.output == ""
	var output string
	if !toStdout {
		defaultOutput := "stdin_reduced.txt"
		if !isStdin(opts.inputPath) {
			defaultOutput = deriveReducedOutputPath(filepath.Base(opts.inputPath))
		}
		output = config.ResolveOutputPath(opts.output, cfg.OutputDir, defaultOutput)
	}

	// === READ INPUT ===

	text, err := readInput(env, opts.inputPath)
	if err != nil {
		return err
	}

	// === REDUCE ===

	model := opts.model
	if model == "" {
		model = cfg.Model
	}
	logger := env.logger()
	meter := env.MeterFactory.NewMeter(model, pricing(cfg), logger)
	out := newProgress(env.Stderr)

	controller, err := reduce.New(meter, summarizerFactory(env, firstLanguage(prefs)),
		reduce.WithConfig(rc),
		reduce.WithOnRound(out.onRound("")),
		reduce.WithLogger(logger))
	if err != nil {
		return err
	}

	original := meter.Count(text)
	if original <= rc.MaxTokens {
		fmt.Fprintf(env.Stderr, "Tokens: %s (within budget of %s, no reduction)\n",
			format.Count(int64(original)), format.Count(int64(rc.MaxTokens)))
	} else {
		fmt.Fprintf(env.Stderr, "Reducing %s to a budget of %s...\n",
			format.Tokens(original), format.Tokens(rc.MaxTokens))
	}

	result, err := controller.Reduce(ctx, text, original)
	if err != nil {
		return err
	}

	if result.Rounds > 0 {
		fmt.Fprintf(env.Stderr, "Tokens: %s -> %s (%s reduction, %d rounds)\n",
			format.Count(int64(result.OriginalTokens)), format.Count(int64(result.Tokens)),
			format.Percent(result.Reduction()), result.Rounds)
	}
	if !result.Converged {
		fmt.Fprintf(env.Stderr, "Warning: token budget not reached, ratio floor hit at %s\n",
			format.Tokens(result.Tokens))
	}

	// === WRITE OUTPUT ===

	if toStdout {
		_, err := fmt.Fprintln(env.Stdout, result.Text)
		return err
	}

	w := pipeline.NewFileWriter(filepath.Dir(output), opts.force)
	written, err := w.Write(filepath.Base(output), result.Text+"\n")
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Done: %s\n", written)
	return nil
}
