package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-ytarticle/internal/apierr"
	"github.com/alnah/go-ytarticle/internal/article"
	"github.com/alnah/go-ytarticle/internal/cli"
	"github.com/alnah/go-ytarticle/internal/config"
	"github.com/alnah/go-ytarticle/internal/interrupt"
	"github.com/alnah/go-ytarticle/internal/lang"
	"github.com/alnah/go-ytarticle/internal/pipeline"
	"github.com/alnah/go-ytarticle/internal/reduce"
	"github.com/alnah/go-ytarticle/internal/template"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitSource     = 5
	ExitArticle    = 6
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Ctrl+C cancels the context; batches drain on the first one instead.
	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		handler.Stop()
		os.Exit(exitCode(err))
	}
}

// newRootCmd assembles the command tree.
func newRootCmd(env *cli.Env) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "ytarticle",
		Short: "Turn YouTube captions into articles within a token budget",
		Long: `Fetch YouTube captions, shorten them with extractive summarization until
they fit a token budget, and rewrite them as an article with an LLM.
Token counts and the estimated cost of every run are reported.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.Logger = newLogger(verbose)
			slog.SetDefault(env.Logger)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print diagnostic logs to stderr")

	// Subcommands.
	rootCmd.AddCommand(cli.ArticleCmd(env))
	rootCmd.AddCommand(cli.ReduceCmd(env))
	rootCmd.AddCommand(cli.CountCmd(env))
	rootCmd.AddCommand(cli.LanguagesCmd(env))
	rootCmd.AddCommand(cli.TrendingCmd(env))
	rootCmd.AddCommand(cli.HistoryCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// newLogger returns a stderr text logger. Only errors are shown unless
// verbose; user-facing warnings are printed by the commands themselves.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) || errors.Is(err, interrupt.ErrStopped) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, youtube.ErrMissingAPIKey) ||
		errors.Is(err, article.ErrUnknownProvider) || errors.Is(err, article.ErrEmptyAPIKey) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, youtube.ErrInvalidVideoID) || errors.Is(err, pipeline.ErrOutputExists) ||
		errors.Is(err, template.ErrUnknown) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrEmptyInput) ||
		errors.Is(err, cli.ErrInvalidFlag) || errors.Is(err, reduce.ErrInvalidConfig) ||
		isConfigError(err) {
		return ExitValidation
	}

	// Failures attributed to a pipeline stage.
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case pipeline.StageFetch:
			return ExitSource
		case pipeline.StageRewrite:
			return ExitArticle
		}
	}

	// Article errors (ExitArticle = 6).
	if errors.Is(err, article.ErrTextTooLong) || errors.Is(err, article.ErrEmptyResponse) {
		return ExitArticle
	}

	// Remote source errors (ExitSource = 5).
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrBadRequest) || errors.Is(err, apierr.ErrNotFound) ||
		youtube.IsSourceUnavailable(err) {
		return ExitSource
	}

	return ExitGeneral
}

// isConfigError reports whether err comes from a rejected config value.
func isConfigError(err error) bool {
	return errors.Is(err, config.ErrInvalidKey) || errors.Is(err, config.ErrUnknownKey) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, config.ErrInvalidSyntax) ||
		errors.Is(err, config.ErrNotDirectory) || errors.Is(err, config.ErrNotWritable)
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
