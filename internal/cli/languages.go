package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-ytarticle/internal/lang"
	"github.com/alnah/go-ytarticle/internal/youtube"
)

// LanguagesCmd creates the languages command (list caption languages).
// The env parameter provides injectable dependencies for testing.
func LanguagesCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "languages <video-id-or-url>",
		Short: "List the caption languages of a video",
		Long: `List the caption languages published for a YouTube video, one per line,
with their display names. Use them with --lang or the languages setting.`,
		Example: `  ytarticle languages dQw4w9WgXcQ
  ytarticle languages https://www.youtube.com/watch?v=dQw4w9WgXcQ`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := youtube.ParseVideoID(args[0])
			if err != nil {
				return err
			}
			return runLanguages(cmd.Context(), env, id)
		},
	}
}

// runLanguages prints the caption languages of videoID to stdout.
func runLanguages(ctx context.Context, env *Env, videoID string) error {
	source := env.SourceFactory.NewSource(nil, env.logger())

	codes, err := source.ListLanguages(ctx, videoID)
	if errors.Is(err, youtube.ErrNoCaptions) || errors.Is(err, youtube.ErrCaptionsDisabled) {
		codes, err = nil, nil
	}
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		fmt.Fprintf(env.Stderr, "No captions available for %s\n", videoID)
		return nil
	}

	for _, code := range codes {
		fmt.Fprintf(env.Stdout, "%s\t%s\n", code, lang.DisplayName(code))
	}
	return nil
}
