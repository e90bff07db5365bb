package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-ytarticle/internal/format"
)

// encodingNamer is implemented by meters that report their tokenizer.
type encodingNamer interface {
	Encoding() string
}

// CountCmd creates the count command (token count and cost estimate).
// The env parameter provides injectable dependencies for testing.
func CountCmd(env *Env) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "count [file|-]",
		Short: "Count tokens and estimate the input cost of a text",
		Long: `Count the tokens of a text with the model's tokenizer and estimate
what sending it as input would cost. Reads stdin when no file is given.`,
		Example: `  ytarticle count dQw4w9WgXcQ_transcript.txt
  ytarticle count notes.txt --model gpt-4o
  pbpaste | ytarticle count`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := stdinArg
			if len(args) == 1 {
				path = args[0]
			}
			return runCount(env, path, model)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model whose tokenizer counts tokens (default: config or gpt-4o-mini)")

	return cmd
}

// runCount prints the token count and input cost of the text at path.
func runCount(env *Env, path, model string) error {
	cfg := loadConfig(env)

	text, err := readInput(env, path)
	if err != nil {
		return err
	}

	if model == "" {
		model = cfg.Model
	}
	meter := env.MeterFactory.NewMeter(model, pricing(cfg), env.logger())
	n := meter.Count(text)

	fmt.Fprintf(env.Stdout, "Tokens: %s\n", format.Count(int64(n)))
	if named, ok := meter.(encodingNamer); ok {
		fmt.Fprintf(env.Stdout, "Encoding: %s\n", named.Encoding())
	}
	fmt.Fprintf(env.Stdout, "Estimated input cost: %s\n", format.Cost(meter.EstimateInputCost(n)))
	return nil
}
