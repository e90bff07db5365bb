package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-ytarticle/internal/article"
	"github.com/alnah/go-ytarticle/internal/config"
	"github.com/alnah/go-ytarticle/internal/lang"
	"github.com/alnah/go-ytarticle/internal/template"
)

// configKeyHelp is the key reference shown in config help texts.
var configKeyHelp = `  output-dir            Default directory for transcript and article files
  provider              LLM provider: openai, deepseek
  model                 Chat model (default: provider's model)
  style                 Article style: ` + strings.Join(template.Names(), ", ") + `
  languages             Preferred caption languages, comma-separated
  max-tokens            Token budget of the text sent for rewriting
  retention-cap         Highest fraction of sentences kept per round (0-1]
  ratio-floor           Lowest fraction of sentences kept per round (0-1)
  first-fallback-words  Word target of the first round when ratio selects nothing
  fallback-words        Word target of later rounds
  input-cost-per-1k     USD per 1000 input tokens
  output-cost-per-1k    USD per 1000 output tokens
  rewrite-timeout       Time limit of one rewrite request, e.g. 90s (default: 2m)
  max-retries           Retries of a failed rewrite request (default: 3)
  history-db            Path of the run history database`

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-ytarticle/config.
Every key can also be set with an environment variable named
YTARTICLE_<KEY>, e.g. YTARTICLE_MAX_TOKENS. The config file wins.

Supported settings:
` + configKeyHelp,
		Example: `  ytarticle config set output-dir ~/Documents/articles
  ytarticle config set max-tokens 3000
  ytarticle config get provider
  ytarticle config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Supported keys:
` + configKeyHelp + `

The output directory is created if it doesn't exist.`,
		Example: `  ytarticle config set output-dir ~/Documents/articles
  ytarticle config set provider deepseek
  ytarticle config set languages fr,en`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return runConfigSet(env, key, value)
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  ytarticle config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable fallbacks.`,
		Example: `  ytarticle config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !config.IsKnownKey(key) {
		return unknownKeyError(key)
	}

	value, err := normalizeConfigValue(key, value)
	if err != nil {
		return err
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// normalizeConfigValue validates value for key and returns the form to store.
func normalizeConfigValue(key, value string) (string, error) {
	value = strings.TrimSpace(value)

	switch key {
	case config.KeyOutputDir:
		// Expand ~ and validate directory.
		expanded := config.ExpandPath(value)
		if err := config.EnsureOutputDir(expanded); err != nil {
			return "", fmt.Errorf("invalid output-dir: %w", err)
		}
		return expanded, nil
	case config.KeyHistoryDB:
		return config.ExpandPath(value), nil
	case config.KeyProvider:
		p, err := article.ParseProvider(value)
		if err != nil {
			return "", err
		}
		return string(p), nil
	case config.KeyStyle:
		name, err := template.ParseName(value)
		if err != nil {
			return "", err
		}
		return name.String(), nil
	case config.KeyLanguages:
		codes, err := lang.ParseList(value)
		if err != nil {
			return "", err
		}
		return strings.Join(codes, ","), nil
	}

	if err := config.Validate(key, value); err != nil {
		return "", err
	}
	return value, nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !config.IsKnownKey(key) {
		return unknownKeyError(key)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Environment variable fallback.
	if value == "" {
		value = env.Getenv(config.EnvVar(key))
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	var lines []string
	for _, key := range config.Keys {
		if v, ok := data[key]; ok {
			lines = append(lines, fmt.Sprintf("%s=%s", key, v))
			continue
		}
		if v := env.Getenv(config.EnvVar(key)); v != "" {
			lines = append(lines, fmt.Sprintf("%s=%s (from env)", key, v))
		}
	}

	if len(lines) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	for _, line := range lines {
		fmt.Fprintln(env.Stdout, line)
	}
	return nil
}

func unknownKeyError(key string) error {
	return fmt.Errorf("%q (valid keys: %s): %w", key, strings.Join(config.Keys, ", "), config.ErrUnknownKey)
}
