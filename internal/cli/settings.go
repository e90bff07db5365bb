package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alnah/go-ytarticle/internal/config"
	"github.com/alnah/go-ytarticle/internal/lang"
	"github.com/alnah/go-ytarticle/internal/reduce"
	"github.com/alnah/go-ytarticle/internal/store"
	"github.com/alnah/go-ytarticle/internal/summarize"
	"github.com/alnah/go-ytarticle/internal/token"
)

// maxParallel bounds concurrent pipelines in a batch.
const maxParallel = 5

// clampParallel constrains the batch concurrency to [1, maxParallel].
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxParallel {
		return maxParallel
	}
	return n
}

// reduceConfig builds the reduction config from defaults, then config
// values, then the --max-tokens flag (0 = unset).
func reduceConfig(cfg config.Config, maxTokens int) (reduce.Config, error) {
	rc := reduce.DefaultConfig()
	if cfg.MaxTokens > 0 {
		rc.MaxTokens = cfg.MaxTokens
	}
	if cfg.RetentionCap > 0 {
		rc.RetentionCap = cfg.RetentionCap
	}
	if cfg.RatioFloor > 0 {
		rc.RatioFloor = cfg.RatioFloor
	}
	if cfg.FirstFallbackWords > 0 {
		rc.FirstFallbackWords = cfg.FirstFallbackWords
	}
	if cfg.FallbackWords > 0 {
		rc.FallbackWords = cfg.FallbackWords
	}
	if maxTokens != 0 {
		rc.MaxTokens = maxTokens
	}
	if err := rc.Validate(); err != nil {
		return reduce.Config{}, err
	}
	return rc, nil
}

// pricing returns the configured rates, defaulting each unset one.
func pricing(cfg config.Config) token.Pricing {
	p := token.DefaultPricing()
	if cfg.InputCostPer1K > 0 {
		p.InputPer1K = cfg.InputCostPer1K
	}
	if cfg.OutputCostPer1K > 0 {
		p.OutputPer1K = cfg.OutputCostPer1K
	}
	return p
}

// captionLanguages returns the caption preferences from the flag, else the config.
func captionLanguages(flag string, cfg config.Config) ([]string, error) {
	if flag != "" {
		return lang.ParseList(flag)
	}
	return lang.ParseList(cfg.Languages)
}

// summarizerFactory builds TextRank summarizers stemming for code.
func summarizerFactory(env *Env, code string) summarize.Factory {
	return summarize.NewFactory(summarize.WithLanguage(code), summarize.WithLogger(env.logger()))
}

// firstLanguage returns the most preferred language, English when there is none.
func firstLanguage(prefs []string) string {
	if len(prefs) > 0 {
		return prefs[0]
	}
	return "en"
}

// historyPath returns the history database path: the history-db setting,
// else history.db in the config directory.
func historyPath(cfg config.Config) (string, error) {
	if cfg.HistoryDB != "" {
		return config.ExpandPath(cfg.HistoryDB), nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot locate history database: %w", err)
	}
	return filepath.Join(dir, store.DefaultFile), nil
}

// loadConfig loads the config. Failures are printed as a warning and an
// empty Config is returned.
func loadConfig(env *Env) config.Config {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	return cfg
}
