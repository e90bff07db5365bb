package cli

import (
	"fmt"

	"github.com/alnah/go-ytarticle/internal/article"
)

// EnvYouTubeAPIKey holds the YouTube Data API key used by trending.
const EnvYouTubeAPIKey = "YT_DATA_API_KEY"

// resolveProvider picks the flag value, then the configured value, then OpenAI.
func resolveProvider(flag, configured string) (article.Provider, error) {
	if flag != "" {
		return article.ParseProvider(flag)
	}
	return article.ParseProvider(configured)
}

// providerAPIKey returns the API key of p from the environment.
func providerAPIKey(env *Env, p article.Provider) (string, error) {
	key := env.Getenv(p.EnvKey())
	if key == "" {
		return "", fmt.Errorf("%s: %w (set it with: export %s=sk-...)", p.EnvKey(), ErrAPIKeyMissing, p.EnvKey())
	}
	return key, nil
}
