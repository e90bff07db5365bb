// Package config reads and writes the user configuration file.
//
// The file lives at ~/.config/go-ytarticle/config (or under XDG_CONFIG_HOME)
// and holds one key=value per line. Every key has a YTARTICLE_* environment
// variable used when the file does not set it.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config keys.
const (
	KeyOutputDir          = "output-dir"
	KeyProvider           = "provider"
	KeyModel              = "model"
	KeyStyle              = "style"
	KeyLanguages          = "languages"
	KeyMaxTokens          = "max-tokens"
	KeyRetentionCap       = "retention-cap"
	KeyRatioFloor         = "ratio-floor"
	KeyFirstFallbackWords = "first-fallback-words"
	KeyFallbackWords      = "fallback-words"
	KeyInputCostPer1K     = "input-cost-per-1k"
	KeyOutputCostPer1K    = "output-cost-per-1k"
	KeyRewriteTimeout     = "rewrite-timeout"
	KeyMaxRetries         = "max-retries"
	KeyHistoryDB          = "history-db"
)

// Keys lists every key the application reads, in display order.
var Keys = []string{
	KeyOutputDir,
	KeyProvider,
	KeyModel,
	KeyStyle,
	KeyLanguages,
	KeyMaxTokens,
	KeyRetentionCap,
	KeyRatioFloor,
	KeyFirstFallbackWords,
	KeyFallbackWords,
	KeyInputCostPer1K,
	KeyOutputCostPer1K,
	KeyRewriteTimeout,
	KeyMaxRetries,
	KeyHistoryDB,
}

// envPrefix prefixes the environment variable fallback of every key.
const envPrefix = "YTARTICLE_"

// appName names the configuration directory.
const appName = "go-ytarticle"

// Config holds user configuration loaded from ~/.config/go-ytarticle/config.
// Zero values mean "not configured"; callers apply their own defaults.
type Config struct {
	OutputDir string
	Provider  string
	Model     string
	Style     string
	Languages string
	HistoryDB string

	MaxTokens          int
	FirstFallbackWords int
	FallbackWords      int
	MaxRetries         int // retries per rewrite request
	RetentionCap       float64
	RatioFloor         float64
	InputCostPer1K     float64
	OutputCostPer1K    float64
	RewriteTimeout     time.Duration // per rewrite request
}

// EnvVar returns the environment variable consulted for key.
// Example: "max-tokens" -> "YTARTICLE_MAX_TOKENS".
func EnvVar(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// IsKnownKey reports whether key is read by the application.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-ytarticle.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
// Unknown keys in the file are ignored; malformed values are not.
func Load() (Config, error) {
	p, err := path()
	if err != nil {
		return Config{}, err
	}

	data, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	for _, key := range Keys {
		value := data[key]
		if value == "" {
			value = strings.TrimSpace(os.Getenv(EnvVar(key)))
		}
		if value == "" {
			continue
		}
		if err := cfg.set(key, value); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// Validate checks that value parses for key.
// Used before persisting a value with Save.
func Validate(key, value string) error {
	var cfg Config
	return cfg.set(key, value)
}

// set parses value and assigns it to the field backing key.
func (c *Config) set(key, value string) error {
	var err error
	switch key {
	case KeyOutputDir:
		c.OutputDir = value
	case KeyProvider:
		c.Provider = strings.ToLower(value)
	case KeyModel:
		c.Model = value
	case KeyStyle:
		c.Style = strings.ToLower(value)
	case KeyLanguages:
		c.Languages = value
	case KeyHistoryDB:
		c.HistoryDB = value
	case KeyMaxTokens:
		c.MaxTokens, err = parsePositiveInt(key, value)
	case KeyFirstFallbackWords:
		c.FirstFallbackWords, err = parsePositiveInt(key, value)
	case KeyFallbackWords:
		c.FallbackWords, err = parsePositiveInt(key, value)
	case KeyMaxRetries:
		c.MaxRetries, err = parsePositiveInt(key, value)
	case KeyRewriteTimeout:
		c.RewriteTimeout, err = parseDuration(key, value)
	case KeyRetentionCap:
		c.RetentionCap, err = parseFraction(key, value, true)
	case KeyRatioFloor:
		c.RatioFloor, err = parseFraction(key, value, false)
	case KeyInputCostPer1K:
		c.InputCostPer1K, err = parseCost(key, value)
	case KeyOutputCostPer1K:
		c.OutputCostPer1K, err = parseCost(key, value)
	default:
		return fmt.Errorf("%q (valid keys: %s): %w", key, strings.Join(Keys, ", "), ErrUnknownKey)
	}
	return err
}

func parsePositiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s=%q must be a positive integer: %w", key, value, ErrInvalidValue)
	}
	return n, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s=%q must be a positive duration such as 90s or 2m: %w", key, value, ErrInvalidValue)
	}
	return d, nil
}

// parseFraction accepts (0, 1), or (0, 1] when inclusive is set.
func parseFraction(key, value string, inclusive bool) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	valid := err == nil && f > 0 && (f < 1 || (inclusive && f == 1))
	if !valid {
		bound := "(0, 1)"
		if inclusive {
			bound = "(0, 1]"
		}
		return 0, fmt.Errorf("%s=%q must be a number in %s: %w", key, value, bound, ErrInvalidValue)
	}
	return f, nil
}

func parseCost(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%s=%q must be a non-negative number: %w", key, value, ErrInvalidValue)
	}
	return f, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: %q: %w", lineNum, line, ErrInvalidSyntax)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	if key == "" || strings.ContainsAny(key, "=\n\r") {
		return fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	if strings.ContainsAny(value, "\n\r") {
		return fmt.Errorf("%s: value contains a line break: %w", key, ErrInvalidValue)
	}

	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return f.Close()
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
//
// All paths are cleaned using filepath.Clean.
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}

	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}

	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// EnsureOutputDir checks that d can hold artifacts, creating it if missing.
// A leading ~/ is expanded to the home directory.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("%s cannot be empty: %w", KeyOutputDir, ErrInvalidValue)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access directory: %w", err)
		}
		if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
			return fmt.Errorf("cannot create directory %s: %w", d, err)
		}
		return nil
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", d, ErrNotDirectory)
	}

	testFile := filepath.Join(d, ".go-ytarticle-write-test")
	f, err := os.Create(testFile) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return fmt.Errorf("%s: %w", d, ErrNotWritable)
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	return dir()
}
