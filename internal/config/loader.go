package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultJournalPath is used when journal.path is not configured.
const DefaultJournalPath = "duskvale-journal.txt"

// ValidLLMProviderNames lists known model backend names.
// Used by [Validate] to warn about unrecognised provider names.
var ValidLLMProviderNames = []string{
	"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown names, they may be typos.
	validateProviderName("providers.llm", cfg.Providers.LLM.Name)
	for i, entry := range cfg.Providers.LLMFallbacks {
		prefix := fmt.Sprintf("providers.llm_fallbacks[%d]", i)
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		validateProviderName(prefix, entry.Name)
	}

	if cfg.Providers.LLM.Name == "" {
		if len(cfg.Providers.LLMFallbacks) > 0 {
			errs = append(errs, errors.New("providers.llm_fallbacks configured without a primary providers.llm"))
		} else {
			slog.Warn("no model backend configured; characters will only serve canned replies")
		}
	}

	// Journal backend is exclusive: DSN wins, warn when both are set.
	if cfg.Journal.PostgresDSN != "" && cfg.Journal.Path != "" {
		slog.Warn("journal.path is ignored because journal.postgres_dsn is set")
	}

	if cfg.Game.CallTimeout < 0 {
		errs = append(errs, fmt.Errorf("game.call_timeout %s must not be negative", cfg.Game.CallTimeout))
	}

	return errors.Join(errs...)
}

// applyDefaults fills in defaults after successful validation.
func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = "*"
	}
}

// validateProviderName logs a warning if name is non-empty and not found in
// [ValidLLMProviderNames].
func validateProviderName(key, name string) {
	if name == "" || slices.Contains(ValidLLMProviderNames, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"key", key,
		"name", name,
		"known", ValidLLMProviderNames,
	)
}
