package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/cascade"
)

// ValidSuggesterProviders lists known suggester provider names. Used by
// [Validate] to reject unrecognised providers.
var ValidSuggesterProviders = []string{
	"openai", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Default returns the built-in configuration: neutral tone, ML corrections
// enabled, SQLite persistence next to the user's data.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel:    LogInfo,
			MetricsAddr: ":9090",
		},
		Input: InputConfig{
			TypingSpeedThresholdMs: 50,
			ProcessingDelayMs:      100,
			MaxConcurrentWords:     8,
		},
		Corrector: CorrectorConfig{
			DefaultTone:           cascade.ToneNeutral,
			DefaultFormality:      cascade.FormalityMedium,
			UseMLCorrections:      true,
			MLConfidenceThreshold: 0.7,
			CorrectionCooldownMs:  500,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   "data/autocorrect.db",
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. Fields absent from the file keep their [Default] values.
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

// LoadFromReader decodes a YAML config from r on top of the defaults and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Input.TypingSpeedThresholdMs < 0 {
		errs = append(errs, fmt.Errorf("input.typing_speed_threshold_ms %d must not be negative", cfg.Input.TypingSpeedThresholdMs))
	}
	if cfg.Input.ProcessingDelayMs < 0 {
		errs = append(errs, fmt.Errorf("input.processing_delay_ms %d must not be negative", cfg.Input.ProcessingDelayMs))
	}
	if cfg.Input.MaxConcurrentWords <= 0 {
		errs = append(errs, fmt.Errorf("input.max_concurrent_words %d must be positive", cfg.Input.MaxConcurrentWords))
	}

	if cfg.Corrector.DefaultTone != "" && !cfg.Corrector.DefaultTone.IsValid() {
		errs = append(errs, fmt.Errorf("corrector.default_tone %q is invalid; valid values: casual, neutral, formal", cfg.Corrector.DefaultTone))
	}
	if cfg.Corrector.DefaultFormality != "" && !cfg.Corrector.DefaultFormality.IsValid() {
		errs = append(errs, fmt.Errorf("corrector.default_formality %q is invalid; valid values: low, medium, high", cfg.Corrector.DefaultFormality))
	}
	if cfg.Corrector.MLConfidenceThreshold < 0 || cfg.Corrector.MLConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("corrector.ml_confidence_threshold %.2f is out of range [0, 1]", cfg.Corrector.MLConfidenceThreshold))
	}
	if cfg.Corrector.CorrectionCooldownMs < 0 {
		errs = append(errs, fmt.Errorf("corrector.correction_cooldown_ms %d must not be negative", cfg.Corrector.CorrectionCooldownMs))
	}

	if cfg.Suggester.Provider != "" && !slices.Contains(ValidSuggesterProviders, cfg.Suggester.Provider) {
		errs = append(errs, fmt.Errorf("suggester.provider %q is invalid; valid values: %v", cfg.Suggester.Provider, ValidSuggesterProviders))
	}
	if cfg.Suggester.Provider != "" && cfg.Suggester.Model == "" {
		errs = append(errs, fmt.Errorf("suggester.model is required when suggester.provider is set"))
	}

	if cfg.Store.Driver != "" && !cfg.Store.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("store.driver %q is invalid; valid values: sqlite, postgres", cfg.Store.Driver))
	}
	if cfg.Store.Driver == DriverSQLite && cfg.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required when store.driver is sqlite"))
	}
	if cfg.Store.Driver == DriverPostgres && cfg.Store.PostgresDSN == "" {
		errs = append(errs, fmt.Errorf("store.postgres_dsn is required when store.driver is postgres"))
	}

	return errors.Join(errs...)
}
