package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [LoadFromReader] when the corresponding field is zero.
const (
	DefaultCloudThreshold    = 26
	DefaultFallbackMinWords  = 20
	DefaultMaxClarifyTurns   = 3
	DefaultPhoneticThreshold = 0.70
	DefaultFuzzyThreshold    = 0.85
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
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

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued tuning fields with the built-in defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Understanding.CloudThreshold == 0 {
		cfg.Understanding.CloudThreshold = DefaultCloudThreshold
	}
	if cfg.Understanding.FallbackMinWords == 0 {
		cfg.Understanding.FallbackMinWords = DefaultFallbackMinWords
	}
	if cfg.Understanding.MaxClarifyTurns == 0 {
		cfg.Understanding.MaxClarifyTurns = DefaultMaxClarifyTurns
	}
	if cfg.Understanding.Correction.PhoneticThreshold == 0 {
		cfg.Understanding.Correction.PhoneticThreshold = DefaultPhoneticThreshold
	}
	if cfg.Understanding.Correction.FuzzyThreshold == 0 {
		cfg.Understanding.Correction.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = LedgerMemory
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Understanding.CloudThreshold < 0 {
		errs = append(errs, fmt.Errorf("understanding.cloud_threshold %d must not be negative", cfg.Understanding.CloudThreshold))
	}
	if cfg.Understanding.FallbackMinWords < 0 {
		errs = append(errs, fmt.Errorf("understanding.fallback_min_words %d must not be negative", cfg.Understanding.FallbackMinWords))
	}
	if cfg.Understanding.MaxClarifyTurns < 1 {
		errs = append(errs, fmt.Errorf("understanding.max_clarify_turns %d must be at least 1", cfg.Understanding.MaxClarifyTurns))
	}
	if t := cfg.Understanding.Correction.PhoneticThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("understanding.correction.phonetic_threshold %.2f is out of range [0, 1]", t))
	}
	if t := cfg.Understanding.Correction.FuzzyThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("understanding.correction.fuzzy_threshold %.2f is out of range [0, 1]", t))
	}
	if !cfg.Ledger.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("ledger.backend %q is invalid; valid values: memory, postgres", cfg.Ledger.Backend))
	}
	if cfg.Ledger.Backend == LedgerPostgres && cfg.Ledger.PostgresDSN == "" {
		errs = append(errs, errors.New("ledger.postgres_dsn is required when ledger.backend is postgres"))
	}
	if cfg.Speech.STT.Name != "" && cfg.Speech.STT.Name != "openai" {
		errs = append(errs, fmt.Errorf("speech.stt.name %q is invalid; valid values: openai", cfg.Speech.STT.Name))
	}
	if cfg.Speech.TTS.Name != "" && cfg.Speech.TTS.Name != "openai" {
		errs = append(errs, fmt.Errorf("speech.tts.name %q is invalid; valid values: openai", cfg.Speech.TTS.Name))
	}

	return errors.Join(errs...)
}
