// Package config loads the organizer's settings from the user's config
// directory, the environment, and defaults, in that order of precedence
// (lowest to highest: defaults, settings.yaml, environment).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	AppName          = "screenshot-organizer"
	settingsFileName = "settings.yaml"
	envFileName      = "config.env"
)

// Recognized providers.
const (
	ProviderTogether = "together"
	ProviderOllama   = "ollama"
)

const (
	defaultTogetherURL   = "https://api.together.xyz/v1"
	defaultTogetherModel = "meta-llama/Llama-3.2-11B-Vision-Instruct-Turbo"
	defaultOllamaURL     = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2-vision:11b"

	// DefaultPollInterval is the time between watch cycles.
	DefaultPollInterval = 5 * time.Minute
)

// Settings is the full configuration surface. It is passed explicitly into
// the components that need it; nothing reads ambient state after Load.
type Settings struct {
	Provider            string `yaml:"provider"`
	Model               string `yaml:"model"`
	BaseURL             string `yaml:"base_url"`
	APIKey              string `yaml:"api_key"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	HistoryDB           string `yaml:"history_db"`
	LogLevel            string `yaml:"log_level"`
}

// PollInterval returns the watch interval, falling back to the default when
// unset.
func (s Settings) PollInterval() time.Duration {
	if s.PollIntervalSeconds <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// Dir returns the organizer's directory under the user config dir.
func Dir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configBase, AppName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	dir, err := Dir()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(dir, envFileName))
}

// Load reads settings.yaml if present, applies environment overrides, and
// fills in provider-specific defaults. A missing settings file is not an
// error.
func Load() (Settings, error) {
	s := Settings{Provider: ProviderTogether}

	dir, err := Dir()
	if err == nil {
		data, readErr := os.ReadFile(filepath.Join(dir, settingsFileName))
		if readErr == nil {
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("failed to parse %s: %w", settingsFileName, err)
			}
		}
		if s.HistoryDB == "" {
			s.HistoryDB = filepath.Join(dir, "history.db")
		}
	}

	applyEnv(&s)
	s.ApplyDefaults()
	return s, nil
}

func applyEnv(s *Settings) {
	if v := os.Getenv("ORGANIZER_PROVIDER"); v != "" {
		s.Provider = v
	}
	if v := os.Getenv("ORGANIZER_MODEL"); v != "" {
		s.Model = v
	}
	if v := os.Getenv("ORGANIZER_BASE_URL"); v != "" {
		s.BaseURL = v
	}
	if v := os.Getenv("TOGETHER_API_KEY"); v != "" {
		s.APIKey = v
	}
}

// ApplyDefaults fills model and base URL for the selected provider. The
// values only apply when the user left them empty. Callers that change the
// provider after Load (e.g. via a flag) should call this again.
func (s *Settings) ApplyDefaults() {
	switch s.Provider {
	case ProviderOllama:
		if s.Model == "" {
			s.Model = defaultOllamaModel
		}
		if s.BaseURL == "" {
			s.BaseURL = defaultOllamaURL
		}
	default:
		if s.Model == "" {
			s.Model = defaultTogetherModel
		}
		if s.BaseURL == "" {
			s.BaseURL = defaultTogetherURL
		}
	}
}

// Validate checks the parts of the configuration that cannot be defaulted.
func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderTogether, ProviderOllama:
		return nil
	default:
		return fmt.Errorf("unknown provider %q (expected %q or %q)", s.Provider, ProviderTogether, ProviderOllama)
	}
}
