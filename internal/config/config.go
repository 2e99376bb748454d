package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"meetscribe/internal/app/errors"
)

// RetryPolicyConfig is the configurable backoff policy for the transcription
// orchestrator. Intervals are milliseconds in the config file.
type RetryPolicyConfig struct {
	MaxAttempts       int     `yaml:"max_attempts" validate:"gte=1"`
	InitialIntervalMs int64   `yaml:"initial_interval_ms" validate:"gte=1"`
	MaxIntervalMs     int64   `yaml:"max_interval_ms" validate:"gte=1"`
	Multiplier        float64 `yaml:"multiplier" validate:"gte=1"`
}

// InitialInterval returns the initial backoff interval as a duration.
func (r RetryPolicyConfig) InitialInterval() time.Duration {
	return time.Duration(r.InitialIntervalMs) * time.Millisecond
}

// MaxInterval returns the backoff cap as a duration.
func (r RetryPolicyConfig) MaxInterval() time.Duration {
	return time.Duration(r.MaxIntervalMs) * time.Millisecond
}

// TranscriptionConfig groups the speech service settings.
type TranscriptionConfig struct {
	BaseURL string `yaml:"base_url" validate:"required,url"`
	// Submit covers upload/submit calls, Poll covers the status loop.
	Submit RetryPolicyConfig `yaml:"submit_retry_policy"`
	Poll   RetryPolicyConfig `yaml:"poll_retry_policy"`
}

// Config is the full configuration surface of the tool.
type Config struct {
	MeetingsDir      string              `yaml:"meetings_dir" validate:"required"`
	Bitrate          string              `yaml:"bitrate" validate:"required"`
	SpeakersExpected int                 `yaml:"speakers_expected" validate:"gte=0,lte=10"`
	LanguageCode     string              `yaml:"language_code" validate:"required"`
	Debug            bool                `yaml:"debug"`
	Transcription    TranscriptionConfig `yaml:"transcription"`

	// APIKey comes from the environment only, never the config file.
	APIKey string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MeetingsDir:      defaultMeetingsDir(),
		Bitrate:          "192k",
		SpeakersExpected: 0,
		LanguageCode:     "en",
		Transcription: TranscriptionConfig{
			BaseURL: "https://api.assemblyai.com/v2",
			Submit: RetryPolicyConfig{
				MaxAttempts:       3,
				InitialIntervalMs: 1000,
				MaxIntervalMs:     30000,
				Multiplier:        2.0,
			},
			Poll: RetryPolicyConfig{
				MaxAttempts:       60,
				InitialIntervalMs: 2000,
				MaxIntervalMs:     30000,
				Multiplier:        1.5,
			},
		},
	}
}

// Load reads configuration from the given file path (or the default location
// when path is empty), applies environment overrides, validates, and ensures
// the meetings directory exists.
func Load(path string) (*Config, error) {
	// .env is optional; system environment may carry the key already.
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parsing config file %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	applyEnvOverrides(cfg)
	cfg.MeetingsDir = expandTilde(cfg.MeetingsDir)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	if err := os.MkdirAll(cfg.MeetingsDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating meetings directory")
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("MEETSCRIBE_MEETINGS_DIR"); v != "" {
		cfg.MeetingsDir = v
	}
	if v := os.Getenv("MEETSCRIBE_BITRATE"); v != "" {
		cfg.Bitrate = v
	}
	if v := os.Getenv("MEETSCRIBE_LANGUAGE_CODE"); v != "" {
		cfg.LanguageCode = v
	}
	if v := os.Getenv("MEETSCRIBE_SPEAKERS_EXPECTED"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SpeakersExpected = n
		}
	}
	if v := os.Getenv("MEETSCRIBE_DEBUG"); v != "" {
		cfg.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

func defaultConfigPath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "meetscribe")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "meetscribe")
	} else {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

func defaultMeetingsDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "meetings")
	}
	return filepath.Join(".", "meetings")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
