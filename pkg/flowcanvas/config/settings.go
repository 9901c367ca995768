package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/portsync"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/submit"
)

// Settings holds everything the flowcanvas command needs to run.
type Settings struct {
	// Addr is the HTTP listen address.
	Addr string `mapstructure:"addr"`

	// SubmitEndpoint is the parser service URL.
	SubmitEndpoint string `mapstructure:"submit_endpoint"`

	// SubmitTimeout bounds one submission.
	SubmitTimeout time.Duration `mapstructure:"submit_timeout"`

	// QuietPeriod is the port synchronization debounce.
	QuietPeriod time.Duration `mapstructure:"quiet_period"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// EventBuffer is the per-subscriber buffer of the change stream.
	EventBuffer int `mapstructure:"event_buffer"`
}

// Defaults returns the settings used when no file overrides them.
func Defaults() Settings {
	return Settings{
		Addr:           ":8080",
		SubmitEndpoint: submit.DefaultEndpoint,
		SubmitTimeout:  10 * time.Second,
		QuietPeriod:    portsync.DefaultQuietPeriod,
		LogLevel:       "info",
		EventBuffer:    64,
	}
}

// LoadSettings reads path and overlays its values on Defaults.
// An empty path returns Defaults.
func LoadSettings(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}

	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	if err := cfg.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("load %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	var errs []error
	if s.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if s.SubmitEndpoint == "" {
		errs = append(errs, errors.New("submit_endpoint is required"))
	}
	if s.SubmitTimeout < 0 {
		errs = append(errs, fmt.Errorf("submit_timeout must not be negative, got %s", s.SubmitTimeout))
	}
	if s.QuietPeriod < 0 {
		errs = append(errs, fmt.Errorf("quiet_period must not be negative, got %s", s.QuietPeriod))
	}
	if s.EventBuffer <= 0 {
		errs = append(errs, fmt.Errorf("event_buffer must be positive, got %d", s.EventBuffer))
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", s.LogLevel))
	}
	return errors.Join(errs...)
}
