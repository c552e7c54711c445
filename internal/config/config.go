// Package config provides configuration management functionality for the vidresume application.
package config

import (
	"fmt"
	"time"

	"github.com/connorhough/vidresume/internal/browser"
	"github.com/connorhough/vidresume/internal/layout"
	"github.com/connorhough/vidresume/internal/logging"
	"github.com/connorhough/vidresume/internal/session"
	"github.com/connorhough/vidresume/internal/video"
	"github.com/spf13/viper"
)

// GetValue retrieves a configuration value by key
func GetValue(key string) (string, error) {
	if !viper.IsSet(key) {
		return "", fmt.Errorf("key '%s' not found in configuration", key)
	}
	return viper.GetString(key), nil
}

// SetValue sets a configuration value by key and persists it to the config file
func SetValue(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfig()
}

// SetDefaults registers the default for every known key so that env
// variables and GetValue see them without a config file.
func SetDefaults() {
	viper.SetDefault("browser.path", browser.DefaultExecutable())
	viper.SetDefault("browser.window_class", browser.DefaultWindowClass())
	viper.SetDefault("browser.flags", browser.DefaultFlags)

	viper.SetDefault("grid.cell_width", layout.CellWidth)
	viper.SetDefault("grid.cell_height", layout.CellHeight)
	viper.SetDefault("click.offset_x", 320)
	viper.SetDefault("click.offset_y", 384)

	viper.SetDefault("timing.settle", "3s")
	viper.SetDefault("timing.click_gap", "500ms")
	viper.SetDefault("timing.play", "1s")
	viper.SetDefault("timing.linger", "3s")

	viper.SetDefault("correlation.poll_interval", "250ms")
	viper.SetDefault("correlation.max_attempts", 40)
	viper.SetDefault("correlation.timeout", "15s")

	viper.SetDefault("seek.end_margin", "5s")
	viper.SetDefault("seek.min_position", "1s")
	viper.SetDefault("seek.param", "t")

	viper.SetDefault("log_level", "info")
	viper.SetDefault("metrics_file", "")
}

// Settings is the resolved configuration of a restore run.
type Settings struct {
	BrowserPath  string
	BrowserFlags []string
	WindowClass  string

	Session session.Options

	LogLevel    string
	MetricsFile string
}

// Load resolves Settings from viper. Precedence: flags bound by the
// command layer -> env -> config file -> defaults.
func Load() (*Settings, error) {
	opts := session.DefaultOptions()

	opts.CellWidth = viper.GetInt("grid.cell_width")
	opts.CellHeight = viper.GetInt("grid.cell_height")
	opts.ClickOffset = layout.Point{X: viper.GetInt("click.offset_x"), Y: viper.GetInt("click.offset_y")}

	opts.SettleDelay = viper.GetDuration("timing.settle")
	opts.ClickGap = viper.GetDuration("timing.click_gap")
	opts.PlayDelay = viper.GetDuration("timing.play")
	opts.LingerDelay = viper.GetDuration("timing.linger")

	opts.Correlation = session.CorrelatorOptions{
		WindowClass:  viper.GetString("browser.window_class"),
		PollInterval: viper.GetDuration("correlation.poll_interval"),
		MaxAttempts:  viper.GetInt("correlation.max_attempts"),
		Timeout:      viper.GetDuration("correlation.timeout"),
	}

	opts.Seek = video.SeekOptions{
		MinPosition: viper.GetDuration("seek.min_position"),
		EndMargin:   viper.GetDuration("seek.end_margin"),
		Param:       viper.GetString("seek.param"),
	}

	s := &Settings{
		BrowserPath:  viper.GetString("browser.path"),
		BrowserFlags: viper.GetStringSlice("browser.flags"),
		WindowClass:  opts.Correlation.WindowClass,
		Session:      opts,
		LogLevel:     viper.GetString("log_level"),
		MetricsFile:  viper.GetString("metrics_file"),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects settings a session cannot run with.
func (s *Settings) Validate() error {
	o := s.Session
	if o.CellWidth <= 0 || o.CellHeight <= 0 {
		return fmt.Errorf("grid cell size must be positive, got %dx%d", o.CellWidth, o.CellHeight)
	}
	if o.ClickOffset.X < 0 || o.ClickOffset.X >= o.CellWidth || o.ClickOffset.Y < 0 || o.ClickOffset.Y >= o.CellHeight {
		return fmt.Errorf("click offset %d,%d lies outside the %dx%d cell", o.ClickOffset.X, o.ClickOffset.Y, o.CellWidth, o.CellHeight)
	}
	for key, d := range map[string]time.Duration{
		"timing.settle":             o.SettleDelay,
		"timing.click_gap":          o.ClickGap,
		"timing.play":               o.PlayDelay,
		"timing.linger":             o.LingerDelay,
		"correlation.poll_interval": o.Correlation.PollInterval,
		"correlation.timeout":       o.Correlation.Timeout,
		"seek.end_margin":           o.Seek.EndMargin,
		"seek.min_position":         o.Seek.MinPosition,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", key, d)
		}
	}
	if o.Correlation.MaxAttempts <= 0 {
		return fmt.Errorf("correlation.max_attempts must be positive, got %d", o.Correlation.MaxAttempts)
	}
	if o.Correlation.WindowClass == "" {
		return fmt.Errorf("browser.window_class must not be empty")
	}
	if o.Seek.Param == "" {
		return fmt.Errorf("seek.param must not be empty")
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logging returns the logger configuration for the settings.
func (s *Settings) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = s.LogLevel
	return cfg
}
