package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/connorhough/vidresume/internal/layout"
	"github.com/spf13/viper"
)

func loadFrom(t *testing.T, content string) (*Settings, error) {
	t.Helper()

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	s, err := loadFrom(t, "log_level: info\n")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	o := s.Session
	if o.CellWidth != 640 || o.CellHeight != 480 {
		t.Errorf("cell: got %dx%d, want 640x480", o.CellWidth, o.CellHeight)
	}
	if o.ClickOffset != (layout.Point{X: 320, Y: 384}) {
		t.Errorf("click offset: got %+v", o.ClickOffset)
	}

	durations := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"settle", o.SettleDelay, 3 * time.Second},
		{"click gap", o.ClickGap, 500 * time.Millisecond},
		{"play", o.PlayDelay, time.Second},
		{"linger", o.LingerDelay, 3 * time.Second},
		{"poll interval", o.Correlation.PollInterval, 250 * time.Millisecond},
		{"correlation timeout", o.Correlation.Timeout, 15 * time.Second},
		{"end margin", o.Seek.EndMargin, 5 * time.Second},
		{"min position", o.Seek.MinPosition, time.Second},
	}
	for _, d := range durations {
		if d.got != d.want {
			t.Errorf("%s: got %s, want %s", d.name, d.got, d.want)
		}
	}

	if o.Correlation.MaxAttempts != 40 {
		t.Errorf("max attempts: got %d, want 40", o.Correlation.MaxAttempts)
	}
	if o.Seek.Param != "t" {
		t.Errorf("seek param: got %q, want t", o.Seek.Param)
	}
	if len(s.BrowserFlags) != 3 {
		t.Errorf("browser flags: got %v", s.BrowserFlags)
	}
	if s.WindowClass == "" || s.WindowClass != o.Correlation.WindowClass {
		t.Errorf("window class: got %q / %q", s.WindowClass, o.Correlation.WindowClass)
	}
	if s.MetricsFile != "" {
		t.Errorf("metrics file should be disabled by default, got %q", s.MetricsFile)
	}
}

func TestLoadOverrides(t *testing.T) {
	s, err := loadFrom(t, `
browser:
  path: /opt/chromium/chrome
  window_class: chromium
  flags: ["--new-window"]
grid:
  cell_width: 800
  cell_height: 600
click:
  offset_x: 400
  offset_y: 450
timing:
  settle: 5s
  click_gap: 250ms
correlation:
  max_attempts: 10
seek:
  param: start
log_level: debug
metrics_file: /tmp/vidresume.prom
`)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.BrowserPath != "/opt/chromium/chrome" {
		t.Errorf("browser path: got %q", s.BrowserPath)
	}
	if s.Session.Correlation.WindowClass != "chromium" {
		t.Errorf("window class: got %q", s.Session.Correlation.WindowClass)
	}
	if len(s.BrowserFlags) != 1 || s.BrowserFlags[0] != "--new-window" {
		t.Errorf("flags: got %v", s.BrowserFlags)
	}
	if s.Session.CellWidth != 800 || s.Session.ClickOffset.Y != 450 {
		t.Errorf("grid: got %dx%d offset %+v", s.Session.CellWidth, s.Session.CellHeight, s.Session.ClickOffset)
	}
	if s.Session.SettleDelay != 5*time.Second || s.Session.ClickGap != 250*time.Millisecond {
		t.Errorf("timing: got settle %s gap %s", s.Session.SettleDelay, s.Session.ClickGap)
	}
	// Keys absent from the file keep their defaults.
	if s.Session.PlayDelay != time.Second {
		t.Errorf("play delay: got %s, want 1s", s.Session.PlayDelay)
	}
	if s.Session.Correlation.MaxAttempts != 10 {
		t.Errorf("max attempts: got %d", s.Session.Correlation.MaxAttempts)
	}
	if s.Session.Seek.Param != "start" {
		t.Errorf("seek param: got %q", s.Session.Seek.Param)
	}
	if s.Logging().Level != "debug" {
		t.Errorf("log level: got %q", s.Logging().Level)
	}
	if s.MetricsFile != "/tmp/vidresume.prom" {
		t.Errorf("metrics file: got %q", s.MetricsFile)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero cell", "grid:\n  cell_width: 0\n"},
		{"click outside cell", "click:\n  offset_x: 700\n"},
		{"negative delay", "timing:\n  settle: -1s\n"},
		{"no poll attempts", "correlation:\n  max_attempts: 0\n"},
		{"empty seek param", "seek:\n  param: \"\"\n"},
		{"unknown log level", "log_level: verbose\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadFrom(t, tt.content); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestGetValue(t *testing.T) {
	if _, err := loadFrom(t, "log_level: warn\n"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, err := GetValue("log_level")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if got != "warn" {
		t.Errorf("log_level: got %q, want warn", got)
	}

	// Defaults are visible too.
	if got, _ := GetValue("timing.click_gap"); got != "500ms" {
		t.Errorf("timing.click_gap: got %q, want 500ms", got)
	}

	if _, err := GetValue("no.such.key"); err == nil {
		t.Error("expected an error for a missing key")
	}
}

func TestSetValuePersists(t *testing.T) {
	if _, err := loadFrom(t, "log_level: info\n"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	path := viper.ConfigFileUsed()

	if err := SetValue("timing.linger", "10s"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	viper.Reset()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("failed to re-read config: %v", err)
	}
	if got := viper.GetDuration("timing.linger"); got != 10*time.Second {
		t.Errorf("timing.linger: got %s, want 10s", got)
	}
}
