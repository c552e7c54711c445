package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureConfigExists(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := EnsureConfigExists(configPath)
	if err != nil {
		t.Fatalf("EnsureConfigExists failed: %v", err)
	}
	if !created {
		t.Error("expected the file to be created")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read created config: %v", err)
	}

	for _, expected := range []string{"grid:", "timing:", "correlation:", "log_level: info"} {
		if !strings.Contains(string(content), expected) {
			t.Errorf("config missing expected content: %q", expected)
		}
	}
}

func TestEnsureConfigExistsIdempotent(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if _, err := EnsureConfigExists(configPath); err != nil {
		t.Fatalf("first call failed: %v", err)
	}

	customContent := []byte("# custom config\nlog_level: debug")
	if err := os.WriteFile(configPath, customContent, 0644); err != nil {
		t.Fatalf("failed to write custom content: %v", err)
	}

	created, err := EnsureConfigExists(configPath)
	if err != nil {
		t.Fatalf("second call should not error: %v", err)
	}
	if created {
		t.Error("second call reported a new file")
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(content) != string(customContent) {
		t.Error("EnsureConfigExists overwrote existing config")
	}
}

// The template must load into the same settings as no file at all.
func TestTemplateLoads(t *testing.T) {
	s, err := loadFrom(t, configTemplate)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if s.Session.ClickOffset.X != 320 || s.Session.Correlation.MaxAttempts != 40 {
		t.Errorf("template drifted from defaults: %+v", s.Session)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "vidresume", "config.yaml"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
