package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppPath_Default(t *testing.T) {
	t.Setenv("TODOMIND_PATH", "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	got := AppPath()
	want := filepath.Join(home, ".todomind")
	if got != want {
		t.Errorf("AppPath() = %q, want %q", got, want)
	}
}

func TestAppPath_EnvOverride(t *testing.T) {
	t.Setenv("TODOMIND_PATH", "/tmp/custom-todomind")

	if got := AppPath(); got != "/tmp/custom-todomind" {
		t.Errorf("AppPath() = %q, want %q", got, "/tmp/custom-todomind")
	}
}

func TestConfigAndDotenvPath(t *testing.T) {
	t.Setenv("TODOMIND_PATH", "/tmp/test-todomind")

	if got := ConfigPath(); got != "/tmp/test-todomind/config.jsonc" {
		t.Errorf("ConfigPath() = %q", got)
	}
	if got := DotenvPath(); got != "/tmp/test-todomind/.env" {
		t.Errorf("DotenvPath() = %q", got)
	}
}
