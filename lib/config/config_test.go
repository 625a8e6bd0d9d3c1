package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Show.Channels != 4 || cfg.Show.Scenes != 9 {
		t.Errorf("got %d channels %d scenes", cfg.Show.Channels, cfg.Show.Scenes)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[console]
ip = "172.16.15.1"
prefix = "/show"

[show]
channels = 8
scenes = 8

[logging]
level = "DEBUG"
`)
	cfg, used, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if used != path {
		t.Errorf("got path %q, want %q", used, path)
	}
	if cfg.Console.IP != "172.16.15.1" {
		t.Errorf("got ip %q", cfg.Console.IP)
	}
	if cfg.Console.Port != 8000 {
		t.Errorf("default port lost: %d", cfg.Console.Port)
	}
	if cfg.Console.Prefix != "/show" {
		t.Errorf("got prefix %q", cfg.Console.Prefix)
	}
	if cfg.Show.Channels != 8 || cfg.Show.Scenes != 8 {
		t.Errorf("got %+v", cfg.Show)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level not normalized: %q", cfg.Logging.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[console]\nipaddr = \"1.2.3.4\"\n")
	if _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Console.Port = 0
	cfg.Show.Channels = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"console.port", "show.channels", "logging.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Console.IP = "10.0.0.5"
	data, err := Encode(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	var back Config
	if err := Decode(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != cfg {
		t.Errorf("got %+v, want %+v", back, cfg)
	}
}
