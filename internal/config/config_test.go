package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Port != 8080 || cfg.Mode != "release" || cfg.PingPeriod != 54*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Media.RenegotiationDelay != 10*time.Second || cfg.Media.DataChannelLabel != "ARDAMSd0" {
		t.Fatalf("media = %+v", cfg.Media)
	}
	opts, err := cfg.OptionMap()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"channelLastN": "-1", "disableRtx": "false", "enableLipSync": "true", "openSctp": "true"}
	if len(opts) != len(want) {
		t.Fatalf("options = %v", opts)
	}
	for k, v := range want {
		if opts[k] != v {
			t.Errorf("%s = %q, want %q", k, opts[k], v)
		}
	}
}

func TestFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
port: 9000
signal:
  base_url: https://meet.example.org/colibri
ice_servers:
  - urls: ["turn:turn.example.org"]
    username: u
    credential: p
conference:
  room: "42"
`)
	t.Setenv("VOICECLIENT_SIGNAL_TIMEOUT", "3s")
	t.Setenv("VOICECLIENT_CONFERENCE_IDENTITY", "alice")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Port != 9000 || cfg.Signal.BaseURL != "https://meet.example.org/colibri" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Signal.Timeout != 3*time.Second || cfg.Conference.Identity != "alice" || cfg.Conference.Room != "42" {
		t.Fatalf("overrides = %+v %+v", cfg.Signal, cfg.Conference)
	}
	ice := cfg.ICEServerList()
	if len(ice) != 1 || ice[0].Username != "u" || ice[0].URLs[0] != "turn:turn.example.org" {
		t.Fatalf("ice = %+v", ice)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad port", "port: 70000", "Port"},
		{"bad mode", "mode: chaos", "Mode"},
		{"relative base url", "signal:\n  base_url: not a url", "BaseURL"},
		{"no slots", "views:\n  slots: 0", "Slots"},
		{"short secret", "secret: abc", "Secret"},
		{"ice server without urls", "ice_servers:\n  - username: u", "URLs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestBadOption(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "conference:\n  options: [\"channelLastN\"]"))
	if !errors.Is(err, ErrBadOption) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadUsesConfigEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.staging.yaml"), []byte("port: 7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "staging")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7000 {
		t.Fatalf("port = %d", cfg.Port)
	}
}
