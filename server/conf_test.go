package server

import (
	"path/filepath"
	"testing"
)

func TestLoadUserConfigCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	uc, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}
	if uc.Network.Address != ":7777" {
		t.Errorf("default address = %q, want :7777", uc.Network.Address)
	}

	reloaded, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("reload LoadUserConfig: %v", err)
	}
	if reloaded != uc {
		t.Errorf("reloaded config %+v should match the one just written %+v", reloaded, uc)
	}
}

func TestUserConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	uc := DefaultConfig()
	uc.Server.Name = "my-siege"
	uc.World.Seed = 1234
	uc.Players.MaxCount = 10

	if err := uc.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}
	if got != uc {
		t.Errorf("LoadUserConfig(Save(uc)) = %+v, want %+v", got, uc)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"DEBUG":   "DEBUG",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"info":    "INFO",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		if got := ParseLogLevel(in).String(); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
