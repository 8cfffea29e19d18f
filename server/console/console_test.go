package console

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/towersiege/server/server"
)

func newTestServer(t *testing.T, conf server.Config) *server.Server {
	t.Helper()
	if conf.Name == "" {
		conf.Name = "test"
	}
	return conf.New()
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestConsoleExecutesStatusCommand(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("status\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "tick=0 players=0/0") {
		t.Errorf("output = %q, want it to contain tick=0 players=0/0", buf.String())
	}
}

func TestConsoleUnknownCommandLogsError(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("frobnicate\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "unknown command") {
		t.Errorf("output = %q, want it to mention an unknown command", buf.String())
	}
}

func TestConsolePlayersWithNoneConnected(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("players\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "no players connected") {
		t.Errorf("output = %q, want \"no players connected\"", buf.String())
	}
}

func TestConsoleKickUnknownPlayer(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("kick Nobody\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "no player named Nobody is connected") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsoleKickUsageWithoutArgument(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("kick\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "usage: kick <alias>") {
		t.Errorf("output = %q, want usage message", buf.String())
	}
}

func TestConsoleWhitelistNotConfigured(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("whitelist list\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "whitelist is not configured") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsoleWhitelistAddAndList(t *testing.T) {
	wl, err := server.LoadWhitelist(t.TempDir() + "/whitelist.toml")
	if err != nil {
		t.Fatalf("LoadWhitelist: %v", err)
	}
	srv := newTestServer(t, server.Config{Allower: wl})

	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("whitelist add Commander\nwhitelist list\n"))
	c.Run(context.Background())

	out := buf.String()
	if !strings.Contains(out, "added Commander to the whitelist") {
		t.Errorf("output = %q, want add confirmation", out)
	}
	if !strings.Contains(out, "Commander") {
		t.Errorf("output = %q, want list to contain Commander", out)
	}
}

func TestConsoleAlliesUnknownPlayer(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("allies Nobody\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "no player named Nobody is connected") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsoleForcesWithNoneInFlight(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("forces\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "no forces in flight") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsoleStopClosesServer(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("stop\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "stopping") {
		t.Errorf("output = %q, want stopping", buf.String())
	}
}

func TestConsoleHistoryIgnoresBlankLines(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, _ := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("status\nplayers\n\n"))
	c.Run(context.Background())

	if len(c.history) != 2 {
		t.Fatalf("history = %v, want 2 entries (blank lines are not recorded)", c.history)
	}
}

func TestConsoleMatchesCommandNamesCaseInsensitively(t *testing.T) {
	srv := newTestServer(t, server.Config{})
	log, buf := bufferLogger()
	c := New(srv, log).WithReader(strings.NewReader("STATUS\n"))
	c.Run(context.Background())

	if !strings.Contains(buf.String(), "tick=0 players=0/0") {
		t.Errorf("command names should be matched case-insensitively, got %q", buf.String())
	}
}

func TestCommandSuggestionsFiltersByPrefix(t *testing.T) {
	suggestions := commandSuggestions("wh")
	if len(suggestions) != 1 || suggestions[0].Text != "whitelist" {
		t.Errorf("commandSuggestions(%q) = %v, want just whitelist", "wh", suggestions)
	}
}

func TestCommandSuggestionsEmptyPrefixListsAllCommands(t *testing.T) {
	suggestions := commandSuggestions("")
	if len(suggestions) != len(commands) {
		t.Errorf("commandSuggestions(\"\") returned %d, want %d", len(suggestions), len(commands))
	}
}
