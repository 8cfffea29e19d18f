// Package console provides a small interactive/scripted operator shell for a
// running Server, in the same go-prompt-backed dual mode dragonfly's own
// console used, but with a fixed, hand-written command set instead of a
// generic command framework.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/towersiege/server/server"
)

const (
	promptPrefix      = "towersiege> "
	maxHistoryEntries = 128
)

// Console reads operator commands from an io.Reader (os.Stdin by default)
// and applies them to the bound Server. With any reader other than os.Stdin
// it line-scans the input so it can be driven from a script or test.
type Console struct {
	srv     *server.Server
	log     *slog.Logger
	reader  io.Reader
	history []string
}

// New returns a Console bound to srv, logging command output through log.
func New(srv *server.Server, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{srv: srv, log: log, reader: os.Stdin}
}

// WithReader overrides the console's input source, for driving it from a
// script or test instead of a terminal.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes commands until ctx is cancelled or the input reaches EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console: read input", "error", err)
			}
			return
		}
		c.execute(strings.TrimSpace(scanner.Text()))
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := prompt.Input(promptPrefix, c.complete,
			prompt.OptionTitle("towersiege console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(promptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)
		c.execute(strings.TrimSpace(line))
	}
}

func (c *Console) execute(line string) {
	if line == "" {
		return
	}
	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	cmd, ok := commands[name]
	if !ok {
		c.log.Error("console: unknown command", "command", name)
		return
	}
	if out := cmd.run(c.srv, args); out != "" {
		c.log.Info(out)
	}
}

type operatorCommand struct {
	usage string
	run   func(srv *server.Server, args []string) string
}

var commands = map[string]operatorCommand{
	"status": {
		usage: "status",
		run: func(srv *server.Server, _ []string) string {
			st := srv.Stats()
			return fmt.Sprintf("tick=%d players=%d/%d", st.Tick, st.PlayerCount, st.MaxPlayers)
		},
	},
	"players": {
		usage: "players",
		run: func(srv *server.Server, _ []string) string {
			names := srv.PlayerAliases()
			if len(names) == 0 {
				return "no players connected"
			}
			return strings.Join(names, ", ")
		},
	},
	"kick": {
		usage: "kick <alias>",
		run: func(srv *server.Server, args []string) string {
			if len(args) != 1 {
				return "usage: kick <alias>"
			}
			if srv.Kick(args[0]) {
				return fmt.Sprintf("kicked %s", args[0])
			}
			return fmt.Sprintf("no player named %s is connected", args[0])
		},
	},
	"whitelist": {
		usage: "whitelist <on|off|add|remove|list> [alias]",
		run: func(srv *server.Server, args []string) string {
			wl := srv.Whitelist()
			if wl == nil {
				return "whitelist is not configured"
			}
			if len(args) == 0 {
				return "usage: whitelist <on|off|add|remove|list> [alias]"
			}
			switch strings.ToLower(args[0]) {
			case "on":
				wl.SetEnabled(true)
				return "whitelist enabled"
			case "off":
				wl.SetEnabled(false)
				return "whitelist disabled"
			case "list":
				players := wl.Players()
				if len(players) == 0 {
					return "whitelist is empty"
				}
				return strings.Join(players, ", ")
			case "add":
				if len(args) != 2 {
					return "usage: whitelist add <alias>"
				}
				added, err := wl.Add(args[1])
				if err != nil {
					return "error: " + err.Error()
				}
				if !added {
					return fmt.Sprintf("%s is already whitelisted", args[1])
				}
				return fmt.Sprintf("added %s to the whitelist", args[1])
			case "remove":
				if len(args) != 2 {
					return "usage: whitelist remove <alias>"
				}
				removed, err := wl.Remove(args[1])
				if err != nil {
					return "error: " + err.Error()
				}
				if !removed {
					return fmt.Sprintf("%s was not on the whitelist", args[1])
				}
				return fmt.Sprintf("removed %s from the whitelist", args[1])
			default:
				return "usage: whitelist <on|off|add|remove|list> [alias]"
			}
		},
	},
	"allies": {
		usage: "allies <alias>",
		run: func(srv *server.Server, args []string) string {
			if len(args) != 1 {
				return "usage: allies <alias>"
			}
			names, ok := srv.Allies(args[0])
			if !ok {
				return fmt.Sprintf("no player named %s is connected", args[0])
			}
			if len(names) == 0 {
				return fmt.Sprintf("%s has no allies", args[0])
			}
			return strings.Join(names, ", ")
		},
	},
	"forces": {
		usage: "forces",
		run: func(srv *server.Server, _ []string) string {
			forces := srv.Forces()
			if len(forces) == 0 {
				return "no forces in flight"
			}
			lines := make([]string, 0, len(forces))
			for _, f := range forces {
				owner := "zombie"
				if f.HasOwner {
					owner = fmt.Sprintf("player %d", f.Owner)
				}
				lines = append(lines, fmt.Sprintf("%s at (%.1f, %.1f)", owner, f.Position.X(), f.Position.Y()))
			}
			return strings.Join(lines, "\n")
		},
	},
	"stop": {
		usage: "stop",
		run: func(srv *server.Server, _ []string) string {
			_ = srv.Close()
			return "stopping"
		},
	},
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	text := doc.TextBeforeCursor()
	if !strings.Contains(text, " ") {
		return commandSuggestions(doc.GetWordBeforeCursor())
	}
	return nil
}

func commandSuggestions(prefix string) []prompt.Suggest {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	suggestions := make([]prompt.Suggest, 0, len(names))
	for _, name := range names {
		suggestions = append(suggestions, prompt.Suggest{Text: name, Description: commands[name].usage})
	}
	return prompt.FilterHasPrefix(suggestions, prefix, true)
}
