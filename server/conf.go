package server

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/towersiege/server/server/transport"
	"github.com/towersiege/server/server/world"
)

// Listener is an alias for the transport-level Listener, kept distinct here
// so Config callers don't need to import the transport package themselves.
type Listener = transport.Listener

// StatusProvider returns the text shown to clients querying the server
// before joining.
type StatusProvider interface {
	Status(playerCount, maxPlayers int) string
}

type statusProvider struct{ name string }

func (s statusProvider) Status(playerCount, maxPlayers int) string {
	return fmt.Sprintf("%s (%d/%d)", s.name, playerCount, maxPlayers)
}

// Allower controls which connecting clients may join the server.
type Allower interface {
	// Allow reports whether a client identifying as alias from addr may
	// join. If not, the returned string is shown to the client as the
	// disconnect reason.
	Allow(addr, alias string) (string, bool)
}

type allower struct{}

func (allower) Allow(string, string) (string, bool) { return "", true }

// Config contains options for starting a towersiege server.
type Config struct {
	// Log is the Logger used for server-lifecycle and session logging. If
	// nil, Log is set to slog.Default().
	Log *slog.Logger
	// Listeners is a list of functions to create a Listener using a Config,
	// one for each Listener added to the Server. If left empty, no clients
	// will be able to connect.
	Listeners []func(conf Config) (Listener, error)
	// Name is the name of the server, shown to clients querying its status.
	Name string
	// Allower may be used to specify which clients can join the server.
	Allower Allower
	// MaxPlayers is the maximum number of players allowed to be connected at
	// once. A value of 0 means unlimited.
	MaxPlayers int
	// WorldSeed seeds the deterministic procedural layout of towers across
	// the grid, generated once when the Server is created.
	WorldSeed int64
	// BotCount is the number of built-in bot-controlled players the Server
	// spawns alongside human clients, useful for filling a server or for
	// local testing without a real client.
	BotCount int
	// JoinMessage and QuitMessage switch join and leave logging: while one
	// is non-empty, the server logs a line when a player joins or leaves.
	// The text itself is not formatted or sent to clients. Leave empty to
	// disable either log line.
	JoinMessage, QuitMessage string
	// StatusProvider produces the server's status text. By default it shows
	// Name and the current/maximum player counts. No code path in the
	// server calls it.
	StatusProvider StatusProvider
}

// New creates a Server using the fields of conf. Server.Listen must be
// called afterward to start accepting connections, and Server.Run to drive
// the service loop.
func (conf Config) New() *Server {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if len(conf.Listeners) == 0 {
		conf.Log.Warn("config: no listeners set, no connections will be accepted")
	}
	if conf.Name == "" {
		conf.Name = "towersiege"
	}
	if conf.StatusProvider == nil {
		conf.StatusProvider = statusProvider{name: conf.Name}
	}
	if conf.Allower == nil {
		conf.Allower = allower{}
	}

	srv := &Server{
		conf:   conf,
		log:    conf.Log,
		world:  world.NewWorld(conf.WorldSeed),
		online: make(map[world.PlayerId]*onlineSession),
		stop:   make(chan struct{}),
	}
	if wl, ok := conf.Allower.(*Whitelist); ok {
		srv.whitelist = wl
	}
	for _, lf := range conf.Listeners {
		l, err := lf(conf)
		if err != nil {
			conf.Log.Error("create listener: " + err.Error())
			continue
		}
		if l == nil {
			conf.Log.Error("create listener: returned nil listener")
			continue
		}
		srv.listeners = append(srv.listeners, l)
	}
	srv.spawnBots()
	return srv
}

// UserConfig is the file-serialisable configuration for a towersiege server.
// It may be loaded from and saved to TOML, and converted to a Config by
// calling UserConfig.Config.
type UserConfig struct {
	Network struct {
		// Address is the address the server listens on, for example
		// ":7777".
		Address string
	}
	Server struct {
		// Name is the name of the server as shown in status queries.
		Name string
		// DisableJoinQuitMessages leaves JoinMessage and QuitMessage empty,
		// which turns off join/leave logging.
		DisableJoinQuitMessages bool
		// LogLevel is one of "debug", "info", "warn" or "error".
		LogLevel string
	}
	World struct {
		// Seed seeds the deterministic procedural tower layout generated at
		// startup.
		Seed int64
	}
	Players struct {
		// MaxCount is the maximum number of players allowed to be connected
		// at the same time. 0 means unlimited.
		MaxCount int
		// BotCount is the number of bot-controlled players the server
		// spawns on startup.
		BotCount int
	}
	Whitelist struct {
		// Enabled controls whether the whitelist is enforced for joining
		// clients.
		Enabled bool
		// File is the path to the whitelist TOML file storing player
		// aliases.
		File string
	}
}

// Config converts a UserConfig to a Config suitable for Config.New.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:        log,
		Name:       uc.Server.Name,
		MaxPlayers: uc.Players.MaxCount,
		WorldSeed:  uc.World.Seed,
		BotCount:   uc.Players.BotCount,
	}
	if !uc.Server.DisableJoinQuitMessages {
		conf.JoinMessage, conf.QuitMessage = "%s joined the siege.", "%s left the siege."
	}

	whitelistFile := strings.TrimSpace(uc.Whitelist.File)
	if whitelistFile == "" {
		whitelistFile = "whitelist.toml"
	}
	wl, err := LoadWhitelist(whitelistFile)
	if err != nil {
		return conf, fmt.Errorf("load whitelist: %w", err)
	}
	wl.SetEnabled(uc.Whitelist.Enabled)
	conf.Allower = wl

	conf.Listeners = append(conf.Listeners, uc.listenerFunc)
	return conf, nil
}

// listenerFunc adapts uc.Network.Address into a Listener-constructing
// function suitable for Config.Listeners.
func (uc UserConfig) listenerFunc(Config) (Listener, error) {
	return transport.ListenConfig{Address: uc.Network.Address}.Listen()
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.Network.Address = ":7777"
	c.Server.Name = "towersiege"
	c.Server.LogLevel = "info"
	c.Players.MaxCount = 64
	c.Players.BotCount = 0
	c.Whitelist.File = "whitelist.toml"
	return c
}

// LoadUserConfig reads a UserConfig from the TOML file at path, creating it
// with DefaultConfig's values if it does not yet exist.
func LoadUserConfig(path string) (UserConfig, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return UserConfig{}, fmt.Errorf("read config: %w", err)
		}
		conf := DefaultConfig()
		return conf, conf.Save(path)
	}
	conf := DefaultConfig()
	if err := toml.Unmarshal(contents, &conf); err != nil {
		return UserConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return conf, nil
}

// Save writes uc to path as TOML, overwriting any existing file.
func (uc UserConfig) Save(path string) error {
	encoded, err := toml.Marshal(uc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ParseLogLevel converts a UserConfig.Server.LogLevel string to a
// slog.Level, defaulting to slog.LevelInfo for an unrecognised value.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
