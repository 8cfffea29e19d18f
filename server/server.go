// Package server ties the world simulation to the network: accepting
// connections, running the fixed-tick service loop, and fanning out every
// tick's deltas to connected sessions.
package server

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/mod/semver"

	"github.com/towersiege/server/server/bot"
	"github.com/towersiege/server/server/protocol"
	"github.com/towersiege/server/server/session"
	"github.com/towersiege/server/server/transport"
	"github.com/towersiege/server/server/world"
)

// onlineSession pairs a session.Session with the bookkeeping the Server
// needs to drive it.
type onlineSession struct {
	s *session.Session
}

// Server owns a world.World and every connection into it. Its zero value is
// not usable; construct one with Config.New.
type Server struct {
	conf Config
	log  *slog.Logger

	world     *world.World
	listeners []Listener
	whitelist *Whitelist

	mu     sync.RWMutex
	online map[world.PlayerId]*onlineSession

	bots []*bot.Controller

	cmdMu   sync.Mutex
	pending []pendingCmd

	stopOnce sync.Once
	stop     chan struct{}
}

// pendingCmd is one buffered command awaiting application during a tick's
// input-application phase.
type pendingCmd struct {
	id  world.PlayerId
	cmd protocol.Command
}

// World returns the Server's underlying world, for callers (tests, admin
// tooling) that need direct access outside the service loop.
func (srv *Server) World() *world.World { return srv.world }

// Listen starts accepting connections on every configured Listener. It
// returns immediately; accepted connections are handled on background
// goroutines.
func (srv *Server) Listen() {
	for _, l := range srv.listeners {
		go srv.acceptLoop(l)
	}
}

func (srv *Server) acceptLoop(l Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			srv.log.Debug("server: listener stopped accepting", "error", err)
			return
		}
		go srv.handleConn(l, conn)
	}
}

func (srv *Server) handleConn(l Listener, conn transport.Conn) {
	hello, err := readHello(conn)
	if err != nil {
		_ = conn.Close()
		return
	}
	if !compatibleVersion(hello.Version) {
		_ = l.Disconnect(conn, "incompatible client version "+hello.Version)
		return
	}
	alias := sanitizeAlias(hello.Alias)
	if alias == "" {
		_ = l.Disconnect(conn, "invalid alias")
		return
	}
	if reason, ok := srv.conf.Allower.Allow(conn.RemoteAddr, alias); !ok {
		_ = l.Disconnect(conn, reason)
		return
	}
	if srv.conf.MaxPlayers > 0 && srv.PlayerCount() >= srv.conf.MaxPlayers {
		_ = l.Disconnect(conn, "server is full")
		return
	}

	var id world.PlayerId
	srv.world.Exec(func(tx *world.Tx) {
		id, _ = tx.World().AllocatePlayer(alias)
	})
	s := session.New(srv.log, conn, srv.world, id, alias)

	srv.mu.Lock()
	srv.online[id] = &onlineSession{s: s}
	srv.mu.Unlock()

	if srv.conf.JoinMessage != "" {
		srv.log.Info("player joined", "alias", alias, "conn", s.ConnId())
	}
	srv.readLoop(s)
}

func (srv *Server) readLoop(s *session.Session) {
	defer srv.removeSession(s)
	for {
		cmd, err := s.ReadCommand()
		if err != nil {
			return
		}
		if vp, ok := cmd.(protocol.SetViewportCommand); ok {
			s.SetViewport(vp.Viewport)
			continue
		}
		srv.enqueueCommand(s.Id(), cmd)
	}
}

// enqueueCommand buffers cmd for application during the next tick's input
// phase, rather than mutating the world from the reading goroutine directly.
// This keeps every world mutation confined to the single-writer tick loop,
// so commands from every client apply in one deterministic, total order per
// tick instead of racing each other mid-tick.
func (srv *Server) enqueueCommand(id world.PlayerId, cmd protocol.Command) {
	srv.cmdMu.Lock()
	srv.pending = append(srv.pending, pendingCmd{id: id, cmd: cmd})
	srv.cmdMu.Unlock()
}

func (srv *Server) removeSession(s *session.Session) {
	srv.mu.Lock()
	delete(srv.online, s.Id())
	srv.mu.Unlock()
	s.Close()
	if srv.conf.QuitMessage != "" {
		srv.log.Info("player left", "alias", s.Alias(), "conn", s.ConnId())
	}
}

// applyPendingCommand decodes one buffered client or bot command into the
// matching Tx call. It always runs inside the tick loop's single Exec, with
// h wired through so Spawn/RequestAlliance's InfoEvents reach every session
// instead of being dropped on the floor.
func applyPendingCommand(tx *world.Tx, id world.PlayerId, cmd protocol.Command, h world.Handler) {
	switch c := cmd.(type) {
	case protocol.SpawnCommand:
		_, _ = tx.Spawn(id, pseudoRandom, h)
	case protocol.DeployForceCommand:
		_, _ = tx.DeployForce(id, c.Source, c.Units, c.Path)
	case protocol.SetSupplyLineCommand:
		_ = tx.SetSupplyLine(id, c.Source, c.Path)
	case protocol.UpgradeCommand:
		_ = tx.Upgrade(id, c.Id, c.Target, c.DelayTicks)
	case protocol.RequestAllianceCommand:
		_ = tx.RequestAlliance(id, c.With, h)
	case protocol.BreakAllianceCommand:
		tx.BreakAlliance(id, c.With)
	}
}

// Run drives the fixed-tick service loop until Close is called. One tick is
// simulated every world.TickRate'th of a second.
func (srv *Server) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(world.TickRate))
	defer ticker.Stop()
	for {
		select {
		case <-srv.stop:
			return
		case <-ticker.C:
			srv.tick()
		}
	}
}

func (srv *Server) tick() {
	srv.driveBots()

	srv.cmdMu.Lock()
	cmds := srv.pending
	srv.pending = nil
	srv.cmdMu.Unlock()
	sortPendingCmds(cmds)

	h := srv.broadcastHandler()
	srv.world.Exec(func(tx *world.Tx) {
		tx.World().Step(h, func() {
			for _, c := range cmds {
				applyPendingCommand(tx, c.id, c.cmd, h)
			}
		})
	})
	srv.syncSessions()
}

// sortPendingCmds orders a tick's buffered commands by PlayerId, so every
// tick applies the same set of commands in the same order regardless of the
// arrival order across sessions' reading goroutines.
func sortPendingCmds(cmds []pendingCmd) {
	for i := 1; i < len(cmds); i++ {
		for j := i; j > 0 && cmds[j].id < cmds[j-1].id; j-- {
			cmds[j-1], cmds[j] = cmds[j], cmds[j-1]
		}
	}
}

// spawnBots allocates conf.BotCount bot-controlled players, called once at
// startup. Bots never go through a Listener or Session; the Server drives
// them directly each tick.
func (srv *Server) spawnBots() {
	for i := 0; i < srv.conf.BotCount; i++ {
		var id world.PlayerId
		srv.world.Exec(func(tx *world.Tx) {
			id, _ = tx.World().AllocatePlayer(botAlias(i))
		})
		srv.bots = append(srv.bots, bot.New(id, pseudoRandom))
	}
}

func botAlias(i int) string {
	return "Bot" + string(rune('A'+i%26))
}

// driveBots asks every bot Controller for its next command and buffers it
// for the same input-application phase real clients' commands go through.
func (srv *Server) driveBots() {
	for _, b := range srv.bots {
		cmd := b.Update(srv.world)
		if cmd == nil {
			continue
		}
		srv.enqueueCommand(b.Id(), cmd)
	}
}

// broadcastHandler fans every world.Handler callback out to every connected
// session, each of which filters by its own relevance before touching the
// wire.
func (srv *Server) broadcastHandler() world.Handler {
	srv.mu.RLock()
	sessions := make([]*session.Session, 0, len(srv.online))
	for _, o := range srv.online {
		sessions = append(sessions, o.s)
	}
	srv.mu.RUnlock()
	return fanoutHandler(sessions)
}

type fanoutHandler []*session.Session

func (f fanoutHandler) HandleInfoEvent(ev world.InfoEvent) {
	for _, s := range f {
		if relevantTo(s, ev) {
			s.HandleInfoEvent(ev)
		}
	}
}
func (f fanoutHandler) HandleTowerChanged(id world.TowerId) {
	for _, s := range f {
		s.HandleTowerChanged(id)
	}
}
func (f fanoutHandler) HandlePlayerDied(id world.PlayerId, reason world.DeathReason) {
	for _, s := range f {
		s.HandlePlayerDied(id, reason)
	}
}

// relevantTo reports whether ev should be sent to s: either s's player is a
// party to it, or it happened inside s's current viewport.
func relevantTo(s *session.Session, ev world.InfoEvent) bool {
	if ev.HasAttacker && ev.Attacker == s.Id() {
		return true
	}
	if ev.HasDefender && ev.Defender == s.Id() {
		return true
	}
	return s.Viewport().Contains(ev.Position)
}

// syncSessions pushes a Knowledge delta to every connected session based on
// its current viewport. Players are a global actor kind: every session
// tracks every known player's scoreboard entry, regardless of viewport.
func (srv *Server) syncSessions() {
	srv.mu.RLock()
	defer srv.mu.RUnlock()

	var players []*world.PlayerInfo
	for id := range srv.world.PlayerIds {
		if data := srv.world.PlayerData(id); data != nil {
			players = append(players, world.PlayerInfoOf(data))
		}
	}
	tick := srv.world.Tick()

	for _, o := range srv.online {
		owned := srv.ownedTowers(o.s.Id())
		visible := world.VisibleChunks(srv.world, o.s.Viewport(), owned)
		var towers []*world.Tower
		for _, chunkId := range visible {
			c, ok := srv.world.ChunkIfLoaded(chunkId)
			if !ok {
				continue
			}
			for t := range c.Towers {
				towers = append(towers, t)
			}
		}
		o.s.SyncKnowledge(towers, players, tick)
	}
}

func (srv *Server) ownedTowers(id world.PlayerId) map[world.TowerId]struct{} {
	data := srv.world.PlayerData(id)
	if data == nil {
		return nil
	}
	return data.Towers
}

// Whitelist returns the server's whitelist, or nil if none is configured.
func (srv *Server) Whitelist() *Whitelist { return srv.whitelist }

// PlayerAliases returns the aliases of every currently connected session,
// sorted case-insensitively.
func (srv *Server) PlayerAliases() []string {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	names := make([]string, 0, len(srv.online))
	for _, o := range srv.online {
		names = append(names, o.s.Alias())
	}
	sortNames(names)
	return names
}

// ForceSnapshot is a point-in-time, human-readable summary of one in-flight
// Force, for operator tooling.
type ForceSnapshot struct {
	Owner    world.PlayerId
	HasOwner bool
	Position mgl64.Vec2
	Units    world.Units
}

// Forces returns a snapshot of every Force currently in flight.
func (srv *Server) Forces() []ForceSnapshot {
	var out []ForceSnapshot
	srv.world.Exec(func(tx *world.Tx) {
		for f := range tx.World().Forces {
			out = append(out, ForceSnapshot{Owner: f.Player, HasOwner: f.HasOwner, Position: f.WorldPosition(), Units: f.Units})
		}
	})
	return out
}

// Allies returns the aliases of every player the named player has offered
// alliance to, or false if no connected player goes by that alias.
func (srv *Server) Allies(alias string) ([]string, bool) {
	var id world.PlayerId
	found := false
	srv.mu.RLock()
	for _, o := range srv.online {
		if strings.EqualFold(o.s.Alias(), alias) {
			id = o.s.Id()
			found = true
			break
		}
	}
	srv.mu.RUnlock()
	if !found {
		return nil, false
	}

	var names []string
	srv.world.Exec(func(tx *world.Tx) {
		p := tx.World().Player(id)
		if p == nil {
			return
		}
		for _, allyId := range p.AllyList() {
			if data := tx.World().PlayerData(allyId); data != nil {
				names = append(names, data.Alias)
			}
		}
	})
	return names, true
}

// Kick disconnects the first connected session whose alias matches name,
// case-insensitively. It reports whether a matching session was found.
func (srv *Server) Kick(name string) bool {
	srv.mu.RLock()
	var target *session.Session
	for _, o := range srv.online {
		if strings.EqualFold(o.s.Alias(), name) {
			target = o.s
			break
		}
	}
	srv.mu.RUnlock()
	if target == nil {
		return false
	}
	target.Close()
	return true
}

// PlayerCount returns the number of currently connected sessions.
func (srv *Server) PlayerCount() int {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	return len(srv.online)
}

// Stats summarises the server's current state for status queries and the
// operator console.
type Stats struct {
	PlayerCount int
	MaxPlayers  int
	Tick        uint64
}

func (srv *Server) Stats() Stats {
	return Stats{
		PlayerCount: srv.PlayerCount(),
		MaxPlayers:  srv.conf.MaxPlayers,
		Tick:        srv.world.Tick(),
	}
}

// Close stops the service loop and every listener.
func (srv *Server) Close() error {
	srv.stopOnce.Do(func() { close(srv.stop) })
	for _, l := range srv.listeners {
		_ = l.Close()
	}
	return nil
}

// readHello reads the handshake frame a client sends immediately after
// connecting, before any command frames.
func readHello(conn transport.Conn) (protocol.Hello, error) {
	data, err := conn.ReadPacket()
	if err != nil {
		return protocol.Hello{}, err
	}
	return protocol.DecodeHello(data)
}

// compatibleVersion reports whether a client-declared protocol version is
// semver-valid and shares the server's major version, the boundary at which
// the wire format is allowed to change incompatibly.
func compatibleVersion(v string) bool {
	if !semver.IsValid(v) {
		return false
	}
	return semver.Major(v) == semver.Major(protocol.Version)
}

var pseudoRandomState uint64 = 0x2545F4914F6CDD1D

// pseudoRandom is a small, dependency-free xorshift generator used to pick a
// spawn tower. It is not meant to be cryptographically sound, only
// deterministic and fast.
func pseudoRandom(n int) int {
	if n <= 0 {
		return 0
	}
	pseudoRandomState ^= pseudoRandomState << 13
	pseudoRandomState ^= pseudoRandomState >> 7
	pseudoRandomState ^= pseudoRandomState << 17
	return int(pseudoRandomState % uint64(n))
}
