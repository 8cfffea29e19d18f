// Package session manages a single connected client: decoding its commands
// and pushing back the deltas it is entitled to see. The server, not this
// package, applies the decoded commands to the world.
package session

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/towersiege/server/server/protocol"
	"github.com/towersiege/server/server/transport"
	"github.com/towersiege/server/server/world"
)

// Session is the server-side state of one connected client. It implements
// world.Handler so the service loop can forward every InfoEvent produced on
// its owner's behalf straight to the wire, without the simulation knowing
// sessions exist. Tower-changed notifications are ignored; tower state
// reaches the client through SyncKnowledge.
type Session struct {
	log    *slog.Logger
	conn   transport.Conn
	w      *world.World
	id     world.PlayerId
	alias  string
	connId uuid.UUID

	viewport   atomic.Pointer[world.Viewport]
	knowledge  world.Knowledge
	closed     atomic.Bool
	closeOnce  sync.Once
	outgoing   chan []byte
}

// New constructs a Session for a newly accepted connection, not yet
// associated with a spawned player.
func New(log *slog.Logger, conn transport.Conn, w *world.World, id world.PlayerId, alias string) *Session {
	s := &Session{
		log:       log,
		conn:      conn,
		w:         w,
		id:        id,
		alias:     alias,
		connId:    uuid.New(),
		knowledge: *world.NewKnowledge(),
		outgoing:  make(chan []byte, 64),
	}
	s.viewport.Store(&world.Viewport{})
	go s.writeLoop()
	return s
}

// Id returns the world.PlayerId this session is attached to.
func (s *Session) Id() world.PlayerId { return s.id }

// Alias returns the display name the client connected with.
func (s *Session) Alias() string { return s.alias }

// ConnId returns the unique id assigned to this connection for log
// correlation, distinct from Alias which clients choose themselves and may
// collide.
func (s *Session) ConnId() uuid.UUID { return s.connId }

// SetViewport updates the region of the world this session's client is
// currently watching, read by the service loop when computing per-tick
// deltas.
func (s *Session) SetViewport(v world.Viewport) {
	s.viewport.Store(&v)
}

// Viewport returns the region of the world this session's client is
// currently watching.
func (s *Session) Viewport() world.Viewport {
	return *s.viewport.Load()
}

// ReadCommand blocks for the next decoded command frame from the client. It
// returns an error once the connection is closed.
func (s *Session) ReadCommand() (protocol.Command, error) {
	data, err := s.conn.ReadPacket()
	if err != nil {
		return nil, err
	}
	return protocol.DecodeCommand(data)
}

// SendUpdate encodes and queues an update for delivery to the client. It
// never blocks the caller; if the outgoing buffer is full the session is
// considered too slow and is closed.
func (s *Session) SendUpdate(u protocol.Update) {
	if s.closed.Load() {
		return
	}
	data, err := protocol.EncodeUpdate(u)
	if err != nil {
		s.log.Error("session: encode update", "player", s.id, "error", err)
		return
	}
	select {
	case s.outgoing <- data:
	default:
		s.log.Warn("session: outgoing buffer full, dropping session", "player", s.id)
		s.Close()
	}
}

// SyncKnowledge computes and sends the delta between visible/players and the
// client's last-synced Knowledge, and records the new state. Nothing is
// sent at all if nothing changed; when something did, a WorldSyncUpdate
// carrying the tick and a whole-Knowledge checksum fold rides along so the
// client can cross-check its resulting state against the server's.
func (s *Session) SyncKnowledge(visible []*world.Tower, players []*world.PlayerInfo, tick uint64) {
	update := s.knowledge.Diff(visible, players)
	if update.Empty() {
		return
	}
	if len(update.Added) > 0 || len(update.Changed) > 0 || len(update.Removed) > 0 {
		s.SendUpdate(protocol.TowerSyncUpdate{Update: update})
	}
	if len(update.PlayersAdded) > 0 || len(update.PlayersChanged) > 0 || len(update.PlayersRemoved) > 0 {
		s.SendUpdate(protocol.PlayerSyncUpdate{Added: update.PlayersAdded, Changed: update.PlayersChanged, Removed: update.PlayersRemoved})
	}
	s.SendUpdate(protocol.WorldSyncUpdate{Tick: tick, Checksum: s.knowledge.ChecksumFold()})
}

// HandleInfoEvent implements world.Handler.
func (s *Session) HandleInfoEvent(ev world.InfoEvent) {
	s.SendUpdate(protocol.InfoEventUpdate{Event: ev})
}

// HandleTowerChanged implements world.Handler. The session does not push a
// per-tower update eagerly; SyncKnowledge picks up the change on its next
// pass over the client's visible set.
func (s *Session) HandleTowerChanged(world.TowerId) {}

// HandlePlayerDied implements world.Handler.
func (s *Session) HandlePlayerDied(player world.PlayerId, reason world.DeathReason) {
	if player != s.id {
		return
	}
	s.SendUpdate(protocol.PlayerDiedUpdate{Reason: reason})
}

// Close shuts the session down, closing its connection exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.outgoing)
		_ = s.conn.Close()
	})
}

func (s *Session) writeLoop() {
	for data := range s.outgoing {
		if err := s.conn.WritePacket(data); err != nil {
			s.log.Debug("session: write failed, closing", "player", s.id, "error", err)
			s.Close()
			return
		}
	}
}
