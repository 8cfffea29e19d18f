package session

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/towersiege/server/server/protocol"
	"github.com/towersiege/server/server/transport"
	"github.com/towersiege/server/server/world"
)

// fakeConn is an in-memory transport.Conn backed by channels, letting tests
// drive ReadPacket/WritePacket without a real socket.
func fakeConn() (transport.Conn, chan []byte, chan []byte) {
	incoming := make(chan []byte, 8)
	outgoing := make(chan []byte, 8)
	closed := make(chan struct{})
	var closeOnce bool

	return transport.Conn{
		ReadPacket: func() ([]byte, error) {
			data, ok := <-incoming
			if !ok {
				return nil, io.EOF
			}
			return data, nil
		},
		WritePacket: func(data []byte) error {
			select {
			case outgoing <- data:
				return nil
			case <-closed:
				return errors.New("conn closed")
			}
		},
		Close: func() error {
			if !closeOnce {
				closeOnce = true
				close(closed)
				close(incoming)
			}
			return nil
		},
		RemoteAddr: "test-addr",
	}, incoming, outgoing
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendUpdateWritesEncodedFrame(t *testing.T) {
	conn, _, outgoing := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(1), "Commander")
	defer s.Close()

	s.SendUpdate(protocol.PlayerDiedUpdate{Reason: world.DeathKilled})

	select {
	case data := <-outgoing:
		got, err := protocol.DecodeUpdate(data)
		if err != nil {
			t.Fatalf("DecodeUpdate: %v", err)
		}
		died, ok := got.(protocol.PlayerDiedUpdate)
		if !ok || died.Reason != world.DeathKilled {
			t.Errorf("decoded update = %#v, want PlayerDiedUpdate{Reason: DeathKilled}", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the write loop to flush the update")
	}
}

func TestSendUpdateAfterCloseIsANoOp(t *testing.T) {
	conn, _, outgoing := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(1), "Commander")
	s.Close()

	s.SendUpdate(protocol.PlayerDiedUpdate{Reason: world.DeathKilled})

	select {
	case data := <-outgoing:
		t.Fatalf("expected no write after Close, got %v", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	conn, _, _ := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(1), "Commander")

	s.Close()
	s.Close()
}

func TestReadCommandDecodesFromTheWire(t *testing.T) {
	conn, incoming, _ := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(1), "Commander")
	defer s.Close()

	incoming <- protocol.EncodeCommand(protocol.SpawnCommand{})

	cmd, err := s.ReadCommand()
	if err != nil {
		t.Fatalf("ReadCommand: %v", err)
	}
	if _, ok := cmd.(protocol.SpawnCommand); !ok {
		t.Errorf("ReadCommand = %#v, want a SpawnCommand", cmd)
	}
}

func TestViewportDefaultsToZeroValue(t *testing.T) {
	conn, _, _ := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(1), "Commander")
	defer s.Close()

	got := s.Viewport()
	if got != (world.Viewport{}) {
		t.Errorf("initial Viewport() = %+v, want the zero value", got)
	}

	set := world.Viewport{Max: world.TowerId{X: 10, Y: 10}}
	s.SetViewport(set)
	if got := s.Viewport(); got != set {
		t.Errorf("Viewport() after SetViewport = %+v, want %+v", got, set)
	}
}

func TestSyncKnowledgeSendsAddedTowerOnFirstSight(t *testing.T) {
	conn, _, outgoing := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(1), "Commander")
	defer s.Close()

	tower := world.NewTower(world.TowerId{X: 5, Y: 5}, world.Village)
	s.SyncKnowledge([]*world.Tower{tower}, nil, 1)

	select {
	case data := <-outgoing:
		got, err := protocol.DecodeUpdate(data)
		if err != nil {
			t.Fatalf("DecodeUpdate: %v", err)
		}
		sync, ok := got.(protocol.TowerSyncUpdate)
		if !ok {
			t.Fatalf("decoded update = %#v, want a TowerSyncUpdate", got)
		}
		if len(sync.Update.Added) != 1 || sync.Update.Added[0].Id != tower.Id {
			t.Errorf("Added = %+v, want exactly the one new tower", sync.Update.Added)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the sync update")
	}
}

func TestSyncKnowledgeSendsNothingWhenNothingChanged(t *testing.T) {
	conn, _, outgoing := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(1), "Commander")
	defer s.Close()

	tower := world.NewTower(world.TowerId{X: 5, Y: 5}, world.Village)
	s.SyncKnowledge([]*world.Tower{tower}, nil, 1)
	for i := 0; i < 2; i++ {
		select {
		case <-outgoing:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for the first sync update")
		}
	}

	s.SyncKnowledge([]*world.Tower{tower}, nil, 2)
	select {
	case data := <-outgoing:
		t.Fatalf("expected no second update for an unchanged tower set, got %v", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandlePlayerDiedIgnoresOtherPlayers(t *testing.T) {
	conn, _, outgoing := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(1), "Commander")
	defer s.Close()

	s.HandlePlayerDied(world.PlayerId(2), world.DeathKilled)
	select {
	case data := <-outgoing:
		t.Fatalf("expected no update for a different player's death, got %v", data)
	case <-time.After(50 * time.Millisecond):
	}

	s.HandlePlayerDied(world.PlayerId(1), world.DeathKilled)
	select {
	case <-outgoing:
	case <-time.After(time.Second):
		t.Fatal("expected an update for this session's own player death")
	}
}

func TestIdAliasAndConnIdAreStable(t *testing.T) {
	conn, _, _ := fakeConn()
	s := New(discardLogger(), conn, nil, world.PlayerId(42), "Commander")
	defer s.Close()

	if s.Id() != world.PlayerId(42) {
		t.Errorf("Id() = %v, want 42", s.Id())
	}
	if s.Alias() != "Commander" {
		t.Errorf("Alias() = %q, want Commander", s.Alias())
	}
	if s.ConnId() != s.ConnId() {
		t.Error("ConnId() should be stable across calls")
	}
}
