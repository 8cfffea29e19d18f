package protocol

import (
	"fmt"

	"github.com/towersiege/server/server/world"
)

// updateId tags the concrete type of an Update frame on the wire.
type updateId uint8

const (
	idTowerSync updateId = iota
	idInfoEvent
	idPlayerDied
	idPlayerSync
	idWorldSync
)

// Update is any message the server may push to a client.
type Update interface {
	marshal(w *Writer)
}

// TowerSyncUpdate carries the delta Knowledge.Diff computed for one client:
// towers newly visible or changed in full, and the ids of towers that left
// visibility.
type TowerSyncUpdate struct {
	Update world.Update
}

func (u TowerSyncUpdate) marshal(w *Writer) {
	w.Uint8(uint8(idTowerSync))
	w.Varint(uint32(len(u.Update.Added)))
	for _, t := range u.Update.Added {
		writeTower(w, t)
	}
	w.Varint(uint32(len(u.Update.Changed)))
	for _, t := range u.Update.Changed {
		writeTower(w, t)
	}
	w.Varint(uint32(len(u.Update.Removed)))
	for _, id := range u.Update.Removed {
		w.TowerId(id)
	}
}

func writeTower(w *Writer, t *world.Tower) {
	w.TowerId(t.Id)
	w.Uint8(uint8(t.Type))
	w.Bool(t.HasOwner)
	w.PlayerId(t.Owner)
	w.Uint8(t.Delay)
	w.Units(t.Units)
}

// InfoEventUpdate forwards one world.InfoEvent verbatim.
type InfoEventUpdate struct {
	Event world.InfoEvent
}

func (u InfoEventUpdate) marshal(w *Writer) {
	w.Uint8(uint8(idInfoEvent))
	ev := u.Event
	w.Uint8(uint8(ev.Kind))
	w.TowerId(ev.Position)
	w.Bool(ev.HasAttacker)
	w.PlayerId(ev.Attacker)
	w.Bool(ev.HasDefender)
	w.PlayerId(ev.Defender)
	w.Uint8(uint8(ev.Side))
	w.Uint8(uint8(ev.Cause))
	w.Uint8(uint8(ev.Reason))
}

// PlayerSyncUpdate carries the player-scoreboard half of a client's
// Knowledge delta: players newly known or changed in full, and the ids of
// players that dropped out of tracking.
type PlayerSyncUpdate struct {
	Added   []*world.PlayerInfo
	Changed []*world.PlayerInfo
	Removed []world.PlayerId
}

func (u PlayerSyncUpdate) marshal(w *Writer) {
	w.Uint8(uint8(idPlayerSync))
	w.Varint(uint32(len(u.Added)))
	for _, p := range u.Added {
		writePlayerInfo(w, p)
	}
	w.Varint(uint32(len(u.Changed)))
	for _, p := range u.Changed {
		writePlayerInfo(w, p)
	}
	w.Varint(uint32(len(u.Removed)))
	for _, id := range u.Removed {
		w.PlayerId(id)
	}
}

func writePlayerInfo(w *Writer, p *world.PlayerInfo) {
	w.PlayerId(p.Id)
	w.String(p.Alias)
	w.Varint(uint32(p.Score))
	w.Bool(p.Alive)
}

func readPlayerInfo(r *Reader) (*world.PlayerInfo, error) {
	id, err := r.PlayerId()
	if err != nil {
		return nil, err
	}
	alias, err := r.String()
	if err != nil {
		return nil, err
	}
	score, err := r.Varint()
	if err != nil {
		return nil, err
	}
	alive, err := r.Bool()
	if err != nil {
		return nil, err
	}
	return &world.PlayerInfo{Id: id, Alias: alias, Score: int(score), Alive: alive}, nil
}

func readPlayerSync(r *Reader) (Update, error) {
	var u PlayerSyncUpdate
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		p, err := readPlayerInfo(r)
		if err != nil {
			return nil, err
		}
		u.Added = append(u.Added, p)
	}
	n, err = r.Varint()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		p, err := readPlayerInfo(r)
		if err != nil {
			return nil, err
		}
		u.Changed = append(u.Changed, p)
	}
	n, err = r.Varint()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		id, err := r.PlayerId()
		if err != nil {
			return nil, err
		}
		u.Removed = append(u.Removed, id)
	}
	return u, nil
}

// WorldSyncUpdate carries the world's singleton clock/desync-check state:
// the current simulation tick (for client-side interpolation) and a folded
// checksum of everything in the client's Knowledge, so a drifted client can
// detect the mismatch without the server shipping its whole tracked set.
type WorldSyncUpdate struct {
	Tick     uint64
	Checksum uint32
}

func (u WorldSyncUpdate) marshal(w *Writer) {
	w.Uint8(uint8(idWorldSync))
	w.Uint64(u.Tick)
	w.Uint32(u.Checksum)
}

func readWorldSync(r *Reader) (Update, error) {
	tick, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	checksum, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	return WorldSyncUpdate{Tick: tick, Checksum: checksum}, nil
}

// PlayerDiedUpdate tells the client watching its own player that the game
// ended and why.
type PlayerDiedUpdate struct {
	Reason world.DeathReason
}

func (u PlayerDiedUpdate) marshal(w *Writer) {
	w.Uint8(uint8(idPlayerDied))
	w.Uint8(uint8(u.Reason))
}

// EncodeUpdate serialises u to its wire form.
func EncodeUpdate(u Update) ([]byte, error) {
	w := NewWriter()
	u.marshal(w)
	return w.Bytes(), nil
}

// DecodeUpdate parses an Update frame received from the server. Clients use
// this; the server only ever encodes.
func DecodeUpdate(data []byte) (Update, error) {
	r := NewReader(data)
	id, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	switch updateId(id) {
	case idTowerSync:
		return readTowerSync(r)
	case idInfoEvent:
		return readInfoEvent(r)
	case idPlayerSync:
		return readPlayerSync(r)
	case idWorldSync:
		return readWorldSync(r)
	case idPlayerDied:
		reason, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		return PlayerDiedUpdate{Reason: world.DeathReason(reason)}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown update id %d", id)
	}
}

func readTower(r *Reader) (*world.Tower, error) {
	id, err := r.TowerId()
	if err != nil {
		return nil, err
	}
	typ, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	hasOwner, err := r.Bool()
	if err != nil {
		return nil, err
	}
	owner, err := r.PlayerId()
	if err != nil {
		return nil, err
	}
	delay, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	units, err := r.Units()
	if err != nil {
		return nil, err
	}
	return &world.Tower{Id: id, Type: world.TowerType(typ), HasOwner: hasOwner, Owner: owner, Delay: delay, Units: units}, nil
}

func readTowerSync(r *Reader) (Update, error) {
	var u world.Update
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		t, err := readTower(r)
		if err != nil {
			return nil, err
		}
		u.Added = append(u.Added, t)
	}
	n, err = r.Varint()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		t, err := readTower(r)
		if err != nil {
			return nil, err
		}
		u.Changed = append(u.Changed, t)
	}
	n, err = r.Varint()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < n; i++ {
		id, err := r.TowerId()
		if err != nil {
			return nil, err
		}
		u.Removed = append(u.Removed, id)
	}
	return TowerSyncUpdate{Update: u}, nil
}

func readInfoEvent(r *Reader) (Update, error) {
	var ev world.InfoEvent
	kind, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	ev.Kind = world.InfoEventKind(kind)
	if ev.Position, err = r.TowerId(); err != nil {
		return nil, err
	}
	if ev.HasAttacker, err = r.Bool(); err != nil {
		return nil, err
	}
	if ev.Attacker, err = r.PlayerId(); err != nil {
		return nil, err
	}
	if ev.HasDefender, err = r.Bool(); err != nil {
		return nil, err
	}
	if ev.Defender, err = r.PlayerId(); err != nil {
		return nil, err
	}
	side, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	ev.Side = world.CombatSide(side)
	cause, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	ev.Cause = world.Unit(cause)
	reason, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	ev.Reason = world.GainedTowerReason(reason)
	return InfoEventUpdate{Event: ev}, nil
}
