package world

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// KnowledgeExpiryTicks is how many consecutive syncs an actor may go unseen
// (no longer visible, but not explicitly reported gone) before Knowledge
// gives up on it and reports it Removed. A short grace period absorbs a
// single tick's viewport-edge flicker without forcing a client to discard
// and immediately re-request an actor it is still plausibly tracking.
const KnowledgeExpiryTicks = 3

// knowledgeRecord is the per-actor bookkeeping Knowledge keeps regardless of
// actor kind: the checksum last sent, and how many consecutive syncs it has
// gone unseen.
type knowledgeRecord struct {
	checksum uint64
	missing  int
}

// Knowledge tracks, per connected client, which actors it has been told
// about and the checksum of what it was last told, so each sync only needs
// to describe what actually changed. It tracks two actor kinds: Tower
// (chunk-scoped, gated by viewport visibility) and Player (global, every
// connected client tracks every player). The world's own tick counter is
// a singleton value with no per-actor identity, so it rides along on every
// sync rather than through this keepalive machinery; see
// protocol.WorldSyncUpdate.
type Knowledge struct {
	towers  map[TowerId]*knowledgeRecord
	players map[PlayerId]*knowledgeRecord
}

// NewKnowledge constructs an empty Knowledge, as for a freshly connected
// client.
func NewKnowledge() *Knowledge {
	return &Knowledge{
		towers:  make(map[TowerId]*knowledgeRecord),
		players: make(map[PlayerId]*knowledgeRecord),
	}
}

// Update is the per-tick delta a client must apply, one NEW/KEEPALIVE/gone
// triple per tracked actor kind. A tower or player absent from both Added
// and Changed but still tracked needed no update at all (the KEEPALIVE
// case): Knowledge noted it was seen again and left it off the wire
// entirely, since the client's last-known copy is still correct.
type Update struct {
	Added   []*Tower
	Changed []*Tower
	Removed []TowerId

	PlayersAdded   []*PlayerInfo
	PlayersChanged []*PlayerInfo
	PlayersRemoved []PlayerId
}

// Empty reports whether the update carries nothing worth sending.
func (u Update) Empty() bool {
	return len(u.Added) == 0 && len(u.Changed) == 0 && len(u.Removed) == 0 &&
		len(u.PlayersAdded) == 0 && len(u.PlayersChanged) == 0 && len(u.PlayersRemoved) == 0
}

// PlayerInfo is the synced snapshot of one player actor: the fields a
// client needs to render a scoreboard, without exposing server-internal
// bookkeeping like TowerTypeCounts or LimboSince.
type PlayerInfo struct {
	Id    PlayerId
	Alias string
	Score int
	Alive bool
}

// PlayerInfoOf builds the synced snapshot of a player's current aggregate
// state.
func PlayerInfoOf(d *PlayerData) *PlayerInfo {
	return &PlayerInfo{Id: d.Id, Alias: d.Alias, Score: d.Score, Alive: d.Alive}
}

// Checksum returns a deterministic hash of a tower's synced fields: type,
// owner, delay, and every unit count.
func Checksum(t *Tower) uint64 {
	var buf [3 + unitCount]byte
	buf[0] = byte(t.Type)
	buf[1] = byte(t.Delay)
	buf[2] = 0
	if t.HasOwner {
		buf[2] = 1
	}
	for u := Unit(0); u < unitCount; u++ {
		buf[3+int(u)] = t.Units[u]
	}
	var ownerBuf [4]byte
	binary.LittleEndian.PutUint32(ownerBuf[:], uint32(t.Owner))

	h := xxhash.New()
	h.Write(buf[:])
	h.Write(ownerBuf[:])
	return h.Sum64()
}

// PlayerChecksum returns a deterministic hash of a player's synced fields.
func PlayerChecksum(p *PlayerInfo) uint64 {
	h := xxhash.New()
	h.Write([]byte(p.Alias))
	var buf [9]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.Id))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.Score))
	buf[8] = 0
	if p.Alive {
		buf[8] = 1
	}
	h.Write(buf[:])
	return h.Sum64()
}

// Diff computes the Update a client must receive to move its Knowledge from
// its last-synced state to the given set of currently visible towers and
// known players. Added/Changed order follows the input order; callers that
// need a deterministic wire order must pass both sorted.
func (k *Knowledge) Diff(visibleTowers []*Tower, players []*PlayerInfo) Update {
	var u Update

	seenTowers := make(map[TowerId]struct{}, len(visibleTowers))
	for _, t := range visibleTowers {
		seenTowers[t.Id] = struct{}{}
		sum := Checksum(t)
		rec, known := k.towers[t.Id]
		switch {
		case !known:
			k.towers[t.Id] = &knowledgeRecord{checksum: sum}
			u.Added = append(u.Added, t)
		case rec.checksum != sum:
			rec.checksum, rec.missing = sum, 0
			u.Changed = append(u.Changed, t)
		default:
			rec.missing = 0
		}
	}
	for id, rec := range k.towers {
		if _, ok := seenTowers[id]; ok {
			continue
		}
		rec.missing++
		if rec.missing >= KnowledgeExpiryTicks {
			u.Removed = append(u.Removed, id)
			delete(k.towers, id)
		}
	}
	sortTowerIds(u.Removed)

	seenPlayers := make(map[PlayerId]struct{}, len(players))
	for _, p := range players {
		seenPlayers[p.Id] = struct{}{}
		sum := PlayerChecksum(p)
		rec, known := k.players[p.Id]
		switch {
		case !known:
			k.players[p.Id] = &knowledgeRecord{checksum: sum}
			u.PlayersAdded = append(u.PlayersAdded, p)
		case rec.checksum != sum:
			rec.checksum, rec.missing = sum, 0
			u.PlayersChanged = append(u.PlayersChanged, p)
		default:
			rec.missing = 0
		}
	}
	for id, rec := range k.players {
		if _, ok := seenPlayers[id]; ok {
			continue
		}
		rec.missing++
		if rec.missing >= KnowledgeExpiryTicks {
			u.PlayersRemoved = append(u.PlayersRemoved, id)
			delete(k.players, id)
		}
	}
	sortPlayerIds(u.PlayersRemoved)

	return u
}

// ChecksumFold returns a single 32-bit value folding every tracked actor's
// checksum (towers and players alike) together with XOR, cheap enough to
// send on every sync as a whole-Knowledge fingerprint: two clients (or a
// client and the server) with the same fold very likely agree on every
// actor's state, and a mismatch is a reliable desync signal without
// shipping the whole tracked set to compare.
func (k *Knowledge) ChecksumFold() uint32 {
	var fold uint32
	for _, rec := range k.towers {
		fold ^= foldUint64(rec.checksum)
	}
	for _, rec := range k.players {
		fold ^= foldUint64(rec.checksum)
	}
	return fold
}

func foldUint64(v uint64) uint32 {
	return uint32(v) ^ uint32(v>>32)
}

// Forget discards everything a client has been told, forcing a full resync
// on the next Diff; used after a detected desync or reconnect.
func (k *Knowledge) Forget() {
	k.towers = make(map[TowerId]*knowledgeRecord)
	k.players = make(map[PlayerId]*knowledgeRecord)
}
