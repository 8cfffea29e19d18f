package world

import (
	"sync"

	"github.com/brentp/intintmap"
)

// TickRate is the number of simulation ticks per second.
const TickRate = 10

// World owns the tower grid, the player directory, and every Chunk; all
// mutation happens inside a call to Exec, mirroring the single-writer
// transaction pattern this codebase uses elsewhere.
type World struct {
	mu sync.Mutex

	// chunkIndex maps a ChunkId's packed key to an index into chunks, giving
	// O(1) dense lookup without boxing every id through a Go map.
	chunkIndex *intintmap.Map
	chunks     []*Chunk

	players     map[PlayerId]*Player
	playerData  map[PlayerId]*PlayerData
	nextPlayer  PlayerId

	tick uint64
}

// NewWorld constructs a World and populates it with a deterministic sparse
// field of neutral towers derived from seed, ready for players and bots to
// spawn into. The same seed always produces the same starting layout.
func NewWorld(seed int64) *World {
	w := &World{
		chunkIndex: intintmap.New(WorldChunks*WorldChunks, 0.6),
		players:    make(map[PlayerId]*Player),
		playerData: make(map[PlayerId]*PlayerData),
	}
	generate(w, seed)
	return w
}

// Tick returns the number of ticks the world has simulated.
func (w *World) Tick() uint64 { return w.tick }

// Tx is a handle into a World passed to the function given to Exec; all
// tower, chunk, and player mutation happens through it.
type Tx struct {
	w *World
}

// Exec runs fn with exclusive access to the world, guaranteeing no other
// goroutine observes a partially applied mutation.
func (w *World) Exec(fn func(*Tx)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&Tx{w: w})
}

// World exposes read-only access to the underlying World from within a Tx,
// for code that forwards both to shared helpers.
func (tx *Tx) World() *World { return tx.w }

// chunkSlot returns the arena index for id, allocating a new empty Chunk if
// none exists yet. Lazily allocating keeps sparse, freshly generated worlds
// cheap.
func (w *World) chunkSlot(id ChunkId) int {
	key := id.key()
	if idx, ok := w.chunkIndex.Get(key); ok {
		return int(idx)
	}
	idx := int64(len(w.chunks))
	w.chunks = append(w.chunks, NewChunk(id))
	w.chunkIndex.Put(key, idx)
	return int(idx)
}

// Chunk returns the Chunk at id, allocating it if it does not yet exist.
func (w *World) Chunk(id ChunkId) *Chunk {
	return w.chunks[w.chunkSlot(id)]
}

// ChunkIfLoaded returns the Chunk at id and true, or nil and false if it has
// never been touched.
func (w *World) ChunkIfLoaded(id ChunkId) (*Chunk, bool) {
	key := id.key()
	idx, ok := w.chunkIndex.Get(key)
	if !ok {
		return nil, false
	}
	return w.chunks[idx], true
}

// Chunks iterates over every allocated Chunk. Order is allocation order, not
// spatial order; callers needing spatial determinism must sort.
func (w *World) Chunks(yield func(*Chunk) bool) {
	for _, c := range w.chunks {
		if !yield(c) {
			return
		}
	}
}

// Forces iterates over every Force currently in flight anywhere in the
// world, visiting each tower's OutboundForces list.
func (w *World) Forces(yield func(*Force) bool) {
	for _, c := range w.chunks {
		for t := range c.Towers {
			for _, f := range t.OutboundForces {
				if !yield(f) {
					return
				}
			}
		}
	}
}

// TowerAt returns the Tower at id, or nil if its chunk has never been
// touched or the cell is empty.
func (w *World) TowerAt(id TowerId) *Tower {
	c, ok := w.ChunkIfLoaded(id.Chunk())
	if !ok {
		return nil
	}
	return c.Tower(id)
}

// SetTowerAt installs t at id, allocating the owning chunk if needed.
func (w *World) SetTowerAt(id TowerId, t *Tower) {
	w.Chunk(id.Chunk()).SetTower(id, t)
}

// PlayerIds iterates every known player id in ascending order.
func (w *World) PlayerIds(yield func(PlayerId) bool) {
	ids := make([]PlayerId, 0, len(w.playerData))
	for id := range w.playerData {
		ids = append(ids, id)
	}
	sortPlayerIds(ids)
	for _, id := range ids {
		if !yield(id) {
			return
		}
	}
}

func sortPlayerIds(ids []PlayerId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// Player returns the in-world relation record for id, or nil if unknown.
func (w *World) Player(id PlayerId) *Player { return w.players[id] }

// PlayerData returns the service aggregate for id, or nil if unknown.
func (w *World) PlayerData(id PlayerId) *PlayerData { return w.playerData[id] }

// AllocatePlayer assigns a fresh PlayerId and creates its in-world and
// aggregate records.
func (w *World) AllocatePlayer(alias string) (PlayerId, *PlayerData) {
	w.nextPlayer++
	id := w.nextPlayer
	w.players[id] = NewPlayer()
	data := NewPlayerData(id, alias)
	w.playerData[id] = data
	return id, data
}

// RemovePlayer deletes every record for id. Callers must have already
// released every tower and force the player owned.
func (w *World) RemovePlayer(id PlayerId) {
	delete(w.players, id)
	delete(w.playerData, id)
	for _, p := range w.players {
		delete(p.Allies, id)
	}
}

// MutualAllies reports whether a and b each hold the other in their Allies
// set, the precondition for an Ally relationship.
func (w *World) MutualAllies(a, b PlayerId) bool {
	pa, pb := w.players[a], w.players[b]
	if pa == nil || pb == nil {
		return false
	}
	_, aHasB := pa.Allies[b]
	_, bHasA := pb.Allies[a]
	return aHasB && bHasA
}

// RequestAlliance records a's offer to ally with b, forming a mutual
// alliance (and emitting NewAlliance, handled by the caller) the moment b
// has already made the same offer.
func (w *World) RequestAlliance(a, b PlayerId) (formed bool) {
	pa, pb := w.players[a], w.players[b]
	if pa == nil || pb == nil || a == b {
		return false
	}
	pa.Allies[b] = struct{}{}
	_, already := pb.Allies[a]
	return already
}

// BreakAlliance removes any alliance offer/relationship between a and b.
func (w *World) BreakAlliance(a, b PlayerId) {
	if pa := w.players[a]; pa != nil {
		delete(pa.Allies, b)
	}
	if pb := w.players[b]; pb != nil {
		delete(pb.Allies, a)
	}
}
