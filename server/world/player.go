package world

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Player is the in-world relation record for a player: who they consider
// allies. Alliance is mutual iff both sides hold each other.
type Player struct {
	Allies map[PlayerId]struct{}
}

// NewPlayer constructs an empty in-world Player record.
func NewPlayer() *Player {
	return &Player{Allies: make(map[PlayerId]struct{})}
}

// AllyList returns the PlayerIds p has offered alliance to (not necessarily
// mutual), in a deterministic ascending order, for operator tooling and
// logging.
func (p *Player) AllyList() []PlayerId {
	ids := maps.Keys(p.Allies)
	slices.Sort(ids)
	return ids
}

// DeathReason names why a player's game ended.
type DeathReason uint8

const (
	DeathNone DeathReason = iota
	DeathKilled
	DeathDisconnected
	DeathTimedOut
)

// PlayerData is the service-side aggregate state for a player: identity,
// score, and bookkeeping that is expensive to recompute from the tower grid
// every tick.
type PlayerData struct {
	Id    PlayerId
	Alive bool
	Alias string

	Score int

	// Towers is the set of TowerIds this player currently owns, kept in sync
	// with Tower.Owner by every capture/loss/destroy path so that
	// len(Towers) always equals the count of Towers with Owner==Id.
	Towers map[TowerId]struct{}

	// Lifetime is the number of ticks this player has been alive since
	// spawning.
	Lifetime uint32

	// TowerTypeCounts is a histogram of owned tower types, used to validate
	// Upgrade prerequisites without rescanning Towers.
	TowerTypeCounts [towerTypeCount]int

	Alerts      Alerts
	DeathReason DeathReason

	// LimboSince is the tick at which the player's connection dropped, or 0
	// if connected. Used by maintenance to enforce the disconnect timeout.
	LimboSince uint32
	InLimbo    bool
}

// NewPlayerData constructs a freshly joined, not-yet-spawned PlayerData.
func NewPlayerData(id PlayerId, alias string) *PlayerData {
	return &PlayerData{Id: id, Alias: alias, Towers: make(map[TowerId]struct{})}
}

// AddTower records a tower gained by the player, updating the type
// histogram.
func (p *PlayerData) AddTower(id TowerId, t TowerType) {
	p.Towers[id] = struct{}{}
	p.TowerTypeCounts[t]++
}

// RemoveTower records a tower lost by the player, updating the type
// histogram.
func (p *PlayerData) RemoveTower(id TowerId, t TowerType) {
	if _, ok := p.Towers[id]; !ok {
		return
	}
	delete(p.Towers, id)
	p.TowerTypeCounts[t]--
}

// ChangeTowerType updates the histogram when an owned tower's type changes
// in place (upgrade/downgrade) without changing ownership.
func (p *PlayerData) ChangeTowerType(from, to TowerType) {
	p.TowerTypeCounts[from]--
	p.TowerTypeCounts[to]++
}

// RecomputeScore recomputes and stores the player's score as the sum of owned tower
// score weights.
func (p *PlayerData) RecomputeScore(w *World) {
	score := 0
	for id := range p.Towers {
		if t := w.TowerAt(id); t != nil {
			score += t.Type.ScoreWeight()
		}
	}
	p.Score = score
}
