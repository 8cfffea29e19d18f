package world

import "github.com/go-gl/mathgl/mgl64"

// Force is a mobile packet of units moving along a Path between two
// adjacent towers.
type Force struct {
	// Player is the owning player, or false for a zombie (ownerless) force.
	Player   PlayerId
	HasOwner bool

	Units Units
	Path  Path

	// Leg is the index of the edge currently being traversed, into
	// [0, Path.Legs()).
	Leg int
	// Progress is the progress along the current leg, in [0, progressPerEdge].
	Progress uint8
	// Fuel is the number of edges this force may still traverse before it
	// expires.
	Fuel uint8
}

// NewForce constructs a Force owned by player, carrying units, along path,
// with the given starting fuel.
func NewForce(player PlayerId, hasOwner bool, units Units, path Path, fuel uint8) *Force {
	return &Force{Player: player, HasOwner: hasOwner, Units: units, Path: path.Clone(), Fuel: fuel}
}

// CurrentSource returns the tower this force most recently departed.
func (f *Force) CurrentSource() TowerId {
	src, _ := f.Path.CurrentLeg(f.Leg)
	return src
}

// CurrentDestination returns the tower this force is currently moving
// toward.
func (f *Force) CurrentDestination() TowerId {
	_, dst := f.Path.CurrentLeg(f.Leg)
	return dst
}

// AtFinalLeg reports whether the force is traversing the last edge of its
// path.
func (f *Force) AtFinalLeg() bool {
	return f.Leg == f.Path.Legs()-1
}

// ProgressPerTick returns how much Progress advances each tick, determined
// by the fastest mobile unit carried.
func (f *Force) ProgressPerTick() int {
	u, ok := f.Units.FastestMobile()
	if !ok {
		return 0
	}
	return unitSpeed[u]
}

// Arrived reports whether the force has reached CurrentDestination on the
// current leg.
func (f *Force) Arrived() bool {
	return int(f.Progress) >= progressPerEdge
}

// AdvanceLeg moves the force onto the next edge of its path, resetting
// per-edge progress and consuming one unit of fuel. It reports whether fuel
// remained to make the move.
func (f *Force) AdvanceLeg() bool {
	if f.Fuel == 0 {
		return false
	}
	f.Fuel--
	f.Leg++
	f.Progress = 0
	return true
}

// Interpolated returns the fractional progress along the current edge in
// [0,1], used for client-side rendering of the force's position.
func (f *Force) Interpolated() float64 {
	return float64(f.Progress) / float64(progressPerEdge)
}

// WorldPosition linearly interpolates f's continuous position between the
// current leg's source and destination tower coordinates, for diagnostics
// and operator tooling that want a smooth position rather than a discrete
// tower cell.
func (f *Force) WorldPosition() mgl64.Vec2 {
	src, dst := f.CurrentSource(), f.CurrentDestination()
	a := mgl64.Vec2{float64(src.X), float64(src.Y)}
	b := mgl64.Vec2{float64(dst.X), float64(dst.Y)}
	return a.Add(b.Sub(a).Mul(f.Interpolated()))
}

// Relationship classifies the relation between two players.
type Relationship uint8

const (
	Comrade Relationship = iota
	Ally
	Enemy
)

// RelationshipBetween computes the Relationship a force/tower owned by a
// would have toward one owned by b. Zombie forces (hasA/hasB false) are
// Comrade toward each other and Enemy toward everyone owned.
func RelationshipBetween(w *World, a PlayerId, hasA bool, b PlayerId, hasB bool) Relationship {
	if !hasA && !hasB {
		return Comrade
	}
	if hasA != hasB {
		return Enemy
	}
	if a == b {
		return Comrade
	}
	if w.MutualAllies(a, b) {
		return Ally
	}
	return Enemy
}

// Friendly reports whether the relationship permits a force to move onto,
// or reinforce, the other side without combat.
func (r Relationship) Friendly() bool { return r == Comrade || r == Ally }
