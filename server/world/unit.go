package world

// Field is the domain a Unit or a combat participant's field occupies.
// Combat is resolved per-field, Air before Surface.
type Field uint8

const (
	Surface Field = iota
	Air
)

// Unit is the finite enum of mobile and static unit kinds a Force or Tower
// may carry, grounded on original_source/common/src/combatants.rs.
type Unit uint8

const (
	Soldier Unit = iota
	Tank
	Shield
	Fighter
	Chopper
	Bomber
	Shell
	Emp
	Nuke
	Ruler
	unitCount
)

// InfiniteDamage marks a damage value that always kills its target outright,
// used by e.g. Nuke-vs-Surface and Ruler's total vulnerability to capture.
const InfiniteDamage = 1 << 30

// unitInfo describes the static properties of a Unit.
type unitInfo struct {
	field        Field
	mobile       bool
	singleUse    bool
	maxEdgeDist  int
	damage       [2][2]int // damage[attackerField][defenderField]
}

var unitTable = [unitCount]unitInfo{
	Soldier: {field: Surface, mobile: true, maxEdgeDist: 2, damage: [2][2]int{
		{3, 0}, {0, 0},
	}},
	Tank: {field: Surface, mobile: true, maxEdgeDist: 2, damage: [2][2]int{
		{6, 0}, {0, 0},
	}},
	Shield: {field: Surface, mobile: true, maxEdgeDist: 2, damage: [2][2]int{
		{0, 0}, {0, 0},
	}},
	Fighter: {field: Air, mobile: true, maxEdgeDist: 3, damage: [2][2]int{
		{0, 0}, {4, 4},
	}},
	Chopper: {field: Air, mobile: true, maxEdgeDist: 3, damage: [2][2]int{
		{0, 0}, {3, 5},
	}},
	Bomber: {field: Air, mobile: true, maxEdgeDist: 4, damage: [2][2]int{
		{0, 0}, {8, 2},
	}},
	Shell: {field: Surface, mobile: false, singleUse: true, maxEdgeDist: 2, damage: [2][2]int{
		{10, 0}, {0, 0},
	}},
	Emp: {field: Surface, mobile: false, singleUse: true, maxEdgeDist: 2, damage: [2][2]int{
		{0, 0}, {0, 0},
	}},
	Nuke: {field: Surface, mobile: false, singleUse: true, maxEdgeDist: 5, damage: [2][2]int{
		{InfiniteDamage, InfiniteDamage}, {InfiniteDamage, InfiniteDamage},
	}},
	Ruler: {field: Surface, mobile: true, maxEdgeDist: 1, damage: [2][2]int{
		{1, 0}, {0, 0},
	}},
}

// Field returns the unit's natural field.
func (u Unit) Field() Field { return unitTable[u].field }

// Mobile reports whether the unit can be carried by a Force.
func (u Unit) Mobile() bool { return unitTable[u].mobile }

// SingleUse reports whether the unit is consumed on deploy/play.
func (u Unit) SingleUse() bool { return unitTable[u].singleUse }

// MaxEdgeDistance returns the maximum edge distance a Force carrying this
// unit may traverse in a single leg.
func (u Unit) MaxEdgeDistance() int { return unitTable[u].maxEdgeDist }

// DamageAgainst returns the damage this unit deals against a defender
// occupying defenderField, when the unit itself is deployed in
// attackerField (which may differ from its natural field under overflow
// promotion).
func (u Unit) DamageAgainst(attackerField, defenderField Field) int {
	return unitTable[u].damage[attackerField][defenderField]
}

func (u Unit) String() string {
	switch u {
	case Soldier:
		return "Soldier"
	case Tank:
		return "Tank"
	case Shield:
		return "Shield"
	case Fighter:
		return "Fighter"
	case Chopper:
		return "Chopper"
	case Bomber:
		return "Bomber"
	case Shell:
		return "Shell"
	case Emp:
		return "Emp"
	case Nuke:
		return "Nuke"
	case Ruler:
		return "Ruler"
	default:
		return "Unit(?)"
	}
}

// CapacityPerUnit is the maximum count of a single Unit kind a Units bag may
// hold.
const CapacityPerUnit = 99

// Units is a small multiset from Unit to count. Zero value is an empty bag.
type Units [unitCount]uint8

// Count returns the count of u in the bag.
func (b Units) Count(u Unit) uint8 { return b[u] }

// Add adds n of unit u, clamped to CapacityPerUnit, returning the number
// actually added.
func (b *Units) Add(u Unit, n int) int {
	cur := int(b[u])
	room := CapacityPerUnit - cur
	if n > room {
		n = room
	}
	if n < 0 {
		return b.Remove(u, -n)
	}
	b[u] = uint8(cur + n)
	return n
}

// Remove subtracts up to n of unit u, returning the number actually removed.
func (b *Units) Remove(u Unit, n int) int {
	cur := int(b[u])
	if n > cur {
		n = cur
	}
	b[u] = uint8(cur - n)
	return n
}

// Empty reports whether the bag holds no units at all.
func (b Units) Empty() bool {
	for _, n := range b {
		if n > 0 {
			return false
		}
	}
	return true
}

// Total returns the sum of all unit counts in the bag.
func (b Units) Total() int {
	total := 0
	for _, n := range b {
		total += int(n)
	}
	return total
}

// Merge adds every unit in other into b, clamped per-unit to capacity.
func (b *Units) Merge(other Units) {
	for u := Unit(0); u < unitCount; u++ {
		if n := other[u]; n > 0 {
			b.Add(u, int(n))
		}
	}
}

// HasRuler reports whether the bag contains at least one Ruler.
func (b Units) HasRuler() bool { return b[Ruler] > 0 }

// FastestMobile returns the fastest mobile unit present in the bag (the unit
// with the highest per-tick progress), used to compute a Force's
// progress-per-tick. ok is false if the bag carries no mobile
// unit, which cannot legally form a Force.
func (b Units) FastestMobile() (u Unit, ok bool) {
	best := -1
	for candidate := Unit(0); candidate < unitCount; candidate++ {
		if b[candidate] == 0 || !candidate.Mobile() {
			continue
		}
		speed := unitSpeed[candidate]
		if speed > best {
			best = speed
			u, ok = candidate, true
		}
	}
	return
}

// unitSpeed is the per-tick path progress granted by the fastest unit in a
// Force, in path-progress units per tick out of progressPerEdge.
var unitSpeed = [unitCount]int{
	Soldier: 6,
	Tank:    4,
	Shield:  6,
	Fighter: 14,
	Chopper: 10,
	Bomber:  8,
	Ruler:   6,
}

// progressPerEdge is the path_progress value that represents a fully
// traversed edge.
const progressPerEdge = 120
