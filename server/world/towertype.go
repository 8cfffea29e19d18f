package world

// TowerType is the finite enum of building kinds a Tower may be.
type TowerType uint8

const (
	Village TowerType = iota
	Town
	City
	Capital
	Headquarters
	Airfield
	Silo
	Rocket
	towerTypeCount
)

func (t TowerType) String() string {
	switch t {
	case Village:
		return "Village"
	case Town:
		return "Town"
	case City:
		return "City"
	case Capital:
		return "Capital"
	case Headquarters:
		return "Headquarters"
	case Airfield:
		return "Airfield"
	case Silo:
		return "Silo"
	case Rocket:
		return "Rocket"
	default:
		return "TowerType(?)"
	}
}

// generation describes a unit kind this tower type produces and the tick
// period between production cycles.
type generation struct {
	unit   Unit
	period int // ticks
}

// towerTypeInfo holds the static properties of a TowerType.
type towerTypeInfo struct {
	capacity       Units // base capacity per unit kind
	generates      []generation
	maxRangedDmg   int
	sensorDistance int
	scoreWeight    int
	spawnable      bool
	downgrade      *TowerType // single-step downgrade target, nil at base tier
	upgrades       []TowerType
	// prerequisites[up] is the minimum count of already-owned towers of each
	// type required before upgrading to "up".
	prerequisites map[TowerType]map[TowerType]int
}

var towerTypeTable [towerTypeCount]towerTypeInfo

func init() {
	cap1 := Units{}
	cap1.Add(Soldier, 30)
	cap1.Add(Tank, 10)
	cap1.Add(Shield, 10)

	cap2 := Units{}
	cap2.Add(Soldier, 60)
	cap2.Add(Tank, 25)
	cap2.Add(Shield, 25)

	cap3 := Units{}
	cap3.Add(Soldier, 99)
	cap3.Add(Tank, 50)
	cap3.Add(Shield, 50)

	capHQ := Units{}
	capHQ.Add(Soldier, 99)
	capHQ.Add(Tank, 99)
	capHQ.Add(Shield, 99)
	capHQ.Add(Ruler, 1)

	capAir := Units{}
	capAir.Add(Fighter, 20)
	capAir.Add(Chopper, 20)
	capAir.Add(Bomber, 10)
	capAir.Add(Shield, 20)

	capSilo := Units{}
	capSilo.Add(Nuke, 3)
	capSilo.Add(Shield, 50)

	capRocket := Units{}
	capRocket.Add(Shell, 5)
	capRocket.Add(Emp, 5)
	capRocket.Add(Shield, 25)

	village, town, city, capital := Village, Town, City, Capital

	towerTypeTable[Village] = towerTypeInfo{
		capacity:       cap1,
		generates:      []generation{{Soldier, 30 * TickRate}},
		maxRangedDmg:   5,
		sensorDistance: 2,
		scoreWeight:    1,
		spawnable:      true,
		upgrades:       []TowerType{Town, Airfield, Silo},
	}
	towerTypeTable[Town] = towerTypeInfo{
		capacity:       cap2,
		generates:      []generation{{Soldier, 20 * TickRate}, {Tank, 40 * TickRate}},
		maxRangedDmg:   10,
		sensorDistance: 3,
		scoreWeight:    3,
		spawnable:      true,
		downgrade:      &village,
		upgrades:       []TowerType{City, Rocket},
		prerequisites:  map[TowerType]map[TowerType]int{City: {Town: 2}},
	}
	towerTypeTable[City] = towerTypeInfo{
		capacity:       cap3,
		generates:      []generation{{Soldier, 15 * TickRate}, {Tank, 25 * TickRate}},
		maxRangedDmg:   20,
		sensorDistance: 4,
		scoreWeight:    7,
		downgrade:      &town,
		upgrades:       []TowerType{Capital},
		prerequisites:  map[TowerType]map[TowerType]int{Capital: {City: 3}},
	}
	towerTypeTable[Capital] = towerTypeInfo{
		capacity:       capHQ,
		generates:      []generation{{Soldier, 10 * TickRate}, {Tank, 20 * TickRate}},
		maxRangedDmg:   35,
		sensorDistance: 5,
		scoreWeight:    15,
		downgrade:      &city,
	}
	towerTypeTable[Headquarters] = towerTypeInfo{
		capacity:       capHQ,
		generates:      []generation{{Soldier, 10 * TickRate}, {Tank, 20 * TickRate}},
		maxRangedDmg:   50,
		sensorDistance: 6,
		scoreWeight:    25,
		downgrade:      &capital,
	}
	towerTypeTable[Airfield] = towerTypeInfo{
		capacity:       capAir,
		generates:      []generation{{Fighter, 25 * TickRate}, {Chopper, 35 * TickRate}, {Bomber, 50 * TickRate}},
		maxRangedDmg:   15,
		sensorDistance: 5,
		scoreWeight:    8,
		downgrade:      &village,
	}
	towerTypeTable[Silo] = towerTypeInfo{
		capacity:       capSilo,
		generates:      []generation{{Nuke, 240 * TickRate}},
		maxRangedDmg:   1000,
		sensorDistance: 3,
		scoreWeight:    12,
		downgrade:      &village,
	}
	towerTypeTable[Rocket] = towerTypeInfo{
		capacity:       capRocket,
		generates:      []generation{{Shell, 90 * TickRate}, {Emp, 120 * TickRate}},
		maxRangedDmg:   10,
		sensorDistance: 4,
		scoreWeight:    10,
		downgrade:      &town,
	}
}

// Capacity returns the maximum units of kind u this tower type may hold.
func (t TowerType) Capacity(u Unit) int { return int(towerTypeTable[t].capacity[u]) }

// Generates returns the unit-production schedule of this tower type.
func (t TowerType) Generates() []generation { return towerTypeTable[t].generates }

// MaxRangedDamage returns the maximum ranged damage this tower type can
// absorb in a single combat salvo.
func (t TowerType) MaxRangedDamage() int { return towerTypeTable[t].maxRangedDmg }

// SensorDistance returns the tower's visibility/ranged distance.
func (t TowerType) SensorDistance() int { return towerTypeTable[t].sensorDistance }

// ScoreWeight returns the contribution of one owned tower of this type to a
// player's score.
func (t TowerType) ScoreWeight() int { return towerTypeTable[t].scoreWeight }

// Spawnable reports whether a tower of this type is eligible as a spawn
// point.
func (t TowerType) Spawnable() bool { return towerTypeTable[t].spawnable }

// Downgrade returns the tower type one tier below this one, or false at the
// base tier.
func (t TowerType) Downgrade() (TowerType, bool) {
	d := towerTypeTable[t].downgrade
	if d == nil {
		return t, false
	}
	return *d, true
}

// Upgrades returns the set of tower types this type may transition to.
func (t TowerType) Upgrades() []TowerType { return towerTypeTable[t].upgrades }

// CanUpgradeTo reports whether upgrading from t to target is structurally
// legal, and if so returns the tower-type histogram prerequisite (possibly
// empty) that must be satisfied by the owning player.
func (t TowerType) CanUpgradeTo(target TowerType) (map[TowerType]int, bool) {
	for _, up := range towerTypeTable[t].upgrades {
		if up == target {
			return towerTypeTable[t].prerequisites[target], true
		}
	}
	return nil, false
}
