package world

import "errors"

var (
	ErrNotOwner        = errors.New("world: tower not owned by player")
	ErrTowerDelayed    = errors.New("world: tower is delayed")
	ErrInsufficientUnits = errors.New("world: insufficient units")
	ErrUnknownTower    = errors.New("world: unknown tower")
	ErrAlreadySpawned  = errors.New("world: player already has a ruler in play")
	ErrNoSpawn         = errors.New("world: no eligible spawn tower")
	ErrBadUpgrade      = errors.New("world: upgrade not available")
	ErrMissingPrereqs  = errors.New("world: upgrade prerequisites not met")
)

// Spawn places a fresh Ruler for player at a freshly selected eligible
// tower, the first action a new player must take.
func (tx *Tx) Spawn(player PlayerId, rng func(int) int, h Handler) (TowerId, error) {
	w := tx.w
	data := w.playerData[player]
	if data == nil {
		return TowerId{}, ErrUnknownTower
	}
	if data.Alive {
		return TowerId{}, ErrAlreadySpawned
	}
	id, ok := SelectSpawn(w, rng)
	if !ok {
		return TowerId{}, ErrNoSpawn
	}
	t := w.TowerAt(id)
	t.Units.Add(Ruler, 1)
	t.Units.Add(Soldier, 5)
	w.captureTower(t, player, ReasonSpawned, h)
	data.Alive = true
	data.DeathReason = DeathNone
	return id, nil
}

// DeployForce splits units off tower into a new Force following path,
// provided player owns the tower, the tower is active, and it holds enough
// of each requested unit.
func (tx *Tx) DeployForce(player PlayerId, source TowerId, units Units, path Path) (*Force, error) {
	w := tx.w
	t := w.TowerAt(source)
	if t == nil {
		return nil, ErrUnknownTower
	}
	if !t.HasOwner || t.Owner != player {
		return nil, ErrNotOwner
	}
	if !t.Active() {
		return nil, ErrTowerDelayed
	}
	maxEdge := maxEdgeDistance(units)
	if err := path.Validate(maxEdge); err != nil {
		return nil, err
	}
	if path.Source() != source {
		return nil, ErrInvalidPath
	}
	for u := Unit(0); u < unitCount; u++ {
		if units[u] > t.Units[u] {
			return nil, ErrInsufficientUnits
		}
	}
	for u := Unit(0); u < unitCount; u++ {
		removed := t.Units.Remove(u, int(units[u]))
		assertDebug(removed == int(units[u]), "world: DeployForce removed %d of unit %v, wanted %d", removed, u, units[u])
	}
	f := NewForce(player, true, units, path, forceFuel(units))
	t.OutboundForces = append(t.OutboundForces, f)
	if dst := w.TowerAt(f.CurrentDestination()); dst != nil {
		dst.InboundForces = append(dst.InboundForces, f)
	}
	return f, nil
}

// maxEdgeDistance returns the smallest MaxEdgeDistance across every unit
// kind present in units, the binding constraint on the whole Force's
// allowed leg length.
func maxEdgeDistance(units Units) int {
	best := -1
	for u := Unit(0); u < unitCount; u++ {
		if units[u] == 0 {
			continue
		}
		d := u.MaxEdgeDistance()
		if best == -1 || d < best {
			best = d
		}
	}
	if best == -1 {
		return 0
	}
	return best
}

// forceFuel is the number of edges a freshly deployed Force may traverse
// before expiring, derived from the weakest-ranged unit it carries.
func forceFuel(units Units) uint8 {
	fuel := 255
	for u := Unit(0); u < unitCount; u++ {
		if units[u] == 0 {
			continue
		}
		if d := u.MaxEdgeDistance() * 4; d < fuel {
			fuel = d
		}
	}
	if fuel > 255 {
		fuel = 255
	}
	return uint8(fuel)
}

// SetSupplyLine records a standing resupply route from source, validated
// the same way a deployed Force's path would be, but never consuming units
// itself.
func (tx *Tx) SetSupplyLine(player PlayerId, source TowerId, path Path) error {
	w := tx.w
	t := w.TowerAt(source)
	if t == nil {
		return ErrUnknownTower
	}
	if !t.HasOwner || t.Owner != player {
		return ErrNotOwner
	}
	if len(path) == 0 {
		t.SupplyLine = nil
		return nil
	}
	if err := path.Validate(Tank.MaxEdgeDistance()); err != nil {
		return err
	}
	if path.Source() != source {
		return ErrInvalidPath
	}
	t.SupplyLine = path.Clone()
	return nil
}

// Upgrade transitions tower from its current type to target, provided
// player owns it, the tower is active, the type graph allows the
// transition, and the player's histogram satisfies its prerequisites. The
// tower is left with a cooldown Delay and its unit counts reconciled to the
// new type's capacity.
func (tx *Tx) Upgrade(player PlayerId, id TowerId, target TowerType, delayTicks uint8) error {
	w := tx.w
	t := w.TowerAt(id)
	if t == nil {
		return ErrUnknownTower
	}
	if !t.HasOwner || t.Owner != player {
		return ErrNotOwner
	}
	if !t.Active() {
		return ErrTowerDelayed
	}
	prereq, ok := t.Type.CanUpgradeTo(target)
	if !ok {
		return ErrBadUpgrade
	}
	data := w.playerData[player]
	for need, count := range prereq {
		if data.TowerTypeCounts[need] < count {
			return ErrMissingPrereqs
		}
	}
	from := t.Type
	t.Type = target
	t.Delay = delayTicks
	t.ReconcileCapacity()
	if data != nil {
		data.ChangeTowerType(from, target)
		data.Alerts = data.Alerts.Set(AlertUpgradedAnyTower)
	}
	return nil
}

// RequestAlliance offers an alliance from a to b, forming it immediately if
// b had already offered one to a, in which case NewAlliance fires once per
// side.
func (tx *Tx) RequestAlliance(a, b PlayerId, h Handler) bool {
	formed := tx.w.RequestAlliance(a, b)
	if formed {
		h.HandleInfoEvent(InfoEvent{Kind: EventNewAlliance, Attacker: a, HasAttacker: true, Defender: b, HasDefender: true})
		h.HandleInfoEvent(InfoEvent{Kind: EventNewAlliance, Attacker: b, HasAttacker: true, Defender: a, HasDefender: true})
	}
	return formed
}

// BreakAlliance removes any alliance between a and b; breaking
// is always mutual and emits no event.
func (tx *Tx) BreakAlliance(a, b PlayerId) {
	tx.w.BreakAlliance(a, b)
}
