package world

// Tower is the cell-level state of a single grid position.
type Tower struct {
	Id   TowerId
	Type TowerType

	Owner    PlayerId
	HasOwner bool

	Units Units

	// Delay is the EMP or upgrade cooldown remaining, in ticks. Zero means
	// the tower is not delayed.
	Delay uint8

	// OutboundForces is the authoritative list of every Force currently
	// departed from this tower and still in flight, regardless of which leg
	// of its Path it is traversing.
	OutboundForces []*Force

	// InboundForces is the list of every Force currently converging on this
	// tower on the leg of its Path that ends here. A Force is simultaneously
	// outbound at the tower it departed and inbound at the tower it is
	// heading toward; the two lists reference the same objects.
	InboundForces []*Force

	// SupplyLine, if set, starts at this tower and ends within its ranged
	// distance.
	SupplyLine Path
}

// NewTower constructs an unowned Tower of the given type at id.
func NewTower(id TowerId, t TowerType) *Tower {
	return &Tower{Id: id, Type: t}
}

// Active reports whether the tower is owned, has zero delay, and is not
// mid-upgrade.
func (t *Tower) Active() bool {
	return t.HasOwner && t.Delay == 0
}

// Capture transfers ownership of the tower to player and clears any residual
// delay accrued under the previous owner.
func (t *Tower) Capture(player PlayerId) {
	t.Owner = player
	t.HasOwner = true
	t.Delay = 0
}

// Abandon clears ownership of the tower. An unowned tower must never carry a
// Ruler, so callers must ensure the tower's unit bag holds no Ruler before
// calling this.
func (t *Tower) Abandon() {
	t.HasOwner = false
	t.Owner = 0
}

// ReconcileCapacity clamps every unit count in the tower's bag down to the
// tower type's current capacity, used after a type change (upgrade or
// downgrade).
func (t *Tower) ReconcileCapacity() {
	for u := Unit(0); u < unitCount; u++ {
		if cap := t.Type.Capacity(u); int(t.Units[u]) > cap {
			t.Units[u] = uint8(cap)
		}
	}
}

// RemoveOutbound removes f from the tower's outbound list, preserving order
// of the remainder.
func (t *Tower) RemoveOutbound(f *Force) {
	t.OutboundForces = removeForce(t.OutboundForces, f)
}

// RemoveInbound removes f from the tower's inbound list, preserving order of
// the remainder.
func (t *Tower) RemoveInbound(f *Force) {
	t.InboundForces = removeForce(t.InboundForces, f)
}

func removeForce(s []*Force, f *Force) []*Force {
	for i, cand := range s {
		if cand == f {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
