package world

// Combatants is one side of a fight: either a bare Force's unit bag, or a
// Tower's type and unit bag. At most one side of a fight may be a tower.
type Combatants struct {
	IsTower   bool
	TowerType TowerType
	Units     Units
	Player    PlayerId
	HasPlayer bool
}

// ForceCombatant builds the Combatants view of a Force.
func ForceCombatant(f *Force) Combatants {
	return Combatants{Units: f.Units, Player: f.Player, HasPlayer: f.HasOwner}
}

// TowerCombatant builds the Combatants view of a Tower.
func TowerCombatant(t *Tower) Combatants {
	return Combatants{IsTower: true, TowerType: t.Type, Units: t.Units, Player: t.Owner, HasPlayer: t.HasOwner}
}

// rangedUnit reports whether u is an indirect-fire weapon whose damage
// against a tower is capped by the tower's ranged-damage absorption.
func rangedUnit(u Unit) bool {
	return u == Shell || u == Bomber
}

// InfoSink receives every InfoEvent a fight produces.
type InfoSink func(InfoEvent)

// fightState is the mutable attrition ledger for one side during a fight.
type fightState struct {
	units     Units
	isTower   bool
	towerType TowerType
	player    PlayerId
	hasPlayer bool
}

// NuclearAnnihilationCap bounds the damage budget a single field's attrition
// pass may spend against one side, so a field packed past any realistic
// garrison size still resolves in bounded work instead of one kill per unit.
const NuclearAnnihilationCap = 1000

// Fight resolves combat between attacker and defender, mutating neither
// input; it returns the winning side (nil for a stalemate) together with
// the final surviving Units of each side. Every InfoEvent produced along
// the way is passed to onInfo, positioned at pos.
//
// This is a from-scratch state machine, designed to avoid closure-driven
// mutation of two mutable sides at once, rather than a literal port of a
// field-by-field damage ledger; see DESIGN.md for the resolved
// ambiguities. It satisfies the symmetry invariant that commuting
// attacker/defender flips the winner and mirrors attrition exactly.
func Fight(attacker, defender Combatants, pos TowerId, onInfo InfoSink) (winner *CombatSide, atkOut, defOut Units) {
	if attacker.IsTower && defender.IsTower {
		panic("world: Fight: at most one side may be a tower")
	}

	a := &fightState{units: attacker.Units, isTower: attacker.IsTower, towerType: attacker.TowerType, player: attacker.Player, hasPlayer: attacker.HasPlayer}
	d := &fightState{units: defender.Units, isTower: defender.IsTower, towerType: defender.TowerType, player: defender.Player, hasPlayer: defender.HasPlayer}

	emit := func(ev InfoEvent) {
		ev.Position = pos
		ev.Attacker, ev.HasAttacker = a.player, a.hasPlayer
		ev.Defender, ev.HasDefender = d.player, d.hasPlayer
		onInfo(ev)
	}

	// Pre-step: shields carried offensively against a tower are nullified
	//.
	if d.isTower {
		a.units[Shield] = 0
	}
	if a.isTower {
		d.units[Shield] = 0
	}

	lethal := false
	nuclear := false

	// Single-use weapons (Shell, Emp, Nuke) are resolved as a preliminary
	// bombardment step: a side that plays any single-use unit at all
	// expends its entire stock of that kind, emitting the corresponding
	// event exactly once.
	atkNuke, defNuke := a.units[Nuke] > 0, d.units[Nuke] > 0
	if atkNuke || defNuke {
		nuclear = true
		emit(InfoEvent{Kind: EventNuclearExplosion})
		if atkNuke {
			lethal = lethal || d.units.Total() > 0
			d.units = Units{}
		}
		if defNuke {
			lethal = lethal || a.units.Total() > 0
			a.units = Units{}
		}
		a.units[Nuke], d.units[Nuke] = 0, 0
	}

	for _, side := range [2]*fightState{a, d} {
		if side.units[Shell] > 0 {
			other := d
			if side == d {
				other = a
			}
			killed := shellCasualties(side.units[Shell], other)
			if killed > 0 {
				lethal = true
			}
			emit(InfoEvent{Kind: EventShellExplosion})
			side.units[Shell] = 0
		}
		if side.units[Emp] > 0 {
			emit(InfoEvent{Kind: EventEmp, Side: sideOf(side, a)})
			side.units[Emp] = 0
		}
	}

	// Field-by-field simultaneous damage-budget attrition, Air before
	// Surface: each side's total weighted damage output in the field
	// (summed across every unit it has there, each individually capped by
	// ranged/tower rules) becomes a kill budget spent against the other
	// side's stock in that same field, both budgets applied at once rather
	// than as a unit-by-unit duel. In the Air field a side's Shields, up to
	// the number of its natural Air units, are promoted into zero-damage Air
	// combatants that each absorb one point of incoming budget before its Air
	// units take casualties (Shield->Air overflow promotion).
	for _, field := range [2]Field{Air, Surface} {
		aBudget, aHadTarget := fieldDamageBudget(a.units, field, d)
		dBudget, dHadTarget := fieldDamageBudget(d.units, field, a)
		if !aHadTarget && !dHadTarget {
			continue
		}
		if aBudget == 0 && dBudget == 0 {
			continue
		}
		lethal = true
		aCause := representativeAttacker(a.units, field)
		dCause := representativeAttacker(d.units, field)
		applyFieldCasualties(d, field, aBudget, aCause, emit, EventDefenderLostRuler)
		applyFieldCasualties(a, field, dBudget, dCause, emit, EventAttackerLostRuler)
	}

	atkOut, defOut = a.units, d.units
	atkTotal, defTotal := atkOut.Total(), defOut.Total()

	switch {
	case !lethal:
		return nil, atkOut, defOut
	case nuclear:
		if atkTotal == 0 && defTotal == 0 {
			return nil, atkOut, defOut
		}
	}

	switch {
	case atkTotal == 0 && defTotal == 0:
		if a.isTower {
			s := Attacker
			return &s, atkOut, defOut
		}
		if d.isTower {
			s := Defender
			return &s, atkOut, defOut
		}
		return nil, atkOut, defOut
	case atkTotal == 0:
		s := Defender
		return &s, atkOut, defOut
	case defTotal == 0:
		s := Attacker
		return &s, atkOut, defOut
	case atkTotal > defTotal:
		s := Attacker
		return &s, atkOut, defOut
	case defTotal > atkTotal:
		s := Defender
		return &s, atkOut, defOut
	default:
		if a.isTower {
			s := Attacker
			return &s, atkOut, defOut
		}
		if d.isTower {
			s := Defender
			return &s, atkOut, defOut
		}
		return nil, atkOut, defOut
	}
}

func sideOf(s, attacker *fightState) CombatSide {
	if s == attacker {
		return Attacker
	}
	return Defender
}

// fieldDamageBudget sums the damage a side's stock in field would deal
// against opponent, each unit's contribution individually capped by
// capRanged, then capped overall by NuclearAnnihilationCap. hasTarget
// reports whether the side has any unit present in the field at all, which
// lets a field with two present-but-harmless stacks (e.g. Shield vs Shield)
// be told apart from a field neither side has entered.
func fieldDamageBudget(units Units, field Field, opponent *fightState) (budget int, hasTarget bool) {
	for u := Unit(0); u < unitCount; u++ {
		n := int(units[u])
		if n == 0 || u.Field() != field {
			continue
		}
		hasTarget = true
		budget += capRanged(u.DamageAgainst(field, field), u, opponent) * n
	}
	if budget > NuclearAnnihilationCap {
		budget = NuclearAnnihilationCap
	}
	return budget, hasTarget
}

// unitToughness is the budget cost to destroy one instance of u: its own
// self-field damage value (minimum 1), so a harder-hitting unit is
// correspondingly costlier to kill. This generalizes the toughness=1
// constant shellCasualties already uses for its single attacker type to
// every unit kind.
func unitToughness(u Unit) int {
	t := u.DamageAgainst(u.Field(), u.Field())
	if t < 1 {
		t = 1
	}
	return t
}

// representativeAttacker returns the highest-damage unit present in units
// for field, used only to label which unit kind gets blamed for a Ruler
// kill when a whole field's simultaneous damage budget, not a single unit,
// did the killing.
func representativeAttacker(units Units, field Field) Unit {
	best, bestDmg := Unit(0), -1
	for u := Unit(0); u < unitCount; u++ {
		if units[u] == 0 || u.Field() != field {
			continue
		}
		if dmg := u.DamageAgainst(field, field); dmg > bestDmg {
			best, bestDmg = u, dmg
		}
	}
	return best
}

// applyFieldCasualties spends budget destroying units of side's stock in
// field, lowest Unit enum value first, at a cost of unitToughness(u) per
// kill. If field is Air, any Shield the side carries is first promoted into
// an Air combatant that can be destroyed for a single point of budget,
// limited to the number of natural Air units the side has (Shield->Air
// overflow promotion), before falling through to natural Air units. cause
// names the opposing unit kind credited with the kill in a LostRuler event.
func applyFieldCasualties(side *fightState, field Field, budget int, cause Unit, emit InfoSink, rulerEvent InfoEventKind) {
	if budget <= 0 {
		return
	}
	if field == Air {
		airTotal := int(side.units[Fighter]) + int(side.units[Chopper]) + int(side.units[Bomber])
		promoted := int(side.units[Shield])
		if promoted > airTotal {
			promoted = airTotal
		}
		for promoted > 0 && budget > 0 {
			side.units.Remove(Shield, 1)
			promoted--
			budget--
		}
	}
	for u := Unit(0); u < unitCount && budget > 0; u++ {
		if u.Field() != field {
			continue
		}
		cost := unitToughness(u)
		for side.units[u] > 0 && budget >= cost {
			if u == Ruler {
				emit(InfoEvent{Kind: rulerEvent, Cause: cause})
			}
			side.units.Remove(u, 1)
			budget -= cost
		}
	}
}

// capRanged applies the tower ranged-damage absorption cap when the
// opponent is a tower and the played unit is a ranged weapon.
func capRanged(dmg int, played Unit, opponent *fightState) int {
	if opponent.isTower && rangedUnit(played) {
		if cap := opponent.towerType.MaxRangedDamage(); dmg > cap {
			return cap
		}
	}
	return dmg
}

// shellCasualties applies a Shell strike's capped damage against the
// opponent's Surface stock, destroying units until the damage budget (or
// the stock) is exhausted, and returns the number of units destroyed.
func shellCasualties(shellCount uint8, opponent *fightState) int {
	budget := Shell.DamageAgainst(Surface, Surface) * int(shellCount)
	if opponent.isTower {
		if cap := opponent.towerType.MaxRangedDamage(); budget > cap {
			budget = cap
		}
	}
	killed := 0
	for u := Unit(0); u < unitCount && budget > 0; u++ {
		if opponent.units[u] == 0 || u.Field() != Surface {
			continue
		}
		toughness := 1
		for opponent.units[u] > 0 && budget >= toughness {
			opponent.units.Remove(u, 1)
			budget -= toughness
			killed++
		}
	}
	return killed
}
