package world

// Handler receives world lifecycle notifications so a session layer can
// forward them to connected clients without the simulation depending on
// networking.
type Handler interface {
	HandleInfoEvent(InfoEvent)
	HandleTowerChanged(TowerId)
	HandlePlayerDied(PlayerId, DeathReason)
}

// NopHandler implements Handler with no-ops, used as the default before a
// session layer attaches.
type NopHandler struct{}

func (NopHandler) HandleInfoEvent(InfoEvent)             {}
func (NopHandler) HandleTowerChanged(TowerId)            {}
func (NopHandler) HandlePlayerDied(PlayerId, DeathReason) {}

// LimboTimeout is the number of ticks a disconnected player's towers survive
// in limbo before being abandoned to zombie status.
const LimboTimeout = 60 * TickRate

// EmpSeconds is how long an Emp strike disables the tower it lands on.
const EmpSeconds = 20

// EmpDelayTicks is EmpSeconds expressed in ticks.
const EmpDelayTicks = EmpSeconds * TickRate

// DowngradePeriodTicks is how often an unowned tower's natural decay checks
// whether to fall back one tier.
const DowngradePeriodTicks = 60 * TickRate

// Step advances the world by one tick, in five ordered phases:
//
//  1. maintenance: per-player bookkeeping (limbo timeouts, alert resets).
//  2. tick_before_inputs: generation, force-vs-force combat mid-flight, and
//     force advancement/arrival combat.
//  3. input application: applyInputs runs every command buffered for this
//     tick, with exclusive access to the same transaction the first two
//     phases ran under.
//  4. tick_after_inputs: supply-line force synthesis for any tower flagged
//     by phase 2's generation step.
//
// A fifth phase, the per-client visibility diff, happens outside Step
// entirely: it depends on each session's viewport, which Step does not
// know about.
//
// applyInputs may be nil, for callers (tests) that have no commands to
// apply this tick.
func (w *World) Step(h Handler, applyInputs func()) {
	w.tick++

	w.stepMaintenance(h)

	deploy := w.stepGeneration(h)
	w.stepForceVsForce(h)
	w.stepForces(h)

	if applyInputs != nil {
		applyInputs()
	}

	w.stepSupplyLines(deploy, h)
}

// chunkPhase derives a small deterministic per-chunk tick offset so every
// tower in the world does not evaluate its generation/decay schedule on the
// exact same tick boundary. It is plain arithmetic over the chunk's own
// coordinates, not a hash: the offset only needs to be stable and to vary
// between neighboring chunks, not to be collision-resistant.
func chunkPhase(id ChunkId) uint64 {
	return uint64(uint16(id.X))*31 + uint64(uint16(id.Y))
}

// stepGeneration advances every tower's per-tick housekeeping: delay
// countdown, unit production, overflow diminishment, and the natural decay
// of unowned towers. It returns the set of towers whose supply line should
// synthesize a fresh outbound force this tick, computed here (during
// tick_before_inputs, when the tower's production actually happens) but
// acted upon in stepSupplyLines (during tick_after_inputs) once the tick's
// commands have landed.
func (w *World) stepGeneration(h Handler) map[TowerId]bool {
	deploy := make(map[TowerId]bool)
	for c := range w.Chunks {
		effectiveTick := w.tick ^ chunkPhase(c.Id)
		for t := range c.Towers {
			if t.Delay > 0 {
				t.Delay--
				continue
			}
			changed := false

			if t.HasOwner {
				for _, g := range t.Type.Generates() {
					if g.period <= 0 || int(effectiveTick)%g.period != 0 {
						continue
					}
					n := 2
					if room := t.Type.Capacity(g.unit) - int(t.Units[g.unit]); room < n {
						n = max(room, 0)
					}
					added := t.Units.Add(g.unit, n)
					removed := t.Units.Remove(g.unit, min(added, 1))
					if added-removed > 0 {
						changed = true
					}
					if added < 2 && g.unit.Mobile() {
						deploy[t.Id] = true
					}
				}
			}

			if int(effectiveTick)%diminishPeriod(t) == 0 && diminishOverflow(t) {
				changed = true
			}

			if !t.HasOwner && int(effectiveTick)%DowngradePeriodTicks == 0 {
				if next, ok := t.Type.Downgrade(); ok {
					t.Type = next
					t.ReconcileCapacity()
					changed = true
				}
			}

			if changed {
				h.HandleTowerChanged(t.Id)
			}
		}
	}
	return deploy
}

// diminishPeriod returns how often, in ticks, a tower sheds units above its
// current type's capacity: slower for an owned tower (a defender actively
// using the garrison) than for an abandoned one.
func diminishPeriod(t *Tower) int {
	if t.HasOwner {
		return 30 * TickRate
	}
	return 10 * TickRate
}

// diminishOverflow trims every unit count back down to the tower's current
// capacity, the mechanism by which a tower that downgraded (or lost an
// owner) sheds the garrison it can no longer support. It reports whether it
// changed anything.
func diminishOverflow(t *Tower) bool {
	changed := false
	for u := Unit(0); u < unitCount; u++ {
		if room := t.Type.Capacity(u); int(t.Units[u]) > room {
			t.Units.Remove(u, int(t.Units[u])-room)
			changed = true
		}
	}
	return changed
}

// stepForceVsForce resolves combat between forces simultaneously in flight
// in opposite directions across the same edge, ahead of either one
// otherwise arriving and fighting the other's tower of origin instead. The
// same crossing pair is visible from both of its endpoint towers (a force
// inbound to t and sharing its edge with a force outbound from t toward the
// inbound's source are the two halves of one pair); only the tower whose id
// sorts lexicographically greater resolves it, so it is judged exactly once.
func (w *World) stepForceVsForce(h Handler) {
	for c := range w.Chunks {
		for t := range c.Towers {
			for _, inbound := range t.InboundForces {
				src := inbound.CurrentSource()
				other := w.TowerAt(src)
				if other == nil || !other.Id.Less(t.Id) {
					continue
				}
				for _, outbound := range t.OutboundForces {
					if outbound.CurrentDestination() != src {
						continue
					}
					if !crossing(inbound, outbound) {
						continue
					}
					rel := RelationshipBetween(w, inbound.Player, inbound.HasOwner, outbound.Player, outbound.HasOwner)
					if rel.Friendly() {
						continue
					}
					w.resolveForceVsForce(t, other, inbound, outbound, h)
				}
			}
		}
	}
}

// crossing reports whether inbound (heading toward its destination) and
// outbound (heading the opposite way along the same edge) have passed each
// other on that edge this tick: an integer stand-in for their continuous
// positions, measured from opposite ends of the edge, having met.
func crossing(inbound, outbound *Force) bool {
	return int(inbound.Progress)+int(outbound.Progress) >= progressPerEdge
}

// resolveForceVsForce fights two forces crossing paths mid-edge and removes
// whichever side (or both) the fight annihilates from the flight lists of
// both of their endpoint towers.
func (w *World) resolveForceVsForce(dstTower, srcTower *Tower, inbound, outbound *Force, h Handler) {
	atk := ForceCombatant(inbound)
	def := ForceCombatant(outbound)
	_, atkOut, defOut := Fight(atk, def, dstTower.Id, func(ev InfoEvent) { h.HandleInfoEvent(ev) })

	inbound.Units = atkOut
	outbound.Units = defOut

	if atkOut.Empty() {
		w.destroyInFlightForce(dstTower, srcTower, inbound)
	}
	if defOut.Empty() {
		w.destroyInFlightForce(srcTower, dstTower, outbound)
	}
}

// destroyInFlightForce removes f, annihilated mid-flight, from the
// InboundForces of the tower it was heading to and the OutboundForces of
// the tower it departed.
func (w *World) destroyInFlightForce(destination, source *Tower, f *Force) {
	destination.RemoveInbound(f)
	source.RemoveOutbound(f)
}

// stepForces advances every in-flight Force along its path, delivering
// chunk-boundary crossings through a sorted mailbox for determinism and
// resolving combat on arrival.
func (w *World) stepForces(h Handler) {
	var events []ChunkEvent

	for c := range w.Chunks {
		for t := range c.Towers {
			for _, f := range append([]*Force(nil), t.OutboundForces...) {
				w.advanceForce(t, f, &events)
			}
		}
	}

	sortChunkEvents(events)
	for _, ev := range events {
		w.applyChunkEvent(ev, h)
	}
}

func sortChunkEvents(events []ChunkEvent) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].Less(events[j-1]); j-- {
			events[j-1], events[j] = events[j], events[j-1]
		}
	}
}

// advanceForce progresses f by one tick's worth of movement. A force that
// reaches its current leg's destination is queued as a ChunkEvent instead of
// being moved immediately, so every cross-chunk move is applied in the
// deterministic mailbox order.
func (w *World) advanceForce(source *Tower, f *Force, events *[]ChunkEvent) {
	f.Progress += uint8(f.ProgressPerTick())
	if !f.Arrived() {
		return
	}
	dst := f.CurrentDestination()
	*events = append(*events, ChunkEvent{
		Kind:        EventAddInboundForce,
		Source:      source.Id,
		Destination: dst,
		Force:       f,
	})
	source.RemoveOutbound(f)
}

// applyChunkEvent delivers a force to its next tower: resolving combat if
// hostile, merging if friendly, or advancing to the next leg (or expiring)
// if the path continues.
func (w *World) applyChunkEvent(ev ChunkEvent, h Handler) {
	dst := w.TowerAt(ev.Destination)
	if dst == nil {
		return
	}
	f := ev.Force
	dst.RemoveInbound(f)

	rel := RelationshipBetween(w, f.Player, f.HasOwner, dst.Owner, dst.HasOwner)
	contested := dst.HasOwner || dst.Units.Total() > 0

	if !rel.Friendly() && contested {
		w.resolveCombat(dst, f, h)
		return
	}

	if !dst.HasOwner && !contested && f.HasOwner {
		w.captureTower(dst, f.Player, ReasonExplored, h)
	}

	if f.AtFinalLeg() {
		dst.Units.Merge(f.Units)
		h.HandleTowerChanged(dst.Id)
		return
	}

	// Cramming cap: a destination may hold at most MaxCrammedForces
	// same-owner in-flight forces at once.
	if sameOwnerOutbound(dst, f) >= MaxCrammedForces {
		h.HandleInfoEvent(InfoEvent{Kind: EventLostForce, Position: dst.Id, Attacker: f.Player, HasAttacker: f.HasOwner})
		return
	}
	if f.AdvanceLeg() {
		dst.OutboundForces = append(dst.OutboundForces, f)
		if next := w.TowerAt(f.CurrentDestination()); next != nil {
			next.InboundForces = append(next.InboundForces, f)
		}
	} else {
		h.HandleInfoEvent(InfoEvent{Kind: EventLostForce, Position: dst.Id, Attacker: f.Player, HasAttacker: f.HasOwner})
	}
}

// MaxCrammedForces is the maximum number of same-owner forces allowed
// in-flight from one destination tower at once.
const MaxCrammedForces = 8

func sameOwnerOutbound(t *Tower, f *Force) int {
	n := 0
	for _, other := range t.OutboundForces {
		if other.HasOwner == f.HasOwner && other.Player == f.Player {
			n++
		}
	}
	return n
}

// resolveCombat runs Fight between an arriving force and the defending
// tower's garrison, then applies the winner's effect on ownership: an
// attacking Emp that lands on a tower that survives the fight delays it,
// and a destroyed unowned tower collapses to its base tier.
func (w *World) resolveCombat(dst *Tower, f *Force, h Handler) {
	attacker := ForceCombatant(f)
	defender := TowerCombatant(dst)
	wasOwned := dst.HasOwner

	attackerEmp := false
	winner, atkOut, defOut := Fight(attacker, defender, dst.Id, func(ev InfoEvent) {
		if ev.Kind == EventEmp && ev.Side == Attacker {
			attackerEmp = true
		}
		h.HandleInfoEvent(ev)
	})

	dst.Units = defOut

	if winner == nil {
		if attackerEmp {
			dst.Delay = EmpDelayTicks
		}
		h.HandleTowerChanged(dst.Id)
		return
	}
	if *winner == Attacker {
		dst.Units = atkOut
		if dst.HasOwner {
			w.releaseTower(dst, h)
		}
		if f.HasOwner {
			w.captureTower(dst, f.Player, ReasonCaptured, h)
		} else {
			dst.Abandon()
			if !wasOwned {
				downgradeToBase(dst)
			}
		}
	} else if attackerEmp {
		dst.Delay = EmpDelayTicks
	}
	h.HandleTowerChanged(dst.Id)
}

// downgradeToBase walks t's type down its downgrade chain to its base tier,
// reconciling capacity at each step, the fate of an unowned tower blown up
// in combat rather than captured.
func downgradeToBase(t *Tower) {
	for {
		next, ok := t.Type.Downgrade()
		if !ok {
			break
		}
		t.Type = next
	}
	t.ReconcileCapacity()
}

// captureTower transfers ownership of t to player, updating the owner's
// aggregate bookkeeping and emitting GainedTower.
func (w *World) captureTower(t *Tower, player PlayerId, reason GainedTowerReason, h Handler) {
	t.Capture(player)
	if data := w.playerData[player]; data != nil {
		data.AddTower(t.Id, t.Type)
	}
	h.HandleInfoEvent(InfoEvent{Kind: EventGainedTower, Position: t.Id, Defender: player, HasDefender: true, Reason: reason})
}

// releaseTower clears t's current owner's bookkeeping before a new owner (or
// no owner) takes over, emitting LostTower.
func (w *World) releaseTower(t *Tower, h Handler) {
	if data := w.playerData[t.Owner]; data != nil {
		data.RemoveTower(t.Id, t.Type)
	}
	h.HandleInfoEvent(InfoEvent{Kind: EventLostTower, Position: t.Id, Attacker: t.Owner, HasAttacker: true})
}

// stepSupplyLines synthesizes one outbound Force from each tower flagged by
// this tick's generation step, provided it has a SupplyLine set, carrying
// whatever mobile units the tower holds above half its type's capacity —
// draining surplus production down the line without starving the tower's
// own garrison.
func (w *World) stepSupplyLines(deploy map[TowerId]bool, h Handler) {
	for c := range w.Chunks {
		for t := range c.Towers {
			if !deploy[t.Id] || len(t.SupplyLine) == 0 {
				continue
			}
			units := exportableUnits(t)
			if units.Empty() {
				continue
			}
			for u := Unit(0); u < unitCount; u++ {
				t.Units.Remove(u, int(units[u]))
			}
			f := NewForce(t.Owner, t.HasOwner, units, t.SupplyLine, forceFuel(units))
			t.OutboundForces = append(t.OutboundForces, f)
			if dst := w.TowerAt(f.CurrentDestination()); dst != nil {
				dst.InboundForces = append(dst.InboundForces, f)
			}
			h.HandleTowerChanged(t.Id)
		}
	}
}

// exportableUnits selects the mobile units a supply line would ship out of
// t: the amount held above half of the tower type's capacity for that unit
// kind.
func exportableUnits(t *Tower) Units {
	var out Units
	for u := Unit(0); u < unitCount; u++ {
		if !u.Mobile() {
			continue
		}
		half := t.Type.Capacity(u) / 2
		if n := int(t.Units[u]); n > half {
			out.Add(u, n-half)
		}
	}
	return out
}

// stepMaintenance advances per-player bookkeeping: limbo timeouts, lifetime
// counters, and ephemeral alert resets.
func (w *World) stepMaintenance(h Handler) {
	for id := range w.PlayerIds {
		data := w.playerData[id]
		if data == nil {
			continue
		}
		data.Alerts = data.Alerts.ResetEphemeral()
		if !data.Alive {
			continue
		}
		data.Lifetime++
		if data.InLimbo && w.tick-uint64(data.LimboSince) >= LimboTimeout {
			w.killPlayer(data, DeathTimedOut, h)
		}
	}
}

// killPlayer ends a player's game, releasing every tower they own to
// zombie/unowned status.
func (w *World) killPlayer(data *PlayerData, reason DeathReason, h Handler) {
	data.Alive = false
	data.DeathReason = reason
	for id := range data.Towers {
		if t := w.TowerAt(id); t != nil {
			t.Units[Ruler] = 0
			t.Abandon()
			h.HandleTowerChanged(id)
		}
	}
	data.Towers = make(map[TowerId]struct{})
	h.HandlePlayerDied(data.Id, reason)
}
