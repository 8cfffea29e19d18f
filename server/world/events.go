package world

// CombatSide identifies the attacker or defender side of a fight.
type CombatSide uint8

const (
	Attacker CombatSide = iota
	Defender
)

// InfoEventKind enumerates the observable combat/lifecycle events the
// simulation emits for clients to render.
type InfoEventKind uint8

const (
	EventGainedTower InfoEventKind = iota
	EventLostTower
	EventLostRuler
	EventLostForce
	EventNuclearExplosion
	EventEmp
	EventShellExplosion
	EventAttackerLostRuler
	EventDefenderLostRuler
	EventNewAlliance
)

// GainedTowerReason distinguishes why a tower changed hands, for the
// GainedTower event.
type GainedTowerReason uint8

const (
	ReasonCaptured GainedTowerReason = iota
	ReasonExplored
	ReasonSpawned
)

// InfoEvent is a single observable occurrence emitted by the simulation,
// positioned at a TowerId and naming the players involved.
type InfoEvent struct {
	Kind     InfoEventKind
	Position TowerId

	// Attacker/Defender identify the players on each side, when applicable.
	Attacker   PlayerId
	HasAttacker bool
	Defender   PlayerId
	HasDefender bool

	// Side is populated for EventEmp, naming which side deployed the Emp.
	Side CombatSide
	// Cause is populated for LostRuler-family events, naming the unit that
	// killed the ruler.
	Cause Unit
	// Reason is populated for EventGainedTower.
	Reason GainedTowerReason
}

// ChunkEventKind enumerates the cross-chunk mailbox event kinds.
type ChunkEventKind uint8

const (
	EventAddInboundForce ChunkEventKind = iota
	EventAddOutboundForce
)

// ChunkEvent is a single mailbox entry delivered within a tick to move a
// Force between the Chunk it departed and the Chunk it is entering. Events
// are sorted by (Destination.Chunk(), Kind, Source) before application, the
// total order required for determinism.
type ChunkEvent struct {
	Kind ChunkEventKind
	// Source names the tower the event logically originates from, used only
	// for deterministic sort order and debugging; it is not necessarily the
	// Force's current tower.
	Source TowerId
	// Destination is the tower the event is delivered to.
	Destination TowerId
	Force       *Force
}

// Less orders two ChunkEvents by the tick-mailbox total order: destination
// chunk, then event kind, then source tower.
func (e ChunkEvent) Less(other ChunkEvent) bool {
	dc, odc := e.Destination.Chunk(), other.Destination.Chunk()
	if dc != odc {
		return dc.Less(odc)
	}
	if e.Kind != other.Kind {
		return e.Kind < other.Kind
	}
	return e.Source.Less(other.Source)
}
