// Package bot implements a simple AI player policy, used to fill servers
// with activity and to exercise the simulation without a real client.
package bot

import (
	"github.com/towersiege/server/server/protocol"
	"github.com/towersiege/server/server/world"
)

// Controller drives one bot-controlled player by inspecting the public
// state of the world and producing the next command it wants applied, one
// tick at a time.
type Controller struct {
	id world.PlayerId

	// territorialAmbition is seeded by New; Update does not read it.
	territorialAmbition int
	// beforeQuit counts down the ticks the bot keeps acting after a spawn.
	// At zero Update returns nil until the bot dies and respawns; the bot
	// keeps its player slot throughout.
	beforeQuit uint32

	war *war
	rng func(int) int
}

type war struct {
	against   world.PlayerId
	remaining uint32
	focus     world.TowerId
}

// New constructs a Controller for id, seeding its ambition and patience from
// rng so a population of bots doesn't behave identically.
func New(id world.PlayerId, rng func(int) int) *Controller {
	return &Controller{
		id:                  id,
		territorialAmbition: 8 + rng(5),
		beforeQuit:          uint32(1800 + rng(3600)),
		rng:                 rng,
	}
}

// Id returns the player this Controller drives.
func (c *Controller) Id() world.PlayerId { return c.id }

// Update inspects w and returns the next command the bot wants applied, or
// nil to take no action this tick.
func (c *Controller) Update(w *world.World) protocol.Command {
	data := w.PlayerData(c.id)
	if data == nil {
		return nil
	}
	if !data.Alive {
		c.war = nil
		c.beforeQuit = uint32(1800 + c.rng(3600))
		return protocol.SpawnCommand{}
	}

	if c.beforeQuit == 0 {
		return nil
	}
	c.beforeQuit--

	c.expireWar(w)

	source, tower, ok := c.randomOwnedTower(w, data)
	if !ok {
		return nil
	}

	if cmd, ok := c.tryUpgrade(tower); ok {
		return cmd
	}
	return c.tryDeploy(w, source, tower)
}

func (c *Controller) expireWar(w *world.World) {
	if c.war == nil {
		return
	}
	if c.war.remaining == 0 {
		c.war = nil
		return
	}
	if against := w.PlayerData(c.war.against); against == nil || !against.Alive {
		c.war = nil
		return
	}
	c.war.remaining--
}

// randomOwnedTower picks a uniformly random tower among data.Towers that
// currently carries at least one unit, skipping empty garrisons so the bot
// always has something to act on.
func (c *Controller) randomOwnedTower(w *world.World, data *world.PlayerData) (world.TowerId, *world.Tower, bool) {
	var candidates []world.TowerId
	for id := range data.Towers {
		if t := w.TowerAt(id); t != nil && !t.Units.Empty() {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return world.TowerId{}, nil, false
	}
	id := candidates[c.rng(len(candidates))]
	return id, w.TowerAt(id), true
}

// tryUpgrade upgrades t to a random upgrade target once it holds at least
// half its Shield capacity (its full Shield capacity while c.war is set;
// nothing in this package sets c.war).
func (c *Controller) tryUpgrade(t *world.Tower) (protocol.Command, bool) {
	minShield := t.Type.Capacity(world.Shield) / 2
	if c.war != nil {
		minShield = t.Type.Capacity(world.Shield)
	}
	if int(t.Units[world.Shield]) < minShield {
		return nil, false
	}
	upgrades := t.Type.Upgrades()
	if len(upgrades) == 0 {
		return nil, false
	}
	target := upgrades[c.rng(len(upgrades))]
	return protocol.UpgradeCommand{Id: t.Id, Target: target, DelayTicks: 30}, true
}

// tryDeploy sends half of each non-Ruler unit kind in source toward the
// first neighboring tower, in Neighbors order, that isn't already friendly.
func (c *Controller) tryDeploy(w *world.World, source world.TowerId, t *world.Tower) protocol.Command {
	neighbors := source.Neighbors()
	var target world.TowerId
	found := false
	for _, n := range neighbors {
		nt := w.TowerAt(n)
		if nt == nil {
			continue
		}
		rel := world.RelationshipBetween(w, c.id, true, nt.Owner, nt.HasOwner)
		if !rel.Friendly() {
			target = n
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	var units world.Units
	for u := world.Soldier; u < world.Unit(len(t.Units)); u++ {
		if t.Units[u] == 0 || u == world.Ruler {
			continue
		}
		units[u] = t.Units[u] / 2
	}
	if units.Empty() {
		return nil
	}
	return protocol.DeployForceCommand{Source: source, Units: units, Path: world.Path{source, target}}
}
