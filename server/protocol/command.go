package protocol

import (
	"fmt"

	"github.com/towersiege/server/server/world"
)

// commandId tags the concrete type of a Command frame on the wire.
type commandId uint8

const (
	idSpawn commandId = iota
	idDeployForce
	idSetSupplyLine
	idUpgrade
	idRequestAlliance
	idBreakAlliance
	idSetViewport
)

// Command is any message a client may send to the server. Concrete types are
// plain data; applying one to the world is the session/server layer's job,
// not the protocol's.
type Command interface {
	marshal(w *Writer)
}

// SpawnCommand requests a fresh Ruler at a server-selected eligible tower.
type SpawnCommand struct{}

func (SpawnCommand) marshal(w *Writer) { w.Uint8(uint8(idSpawn)) }

// DeployForceCommand splits units off Source into a new Force following
// Path.
type DeployForceCommand struct {
	Source world.TowerId
	Units  world.Units
	Path   world.Path
}

func (c DeployForceCommand) marshal(w *Writer) {
	w.Uint8(uint8(idDeployForce))
	w.TowerId(c.Source)
	w.Units(c.Units)
	w.Path(c.Path)
}

// SetSupplyLineCommand records or clears a standing resupply route from
// Source. An empty Path clears it.
type SetSupplyLineCommand struct {
	Source world.TowerId
	Path   world.Path
}

func (c SetSupplyLineCommand) marshal(w *Writer) {
	w.Uint8(uint8(idSetSupplyLine))
	w.TowerId(c.Source)
	w.Path(c.Path)
}

// UpgradeCommand requests Id transition to Target after DelayTicks.
type UpgradeCommand struct {
	Id         world.TowerId
	Target     world.TowerType
	DelayTicks uint8
}

func (c UpgradeCommand) marshal(w *Writer) {
	w.Uint8(uint8(idUpgrade))
	w.TowerId(c.Id)
	w.Uint8(uint8(c.Target))
	w.Uint8(c.DelayTicks)
}

// RequestAllianceCommand offers an alliance to With.
type RequestAllianceCommand struct {
	With world.PlayerId
}

func (c RequestAllianceCommand) marshal(w *Writer) {
	w.Uint8(uint8(idRequestAlliance))
	w.PlayerId(c.With)
}

// BreakAllianceCommand dissolves any alliance with With.
type BreakAllianceCommand struct {
	With world.PlayerId
}

func (c BreakAllianceCommand) marshal(w *Writer) {
	w.Uint8(uint8(idBreakAlliance))
	w.PlayerId(c.With)
}

// SetViewportCommand tells the server which region of the grid the client is
// currently watching, the input to its next delta sync.
type SetViewportCommand struct {
	Viewport world.Viewport
}

func (c SetViewportCommand) marshal(w *Writer) {
	w.Uint8(uint8(idSetViewport))
	w.TowerId(c.Viewport.Min)
	w.TowerId(c.Viewport.Max)
}

// EncodeCommand serialises cmd to its wire form.
func EncodeCommand(cmd Command) []byte {
	w := NewWriter()
	cmd.marshal(w)
	return w.Bytes()
}

// DecodeCommand parses a Command frame received from a client.
func DecodeCommand(data []byte) (Command, error) {
	r := NewReader(data)
	id, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	switch commandId(id) {
	case idSpawn:
		return SpawnCommand{}, nil
	case idDeployForce:
		src, err := r.TowerId()
		if err != nil {
			return nil, err
		}
		units, err := r.Units()
		if err != nil {
			return nil, err
		}
		path, err := r.Path()
		if err != nil {
			return nil, err
		}
		return DeployForceCommand{Source: src, Units: units, Path: path}, nil
	case idSetSupplyLine:
		src, err := r.TowerId()
		if err != nil {
			return nil, err
		}
		path, err := r.Path()
		if err != nil {
			return nil, err
		}
		return SetSupplyLineCommand{Source: src, Path: path}, nil
	case idUpgrade:
		target, err := r.TowerId()
		if err != nil {
			return nil, err
		}
		t, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		delay, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		return UpgradeCommand{Id: target, Target: world.TowerType(t), DelayTicks: delay}, nil
	case idRequestAlliance:
		with, err := r.PlayerId()
		if err != nil {
			return nil, err
		}
		return RequestAllianceCommand{With: with}, nil
	case idBreakAlliance:
		with, err := r.PlayerId()
		if err != nil {
			return nil, err
		}
		return BreakAllianceCommand{With: with}, nil
	case idSetViewport:
		min, err := r.TowerId()
		if err != nil {
			return nil, err
		}
		max, err := r.TowerId()
		if err != nil {
			return nil, err
		}
		return SetViewportCommand{Viewport: world.Viewport{Min: min, Max: max}}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown command id %d", id)
	}
}
