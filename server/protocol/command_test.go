package protocol

import (
	"reflect"
	"testing"

	"github.com/towersiege/server/server/world"
)

func TestCommandRoundTrips(t *testing.T) {
	units := world.Units{}
	units.Add(world.Soldier, 10)
	units.Add(world.Tank, 2)

	cases := []Command{
		SpawnCommand{},
		DeployForceCommand{
			Source: world.TowerId{X: 1, Y: 2},
			Units:  units,
			Path:   world.Path{{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}},
		},
		SetSupplyLineCommand{
			Source: world.TowerId{X: 5, Y: 5},
			Path:   world.Path{{X: 5, Y: 5}, {X: 5, Y: 6}},
		},
		UpgradeCommand{Id: world.TowerId{X: 3, Y: 3}, Target: world.Town, DelayTicks: 40},
		RequestAllianceCommand{With: 7},
		BreakAllianceCommand{With: 7},
		SetViewportCommand{Viewport: world.Viewport{Min: world.TowerId{X: 0, Y: 0}, Max: world.TowerId{X: 32, Y: 32}}},
	}

	for _, cmd := range cases {
		decoded, err := DecodeCommand(EncodeCommand(cmd))
		if err != nil {
			t.Fatalf("%T: DecodeCommand: %v", cmd, err)
		}
		if !reflect.DeepEqual(decoded, cmd) {
			t.Errorf("%T round trip: got %+v, want %+v", cmd, decoded, cmd)
		}
	}
}

func TestDecodeCommandRejectsUnknownId(t *testing.T) {
	if _, err := DecodeCommand([]byte{0xff}); err == nil {
		t.Fatal("expected an error decoding an unknown command id")
	}
}

func TestDecodeCommandErrorsOnTruncatedFrame(t *testing.T) {
	full := EncodeCommand(DeployForceCommand{
		Source: world.TowerId{X: 1, Y: 1},
		Units:  world.Units{},
		Path:   world.Path{{X: 1, Y: 1}, {X: 1, Y: 2}},
	})
	if _, err := DecodeCommand(full[:3]); err == nil {
		t.Fatal("expected an error decoding a truncated DeployForceCommand")
	}
}
