package world

import "testing"

func TestAlertsSetClearHas(t *testing.T) {
	var a Alerts
	if a.Has(AlertZombies) {
		t.Fatal("zero-value Alerts should have no flags set")
	}

	a = a.Set(AlertZombies)
	if !a.Has(AlertZombies) {
		t.Fatal("Has should report true right after Set")
	}

	a = a.Clear(AlertZombies)
	if a.Has(AlertZombies) {
		t.Fatal("Has should report false right after Clear")
	}
}

func TestResetEphemeralPreservesStickyFlagsAndSetsRulerNotSafe(t *testing.T) {
	a := Alerts(0).Set(AlertRulerUnderAttack).Set(AlertOverflowing).Set(AlertUpgradedAnyTower).Set(AlertDeployedAnyForce)

	a = a.ResetEphemeral()

	if !a.Has(AlertRulerNotSafe) {
		t.Error("ResetEphemeral should set RulerNotSafe by default")
	}
	if a.Has(AlertRulerUnderAttack) || a.Has(AlertOverflowing) {
		t.Error("ResetEphemeral should clear other ephemeral flags")
	}
	if !a.Has(AlertUpgradedAnyTower) || !a.Has(AlertDeployedAnyForce) {
		t.Error("ResetEphemeral should preserve sticky flags")
	}
}

func TestResetEphemeralIsIdempotentOnStickyOnlyState(t *testing.T) {
	a := Alerts(0).Set(AlertSetAnySupplyLine).Set(AlertUnsetAnySupplyLine)
	once := a.ResetEphemeral()
	twice := once.ResetEphemeral()
	if once != twice {
		t.Errorf("ResetEphemeral should be idempotent, got %v then %v", once, twice)
	}
}
