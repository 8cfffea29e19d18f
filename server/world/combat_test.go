package world

import "testing"

func unitsWith(counts map[Unit]int) Units {
	var b Units
	for u, n := range counts {
		b.Add(u, n)
	}
	return b
}

func soldiers(n int) Units {
	var b Units
	b.Add(Soldier, n)
	return b
}

func TestFightForceVsForceSymmetry(t *testing.T) {
	cases := []struct{ a, b int }{
		{5, 5}, {10, 3}, {1, 1}, {0, 4}, {7, 7},
	}
	for _, c := range cases {
		atk := Combatants{Units: soldiers(c.a)}
		def := Combatants{Units: soldiers(c.b)}

		winner, atkOut, defOut := Fight(atk, def, TowerId{}, func(InfoEvent) {})
		rWinner, rDefOut, rAtkOut := Fight(def, atk, TowerId{}, func(InfoEvent) {})

		flipped := flipSide(winner)
		if !sameWinner(flipped, rWinner) {
			t.Errorf("a=%d b=%d: winner %v did not flip to %v when sides commuted, got %v", c.a, c.b, winner, flipped, rWinner)
		}
		if atkOut != rAtkOut || defOut != rDefOut {
			t.Errorf("a=%d b=%d: attrition did not mirror under commuted sides: (%v,%v) vs (%v,%v)", c.a, c.b, atkOut, defOut, rAtkOut, rDefOut)
		}
	}
}

func flipSide(s *CombatSide) *CombatSide {
	if s == nil {
		return nil
	}
	var f CombatSide
	if *s == Attacker {
		f = Defender
	} else {
		f = Attacker
	}
	return &f
}

func sameWinner(a, b *CombatSide) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestFightAttackerOverwhelmsWeakerTowerGarrison(t *testing.T) {
	attacker := Combatants{Units: soldiers(10)}
	defender := Combatants{IsTower: true, TowerType: Village, Units: soldiers(5)}

	winner, atkOut, defOut := Fight(attacker, defender, TowerId{X: 1, Y: 1}, func(InfoEvent) {})
	if winner == nil || *winner != Attacker {
		t.Fatalf("winner = %v, want Attacker", winner)
	}
	if got := atkOut.Count(Soldier); got != 5 {
		t.Errorf("attacker survivors = %d, want 5", got)
	}
	if !defOut.Empty() {
		t.Errorf("defender should be wiped out, got %v", defOut)
	}
}

func TestFightShieldsNullifiedWhenAttackingATower(t *testing.T) {
	attacker := Combatants{Units: unitsWith(map[Unit]int{Soldier: 10, Shield: 5})}
	defender := Combatants{IsTower: true, TowerType: Village, Units: soldiers(5)}

	_, atkOut, _ := Fight(attacker, defender, TowerId{}, func(InfoEvent) {})
	if got := atkOut.Count(Shield); got != 0 {
		t.Errorf("shields should be stripped when attacking a tower, got %d", got)
	}
}

func TestFightNukeWipesBothSidesAndDeclaresStalemate(t *testing.T) {
	attacker := Combatants{Units: unitsWith(map[Unit]int{Nuke: 1})}
	defender := Combatants{Units: soldiers(20)}

	winner, atkOut, defOut := Fight(attacker, defender, TowerId{}, func(InfoEvent) {})
	if winner != nil {
		t.Fatalf("nuking an undefended attacker to a mutual wipe should stalemate, got winner %v", winner)
	}
	if !atkOut.Empty() || !defOut.Empty() {
		t.Errorf("both sides should be emptied by a nuke, got atk=%v def=%v", atkOut, defOut)
	}
}

func TestFightNoCombatWhenNeitherSideCanDamageTheOther(t *testing.T) {
	attacker := Combatants{Units: unitsWith(map[Unit]int{Shield: 10})}
	defender := Combatants{Units: unitsWith(map[Unit]int{Shield: 10})}

	winner, atkOut, defOut := Fight(attacker, defender, TowerId{}, func(InfoEvent) {})
	if winner != nil {
		t.Fatalf("two harmless shield stacks should not produce a winner, got %v", winner)
	}
	if atkOut.Count(Shield) != 10 || defOut.Count(Shield) != 10 {
		t.Errorf("neither side should take losses, got atk=%v def=%v", atkOut, defOut)
	}
}
