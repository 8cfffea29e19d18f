package world

import "testing"

func TestNewWorldIsDeterministicForASeed(t *testing.T) {
	a := NewWorld(42)
	b := NewWorld(42)

	var countA, countB int
	for c := range a.Chunks {
		countA += chunkTowerCount(c)
	}
	for c := range b.Chunks {
		countB += chunkTowerCount(c)
	}
	if countA == 0 {
		t.Fatal("expected a nonempty generated world")
	}
	if countA != countB {
		t.Fatalf("same seed produced different tower counts: %d vs %d", countA, countB)
	}

	for c := range a.Chunks {
		other, ok := b.ChunkIfLoaded(c.Id)
		if !ok {
			t.Fatalf("chunk %v present in a but not in b", c.Id)
		}
		for t1 := range c.Towers {
			t2 := other.Tower(t1.Id)
			if t2 == nil || t2.Type != t1.Type {
				t.Fatalf("tower at %v differs between two worlds generated from the same seed", t1.Id)
			}
		}
	}
}

func chunkTowerCount(c *Chunk) int {
	n := 0
	for range c.Towers {
		n++
	}
	return n
}

func TestNewWorldDifferentSeedsDifferentLayouts(t *testing.T) {
	a := NewWorld(1)
	b := NewWorld(2)

	var typesA, typesB []TowerType
	for c := range a.Chunks {
		for t := range c.Towers {
			typesA = append(typesA, t.Type)
		}
	}
	for c := range b.Chunks {
		for t := range c.Towers {
			typesB = append(typesB, t.Type)
		}
	}
	if len(typesA) == len(typesB) {
		same := true
		for i := range typesA {
			if i >= len(typesB) || typesA[i] != typesB[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("different seeds produced an identical layout")
		}
	}
}

func TestGeneratedWorldOnlyHoldsVillagesAndAirfields(t *testing.T) {
	w := NewWorld(7)
	for c := range w.Chunks {
		for tw := range c.Towers {
			if tw.Type != Village && tw.Type != Airfield {
				t.Errorf("tower at %v has unexpected generated type %v", tw.Id, tw.Type)
			}
			if tw.HasOwner {
				t.Errorf("generated tower at %v should be unowned", tw.Id)
			}
		}
	}
}

func TestGeneratedGarrisonsOnlyAppearNearTheBorder(t *testing.T) {
	w := NewWorld(99)
	for c := range w.Chunks {
		for tw := range c.Towers {
			if !tw.Units.Empty() && !onBorder(tw.Id) {
				t.Errorf("tower at %v has a garrison but is not on the border", tw.Id)
			}
		}
	}
}

func TestZeroSeedStillProducesAVariedWorld(t *testing.T) {
	w := NewWorld(0)
	count := 0
	for c := range w.Chunks {
		count += chunkTowerCount(c)
	}
	if count == 0 {
		t.Fatal("seed 0 should not degenerate to an empty world")
	}
}
