package world

import "testing"

func TestDowngradeChainReachesBaseTier(t *testing.T) {
	visited := map[TowerType]bool{}
	typ := Capital
	for {
		if visited[typ] {
			t.Fatalf("downgrade chain cycles at %v", typ)
		}
		visited[typ] = true
		next, ok := typ.Downgrade()
		if !ok {
			break
		}
		typ = next
	}
	if typ != Village {
		t.Fatalf("downgrade chain from Capital should bottom out at Village, got %v", typ)
	}
}

func TestHeadquartersDowngradesToCapital(t *testing.T) {
	next, ok := Headquarters.Downgrade()
	if !ok || next != Capital {
		t.Fatalf("Headquarters.Downgrade() = (%v, %v), want (Capital, true)", next, ok)
	}
}

func TestBaseTierHasNoDowngrade(t *testing.T) {
	if _, ok := Village.Downgrade(); ok {
		t.Fatal("Village should have no downgrade target")
	}
}

func TestCanUpgradeToEnforcesPrerequisites(t *testing.T) {
	prereq, ok := Town.CanUpgradeTo(City)
	if !ok {
		t.Fatal("Town should be able to upgrade to City")
	}
	if got := prereq[Town]; got != 2 {
		t.Fatalf("Town->City prerequisite = %d owned Towns, want 2", got)
	}

	if _, ok := Town.CanUpgradeTo(Headquarters); ok {
		t.Fatal("Town should not be able to upgrade directly to Headquarters")
	}
}

func TestOnlySpawnableTypesAreVillageAndTown(t *testing.T) {
	for typ := TowerType(0); typ < towerTypeCount; typ++ {
		want := typ == Village || typ == Town
		if got := typ.Spawnable(); got != want {
			t.Errorf("%v.Spawnable() = %v, want %v", typ, got, want)
		}
	}
}

func TestCapacityNonNegativeAcrossAllTypes(t *testing.T) {
	for typ := TowerType(0); typ < towerTypeCount; typ++ {
		for u := Unit(0); u < unitCount; u++ {
			if c := typ.Capacity(u); c < 0 {
				t.Errorf("%v.Capacity(%v) = %d, want >= 0", typ, u, c)
			}
		}
	}
}
