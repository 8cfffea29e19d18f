package world

import (
	"testing"

	"github.com/brentp/intintmap"
)

// newEmptyWorld builds a World with no generated content, for tests that
// need to control the tower layout exactly rather than accept NewWorld's
// procedural generation.
func newEmptyWorld() *World {
	return &World{
		chunkIndex: intintmap.New(WorldChunks*WorldChunks, 0.6),
		players:    make(map[PlayerId]*Player),
		playerData: make(map[PlayerId]*PlayerData),
	}
}

func TestIsSafeSpawnFalseWhenEnemyOwnsTowerNearby(t *testing.T) {
	w := newEmptyWorld()
	candidate := TowerId{X: 50, Y: 50}
	enemy := TowerId{X: 52, Y: 50}

	enemyTower := NewTower(enemy, Village)
	enemyTower.Capture(7)
	w.SetTowerAt(enemy, enemyTower)
	w.SetTowerAt(candidate, NewTower(candidate, Village))

	if IsSafeSpawn(w, candidate) {
		t.Fatal("spawn should be unsafe with an owned enemy tower within SpawnSafetyRadius")
	}
}

func TestIsSafeSpawnFalseWhenOwnedForceIsIncoming(t *testing.T) {
	w := newEmptyWorld()
	candidate := TowerId{X: 50, Y: 50}
	launch := TowerId{X: 49, Y: 50}
	target := TowerId{X: 51, Y: 50}

	launchTower := NewTower(launch, Village)
	force := NewForce(9, true, soldiers(5), Path{launch, target}, 3)
	launchTower.OutboundForces = append(launchTower.OutboundForces, force)

	w.SetTowerAt(launch, launchTower)
	w.SetTowerAt(candidate, NewTower(candidate, Village))

	if IsSafeSpawn(w, candidate) {
		t.Fatal("spawn should be unsafe with an owned force converging on a tower within SpawnSafetyRadius, tracked at its tower of departure the way forces are represented")
	}
}

func TestIsSafeSpawnTrueWhenOnlyZombieForcesAreNearby(t *testing.T) {
	w := newEmptyWorld()
	candidate := TowerId{X: 50, Y: 50}
	launch := TowerId{X: 49, Y: 50}
	target := TowerId{X: 51, Y: 50}

	launchTower := NewTower(launch, Village)
	zombie := NewForce(0, false, soldiers(5), Path{launch, target}, 3)
	launchTower.OutboundForces = append(launchTower.OutboundForces, zombie)

	w.SetTowerAt(launch, launchTower)
	w.SetTowerAt(candidate, NewTower(candidate, Village))

	if !IsSafeSpawn(w, candidate) {
		t.Fatal("an ownerless (zombie) force should not disqualify a spawn point")
	}
}

func TestIsSpawnableRequiresUnownedSpawnableType(t *testing.T) {
	w := newEmptyWorld()
	id := TowerId{X: 0, Y: 0}

	if IsSpawnable(w, id) {
		t.Fatal("a tower that doesn't exist yet should not be spawnable")
	}

	w.SetTowerAt(id, NewTower(id, Airfield))
	if IsSpawnable(w, id) {
		t.Fatal("a non-spawnable tower type should not be spawnable")
	}

	w.SetTowerAt(id, NewTower(id, Village))
	if !IsSpawnable(w, id) {
		t.Fatal("an unowned Village should be spawnable")
	}

	owned := w.TowerAt(id)
	owned.Capture(1)
	if IsSpawnable(w, id) {
		t.Fatal("an owned tower should not be spawnable")
	}
}

func TestSelectSpawnIsDeterministicGivenTheSameRng(t *testing.T) {
	w := newEmptyWorld()
	center := TowerId{X: WorldSize / 2, Y: WorldSize / 2}
	for x := center.X - 4; x <= center.X+4; x++ {
		for y := center.Y - 4; y <= center.Y+4; y++ {
			id := TowerId{X: x, Y: y}
			w.SetTowerAt(id, NewTower(id, Village))
		}
	}

	counter := func() func(int) int {
		i := 0
		return func(n int) int {
			r := i % n
			i++
			return r
		}
	}

	got1, ok1 := SelectSpawn(w, counter())
	got2, ok2 := SelectSpawn(w, counter())
	if !ok1 || !ok2 {
		t.Fatal("expected a spawn candidate to exist")
	}
	if got1 != got2 {
		t.Fatalf("same rng sequence produced different spawn points: %v vs %v", got1, got2)
	}
}

func TestSelectSpawnFailsWithNoEligibleTower(t *testing.T) {
	w := newEmptyWorld()
	if _, ok := SelectSpawn(w, func(int) int { return 0 }); ok {
		t.Fatal("expected no spawn candidate in an empty world")
	}
}
