package world

import "testing"

func TestTowerIdChunkRoundTrip(t *testing.T) {
	for _, id := range []TowerId{{0, 0}, {15, 15}, {16, 0}, {200, 137}, {WorldSize - 1, WorldSize - 1}} {
		chunk := id.Chunk()
		x, y := id.Relative()
		got := TowerId{X: chunk.Origin().X + int16(x), Y: chunk.Origin().Y + int16(y)}
		if got != id {
			t.Errorf("chunk round-trip: %v -> chunk %v rel (%d,%d) -> %v", id, chunk, x, y, got)
		}
	}
}

func TestTowerIdEdgeDistanceIsChebyshev(t *testing.T) {
	cases := []struct {
		a, b TowerId
		want int
	}{
		{TowerId{0, 0}, TowerId{0, 0}, 0},
		{TowerId{0, 0}, TowerId{3, 0}, 3},
		{TowerId{0, 0}, TowerId{0, 5}, 5},
		{TowerId{2, 2}, TowerId{5, 4}, 3},
		{TowerId{5, 4}, TowerId{2, 2}, 3},
	}
	for _, c := range cases {
		if got := c.a.EdgeDistance(c.b); got != c.want {
			t.Errorf("EdgeDistance(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestTowerIdNeighborsAreMutualAndBounded(t *testing.T) {
	id := TowerId{X: 10, Y: 10}
	neighbors := id.Neighbors()
	if len(neighbors) != 8 {
		t.Fatalf("expected 8 interior neighbors, got %d", len(neighbors))
	}
	for _, n := range neighbors {
		if !id.IsNeighbor(n) {
			t.Errorf("%v not recognised as neighbor of %v", n, id)
		}
		if !n.IsNeighbor(id) {
			t.Errorf("IsNeighbor is not symmetric for %v, %v", id, n)
		}
	}

	corner := TowerId{X: 0, Y: 0}
	if got := len(corner.Neighbors()); got != 3 {
		t.Errorf("corner tower should have 3 valid neighbors, got %d", got)
	}
}

func TestTowerIdCompareTotalOrder(t *testing.T) {
	ids := []TowerId{{3, 1}, {1, 5}, {1, 2}, {2, 0}}
	sortTowerIds(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i-1].Compare(ids[i]) >= 0 {
			t.Fatalf("sortTowerIds did not produce ascending order: %v", ids)
		}
		if !ids[i-1].Less(ids[i]) {
			t.Fatalf("Less disagrees with Compare at index %d: %v", i, ids)
		}
	}
}

func TestChunkIdValidBounds(t *testing.T) {
	if !(ChunkId{0, 0}).Valid() {
		t.Error("origin chunk should be valid")
	}
	if (ChunkId{WorldChunks, 0}).Valid() {
		t.Error("chunk at WorldChunks should be out of bounds")
	}
	if (ChunkId{-1, 0}).Valid() {
		t.Error("negative chunk coordinate should be invalid")
	}
}
