package world

// SpawnSafetyRadius is the edge distance within which an enemy-owned tower
// or inbound hostile force disqualifies a spawn candidate.
const SpawnSafetyRadius = 4

// IsSpawnable reports whether the tower at id is structurally eligible to be
// offered as a spawn point: it exists, its type allows spawning, and it has
// no owner.
func IsSpawnable(w *World, id TowerId) bool {
	t := w.TowerAt(id)
	if t == nil || t.HasOwner {
		return false
	}
	return t.Type.Spawnable()
}

// IsSafeSpawn reports whether id has no enemy-owned tower and no owned force
// currently converging on a tower within SpawnSafetyRadius, so a new player
// does not spawn directly into an active front line. A zombie (ownerless)
// force nearby never disqualifies a candidate.
func IsSafeSpawn(w *World, id TowerId) bool {
	for _, chunk := range reachableChunks(id, SpawnSafetyRadius) {
		c, ok := w.ChunkIfLoaded(chunk)
		if !ok {
			continue
		}
		for t := range c.Towers {
			if id.EdgeDistance(t.Id) > SpawnSafetyRadius {
				continue
			}
			if t.HasOwner {
				return false
			}
			for _, f := range t.OutboundForces {
				if f.HasOwner && id.EdgeDistance(f.CurrentDestination()) <= SpawnSafetyRadius {
					return false
				}
			}
			for _, f := range t.InboundForces {
				if f.HasOwner {
					return false
				}
			}
		}
	}
	return true
}

// reachableChunks returns every ChunkId whose tower range could overlap a
// disc of the given radius centered on id.
func reachableChunks(id TowerId, radius int) []ChunkId {
	lowX, lowY := id.X-int16(radius), id.Y-int16(radius)
	highX, highY := id.X+int16(radius), id.Y+int16(radius)
	minC := TowerId{X: maxInt16(lowX, 0), Y: maxInt16(lowY, 0)}.Chunk()
	maxC := TowerId{X: minInt16(highX, WorldSize-1), Y: minInt16(highY, WorldSize-1)}.Chunk()

	var out []ChunkId
	for x := minC.X; x <= maxC.X; x++ {
		for y := minC.Y; y <= maxC.Y; y++ {
			out = append(out, ChunkId{X: x, Y: y})
		}
	}
	return out
}

func maxInt16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}

func minInt16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

// MinSpawnConnectivity is the minimum number of grid-adjacent unowned
// towers a spawn candidate must have, so a new player never lands on an
// isolated speck with nowhere to expand.
const MinSpawnConnectivity = 1

// connectivity counts id's grid-adjacent towers that exist and are unowned.
func connectivity(w *World, id TowerId) int {
	n := 0
	for _, nb := range id.Neighbors() {
		if t := w.TowerAt(nb); t != nil && !t.HasOwner {
			n++
		}
	}
	return n
}

// SpawnFloodFillRings is the BFS depth, in grid steps, that
// reachableUnownedTowers explores outward from a candidate.
const SpawnFloodFillRings = 4

// MinReachableUnowned is the minimum number of distinct unowned towers that
// must be reachable within SpawnFloodFillRings grid steps of a spawn
// candidate, so a new player lands somewhere with genuine room to grow
// rather than a pocket boxed in by enemy or already-claimed territory.
const MinReachableUnowned = 12

// reachableUnownedTowers flood-fills outward from id across grid-adjacent
// towers, up to SpawnFloodFillRings steps, and counts the distinct unowned
// towers found. Empty cells are not crossed.
func reachableUnownedTowers(w *World, id TowerId) int {
	visited := map[TowerId]bool{id: true}
	frontier := []TowerId{id}
	count := 0
	for ring := 0; ring < SpawnFloodFillRings; ring++ {
		var next []TowerId
		for _, cur := range frontier {
			for _, nb := range cur.Neighbors() {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				if t := w.TowerAt(nb); t != nil {
					if !t.HasOwner {
						count++
					}
					next = append(next, nb)
				}
			}
		}
		frontier = next
	}
	return count
}

// isGoodSpawn combines every eligibility check a spawn candidate must pass:
// structurally spawnable, no nearby front line, enough immediate breathing
// room, and enough reachable unclaimed territory beyond that.
func isGoodSpawn(w *World, id TowerId) bool {
	return IsSpawnable(w, id) &&
		IsSafeSpawn(w, id) &&
		connectivity(w, id) >= MinSpawnConnectivity &&
		reachableUnownedTowers(w, id) >= MinReachableUnowned
}

// gaussianOffset approximates a zero-mean Gaussian sample with the given
// standard deviation-ish radius by averaging four uniform draws in
// [-radius, radius] (an Irwin-Hall approximation): the sum of a few
// independent uniforms converges toward a bell curve far faster than it is
// worth reaching for a real distribution here.
func gaussianOffset(rng func(int) int, radius int) int {
	if radius <= 0 {
		return 0
	}
	sum := 0
	for i := 0; i < 4; i++ {
		sum += rng(2*radius+1) - radius
	}
	return sum / 4
}

func clampCoord(v int) int16 {
	if v < 0 {
		return 0
	}
	if v > WorldSize-1 {
		return WorldSize - 1
	}
	return int16(v)
}

// spawnSampleAttempts bounds how many Gaussian draws SelectSpawn takes
// before falling back to an exhaustive scan.
const spawnSampleAttempts = 64

// spawnRadiusGrowEvery is how many failed attempts pass before the sampling
// radius grows, so a crowded center doesn't starve SelectSpawn forever.
const spawnRadiusGrowEvery = 8

// spawnBaseRadius and spawnRadiusStep parameterize the growing search
// radius: attempts start tightly clustered around the world center and
// widen in rings as they keep failing.
const (
	spawnBaseRadius = 12
	spawnRadiusStep = 8
)

// SelectSpawn picks a spawn point for a newly joining player, Gaussian-
// distributed around the world center so new players cluster toward the
// middle of the map rather than the edges, with the sampling radius growing
// every spawnRadiusGrowEvery failed attempts to widen the search once the
// center is crowded. It falls back to an exhaustive deterministic scan of
// every eligible tower if sampling exhausts its attempts, so a world with an
// eligible tower only far from center still yields one. ok is false only if
// no eligible tower currently exists anywhere.
func SelectSpawn(w *World, rng func(n int) int) (TowerId, bool) {
	center := TowerId{X: WorldSize / 2, Y: WorldSize / 2}

	for attempt := 0; attempt < spawnSampleAttempts; attempt++ {
		radius := spawnBaseRadius + (attempt/spawnRadiusGrowEvery)*spawnRadiusStep
		x := clampCoord(int(center.X) + gaussianOffset(rng, radius))
		y := clampCoord(int(center.Y) + gaussianOffset(rng, radius))
		id := TowerId{X: x, Y: y}
		if isGoodSpawn(w, id) {
			return id, true
		}
	}

	return fallbackSpawn(w, rng)
}

// fallbackSpawn scans every generated tower for one satisfying isGoodSpawn,
// in a fixed lexicographic order so the pick is a deterministic function of
// rng's output alone.
func fallbackSpawn(w *World, rng func(int) int) (TowerId, bool) {
	var candidates []TowerId
	for c := range w.Chunks {
		for t := range c.Towers {
			if isGoodSpawn(w, t.Id) {
				candidates = append(candidates, t.Id)
			}
		}
	}
	if len(candidates) == 0 {
		return TowerId{}, false
	}
	sortTowerIds(candidates)
	return candidates[rng(len(candidates))], true
}

func sortTowerIds(ids []TowerId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1].Compare(ids[j]) > 0; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
