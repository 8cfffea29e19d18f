package world

// villageDensity and airfieldDensity are 1-in-N chances, independently rolled
// per grid cell, of that cell receiving a neutral tower of the given type.
// Airfields are rarer than Villages; most cells stay empty.
const (
	villageDensity  = 9
	airfieldDensity = 40
)

// borderGarrisonDensity is the 1-in-N chance a generated tower within
// contestedBorderWidth of the map edge starts with a partial garrison rather
// than empty, representing ground already fought over before any player
// connected.
const (
	contestedBorderWidth  = 6
	borderGarrisonDensity = 3
)

// generate populates an empty World with a sparse, deterministic field of
// neutral Village and Airfield towers derived from seed, so a freshly booted
// server is immediately playable instead of presenting an empty grid. It
// runs once, from NewWorld, before any player or bot spawns.
func generate(w *World, seed int64) {
	state := seedState(seed)
	next := func(n int) int {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return int(state % uint64(n))
	}

	for x := int16(0); x < WorldSize; x++ {
		for y := int16(0); y < WorldSize; y++ {
			id := TowerId{X: x, Y: y}

			var t TowerType
			switch {
			case next(airfieldDensity) == 0:
				t = Airfield
			case next(villageDensity) == 0:
				t = Village
			default:
				continue
			}

			tower := NewTower(id, t)
			if onBorder(id) && next(borderGarrisonDensity) == 0 {
				tower.Units.Add(Soldier, next(tower.Type.Capacity(Soldier)+1))
			}
			w.SetTowerAt(id, tower)
		}
	}
}

// onBorder reports whether id lies within contestedBorderWidth towers of the
// edge of the map, the band the original already-fought-over ruins are drawn
// from.
func onBorder(id TowerId) bool {
	return id.X < contestedBorderWidth || id.Y < contestedBorderWidth ||
		id.X >= WorldSize-contestedBorderWidth || id.Y >= WorldSize-contestedBorderWidth
}

// seedState derives a nonzero xorshift64 state from a user-chosen seed, so a
// seed of zero (Config.WorldSeed's zero value) still produces a varied layout
// instead of degenerating to an all-empty or all-identical sequence.
func seedState(seed int64) uint64 {
	s := uint64(seed) ^ 0x9e3779b97f4a7c15
	if s == 0 {
		s = 0x2545f4914f6cdd1d
	}
	return s
}
