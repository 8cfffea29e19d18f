package world

import "fmt"

// ChunkBits is the number of low bits of a coordinate that address a tower
// within its chunk. Chunks are 16x16, so 4 bits per axis.
const ChunkBits = 4

// ChunkSize is the width and height, in towers, of a single Chunk.
const ChunkSize = 1 << ChunkBits

// WorldChunks is the number of chunks along one side of the world. The world
// is always square, WorldChunks*ChunkSize towers on a side.
const WorldChunks = 16

// WorldSize is the number of towers along one side of the world.
const WorldSize = WorldChunks * ChunkSize

// TowerId addresses a single tower cell in the world grid. X and Y are
// absolute tower coordinates in [0, WorldSize).
type TowerId struct {
	X, Y int16
}

// Valid reports whether id lies within the world bounds.
func (id TowerId) Valid() bool {
	return id.X >= 0 && id.X < WorldSize && id.Y >= 0 && id.Y < WorldSize
}

// Chunk returns the ChunkId containing id.
func (id TowerId) Chunk() ChunkId {
	return ChunkId{X: id.X >> ChunkBits, Y: id.Y >> ChunkBits}
}

// Relative returns the tower's position relative to its own chunk, in
// [0, ChunkSize).
func (id TowerId) Relative() (x, y uint8) {
	return uint8(id.X) & (ChunkSize - 1), uint8(id.Y) & (ChunkSize - 1)
}

// Less orders TowerId lexicographically (X then Y), the total order used
// throughout the simulation for deterministic iteration.
func (id TowerId) Less(other TowerId) bool {
	if id.X != other.X {
		return id.X < other.X
	}
	return id.Y < other.Y
}

// Compare returns -1, 0 or 1 comparing id to other lexicographically.
func (id TowerId) Compare(other TowerId) int {
	switch {
	case id.X < other.X:
		return -1
	case id.X > other.X:
		return 1
	case id.Y < other.Y:
		return -1
	case id.Y > other.Y:
		return 1
	default:
		return 0
	}
}

// key packs a TowerId into a dense int64 key, suitable for intintmap.Map.
func (id TowerId) key() int64 {
	return int64(uint32(uint16(id.X)))<<32 | int64(uint32(uint16(id.Y)))
}

func (id TowerId) String() string {
	return fmt.Sprintf("(%d,%d)", id.X, id.Y)
}

// EdgeDistance returns the Chebyshev distance between two TowerIds, the
// metric used throughout pathing and range checks.
func (id TowerId) EdgeDistance(other TowerId) int {
	dx := int(id.X) - int(other.X)
	if dx < 0 {
		dx = -dx
	}
	dy := int(id.Y) - int(other.Y)
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// neighborOffsets are the up-to-8 offsets of a grid neighbor.
var neighborOffsets = [8][2]int16{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbors returns the valid grid neighbors of id, up to 8, in a fixed
// deterministic order.
func (id TowerId) Neighbors() []TowerId {
	out := make([]TowerId, 0, 8)
	for _, off := range neighborOffsets {
		n := TowerId{X: id.X + off[0], Y: id.Y + off[1]}
		if n.Valid() {
			out = append(out, n)
		}
	}
	return out
}

// IsNeighbor reports whether other is a grid neighbor of id (edge distance
// exactly 1, excluding id itself).
func (id TowerId) IsNeighbor(other TowerId) bool {
	if id == other {
		return false
	}
	dx := int(id.X) - int(other.X)
	dy := int(id.Y) - int(other.Y)
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// ChunkId addresses a single Chunk within the world's chunk grid.
type ChunkId struct {
	X, Y int16
}

// Valid reports whether the ChunkId lies within world bounds.
func (c ChunkId) Valid() bool {
	return c.X >= 0 && c.X < WorldChunks && c.Y >= 0 && c.Y < WorldChunks
}

// key packs a ChunkId into a dense int64 key.
func (c ChunkId) key() int64 {
	return int64(uint32(uint16(c.X)))<<32 | int64(uint32(uint16(c.Y)))
}

// Origin returns the TowerId of the chunk's (0,0) relative tower.
func (c ChunkId) Origin() TowerId {
	return TowerId{X: c.X << ChunkBits, Y: c.Y << ChunkBits}
}

// Less orders ChunkId lexicographically.
func (c ChunkId) Less(other ChunkId) bool {
	if c.X != other.X {
		return c.X < other.X
	}
	return c.Y < other.Y
}

func (c ChunkId) String() string {
	return fmt.Sprintf("chunk(%d,%d)", c.X, c.Y)
}

// PlayerId identifies a player within the World's relation table and
// Player-keyed collections. It is assigned sequentially at join time.
type PlayerId uint32

func (p PlayerId) Less(other PlayerId) bool { return p < other }
