package world

// Chunk is a fixed 16x16 array of optional Towers, the unit of locality for
// iteration, dispatch and update diffing.
type Chunk struct {
	Id     ChunkId
	towers [ChunkSize][ChunkSize]*Tower
}

// NewChunk constructs an empty Chunk at id.
func NewChunk(id ChunkId) *Chunk {
	return &Chunk{Id: id}
}

// At returns the Tower at the chunk-relative coordinates, or nil if empty.
func (c *Chunk) At(x, y uint8) *Tower {
	return c.towers[x][y]
}

// Set installs t at the chunk-relative coordinates, or clears the cell if t
// is nil.
func (c *Chunk) Set(x, y uint8, t *Tower) {
	c.towers[x][y] = t
}

// Tower looks up the Tower at an absolute TowerId that must belong to this
// chunk.
func (c *Chunk) Tower(id TowerId) *Tower {
	x, y := id.Relative()
	return c.towers[x][y]
}

// SetTower installs or clears the Tower at an absolute TowerId that must
// belong to this chunk.
func (c *Chunk) SetTower(id TowerId, t *Tower) {
	x, y := id.Relative()
	c.towers[x][y] = t
}

// Towers iterates over every non-nil Tower in the chunk in lexicographic
// TowerId order.
func (c *Chunk) Towers(yield func(*Tower) bool) {
	for x := uint8(0); x < ChunkSize; x++ {
		for y := uint8(0); y < ChunkSize; y++ {
			if t := c.towers[x][y]; t != nil {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Empty reports whether the chunk holds no towers at all.
func (c *Chunk) Empty() bool {
	for x := uint8(0); x < ChunkSize; x++ {
		for y := uint8(0); y < ChunkSize; y++ {
			if c.towers[x][y] != nil {
				return false
			}
		}
	}
	return true
}

