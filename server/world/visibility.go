package world

// ViewportMargin is how far beyond a client's requested viewport rectangle
// towers remain visible, so scrolling doesn't produce visible pop-in at the
// exact edge.
const ViewportMargin = 2

// Viewport is a client-requested rectangle of tower coordinates, in
// chunk-aligned corners.
type Viewport struct {
	Min, Max TowerId
}

// Clamp returns the viewport intersected with world bounds and expanded by
// ViewportMargin.
func (v Viewport) Clamp() Viewport {
	return Viewport{
		Min: TowerId{X: maxInt16(v.Min.X-ViewportMargin, 0), Y: maxInt16(v.Min.Y-ViewportMargin, 0)},
		Max: TowerId{X: minInt16(v.Max.X+ViewportMargin, WorldSize-1), Y: minInt16(v.Max.Y+ViewportMargin, WorldSize-1)},
	}
}

// Contains reports whether id lies within the viewport rectangle.
func (v Viewport) Contains(id TowerId) bool {
	return id.X >= v.Min.X && id.X <= v.Max.X && id.Y >= v.Min.Y && id.Y <= v.Max.Y
}

// VisibleChunks returns every ChunkId a client watching viewport (plus any
// of its owned towers' sensor radius) must be kept informed about: its
// viewport, margin included, union its own sensor range.
func VisibleChunks(w *World, viewport Viewport, owned map[TowerId]struct{}) []ChunkId {
	clamped := viewport.Clamp()
	seen := map[ChunkId]struct{}{}
	var out []ChunkId

	add := func(c ChunkId) {
		if !c.Valid() {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	minC, maxC := clamped.Min.Chunk(), clamped.Max.Chunk()
	for x := minC.X; x <= maxC.X; x++ {
		for y := minC.Y; y <= maxC.Y; y++ {
			add(ChunkId{X: x, Y: y})
		}
	}

	for id := range owned {
		t := w.TowerAt(id)
		radius := int16(1)
		if t != nil {
			radius = int16(t.Type.SensorDistance())
		}
		for _, c := range reachableChunks(id, int(radius)) {
			add(c)
		}
	}

	return out
}
