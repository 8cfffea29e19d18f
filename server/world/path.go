package world

import "errors"

// Path is a nonempty ordered sequence of TowerIds in which consecutive
// members are grid neighbors.
type Path []TowerId

// ErrInvalidPath is returned by Validate when a Path fails any structural
// constraint.
var ErrInvalidPath = errors.New("world: invalid path")

// Validate checks the invariants required of any Path accepted from a
// client: at least two towers, consecutive members are grid neighbors, and
// every edge has length no greater than maxEdgeDistance.
func (p Path) Validate(maxEdgeDistance int) error {
	if len(p) < 2 {
		return ErrInvalidPath
	}
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		if !a.Valid() || !b.Valid() {
			return ErrInvalidPath
		}
		if !a.IsNeighbor(b) {
			return ErrInvalidPath
		}
		if a.EdgeDistance(b) > maxEdgeDistance {
			return ErrInvalidPath
		}
	}
	return nil
}

// Source returns the first tower in the path.
func (p Path) Source() TowerId { return p[0] }

// Destination returns the final tower in the path.
func (p Path) Destination() TowerId { return p[len(p)-1] }

// CurrentLeg returns the (source, destination) pair of the edge a Force at
// the given leg index is currently traversing. leg indexes edges, i.e. it is
// in [0, len(p)-2].
func (p Path) CurrentLeg(leg int) (src, dst TowerId) {
	return p[leg], p[leg+1]
}

// Legs returns the number of edges in the path.
func (p Path) Legs() int { return len(p) - 1 }

// Clone returns a copy of the path, safe to retain independently of p's
// backing array.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}
