package protocol

import "github.com/towersiege/server/server/world"

func (w *Writer) TowerId(id world.TowerId) {
	w.Int16(id.X)
	w.Int16(id.Y)
}

func (r *Reader) TowerId() (world.TowerId, error) {
	x, err := r.Int16()
	if err != nil {
		return world.TowerId{}, err
	}
	y, err := r.Int16()
	if err != nil {
		return world.TowerId{}, err
	}
	return world.TowerId{X: x, Y: y}, nil
}

func (w *Writer) PlayerId(id world.PlayerId) { w.Uint32(uint32(id)) }

func (r *Reader) PlayerId() (world.PlayerId, error) {
	v, err := r.Uint32()
	return world.PlayerId(v), err
}

func (w *Writer) Path(p world.Path) {
	w.Varint(uint32(len(p)))
	for _, id := range p {
		w.TowerId(id)
	}
}

func (r *Reader) Path() (world.Path, error) {
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	p := make(world.Path, n)
	for i := range p {
		if p[i], err = r.TowerId(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Units writes a varint count of the non-zero unit kinds followed by a
// (kind, count) pair for each, rather than the full fixed-size array: a
// force typically carries only one or two kinds.
func (w *Writer) Units(u world.Units) {
	var kinds []world.Unit
	for k := world.Unit(0); int(k) < len(u); k++ {
		if u[k] > 0 {
			kinds = append(kinds, k)
		}
	}
	w.Varint(uint32(len(kinds)))
	for _, k := range kinds {
		w.Uint8(uint8(k))
		w.Uint8(u[k])
	}
}

func (r *Reader) Units() (world.Units, error) {
	var u world.Units
	n, err := r.Varint()
	if err != nil {
		return u, err
	}
	for i := uint32(0); i < n; i++ {
		kind, err := r.Uint8()
		if err != nil {
			return u, err
		}
		count, err := r.Uint8()
		if err != nil {
			return u, err
		}
		if int(kind) < len(u) {
			u[kind] = count
		}
	}
	return u, nil
}
