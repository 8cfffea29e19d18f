// Package protocol defines the binary wire format exchanged between clients
// and the server: a small tagged-union command set the client sends, and a
// tagged-union update set the server pushes back.
package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned by any read past the end of the buffer.
var ErrShortBuffer = errors.New("protocol: short buffer")

// Writer serialises a single frame field by field, in the style of
// gophertunnel's protocol.IO: every wire type gets one named method so a
// packet's Marshal method reads as a flat list of fields.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) Uint8(v uint8)   { w.buf.WriteByte(v) }
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) Int16(v int16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	w.buf.Write(b[:])
}

func (w *Writer) Float64(v float64) {
	w.Uint64(math.Float64bits(v))
}

// Varint writes v using the same LEB128 unsigned varint scheme gophertunnel
// uses for its packet lengths and runtime IDs.
func (w *Writer) Varint(v uint32) {
	for v >= 0x80 {
		w.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	w.buf.WriteByte(byte(v))
}

func (w *Writer) String(s string) {
	w.Varint(uint32(len(s)))
	w.buf.WriteString(s)
}

// Reader deserialises a frame written by Writer, field by field, in the same
// order it was written.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader { return &Reader{buf: b} }

func (r *Reader) take(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Bool() (bool, error) {
	b, err := r.Uint8()
	return b != 0, err
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) Int16() (int16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	return math.Float64frombits(v), err
}

func (r *Reader) Varint() (uint32, error) {
	var v uint32
	for shift := uint(0); ; shift += 7 {
		if shift >= 35 {
			return 0, errors.New("protocol: varint too long")
		}
		b, err := r.Uint8()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}

func (r *Reader) String() (string, error) {
	n, err := r.Varint()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
