package protocol

import "testing"

func TestWriterReaderVarintRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 300, 1 << 20, 1<<32 - 1}
	for _, v := range values {
		w := NewWriter()
		w.Varint(v)
		got, err := NewReader(w.Bytes()).Varint()
		if err != nil {
			t.Fatalf("Varint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("Varint round trip: got %d, want %d", got, v)
		}
	}
}

func TestWriterReaderStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "siege commander", "日本語エイリアス"} {
		w := NewWriter()
		w.String(s)
		got, err := NewReader(w.Bytes()).String()
		if err != nil {
			t.Fatalf("String(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("String round trip: got %q, want %q", got, s)
		}
	}
}

func TestWriterReaderScalarRoundTrips(t *testing.T) {
	w := NewWriter()
	w.Uint8(250)
	w.Bool(true)
	w.Uint32(0xdeadbeef)
	w.Uint64(0x0123456789abcdef)
	w.Int16(-12345)
	w.Float64(3.14159)

	r := NewReader(w.Bytes())
	if v, err := r.Uint8(); err != nil || v != 250 {
		t.Errorf("Uint8: got (%d, %v), want 250", v, err)
	}
	if v, err := r.Bool(); err != nil || !v {
		t.Errorf("Bool: got (%v, %v), want true", v, err)
	}
	if v, err := r.Uint32(); err != nil || v != 0xdeadbeef {
		t.Errorf("Uint32: got (%x, %v), want deadbeef", v, err)
	}
	if v, err := r.Uint64(); err != nil || v != 0x0123456789abcdef {
		t.Errorf("Uint64: got (%x, %v)", v, err)
	}
	if v, err := r.Int16(); err != nil || v != -12345 {
		t.Errorf("Int16: got (%d, %v), want -12345", v, err)
	}
	if v, err := r.Float64(); err != nil || v != 3.14159 {
		t.Errorf("Float64: got (%v, %v), want 3.14159", v, err)
	}
}

func TestReaderErrorsOnShortBuffer(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.Uint64(); err != ErrShortBuffer {
		t.Errorf("expected ErrShortBuffer reading past the end, got %v", err)
	}
}
