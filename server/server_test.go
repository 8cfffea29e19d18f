package server

import "testing"

func TestCompatibleVersion(t *testing.T) {
	cases := []struct {
		version string
		want    bool
	}{
		{"v1.0.0", true},
		{"v1.4.2", true},
		{"v2.0.0", false},
		{"not-a-version", false},
		{"", false},
	}
	for _, c := range cases {
		if got := compatibleVersion(c.version); got != c.want {
			t.Errorf("compatibleVersion(%q) = %v, want %v", c.version, got, c.want)
		}
	}
}

func TestPseudoRandomStaysWithinBounds(t *testing.T) {
	for n := 1; n <= 50; n++ {
		for i := 0; i < 20; i++ {
			if v := pseudoRandom(n); v < 0 || v >= n {
				t.Fatalf("pseudoRandom(%d) = %d, out of [0,%d)", n, v, n)
			}
		}
	}
}
