package server

import (
	"strings"
	"testing"
)

func TestSanitizeAliasStripsZeroWidthAndCombiningMarks(t *testing.T) {
	dirty := "C̶o" + string(zeroWidthSpace) + "mma" + string(zeroWidthJoiner) + "nder"
	if got := sanitizeAlias(dirty); got != "Commander" {
		t.Errorf("sanitizeAlias(%q) = %q, want %q", dirty, got, "Commander")
	}
}

func TestSanitizeAliasFoldsFullWidthLatinToNarrow(t *testing.T) {
	// U+FF21 FULLWIDTH LATIN CAPITAL LETTER A, as used by some IMEs.
	if got := sanitizeAlias("ＡＢＣ"); got != "ABC" {
		t.Errorf("sanitizeAlias(fullwidth ABC) = %q, want %q", got, "ABC")
	}
}

func TestSanitizeAliasTruncatesToMaxRunes(t *testing.T) {
	alias := strings.Repeat("x", maxAliasRunes+10)
	got := sanitizeAlias(alias)
	if n := len([]rune(got)); n != maxAliasRunes {
		t.Errorf("sanitizeAlias truncated to %d runes, want %d", n, maxAliasRunes)
	}
}

func TestSanitizeAliasTrimsSurroundingSpace(t *testing.T) {
	if got := sanitizeAlias("  Commander  "); got != "Commander" {
		t.Errorf("sanitizeAlias should trim surrounding whitespace, got %q", got)
	}
}

func TestSanitizeAliasEmptyInputYieldsEmptyOutput(t *testing.T) {
	if got := sanitizeAlias(""); got != "" {
		t.Errorf("sanitizeAlias(\"\") = %q, want empty", got)
	}
}

func TestTwoVisuallyEquivalentAliasesSanitizeToTheSameString(t *testing.T) {
	plain := "Commander"
	padded := "Comm" + string(zeroWidthNonJoiner) + "ander" + string(zeroWidthNoBreakSpace)
	if sanitizeAlias(plain) != sanitizeAlias(padded) {
		t.Errorf("zero-width padding should not change the sanitized alias: %q vs %q", sanitizeAlias(plain), sanitizeAlias(padded))
	}
}
