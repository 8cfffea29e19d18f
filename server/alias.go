package server

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// maxAliasRunes bounds a sanitized alias's length after zero-width runes
// have been stripped, independent of how many bytes a hostile client sent.
const maxAliasRunes = 24

const (
	zeroWidthSpace        = '​'
	zeroWidthNonJoiner    = '‌'
	zeroWidthJoiner       = '‍'
	zeroWidthNoBreakSpace = '﻿'
)

// sanitizeAlias normalises a client-supplied alias so two visually
// equivalent strings can never desync client-side layout or whitelist
// matching: it NFC-normalises, folds East-Asian wide/half-width forms to
// their narrow/full equivalents, and drops combining marks and zero-width
// runes a hostile client could use to pad or spoof another player's name.
func sanitizeAlias(alias string) string {
	folded := width.Narrow.String(norm.NFC.String(alias))

	var b strings.Builder
	count := 0
	for _, r := range folded {
		if unicode.Is(unicode.Mn, r) || isZeroWidth(r) {
			continue
		}
		if count >= maxAliasRunes {
			break
		}
		b.WriteRune(r)
		count++
	}
	return strings.TrimSpace(b.String())
}

func isZeroWidth(r rune) bool {
	switch r {
	case zeroWidthSpace, zeroWidthNonJoiner, zeroWidthJoiner, zeroWidthNoBreakSpace:
		return true
	default:
		return false
	}
}
