package emoji

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Code point blocks treated as emoji candidates. Overlapping blocks are
// listed as-is; Merge folds them into one sorted table.
var blocks = []*unicode.RangeTable{
	span(0x1F600, 0x1F64F), // emoticons
	span(0x1F300, 0x1F5FF), // misc symbols and pictographs
	span(0x1F680, 0x1F6FF), // transport and map symbols
	span(0x2600, 0x26FF),   // misc symbols
	span(0x2700, 0x27BF),   // dingbats
	span(0x2B00, 0x2BFF),   // misc symbols and arrows
	span(0x1F900, 0x1F9FF), // supplemental symbols and pictographs
	span(0x1FA70, 0x1FAFF), // symbols and pictographs extended-A
	span(0x1F004, 0x1F0CF), // mahjong and playing cards
	span(0x1F170, 0x1F251), // enclosed alphanumerics, regional indicators
	span(0x1F18E, 0x1F18E),
	span(0x3030, 0x3030),
	span(0x303D, 0x303D),
	span(0x3297, 0x3297),
	span(0x3299, 0x3299),
	span(0x1F3FB, 0x1F3FF), // skin tone modifiers
	span(0x200D, 0x200D),   // zero width joiner
	span(0xFE0F, 0xFE0F),   // variation selector-16
}

// candidates is the merged lookup table used by IsCandidate.
var candidates = rangetable.Merge(blocks...)

// IsCandidate reports whether r falls in one of the emoji candidate blocks.
// Joiners and variation selectors are candidates on their own.
func IsCandidate(r rune) bool {
	return unicode.Is(candidates, r)
}

func span(lo, hi rune) *unicode.RangeTable {
	if hi <= 0xFFFF {
		return &unicode.RangeTable{R16: []unicode.Range16{{Lo: uint16(lo), Hi: uint16(hi), Stride: 1}}}
	}
	return &unicode.RangeTable{R32: []unicode.Range32{{Lo: uint32(lo), Hi: uint32(hi), Stride: 1}}}
}
