package emoji

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Occurrence is one emoji candidate found in a text.
type Occurrence struct {
	Char      string
	CodePoint rune
	Offset    int // byte offset of the code point in the scanned text
	Line      int
	Column    int // 1-based, in UTF-16 code units like editors report
	Approved  bool
}

// Unicode returns the code point in U+XXXX form.
func (o Occurrence) Unicode() string {
	return CodePointLabel(o.CodePoint)
}

// CodePointLabel formats r as U+XXXX (at least four hex digits).
func CodePointLabel(r rune) string {
	return fmt.Sprintf("U+%04X", r)
}

// Scan returns every emoji candidate in text, in order of appearance.
// Returns nil when text contains no candidate.
func Scan(text string, allow AllowList) []Occurrence {
	var found []Occurrence

	// width counts the UTF-16 code units before the current rune on its line.
	line, width := 1, 0
	for offset, r := range text {
		if r == '\n' {
			line++
			width = 0
			continue
		}
		col := width + 1
		width += utf16.RuneLen(r)

		if !IsCandidate(r) {
			continue
		}

		char := string(r)
		found = append(found, Occurrence{
			Char:      char,
			CodePoint: r,
			Offset:    offset,
			Line:      line,
			Column:    col,
			Approved:  allow.IsApproved(char),
		})
	}

	return found
}

// Violations returns the candidates in text that are not on the allow-list.
func Violations(text string, allow AllowList) []Occurrence {
	var out []Occurrence
	for _, o := range Scan(text, allow) {
		if !o.Approved {
			out = append(out, o)
		}
	}
	return out
}

// Strip removes every unapproved candidate from text and returns the
// cleaned text with the number of code points removed.
func Strip(text string, allow AllowList) (string, int) {
	var b strings.Builder
	b.Grow(len(text))

	removed := 0
	for _, r := range text {
		if IsCandidate(r) && !allow.IsApproved(string(r)) {
			removed++
			continue
		}
		b.WriteRune(r)
	}

	if removed == 0 {
		return text, 0
	}
	return b.String(), removed
}
