package pipeline

import (
	"regexp"
	"strings"
)

// AppendixMarker starts the appendix matter in the LaTeX output. It is
// emitted once, before appendix A.
const AppendixMarker = `\appendix`

var (
	forewordTitle    = regexp.MustCompile(`(?m)^## \*\*Foreword\*\*$`)
	boldSubheading   = regexp.MustCompile(`(?m)^## \*\*([^*]+)\*\*$`)
	level3Heading    = regexp.MustCompile(`(?m)^### (.+)$`)
	leadingHashes    = regexp.MustCompile(`^# +`)
	appendixPrefixed = regexp.MustCompile(`^# Appendix [A-D]: `)
)

// RewriteSections restructures headings for the file's role.
// Forewords become unnumbered; appendices get their "Appendix X:" title and,
// for A, the appendix marker. Other roles pass through.
func RewriteSections(role Role, text string) (string, []Note) {
	switch role.Kind {
	case RoleForeword:
		return rewriteForeword(text), nil
	case RoleAppendix:
		return rewriteAppendix(role.Letter, text)
	default:
		return text, nil
	}
}

// rewriteForeword makes every foreword heading unnumbered.
// The "Foreword" title is promoted first so the generic level-2 rule
// does not consume it.
func rewriteForeword(text string) string {
	replaced := false
	text = forewordTitle.ReplaceAllStringFunc(text, func(m string) string {
		if replaced {
			return m
		}
		replaced = true
		return "# Foreword {.unnumbered}"
	})
	text = boldSubheading.ReplaceAllString(text, "## $1 {.unnumbered}")
	text = level3Heading.ReplaceAllString(text, "## $1 {.unnumbered}")
	return text
}

// rewriteAppendix titles the first level-1 heading and inserts the marker
// before appendix A. Running it twice leaves the output unchanged.
func rewriteAppendix(letter byte, text string) (string, []Note) {
	lines := strings.Split(text, "\n")

	title := firstTitleIndex(lines)
	if title == -1 {
		return text, []Note{{Pass: PassSections, Message: "no level-1 heading; appendix title left as is"}}
	}

	if !appendixPrefixed.MatchString(lines[title]) {
		original := leadingHashes.ReplaceAllString(lines[title], "")
		lines[title] = "# Appendix " + string(letter) + ": " + original
	}

	if letter == 'A' && !hasMarkerBefore(lines, title) {
		lines = insertLine(lines, title, AppendixMarker+"\n")
	}

	return strings.Join(lines, "\n"), nil
}

// hasMarkerBefore reports whether the marker already precedes the title,
// allowing for the blank line inserted with it.
func hasMarkerBefore(lines []string, title int) bool {
	for i := title - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		return lines[i] == AppendixMarker
	}
	return false
}

// firstTitleIndex returns the index of the first "# " line, or -1.
func firstTitleIndex(lines []string) int {
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			return i
		}
	}
	return -1
}

// insertLine returns lines with s inserted at index i.
func insertLine(lines []string, i int, s string) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:i]...)
	out = append(out, s)
	return append(out, lines[i:]...)
}
