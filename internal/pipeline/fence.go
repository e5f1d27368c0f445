package pipeline

import "strings"

// CodeFence follows fenced code blocks line by line. A block opens on a run
// of at least three backticks or tildes indented by at most three spaces,
// and closes only on a run of the same character at least as long with
// nothing after it.
type CodeFence struct {
	char byte
	size int
}

// InCode reports whether the last line fed to Step left a block open.
func (f *CodeFence) InCode() bool {
	return f.size > 0
}

// Step feeds the next line and reports whether it is code, delimiters
// included.
func (f *CodeFence) Step(line string) bool {
	char, size, rest := fenceRun(line)
	if f.size == 0 {
		// A backtick fence's info string cannot contain backticks.
		if size < 3 || (char == '`' && strings.ContainsRune(rest, '`')) {
			return false
		}
		f.char, f.size = char, size
		return true
	}
	if char == f.char && size >= f.size && strings.TrimSpace(rest) == "" {
		f.char, f.size = 0, 0
	}
	return true
}

// fenceRun returns the fence character, the run length and the text after
// the run, or a zero size when line does not start with a fence.
func fenceRun(line string) (byte, int, string) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || trimmed == "" {
		return 0, 0, ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return 0, 0, ""
	}
	n := 1
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	return c, n, trimmed[n:]
}
