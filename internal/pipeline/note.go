package pipeline

import "fmt"

// Pass names, as reported in notes.
const (
	PassSections = "sections"
	PassImages   = "images"
	PassLinks    = "links"
	PassCallouts = "callouts"
)

// Note records a pass that had nothing to do where work was expected,
// such as a missing title heading. Notes are informational, never errors.
type Note struct {
	Pass    string
	Message string
}

func (n Note) String() string {
	return fmt.Sprintf("%s: %s", n.Pass, n.Message)
}
