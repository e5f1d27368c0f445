package md2book

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/emoji"
	"github.com/alnah/go-md2book/internal/hints"
	"github.com/alnah/go-md2book/internal/render"
)

// Sentinel errors for book builds.
var (
	ErrEmojiValidation     = errors.New("emoji validation failed")
	ErrMissingPrerequisite = render.ErrMissingPrerequisite
	ErrBackend             = errors.New("backend failed")
	ErrFilesystem          = errors.New("filesystem error")
	ErrNoSources           = errors.New("no book sources found")
	ErrUnknownTarget       = config.ErrUnknownTarget
)

// FileViolations groups the unapproved emoji of one source file.
type FileViolations struct {
	File        string
	Occurrences []emoji.Occurrence
}

// ValidationError reports every unapproved emoji across the book.
// It matches ErrEmojiValidation.
type ValidationError struct {
	Files []FileViolations
}

// Count returns the total number of violations.
func (e *ValidationError) Count() int {
	n := 0
	for _, f := range e.Files {
		n += len(f.Occurrences)
	}
	return n
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %d unapproved emoji in %d file(s)", ErrEmojiValidation, e.Count(), len(e.Files))
	for _, f := range e.Files {
		for _, o := range f.Occurrences {
			fmt.Fprintf(&b, "\n  %s:%d:%d: %s (%s)", f.File, o.Line, o.Column, o.Char, o.Unicode())
		}
	}
	b.WriteString(hints.ForEmojiViolations())
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrEmojiValidation
}
