package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)
)

// byteOrderMark is dropped from the start of sources.
const byteOrderMark = "\uFEFF"

// Options carries the target-specific, read-only inputs of the pass chain.
type Options struct {
	RepoBase        string      // value substituted for RepoBasePlaceholder
	ImageStyle      ImageStyle  // path form of injected illustrations
	ImageExists     ImageLookup // nil disables illustration injection
	ImageExtensions []string    // candidate extensions, default "png"
}

// Transformer applies the per-file pass chain.
type Transformer interface {
	Transform(ctx context.Context, file SourceFile) (Result, error)
}

// Result is the output of the pass chain for one file.
type Result struct {
	File  SourceFile // File.Text holds the transformed text
	Notes []Note
}

// Chain runs the passes in their fixed order: sections, images, links,
// callouts. Line endings are normalized first.
type Chain struct {
	opts Options
}

// NewChain creates a Chain for one render target.
func NewChain(opts Options) *Chain {
	return &Chain{opts: opts}
}

// Compile-time interface check.
var _ Transformer = (*Chain)(nil)

// Transform runs every pass over file. It only fails on cancellation;
// missing insertion points are reported as notes.
func (c *Chain) Transform(ctx context.Context, file SourceFile) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var notes []Note
	text := normalize(file.Text)

	text, n := RewriteSections(file.Role, text)
	notes = append(notes, n...)

	text, n = InjectImage(file.Role, text, c.opts.ImageExists, c.opts.ImageStyle, c.opts.ImageExtensions...)
	notes = append(notes, n...)

	text = RewriteLinks(text, c.opts.RepoBase)
	text = RestructureCallouts(text)

	file.Text = text
	return Result{File: file, Notes: notes}, nil
}

// normalize converts \r\n and \r to \n and drops a leading byte order mark.
func normalize(content string) string {
	content = strings.TrimPrefix(content, byteOrderMark)
	return crlfOrCR.ReplaceAllString(content, "\n")
}
