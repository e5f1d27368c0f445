package md2book

import (
	"context"
	"fmt"

	"github.com/alnah/go-md2book/internal/emoji"
	"github.com/alnah/go-md2book/internal/linkcheck"
)

// FileReport is the emoji scan of one source file.
type FileReport struct {
	File        string
	Occurrences []emoji.Occurrence // approved and unapproved, in order
}

// Violations returns the unapproved occurrences.
func (r FileReport) Violations() []emoji.Occurrence {
	var out []emoji.Occurrence
	for _, o := range r.Occurrences {
		if !o.Approved {
			out = append(out, o)
		}
	}
	return out
}

// EmojiReport is the emoji scan of a whole book.
type EmojiReport struct {
	Files []FileReport
}

// Totals returns the approved and unapproved counts.
func (r *EmojiReport) Totals() (approved, violations int) {
	for _, f := range r.Files {
		for _, o := range f.Occurrences {
			if o.Approved {
				approved++
			} else {
				violations++
			}
		}
	}
	return approved, violations
}

// Err returns a *ValidationError when the report has violations, else nil.
func (r *EmojiReport) Err() error {
	var verr ValidationError
	for _, f := range r.Files {
		if v := f.Violations(); len(v) > 0 {
			verr.Files = append(verr.Files, FileViolations{File: f.File, Occurrences: v})
		}
	}
	if len(verr.Files) == 0 {
		return nil
	}
	return &verr
}

// ValidateEmoji scans every source without building.
func (b *Builder) ValidateEmoji(ctx context.Context) (*EmojiReport, error) {
	files, err := b.Discover(ctx)
	if err != nil {
		return nil, err
	}
	report := &EmojiReport{Files: make([]FileReport, 0, len(files))}
	for _, f := range files {
		report.Files = append(report.Files, FileReport{
			File:        f.Name,
			Occurrences: emoji.Scan(f.Text, *b.allow),
		})
	}
	return report, nil
}

// StripResult is the outcome of stripping one file.
type StripResult struct {
	File    string
	Removed int
}

// StripEmoji removes unapproved emoji from the sources in place. Files with
// nothing to remove are not rewritten. With dryRun, nothing is written.
func (b *Builder) StripEmoji(ctx context.Context, dryRun bool) ([]StripResult, error) {
	files, err := b.Discover(ctx)
	if err != nil {
		return nil, err
	}
	var out []StripResult
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		text, removed := emoji.Strip(f.Text, *b.allow)
		if removed == 0 {
			continue
		}
		if !dryRun {
			if err := b.fs.WriteFile(f.Path, text); err != nil {
				return out, fmt.Errorf("%w: %v", ErrFilesystem, err)
			}
		}
		b.logger.Debug("emoji stripped", "file", f.Path, "removed", removed, "dryRun", dryRun)
		out = append(out, StripResult{File: f.Path, Removed: removed})
	}
	return out, nil
}

// CheckLinks validates the links of every source.
func (b *Builder) CheckLinks(ctx context.Context) (*linkcheck.Report, error) {
	files, err := b.Discover(ctx)
	if err != nil {
		return nil, err
	}
	checker, err := linkcheck.New(b.fs, linkcheck.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return checker.Check(ctx, files)
}
