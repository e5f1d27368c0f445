package render

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/alnah/go-md2book/internal/config"
)

// Sentinel errors for rendering.
var (
	ErrMissingPrerequisite = errors.New("missing prerequisite")
	ErrRender              = errors.New("render failed")
	ErrNoInputs            = errors.New("no input files")
	ErrUnsupportedFormat   = errors.New("unsupported format")
)

// Job is one render request. Paths are slash-separated and relative to Root.
type Job struct {
	Root      string   // absolute book root, working directory of the renderer
	Inputs    []string // intermediate files in book order
	Output    string   // artifact to produce
	Target    config.Target
	Book      config.BookConfig
	Pandoc    config.PandocConfig
	Citations config.CitationsConfig
	Assets    config.AssetsConfig

	// Exists reports whether an optional root-relative file is present.
	// Optional files that are absent are left out of the command line.
	Exists func(rel string) bool
}

// exists is Job.Exists with a nil guard.
func (j *Job) exists(rel string) bool {
	return rel != "" && j.Exists != nil && j.Exists(rel)
}

// Backend renders a book.
type Backend interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string
	// Check verifies the backend's external prerequisites for job.
	// Failures wrap ErrMissingPrerequisite.
	Check(ctx context.Context, job *Job) error
	// Render produces job.Output and returns its root-relative path.
	// Failures wrap ErrRender.
	Render(ctx context.Context, job *Job) (string, error)
}

// OutputPath returns "<target dir>/<slug><ext>".
func OutputPath(t config.Target, slug string) string {
	if slug == "" {
		slug = "book"
	}
	return path.Join(t.Directory, slug+t.Extension())
}

// ForTarget returns the backend configured for t.
func ForTarget(t config.Target) (Backend, error) {
	switch t.Backend {
	case "", config.BackendPandoc:
		return NewPandocBackend(), nil
	case config.BackendBuiltin:
		switch t.Format {
		case config.FormatHTML:
			return NewHTMLBackend(), nil
		case config.FormatPDF:
			return NewChromeBackend(DefaultChromeTimeout), nil
		}
		return nil, fmt.Errorf("%w: builtin backend cannot produce %s", ErrUnsupportedFormat, t.Format)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrUnsupportedFormat, t.Backend)
	}
}
