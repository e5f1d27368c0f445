package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/hints"
)

// DefaultEngine is the PDF engine used when a target names none.
const DefaultEngine = "xelatex"

// PandocBackend renders by invoking the Pandoc CLI from the book root.
type PandocBackend struct {
	Runner  CommandRunner
	Environ func() []string // base environment of the child, usually os.Environ
}

// Compile-time interface check.
var _ Backend = (*PandocBackend)(nil)

// NewPandocBackend creates a PandocBackend with a real command runner.
func NewPandocBackend() *PandocBackend {
	return &PandocBackend{Runner: &ExecRunner{}, Environ: os.Environ}
}

func (b *PandocBackend) Name() string { return config.BackendPandoc }

// binary returns the configured pandoc executable.
func binary(job *Job) string {
	if job.Pandoc.Binary != "" {
		return job.Pandoc.Binary
	}
	return "pandoc"
}

// engine returns the PDF engine of the job's target.
func engine(job *Job) string {
	if job.Target.Engine != "" {
		return job.Target.Engine
	}
	return DefaultEngine
}

// env returns the child environment. PDF builds see the TeX paths.
func (b *PandocBackend) env(job *Job) []string {
	if !job.Target.IsPDF() || len(job.Pandoc.TexPaths) == 0 {
		return nil
	}
	base := os.Environ
	if b.Environ != nil {
		base = b.Environ
	}
	return ExtendPath(base(), job.Pandoc.TexPaths)
}

// Version runs "<bin> --version" and returns the first output line.
func Version(ctx context.Context, runner CommandRunner, c Command) (string, error) {
	c.Args = append(c.Args, "--version")
	stdout, stderr, err := runner.Run(ctx, c)
	if err != nil {
		return "", commandFailure(ErrMissingPrerequisite, c, stderr, err)
	}
	return firstLine(stdout), nil
}

// Check verifies pandoc, and the PDF engine for PDF targets.
func (b *PandocBackend) Check(ctx context.Context, job *Job) error {
	if _, err := Version(ctx, b.Runner, Command{Name: binary(job)}); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForPandocMissing())
	}
	if !job.Target.IsPDF() {
		return nil
	}
	eng := engine(job)
	if _, err := Version(ctx, b.Runner, Command{Name: eng, Env: b.env(job)}); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForEngineMissing(eng))
	}
	return nil
}

// Args builds the pandoc argument list for job. Optional files (defaults,
// templates, bibliography, CSL, CSS, filters) are only passed when present.
func Args(job *Job) []string {
	t := job.Target
	args := append([]string{}, job.Inputs...)
	args = append(args, "--to="+t.Format, "--output="+job.Output)

	if job.Citations.Enabled {
		args = append(args, "--citeproc")
		if job.exists(job.Citations.Bibliography) {
			args = append(args, "--bibliography="+job.Citations.Bibliography)
		}
		if csl := job.Citations.Styles[t.CitationStyle]; job.exists(csl) {
			args = append(args, "--csl="+csl)
		}
	}

	switch t.Format {
	case config.FormatPDF:
		if job.exists(job.Pandoc.DefaultsFile) {
			args = append(args, "--defaults="+job.Pandoc.DefaultsFile)
		}
		args = append(args, "--pdf-engine="+engine(job))
		if t.DPI > 0 {
			args = append(args, "--dpi="+strconv.Itoa(t.DPI))
		}
		template := job.Pandoc.DigitalTemplate
		if t.PDFType == config.PDFX1A || t.Name == "print" {
			template = job.Pandoc.PrintTemplate
		}
		if job.exists(template) {
			args = append(args, "--template="+template)
		}

	case config.FormatEPUB:
		args = appendDocumentArgs(args, job)

	default:
		args = appendDocumentArgs(args, job)
		if job.exists(job.Pandoc.CSS) {
			// Written verbatim into the page; absolute so it resolves from the target folder.
			args = append(args, "--css="+filepath.Join(job.Root, filepath.FromSlash(job.Pandoc.CSS)))
		}
		for _, filter := range job.Pandoc.Filters {
			if job.exists(filter) {
				args = append(args, "--lua-filter="+filter)
			}
		}
	}
	return args
}

// appendDocumentArgs adds the standalone, TOC and metadata flags of HTML
// and EPUB output.
func appendDocumentArgs(args []string, job *Job) []string {
	if job.Target.Standalone {
		args = append(args, "--standalone")
	}
	args = append(args, "--toc")
	if job.Book.Title != "" {
		args = append(args, "--metadata=title:"+job.Book.Title)
	}
	if job.Book.Author != "" {
		args = append(args, "--metadata=author:"+job.Book.Author)
	}
	if job.Book.Language != "" {
		args = append(args, "--metadata=lang:"+job.Book.Language)
	}
	if job.Book.Date != "" {
		args = append(args, "--metadata=date:"+job.Book.Date)
	}
	return args
}

// Render runs pandoc from the book root.
func (b *PandocBackend) Render(ctx context.Context, job *Job) (string, error) {
	if len(job.Inputs) == 0 {
		return "", ErrNoInputs
	}
	c := Command{
		Name: binary(job),
		Args: Args(job),
		Dir:  job.Root,
		Env:  b.env(job),
	}
	if _, stderr, err := b.Runner.Run(ctx, c); err != nil {
		return "", commandFailure(ErrRender, c, stderr, err)
	}
	return job.Output, nil
}
