package md2book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/dateutil"
	"github.com/alnah/go-md2book/internal/emoji"
	"github.com/alnah/go-md2book/internal/fileutil"
	"github.com/alnah/go-md2book/internal/hints"
	"github.com/alnah/go-md2book/internal/imageprobe"
	"github.com/alnah/go-md2book/internal/pipeline"
	"github.com/alnah/go-md2book/internal/render"
)

// Build directories, relative to the book root.
const (
	IntermediateDir = "build/intermediate"
	AssetsDir       = "build/assets"
	AssetImagesDir  = "build/assets/images"
)

// Builder runs book builds for one book root.
// Create with NewBuilder; a Builder may run several builds in sequence.
type Builder struct {
	root    string
	cfg     *config.Config
	fs      fileutil.FS
	backend render.Backend // nil = per target
	logger  *slog.Logger
	workers int
	allow   *emoji.AllowList
	images  pipeline.ImageLookup
	now     func() time.Time
	clean   bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithFS replaces the filesystem collaborator.
func WithFS(fs fileutil.FS) Option {
	return func(b *Builder) {
		b.fs = fs
	}
}

// WithBackend renders every target with backend instead of the configured one.
func WithBackend(backend render.Backend) Option {
	return func(b *Builder) {
		b.backend = backend
	}
}

// WithLogger sets the build logger. Default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithWorkers bounds the concurrent per-file transforms. Zero or less
// uses the configured value, then GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithAllowList overrides the configured emoji allow-list.
func WithAllowList(allow emoji.AllowList) Option {
	return func(b *Builder) {
		b.allow = &allow
	}
}

// WithImageLookup replaces the illustration existence check.
func WithImageLookup(lookup pipeline.ImageLookup) Option {
	return func(b *Builder) {
		b.images = lookup
	}
}

// WithClock replaces the build clock, used for durations and "today" dates.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithClean overrides build.clean.
func WithClean(clean bool) Option {
	return func(b *Builder) {
		b.clean = clean
	}
}

// NewBuilder creates a Builder for the book at root.
func NewBuilder(root string, cfg *config.Config, opts ...Option) (*Builder, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
	}

	b := &Builder{
		root:   abs,
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		clean:  cfg.Build.Clean,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.fs == nil {
		osfs, err := fileutil.NewOSFS(abs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
		}
		b.fs = osfs
	}
	if b.workers <= 0 {
		b.workers = cfg.Build.Workers
	}
	if b.allow == nil {
		allow := AllowListFor(cfg.Emoji)
		b.allow = &allow
	}
	if b.images == nil {
		b.images = imageprobe.NewProber(b.fs, b.logger).Exists
	}
	return b, nil
}

// AllowListFor returns the approved emoji set of a configuration.
func AllowListFor(c config.EmojiConfig) emoji.AllowList {
	if c.ReplaceDefaults {
		return emoji.NewAllowList(c.Allow...)
	}
	return emoji.NewAllowList(append(emoji.DefaultAllowList().Chars(), c.Allow...)...)
}

// Root returns the absolute book root.
func (b *Builder) Root() string {
	return b.root
}

// FileNote is a transform note attached to its source file.
type FileNote struct {
	File string
	pipeline.Note
}

// Result describes a finished build.
type Result struct {
	Target        string
	Backend       string
	Output        string   // root-relative artifact path
	Intermediates []string // root-relative, in book order
	Notes         []FileNote
	Warnings      []string
	Duration      time.Duration
}

// Build runs the full pipeline for the named target.
func (b *Builder) Build(ctx context.Context, target string) (*Result, error) {
	start := b.now()

	t, err := b.cfg.Target(target)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForUnknownTarget(b.cfg.TargetNames()))
	}
	log := b.logger.With("target", t.Name)

	files, err := b.Discover(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("sources discovered", "count", len(files))

	backend, err := b.backendFor(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	job, err := b.job(t)
	if err != nil {
		return nil, err
	}

	if err := backend.Check(ctx, job); err != nil {
		return nil, err
	}
	res := &Result{Target: t.Name, Backend: backend.Name()}
	res.Warnings = b.checkFonts(t)
	for _, w := range res.Warnings {
		log.Warn(w)
	}

	if err := b.gate(files); err != nil {
		return nil, err
	}

	if err := b.prepareDirs(t, job.Output); err != nil {
		return nil, err
	}

	chain := pipeline.NewChain(b.chainOptions(t))
	results, err := transformAll(ctx, chain, files, ResolveWorkers(b.workers))
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		for _, n := range r.Notes {
			log.Info("transform note", "file", r.File.Name, "pass", n.Pass, "message", n.Message)
			res.Notes = append(res.Notes, FileNote{File: r.File.Name, Note: n})
		}
		name := path.Join(IntermediateDir, r.File.Name)
		if err := b.fs.WriteFile(name, r.File.Text); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
		}
		res.Intermediates = append(res.Intermediates, name)
	}

	if err := b.fs.CopyDir(pipeline.ImagesDir, AssetImagesDir); err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrFilesystem, err, hints.ForOutputDirectory())
	}

	job.Inputs = res.Intermediates
	log.Debug("rendering", "backend", backend.Name(), "inputs", len(job.Inputs), "output", job.Output)
	out, err := backend.Render(ctx, job)
	if err != nil {
		if errors.Is(err, render.ErrMissingPrerequisite) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrBackend, backend.Name(), err)
	}

	res.Output = out
	res.Duration = b.now().Sub(start)
	log.Info("build complete", "output", out, "duration", res.Duration)
	return res, nil
}

// BuildAll builds targets in sequence, stopping at the first failure.
func (b *Builder) BuildAll(ctx context.Context, targets []string) ([]*Result, error) {
	results := make([]*Result, 0, len(targets))
	for _, t := range targets {
		res, err := b.Build(ctx, t)
		if err != nil {
			return results, fmt.Errorf("target %s: %w", t, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Discover loads the book sources in book order.
func (b *Builder) Discover(ctx context.Context) ([]pipeline.SourceFile, error) {
	patterns := []string{pipeline.ForewordGlob, pipeline.ChapterGlob, pipeline.AppendixGlob}
	if ref := b.cfg.Source.References; ref != "" {
		patterns = append(patterns, ref)
	}

	seen := make(map[string]bool)
	var files []pipeline.SourceFile
	for _, pattern := range patterns {
		names, err := b.fs.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true

			role, ok := pipeline.Classify(name, b.cfg.Source.References)
			if !ok {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			text, err := b.fs.ReadFile(name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
			}
			files = append(files, pipeline.SourceFile{
				Path: name,
				Name: path.Base(name),
				Role: role,
				Text: text,
			})
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s%s", ErrNoSources, b.root, hints.ForNoSources(b.root))
	}
	pipeline.SortFiles(files)
	if first, ok := firstAppendix(files); ok && first != 'A' {
		b.logger.Warn("appendices start after A; no appendix marker will be emitted",
			"first", pipeline.Appendix(first).String())
	}
	return files, nil
}

// firstAppendix returns the letter of the first appendix in sorted files.
func firstAppendix(files []pipeline.SourceFile) (byte, bool) {
	for _, f := range files {
		if f.Role.Kind == pipeline.RoleAppendix {
			return f.Role.Letter, true
		}
	}
	return 0, false
}

// gate fails with a *ValidationError when any source has unapproved emoji.
func (b *Builder) gate(files []pipeline.SourceFile) error {
	var verr ValidationError
	for _, f := range files {
		if v := emoji.Violations(f.Text, *b.allow); len(v) > 0 {
			verr.Files = append(verr.Files, FileViolations{File: f.Name, Occurrences: v})
		}
	}
	if len(verr.Files) > 0 {
		return &verr
	}
	return nil
}

// prepareDirs cleans (when configured) and creates the build directories.
// Cleaning removes the intermediate and asset trees and the previous
// artifact; the rest of the target directory is left alone.
func (b *Builder) prepareDirs(t config.Target, output string) error {
	if err := config.CheckTargetDirectory(t.Directory); err != nil {
		return fmt.Errorf("%w: targets.%s.directory: %v", config.ErrInvalidTarget, t.Name, err)
	}
	if b.clean {
		for _, d := range []string{IntermediateDir, AssetsDir, output} {
			if err := b.fs.RemoveAll(d); err != nil {
				return fmt.Errorf("%w: %v", ErrFilesystem, err)
			}
		}
	}
	for _, d := range []string{IntermediateDir, AssetsDir, t.Directory} {
		if err := b.fs.MkdirAll(d); err != nil {
			return fmt.Errorf("%w: %v%s", ErrFilesystem, err, hints.ForOutputDirectory())
		}
	}
	return nil
}

// backendFor returns the injected backend or the one the target names.
func (b *Builder) backendFor(t config.Target) (render.Backend, error) {
	if b.backend != nil {
		return b.backend, nil
	}
	return render.ForTarget(t)
}

// job returns the render job of t, without inputs. The book date is
// resolved against the build clock.
func (b *Builder) job(t config.Target) (*render.Job, error) {
	book := b.cfg.Book
	date, err := dateutil.Resolve(book.Date, b.now())
	if err != nil {
		return nil, fmt.Errorf("book.date: %w", err)
	}
	book.Date = date

	return &render.Job{
		Root:      b.root,
		Output:    render.OutputPath(t, b.cfg.Book.Slug),
		Target:    t,
		Book:      book,
		Pandoc:    b.cfg.Pandoc,
		Citations: b.cfg.Citations,
		Assets:    b.cfg.Assets,
		Exists:    b.fs.Exists,
	}, nil
}

// chainOptions returns the pass chain inputs of t.
func (b *Builder) chainOptions(t config.Target) pipeline.Options {
	style := pipeline.ImageEmbedded
	if t.ImageStyle == config.ImageStyleRelative {
		style = pipeline.ImageRelative
	}
	return pipeline.Options{
		RepoBase:        b.RepoBase(t),
		ImageStyle:      style,
		ImageExists:     b.images,
		ImageExtensions: b.cfg.Source.ImageFormats,
	}
}

// RepoBase returns the {REPO_BASE} substitution of t. LocalRepoBase
// resolves to the book root as a file URL.
func (b *Builder) RepoBase(t config.Target) string {
	if t.RepoBaseURL == config.LocalRepoBase {
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(b.root)}
		return u.String()
	}
	return t.RepoBaseURL
}

// checkFonts returns a warning per configured font missing for t.
func (b *Builder) checkFonts(t config.Target) []string {
	f := b.cfg.Fonts
	if len(f.Files) == 0 {
		return nil
	}
	ext := f.Formats[t.Name]
	if ext == "" {
		ext = f.Fallback
	}
	if ext == "" {
		return nil
	}

	var warnings []string
	for _, name := range f.Files {
		p := path.Join(f.Dir, name+"."+ext)
		if !b.fs.Exists(p) {
			warnings = append(warnings, fmt.Sprintf("font not found: %s%s", p, hints.ForFontMissing(f.Dir, ext)))
		}
	}
	return warnings
}

// FontWarnings reports the configured fonts missing for the named target.
func (b *Builder) FontWarnings(target string) ([]string, error) {
	t, err := b.cfg.Target(target)
	if err != nil {
		return nil, err
	}
	return b.checkFonts(t), nil
}
