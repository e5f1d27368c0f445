package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-md2book/internal/assets"
	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/fileutil"
	"github.com/alnah/go-md2book/internal/pipeline"
)

// HighlightStyle is the chroma style of code blocks.
const HighlightStyle = "github"

var (
	// ::: {.callout .callout-<tag>}
	calloutOpen  = regexp.MustCompile(`^::: \{\.callout \.callout-([a-z-]+)\}$`)
	calloutClose = regexp.MustCompile(`^:::$`)
)

// HTMLBackend renders a standalone HTML page in-process with goldmark.
type HTMLBackend struct {
	md goldmark.Markdown
}

// Compile-time interface check.
var _ Backend = (*HTMLBackend)(nil)

// NewHTMLBackend creates an HTMLBackend with GFM extensions, heading
// attributes and syntax highlighting.
func NewHTMLBackend() *HTMLBackend {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(HighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // CSS classes, stylesheet emitted once in the page head
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // Generate IDs for headings
			parser.WithAttribute(),     // "# Foreword {.unnumbered}"
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(), // callout <div> wrappers are raw HTML
		),
	)
	return &HTMLBackend{md: md}
}

func (b *HTMLBackend) Name() string { return config.BackendBuiltin }

// Check verifies the page assets resolve.
func (b *HTMLBackend) Check(ctx context.Context, job *Job) error {
	_, err := loadPageAssets(job)
	return err
}

// Render writes the page to job.Output.
func (b *HTMLBackend) Render(ctx context.Context, job *Job) (string, error) {
	page, err := b.Page(ctx, job)
	if err != nil {
		return "", err
	}
	if err := writeOutput(job, []byte(page)); err != nil {
		return "", err
	}
	return job.Output, nil
}

// Page assembles the inputs into one HTML document.
func (b *HTMLBackend) Page(ctx context.Context, job *Job) (string, error) {
	if len(job.Inputs) == 0 {
		return "", ErrNoInputs
	}

	pa, err := loadPageAssets(job)
	if err != nil {
		return "", err
	}

	var src strings.Builder
	for _, in := range job.Inputs {
		data, err := os.ReadFile(filepath.Join(job.Root, filepath.FromSlash(in))) // #nosec G304 -- intermediate file
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRender, err)
		}
		src.WriteString(PrepareMarkdown(string(data)))
		src.WriteString("\n\n")
	}

	body, err := b.convert(ctx, src.String())
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	err = pa.tmpl.Execute(&out, pageData{
		Title:     job.Book.Title,
		Subtitle:  job.Book.Subtitle,
		Author:    job.Book.Author,
		Date:      job.Book.Date,
		Lang:      langOrDefault(job.Book.Language),
		Style:     template.CSS(pa.style),
		Highlight: template.CSS(pa.highlight),
		Body:      template.HTML(body), // #nosec G203 -- goldmark output of the book sources
	})
	if err != nil {
		return "", fmt.Errorf("%w: executing page template: %v", ErrRender, err)
	}
	return out.String(), nil
}

// convert runs goldmark under ctx. Goldmark doesn't support cancellation,
// so conversion runs in a goroutine raced against ctx.
func (b *HTMLBackend) convert(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := b.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// PrepareMarkdown adapts Pandoc-flavored intermediate markdown to goldmark:
// callout fenced divs become raw <div> blocks and the LaTeX appendix
// marker is dropped. Fenced code is left alone.
func PrepareMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	var fence pipeline.CodeFence
	depth := 0

	for _, line := range lines {
		if fence.Step(line) {
			out = append(out, line)
			continue
		}
		switch {
		case line == pipeline.AppendixMarker:
			continue
		case calloutOpen.MatchString(line):
			tag := calloutOpen.FindStringSubmatch(line)[1]
			out = append(out, `<div class="callout callout-`+tag+`">`, "")
			depth++
		case depth > 0 && calloutClose.MatchString(line):
			out = append(out, "", "</div>")
			depth--
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// pageData feeds the page template.
type pageData struct {
	Title     string
	Subtitle  string
	Author    string
	Date      string
	Lang      string
	Style     template.CSS
	Highlight template.CSS
	Body      template.HTML
}

// pageAssets are the resolved template and stylesheets of a page.
type pageAssets struct {
	tmpl      *template.Template
	style     string
	highlight string
}

// loadPageAssets resolves the stylesheet and template of job, book-local
// overrides first.
func loadPageAssets(job *Job) (*pageAssets, error) {
	base := job.Assets.BasePath
	if base != "" && !filepath.IsAbs(base) {
		base = filepath.Join(job.Root, filepath.FromSlash(base))
	}
	resolver, err := assets.NewAssetResolver(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingPrerequisite, err)
	}

	styleName := orDefault(job.Assets.Style, assets.DefaultStyle)
	style, err := resolver.LoadStyle(styleName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingPrerequisite, err)
	}

	tmplName := orDefault(job.Assets.Template, assets.DefaultTemplate)
	raw, err := resolver.LoadTemplate(tmplName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingPrerequisite, err)
	}
	tmpl, err := template.New(tmplName).Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing template %q: %v", ErrMissingPrerequisite, tmplName, err)
	}

	highlight, err := HighlightCSS(HighlightStyle)
	if err != nil {
		return nil, err
	}

	return &pageAssets{tmpl: tmpl, style: style, highlight: highlight}, nil
}

// HighlightCSS returns the chroma stylesheet for class-based highlighting.
func HighlightCSS(name string) (string, error) {
	style := styles.Get(name)
	if style == nil {
		style = styles.Fallback
	}
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("%w: highlight stylesheet: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// writeOutput atomically writes the artifact, creating its directory.
func writeOutput(job *Job, data []byte) error {
	path := filepath.Join(job.Root, filepath.FromSlash(job.Output))
	if err := os.MkdirAll(filepath.Dir(path), fileutil.DirPerm); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, fileutil.FilePerm); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrRender, job.Output, err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func langOrDefault(lang string) string {
	return orDefault(lang, "en")
}
