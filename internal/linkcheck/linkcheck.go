// Package linkcheck validates the links of book sources.
//
// Links are found by walking the goldmark AST, so links inside code spans
// and fenced code are ignored. Each destination is classified:
//
//   - "#..." anchors and "mailto:" links are skipped
//   - {REPO_BASE} links must name a file under the book root
//   - other relative links must name a file under the book root
//   - URLs with a scheme are reported as unvalidated warnings
//
// Existence checks go through a bounded LRU cache shared across files.
package linkcheck

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-md2book/internal/pipeline"
)

// DefaultCacheSize bounds the existence cache.
const DefaultCacheSize = 1024

// Problems reported for a link.
const (
	ProblemRepoFile  = "Repository file not found"
	ProblemLocalFile = "Local file not found"
	ProblemExternal  = "External URL (not validated)"
)

// Severity of an Issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Issue is one problematic link.
type Issue struct {
	File     string
	Line     int // 1-based, 0 when unknown
	Text     string
	URL      string
	Problem  string
	Path     string // root-relative path that was checked, if any
	Severity Severity
}

func (i Issue) String() string {
	loc := i.File
	if i.Line > 0 {
		loc = fmt.Sprintf("%s:%d", i.File, i.Line)
	}
	return fmt.Sprintf("%s: %q -> %s (%s)", loc, i.Text, i.URL, i.Problem)
}

// Report is the result of checking a set of files.
type Report struct {
	Files  int
	Links  int
	Issues []Issue
}

// Errors returns the error-severity issues.
func (r *Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning-severity issues.
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r *Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// FileChecker reports whether a root-relative file exists.
type FileChecker interface {
	Exists(name string) bool
}

// Checker validates links. It is not safe for concurrent use of Check,
// but the cache itself is.
type Checker struct {
	fs    FileChecker
	md    goldmark.Markdown
	cache *lru.Cache[string, bool]
}

// New creates a Checker over fs with an existence cache of size entries.
func New(fs FileChecker, size int) (*Checker, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, bool](size)
	if err != nil {
		return nil, fmt.Errorf("creating link cache: %w", err)
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAttribute()),
	)
	return &Checker{fs: fs, md: md, cache: cache}, nil
}

// Check validates every link of files, in order.
func (c *Checker) Check(ctx context.Context, files []pipeline.SourceFile) (*Report, error) {
	r := &Report{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		links := c.Links(f.Text)
		r.Files++
		r.Links += len(links)
		for _, l := range links {
			if issue, ok := c.checkLink(l); ok {
				issue.File = f.Name
				r.Issues = append(r.Issues, issue)
			}
		}
	}
	return r, nil
}

// Link is a link or image found in a markdown document.
type Link struct {
	Text string
	URL  string
	Line int
}

// Links returns the links and images of src in document order.
func (c *Checker) Links(src string) []Link {
	source := []byte(src)
	doc := c.md.Parser().Parse(text.NewReader(source))

	var links []Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var dest []byte
		switch node := n.(type) {
		case *ast.Link:
			dest = node.Destination
		case *ast.Image:
			dest = node.Destination
		default:
			return ast.WalkContinue, nil
		}
		links = append(links, Link{
			Text: inlineText(n, source),
			URL:  string(dest),
			Line: lineOf(n, source),
		})
		return ast.WalkSkipChildren, nil
	})
	return links
}

// checkLink classifies one link.
func (c *Checker) checkLink(l Link) (Issue, bool) {
	issue := Issue{Text: l.Text, URL: l.URL, Line: l.Line}

	switch {
	case l.URL == "", strings.HasPrefix(l.URL, "#"), strings.HasPrefix(l.URL, "mailto:"):
		return Issue{}, false

	case strings.Contains(l.URL, pipeline.RepoBasePlaceholder):
		rel := localPath(strings.Replace(l.URL, pipeline.RepoBasePlaceholder, "", 1))
		if c.exists(rel) {
			return Issue{}, false
		}
		issue.Problem, issue.Path = ProblemRepoFile, rel

	case isExternal(l.URL):
		issue.Problem, issue.Severity = ProblemExternal, SeverityWarning

	default:
		rel := localPath(l.URL)
		if c.exists(rel) {
			return Issue{}, false
		}
		issue.Problem, issue.Path = ProblemLocalFile, rel
	}
	return issue, true
}

// exists checks rel through the cache.
func (c *Checker) exists(rel string) bool {
	if ok, hit := c.cache.Get(rel); hit {
		return ok
	}
	ok := rel != "" && !strings.HasPrefix(rel, "../") && rel != ".." && c.fs.Exists(rel)
	c.cache.Add(rel, ok)
	return ok
}

// localPath turns a link destination into a clean root-relative path:
// fragment and query dropped, percent-escapes decoded, leading "/" removed.
func localPath(dest string) string {
	dest, _, _ = strings.Cut(dest, "#")
	dest, _, _ = strings.Cut(dest, "?")
	if unescaped, err := url.PathUnescape(dest); err == nil {
		dest = unescaped
	}
	dest = strings.TrimLeft(dest, "/")
	if dest == "" {
		return ""
	}
	return path.Clean(dest)
}

// isExternal reports whether dest carries a URL scheme.
func isExternal(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil {
		return strings.HasPrefix(dest, "http")
	}
	// A single letter is a Windows drive, not a scheme.
	return len(u.Scheme) > 1 || strings.HasPrefix(dest, "//")
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.CodeSpan:
			for g := t.FirstChild(); g != nil; g = g.NextSibling() {
				if txt, ok := g.(*ast.Text); ok {
					buf.Write(txt.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// lineOf returns the 1-based line of the first text below n, or of its
// enclosing block, or 0.
func lineOf(n ast.Node, source []byte) int {
	offset := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			offset = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if offset < 0 {
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p.Type() == ast.TypeBlock && p.Lines().Len() > 0 {
				offset = p.Lines().At(0).Start
				break
			}
		}
	}
	if offset < 0 {
		return 0
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}
