package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/fileutil"
	"github.com/alnah/go-md2book/internal/hints"
)

// DefaultChromeTimeout bounds page load when the context has no deadline.
const DefaultChromeTimeout = 2 * time.Minute

// EnvBrowserBin names a pre-installed Chrome binary.
const EnvBrowserBin = "ROD_BROWSER_BIN"

// PDF page dimensions in inches (6x9 trade paperback).
const (
	paperWidthInches  = 6
	paperHeightInches = 9
	marginInches      = 0.75
)

// pdfRenderer turns an HTML file into PDF bytes.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ Backend     = (*ChromeBackend)(nil)
	_ pdfRenderer = (*rodRenderer)(nil)
)

// ChromeBackend prints the built-in HTML page to PDF with headless Chrome.
type ChromeBackend struct {
	page     *HTMLBackend
	renderer pdfRenderer
	getenv   func(string) string
}

// NewChromeBackend creates a ChromeBackend. Rod downloads Chromium on first
// use when no browser is installed.
func NewChromeBackend(timeout time.Duration) *ChromeBackend {
	return &ChromeBackend{
		page:     NewHTMLBackend(),
		renderer: newRodRenderer(timeout),
		getenv:   os.Getenv,
	}
}

func (b *ChromeBackend) Name() string { return config.BackendBuiltin + "-chrome" }

// Check verifies the page assets and, when EnvBrowserBin is set, that the
// named browser exists.
func (b *ChromeBackend) Check(ctx context.Context, job *Job) error {
	if err := b.page.Check(ctx, job); err != nil {
		return err
	}
	if bin := b.getenv(EnvBrowserBin); bin != "" && !fileutil.FileExists(bin) {
		return fmt.Errorf("%w: %s=%s not found%s", ErrMissingPrerequisite, EnvBrowserBin, bin, hints.ForBrowserConnect())
	}
	return nil
}

// Render prints the page and writes job.Output.
func (b *ChromeBackend) Render(ctx context.Context, job *Job) (string, error) {
	defer func() { _ = b.renderer.Close() }()

	page, err := b.page.Page(ctx, job)
	if err != nil {
		return "", err
	}
	page, err = AbsolutizePaths(page, job.Root)
	if err != nil {
		return "", fmt.Errorf("%w: rewriting paths: %v", ErrRender, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer cleanup()

	pdf, err := b.renderer.RenderFromFile(ctx, tmpPath)
	if err != nil {
		return "", err
	}
	if err := writeOutput(job, pdf); err != nil {
		return "", err
	}
	return job.Output, nil
}

// BrowserPath returns the browser rod would launch, and whether one was
// found. A missing browser is downloaded on first render.
func BrowserPath(getenv func(string) string) (string, bool) {
	if bin := getenv(EnvBrowserBin); bin != "" {
		return bin, fileutil.FileExists(bin)
	}
	return launcher.LookPath()
}

// rodRenderer implements pdfRenderer using go-rod.
type rodRenderer struct {
	browser *rod.Browser
	timeout time.Duration
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()
	if bin := os.Getenv(EnvBrowserBin); bin != "" {
		l = l.Bin(bin)
	}
	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv(EnvBrowserBin) != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: launching browser: %v%s", ErrMissingPrerequisite, err, hints.ForBrowserConnect())
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		return fmt.Errorf("%w: connecting to browser: %v%s", ErrMissingPrerequisite, err, hints.ForBrowserConnect())
	}
	return nil
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	if r.browser != nil {
		err := r.browser.Close()
		r.browser = nil
		return err
	}
	return nil
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: creating page: %v", ErrRender, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: loading page: %v%s", ErrRender, err, hints.ForTimeout())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: printing PDF: %v", ErrRender, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrRender, err)
	}
	return pdf, nil
}

// printOptions returns the book page geometry with page numbers.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(paperWidthInches),
		PaperHeight:         floatPtr(paperHeightInches),
		MarginTop:           floatPtr(marginInches),
		MarginBottom:        floatPtr(marginInches),
		MarginLeft:          floatPtr(marginInches),
		MarginRight:         floatPtr(marginInches),
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      "<span></span>",
		FooterTemplate:      `<div style="font-size: 9px; width: 100%; text-align: center; color: #777;"><span class="pageNumber"></span></div>`,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
