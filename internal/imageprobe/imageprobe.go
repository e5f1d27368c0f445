// Package imageprobe checks chapter and appendix illustrations before they
// are injected: the file must exist, and raster files must carry a readable
// image header.
package imageprobe

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrUnreadable indicates a raster image whose header could not be decoded.
var ErrUnreadable = errors.New("unreadable image")

// Info describes a probed illustration.
type Info struct {
	Format string // decoder name, "svg" for vector files
	Width  int    // pixels, 0 for vector files
	Height int
}

// vectorExtensions are accepted on existence alone.
var vectorExtensions = map[string]bool{".svg": true, ".pdf": true}

// Probe decodes the image header from r.
func Probe(r io.Reader) (Info, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Source is the book filesystem illustrations are read from.
// fileutil.FS satisfies it.
type Source interface {
	Exists(name string) bool
	ReadFile(name string) (string, error)
}

// ProbeSource probes the root-relative file rel of src. Vector files are
// not decoded.
func ProbeSource(src Source, rel string) (Info, error) {
	if !src.Exists(rel) {
		return Info{}, fmt.Errorf("%s: %w", rel, fs.ErrNotExist)
	}
	ext := strings.ToLower(path.Ext(rel))
	if vectorExtensions[ext] {
		return Info{Format: strings.TrimPrefix(ext, ".")}, nil
	}

	data, err := src.ReadFile(rel)
	if err != nil {
		return Info{}, err
	}
	info, err := Probe(strings.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", rel, err)
	}
	return info, nil
}

// Prober answers illustration lookups relative to a book root. Results are
// memoized; a Prober is safe for concurrent use.
type Prober struct {
	src    Source
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]bool
}

// NewProber returns a Prober reading from src. A nil logger discards.
func NewProber(src Source, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Prober{src: src, logger: logger, cache: make(map[string]bool)}
}

// Exists reports whether the illustration at the root-relative path exists.
// A present file with an unreadable header still counts, with a warning, so
// the renderer reports the real failure.
func (p *Prober) Exists(rel string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if found, ok := p.cache[rel]; ok {
		return found
	}

	found := p.probe(rel)
	p.cache[rel] = found
	return found
}

func (p *Prober) probe(rel string) bool {
	info, err := ProbeSource(p.src, rel)
	switch {
	case err == nil:
		p.logger.Debug("illustration found", "path", rel, "format", info.Format, "width", info.Width, "height", info.Height)
		return true
	case errors.Is(err, fs.ErrNotExist):
		return false
	default:
		// Present but undecodable: the renderer reports the real failure.
		p.logger.Warn("illustration header unreadable", "path", rel, "error", err)
		return true
	}
}
