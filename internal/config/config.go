package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-md2book/internal/dateutil"
	"github.com/alnah/go-md2book/internal/fileutil"
	"github.com/alnah/go-md2book/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidTarget   = errors.New("invalid target")
	ErrUnknownTarget   = errors.New("unknown target")
)

// Field length limits.
const (
	MaxTitleLength    = 200  // Book title and subtitle
	MaxNameLength     = 100  // Author, publisher
	MaxVersionLength  = 50   // "1.0.0"
	MaxISBNLength     = 17   // ISBN-13 with hyphens
	MaxSlugLength     = 100  // Output file base name
	MaxURLLength      = 2048 // Browser limit
	MaxLanguageLength = 35   // BCP 47
	MaxDPI            = 2400
)

// Output formats, as Pandoc names them.
const (
	FormatPDF  = "pdf"
	FormatHTML = "html5"
	FormatEPUB = "epub3"
)

// Render backends.
const (
	BackendPandoc  = "pandoc"
	BackendBuiltin = "builtin"
)

// Image path styles.
const (
	ImageStyleEmbedded = "embedded"
	ImageStyleRelative = "relative"
)

// PDF types.
const (
	PDFInteractive = "interactive"
	PDFX1A         = "x1a"
)

// LocalRepoBase as a repository URL stands for "file://" plus the absolute
// book root, for builds that link to the local checkout.
const LocalRepoBase = "local"

// EnvRepoBaseURL overrides Repository.BaseURL when set.
const EnvRepoBaseURL = "REPO_BASE_URL"

// TargetAll builds AllTargets in sequence.
const TargetAll = "all"

// AllTargets is the build sequence of TargetAll.
var AllTargets = []string{"web", "pdf", "development", "epub"}

// Config holds all configuration for a book build.
type Config struct {
	Book       BookConfig              `yaml:"book"`
	Source     SourceConfig            `yaml:"source"`
	Repository RepositoryConfig        `yaml:"repository"`
	Targets    map[string]TargetConfig `yaml:"targets"`
	Pandoc     PandocConfig            `yaml:"pandoc"`
	Citations  CitationsConfig         `yaml:"citations"`
	Fonts      FontsConfig             `yaml:"fonts"`
	Emoji      EmojiConfig             `yaml:"emoji"`
	Assets     AssetsConfig            `yaml:"assets"`
	Build      BuildConfig             `yaml:"build"`
}

// BookConfig holds the book metadata.
type BookConfig struct {
	Title     string `yaml:"title"`
	Subtitle  string `yaml:"subtitle"`
	Author    string `yaml:"author"`
	Version   string `yaml:"version"`
	ISBN      string `yaml:"isbn"`
	Publisher string `yaml:"publisher"`
	Language  string `yaml:"language"`
	Date      string `yaml:"date"` // literal, or "today[:layout]"
	Slug      string `yaml:"slug"` // output file base name
}

// SourceConfig locates the book sources, relative to the book root.
type SourceConfig struct {
	References   string   `yaml:"references"`   // reference list file name
	ImageFormats []string `yaml:"imageFormats"` // illustration extensions, in order
}

// RepositoryConfig defines the {REPO_BASE} substitution.
type RepositoryConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// TargetConfig is the YAML form of a render target.
type TargetConfig struct {
	Directory     string `yaml:"directory"`
	Format        string `yaml:"format"`
	RepoBaseURL   string `yaml:"repoBaseUrl"` // empty = repository.baseUrl
	Engine        string `yaml:"engine"`
	Backend       string `yaml:"backend"` // "pandoc" (default) or "builtin"
	DPI           int    `yaml:"dpi"`
	PDFType       string `yaml:"pdfType"`
	ImageStyle    string `yaml:"imageStyle"` // empty = by format
	Standalone    bool   `yaml:"standalone"`
	CitationStyle string `yaml:"citationStyle"` // empty = citations.defaultStyle
}

// PandocConfig holds paths handed to Pandoc, relative to the book root.
// Missing files are skipped.
type PandocConfig struct {
	Binary          string   `yaml:"binary"`
	DefaultsFile    string   `yaml:"defaultsFile"`
	DigitalTemplate string   `yaml:"digitalTemplate"`
	PrintTemplate   string   `yaml:"printTemplate"`
	Filters         []string `yaml:"filters"`
	CSS             string   `yaml:"css"`
	TexPaths        []string `yaml:"texPaths"` // appended to PATH for PDF builds
}

// CitationsConfig drives --citeproc.
type CitationsConfig struct {
	Enabled      bool              `yaml:"enabled"`
	Bibliography string            `yaml:"bibliography"`
	DefaultStyle string            `yaml:"defaultStyle"`
	Styles       map[string]string `yaml:"styles"` // style name -> CSL file
}

// FontsConfig lists font files checked before a build. Missing fonts only warn.
type FontsConfig struct {
	Dir      string            `yaml:"dir"`
	Files    []string          `yaml:"files"`   // base names without extension
	Formats  map[string]string `yaml:"formats"` // target -> extension
	Fallback string            `yaml:"fallback"`
}

// EmojiConfig extends or replaces the approved emoji set.
type EmojiConfig struct {
	Allow           []string `yaml:"allow"`
	ReplaceDefaults bool     `yaml:"replaceDefaults"`
}

// AssetsConfig defines asset loading options for the built-in backend.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
	Style    string `yaml:"style"`
	Template string `yaml:"template"`
}

// BuildConfig controls the build itself.
type BuildConfig struct {
	Clean   bool `yaml:"clean"`
	Workers int  `yaml:"workers"` // 0 = GOMAXPROCS
}

// Target is a resolved, immutable render target.
type Target struct {
	Name          string
	Directory     string
	Format        string
	RepoBaseURL   string
	Engine        string
	Backend       string
	DPI           int
	PDFType       string
	ImageStyle    string
	Standalone    bool
	CitationStyle string
}

// IsPDF reports whether the target produces a PDF.
func (t Target) IsPDF() bool {
	return t.Format == FormatPDF
}

// Extension returns the output file extension, with the dot.
func (t Target) Extension() string {
	switch t.Format {
	case FormatPDF:
		return ".pdf"
	case FormatEPUB:
		return ".epub"
	default:
		return ".html"
	}
}

// DefaultConfig returns the configuration of a book with no book.yaml.
func DefaultConfig() *Config {
	return &Config{
		Book: BookConfig{
			Title:    "Untitled Book",
			Language: "en",
			Slug:     "book",
		},
		Source: SourceConfig{
			References:   "references.md",
			ImageFormats: []string{"png"},
		},
		Targets: DefaultTargets(),
		Pandoc: PandocConfig{
			Binary:          "pandoc",
			DefaultsFile:    "tools/config/pandoc-defaults.yaml",
			DigitalTemplate: "tools/templates/book-digital.latex",
			PrintTemplate:   "tools/templates/book-print.latex",
			Filters: []string{
				"tools/templates/filters/callout-filter.lua",
				"tools/templates/filters/link-filter.lua",
			},
			CSS: "tools/styles/book.css",
			TexPaths: []string{
				"/usr/local/texlive/2025/bin/universal-darwin",
				"/usr/local/texlive/2024/bin/universal-darwin",
				"/usr/local/texlive/2023/bin/universal-darwin",
			},
		},
		Citations: CitationsConfig{
			Enabled:      true,
			Bibliography: "references.json",
			DefaultStyle: "apa",
			Styles: map[string]string{
				"apa":     "tools/styles/citations/apa.csl",
				"chicago": "tools/styles/citations/chicago-author-date.csl",
				"ieee":    "tools/styles/citations/ieee.csl",
			},
		},
		Fonts: FontsConfig{
			Dir: "tools/fonts",
			Formats: map[string]string{
				"pdf":         "ttf",
				"web":         "woff2",
				"development": "woff2",
			},
			Fallback: "ttf",
		},
		Build: BuildConfig{Clean: true},
	}
}

// DefaultTargets returns the built-in render targets.
func DefaultTargets() map[string]TargetConfig {
	pdf := TargetConfig{
		Directory:  "build/digital",
		Format:     FormatPDF,
		Engine:     "xelatex",
		DPI:        300,
		PDFType:    PDFInteractive,
		Standalone: true,
	}
	printed := pdf
	printed.Directory = "build/print"
	printed.PDFType = PDFX1A

	return map[string]TargetConfig{
		"digital": pdf,
		"pdf":     pdf,
		"print":   printed,
		"web": {
			Directory:  "build/web",
			Format:     FormatHTML,
			Standalone: true,
		},
		"development": {
			Directory:   "build/development",
			Format:      FormatHTML,
			RepoBaseURL: LocalRepoBase,
			Standalone:  true,
		},
		"epub": {
			Directory:  "build/epub",
			Format:     FormatEPUB,
			Standalone: true,
		},
	}
}

// TargetNames returns the configured target names, sorted.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Target resolves a named target, filling defaults from the rest of the
// configuration.
func (c *Config) Target(name string) (Target, error) {
	tc, ok := c.Targets[name]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTarget, name, strings.Join(c.TargetNames(), ", "))
	}

	t := Target{
		Name:          name,
		Directory:     tc.Directory,
		Format:        tc.Format,
		RepoBaseURL:   tc.RepoBaseURL,
		Engine:        tc.Engine,
		Backend:       tc.Backend,
		DPI:           tc.DPI,
		PDFType:       tc.PDFType,
		ImageStyle:    tc.ImageStyle,
		Standalone:    tc.Standalone,
		CitationStyle: tc.CitationStyle,
	}
	if t.RepoBaseURL == "" {
		t.RepoBaseURL = c.Repository.BaseURL
	}
	if t.Backend == "" {
		t.Backend = BackendPandoc
	}
	if t.ImageStyle == "" {
		// Pandoc renders PDF and EPUB from the book root; HTML sits in its own folder.
		t.ImageStyle = ImageStyleRelative
		if t.Format != FormatHTML {
			t.ImageStyle = ImageStyleEmbedded
		}
	}
	if t.CitationStyle == "" {
		t.CitationStyle = c.Citations.DefaultStyle
	}
	return t, nil
}

// ApplyEnv applies environment overrides. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvRepoBaseURL); v != "" {
		c.Repository.BaseURL = v
	}
}

// Validate checks field lengths and target consistency.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"book.title", c.Book.Title, MaxTitleLength},
		{"book.subtitle", c.Book.Subtitle, MaxTitleLength},
		{"book.author", c.Book.Author, MaxNameLength},
		{"book.publisher", c.Book.Publisher, MaxNameLength},
		{"book.version", c.Book.Version, MaxVersionLength},
		{"book.isbn", c.Book.ISBN, MaxISBNLength},
		{"book.language", c.Book.Language, MaxLanguageLength},
		{"book.date", c.Book.Date, MaxTitleLength},
		{"book.slug", c.Book.Slug, MaxSlugLength},
		{"repository.baseUrl", c.Repository.BaseURL, MaxURLLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Book.Slug != "" && fileutil.IsFilePath(c.Book.Slug) {
		return fmt.Errorf("book.slug: must be a file name, got %q", c.Book.Slug)
	}

	if _, err := dateutil.Resolve(c.Book.Date, time.Now()); err != nil {
		return fmt.Errorf("book.date: %w", err)
	}

	if len(c.Targets) == 0 {
		return fmt.Errorf("%w: no targets configured", ErrInvalidTarget)
	}
	if _, ok := c.Targets[TargetAll]; ok {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidTarget, TargetAll)
	}
	for _, name := range c.TargetNames() {
		if err := c.validateTarget(name, c.Targets[name]); err != nil {
			return err
		}
	}

	for i, ext := range c.Source.ImageFormats {
		if ext == "" || strings.ContainsAny(ext, "./\\") {
			return fmt.Errorf("source.imageFormats[%d]: invalid extension %q", i, ext)
		}
	}

	for i, char := range c.Emoji.Allow {
		if char == "" {
			return fmt.Errorf("emoji.allow[%d]: empty entry", i)
		}
	}

	if c.Build.Workers < 0 {
		return fmt.Errorf("build.workers: must be >= 0, got %d", c.Build.Workers)
	}

	return nil
}

// validateTarget checks one target's enumerated fields.
func (c *Config) validateTarget(name string, t TargetConfig) error {
	prefix := "targets." + name
	if err := CheckTargetDirectory(t.Directory); err != nil {
		return fmt.Errorf("%w: %s.directory: %v", ErrInvalidTarget, prefix, err)
	}
	if err := validateFieldLength(prefix+".repoBaseUrl", t.RepoBaseURL, MaxURLLength); err != nil {
		return err
	}

	switch t.Format {
	case FormatPDF, FormatHTML, FormatEPUB:
	default:
		return fmt.Errorf("%w: %s.format %q (must be pdf, html5, or epub3)", ErrInvalidTarget, prefix, t.Format)
	}

	switch t.Backend {
	case "", BackendPandoc:
	case BackendBuiltin:
		if t.Format == FormatEPUB {
			return fmt.Errorf("%w: %s: the builtin backend cannot produce epub3", ErrInvalidTarget, prefix)
		}
	default:
		return fmt.Errorf("%w: %s.backend %q (must be pandoc or builtin)", ErrInvalidTarget, prefix, t.Backend)
	}

	switch t.ImageStyle {
	case "", ImageStyleEmbedded, ImageStyleRelative:
	default:
		return fmt.Errorf("%w: %s.imageStyle %q (must be embedded or relative)", ErrInvalidTarget, prefix, t.ImageStyle)
	}

	switch t.PDFType {
	case "", PDFInteractive, PDFX1A:
	default:
		return fmt.Errorf("%w: %s.pdfType %q (must be interactive or x1a)", ErrInvalidTarget, prefix, t.PDFType)
	}

	if t.DPI < 0 || t.DPI > MaxDPI {
		return fmt.Errorf("%w: %s.dpi must be between 0 and %d, got %d", ErrInvalidTarget, prefix, MaxDPI, t.DPI)
	}

	if t.CitationStyle != "" {
		if _, ok := c.Citations.Styles[t.CitationStyle]; !ok {
			return fmt.Errorf("%w: %s.citationStyle %q is not in citations.styles", ErrInvalidTarget, prefix, t.CitationStyle)
		}
	}
	return nil
}

// CheckTargetDirectory rejects target directories that are not strictly
// inside the book root: empty, absolute, "." or escaping with "..".
func CheckTargetDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("is required")
	}
	slash := filepath.ToSlash(dir)
	if filepath.IsAbs(dir) || path.IsAbs(slash) || filepath.VolumeName(dir) != "" {
		return fmt.Errorf("%q must be relative to the book root", dir)
	}
	clean := path.Clean(slash)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%q must be a subdirectory of the book root", dir)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// The file is decoded over DefaultConfig, so omitted sections keep their
// defaults. Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-md2book/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-md2book", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// SearchedPaths lists where a config name is looked up, for hints.
func SearchedPaths(name string) []string {
	paths := []string{name + ".yaml", name + ".yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "go-md2book", name+".yaml"))
	}
	return paths
}
