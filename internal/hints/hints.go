// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-md2book/internal/fileutil"
)

// IsInContainer reports whether the process runs in a Docker container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for a browser that failed to launch.
// The sandbox is disabled when CI=true or ROD_BROWSER_BIN is set.
func ForBrowserConnect() string {
	var hints []string
	bin := os.Getenv("ROD_BROWSER_BIN")
	if IsInContainer() && os.Getenv("CI") != "true" && bin == "" {
		hints = append(hints, "set CI=true to run Chrome without its sandbox in containers")
	}
	if bin == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to a local Chrome or Chromium")
	}
	return formatHints(hints)
}

// ForTimeout returns a hint about raising the build timeout.
func ForTimeout() string {
	return format("for large books, raise --timeout")
}

// ForConfigNotFound suggests --config, or the user config path among
// searchedPaths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/book.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-md2book") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnknownTarget returns hints listing the configured targets.
func ForUnknownTarget(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", ") + ", all")
}

// ForPandocMissing returns hints for a missing or unusable Pandoc.
func ForPandocMissing() string {
	return format("install Pandoc 3.0+ (https://pandoc.org/installing.html) or set pandoc.binary in book.yaml")
}

// ForEngineMissing returns hints for a missing PDF engine.
func ForEngineMissing(engine string) string {
	return formatHints([]string{
		"install TeX Live or MacTeX for " + engine,
		"or add its bin directory to pandoc.texPaths in book.yaml",
	})
}

// ForFontMissing returns hints for font files missing from the font directory.
func ForFontMissing(dir, ext string) string {
	return format("place " + strings.ToUpper(ext) + " font files in " + dir)
}

// ForEmojiViolations returns hints for a failed emoji gate.
func ForEmojiViolations() string {
	return formatHints([]string{
		"run md2book strip to remove unapproved emoji",
		"or add them to emoji.allow in book.yaml",
	})
}

// ForNoSources returns hints when no book sources were found.
func ForNoSources(root string) string {
	return format("expected foreword*.md, ch<N>.md or app[A-D].md in " + root + "; use --root")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
