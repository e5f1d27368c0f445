package pipeline

import (
	"fmt"
	"path"
	"strings"
)

// ImageStyle selects how injected illustration paths are written.
type ImageStyle int

const (
	// ImageEmbedded writes paths relative to the book root, for renderers
	// that run from the root and embed everything in one artifact (PDF, EPUB).
	ImageEmbedded ImageStyle = iota
	// ImageRelative writes paths relative to the output folder, for HTML
	// placed next to a sibling assets folder.
	ImageRelative
)

// String returns the configuration name of the style.
func (s ImageStyle) String() string {
	if s == ImageRelative {
		return "relative"
	}
	return "embedded"
}

// Illustration locations, relative to the book root (source) and to the
// build directory (copied assets).
const (
	ImagesDir            = "images"
	builtImagesPrefix    = "build/assets/images"
	relativeImagesPrefix = "../assets/images"
)

// IllustrationPath returns the source path of the role's illustration,
// relative to the book root, with the given extension (without dot).
// Returns "" for roles that carry no illustration.
func IllustrationPath(role Role, ext string) string {
	rel := illustrationName(role, ext)
	if rel == "" {
		return ""
	}
	return path.Join(ImagesDir, rel)
}

// illustrationName returns the path below the images directory.
func illustrationName(role Role, ext string) string {
	switch role.Kind {
	case RoleChapter:
		if role.digits != "" {
			return fmt.Sprintf("chapters/ch%s.%s", role.digits, ext)
		}
		return fmt.Sprintf("chapters/ch%d.%s", role.Chapter, ext)
	case RoleAppendix:
		return fmt.Sprintf("appendices/app%c.%s", role.Letter, ext)
	default:
		return ""
	}
}

// imageReference returns the path written into the markdown for style.
func imageReference(name string, style ImageStyle) string {
	if style == ImageRelative {
		return relativeImagesPrefix + "/" + name
	}
	return builtImagesPrefix + "/" + name
}

// ImageLookup reports whether an illustration exists at a source path
// relative to the book root.
type ImageLookup func(sourcePath string) bool

// InjectImage inserts the role's illustration right below its title when
// exists reports the image present. extensions are tried in order; the
// first hit wins. The reference carries no alt text so no caption renders.
func InjectImage(role Role, text string, exists ImageLookup, style ImageStyle, extensions ...string) (string, []Note) {
	if role.Kind != RoleChapter && role.Kind != RoleAppendix {
		return text, nil
	}
	if len(extensions) == 0 {
		extensions = []string{"png"}
	}

	name := ""
	for _, ext := range extensions {
		if exists != nil && exists(IllustrationPath(role, ext)) {
			name = illustrationName(role, ext)
			break
		}
	}
	if name == "" {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	title := firstTitleIndex(lines)
	if title == -1 {
		return text, []Note{{Pass: PassImages, Message: fmt.Sprintf("no level-1 heading for %s illustration", role)}}
	}

	markup := "\n![](" + imageReference(name, style) + ")\n"
	lines = insertLine(lines, title+1, markup)
	return strings.Join(lines, "\n"), nil
}
