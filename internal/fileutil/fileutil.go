// Package fileutil holds the book filesystem and the path helpers shared by
// the config loader and the render backends.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidExtension is returned for temp file extensions that are empty or
// contain a separator or NUL.
var ErrInvalidExtension = errors.New("invalid temp file extension")

// WriteTempFile writes content to a new md2book-*.<ext> file in the system
// temp directory. cleanup removes the file.
func WriteTempFile(content, ext string) (path string, cleanup func(), err error) {
	if ext == "" || strings.ContainsAny(ext, "/\\\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}

	f, err := os.CreateTemp("", "md2book-*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	_, werr := f.WriteString(content)
	if err := errors.Join(werr, f.Close()); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return path, cleanup, nil
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath reports whether s is a path rather than a config name.
// Anything with a separator is a path: "book" is a name, "./book.yaml"
// and "C:\books\book.yaml" are paths.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
