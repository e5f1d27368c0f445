package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader serves assets from a book directory.
type FilesystemLoader struct {
	base string // absolute, symlinks resolved
}

var _ AssetLoader = (*FilesystemLoader)(nil)

// NewFilesystemLoader checks that base is a readable directory.
func NewFilesystemLoader(base string) (*FilesystemLoader, error) {
	if base == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBasePath, abs, err)
	}
	return &FilesystemLoader{base: abs}, nil
}

// Load reads {base}/{kind dir}/{name}{kind ext}.
func (f *FilesystemLoader) Load(kind Kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	p, err := f.within(filepath.Join(f.base, filepath.FromSlash(kind.file(name))))
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p) // #nosec G304 -- confined to base above
	switch {
	case os.IsNotExist(err):
		return "", fmt.Errorf("%w: %q in %s", kind.NotFound, name, f.base)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

// within resolves symlinks of p and fails when the target leaves base.
// A missing file resolves to itself.
func (f *FilesystemLoader) within(p string) (string, error) {
	if real, err := filepath.EvalSymlinks(p); err == nil {
		p = real
	}
	if !strings.HasPrefix(p, f.base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, p)
	}
	return p, nil
}
