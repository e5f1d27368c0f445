package fileutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Permissions for files and directories created by the build.
const (
	FilePerm = 0o644
	DirPerm  = 0o755
)

// FS is the filesystem seen by a book build. Names are slash-separated and
// relative to the book root.
type FS interface {
	ReadFile(name string) (string, error)
	WriteFile(name, content string) error
	Exists(name string) bool
	Glob(pattern string) ([]string, error)
	MkdirAll(name string) error
	RemoveAll(name string) error
	CopyDir(src, dst string) error
}

// OSFS implements FS on the local disk, rooted at a book directory.
type OSFS struct {
	root string
}

// Compile-time interface check.
var _ FS = (*OSFS)(nil)

// NewOSFS returns an OSFS rooted at root, which must be an existing directory.
func NewOSFS(root string) (*OSFS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving book root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("book root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("book root %s is not a directory", abs)
	}
	return &OSFS{root: abs}, nil
}

// Root returns the absolute book root.
func (f *OSFS) Root() string {
	return f.root
}

// Abs returns the absolute path of a root-relative name.
func (f *OSFS) Abs(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.root, filepath.FromSlash(name))
}

// ReadFile returns the content of name as a string.
func (f *OSFS) ReadFile(name string) (string, error) {
	data, err := os.ReadFile(f.Abs(name)) // #nosec G304 -- book-relative path
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}

// WriteFile atomically replaces name with content, creating parents.
func (f *OSFS) WriteFile(name, content string) error {
	path := f.Abs(name)
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}
	if err := WriteFileAtomic(path, []byte(content), FilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name exists, file or directory.
func (f *OSFS) Exists(name string) bool {
	_, err := os.Stat(f.Abs(name))
	return err == nil
}

// Glob returns the root-relative names matching pattern, sorted.
func (f *OSFS) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(f.Abs(pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(f.root, m)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		names = append(names, filepath.ToSlash(rel))
	}
	slices.Sort(names)
	return names, nil
}

// MkdirAll creates name and any missing parents.
func (f *OSFS) MkdirAll(name string) error {
	if err := os.MkdirAll(f.Abs(name), DirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	return nil
}

// RemoveAll removes name and everything below it. A missing name is not an error.
func (f *OSFS) RemoveAll(name string) error {
	if err := os.RemoveAll(f.Abs(name)); err != nil {
		return fmt.Errorf("removing %s: %w", name, err)
	}
	return nil
}

// CopyDir copies the tree at src into dst, overwriting existing files.
// A missing src is not an error.
func (f *OSFS) CopyDir(src, dst string) error {
	srcPath, dstPath := f.Abs(src), f.Abs(dst)
	if _, err := os.Stat(srcPath); os.IsNotExist(err) {
		return nil
	}
	err := filepath.WalkDir(srcPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcPath, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstPath, rel)
		if d.IsDir() {
			return os.MkdirAll(target, DirPerm)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
	if err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return nil
}

// copyFile copies a regular file through a temporary sibling.
func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- walked from the book tree
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, dst)
}

// WriteFileAtomic writes data to a temp file in the same directory and
// renames it over path, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
