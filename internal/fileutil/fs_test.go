package fileutil_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alnah/go-md2book/internal/fileutil"
)

// newBook creates a book root with the given files (slash names).
func newBook(t *testing.T, files map[string]string) *fileutil.OSFS {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	fsys, err := fileutil.NewOSFS(root)
	if err != nil {
		t.Fatalf("NewOSFS() error = %v", err)
	}
	return fsys
}

// ---------------------------------------------------------------------------
// TestOSFS - Book-rooted filesystem
// ---------------------------------------------------------------------------

func TestNewOSFS_Errors(t *testing.T) {
	t.Parallel()

	if _, err := fileutil.NewOSFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("NewOSFS(missing) expected error")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fileutil.NewOSFS(file); err == nil {
		t.Error("NewOSFS(file) expected error")
	}
}

func TestOSFS_ReadWrite(t *testing.T) {
	t.Parallel()

	fsys := newBook(t, map[string]string{"ch1.md": "# One"})

	got, err := fsys.ReadFile("ch1.md")
	if err != nil || got != "# One" {
		t.Fatalf("ReadFile() = %q, %v", got, err)
	}

	if err := fsys.WriteFile("build/intermediate/ch1.md", "rewritten"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err = fsys.ReadFile("build/intermediate/ch1.md")
	if err != nil || got != "rewritten" {
		t.Errorf("ReadFile() after write = %q, %v", got, err)
	}

	if err := fsys.WriteFile("build/intermediate/ch1.md", "again"); err != nil {
		t.Fatalf("WriteFile() overwrite error = %v", err)
	}
	entries, err := os.ReadDir(fsys.Abs("build/intermediate"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}

	if _, err := fsys.ReadFile("missing.md"); err == nil {
		t.Error("ReadFile(missing) expected error")
	}
}

func TestOSFS_Glob(t *testing.T) {
	t.Parallel()

	fsys := newBook(t, map[string]string{
		"ch2.md":          "",
		"ch10.md":         "",
		"ch1.md":          "",
		"notes.md":        "",
		"appA.md":         "",
		"foreword-faq.md": "",
	})

	got, err := fsys.Glob("ch*.md")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	want := []string{"ch1.md", "ch10.md", "ch2.md"}
	if !slices.Equal(got, want) {
		t.Errorf("Glob() = %v, want %v", got, want)
	}

	if _, err := fsys.Glob("[bad"); err == nil {
		t.Error("Glob(malformed) expected error")
	}
}

func TestOSFS_ExistsMkdirRemove(t *testing.T) {
	t.Parallel()

	fsys := newBook(t, nil)

	if fsys.Exists("build") {
		t.Fatal("Exists(build) = true before MkdirAll")
	}
	if err := fsys.MkdirAll("build/assets"); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if !fsys.Exists("build/assets") {
		t.Error("Exists(build/assets) = false after MkdirAll")
	}
	if err := fsys.RemoveAll("build"); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if fsys.Exists("build") {
		t.Error("Exists(build) = true after RemoveAll")
	}
	if err := fsys.RemoveAll("build"); err != nil {
		t.Errorf("RemoveAll(missing) error = %v", err)
	}
}

func TestOSFS_CopyDir(t *testing.T) {
	t.Parallel()

	fsys := newBook(t, map[string]string{
		"images/chapters/ch1.png":    "png-1",
		"images/appendices/appA.png": "png-a",
	})

	if err := fsys.CopyDir("images", "build/assets/images"); err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}
	for name, want := range map[string]string{
		"build/assets/images/chapters/ch1.png":    "png-1",
		"build/assets/images/appendices/appA.png": "png-a",
	} {
		got, err := fsys.ReadFile(name)
		if err != nil || got != want {
			t.Errorf("ReadFile(%s) = %q, %v, want %q", name, got, err, want)
		}
	}

	if err := fsys.CopyDir("missing", "build/other"); err != nil {
		t.Errorf("CopyDir(missing) error = %v", err)
	}
	if fsys.Exists("build/other") {
		t.Error("CopyDir(missing) should not create the destination")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.html")
	if err := fileutil.WriteFileAtomic(path, []byte("<html>"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "<html>" {
		t.Errorf("content = %q, %v", data, err)
	}

	if err := fileutil.WriteFileAtomic(filepath.Join(t.TempDir(), "no", "dir", "x"), nil, 0o600); err == nil {
		t.Error("WriteFileAtomic() into missing directory expected error")
	}
}
