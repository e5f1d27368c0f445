package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-md2book/internal/render"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fakes and fixtures
// ---------------------------------------------------------------------------

// fakeBackend writes a placeholder artifact and records each job.
type fakeBackend struct {
	mu   sync.Mutex
	jobs []*render.Job
	err  error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Check(context.Context, *render.Job) error { return nil }

func (f *fakeBackend) Render(_ context.Context, job *render.Job) (string, error) {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	out := filepath.Join(job.Root, filepath.FromSlash(job.Output))
	if err := os.WriteFile(out, []byte("artifact"), 0o644); err != nil {
		return "", err
	}
	return job.Output, nil
}

func (f *fakeBackend) outputs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.jobs))
	for i, j := range f.jobs {
		out[i] = j.Output
	}
	return out
}

// fakeRunner answers "<name> --version" from a table. Unknown names fail.
type fakeRunner struct {
	versions map[string]string
}

func (r *fakeRunner) Run(_ context.Context, c render.Command) (string, string, error) {
	v, ok := r.versions[c.Name]
	if !ok {
		return "", c.Name + ": not found", errors.New("exec: not found")
	}
	return v + "\nmore\n", "", nil
}

// testEnv is an Environment with captured output and a fixed clock.
type testEnv struct {
	*Environment
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	backend *fakeBackend
}

func newTestEnv(vars map[string]string) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	backend := &fakeBackend{}
	now := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	return &testEnv{
		Environment: &Environment{
			Now:     func() time.Time { return now },
			Stdout:  stdout,
			Stderr:  stderr,
			Getenv:  func(k string) string { return vars[k] },
			Backend: backend,
			Runner: &fakeRunner{versions: map[string]string{
				"pandoc":  "pandoc 3.1.9",
				"xelatex": "XeTeX 3.141592653-2.6-0.999995",
			}},
		},
		stdout:  stdout,
		stderr:  stderr,
		backend: backend,
	}
}

// setupBook creates a book root with the given files.
func setupBook(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return root
}

// run calls runMain with a background context.
func (e *testEnv) run(args ...string) int {
	return runMain(context.Background(), args, e.Environment)
}

// assertContains fails when s does not contain every want.
func assertContains(t *testing.T, label, s string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(s, w) {
			t.Errorf("%s should contain %q, got:\n%s", label, w, s)
		}
	}
}
