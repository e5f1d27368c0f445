package md2book

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alnah/go-md2book/internal/pipeline"
)

// upperTransformer upper-cases text and fails on files named "bad.md".
type upperTransformer struct {
	calls atomic.Int32
}

var errBadFile = errors.New("bad file")

func (u *upperTransformer) Transform(ctx context.Context, f pipeline.SourceFile) (pipeline.Result, error) {
	u.calls.Add(1)
	if f.Name == "bad.md" {
		return pipeline.Result{}, errBadFile
	}
	f.Text = strings.ToUpper(f.Text)
	return pipeline.Result{File: f}, nil
}

func sourceFiles(names ...string) []pipeline.SourceFile {
	files := make([]pipeline.SourceFile, len(names))
	for i, n := range names {
		files[i] = pipeline.SourceFile{Name: n, Text: n}
	}
	return files
}

func TestTransformAll_Order(t *testing.T) {
	t.Parallel()

	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, workers := range []int{1, 3, 16} {
		results, err := transformAll(context.Background(), &upperTransformer{}, sourceFiles(names...), workers)
		if err != nil {
			t.Fatalf("transformAll(workers=%d) error = %v", workers, err)
		}
		for i, r := range results {
			if want := strings.ToUpper(names[i]); r.File.Text != want {
				t.Errorf("workers=%d: results[%d] = %q, want %q", workers, i, r.File.Text, want)
			}
		}
	}
}

func TestTransformAll_FailFast(t *testing.T) {
	t.Parallel()

	u := &upperTransformer{}
	files := sourceFiles("bad.md", "b", "c", "d", "e", "f", "g", "h")

	results, err := transformAll(context.Background(), u, files, 1)
	if !errors.Is(err, errBadFile) {
		t.Fatalf("transformAll() error = %v, want errBadFile", err)
	}
	if results != nil {
		t.Error("transformAll() returned partial results")
	}
	if n := u.calls.Load(); n != 1 {
		t.Errorf("Transform calls = %d, want 1 after the failure", n)
	}
}

func TestTransformAll_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := &upperTransformer{}
	_, err := transformAll(ctx, u, sourceFiles("a", "b"), 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("transformAll() error = %v, want context.Canceled", err)
	}
	if n := u.calls.Load(); n != 0 {
		t.Errorf("Transform calls = %d, want 0", n)
	}
}

func TestTransformAll_Empty(t *testing.T) {
	t.Parallel()

	results, err := transformAll(context.Background(), &upperTransformer{}, nil, 4)
	if err != nil || results != nil {
		t.Errorf("transformAll(nil) = %v, %v", results, err)
	}
}

func TestResolveWorkers(t *testing.T) {
	t.Parallel()

	if got := ResolveWorkers(3); got != 3 {
		t.Errorf("ResolveWorkers(3) = %d", got)
	}

	got := ResolveWorkers(0)
	want := min(max(runtime.GOMAXPROCS(0), MinWorkers), MaxWorkers)
	if got != want {
		t.Errorf("ResolveWorkers(0) = %d, want %d", got, want)
	}
}
