package linkcheck

// Notes:
// - mapFS counts Exists calls so the LRU cache can be observed
// - Problems and severities mirror the link validation report of the CLI

import (
	"context"
	"errors"
	"testing"

	"github.com/alnah/go-md2book/internal/pipeline"
)

type mapFS struct {
	files map[string]bool
	calls int
}

func (m *mapFS) Exists(name string) bool {
	m.calls++
	return m.files[name]
}

func newChecker(t *testing.T, files ...string) (*Checker, *mapFS) {
	t.Helper()
	fs := &mapFS{files: map[string]bool{}}
	for _, f := range files {
		fs.files[f] = true
	}
	c, err := New(fs, 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, fs
}

// ---------------------------------------------------------------------------
// TestLinks - AST extraction
// ---------------------------------------------------------------------------

func TestLinks(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(t)
	src := "# Title\n\nSee [the *code*]({REPO_BASE}/src/main.go) and\n![diagram](images/d.png).\n\n" +
		"```\n[not a link](nowhere.md)\n```\n\n`[nor](this.md)`\n"

	got := c.Links(src)
	want := []Link{
		{Text: "the code", URL: "{REPO_BASE}/src/main.go", Line: 3},
		{Text: "diagram", URL: "images/d.png", Line: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("Links() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Links()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// TestCheck - Classification
// ---------------------------------------------------------------------------

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		wantProblem string
		wantPath    string
		wantSev     Severity
		wantIssue   bool
	}{
		{name: "anchor skipped", text: "[x](#intro)"},
		{name: "mailto skipped", text: "[x](mailto:a@example.com)"},
		{name: "repo file present", text: "[x]({REPO_BASE}/src/main.go)"},
		{name: "repo file with fragment", text: "[x]({REPO_BASE}/src/main.go#L10)"},
		{
			name:        "repo file missing",
			text:        "[x]({REPO_BASE}/src/gone.go)",
			wantProblem: ProblemRepoFile,
			wantPath:    "src/gone.go",
			wantIssue:   true,
		},
		{name: "local file present", text: "[x](ch2.md)"},
		{
			name:        "local file missing",
			text:        "[x](ch9.md)",
			wantProblem: ProblemLocalFile,
			wantPath:    "ch9.md",
			wantIssue:   true,
		},
		{
			name:        "escape above root",
			text:        "[x](../secret.md)",
			wantProblem: ProblemLocalFile,
			wantPath:    "../secret.md",
			wantIssue:   true,
		},
		{
			name:        "external url",
			text:        "[x](https://example.com)",
			wantProblem: ProblemExternal,
			wantSev:     SeverityWarning,
			wantIssue:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := newChecker(t, "src/main.go", "ch2.md")
			r, err := c.Check(context.Background(), []pipeline.SourceFile{{Name: "ch1.md", Text: tt.text}})
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if r.Links != 1 {
				t.Errorf("Links = %d, want 1", r.Links)
			}
			if !tt.wantIssue {
				if len(r.Issues) != 0 {
					t.Errorf("Issues = %v, want none", r.Issues)
				}
				return
			}
			if len(r.Issues) != 1 {
				t.Fatalf("Issues = %v, want one", r.Issues)
			}
			got := r.Issues[0]
			if got.Problem != tt.wantProblem || got.Path != tt.wantPath || got.Severity != tt.wantSev {
				t.Errorf("Issue = %+v, want problem %q path %q severity %v", got, tt.wantProblem, tt.wantPath, tt.wantSev)
			}
			if got.File != "ch1.md" || got.Line != 1 {
				t.Errorf("Issue location = %s:%d", got.File, got.Line)
			}
		})
	}
}

func TestCheck_Report(t *testing.T) {
	t.Parallel()

	c, fs := newChecker(t, "ch2.md")
	files := []pipeline.SourceFile{
		{Name: "ch1.md", Text: "[a](ch2.md) [b](missing.md) [c](https://x.org)"},
		{Name: "ch3.md", Text: "[again](ch2.md)"},
	}

	r, err := c.Check(context.Background(), files)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Files != 2 || r.Links != 4 {
		t.Errorf("Files, Links = %d, %d, want 2, 4", r.Files, r.Links)
	}
	if n := len(r.Errors()); n != 1 {
		t.Errorf("Errors() = %d, want 1", n)
	}
	if n := len(r.Warnings()); n != 1 {
		t.Errorf("Warnings() = %d, want 1", n)
	}
	// ch2.md is looked up once.
	if fs.calls != 2 {
		t.Errorf("Exists calls = %d, want 2", fs.calls)
	}
}

func TestCheck_Canceled(t *testing.T) {
	t.Parallel()

	c, _ := newChecker(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Check(ctx, []pipeline.SourceFile{{Name: "ch1.md", Text: "[a](b.md)"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Check() error = %v, want context.Canceled", err)
	}
}

func TestIssue_String(t *testing.T) {
	t.Parallel()

	i := Issue{File: "ch1.md", Line: 3, Text: "code", URL: "x.go", Problem: ProblemLocalFile}
	want := `ch1.md:3: "code" -> x.go (Local file not found)`
	if got := i.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
