package main

// Notes:
// - build/validate/strip/links run end to end against t.TempDir() books with
//   a fake render backend; real backends are covered in internal/render.
// - We check exit codes, printed summaries and files on disk, not log lines.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// plainBook has one chapter and no emoji.
var plainBook = map[string]string{
	"ch1.md": "# One\n\nPlain text.\n",
}

// ---------------------------------------------------------------------------
// TestBuildCmd - build command
// ---------------------------------------------------------------------------

func TestBuildCmd(t *testing.T) {
	t.Parallel()

	t.Run("default target", func(t *testing.T) {
		t.Parallel()

		root := setupBook(t, plainBook)
		env := newTestEnv(nil)
		if code := env.run("build", "-r", root); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
		}

		want := "build/digital/book.pdf"
		if got := env.backend.outputs(); !slices.Equal(got, []string{want}) {
			t.Errorf("outputs = %v, want [%s]", got, want)
		}
		if _, err := os.Stat(filepath.Join(root, "build", "digital", "book.pdf")); err != nil {
			t.Errorf("artifact missing: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "build", "intermediate", "ch1.md")); err != nil {
			t.Errorf("intermediate missing: %v", err)
		}
		assertContains(t, "stdout", env.stdout.String(), "digital: "+want, "fake")
	})

	t.Run("all targets", func(t *testing.T) {
		t.Parallel()

		root := setupBook(t, plainBook)
		env := newTestEnv(nil)
		if code := env.run("build", "-r", root, "-t", "all"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
		}

		want := []string{
			"build/web/book.html",
			"build/pdf/book.pdf",
			"build/development/book.html",
			"build/epub/book.epub",
		}
		if got := env.backend.outputs(); !slices.Equal(got, want) {
			t.Errorf("outputs = %v, want %v", got, want)
		}
		for _, out := range want {
			if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(out))); err != nil {
				t.Errorf("%s missing after later targets: %v", out, err)
			}
		}
		assertContains(t, "stdout", env.stdout.String(), "Built 4 targets")
	})

	t.Run("quiet prints nothing", func(t *testing.T) {
		t.Parallel()

		root := setupBook(t, plainBook)
		env := newTestEnv(nil)
		if code := env.run("build", "-r", root, "-q"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
		}
		if env.stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", env.stdout)
		}
	})

	errTests := []struct {
		name       string
		files      map[string]string
		args       []string
		backendErr error
		wantCode   int
		wantStderr string
	}{
		{
			name:       "unknown target",
			files:      plainBook,
			args:       []string{"-t", "paperback"},
			wantCode:   ExitUsage,
			wantStderr: "unknown target",
		},
		{
			name:       "no sources",
			files:      map[string]string{"notes.md": "# Notes\n"},
			wantCode:   ExitIO,
			wantStderr: "hint:",
		},
		{
			name:       "unapproved emoji",
			files:      map[string]string{"ch1.md": "# One\n\nHello \U0001F600\n"},
			wantCode:   ExitValidation,
			wantStderr: "ch1.md:3:7",
		},
		{
			name:       "backend failure",
			files:      plainBook,
			backendErr: errors.New("pandoc exploded"),
			wantCode:   ExitBackend,
			wantStderr: "pandoc exploded",
		},
		{
			name:       "bad config",
			files:      map[string]string{"ch1.md": "# One\n", "book.yaml": "book: [\n"},
			wantCode:   ExitUsage,
			wantStderr: "Error:",
		},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := setupBook(t, tt.files)
			env := newTestEnv(nil)
			env.backend.err = tt.backendErr
			code := env.run(append([]string{"build", "-r", root}, tt.args...)...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr)
			}
			assertContains(t, "stderr", env.stderr.String(), tt.wantStderr)
		})
	}
}

// ---------------------------------------------------------------------------
// TestValidateCmd - validate command
// ---------------------------------------------------------------------------

func TestValidateCmd(t *testing.T) {
	t.Parallel()

	t.Run("clean book", func(t *testing.T) {
		t.Parallel()

		root := setupBook(t, map[string]string{"ch1.md": "# One\n\nShip it \U0001F680\n"})
		env := newTestEnv(nil)
		if code := env.run("validate", "-r", root); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
		}
		assertContains(t, "stdout", env.stdout.String(), "Files: 1, approved: 1, unapproved: 0")
		if strings.Contains(env.stdout.String(), "ch1.md:") {
			t.Errorf("clean files are only listed with --verbose, got:\n%s", env.stdout)
		}
	})

	t.Run("violations", func(t *testing.T) {
		t.Parallel()

		root := setupBook(t, map[string]string{
			"ch1.md": "# One\n\nShip it \U0001F680 \U0001F600\n",
			"ch2.md": "# Two\n",
		})
		env := newTestEnv(nil)
		code := env.run("validate", "-r", root)
		if code != ExitValidation {
			t.Fatalf("exit code = %d, want %d", code, ExitValidation)
		}
		assertContains(t, "stdout", env.stdout.String(),
			"ch1.md: 1 approved, 1 unapproved",
			"3:12 \U0001F600 (U+1F600) unapproved",
			"Files: 2, approved: 1, unapproved: 1",
		)
		assertContains(t, "stderr", env.stderr.String(), "1 unapproved emoji")
	})

	t.Run("verbose lists approved", func(t *testing.T) {
		t.Parallel()

		root := setupBook(t, map[string]string{"ch1.md": "# One\n\n\U00002705 done\n"})
		env := newTestEnv(nil)
		if code := env.run("validate", "-r", root, "-v"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
		}
		assertContains(t, "stdout", env.stdout.String(), "3:1 \U00002705 (U+2705) ok")
	})
}

// ---------------------------------------------------------------------------
// TestStripCmd - strip command
// ---------------------------------------------------------------------------

func TestStripCmd(t *testing.T) {
	t.Parallel()

	const chapter = "# One\n\nHello \U0001F600 world \U0001F680\n"

	t.Run("dry run", func(t *testing.T) {
		t.Parallel()

		root := setupBook(t, map[string]string{"ch1.md": chapter})
		env := newTestEnv(nil)
		if code := env.run("strip", "-r", root, "--dry-run"); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
		}
		assertContains(t, "stdout", env.stdout.String(), "would remove 1", "Files changed: 1")

		data, err := os.ReadFile(filepath.Join(root, "ch1.md"))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != chapter {
			t.Errorf("dry run rewrote the file: %q", data)
		}
	})

	t.Run("in place", func(t *testing.T) {
		t.Parallel()

		root := setupBook(t, map[string]string{"ch1.md": chapter, "ch2.md": "# Two\n"})
		env := newTestEnv(nil)
		if code := env.run("strip", "-r", root); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
		}
		assertContains(t, "stdout", env.stdout.String(), "removed 1", "Files changed: 1")

		data, err := os.ReadFile(filepath.Join(root, "ch1.md"))
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "\U0001F600") {
			t.Errorf("unapproved emoji left in file: %q", data)
		}
		if !strings.Contains(string(data), "\U0001F680") {
			t.Errorf("approved emoji removed: %q", data)
		}

		// The stripped book now passes the gate.
		env = newTestEnv(nil)
		if code := env.run("validate", "-r", root); code != ExitSuccess {
			t.Errorf("validate after strip = %d, stdout: %s", code, env.stdout)
		}
	})
}

// ---------------------------------------------------------------------------
// TestLinksCmd - links command
// ---------------------------------------------------------------------------

func TestLinksCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		chapter    string
		args       []string
		wantCode   int
		wantStdout []string
	}{
		{
			name:       "all local links resolve",
			chapter:    "# One\n\nSee [two](ch2.md#start).\n",
			wantCode:   ExitSuccess,
			wantStdout: []string{"links: 1, errors: 0, warnings: 0"},
		},
		{
			name:       "missing local file",
			chapter:    "# One\n\nSee [two](ch2.md) and [gone](missing.md).\n",
			wantCode:   ExitValidation,
			wantStdout: []string{"error: ch1.md:3", "missing.md", "Local file not found", "errors: 1"},
		},
		{
			name:       "external is a warning",
			chapter:    "# One\n\nSee [site](https://example.com).\n",
			wantCode:   ExitSuccess,
			wantStdout: []string{"warnings: 1"},
		},
		{
			name:       "strict fails on warnings",
			chapter:    "# One\n\nSee [site](https://example.com).\n",
			args:       []string{"--strict"},
			wantCode:   ExitValidation,
			wantStdout: []string{"warnings: 1"},
		},
		{
			name:       "verbose prints warnings",
			chapter:    "# One\n\nSee [site](https://example.com).\n",
			args:       []string{"-v"},
			wantCode:   ExitSuccess,
			wantStdout: []string{"warning: ch1.md:3", "External URL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := setupBook(t, map[string]string{"ch1.md": tt.chapter, "ch2.md": "# Two\n"})
			env := newTestEnv(nil)
			code := env.run(append([]string{"links", "-r", root}, tt.args...)...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr)
			}
			assertContains(t, "stdout", env.stdout.String(), tt.wantStdout...)
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfigCmd - Resolved configuration
// ---------------------------------------------------------------------------

func TestConfigCmd(t *testing.T) {
	t.Parallel()

	root := setupBook(t, map[string]string{
		"book.yaml": "book:\n  title: Field Notes\n",
	})
	env := newTestEnv(map[string]string{"REPO_BASE_URL": "https://git.example.com/notes"})
	if code := env.run("config", "-r", root); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
	}
	assertContains(t, "stdout", env.stdout.String(),
		"title: Field Notes",
		"slug: book",
		"baseUrl: https://git.example.com/notes",
		"digital:",
	)
}

// ---------------------------------------------------------------------------
// TestBuildCmd_CleanFlags - --clean / --no-clean
// ---------------------------------------------------------------------------

func TestBuildCmd_CleanFlags(t *testing.T) {
	t.Parallel()

	root := setupBook(t, map[string]string{
		"ch1.md":                      "# One\n",
		"build/intermediate/stale.md": "old",
	})
	stale := filepath.Join(root, "build", "intermediate", "stale.md")

	env := newTestEnv(nil)
	if code := env.run("build", "-r", root, "--no-clean"); code != ExitSuccess {
		t.Fatalf("--no-clean exit code = %d, stderr: %s", code, env.stderr)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("--no-clean removed the stale intermediate: %v", err)
	}

	env = newTestEnv(nil)
	if code := env.run("build", "-r", root); code != ExitSuccess {
		t.Fatalf("default build exit code = %d, stderr: %s", code, env.stderr)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("default build kept the stale intermediate: %v", err)
	}
}
