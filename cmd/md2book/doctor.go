package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	flag "github.com/spf13/pflag"

	md2book "github.com/alnah/go-md2book"
	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/render"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Pandoc   toolInfo   `json:"pandoc"`
	Engines  []toolInfo `json:"pdf_engines,omitempty"`
	Chrome   chromeInfo `json:"chrome"`
	Book     bookInfo   `json:"book"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds an external tool probe.
type toolInfo struct {
	Name    string `json:"name"`
	Needed  bool   `json:"needed"`
	Found   bool   `json:"found"`
	Version string `json:"version,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Needed bool   `json:"needed"`
	Found  bool   `json:"found"`
	Path   string `json:"path,omitempty"`
}

// bookInfo holds book root checks.
type bookInfo struct {
	Root    string   `json:"root"`
	Sources int      `json:"sources"`
	Targets []string `json:"targets"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	CI          bool   `json:"ci"`
	RepoBaseURL string `json:"repo_base_url,omitempty"`
	BrowserBin  string `json:"rod_browser_bin,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 4 = missing prerequisites.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	f, err := parseDoctorFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	b, cfg, err := newBuilder(f.common, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}

	result := runDoctor(ctx, b, cfg, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitBackend
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, b *md2book.Builder, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			CI:          env.Getenv("CI") != "",
			RepoBaseURL: cfg.Repository.BaseURL,
			BrowserBin:  env.Getenv(render.EnvBrowserBin),
		},
	}

	checkPandoc(ctx, cfg, env, result)
	checkEngines(ctx, cfg, env, result)
	checkChrome(cfg, env, result)
	checkBook(ctx, b, cfg, result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// resolvedTargets returns every configured target, resolved.
func resolvedTargets(cfg *config.Config) []config.Target {
	var out []config.Target
	for _, name := range cfg.TargetNames() {
		if t, err := cfg.Target(name); err == nil {
			out = append(out, t)
		}
	}
	return out
}

// checkPandoc probes the configured pandoc binary.
func checkPandoc(ctx context.Context, cfg *config.Config, env *Environment, result *doctorResult) {
	name := cfg.Pandoc.Binary
	if name == "" {
		name = "pandoc"
	}
	result.Pandoc.Name = name

	for _, t := range resolvedTargets(cfg) {
		result.Pandoc.Needed = result.Pandoc.Needed || t.Backend == config.BackendPandoc
	}
	if !result.Pandoc.Needed {
		return
	}

	v, err := render.Version(ctx, env.Runner, render.Command{Name: name})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Pandoc not usable: %v", err))
		return
	}
	result.Pandoc.Found = true
	result.Pandoc.Version = v
}

// checkEngines probes the PDF engines of the pandoc PDF targets, with the
// configured TeX paths on PATH. A missing engine only breaks PDF targets.
func checkEngines(ctx context.Context, cfg *config.Config, env *Environment, result *doctorResult) {
	var engines []string
	for _, t := range resolvedTargets(cfg) {
		if !t.IsPDF() || t.Backend != config.BackendPandoc {
			continue
		}
		eng := t.Engine
		if eng == "" {
			eng = render.DefaultEngine
		}
		if !slices.Contains(engines, eng) {
			engines = append(engines, eng)
		}
	}

	var cmdEnv []string
	if len(cfg.Pandoc.TexPaths) > 0 {
		cmdEnv = render.ExtendPath(os.Environ(), cfg.Pandoc.TexPaths)
	}
	for _, eng := range engines {
		info := toolInfo{Name: eng, Needed: true}
		v, err := render.Version(ctx, env.Runner, render.Command{Name: eng, Env: cmdEnv})
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("PDF engine %s not found; PDF targets will fail", eng))
		} else {
			info.Found = true
			info.Version = v
		}
		result.Engines = append(result.Engines, info)
	}
}

// checkChrome detects the browser used by built-in PDF targets.
func checkChrome(cfg *config.Config, env *Environment, result *doctorResult) {
	for _, t := range resolvedTargets(cfg) {
		if t.IsPDF() && t.Backend == config.BackendBuiltin {
			result.Chrome.Needed = true
		}
	}

	path, found := render.BrowserPath(env.Getenv)
	result.Chrome.Found = found
	if found {
		result.Chrome.Path = path
		return
	}
	if !result.Chrome.Needed {
		return
	}
	if result.Env.BrowserBin != "" {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s (%s)", result.Env.BrowserBin, render.EnvBrowserBin))
		return
	}
	result.Warnings = append(result.Warnings,
		"Chrome/Chromium not found; it will be downloaded on the first built-in PDF build")
}

// checkBook counts the sources and checks the fonts of every target.
func checkBook(ctx context.Context, b *md2book.Builder, cfg *config.Config, result *doctorResult) {
	result.Book.Root = b.Root()
	result.Book.Targets = cfg.TargetNames()

	files, err := b.Discover(ctx)
	switch {
	case errors.Is(err, md2book.ErrNoSources):
		result.Warnings = append(result.Warnings, "No book sources found in "+b.Root())
	case err != nil:
		result.Errors = append(result.Errors, fmt.Sprintf("Reading sources: %v", err))
	default:
		result.Book.Sources = len(files)
	}

	for _, name := range result.Book.Targets {
		warnings, err := b.FontWarnings(name)
		if err != nil {
			continue
		}
		for _, w := range warnings {
			if !slices.Contains(result.Warnings, w) {
				result.Warnings = append(result.Warnings, w)
			}
		}
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "md2book-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2book doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Pandoc")
	switch {
	case r.Pandoc.Found:
		fmt.Fprintf(w, "  [OK] %s\n", r.Pandoc.Version)
	case r.Pandoc.Needed:
		fmt.Fprintf(w, "  [ERROR] %s not usable\n", r.Pandoc.Name)
	default:
		fmt.Fprintln(w, "  [OK] Not needed by any target")
	}
	for _, e := range r.Engines {
		if e.Found {
			fmt.Fprintf(w, "  [OK] %s: %s\n", e.Name, e.Version)
		} else {
			fmt.Fprintf(w, "  [WARN] %s: not found\n", e.Name)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	switch {
	case r.Chrome.Found:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
	case r.Chrome.Needed:
		fmt.Fprintln(w, "  [WARN] Not found")
	default:
		fmt.Fprintln(w, "  [OK] Not needed by any target")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Book")
	fmt.Fprintf(w, "  [OK] Root: %s\n", r.Book.Root)
	fmt.Fprintf(w, "  [OK] Sources: %d\n", r.Book.Sources)
	fmt.Fprintf(w, "  [OK] Targets: %v\n", r.Book.Targets)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.Env.RepoBaseURL != "" {
		fmt.Fprintf(w, "  [OK] Repository: %s\n", r.Env.RepoBaseURL)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
