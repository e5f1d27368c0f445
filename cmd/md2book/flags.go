package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// defaultTarget is built when no --target is given.
const defaultTarget = "digital"

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	root    string
	quiet   bool
	verbose bool
}

// buildFlags holds flags for the build command.
type buildFlags struct {
	common  commonFlags
	targets []string
	timeout time.Duration
	workers int
	clean   bool
	noClean bool
}

// checkFlags holds flags for validate, strip and links.
type checkFlags struct {
	common commonFlags
	dryRun bool // strip
	strict bool // links: warnings fail too
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path (default: <root>/book.yaml)")
	fs.StringVarP(&f.root, "root", "r", ".", "book root directory")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse parses args and rejects positional arguments.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

// parseBuildFlags parses build command flags.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, error) {
	f := &buildFlags{}
	fs := newFlagSet("build", stderr, printBuildUsage)
	addCommonFlags(fs, &f.common)
	fs.StringSliceVarP(&f.targets, "target", "t", []string{defaultTarget}, "targets to build, or \"all\"")
	fs.DurationVar(&f.timeout, "timeout", 0, "build timeout (e.g., 90s, 5m; 0 = none)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel transforms (0 = config, then CPU count)")
	fs.BoolVar(&f.clean, "clean", false, "remove build directories first")
	fs.BoolVar(&f.noClean, "no-clean", false, "keep build directories")

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if f.clean && f.noClean {
		return nil, fmt.Errorf("%w: --clean and --no-clean are mutually exclusive", ErrUsage)
	}
	if f.workers < 0 {
		return nil, fmt.Errorf("%w: --workers must be >= 0, got %d", ErrUsage, f.workers)
	}
	if f.timeout < 0 {
		return nil, fmt.Errorf("%w: --timeout must be positive, got %s", ErrUsage, f.timeout)
	}
	return f, nil
}

// parseCheckFlags parses validate, strip and links flags.
func parseCheckFlags(name string, args []string, stderr io.Writer) (*checkFlags, error) {
	f := &checkFlags{}
	fs := newFlagSet(name, stderr, func(w io.Writer) { printCommandUsage(w, name) })
	addCommonFlags(fs, &f.common)
	switch name {
	case "strip":
		fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "report without rewriting files")
	case "links":
		fs.BoolVar(&f.strict, "strict", false, "fail on warnings too")
	}
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", stderr, func(w io.Writer) { printCommandUsage(w, "doctor") })
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "output as JSON")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}
